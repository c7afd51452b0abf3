package apptree

import "strings"

// matchParallelRoutes computes the slot layout for one nesting level. It
// scans every leaf route path that is a descendant of segmentPath and
// classifies what remains of it below this level:
//
//   - exactly the page marker            -> the children slot is a page here
//   - @slot followed by the page marker  -> that slot is a page here
//   - @slot followed by anything else    -> that slot continues deeper
//   - anything else                      -> the children slot continues with
//     the next component
//
// Keys keep their slot marker; normalization happens at emission. Insertion
// order reflects first-seen order over the leaf path list, and a later
// match for the same key overwrites the earlier continuation in place.
func matchParallelRoutes(appPaths []string, segmentPath string) *slotList {
	slots := newSlotList()
	prefix := segmentPath + "/"

	for _, appPath := range appPaths {
		if !strings.HasPrefix(appPath, prefix) {
			continue
		}
		rest := strings.Split(strings.TrimPrefix(appPath, prefix), "/")

		switch {
		case len(rest) == 1 && rest[0] == pageFile:
			slots.set(childrenSlot, pageContinuation())
		case isSlotDir(rest[0]) && len(rest) == 2 && rest[1] == pageFile:
			slots.set(rest[0], pageContinuation())
		case isSlotDir(rest[0]):
			slots.set(rest[0], pathContinuation(rest[1:]))
		default:
			slots.set(childrenSlot, literalContinuation(rest[0]))
		}
	}

	return slots
}
