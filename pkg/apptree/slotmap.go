package apptree

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SlotMap is an insertion-ordered mapping from slot key to subtree node.
// Go maps don't keep insertion order, and slot order is load-bearing for
// the runtime: slots render in the order they were first matched, with
// injected fallbacks after all matched slots.
type SlotMap struct {
	keys  []string
	nodes map[string]*Node
}

// NewSlotMap creates an empty slot map.
func NewSlotMap() *SlotMap {
	return &SlotMap{nodes: make(map[string]*Node)}
}

// Set inserts or replaces the node for a key. A replaced key keeps its
// original position.
func (m *SlotMap) Set(key string, n *Node) {
	if _, ok := m.nodes[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.nodes[key] = n
}

// Get returns the node for a key.
func (m *SlotMap) Get(key string) (*Node, bool) {
	n, ok := m.nodes[key]
	return n, ok
}

// Has reports whether the key is present.
func (m *SlotMap) Has(key string) bool {
	_, ok := m.nodes[key]
	return ok
}

// Len returns the number of slots.
func (m *SlotMap) Len() int {
	return len(m.keys)
}

// Keys returns the slot keys in insertion order.
func (m *SlotMap) Keys() []string {
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// MarshalJSON serializes the map as a JSON object with keys in insertion
// order.
func (m *SlotMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(m.nodes[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a serialized slot map, preserving the key order it
// was written with. A plain map decode would lose it.
func (m *SlotMap) UnmarshalJSON(data []byte) error {
	m.keys = nil
	m.nodes = make(map[string]*Node)

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("slot map: expected object, got %v", tok)
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("slot map: non-string key %v", keyTok)
		}
		n := &Node{}
		if err := dec.Decode(n); err != nil {
			return err
		}
		m.Set(key, n)
	}
	_, err = dec.Token()
	return err
}

// slotEntry pairs a raw slot key (marker intact) with its continuation.
type slotEntry struct {
	key  string
	cont Continuation
}

// slotList is the matcher's insertion-ordered output: raw slot key to
// continuation, last write wins per key without disturbing position.
type slotList struct {
	entries []slotEntry
	index   map[string]int
}

func newSlotList() *slotList {
	return &slotList{index: make(map[string]int)}
}

func (l *slotList) set(key string, c Continuation) {
	if i, ok := l.index[key]; ok {
		l.entries[i].cont = c
		return
	}
	l.index[key] = len(l.entries)
	l.entries = append(l.entries, slotEntry{key: key, cont: c})
}
