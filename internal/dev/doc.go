// Package dev runs the interactive development loop: a file watcher that
// coalesces change bursts, a compile session that rebuilds route manifests
// when relevant files change, and an HTTP server exposing the manifests,
// a reload WebSocket, and metrics.
//
// Interactive compilation differs from one-shot builds in how a missing
// root layout is handled: instead of aborting, a stub layout is written
// into the app directory and compilation retries once.
package dev
