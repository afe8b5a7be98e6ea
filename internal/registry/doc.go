// Package registry provides the listener bookkeeping behind switchboard channels.
//
// The main component is [Set], an insertion-ordered set keyed by identity.
// Emission code never iterates the live set: it takes a [Set.Snapshot] and
// walks that, so members added or removed while a snapshot is being consumed
// do not affect the in-flight iteration.
//
// Users of the switchboard library should not need to interact with this
// package directly.
package registry
