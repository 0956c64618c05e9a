// Package client implements the Kvik client node type: gateway discovery,
// periodic time synchronization, subscription-lease renewal and the
// publish/subscribe/unsubscribe request/response protocol carried over a
// pluggable local layer.
//
// A Client is safe for concurrent use by multiple goroutines once
// constructed. Construction itself performs gateway discovery (or, given
// retained data from a prior run, an attempt to resume it) and can block
// for as long as that takes.
package client
