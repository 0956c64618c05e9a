// Package idcache implements a duplicate-message-ID cache used for replay
// detection by the node base (internal/node).
//
// Entries are tracked per peer address and bucketed by an internal tick
// counter (driven by an internal/ktimer.Timer) rather than wall-clock
// time, so aging is exact and independent of clock adjustments. An entry
// inserted at tick n expires at tick n+maxAge+1.
package idcache
