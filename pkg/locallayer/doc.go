// Package locallayer defines the interface a Kvik node uses to exchange
// LocalMsg records with nearby peers.
//
// A local layer is a pluggable, broadcast-capable transport — typically an
// RF link with channel hopping — that the client core never implements
// directly; framing, radio control, and channel hopping are external
// concerns specified only by this interface. This module ships exactly one
// concrete implementation, an in-process loopback used by tests and the
// example command (see internal/looplayer); production local layers live
// outside this module.
package locallayer
