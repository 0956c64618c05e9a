// Package remotelayer defines the interface a Gateway uses to bridge
// local-layer publish/subscribe traffic onto a conventional broker (e.g.
// MQTT) or, as implemented by internal/localbroker, an in-process broker.
//
// The Kvik client core never talks to a RemoteLayer directly — that's the
// Gateway's job, and the Gateway is out of scope for this module — but the
// reference LocalBroker implementation is in scope because it is the
// simplest possible remote layer and is exercised heavily by this module's
// own tests and example command.
package remotelayer
