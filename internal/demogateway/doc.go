// Package demogateway implements a minimal in-process stand-in for a Kvik
// Gateway node. It exists only so cmd/kvikctl has something that speaks
// the local layer protocol to demonstrate the Client against, without any
// real radio hardware or broker connection; the Gateway and Relay node
// types themselves are out of this module's scope.
package demogateway
