// Package localbroker implements the reference RemoteLayer: a local,
// in-process broker that dispatches published data straight back to
// matching subscribers instead of bridging to an external MQTT broker.
//
// It exists so a Gateway (or this module's own tests and example command)
// can exercise a complete publish/subscribe round trip without any
// external dependency.
package localbroker
