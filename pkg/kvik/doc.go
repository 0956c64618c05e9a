// Package kvik provides the shared data model, error codes, and pluggable
// logging interface used across the Kvik client core.
//
// This package defines the wire-level vocabulary that the local layer, the
// remote layer, and the client state machine all speak:
//   - LocalAddr, LocalPeer, RetainedLocalPeer: peer addressing, including
//     the fixed-capacity "retained" form used across deep-sleep boundaries
//   - LocalMsg, PubData, SubData, SubReq: the messages exchanged with the
//     local layer and the publish/subscribe payloads they carry
//   - ErrCode: the closed error enumeration shared by every component
//   - Logger: a minimal, pluggable logging interface (the client never logs
//     through a hardcoded backend)
//
// None of the types here know about goroutines, timers, or tries; those live
// in internal packages that import kvik for its vocabulary.
package kvik
