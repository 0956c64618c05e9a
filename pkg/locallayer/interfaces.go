package locallayer

import "github.com/kvikmesh/kvik-go/pkg/kvik"

// RecvCb is invoked by a LocalLayer whenever it receives a message from a
// peer. It may be called concurrently from the local layer's own thread of
// execution; implementations must tolerate concurrent invocation.
type RecvCb func(msg kvik.LocalMsg) kvik.ErrCode

// LocalLayer is the transport a node uses to send and receive LocalMsg
// records. Implementations are expected to call the registered RecvCb from
// their own goroutine(s), independent of the caller of Send.
type LocalLayer interface {
	// Send transmits msg to its destination (msg.Addr), or broadcasts it
	// if msg.Addr is empty.
	Send(msg kvik.LocalMsg) kvik.ErrCode

	// Channels returns the set of channels this local layer can switch
	// between. An empty slice means channel hopping is disabled; SetChannel
	// must not be called in that case.
	Channels() []uint16

	// SetChannel switches to channel ch. Channel 0 is the default channel.
	SetChannel(ch uint16) kvik.ErrCode

	// SetRecvCb registers the callback invoked on message receipt. Passing
	// nil deregisters any previously registered callback.
	SetRecvCb(cb RecvCb)
}
