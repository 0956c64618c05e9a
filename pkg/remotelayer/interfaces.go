package remotelayer

import "github.com/kvikmesh/kvik-go/pkg/kvik"

// RecvCb is invoked when the remote layer receives data matching a local
// subscription.
type RecvCb func(data kvik.SubData) kvik.ErrCode

// ReconnectCb is invoked when the remote layer re-establishes its
// connection to the broker, so the caller can resubscribe.
type ReconnectCb func() kvik.ErrCode

// RemoteLayer bridges local publish/subscribe traffic onto a broker.
type RemoteLayer interface {
	// Publish publishes data coming from a node.
	Publish(data kvik.PubData) kvik.ErrCode

	// Subscribe subscribes to topic.
	Subscribe(topic string) kvik.ErrCode

	// Unsubscribe unsubscribes from topic. Returns kvik.ErrNotFound if no
	// such subscription exists.
	Unsubscribe(topic string) kvik.ErrCode

	// SetRecvCb registers the callback invoked when subscribed data
	// arrives.
	SetRecvCb(cb RecvCb)

	// SetReconnectCb registers the callback invoked on reconnection.
	SetReconnectCb(cb ReconnectCb)
}
