package localbroker

import (
	"sync"

	"github.com/kvikmesh/kvik-go/internal/wildcardtrie"
	"github.com/kvikmesh/kvik-go/pkg/kvik"
	"github.com/kvikmesh/kvik-go/pkg/remotelayer"
)

const logTag = "localbroker"

// Broker is an in-process RemoteLayer: publishing dispatches synchronously
// to any matching subscription's receive callback, on the caller's own
// goroutine.
type Broker struct {
	log kvik.Logger

	mu   sync.Mutex
	subs *wildcardtrie.Trie[bool]

	recvCb      remotelayer.RecvCb
	reconnectCb remotelayer.ReconnectCb
}

var _ remotelayer.RemoteLayer = (*Broker)(nil)

// New constructs a Broker. If log is nil, logging is a no-op.
func New(log kvik.Logger) *Broker {
	if log == nil {
		log = kvik.NopLogger{}
	}

	subs, err := wildcardtrie.New[bool]("/", "+", "#")
	if err != nil {
		// The separator and wildcard tokens above are fixed and known
		// good; this can't happen.
		panic(err)
	}

	b := &Broker{log: log, subs: subs}
	log.Debugf(logTag, "initialized")
	return b
}

// Publish dispatches data to the registered receive callback if a
// subscription matches its topic.
func (b *Broker) Publish(data kvik.PubData) kvik.ErrCode {
	b.log.Debugf(logTag, "publishing %d bytes to topic '%s'", len(data.Payload), data.Topic)

	b.mu.Lock()
	matches := b.subs.Find(data.Topic)
	cb := b.recvCb
	b.mu.Unlock()

	if len(matches) == 0 || cb == nil {
		return kvik.ErrSuccess
	}

	b.log.Debugf(logTag, "subscription exists for topic '%s', invoking callback", data.Topic)
	return cb(data.ToSubData())
}

// Subscribe registers topic (which may contain wildcard tokens) as a
// subscription of interest.
func (b *Broker) Subscribe(topic string) kvik.ErrCode {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.log.Debugf(logTag, "subscribe to topic '%s'", topic)
	b.subs.Insert(topic, true)
	return kvik.ErrSuccess
}

// Unsubscribe removes topic's subscription.
func (b *Broker) Unsubscribe(topic string) kvik.ErrCode {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.subs.Remove(topic) {
		b.log.Debugf(logTag, "unsubscribe from topic '%s': doesn't exist", topic)
		return kvik.ErrNotFound
	}

	b.log.Debugf(logTag, "unsubscribe from topic '%s': success", topic)
	return kvik.ErrSuccess
}

// SetRecvCb registers the callback invoked when published data matches a
// subscription.
func (b *Broker) SetRecvCb(cb remotelayer.RecvCb) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.recvCb = cb
}

// SetReconnectCb registers the reconnection callback. The local broker
// never disconnects, so it's never invoked, but it's kept to satisfy
// RemoteLayer.
func (b *Broker) SetReconnectCb(cb remotelayer.ReconnectCb) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reconnectCb = cb
}
