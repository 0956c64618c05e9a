package demogateway

import (
	"sync"
	"time"

	"github.com/kvikmesh/kvik-go/internal/looplayer"
	"github.com/kvikmesh/kvik-go/pkg/kvik"
	"github.com/kvikmesh/kvik-go/pkg/remotelayer"
)

const logTag = "demogateway"

// Gateway answers PROBE_REQ and PUB_SUB_UNSUB requests arriving through a
// looplayer.LoopLayer, routing publish/subscribe traffic through a
// remotelayer.RemoteLayer (ordinarily an internal/localbroker.Broker).
// Data the broker delivers for a subscribed topic is pushed back to the
// client as an unsolicited SUB_DATA message.
type Gateway struct {
	log      kvik.Logger
	addr     kvik.LocalAddr
	pref     int16
	timeUnit time.Duration

	broker remotelayer.RemoteLayer
	ll     *looplayer.LoopLayer

	mu    sync.Mutex
	msgID uint16
}

// New constructs a Gateway at addr, answering PROBE_REQ with pref, and
// wires it as ll's GatewayFunc and broker's receive callback. timeUnit
// must match the Client's configured MsgIDCache.TimeUnit for timestamps
// to validate.
func New(addr kvik.LocalAddr, pref int16, timeUnit time.Duration, broker remotelayer.RemoteLayer, ll *looplayer.LoopLayer, log kvik.Logger) *Gateway {
	if log == nil {
		log = kvik.NopLogger{}
	}

	g := &Gateway{
		log:      log,
		addr:     addr,
		pref:     pref,
		timeUnit: timeUnit,
		broker:   broker,
		ll:       ll,
	}

	broker.SetRecvCb(g.pushSubData)
	ll.GatewayFunc = g.Handle

	return g
}

// Handle answers req, implementing looplayer.LoopLayer's GatewayFunc hook.
func (g *Gateway) Handle(req kvik.LocalMsg) *kvik.LocalMsg {
	switch req.Type {
	case kvik.MsgProbeReq:
		g.log.Debugf(logTag, "probed, responding with pref %d", g.pref)
		return g.prep(kvik.LocalMsg{Type: kvik.MsgProbeRes, Pref: g.pref})
	case kvik.MsgPubSubUnsub:
		g.handlePubSubUnsub(req)
		return g.prep(kvik.LocalMsg{Type: kvik.MsgOK})
	default:
		g.log.Debugf(logTag, "ignoring request of type %s", req.Type)
		return nil
	}
}

func (g *Gateway) handlePubSubUnsub(req kvik.LocalMsg) {
	for _, p := range req.Pubs {
		g.log.Debugf(logTag, "routing publish to topic '%s'", p.Topic)
		g.broker.Publish(p)
	}
	for _, topic := range req.Unsubs {
		g.log.Debugf(logTag, "unsubscribing from topic '%s'", topic)
		g.broker.Unsubscribe(topic)
	}
	for _, topic := range req.Subs {
		g.log.Debugf(logTag, "subscribing to topic '%s'", topic)
		g.broker.Subscribe(topic)
	}
}

func (g *Gateway) pushSubData(data kvik.SubData) kvik.ErrCode {
	g.log.Debugf(logTag, "pushing sub data for topic '%s' to client", data.Topic)
	msg := g.prep(kvik.LocalMsg{Type: kvik.MsgSubData, SubsData: []kvik.SubData{data}})
	return g.ll.Deliver(*msg)
}

// prep fills in the fields a real gateway's radio stack would stamp onto
// every outgoing message: address, node type, id and timestamp.
func (g *Gateway) prep(msg kvik.LocalMsg) *kvik.LocalMsg {
	g.mu.Lock()
	id := g.msgID
	g.msgID++
	g.mu.Unlock()

	msg.Addr = g.addr
	msg.NodeType = kvik.NodeGateway
	msg.ID = id
	msg.TS = uint16(time.Duration(time.Now().UnixNano()) / g.timeUnit)

	return &msg
}
