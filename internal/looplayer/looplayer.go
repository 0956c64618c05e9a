package looplayer

import (
	"sync"
	"time"

	"github.com/kvikmesh/kvik-go/pkg/kvik"
	"github.com/kvikmesh/kvik-go/pkg/locallayer"
)

var _ locallayer.LocalLayer = (*LoopLayer)(nil)

// LoopLayer is a locallayer.LocalLayer that never leaves the process. Every
// call to Send is recorded in SentLog; if a response has been queued via
// QueueResponse, it is handed back to the registered RecvCb on its own
// goroutine, standing in for a gateway's reply.
type LoopLayer struct {
	mu sync.Mutex

	SendErr       kvik.ErrCode
	SetChannelErr kvik.ErrCode
	ChannelList   []uint16

	// PeerAddr and PeerNodeType are stamped onto every queued response,
	// standing in for the peer LoopLayer is looping back to.
	PeerAddr     kvik.LocalAddr
	PeerNodeType kvik.NodeType

	// RespDelay delays delivery of a queued response, simulating network
	// latency. RespTSDiff and RespTimeUnit control the timestamp stamped
	// onto the response, the same way a real peer's clock offset would.
	RespDelay    time.Duration
	RespTSDiff   time.Duration
	RespTimeUnit time.Duration

	// GatewayFunc, if set, computes each Send's response dynamically
	// instead of draining the static QueueResponse queue. It's called
	// without any lock held, on its own goroutine, and must fill in every
	// field of its returned message itself (addressing, id, timestamp);
	// a nil return sends no response. This is how a live responder (see
	// internal/demogateway) answers requests instead of replaying a
	// canned script.
	GatewayFunc func(req kvik.LocalMsg) *kvik.LocalMsg

	responses []kvik.LocalMsg
	nextID    uint16

	sentLog     []kvik.LocalMsg
	channelsLog []uint16
	respOK      []bool

	recvCb locallayer.RecvCb
}

// New creates a LoopLayer that responds to sends (unicast or broadcast) as
// node type gateway by default, with no channel hopping.
func New() *LoopLayer {
	return &LoopLayer{
		PeerNodeType: kvik.NodeGateway,
		RespTimeUnit: time.Second,
	}
}

// QueueResponse enqueues msg to be handed back to the receive callback the
// next time Send is called. Addr, NodeType, ID, TS and ReqID are filled in
// automatically; the caller only needs to set Type and the payload fields.
func (l *LoopLayer) QueueResponse(msg kvik.LocalMsg) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.responses = append(l.responses, msg)
}

// Send implements locallayer.LocalLayer.
func (l *LoopLayer) Send(msg kvik.LocalMsg) kvik.ErrCode {
	l.mu.Lock()
	l.sentLog = append(l.sentLog, msg)

	if l.SendErr != kvik.ErrSuccess {
		err := l.SendErr
		l.mu.Unlock()
		return err
	}

	gwFunc := l.GatewayFunc
	var queued *kvik.LocalMsg
	if gwFunc == nil && len(l.responses) > 0 {
		r := l.responses[0]
		l.responses = l.responses[1:]
		queued = &r
	}
	l.mu.Unlock()

	if gwFunc == nil && queued == nil {
		return kvik.ErrSuccess
	}

	go l.respond(msg, gwFunc, queued)

	return kvik.ErrSuccess
}

// respond computes and delivers msg's response, either via gwFunc (which
// prepares the whole message itself) or from a queued canned response
// (which LoopLayer prepares). It runs without l.mu held so gwFunc is free
// to call back into the LoopLayer, e.g. via Deliver.
func (l *LoopLayer) respond(req kvik.LocalMsg, gwFunc func(kvik.LocalMsg) *kvik.LocalMsg, queued *kvik.LocalMsg) {
	var resp *kvik.LocalMsg

	if gwFunc != nil {
		resp = gwFunc(req)
		if resp != nil {
			resp.ReqID = req.ID
		}
	} else {
		resp = queued
		if resp != nil {
			resp.ReqID = req.ID
			l.mu.Lock()
			l.prepResponse(resp)
			l.mu.Unlock()
		}
	}

	if resp == nil {
		return
	}

	time.Sleep(l.RespDelay)

	l.mu.Lock()
	cb := l.recvCb
	l.mu.Unlock()

	if cb == nil {
		return
	}

	err := cb(*resp)

	l.mu.Lock()
	l.respOK = append(l.respOK, err.Ok())
	l.mu.Unlock()
}

// prepResponse fills in a queued response's addressing and timing fields.
// Must be called with mu held.
func (l *LoopLayer) prepResponse(msg *kvik.LocalMsg) {
	msg.Addr = l.PeerAddr
	msg.NodeType = l.PeerNodeType
	msg.ID = l.nextID
	l.nextID++

	now := time.Duration(time.Now().UnixNano()) + l.RespTSDiff
	unit := l.RespTimeUnit
	if unit == 0 {
		unit = time.Second
	}
	msg.TS = uint16(now / unit)
}

// Channels implements locallayer.LocalLayer.
func (l *LoopLayer) Channels() []uint16 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ChannelList
}

// SetChannel implements locallayer.LocalLayer.
func (l *LoopLayer) SetChannel(ch uint16) kvik.ErrCode {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.channelsLog = append(l.channelsLog, ch)
	return l.SetChannelErr
}

// SetRecvCb implements locallayer.LocalLayer.
func (l *LoopLayer) SetRecvCb(cb locallayer.RecvCb) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recvCb = cb
}

// Deliver pushes msg straight to the registered RecvCb, as if a peer had
// sent it unsolicited (not in response to a prior Send). It returns
// whatever the callback returns, or ErrNotFound if no callback is
// registered.
func (l *LoopLayer) Deliver(msg kvik.LocalMsg) kvik.ErrCode {
	l.mu.Lock()
	cb := l.recvCb
	l.mu.Unlock()

	if cb == nil {
		return kvik.ErrNotFound
	}
	return cb(msg)
}

// SentLog returns every message passed to Send so far.
func (l *LoopLayer) SentLog() []kvik.LocalMsg {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]kvik.LocalMsg{}, l.sentLog...)
}

// ChannelsLog returns every channel passed to SetChannel so far.
func (l *LoopLayer) ChannelsLog() []uint16 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]uint16{}, l.channelsLog...)
}

// RecvCbSet reports whether a receive callback is currently registered.
func (l *LoopLayer) RecvCbSet() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.recvCb != nil
}
