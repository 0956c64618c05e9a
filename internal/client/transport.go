package client

import (
	"time"

	"github.com/kvikmesh/kvik-go/pkg/kvik"
)

// sendLocal sends msg and waits for its response, treating a FAIL
// response as an error and triggering gateway rediscovery once enough
// messages in a row have failed or gone unanswered.
func (c *Client) sendLocal(msg *kvik.LocalMsg) (kvik.LocalMsg, kvik.ErrCode) {
	respMsg, err := c.sendLocalUnchecked(msg, false)
	if !err.Ok() {
		c.onSendFailure()
		return respMsg, err
	}

	if respMsg.Type == kvik.MsgFail {
		c.log.Warnf(logTag, "message delivery failed with code %s", respMsg.FailReason)
		c.onSendFailure()
		return respMsg, kvik.ErrMsgProcessingFailed
	}

	c.mu.Lock()
	c.msgsFailCnt = 0
	c.mu.Unlock()

	return respMsg, kvik.ErrSuccess
}

func (c *Client) onSendFailure() {
	c.mu.Lock()
	c.msgsFailCnt++
	trig := c.conf.GwDscv.TrigMsgsFailCnt == 0 || c.msgsFailCnt >= c.conf.GwDscv.TrigMsgsFailCnt
	c.mu.Unlock()

	if trig {
		c.log.Warnf(logTag, "too many failed messages, triggering background gateway discovery")
		c.triggerGwRediscovery()
	}
}

// sendLocalUnchecked prepares, sends and (unless noResp) waits for a
// unicast message's response, without interpreting FAIL responses as
// errors. The caller is responsible for that.
func (c *Client) sendLocalUnchecked(msg *kvik.LocalMsg, noResp bool) (kvik.LocalMsg, kvik.ErrCode) {
	c.mu.Lock()
	c.prepareMsg(msg, false)
	if msg.Addr.Empty() {
		c.mu.Unlock()
		return kvik.LocalMsg{}, kvik.ErrNoGateway
	}
	pm := &pendingMsg{req: *msg, done: make(chan struct{})}
	c.pending[msg.ID] = pm
	c.mu.Unlock()

	c.log.Debugf(logTag, "message (id=%d): %s", msg.ID, msg.String())

	if err := c.ll.Send(*msg); !err.Ok() {
		c.mu.Lock()
		delete(c.pending, msg.ID)
		c.mu.Unlock()
		return kvik.LocalMsg{}, err
	}

	if noResp {
		c.log.Debugf(logTag, "not waiting for response")
		c.mu.Lock()
		delete(c.pending, msg.ID)
		c.mu.Unlock()
		return kvik.LocalMsg{}, kvik.ErrSuccess
	}

	select {
	case <-pm.done:
	case <-time.After(c.conf.Node.LocalDelivery.RespTimeout):
		c.mu.Lock()
		delete(c.pending, msg.ID)
		c.mu.Unlock()
		c.log.Warnf(logTag, "response timeout (id=%d) for: %s", msg.ID, msg.String())
		return kvik.LocalMsg{}, kvik.ErrTimeout
	}

	c.mu.Lock()
	respMsg := pm.resps[0]
	delete(c.pending, msg.ID)
	c.mu.Unlock()

	c.log.Debugf(logTag, "response (id=%d): %s", msg.ID, respMsg.String())
	return respMsg, kvik.ErrSuccess
}

// sendLocalUncheckedBroadcast prepares and sends a broadcast message,
// collecting every response that arrives within the response timeout.
// Send failures are treated as zero responses rather than propagated, the
// same way the reference discovery loop tolerates per-channel send
// failures.
func (c *Client) sendLocalUncheckedBroadcast(msg *kvik.LocalMsg) []kvik.LocalMsg {
	c.mu.Lock()
	c.prepareMsg(msg, true)
	pm := &pendingMsg{req: *msg, broadcast: true}
	c.pending[msg.ID] = pm
	c.mu.Unlock()

	c.log.Debugf(logTag, "broadcast message (id=%d): %s", msg.ID, msg.String())

	if err := c.ll.Send(*msg); !err.Ok() {
		c.mu.Lock()
		delete(c.pending, msg.ID)
		c.mu.Unlock()
		return nil
	}

	time.Sleep(c.conf.Node.LocalDelivery.RespTimeout)

	c.mu.Lock()
	resps := pm.resps
	delete(c.pending, msg.ID)
	c.mu.Unlock()

	for _, r := range resps {
		c.log.Debugf(logTag, "response (id=%d): %s", msg.ID, r.String())
	}

	return resps
}

// prepareMsg fills in the fields common to every outgoing message:
// destination, ID, timestamp and node type. Must be called with mu held.
func (c *Client) prepareMsg(msg *kvik.LocalMsg, broadcast bool) {
	now := time.Duration(time.Now().UnixNano())
	gwTs := now + c.gw.TSDiff

	if broadcast {
		msg.Addr = kvik.LocalAddr{}
	} else {
		msg.Addr = c.gw.Addr
	}
	msg.ID = c.base.NewMsgID()
	msg.TS = uint16(gwTs / c.conf.Node.MsgIDCache.TimeUnit)
	msg.NodeType = kvik.NodeClient
}
