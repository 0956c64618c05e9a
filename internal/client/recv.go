package client

import "github.com/kvikmesh/kvik-go/pkg/kvik"

// recvLocal is registered as the local layer's receive callback.
func (c *Client) recvLocal(msg kvik.LocalMsg) kvik.ErrCode {
	if msg.NodeType != kvik.NodeGateway && msg.NodeType != kvik.NodeRelay {
		c.log.Debugf(logTag, "received message from invalid node type: %s", msg.String())
		return kvik.ErrInvalidArg
	}

	switch msg.Type {
	case kvik.MsgOK, kvik.MsgFail, kvik.MsgProbeRes:
		return c.recvLocalResp(msg)
	case kvik.MsgSubData:
		return c.recvLocalSubData(msg)
	default:
		c.log.Warnf(logTag, "received unknown message: %s", msg.String())
		return kvik.ErrInvalidArg
	}
}

// recvLocalResp matches an incoming response against its pending request
// and, once matched, wakes whoever is waiting on it.
func (c *Client) recvLocalResp(msg kvik.LocalMsg) kvik.ErrCode {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.base.ValidateMsgID(msg.Addr, msg.ID) {
		c.log.Debugf(logTag, "discarding response with duplicate id: %s", msg.String())
		return kvik.ErrMsgDupID
	}

	if !c.ignoreInvalidMsgTs && !c.base.ValidateMsgTimestamp(msg.TS, c.gw.TSDiff) {
		c.log.Debugf(logTag, "discarding response with invalid timestamp: %s", msg.String())
		return kvik.ErrMsgInvalidTS
	}

	pm, ok := c.pending[msg.ReqID]
	if !ok {
		c.log.Debugf(logTag, "discarding response for non-existing request: %s", msg.String())
		return kvik.ErrNotFound
	}

	if !pm.broadcast && !pm.req.Addr.Equal(msg.Addr) {
		c.log.Debugf(logTag, "discarding response from different address: %s", msg.String())
		return kvik.ErrMsgUnknownSender
	}

	pendingType := pm.req.Type
	valid := (msg.Type == kvik.MsgOK && pendingType == kvik.MsgPubSubUnsub) ||
		(msg.Type == kvik.MsgFail && pendingType == kvik.MsgProbeReq) ||
		(msg.Type == kvik.MsgFail && pendingType == kvik.MsgPubSubUnsub) ||
		(msg.Type == kvik.MsgProbeRes && pendingType == kvik.MsgProbeReq)

	if !valid {
		c.log.Debugf(logTag, "response of type %s is invalid for request of type %s", msg.Type, pendingType)
		return kvik.ErrInvalidArg
	}

	pm.resps = append(pm.resps, msg)
	if !pm.broadcast {
		select {
		case <-pm.done:
			// Already notified; a second valid response for the same
			// request shouldn't happen, but don't double-close.
		default:
			close(pm.done)
		}
	}

	return kvik.ErrSuccess
}

// recvLocalSubData handles an incoming batch of subscription data,
// acknowledges it, and dispatches each item to every subscriber whose
// pattern matches.
func (c *Client) recvLocalSubData(msg kvik.LocalMsg) kvik.ErrCode {
	c.log.Debugf(logTag, "received subscriptions data: %s", msg.String())

	c.mu.Lock()
	msgIDValid := c.base.ValidateMsgID(msg.Addr, msg.ID)
	msgTSValid := c.base.ValidateMsgTimestamp(msg.TS, c.gw.TSDiff)
	senderValid := msg.Addr.Equal(c.gw.Addr)
	c.mu.Unlock()

	if !msgIDValid || !msgTSValid {
		c.log.Debugf(logTag, "message is invalid, discarding: %s", msg.String())
		if !msgIDValid {
			return kvik.ErrMsgDupID
		}
		return kvik.ErrMsgInvalidTS
	}

	if !senderValid {
		c.log.Debugf(logTag, "discarding data from unknown sender: %s", msg.String())
		return kvik.ErrMsgUnknownSender
	}

	ack := kvik.LocalMsg{Type: kvik.MsgOK}
	c.sendLocalUnchecked(&ack, true)

	for _, subData := range msg.SubsData {
		c.mu.Lock()
		entries := c.subDB.Find(subData.Topic)
		c.mu.Unlock()

		for topic, cb := range entries {
			c.log.Debugf(logTag, "calling user callback for topic '%s'", topic)
			cb(subData)
		}
	}

	return kvik.ErrSuccess
}
