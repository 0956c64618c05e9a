package client

import "github.com/kvikmesh/kvik-go/pkg/kvik"

// PubSubUnsubBulk publishes, subscribes to and unsubscribes from topics
// in a single request/response round trip.
func (c *Client) PubSubUnsubBulk(pubs []kvik.PubData, subs []kvik.SubReq, unsubs []string) kvik.ErrCode {
	if len(pubs) == 0 && len(subs) == 0 && len(unsubs) == 0 {
		return kvik.ErrSuccess
	}

	msg := kvik.LocalMsg{
		Type:   kvik.MsgPubSubUnsub,
		Pubs:   append([]kvik.PubData{}, pubs...),
		Unsubs: append([]string{}, unsubs...),
	}
	for _, s := range subs {
		msg.Subs = append(msg.Subs, s.Topic)
	}

	respMsg, err := c.sendLocal(&msg)
	if !err.Ok() {
		return err
	}
	if respMsg.Type != kvik.MsgOK {
		c.log.Warnf(logTag, "received non-OK response")
		return kvik.ErrMsgProcessingFailed
	}

	c.mu.Lock()
	for _, topic := range unsubs {
		if !c.subDB.Remove(topic) {
			c.log.Debugf(logTag, "can't unsubscribe from not-subscribed topic '%s'", topic)
		}
	}
	for _, s := range subs {
		c.subDB.Insert(s.Topic, s.Cb)
	}
	c.mu.Unlock()

	return kvik.ErrSuccess
}

// Publish publishes a single item of data.
func (c *Client) Publish(topic, payload string) kvik.ErrCode {
	return c.PublishData(kvik.PubData{Topic: topic, Payload: payload})
}

// PublishData publishes a single PubData.
func (c *Client) PublishData(pub kvik.PubData) kvik.ErrCode {
	return c.PubSubUnsubBulk([]kvik.PubData{pub}, nil, nil)
}

// PublishBulk publishes every item of pubs in a single round trip.
func (c *Client) PublishBulk(pubs []kvik.PubData) kvik.ErrCode {
	return c.PubSubUnsubBulk(pubs, nil, nil)
}

// Subscribe subscribes to topic, invoking cb for every matching item of
// subscription data received.
func (c *Client) Subscribe(topic string, cb kvik.SubCb) kvik.ErrCode {
	return c.SubscribeBulk([]kvik.SubReq{{Topic: topic, Cb: cb}})
}

// SubscribeBulk subscribes to every request in subs in a single round trip.
func (c *Client) SubscribeBulk(subs []kvik.SubReq) kvik.ErrCode {
	return c.PubSubUnsubBulk(nil, subs, nil)
}

// Unsubscribe unsubscribes from topic.
func (c *Client) Unsubscribe(topic string) kvik.ErrCode {
	return c.UnsubscribeBulk([]string{topic})
}

// UnsubscribeBulk unsubscribes from every topic in topics in a single
// round trip.
func (c *Client) UnsubscribeBulk(topics []string) kvik.ErrCode {
	return c.PubSubUnsubBulk(nil, nil, topics)
}

// UnsubscribeAll unsubscribes from every currently subscribed topic.
func (c *Client) UnsubscribeAll() kvik.ErrCode {
	msg := kvik.LocalMsg{Type: kvik.MsgPubSubUnsub}

	c.mu.Lock()
	c.subDB.ForEach(func(topic string, _ kvik.SubCb) {
		msg.Unsubs = append(msg.Unsubs, topic)
	})
	c.mu.Unlock()

	if len(msg.Unsubs) == 0 {
		return kvik.ErrSuccess
	}

	respMsg, err := c.sendLocal(&msg)
	if !err.Ok() {
		return err
	}
	if respMsg.Type != kvik.MsgOK {
		c.log.Warnf(logTag, "received non-OK response")
		return kvik.ErrMsgProcessingFailed
	}

	c.mu.Lock()
	c.subDB.Clear()
	c.mu.Unlock()

	return kvik.ErrSuccess
}

// ResubscribeAll re-requests every currently subscribed topic from the
// gateway, without modifying the local subscription database.
func (c *Client) ResubscribeAll() kvik.ErrCode {
	msg := kvik.LocalMsg{Type: kvik.MsgPubSubUnsub}

	c.mu.Lock()
	c.subDB.ForEach(func(topic string, _ kvik.SubCb) {
		msg.Subs = append(msg.Subs, topic)
	})
	c.mu.Unlock()

	if len(msg.Subs) == 0 {
		return kvik.ErrSuccess
	}

	respMsg, err := c.sendLocal(&msg)
	if !err.Ok() {
		return err
	}
	if respMsg.Type != kvik.MsgOK {
		c.log.Warnf(logTag, "received non-OK response")
		return kvik.ErrMsgProcessingFailed
	}

	return kvik.ErrSuccess
}

// subDBTick is the subscription database timer's callback: it renews
// every subscription before its lease expires at the gateway.
func (c *Client) subDBTick() {
	c.log.Debugf(logTag, "renewal running")

	msg := kvik.LocalMsg{Type: kvik.MsgPubSubUnsub}
	c.mu.Lock()
	c.subDB.ForEach(func(topic string, _ kvik.SubCb) {
		msg.Subs = append(msg.Subs, topic)
	})
	c.mu.Unlock()

	if len(msg.Subs) == 0 {
		c.log.Debugf(logTag, "nothing to renew")
		return
	}

	respMsg, err := c.sendLocal(&msg)
	if !err.Ok() {
		c.log.Warnf(logTag, "error while sending the message")
	}
	if respMsg.Type != kvik.MsgOK {
		c.log.Warnf(logTag, "received non-OK response")
	}

	c.log.Debugf(logTag, "renewal done")
}
