package kvik

import "fmt"

// SubData is subscription data delivered to a subscriber: a topic and its
// payload.
type SubData struct {
	Topic   string
	Payload string
}

// String renders the subscription data for logging purposes.
func (d SubData) String() string {
	return fmt.Sprintf("%s: %s", d.Topic, d.Payload)
}

// PubData is data to be published to a topic.
type PubData struct {
	Topic   string
	Payload string
}

// String renders the publication data for logging purposes.
func (d PubData) String() string {
	return fmt.Sprintf("%s: %s", d.Topic, d.Payload)
}

// ToSubData converts published data into subscription data, for when a
// publication is immediately echoed back as a subscription (as the local
// broker does).
func (d PubData) ToSubData() SubData {
	return SubData{Topic: d.Topic, Payload: d.Payload}
}

// SubCb is a subscription callback, invoked with delivered subscription
// data. Callbacks must not assume delivery ordering relative to other
// subscriptions.
type SubCb func(data SubData)

// SubReq is a subscription request: a topic plus the callback to invoke
// when matching data arrives.
type SubReq struct {
	Topic string
	Cb    SubCb
}
