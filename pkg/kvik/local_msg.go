package kvik

import (
	"fmt"
	"strings"
	"time"
)

// LocalMsgType identifies the kind of LocalMsg being exchanged.
type LocalMsgType uint8

const (
	MsgNone        LocalMsgType = 0x00
	MsgOK          LocalMsgType = 0x01
	MsgFail        LocalMsgType = 0x02
	MsgProbeReq    LocalMsgType = 0x10
	MsgProbeRes    LocalMsgType = 0x11
	MsgPubSubUnsub LocalMsgType = 0x20
	MsgSubData     LocalMsgType = 0x21
)

func (t LocalMsgType) String() string {
	switch t {
	case MsgNone:
		return "NONE"
	case MsgOK:
		return "OK"
	case MsgFail:
		return "FAIL"
	case MsgProbeReq:
		return "PROBE_REQ"
	case MsgProbeRes:
		return "PROBE_RES"
	case MsgPubSubUnsub:
		return "PUB_SUB_UNSUB"
	case MsgSubData:
		return "SUB_DATA"
	default:
		return "INVALID"
	}
}

// LocalMsgFailReason explains why a FAIL response was sent. The Kvik wire
// format originally shipped an earlier revision with only FailNone; this
// module uses the fuller enumeration per the documented resolution of that
// ambiguity.
type LocalMsgFailReason uint8

const (
	FailNone             LocalMsgFailReason = 0x00
	FailDupID            LocalMsgFailReason = 0x01
	FailInvalidTS        LocalMsgFailReason = 0x02
	FailProcessingFailed LocalMsgFailReason = 0x03
	FailUnknownSender    LocalMsgFailReason = 0x04
)

func (r LocalMsgFailReason) String() string {
	switch r {
	case FailNone:
		return "NONE"
	case FailDupID:
		return "DUP_ID"
	case FailInvalidTS:
		return "INVALID_TS"
	case FailProcessingFailed:
		return "PROCESSING_FAILED"
	case FailUnknownSender:
		return "UNKNOWN_SENDER"
	default:
		return "INVALID"
	}
}

// RSSIUnknownMsg is the RSSI "unknown" sentinel used inside LocalMsg.
const RSSIUnknownMsg int16 = RSSIUnknown

// LocalMsg is the union record exchanged between a node and its local
// layer. Which fields are populated depends on Type.
//
// Equal deliberately compares only (Type, Addr, RelayedAddr, Pubs, Subs,
// Unsubs, SubsData): the auxiliary fields (ID, TS, ReqID, FailReason, RSSI,
// Pref, TSDiff) are per-send metadata, not part of the message's "intent",
// and are excluded so tests can compare messages independent of it.
type LocalMsg struct {
	Type        LocalMsgType
	Addr        LocalAddr
	RelayedAddr LocalAddr
	Pubs        []PubData
	Subs        []string
	Unsubs      []string
	SubsData    []SubData

	ID         uint16
	TS         uint16
	ReqID      uint16
	NodeType   NodeType
	FailReason LocalMsgFailReason
	RSSI       int16
	Pref       int16
	TSDiff     time.Duration
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func pubDataSlicesEqual(a, b []PubData) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func subDataSlicesEqual(a, b []SubData) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Equal reports whether msg and other carry the same intent, ignoring
// per-send metadata. See the LocalMsg docstring for the exact field list.
func (msg LocalMsg) Equal(other LocalMsg) bool {
	return msg.Type == other.Type &&
		msg.Addr.Equal(other.Addr) &&
		msg.RelayedAddr.Equal(other.RelayedAddr) &&
		pubDataSlicesEqual(msg.Pubs, other.Pubs) &&
		stringSlicesEqual(msg.Subs, other.Subs) &&
		stringSlicesEqual(msg.Unsubs, other.Unsubs) &&
		subDataSlicesEqual(msg.SubsData, other.SubsData)
}

// String renders the message for logging purposes.
func (msg LocalMsg) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s from=%s id=%d ts=%d reqId=%d nodeType=%s",
		msg.Type, msg.Addr.String(), msg.ID, msg.TS, msg.ReqID, msg.NodeType)
	if msg.Type == MsgFail {
		fmt.Fprintf(&b, " failReason=%s", msg.FailReason)
	}
	if len(msg.Pubs) > 0 {
		fmt.Fprintf(&b, " pubs=%v", msg.Pubs)
	}
	if len(msg.Subs) > 0 {
		fmt.Fprintf(&b, " subs=%v", msg.Subs)
	}
	if len(msg.Unsubs) > 0 {
		fmt.Fprintf(&b, " unsubs=%v", msg.Unsubs)
	}
	if len(msg.SubsData) > 0 {
		fmt.Fprintf(&b, " subsData=%v", msg.SubsData)
	}
	return b.String()
}
