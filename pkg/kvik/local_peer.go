package kvik

import (
	"fmt"
	"time"
)

// PrefUnknown and RSSIUnknown mark a LocalPeer's preference/RSSI field as
// not provided by the local layer protocol.
const (
	PrefUnknown int16 = -1 << 15
	RSSIUnknown int16 = -1 << 15
)

// RetainedAddrCap is the fixed capacity of a RetainedLocalPeer's address.
// Addresses longer than this are truncated when retained.
const RetainedAddrCap = 32

// LocalPeer describes a peer on the local layer: its address plus
// local-layer-specific metadata gathered during discovery or time sync.
//
// Equality considers the address only; Channel, Pref, RSSI and TSDiff are
// additional data that does not participate in peer identity.
type LocalPeer struct {
	Addr    LocalAddr
	Channel uint16
	Pref    int16
	RSSI    int16
	TSDiff  time.Duration
}

// Equal reports whether p and other identify the same peer (by address).
func (p LocalPeer) Equal(other LocalPeer) bool {
	return p.Addr.Equal(other.Addr)
}

// Empty reports whether the peer carries no address.
func (p LocalPeer) Empty() bool {
	return p.Addr.Empty()
}

// String renders the peer for logging purposes.
func (p LocalPeer) String() string {
	s := p.Addr.String()
	if p.Channel != 0 {
		s += fmt.Sprintf(" (channel %d)", p.Channel)
	}
	if p.Pref != 0 {
		s += fmt.Sprintf(" (pref %d)", p.Pref)
	}
	return s
}

// Retain converts a LocalPeer into its fixed-capacity RetainedLocalPeer
// form, suitable for storage across a deep-sleep boundary. The conversion
// is lossy when the address exceeds RetainedAddrCap bytes: the retained
// copy is truncated to the first RetainedAddrCap bytes.
func (p LocalPeer) Retain() RetainedLocalPeer {
	var rlp RetainedLocalPeer

	n := len(p.Addr.Addr)
	if n > RetainedAddrCap {
		n = RetainedAddrCap
	}
	copy(rlp.Addr[:], p.Addr.Addr[:n])
	rlp.AddrLen = uint8(n)
	rlp.Channel = p.Channel

	return rlp
}

// RetainedLocalPeer is a fixed-capacity, pointer-free snapshot of a
// LocalPeer, suitable for storage in RAM that survives deep sleep.
type RetainedLocalPeer struct {
	Addr    [RetainedAddrCap]byte
	AddrLen uint8
	Channel uint16
}

// Unretain restores a LocalPeer from its retained form. Because the
// retained address may be a truncated prefix of the original, the restored
// LocalPeer's address is that truncated prefix, not necessarily the
// original address.
func (r RetainedLocalPeer) Unretain() LocalPeer {
	return LocalPeer{
		Addr:    NewLocalAddr(r.Addr[:r.AddrLen]),
		Channel: r.Channel,
	}
}
