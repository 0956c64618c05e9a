package kvik

import (
	"bytes"
	"encoding/hex"
)

// LocalAddr is an opaque byte-exact identifier of a peer on the local layer.
// Equality is byte-exact; the string form is lowercase hex with no
// delimiter.
type LocalAddr struct {
	Addr []byte
}

// NewLocalAddr copies b into a new LocalAddr.
func NewLocalAddr(b []byte) LocalAddr {
	cp := make([]byte, len(b))
	copy(cp, b)
	return LocalAddr{Addr: cp}
}

// Equal reports whether a and other have byte-identical addresses.
func (a LocalAddr) Equal(other LocalAddr) bool {
	return bytes.Equal(a.Addr, other.Addr)
}

// Empty reports whether the address carries no bytes.
func (a LocalAddr) Empty() bool {
	return len(a.Addr) == 0
}

// String renders the address as lowercase hex with no delimiter.
func (a LocalAddr) String() string {
	return hex.EncodeToString(a.Addr)
}
