package node

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/kvikmesh/kvik-go/internal/idcache"
	"github.com/kvikmesh/kvik-go/pkg/kvik"
)

// Base implements the behavior common to every Kvik node type: message ID
// generation and duplicate detection, timestamp validation, and the RSSI
// report topic builder. Concrete node types (internal/client) hold one.
type Base struct {
	conf Config

	msgID uint16
	cache *idcache.Cache
}

// New constructs a Base. The returned Base's Close must be called once
// it's no longer needed, to stop its background eviction timer.
func New(conf Config) (*Base, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	seed, err := randomUint16()
	if err != nil {
		return nil, fmt.Errorf("node: seeding message id: %w", err)
	}

	return &Base{
		conf:  conf,
		msgID: seed,
		cache: idcache.New(conf.MsgIDCache.TimeUnit, conf.MsgIDCache.MaxAge),
	}, nil
}

// Close stops the Base's background duplicate-ID eviction timer.
func (b *Base) Close() {
	b.cache.Close()
}

// NewMsgID returns the next outgoing message ID. IDs are drawn from a
// randomly seeded counter that wraps around uint16.
func (b *Base) NewMsgID() uint16 {
	id := b.msgID
	b.msgID++
	return id
}

// ValidateMsgID reports whether id hasn't been seen before from addr,
// recording it as seen if so.
func (b *Base) ValidateMsgID(addr kvik.LocalAddr, id uint16) bool {
	return b.cache.Insert(addr, id)
}

// ValidateMsgTimestamp reports whether ts falls in the accepted window
// ending at the current time unit (adjusted by tsDiff, the peer's clock
// offset from ours) and extending MaxAge-1 time units into the past.
//
// Arithmetic is done entirely in wrapping uint16 space: since both ts and
// the current time unit wrap at the same modulus, a plain unsigned
// subtraction yields the correct circular distance without any special
// casing around the wraparound point.
func (b *Base) ValidateMsgTimestamp(ts uint16, tsDiff time.Duration) bool {
	now := b.nowTimeUnits(tsDiff)
	age := now - ts // wraps, equivalent to modular distance
	return age <= uint16(b.conf.MsgIDCache.MaxAge-1)
}

func (b *Base) nowTimeUnits(tsDiff time.Duration) uint16 {
	elapsed := time.Duration(time.Now().UnixNano()) + tsDiff
	return uint16(elapsed / b.conf.MsgIDCache.TimeUnit)
}

// BuildReportRSSITopic builds the topic a node publishes addr's RSSI
// reading to: "{baseTopic}/{rssiSubtopic}/{lowercase-hex-addr}".
func (b *Base) BuildReportRSSITopic(addr kvik.LocalAddr) string {
	sep := b.conf.TopicSep.LevelSeparator
	return b.conf.Reporting.BaseTopic + sep + b.conf.Reporting.RSSISubtopic + sep + addr.String()
}

func randomUint16() (uint16, error) {
	var buf [2]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}
