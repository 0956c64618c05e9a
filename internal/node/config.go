package node

import (
	"errors"
	"time"
)

// ErrInvalidMaxAge is returned when a Config's MsgIDCache.MaxAge is zero,
// which would make every received message expire before it could ever be
// deduplicated.
var ErrInvalidMaxAge = errors.New("node: msg id cache max age must be greater than zero")

// LocalDeliveryConfig controls local-layer request/response timing shared
// by PROBE_RES, OK and FAIL responses.
type LocalDeliveryConfig struct {
	// RespTimeout bounds how long a request waits for its response.
	RespTimeout time.Duration
}

// MsgIDCacheConfig controls the duplicate-message-ID cache and doubles as
// the time unit for replay-protected message timestamps.
//
// TimeUnit must be the same value across every communicating node. It must
// be low enough to keep cache size small and high enough that clock drift
// plus transmission delay don't cause false-positive duplicates.
//
// Each cache entry lives between MaxAge and MaxAge+1 time units; a message
// timestamp up to (MaxAge-1)*TimeUnit old is accepted.
type MsgIDCacheConfig struct {
	TimeUnit time.Duration
	MaxAge   uint8
}

// ReportingConfig names the topics used for node-initiated reports.
type ReportingConfig struct {
	BaseTopic    string
	RSSISubtopic string
}

// TopicSeparatorsConfig names the tokens used to delimit and match topic
// levels. All three must be non-empty and pairwise distinct.
type TopicSeparatorsConfig struct {
	LevelSeparator      string
	SingleLevelWildcard string
	MultiLevelWildcard  string
}

// Config is the configuration shared by every node type.
type Config struct {
	LocalDelivery LocalDeliveryConfig
	MsgIDCache    MsgIDCacheConfig
	Reporting     ReportingConfig
	TopicSep      TopicSeparatorsConfig
}

// DefaultConfig returns a Config with the reference implementation's
// defaults.
func DefaultConfig() Config {
	return Config{
		LocalDelivery: LocalDeliveryConfig{
			RespTimeout: 500 * time.Millisecond,
		},
		MsgIDCache: MsgIDCacheConfig{
			TimeUnit: 500 * time.Millisecond,
			MaxAge:   3,
		},
		Reporting: ReportingConfig{
			BaseTopic:    "_report",
			RSSISubtopic: "rssi",
		},
		TopicSep: TopicSeparatorsConfig{
			LevelSeparator:      "/",
			SingleLevelWildcard: "+",
			MultiLevelWildcard:  "#",
		},
	}
}

// Validate reports whether c is usable.
func (c Config) Validate() error {
	if c.MsgIDCache.MaxAge == 0 {
		return ErrInvalidMaxAge
	}
	return nil
}
