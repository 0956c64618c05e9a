package client

import (
	"time"

	"github.com/kvikmesh/kvik-go/internal/node"
	"github.com/kvikmesh/kvik-go/pkg/kvik"
)

// GatewayDiscoveryConfig controls gateway discovery and rediscovery.
type GatewayDiscoveryConfig struct {
	// DscvMinDelay is how long to wait after the first failed discovery
	// attempt before retrying. The delay doubles on each further failure
	// up to DscvMaxDelay, and resets after a successful discovery.
	DscvMinDelay time.Duration
	DscvMaxDelay time.Duration

	// InitialDscvFailThres is the number of failed discovery attempts
	// during construction considered unrecoverable. Zero means retry
	// indefinitely.
	InitialDscvFailThres uint

	// TrigMsgsFailCnt is how many failed or unresponded messages from the
	// current gateway in a row trigger background rediscovery. Zero and
	// one are equivalent.
	TrigMsgsFailCnt uint16

	// TrigTimeSyncNoRespCnt is the time-sync analog of TrigMsgsFailCnt.
	TrigTimeSyncNoRespCnt uint16
}

// ReportingConfig controls client-initiated reports.
type ReportingConfig struct {
	// RSSIOnGwDscv reports the RSSI of every gateway probe response seen
	// during discovery, to the gateway eventually chosen.
	RSSIOnGwDscv bool
}

// SubDBConfig controls the subscription database.
type SubDBConfig struct {
	// SubLifetime is how long a subscription survives before the client
	// automatically renews it. The gateway's own subscription lifetime
	// must be higher.
	SubLifetime time.Duration
}

// TimeSyncConfig controls periodic time synchronization with the gateway.
type TimeSyncConfig struct {
	// SyncSystemTime sets the host's system clock after a successful sync.
	// Safe on IoT devices with no other time source; normally left off on
	// general-purpose systems that already run NTP.
	SyncSystemTime bool

	// ReprobeGatewayInterval is how often to resynchronize time, which is
	// necessary for replay-attack protection to keep working. SetDefaults
	// replaces a zero value with the default, so automatic reprobing can't
	// be disabled.
	ReprobeGatewayInterval time.Duration
}

// Config is a Client's configuration.
type Config struct {
	Node      node.Config
	GwDscv    GatewayDiscoveryConfig
	Reporting ReportingConfig
	SubDB     SubDBConfig
	TimeSync  TimeSyncConfig

	// Log receives diagnostic output. Defaults to a no-op logger.
	Log kvik.Logger
}

// DefaultConfig returns a Config with the reference implementation's
// defaults.
func DefaultConfig() Config {
	return Config{
		Node: node.DefaultConfig(),
		GwDscv: GatewayDiscoveryConfig{
			DscvMinDelay:          time.Second,
			DscvMaxDelay:          2 * time.Minute,
			InitialDscvFailThres:  5,
			TrigMsgsFailCnt:       5,
			TrigTimeSyncNoRespCnt: 2,
		},
		Reporting: ReportingConfig{
			RSSIOnGwDscv: true,
		},
		SubDB: SubDBConfig{
			SubLifetime: 10 * time.Minute,
		},
		TimeSync: TimeSyncConfig{
			SyncSystemTime:         false,
			ReprobeGatewayInterval: 60 * time.Minute,
		},
	}
}

// Validate reports whether c is usable.
func (c Config) Validate() error {
	return c.Node.Validate()
}

// SetDefaults fills in the zero-value fields of c from DefaultConfig and
// returns c for chaining.
func (c *Config) SetDefaults() *Config {
	def := DefaultConfig()

	if c.GwDscv.DscvMinDelay == 0 {
		c.GwDscv.DscvMinDelay = def.GwDscv.DscvMinDelay
	}
	if c.GwDscv.DscvMaxDelay == 0 {
		c.GwDscv.DscvMaxDelay = def.GwDscv.DscvMaxDelay
	}
	if c.SubDB.SubLifetime == 0 {
		c.SubDB.SubLifetime = def.SubDB.SubLifetime
	}
	if c.TimeSync.ReprobeGatewayInterval == 0 {
		c.TimeSync.ReprobeGatewayInterval = def.TimeSync.ReprobeGatewayInterval
	}
	if c.Node.MsgIDCache.TimeUnit == 0 {
		c.Node.MsgIDCache.TimeUnit = def.Node.MsgIDCache.TimeUnit
	}
	if c.Node.MsgIDCache.MaxAge == 0 {
		c.Node.MsgIDCache.MaxAge = def.Node.MsgIDCache.MaxAge
	}
	if c.Node.LocalDelivery.RespTimeout == 0 {
		c.Node.LocalDelivery.RespTimeout = def.Node.LocalDelivery.RespTimeout
	}
	if c.Node.Reporting.BaseTopic == "" {
		c.Node.Reporting.BaseTopic = def.Node.Reporting.BaseTopic
	}
	if c.Node.Reporting.RSSISubtopic == "" {
		c.Node.Reporting.RSSISubtopic = def.Node.Reporting.RSSISubtopic
	}
	if c.Node.TopicSep.LevelSeparator == "" {
		c.Node.TopicSep.LevelSeparator = def.Node.TopicSep.LevelSeparator
	}
	if c.Node.TopicSep.SingleLevelWildcard == "" {
		c.Node.TopicSep.SingleLevelWildcard = def.Node.TopicSep.SingleLevelWildcard
	}
	if c.Node.TopicSep.MultiLevelWildcard == "" {
		c.Node.TopicSep.MultiLevelWildcard = def.Node.TopicSep.MultiLevelWildcard
	}
	if c.Log == nil {
		c.Log = kvik.NopLogger{}
	}

	return c
}

// WithLocalDelivery sets the node-level local delivery configuration and
// returns c for chaining.
func (c *Config) WithLocalDelivery(localDelivery node.LocalDeliveryConfig) *Config {
	c.Node.LocalDelivery = localDelivery
	return c
}

// WithMsgIDCache sets the node-level message ID cache configuration and
// returns c for chaining.
func (c *Config) WithMsgIDCache(msgIDCache node.MsgIDCacheConfig) *Config {
	c.Node.MsgIDCache = msgIDCache
	return c
}

// WithGatewayDiscovery sets the gateway discovery configuration and
// returns c for chaining.
func (c *Config) WithGatewayDiscovery(gwDscv GatewayDiscoveryConfig) *Config {
	c.GwDscv = gwDscv
	return c
}

// WithReporting sets the reporting configuration and returns c for
// chaining.
func (c *Config) WithReporting(reporting ReportingConfig) *Config {
	c.Reporting = reporting
	return c
}

// WithSubDB sets the subscription database configuration and returns c
// for chaining.
func (c *Config) WithSubDB(subDB SubDBConfig) *Config {
	c.SubDB = subDB
	return c
}

// WithTimeSync sets the time sync configuration and returns c for
// chaining.
func (c *Config) WithTimeSync(timeSync TimeSyncConfig) *Config {
	c.TimeSync = timeSync
	return c
}

// WithLog sets the diagnostic logger and returns c for chaining.
func (c *Config) WithLog(log kvik.Logger) *Config {
	c.Log = log
	return c
}

// RetainedData is a Client's state suitable for retaining across a deep
// sleep cycle and restoring via New, to speed up reconnection.
type RetainedData struct {
	GW                kvik.RetainedLocalPeer
	MsgsFailCnt       uint16
	TimeSyncNoRespCnt uint16
}
