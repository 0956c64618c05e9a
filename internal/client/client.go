package client

import (
	"errors"
	"sync"

	"github.com/kvikmesh/kvik-go/internal/ktimer"
	"github.com/kvikmesh/kvik-go/internal/node"
	"github.com/kvikmesh/kvik-go/internal/wildcardtrie"
	"github.com/kvikmesh/kvik-go/pkg/kvik"
	"github.com/kvikmesh/kvik-go/pkg/locallayer"
)

const logTag = "client"

// pendingMsg tracks a sent message awaiting its response(s).
//
// done is closed exactly once when a non-broadcast message's single
// response has arrived; it's left nil for broadcast messages, which
// collect every response that arrives within the response timeout
// instead.
type pendingMsg struct {
	req       kvik.LocalMsg
	broadcast bool
	done      chan struct{}
	resps     []kvik.LocalMsg
}

// Client is the Kvik client node type. All of its exported methods are
// safe for concurrent use.
//
// Locking order, when both are needed, is always dscvSyncMu then mu; mu
// is always released before calling the local layer's Send.
type Client struct {
	conf Config
	ll   locallayer.LocalLayer
	log  kvik.Logger
	base *node.Base

	mu         sync.Mutex
	dscvSyncMu sync.Mutex

	subDB         *wildcardtrie.Trie[kvik.SubCb]
	subDBTimer    *ktimer.Timer
	timeSyncTimer *ktimer.Timer

	gw kvik.LocalPeer

	pending map[uint16]*pendingMsg

	msgsFailCnt        uint16
	timeSyncNoRespCnt  uint16
	ignoreInvalidMsgTs bool

	closeCh     chan struct{}
	gwWdTrigger chan struct{}
	gwWdWg      sync.WaitGroup
}

// New constructs a Client, performing gateway discovery (or, if retained
// carries a usable gateway address, a resume attempt via time sync before
// falling back to full discovery).
//
// ll must remain valid for the Client's entire lifetime. Close must be
// called once the Client is no longer needed.
func New(conf Config, ll locallayer.LocalLayer, retained RetainedData) (*Client, error) {
	if ll == nil {
		return nil, errors.New("client: local layer must not be nil")
	}

	conf.SetDefaults()
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	base, err := node.New(conf.Node)
	if err != nil {
		return nil, err
	}

	subDB, err := wildcardtrie.New[kvik.SubCb](
		conf.Node.TopicSep.LevelSeparator,
		conf.Node.TopicSep.SingleLevelWildcard,
		conf.Node.TopicSep.MultiLevelWildcard,
	)
	if err != nil {
		base.Close()
		return nil, err
	}

	c := &Client{
		conf:               conf,
		ll:                 ll,
		log:                conf.Log,
		base:               base,
		subDB:              subDB,
		pending:            make(map[uint16]*pendingMsg),
		ignoreInvalidMsgTs: true,
		closeCh:            make(chan struct{}),
		gwWdTrigger:        make(chan struct{}, 1),
	}

	c.subDBTimer = ktimer.New(conf.SubDB.SubLifetime, c.subDBTick)
	c.timeSyncTimer = ktimer.New(conf.TimeSync.ReprobeGatewayInterval, func() { _ = c.SyncTime() })

	ll.SetRecvCb(c.recvLocal)

	initialized := c.bootstrap(retained)
	if !initialized {
		ll.SetRecvCb(nil)
		c.subDBTimer.Close()
		c.timeSyncTimer.Close()
		base.Close()
		return nil, errors.New("client: gateway discovery failed")
	}

	c.log.Infof(logTag, "initialized")

	c.mu.Lock()
	c.ignoreInvalidMsgTs = false
	c.mu.Unlock()

	c.gwWdWg.Add(1)
	go c.gwWatchdogHandler()

	return c, nil
}

// bootstrap attempts to resume from retained data, falling back to a full
// gateway discovery. It reports whether the client ended up with a usable
// gateway.
func (c *Client) bootstrap(retained RetainedData) bool {
	if retained.GW.AddrLen > 0 {
		c.gw = retained.GW.Unretain()
		c.msgsFailCnt = retained.MsgsFailCnt
		c.timeSyncNoRespCnt = retained.TimeSyncNoRespCnt

		c.log.Debugf(logTag, "using retained data")

		channelOK := true
		if c.gw.Channel > 0 {
			c.log.Debugf(logTag, "setting local layer channel to %d", c.gw.Channel)
			if err := c.ll.SetChannel(c.gw.Channel); !err.Ok() {
				c.log.Warnf(logTag, "failed to set channel")
				channelOK = false
			}
		}

		if channelOK && c.SyncTime().Ok() {
			c.log.Infof(logTag, "time sync successful, gw: %s", c.gw.String())
			return true
		}

		c.log.Warnf(logTag, "time sync failed, doing gateway discovery")
	}

	if c.DiscoverGateway(c.conf.GwDscv.InitialDscvFailThres).Ok() {
		c.log.Infof(logTag, "gateway discovery successful, new gw: %s", c.gw.String())
		return true
	}

	return false
}

// Close stops the Client's background activity: the gateway watchdog, the
// subscription renewal timer and the time sync timer, and deregisters the
// local layer's receive callback. It blocks until any in-flight discovery
// attempt has wound down.
func (c *Client) Close() {
	close(c.closeCh)

	c.log.Debugf(logTag, "waiting for gateway discovery thread...")
	select {
	case c.gwWdTrigger <- struct{}{}:
	default:
	}
	c.gwWdWg.Wait()

	c.ll.SetRecvCb(nil)

	c.dscvSyncMu.Lock()
	c.mu.Lock()
	c.log.Infof(logTag, "deinitialized")
	c.mu.Unlock()
	c.dscvSyncMu.Unlock()

	c.subDBTimer.Close()
	c.timeSyncTimer.Close()
	c.base.Close()
}

// Retain dumps the Client's state for later resumption via New, e.g.
// across a deep sleep cycle.
func (c *Client) Retain() RetainedData {
	c.mu.Lock()
	defer c.mu.Unlock()

	return RetainedData{
		GW:                c.gw.Retain(),
		MsgsFailCnt:       c.msgsFailCnt,
		TimeSyncNoRespCnt: c.timeSyncNoRespCnt,
	}
}

// triggerGwRediscovery wakes the gateway watchdog if it's idle. Multiple
// triggers before the watchdog wakes up collapse into a single
// rediscovery, mirroring a condition variable's notify_one.
func (c *Client) triggerGwRediscovery() {
	select {
	case c.gwWdTrigger <- struct{}{}:
	default:
	}
}

func (c *Client) gwWatchdogHandler() {
	defer c.gwWdWg.Done()

	select {
	case <-c.closeCh:
		c.log.Debugf(logTag, "cancelled early by destructor call")
		return
	default:
	}

	for {
		select {
		case <-c.gwWdTrigger:
		case <-c.closeCh:
			c.log.Debugf(logTag, "cancelled by destructor call")
			return
		}

		select {
		case <-c.closeCh:
			c.log.Debugf(logTag, "cancelled by destructor call")
			return
		default:
		}

		c.DiscoverGateway(0)
	}
}
