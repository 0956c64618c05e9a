package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvikmesh/kvik-go/internal/looplayer"
	"github.com/kvikmesh/kvik-go/pkg/kvik"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Node.LocalDelivery.RespTimeout = 100 * time.Millisecond
	cfg.Node.MsgIDCache.TimeUnit = 50 * time.Millisecond
	cfg.Node.MsgIDCache.MaxAge = 3
	cfg.GwDscv.DscvMinDelay = 10 * time.Millisecond
	cfg.GwDscv.DscvMaxDelay = 20 * time.Millisecond
	cfg.GwDscv.InitialDscvFailThres = 2
	cfg.Reporting.RSSIOnGwDscv = false
	cfg.SubDB.SubLifetime = time.Hour
	cfg.TimeSync.ReprobeGatewayInterval = time.Hour
	return cfg
}

func newTestLoopLayer(cfg Config, gwAddr kvik.LocalAddr) *looplayer.LoopLayer {
	ll := looplayer.New()
	ll.PeerAddr = gwAddr
	ll.PeerNodeType = kvik.NodeGateway
	ll.RespTimeUnit = cfg.Node.MsgIDCache.TimeUnit
	return ll
}

func currentTimeUnit(unit time.Duration) uint16 {
	return uint16(time.Duration(time.Now().UnixNano()) / unit)
}

// newDiscoveredClient builds a Client whose bootstrap discovery succeeds
// against a single queued PROBE_RES.
func newDiscoveredClient(t *testing.T, cfg Config) (*Client, *looplayer.LoopLayer, kvik.LocalAddr) {
	t.Helper()

	gwAddr := kvik.NewLocalAddr([]byte{0x01, 0x02})
	ll := newTestLoopLayer(cfg, gwAddr)
	ll.QueueResponse(kvik.LocalMsg{Type: kvik.MsgProbeRes, Pref: 10, RSSI: kvik.RSSIUnknown})

	c, err := New(cfg, ll, RetainedData{})
	require.NoError(t, err)

	return c, ll, gwAddr
}

func TestNewDiscoversGateway(t *testing.T) {
	c, ll, gwAddr := newDiscoveredClient(t, testConfig())
	defer c.Close()

	log := ll.SentLog()
	require.Len(t, log, 1, "want exactly one probe request")
	assert.Equal(t, kvik.MsgProbeReq, log[0].Type)
	assert.True(t, log[0].Addr.Empty(), "discovery probe should be broadcast")

	c.mu.Lock()
	gw := c.gw
	c.mu.Unlock()
	assert.True(t, gw.Addr.Equal(gwAddr))
}

func TestNewFailsWithoutGateway(t *testing.T) {
	cfg := testConfig()
	ll := newTestLoopLayer(cfg, kvik.NewLocalAddr([]byte{0xFF}))

	c, err := New(cfg, ll, RetainedData{})
	if err == nil {
		c.Close()
	}
	assert.Error(t, err)
}

func TestNewRejectsNilLocalLayer(t *testing.T) {
	_, err := New(testConfig(), nil, RetainedData{})
	assert.Error(t, err)
}

func TestPublish(t *testing.T) {
	cfg := testConfig()
	c, ll, gwAddr := newDiscoveredClient(t, cfg)
	defer c.Close()

	ll.QueueResponse(kvik.LocalMsg{Type: kvik.MsgOK})

	require.True(t, c.Publish("sensors/living-room/temp", "21.5").Ok())

	log := ll.SentLog()
	last := log[len(log)-1]
	require.Equal(t, kvik.MsgPubSubUnsub, last.Type)
	assert.True(t, last.Addr.Equal(gwAddr))
	require.Len(t, last.Pubs, 1)
	assert.Equal(t, "sensors/living-room/temp", last.Pubs[0].Topic)
	assert.Equal(t, "21.5", last.Pubs[0].Payload)
}

func TestPublishFailResponse(t *testing.T) {
	cfg := testConfig()
	c, ll, _ := newDiscoveredClient(t, cfg)
	defer c.Close()

	ll.QueueResponse(kvik.LocalMsg{Type: kvik.MsgFail, FailReason: kvik.FailProcessingFailed})

	assert.Equal(t, kvik.ErrMsgProcessingFailed, c.Publish("a/b", "x"))
}

func TestSubscribeAndReceiveSubData(t *testing.T) {
	cfg := testConfig()
	c, ll, gwAddr := newDiscoveredClient(t, cfg)
	defer c.Close()

	ll.QueueResponse(kvik.LocalMsg{Type: kvik.MsgOK})

	received := make(chan kvik.SubData, 1)
	require.True(t, c.Subscribe("sensors/+/temp", func(d kvik.SubData) { received <- d }).Ok())

	push := kvik.LocalMsg{
		Type:     kvik.MsgSubData,
		Addr:     gwAddr,
		NodeType: kvik.NodeGateway,
		ID:       9001,
		TS:       currentTimeUnit(cfg.Node.MsgIDCache.TimeUnit),
		SubsData: []kvik.SubData{{Topic: "sensors/kitchen/temp", Payload: "19.8"}},
	}
	require.True(t, ll.Deliver(push).Ok())

	select {
	case d := <-received:
		assert.Equal(t, "sensors/kitchen/temp", d.Topic)
		assert.Equal(t, "19.8", d.Payload)
	case <-time.After(time.Second):
		t.Fatal("subscription callback not invoked")
	}
}

func TestSubDataFromUnknownSenderIgnored(t *testing.T) {
	cfg := testConfig()
	c, ll, _ := newDiscoveredClient(t, cfg)
	defer c.Close()

	ll.QueueResponse(kvik.LocalMsg{Type: kvik.MsgOK})
	received := make(chan kvik.SubData, 1)
	require.True(t, c.Subscribe("a/b", func(d kvik.SubData) { received <- d }).Ok())

	push := kvik.LocalMsg{
		Type:     kvik.MsgSubData,
		Addr:     kvik.NewLocalAddr([]byte{0x99}),
		NodeType: kvik.NodeGateway,
		ID:       9002,
		TS:       currentTimeUnit(cfg.Node.MsgIDCache.TimeUnit),
		SubsData: []kvik.SubData{{Topic: "a/b", Payload: "x"}},
	}
	assert.Equal(t, kvik.ErrMsgUnknownSender, ll.Deliver(push))

	select {
	case d := <-received:
		t.Fatalf("callback invoked for unknown sender: %v", d)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribeAll(t *testing.T) {
	cfg := testConfig()
	c, ll, _ := newDiscoveredClient(t, cfg)
	defer c.Close()

	ll.QueueResponse(kvik.LocalMsg{Type: kvik.MsgOK})
	require.True(t, c.Subscribe("a/b", func(kvik.SubData) {}).Ok())

	ll.QueueResponse(kvik.LocalMsg{Type: kvik.MsgOK})
	require.True(t, c.UnsubscribeAll().Ok())

	c.mu.Lock()
	empty := c.subDB.Empty()
	c.mu.Unlock()
	assert.True(t, empty, "subDB not empty after UnsubscribeAll")
}

func TestRetainAndResume(t *testing.T) {
	cfg := testConfig()
	c1, _, gwAddr := newDiscoveredClient(t, cfg)

	retained := c1.Retain()
	c1.Close()

	require.NotZero(t, retained.GW.AddrLen, "Retain() returned no gateway address")

	ll2 := newTestLoopLayer(cfg, gwAddr)
	ll2.QueueResponse(kvik.LocalMsg{Type: kvik.MsgProbeRes})

	c2, err := New(cfg, ll2, retained)
	require.NoError(t, err)
	defer c2.Close()

	log := ll2.SentLog()
	require.Len(t, log, 1, "want exactly one sync request")
	assert.Equal(t, kvik.MsgProbeReq, log[0].Type)
	assert.False(t, log[0].Addr.Empty(), "resumed sync should be unicast")
}

func TestRSSIReportedAfterDiscovery(t *testing.T) {
	cfg := testConfig()
	cfg.Reporting.RSSIOnGwDscv = true

	gwAddr := kvik.NewLocalAddr([]byte{0x0A})

	ll := newTestLoopLayer(cfg, gwAddr)
	ll.QueueResponse(kvik.LocalMsg{Type: kvik.MsgProbeRes, Pref: 1, RSSI: -40})

	c, err := New(cfg, ll, RetainedData{})
	require.NoError(t, err)
	defer c.Close()

	time.Sleep(50 * time.Millisecond)

	wantTopic := c.base.BuildReportRSSITopic(gwAddr)
	log := ll.SentLog()
	var found bool
	for _, msg := range log {
		if msg.Type == kvik.MsgPubSubUnsub && len(msg.Pubs) == 1 {
			found = true
			assert.Equal(t, wantTopic, msg.Pubs[0].Topic)
			assert.Equal(t, "-40", msg.Pubs[0].Payload)
		}
	}
	assert.True(t, found, "no rssi report published, sent log: %v", log)
}
