package client

import (
	"strconv"
	"time"

	"github.com/kvikmesh/kvik-go/pkg/kvik"
)

// DiscoverGateway probes for a gateway on every channel the local layer
// supports (or once on the default channel, if it supports none),
// repeating with exponential backoff up to maxAttempts times (0 means
// unlimited). It returns ErrSuccess as soon as a gateway responds, and
// ErrTooManyFailedAttempts once maxAttempts is exhausted.
//
// A Close call in progress interrupts the backoff sleep and returns
// ErrSuccess with no gateway set, matching destruction-during-discovery
// semantics.
func (c *Client) DiscoverGateway(maxAttempts uint) kvik.ErrCode {
	var attemptsCnt uint
	delay := c.conf.GwDscv.DscvMinDelay

	c.log.Debugf(logTag, "started, max attempts %d", maxAttempts)

	for maxAttempts == 0 || attemptsCnt < maxAttempts {
		c.log.Debugf(logTag, "attempt %d started", attemptsCnt+1)

		if c.discoverGatewayAttempt() {
			c.log.Debugf(logTag, "attempt %d successful", attemptsCnt+1)
			return kvik.ErrSuccess
		}

		c.log.Debugf(logTag, "attempt %d failed", attemptsCnt+1)

		select {
		case <-time.After(delay):
		case <-c.closeCh:
			c.log.Debugf(logTag, "cancelled by destructor call")
			return kvik.ErrSuccess
		}

		delay *= 2
		if delay > c.conf.GwDscv.DscvMaxDelay {
			delay = c.conf.GwDscv.DscvMaxDelay
		}
		attemptsCnt++
	}

	c.log.Warnf(logTag, "gateway discovery failed after %d attempts", attemptsCnt)
	return kvik.ErrTooManyFailedAttempts
}

// discoverGatewayAttempt runs a single discovery attempt across every
// channel and reports whether a gateway was found.
func (c *Client) discoverGatewayAttempt() bool {
	c.dscvSyncMu.Lock()
	defer c.dscvSyncMu.Unlock()

	c.mu.Lock()
	c.ignoreInvalidMsgTs = true
	c.mu.Unlock()

	bestGw := kvik.LocalPeer{Pref: kvik.PrefUnknown}
	var allResponses []kvik.LocalMsg

	channels := c.ll.Channels()
	msg := kvik.LocalMsg{Type: kvik.MsgProbeReq}

	if len(channels) == 0 {
		c.log.Debugf(logTag, "probing default channel")
		allResponses = append(allResponses, c.processGatewayDiscoveryResponses(msg, &bestGw, 0)...)
	} else {
		for _, ch := range channels {
			if err := c.ll.SetChannel(ch); !err.Ok() {
				c.log.Warnf(logTag, "can't set channel %d, skipping it", ch)
				continue
			}
			c.log.Debugf(logTag, "probing channel %d", ch)
			allResponses = append(allResponses, c.processGatewayDiscoveryResponses(msg, &bestGw, ch)...)
		}
	}

	c.mu.Lock()
	c.ignoreInvalidMsgTs = false
	c.mu.Unlock()

	if bestGw.Empty() {
		c.mu.Lock()
		c.gw = kvik.LocalPeer{}
		c.mu.Unlock()
		return false
	}

	c.mu.Lock()
	if len(channels) != 0 {
		c.ll.SetChannel(bestGw.Channel)
	}
	c.gw = bestGw
	c.msgsFailCnt = 0
	c.timeSyncNoRespCnt = 0
	c.mu.Unlock()

	c.log.Infof(logTag, "using new gateway: %s", bestGw.String())

	if c.conf.Reporting.RSSIOnGwDscv {
		c.reportDiscoveryRSSI(allResponses)
	}

	return true
}

// processGatewayDiscoveryResponses broadcasts a PROBE_REQ on the current
// channel, updates bestGw if any response beats it on preference, and
// returns every response received for RSSI-reporting purposes.
func (c *Client) processGatewayDiscoveryResponses(msg kvik.LocalMsg, bestGw *kvik.LocalPeer, channel uint16) []kvik.LocalMsg {
	responses := c.sendLocalUncheckedBroadcast(&msg)

	for _, resp := range responses {
		if resp.Pref > bestGw.Pref {
			bestGw.Addr = resp.Addr
			bestGw.Channel = channel
			bestGw.Pref = resp.Pref
			bestGw.TSDiff = resp.TSDiff
		}
	}

	return responses
}

// reportDiscoveryRSSI publishes, to the gateway just selected, one
// PubData per discovery response that carried a finite RSSI reading —
// the peer's own perceived signal strength towards this client.
func (c *Client) reportDiscoveryRSSI(responses []kvik.LocalMsg) {
	var pubs []kvik.PubData

	for _, resp := range responses {
		if resp.RSSI == kvik.RSSIUnknown {
			continue
		}
		pubs = append(pubs, kvik.PubData{
			Topic:   c.base.BuildReportRSSITopic(resp.Addr),
			Payload: strconv.Itoa(int(resp.RSSI)),
		})
	}

	if len(pubs) == 0 {
		return
	}

	c.log.Debugf(logTag, "reporting rssi of %d probed peers", len(pubs))

	msg := kvik.LocalMsg{Type: kvik.MsgPubSubUnsub, Pubs: pubs}
	c.sendLocalUnchecked(&msg, true)
}

// SyncTime synchronizes time with the current gateway. It also
// reschedules the background periodic sync to now +
// ReprobeGatewayInterval, postponing any already-scheduled run.
func (c *Client) SyncTime() kvik.ErrCode {
	c.dscvSyncMu.Lock()
	defer c.dscvSyncMu.Unlock()

	c.log.Debugf(logTag, "started")

	c.timeSyncTimer.SetNextExec(time.Now().Add(c.conf.TimeSync.ReprobeGatewayInterval))

	msg := kvik.LocalMsg{Type: kvik.MsgProbeReq}
	respMsg, err := c.sendLocal(&msg)
	if !err.Ok() {
		c.log.Warnf(logTag, "send failed")
		return c.onSyncTimeFailure(err)
	}
	if respMsg.Type != kvik.MsgProbeRes {
		c.log.Warnf(logTag, "received invalid response")
		return c.onSyncTimeFailure(kvik.ErrMsgProcessingFailed)
	}

	if c.conf.TimeSync.SyncSystemTime {
		now := time.Duration(time.Now().UnixNano()) + respMsg.TSDiff
		if err := setSystemTime(time.Unix(0, int64(now))); err != nil {
			c.log.Errorf(logTag, "set system time failed: %v", err)
		} else {
			c.log.Infof(logTag, "set current timestamp: %d ms", now.Milliseconds())
		}
	}

	c.mu.Lock()
	c.gw.TSDiff = respMsg.TSDiff
	c.timeSyncNoRespCnt = 0
	c.log.Debugf(logTag, "successful (tsDiff=%s)", c.gw.TSDiff)
	c.mu.Unlock()

	return kvik.ErrSuccess
}

func (c *Client) onSyncTimeFailure(err kvik.ErrCode) kvik.ErrCode {
	c.mu.Lock()
	c.timeSyncNoRespCnt++
	trig := c.conf.GwDscv.TrigTimeSyncNoRespCnt == 0 ||
		c.timeSyncNoRespCnt >= c.conf.GwDscv.TrigTimeSyncNoRespCnt
	c.mu.Unlock()

	if trig {
		c.log.Warnf(logTag, "too many failed time syncs, triggering background gateway discovery")
		c.triggerGwRediscovery()
	}

	return err
}
