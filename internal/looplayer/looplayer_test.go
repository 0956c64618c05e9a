package looplayer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvikmesh/kvik-go/pkg/kvik"
)

func TestSendRecordsMessage(t *testing.T) {
	l := New()
	msg := kvik.LocalMsg{Type: kvik.MsgProbeReq, ID: 5}

	require.True(t, l.Send(msg).Ok())

	log := l.SentLog()
	require.Len(t, log, 1)
	assert.Equal(t, uint16(5), log[0].ID)
}

func TestSendReturnsConfiguredError(t *testing.T) {
	l := New()
	l.SendErr = kvik.ErrGeneric

	assert.Equal(t, kvik.ErrGeneric, l.Send(kvik.LocalMsg{}))
}

func TestQueuedResponseDeliveredToRecvCb(t *testing.T) {
	l := New()
	l.PeerAddr = kvik.NewLocalAddr([]byte{0xAA})
	l.QueueResponse(kvik.LocalMsg{Type: kvik.MsgOK})

	received := make(chan kvik.LocalMsg, 1)
	l.SetRecvCb(func(msg kvik.LocalMsg) kvik.ErrCode {
		received <- msg
		return kvik.ErrSuccess
	})

	l.Send(kvik.LocalMsg{ID: 42})

	select {
	case resp := <-received:
		assert.Equal(t, uint16(42), resp.ReqID)
		assert.Equal(t, kvik.NodeGateway, resp.NodeType)
		assert.True(t, resp.Addr.Equal(l.PeerAddr))
	case <-time.After(time.Second):
		t.Fatal("response not delivered")
	}
}

func TestSendWithoutQueuedResponseDoesNotCallback(t *testing.T) {
	l := New()
	called := make(chan struct{}, 1)
	l.SetRecvCb(func(msg kvik.LocalMsg) kvik.ErrCode {
		called <- struct{}{}
		return kvik.ErrSuccess
	})

	l.Send(kvik.LocalMsg{ID: 1})

	select {
	case <-called:
		t.Fatal("callback invoked without a queued response")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDeliverUnsolicited(t *testing.T) {
	l := New()
	received := make(chan kvik.LocalMsg, 1)
	l.SetRecvCb(func(msg kvik.LocalMsg) kvik.ErrCode {
		received <- msg
		return kvik.ErrSuccess
	})

	require.True(t, l.Deliver(kvik.LocalMsg{Type: kvik.MsgSubData}).Ok())

	select {
	case msg := <-received:
		assert.Equal(t, kvik.MsgSubData, msg.Type)
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}
}

func TestDeliverWithoutCbReturnsNotFound(t *testing.T) {
	l := New()
	assert.Equal(t, kvik.ErrNotFound, l.Deliver(kvik.LocalMsg{}))
}

func TestSetChannelRecordsChannel(t *testing.T) {
	l := New()
	l.SetChannel(7)
	l.SetChannel(9)

	assert.Equal(t, []uint16{7, 9}, l.ChannelsLog())
}
