package idcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvikmesh/kvik-go/pkg/kvik"
)

func TestInsertDetectsDuplicate(t *testing.T) {
	c := New(time.Hour, 3)
	defer c.Close()

	addr := kvik.NewLocalAddr([]byte{0x01})
	assert.True(t, c.Insert(addr, 42), "first insert reported duplicate")
	assert.False(t, c.Insert(addr, 42), "second insert of same id didn't report duplicate")
	assert.True(t, c.Insert(addr, 43), "different id reported as duplicate")
}

func TestInsertPerAddress(t *testing.T) {
	c := New(time.Hour, 3)
	defer c.Close()

	a1 := kvik.NewLocalAddr([]byte{0x01})
	a2 := kvik.NewLocalAddr([]byte{0x02})

	assert.True(t, c.Insert(a1, 1), "insert for a1 reported duplicate")
	assert.True(t, c.Insert(a2, 1), "same id from a different address reported as duplicate")
}

func TestEntryExpires(t *testing.T) {
	// maxAge 0 means an entry expires on the very next tick after
	// insertion (expiry tick = tickNum + 0 + 1).
	const tick = 5 * time.Millisecond
	c := New(tick, 0)
	defer c.Close()

	addr := kvik.NewLocalAddr([]byte{0x01})
	require.True(t, c.Insert(addr, 1), "first insert reported duplicate")

	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if c.Insert(addr, 1) {
			return // expired and re-inserted cleanly
		}
		time.Sleep(tick)
	}
	t.Fatalf("entry did not expire within deadline")
}
