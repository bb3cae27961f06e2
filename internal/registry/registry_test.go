package registry

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGenerateCode_LengthAndAlphabet(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := generateCode()
		require.NoError(t, err)
		require.Len(t, code, codeLength)
		for _, ch := range code {
			assert.True(t, strings.ContainsRune(codeAlphabet, ch),
				"code %q contains %q outside the unambiguous alphabet", code, ch)
		}
	}
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "AB3D9", NormalizeCode("  ab3d9 "))
	assert.Equal(t, "", NormalizeCode("   "))
}

func TestCreateAndLookup_CaseInsensitive(t *testing.T) {
	r := New(10, time.Minute, zap.NewNop())

	rm, err := r.Create("conn-a", "client-a")
	require.NoError(t, err)
	require.NotNil(t, rm)

	assert.Same(t, rm, r.Lookup(rm.Code()))
	assert.Same(t, rm, r.Lookup(strings.ToLower(rm.Code())))
	assert.Nil(t, r.Lookup("ZZZZZ"))
}

func TestLRU_EvictsLeastRecentlyTouched(t *testing.T) {
	r := New(2, time.Minute, zap.NewNop())

	a, err := r.Create("conn-a", "")
	require.NoError(t, err)
	b, err := r.Create("conn-b", "")
	require.NoError(t, err)

	// Touch A after B's creation: B is now the least recently touched.
	r.Touch(a.Code())

	c, err := r.Create("conn-c", "")
	require.NoError(t, err)

	assert.Equal(t, 2, r.Len())
	assert.Nil(t, r.Lookup(b.Code()), "least recently touched room evicted")
	assert.NotNil(t, r.Lookup(a.Code()))
	assert.NotNil(t, r.Lookup(c.Code()))
}

func TestLRU_TouchOrderDecidesEviction(t *testing.T) {
	r := New(2, time.Minute, zap.NewNop())

	a, _ := r.Create("conn-a", "")
	b, _ := r.Create("conn-b", "")
	r.Touch(a.Code())
	r.Touch(b.Code())

	// A is least recently touched now, so A goes.
	_, err := r.Create("conn-c", "")
	require.NoError(t, err)
	assert.Nil(t, r.Lookup(a.Code()))
	assert.NotNil(t, r.Lookup(b.Code()))
}

func TestSweep_ReclaimsEmptyRoomsPastTTL(t *testing.T) {
	clk := time.Now()
	r := New(10, 2*time.Minute, zap.NewNop())
	r.now = func() time.Time { return clk }

	rm, err := r.Create("conn-a", "")
	require.NoError(t, err)
	rm.Leave("conn-a", "", false)

	// Exactly at the TTL the room still survives; reclamation needs
	// strictly longer idleness.
	clk = clk.Add(2 * time.Minute)
	assert.Zero(t, r.Sweep())
	require.NotNil(t, r.Lookup(rm.Code()))

	clk = clk.Add(time.Millisecond)
	assert.Equal(t, 1, r.Sweep())
	assert.Nil(t, r.Lookup(rm.Code()))
}

func TestSweep_NeverReclaimsOccupiedRooms(t *testing.T) {
	clk := time.Now()
	r := New(10, time.Minute, zap.NewNop())
	r.now = func() time.Time { return clk }

	rm, err := r.Create("conn-a", "")
	require.NoError(t, err)

	clk = clk.Add(365 * 24 * time.Hour)
	assert.Zero(t, r.Sweep())
	assert.NotNil(t, r.Lookup(rm.Code()), "occupied room survives regardless of age")
}

func TestSweep_TouchRefreshesIdleClock(t *testing.T) {
	clk := time.Now()
	r := New(10, time.Minute, zap.NewNop())
	r.now = func() time.Time { return clk }

	rm, _ := r.Create("conn-a", "")
	rm.Leave("conn-a", "", false)

	clk = clk.Add(59 * time.Second)
	r.Touch(rm.Code())
	clk = clk.Add(59 * time.Second)
	assert.Zero(t, r.Sweep(), "touch reset the idle window")

	clk = clk.Add(2 * time.Second)
	assert.Equal(t, 1, r.Sweep())
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	r := New(10, time.Nanosecond, zap.NewNop())
	rm, _ := r.Create("conn-a", "")
	rm.Leave("conn-a", "", false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return r.Lookup(rm.Code()) == nil },
		time.Second, 5*time.Millisecond, "sweep loop reclaims the idle room")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}

func TestRemove(t *testing.T) {
	r := New(10, time.Minute, zap.NewNop())
	rm, _ := r.Create("conn-a", "")

	r.Remove(rm.Code())
	assert.Nil(t, r.Lookup(rm.Code()))
	assert.Zero(t, r.Len())
}
