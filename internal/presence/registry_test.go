package presence

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu     sync.Mutex
	events []string
}

func (c *fakeConn) Send(event string, data any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event+":"+data.(string))
	return nil
}

func (c *fakeConn) Events() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.events))
	copy(out, c.events)
	return out
}

func TestRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	conn := &fakeConn{}

	r.Register("alice", conn)

	assert.True(t, r.IsOnline("alice"))
	got, found := r.Lookup("alice")
	require.True(t, found)
	assert.Same(t, conn, got.(*fakeConn))
}

func TestLookupUnknownIsAbsent(t *testing.T) {
	r := NewRegistry()

	_, found := r.Lookup("nobody")
	assert.False(t, found)
	assert.False(t, r.IsOnline("nobody"))
}

func TestUnregisterRemovesMapping(t *testing.T) {
	r := NewRegistry()
	conn := &fakeConn{}

	r.Register("alice", conn)
	r.Unregister("alice", conn)

	assert.False(t, r.IsOnline("alice"))
	_, found := r.Lookup("alice")
	assert.False(t, found)
}

func TestRepeatedRegisterLatestWins(t *testing.T) {
	r := NewRegistry()
	first := &fakeConn{}
	second := &fakeConn{}

	r.Register("alice", first)
	r.Register("alice", second)

	got, found := r.Lookup("alice")
	require.True(t, found)
	assert.Same(t, second, got.(*fakeConn))
	assert.Len(t, r.Online(), 1)
}

func TestStaleUnregisterKeepsNewerConnection(t *testing.T) {
	r := NewRegistry()
	first := &fakeConn{}
	second := &fakeConn{}

	r.Register("alice", first)
	r.Register("alice", second)
	// the old connection's disconnect arrives after the replacement
	r.Unregister("alice", first)

	assert.True(t, r.IsOnline("alice"))
	got, _ := r.Lookup("alice")
	assert.Same(t, second, got.(*fakeConn))
}

func TestRegisterBroadcastsOnlineToOthers(t *testing.T) {
	r := NewRegistry()
	aliceConn := &fakeConn{}
	bobConn := &fakeConn{}

	r.Register("alice", aliceConn)
	r.Register("bob", bobConn)

	assert.Contains(t, aliceConn.Events(), "userOnline:bob")
	// a connection never hears about its own arrival
	assert.NotContains(t, bobConn.Events(), "userOnline:bob")
}

func TestUnregisterBroadcastsOfflineToOthers(t *testing.T) {
	r := NewRegistry()
	aliceConn := &fakeConn{}
	bobConn := &fakeConn{}

	r.Register("alice", aliceConn)
	r.Register("bob", bobConn)
	r.Unregister("bob", bobConn)

	assert.Contains(t, aliceConn.Events(), "userOffline:bob")
}

func TestOnlineSnapshot(t *testing.T) {
	r := NewRegistry()

	r.Register("alice", &fakeConn{})
	r.Register("bob", &fakeConn{})

	assert.ElementsMatch(t, []string{"alice", "bob"}, r.Online())
}
