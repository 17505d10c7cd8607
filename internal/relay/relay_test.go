package relay

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRelayBroadcastExcludesSender(t *testing.T) {
	r := newTestRelay(t)

	alice := admit(t, r)
	bob := admit(t, r)

	r.events <- Event{Type: EventRename, Client: bob, Text: "bob"}
	r.events <- Event{Type: EventChat, Client: bob, Text: "hi"}

	require.Equal(t, "[bob] hi", waitForLine(t, alice.Out))

	select {
	case line := <-bob.Out:
		t.Fatalf("sender should not receive its own message, got %q", line)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRelayOperatorBroadcastReachesEveryone(t *testing.T) {
	r := newTestRelay(t)

	alice := admit(t, r)
	bob := admit(t, r)

	r.events <- Event{Type: EventOperator, Text: "hi"}

	require.Equal(t, "[server] hi", waitForLine(t, alice.Out))
	require.Equal(t, "[server] hi", waitForLine(t, bob.Out))
}

func TestRelayDefaultNamesAreUnique(t *testing.T) {
	r := newTestRelay(t)

	alice := admit(t, r)
	bob := admit(t, r)
	carol := admit(t, r)

	r.events <- Event{Type: EventChat, Client: bob, Text: "one"}
	r.events <- Event{Type: EventChat, Client: carol, Text: "two"}

	require.Equal(t, "[anon2] one", waitForLine(t, alice.Out))
	require.Equal(t, "[anon3] two", waitForLine(t, alice.Out))
}

func TestRelayRenameRejectionNotifiesOnlyRequester(t *testing.T) {
	r := newTestRelay(t)

	alice := admit(t, r)
	bob := admit(t, r)

	r.events <- Event{Type: EventRename, Client: bob, Text: ""}

	require.Equal(t, "Name cannot be empty", waitForLine(t, bob.Out))

	// The rejected rename leaves the stored name untouched and was not
	// broadcast: alice's next delivery is bob's chat under the default name.
	r.events <- Event{Type: EventChat, Client: bob, Text: "still me"}
	require.Equal(t, "[anon2] still me", waitForLine(t, alice.Out))
}

func TestRelayRenameSanitizesBrackets(t *testing.T) {
	r := newTestRelay(t)

	alice := admit(t, r)
	bob := admit(t, r)

	r.events <- Event{Type: EventRename, Client: bob, Text: "a[b]c"}
	r.events <- Event{Type: EventChat, Client: bob, Text: "hi"}

	require.Equal(t, "[abc] hi", waitForLine(t, alice.Out))
}

// Naming and broadcast are independent per-slot state: one client's
// rename never changes another client's attribution.
func TestRelayRenameDoesNotAffectOtherEntries(t *testing.T) {
	r := newTestRelay(t)

	alice := admit(t, r)
	bob := admit(t, r)
	carol := admit(t, r)

	r.events <- Event{Type: EventRename, Client: bob, Text: "carol"}
	r.events <- Event{Type: EventChat, Client: carol, Text: "hello"}

	require.Equal(t, "[anon3] hello", waitForLine(t, alice.Out))
	require.Equal(t, "[anon3] hello", waitForLine(t, bob.Out))
}

func TestRelayEvictIsIdempotent(t *testing.T) {
	r := newTestRelay(t)

	alice := admit(t, r)
	bob := admit(t, r)

	r.events <- Event{Type: EventEvict, Client: bob}
	r.events <- Event{Type: EventEvict, Client: bob}

	// The relay is still alive and serving the remaining client.
	r.events <- Event{Type: EventOperator, Text: "ping"}
	require.Equal(t, "[server] ping", waitForLine(t, alice.Out))

	_, ok := <-bob.Out
	require.False(t, ok, "evicted client's outbound channel should be closed")
}

func TestRelayEvictedClientStopsReceiving(t *testing.T) {
	r := newTestRelay(t)

	alice := admit(t, r)
	bob := admit(t, r)

	r.events <- Event{Type: EventEvict, Client: alice}
	r.events <- Event{Type: EventChat, Client: bob, Text: "anyone?"}

	// Drain until closure; no chat line may arrive after eviction.
	deadline := time.After(time.Second)
	for {
		select {
		case line, ok := <-alice.Out:
			if !ok {
				return
			}
			require.NotContains(t, line, "anyone?")
		case <-deadline:
			t.Fatal("timeout waiting for channel closure")
		}
	}
}

func TestRelayShutdownEvictsEveryone(t *testing.T) {
	r := NewRelay(128, nil)
	go r.Run()

	alice := admit(t, r)
	bob := admit(t, r)

	r.Stop()
	r.Wait()

	for _, c := range []*Client{alice, bob} {
		drainUntilClosed(t, c.Out)
		buf := make([]byte, 1)
		_ = c.Conn.SetReadDeadline(time.Now().Add(time.Second))
		_, err := c.Conn.Read(buf)
		require.Error(t, err, "evicted connection should be closed")
	}
}

func newTestRelay(t *testing.T) *Relay {
	t.Helper()
	r := NewRelay(128, nil)
	go r.Run()
	t.Cleanup(func() {
		r.Stop()
		r.Wait()
	})
	return r
}

// admit registers a fresh client backed by a pipe and waits for the ack.
func admit(t *testing.T, r *Relay) *Client {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() {
		_ = server.Close()
		_ = client.Close()
	})

	c := &Client{Conn: server, Out: make(chan string, 64)}
	reply := make(chan error, 1)
	r.events <- Event{Type: EventAdmit, Client: c, Reply: reply}
	require.NoError(t, <-reply)
	return c
}

func waitForLine(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case s, ok := <-ch:
		if !ok {
			t.Fatal("outbound channel closed while waiting for a line")
		}
		return s
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for a line")
		return ""
	}
}

func drainUntilClosed(t *testing.T, ch <-chan string) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("timeout waiting for channel closure")
		}
	}
}
