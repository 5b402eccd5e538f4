package netsync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"tankbattle/internal/game"
	"tankbattle/internal/protocol"
)

type testMatch struct {
	world  *game.World
	runner *game.Runner
	host   *Host
	srv    *httptest.Server
}

func newTestMatch(t *testing.T, cfg HostConfig) *testMatch {
	t.Helper()
	w := game.NewWorld(game.DefaultConfig(), 7)
	w.AddPlayer(HostSlot, "host")
	r := game.NewRunner(w, log.New(io.Discard))
	h, err := NewHost(cfg, r, log.New(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(h.Handler())
	t.Cleanup(func() {
		h.Close()
		srv.Close()
	})
	return &testMatch{world: w, runner: r, host: h, srv: srv}
}

// stepUntil ticks the host until cond holds
func (m *testMatch) stepUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not reached")
		}
		m.runner.Step()
		time.Sleep(2 * time.Millisecond)
	}
}

// dial joins while the host keeps ticking, since the Welcome is sent
// from the tick
func (m *testMatch) dial(t *testing.T, nick, password string) (*Client, error) {
	t.Helper()
	type result struct {
		c   *Client
		err error
	}
	ch := make(chan result, 1)
	go func() {
		c, err := Dial(context.Background(), m.srv.URL, protocol.JoinRequest{Nickname: nick, Password: password},
			game.DefaultConfig(), log.New(io.Discard))
		ch <- result{c, err}
	}()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case r := <-ch:
			if r.c != nil {
				t.Cleanup(func() { r.c.Close() })
			}
			return r.c, r.err
		case <-deadline:
			t.Fatal("dial did not finish")
		default:
			m.runner.Step()
			time.Sleep(2 * time.Millisecond)
		}
	}
}

func postJoin(t *testing.T, url string, req protocol.JoinRequest) *http.Response {
	t.Helper()
	body, _ := json.Marshal(req)
	resp, err := http.Post(url+"/join", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestJoinWrongPassword(t *testing.T) {
	m := newTestMatch(t, HostConfig{Password: "secret"})
	resp := postJoin(t, m.srv.URL, protocol.JoinRequest{Nickname: "a", Password: "nope"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %d", resp.StatusCode)
	}

	_, err := m.dial(t, "a", "nope")
	if !errors.Is(err, ErrBadPassword) {
		t.Errorf("expected ErrBadPassword from Dial, got %v", err)
	}
}

func TestJoinFullMatch(t *testing.T) {
	m := newTestMatch(t, HostConfig{MaxClients: 1})
	first := postJoin(t, m.srv.URL, protocol.JoinRequest{Nickname: "a"})
	var ticket protocol.Ticket
	json.NewDecoder(first.Body).Decode(&ticket)
	first.Body.Close()
	if first.StatusCode != http.StatusOK || ticket.Slot != 2 || ticket.Token == "" {
		t.Fatalf("expected a ticket for slot 2, got %d %+v", first.StatusCode, ticket)
	}

	second := postJoin(t, m.srv.URL, protocol.JoinRequest{Nickname: "b"})
	second.Body.Close()
	if second.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", second.StatusCode)
	}
}

func TestTicketWorksOnce(t *testing.T) {
	m := newTestMatch(t, HostConfig{})
	ticket, err := m.host.reserve("a")
	if err != nil {
		t.Fatal(err)
	}
	claims, err := m.host.gate.Verify(ticket.Token)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.host.claim(claims, nil, "test"); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if _, err := m.host.claim(claims, nil, "test"); !errors.Is(err, ErrBadTicket) {
		t.Errorf("second claim should fail, got %v", err)
	}
}

func TestWebsocketRejectsBadTicket(t *testing.T) {
	m := newTestMatch(t, HostConfig{})
	url := "ws" + strings.TrimPrefix(m.srv.URL, "http") + "/ws?ticket=garbage"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected the upgrade to be refused")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %+v", resp)
	}
}

func TestClientJoinsAndSyncs(t *testing.T) {
	m := newTestMatch(t, HostConfig{})
	c, err := m.dial(t, "guest", "")
	if err != nil {
		t.Fatal(err)
	}
	if c.Slot() != 2 {
		t.Fatalf("expected slot 2, got %d", c.Slot())
	}
	if m.host.Clients() != 1 {
		t.Errorf("expected 1 client, got %d", m.host.Clients())
	}
	p := m.world.Player(2)
	if p == nil || !p.Active || p.Nickname != "guest" {
		t.Fatalf("host should have activated slot 2, got %+v", p)
	}

	// the host adopts the client's predicted position
	c.Step(game.Input{Left: true})
	own := c.World().Player(2)
	m.stepUntil(t, func() bool { return p.X == own.X && p.Dir == game.DirLeft })

	// and the client mirrors host-owned state
	for i := 0; i < 5; i++ {
		m.runner.Step()
	}
	deadline := time.Now().Add(3 * time.Second)
	for c.Latest().Tick < 5 {
		if time.Now().After(deadline) {
			t.Fatal("client never applied a snapshot")
		}
		m.runner.Step()
		c.Step(game.Input{})
		time.Sleep(2 * time.Millisecond)
	}
	if host := c.World().Player(HostSlot); host == nil || host.Nickname != "host" {
		t.Errorf("client should see the host tank, got %+v", host)
	}
	if c.Latest().LevelNumber != m.world.Level {
		t.Errorf("level mismatch: %d vs %d", c.Latest().LevelNumber, m.world.Level)
	}
}

func TestClientLeaveFreesSlot(t *testing.T) {
	m := newTestMatch(t, HostConfig{})
	c, err := m.dial(t, "guest", "")
	if err != nil {
		t.Fatal(err)
	}
	c.Close()
	m.stepUntil(t, func() bool { return !m.world.Player(2).Active })
	if m.host.Clients() != 0 {
		t.Errorf("expected no clients, got %d", m.host.Clients())
	}
	if m.world.Phase != game.PhasePlaying {
		t.Error("the host match should carry on")
	}
}

func TestStaleLeaveKeepsNewClient(t *testing.T) {
	m := newTestMatch(t, HostConfig{})
	stale := &peer{slot: 2, nickname: "old"}
	fresh := &peer{slot: 2, nickname: "new"}
	m.host.mu.Lock()
	m.host.peers[2] = fresh
	m.host.mu.Unlock()
	m.world.AddPlayer(2, "new")

	m.host.enqueue(membership{peer: stale})
	m.runner.Step()
	if p := m.world.Player(2); p == nil || !p.Active {
		t.Fatal("a late leave from the old connection removed the new client")
	}

	m.host.mu.Lock()
	delete(m.host.peers, 2)
	m.host.mu.Unlock()
	m.host.enqueue(membership{peer: fresh})
	m.runner.Step()
	if p := m.world.Player(2); p != nil && p.Active {
		t.Error("leave from the current client should free the slot")
	}
}

func TestHostLossEndsClientMatch(t *testing.T) {
	m := newTestMatch(t, HostConfig{})
	c, err := m.dial(t, "guest", "")
	if err != nil {
		t.Fatal(err)
	}
	m.host.Close()

	deadline := time.Now().Add(3 * time.Second)
	for {
		err := c.Step(game.Input{})
		if err != nil {
			if !IsDisconnect(err) {
				t.Errorf("expected a disconnect, got %v", err)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("client never noticed the host closing")
		}
		time.Sleep(2 * time.Millisecond)
	}
	if c.World().Phase != game.PhaseGameOver || !c.Latest().GameOver {
		t.Error("losing the host should end the match on the client")
	}
}

func TestMalformedInputDropped(t *testing.T) {
	m := newTestMatch(t, HostConfig{})
	c, err := m.dial(t, "guest", "")
	if err != nil {
		t.Fatal(err)
	}
	c.peer.sendRaw([]byte{0xc1, 0x00})
	deadline := time.Now().Add(3 * time.Second)
	for m.host.Dropped() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("malformed frame was not counted")
		}
		time.Sleep(2 * time.Millisecond)
	}
	m.runner.Step()
	if !m.world.Player(2).Active {
		t.Error("a bad frame must not drop the client")
	}
}

func TestStatusEndpoint(t *testing.T) {
	m := newTestMatch(t, HostConfig{})
	m.runner.Step()
	resp, err := http.Get(m.srv.URL + "/status")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var st protocol.Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	if st.Level != 1 || st.ConnectedPlayers != 1 || st.OpenSlots != MaxClients {
		t.Errorf("unexpected status %+v", st)
	}
	if st.Phase != game.PhasePlaying.String() {
		t.Errorf("expected phase %q, got %q", game.PhasePlaying.String(), st.Phase)
	}
}

func TestListenBindError(t *testing.T) {
	m := newTestMatch(t, HostConfig{Addr: "127.0.0.1:0"})
	if err := m.host.Listen(); err != nil {
		t.Fatal(err)
	}
	defer m.host.listener.Close()

	w := game.NewWorld(game.DefaultConfig(), 1)
	other, _ := NewHost(HostConfig{Addr: m.host.Addr().String()}, game.NewRunner(w, log.New(io.Discard)), log.New(io.Discard))
	if err := other.Listen(); !errors.Is(err, ErrBind) {
		t.Errorf("expected ErrBind, got %v", err)
	}
}
