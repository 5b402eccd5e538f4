package netsync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"tankbattle/internal/game"
	"tankbattle/internal/protocol"
)

// Client mirrors a hosted match. Its world is never stepped: the own tank
// is predicted locally and everything else comes from host snapshots.
type Client struct {
	world    *game.World
	slot     int
	seed     int64
	nickname string
	logger   *log.Logger
	peer     *peer

	latest atomic.Pointer[protocol.WorldSnapshot] // newest unapplied, from the read goroutine
	view   atomic.Pointer[protocol.WorldSnapshot] // what a renderer should draw
	err    atomic.Pointer[error]
	done   chan struct{}

	dropped   atomic.Uint64
	sentNick  bool
	lost      bool
	remaining int // the mirror has no spawner, so this comes from the host
}

// Dial joins the match at addr ("host:port" or "http://host:port"): it
// asks for a ticket, opens the websocket and waits for the Welcome.
func Dial(ctx context.Context, addr string, req protocol.JoinRequest, cfg game.Config, logger *log.Logger) (*Client, error) {
	base, err := baseURL(addr)
	if err != nil {
		return nil, err
	}
	ticket, err := requestTicket(ctx, base, req)
	if err != nil {
		return nil, err
	}

	wsURL := *base
	wsURL.Scheme = "ws"
	wsURL.Path = "/ws"
	wsURL.RawQuery = url.Values{"ticket": {ticket.Token}}.Encode()
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrDisconnected, base.Host, err)
	}

	welcome, err := awaitWelcome(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if welcome.Slot != ticket.Slot {
		conn.Close()
		return nil, fmt.Errorf("%w: welcome for slot %d, ticket was %d", ErrProtocol, welcome.Slot, ticket.Slot)
	}

	w := game.NewWorld(cfg, welcome.Seed)
	w.Level = welcome.Level
	w.Spawner = nil
	nick := cleanNickname(req.Nickname, welcome.Slot)
	w.AddPlayer(welcome.Slot, nick)

	c := &Client{
		world:    w,
		slot:     welcome.Slot,
		seed:     welcome.Seed,
		nickname: nick,
		logger:   logger,
		peer:     newPeer(conn, welcome.Slot, nick, base.Host, logger),
		done:     make(chan struct{}),
	}
	c.view.Store(w.Snapshot())
	go c.peer.writePump()
	go c.receive()
	logger.Info("joined match", "host", base.Host, "slot", c.slot, "level", welcome.Level)
	return c, nil
}

func baseURL(addr string) (*url.URL, error) {
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	u, err := url.Parse(addr)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("bad host address %q", addr)
	}
	if u.Port() == "" {
		u.Host += ":" + strconv.Itoa(DefaultPort)
	}
	u.Scheme = "http"
	u.Path = ""
	return u, nil
}

func requestTicket(ctx context.Context, base *url.URL, req protocol.JoinRequest) (protocol.Ticket, error) {
	var ticket protocol.Ticket
	body, err := json.Marshal(req)
	if err != nil {
		return ticket, err
	}
	joinURL := *base
	joinURL.Path = "/join"
	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, joinURL.String(), bytes.NewReader(body))
	if err != nil {
		return ticket, err
	}
	hreq.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(hreq)
	if err != nil {
		return ticket, fmt.Errorf("%w: join %s: %v", ErrDisconnected, base.Host, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusForbidden:
		return ticket, ErrBadPassword
	case http.StatusServiceUnavailable:
		return ticket, ErrMatchFull
	default:
		return ticket, fmt.Errorf("join %s: %s", base.Host, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&ticket); err != nil {
		return ticket, fmt.Errorf("%w: ticket: %v", ErrProtocol, err)
	}
	return ticket, nil
}

// awaitWelcome reads until the host's Welcome arrives. Anything else
// before it is skipped.
func awaitWelcome(conn *websocket.Conn) (protocol.Welcome, error) {
	conn.SetReadLimit(maxSnapshotSize)
	conn.SetReadDeadline(time.Now().Add(handshakeWait))
	defer conn.SetReadDeadline(time.Time{})

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return protocol.Welcome{}, fmt.Errorf("%w: awaiting welcome: %v", ErrDisconnected, err)
		}
		env, err := protocol.DecodeEnvelope(msg)
		if err != nil {
			return protocol.Welcome{}, fmt.Errorf("%w: %v", ErrProtocol, err)
		}
		if env.T != protocol.MsgWelcome {
			continue
		}
		welcome, err := protocol.DecodePayload[protocol.Welcome](env)
		if err != nil {
			return protocol.Welcome{}, fmt.Errorf("%w: %v", ErrProtocol, err)
		}
		return welcome, nil
	}
}

// receive keeps only the newest snapshot. Older unapplied ones are
// overwritten.
func (c *Client) receive() {
	err := c.peer.readPump(c.handleFrame)
	c.err.Store(&err)
	close(c.done)
}

func (c *Client) handleFrame(data []byte) {
	env, err := protocol.DecodeEnvelope(data)
	if err != nil {
		c.drop(err)
		return
	}
	if env.T != protocol.MsgSnapshot {
		return
	}
	snap, err := protocol.DecodePayload[protocol.WorldSnapshot](env)
	if err != nil {
		c.drop(err)
		return
	}
	if err := game.ValidateSnapshot(&snap); err != nil {
		c.drop(err)
		return
	}
	c.latest.Store(&snap)
}

func (c *Client) drop(err error) {
	c.dropped.Add(1)
	c.logger.Debug("dropped frame", "err", err)
}

// Slot is the player slot this client drives
func (c *Client) Slot() int { return c.slot }

// Seed is the host's level seed at join time
func (c *Client) Seed() int64 { return c.seed }

// World exposes the mirror world. Only the goroutine calling Step may use it.
func (c *Client) World() *game.World { return c.world }

// Latest returns the state to render. Safe from any goroutine.
func (c *Client) Latest() *protocol.WorldSnapshot { return c.view.Load() }

// Dropped counts malformed frames discarded so far
func (c *Client) Dropped() uint64 { return c.dropped.Load() }

// Err is the reason the connection ended, or nil while it is up
func (c *Client) Err() error {
	if e := c.err.Load(); e != nil {
		return *e
	}
	return nil
}

// Step runs one client frame: predict the own tank, report it to the
// host, then apply the newest snapshot. After the host is lost the
// match is over and Step returns ErrDisconnected.
func (c *Client) Step(in game.Input) error {
	if c.lost {
		return ErrDisconnected
	}
	select {
	case <-c.done:
		c.lost = true
		c.world.Phase = game.PhaseGameOver
		c.view.Store(c.world.Snapshot())
		c.logger.Warn("lost connection to host", "err", c.Err())
		return ErrDisconnected
	default:
	}

	c.world.Predict(c.slot, in)
	c.report(in)

	if snap := c.latest.Swap(nil); snap != nil {
		res, err := c.world.ApplySnapshot(snap, c.slot)
		if err != nil {
			c.drop(err)
		} else {
			c.remaining = snap.EnemiesRemaining
			if res.LevelsAdvanced > 0 {
				c.logger.Info("level started", "level", c.world.Level)
			}
		}
	}
	view := c.world.Snapshot()
	view.EnemiesRemaining = c.remaining
	c.view.Store(view)
	return nil
}

func (c *Client) report(in game.Input) {
	t := c.world.Player(c.slot)
	if t == nil {
		return
	}
	msg := protocol.PlayerInput{
		Up:          in.Up,
		Down:        in.Down,
		Left:        in.Left,
		Right:       in.Right,
		Shoot:       in.Shoot,
		RequestLife: in.RequestLife,
		Paused:      in.Paused,
		PosX:        t.X,
		PosY:        t.Y,
		Direction:   int(t.Dir),
	}
	if !c.sentNick {
		nick := c.nickname
		msg.Nickname = &nick
	}
	data, err := protocol.Encode(protocol.MsgInput, msg)
	if err != nil {
		c.logger.Error("encode input", "err", err)
		return
	}
	if c.peer.sendRaw(data) {
		c.sentNick = true
	}
}

// Run steps the client at the tick rate until ctx ends or the host is
// lost
func (c *Client) Run(ctx context.Context, src game.InputSource) error {
	ticker := time.NewTicker(game.TickDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Step(src.Poll(c.slot)); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close leaves the match
func (c *Client) Close() error {
	c.peer.close()
	return nil
}

// IsDisconnect reports whether err ended a match through a lost socket
func IsDisconnect(err error) bool { return errors.Is(err, ErrDisconnected) }
