package netsync

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"tankbattle/internal/game"
	"tankbattle/internal/protocol"
)

const (
	DefaultPort     = 7777
	MaxClients      = game.MaxPlayers - 1
	HostSlot        = 1
	joinRateWindow  = 60 * time.Second
	maxJoinAttempts = 10
	maxJoinBody     = 1024
	inboxSize       = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // native clients don't send Origin
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

// HostConfig configures a hosted match
type HostConfig struct {
	Addr       string
	Password   string
	MaxClients int
	TicketTTL  time.Duration
	Secrets    SecretStore // optional
}

// Host serves one match. The local player drives HostSlot; remote
// clients take the slots after it. All world mutation happens in the
// runner's hooks on the tick goroutine.
type Host struct {
	cfg    HostConfig
	runner *game.Runner
	gate   *Gate
	logger *log.Logger

	// guarded by mu; touched from HTTP handlers and the tick goroutine
	mu       sync.Mutex
	peers    map[int]*peer
	reserved map[int]reservation
	rate     map[string]*rateEntry

	inputs [game.MaxPlayers]atomic.Pointer[protocol.PlayerInput]
	inbox  chan membership

	listener  net.Listener
	server    *http.Server
	done      chan struct{}
	closeOnce sync.Once

	dropped atomic.Uint64
	stalled atomic.Uint64
}

type reservation struct {
	id       string
	nickname string
	expires  time.Time
}

type rateEntry struct {
	Count   int
	ResetAt time.Time
}

type membership struct {
	peer *peer
	join bool
}

// NewHost wires a host into runner. The runner must not be started yet.
func NewHost(cfg HostConfig, runner *game.Runner, logger *log.Logger) (*Host, error) {
	if cfg.MaxClients <= 0 || cfg.MaxClients > MaxClients {
		cfg.MaxClients = MaxClients
	}
	if cfg.Addr == "" {
		cfg.Addr = fmt.Sprintf(":%d", DefaultPort)
	}
	gate, err := NewGate(cfg.Password, cfg.Secrets, cfg.TicketTTL, logger)
	if err != nil {
		return nil, err
	}
	h := &Host{
		cfg:      cfg,
		runner:   runner,
		gate:     gate,
		logger:   logger,
		peers:    make(map[int]*peer),
		reserved: make(map[int]reservation),
		rate:     make(map[string]*rateEntry),
		inbox:    make(chan membership, inboxSize),
		done:     make(chan struct{}),
	}
	h.server = &http.Server{Handler: h.Handler(), ReadHeaderTimeout: 5 * time.Second}
	runner.BeforeStep(h.beforeStep)
	runner.AfterStep(h.broadcast)
	return h, nil
}

// Handler exposes the join, websocket and status endpoints
func (h *Host) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /join", h.handleJoin)
	mux.HandleFunc("GET /ws", h.handleWS)
	mux.HandleFunc("GET /status", h.handleStatus)
	return mux
}

// Listen binds the match port. A failure wraps ErrBind and is final.
func (h *Host) Listen() error {
	ln, err := net.Listen("tcp", h.cfg.Addr)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrBind, h.cfg.Addr, err)
	}
	h.listener = ln
	h.logger.Info("hosting match", "addr", ln.Addr().String(), "max_clients", h.cfg.MaxClients)
	return nil
}

// Addr is the bound address, or nil before Listen
func (h *Host) Addr() net.Addr {
	if h.listener == nil {
		return nil
	}
	return h.listener.Addr()
}

// Serve accepts connections until Close
func (h *Host) Serve() error {
	if h.listener == nil {
		return fmt.Errorf("serve: not listening")
	}
	err := h.server.Serve(h.listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Close stops accepting and drops every client
func (h *Host) Close() error {
	var err error
	h.closeOnce.Do(func() {
		close(h.done)
		err = h.server.Close()
		h.mu.Lock()
		for _, p := range h.peers {
			p.close()
		}
		h.mu.Unlock()
	})
	return err
}

// Dropped counts malformed input frames discarded so far
func (h *Host) Dropped() uint64 { return h.dropped.Load() }

// Stalled counts snapshots not queued because a client fell behind
func (h *Host) Stalled() uint64 { return h.stalled.Load() }

// Clients counts connected remote players
func (h *Host) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.peers)
}

func extractIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (h *Host) checkRate(ip string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	entry, ok := h.rate[ip]
	if !ok || now.After(entry.ResetAt) {
		h.rate[ip] = &rateEntry{Count: 1, ResetAt: now.Add(joinRateWindow)}
		return true
	}
	entry.Count++
	return entry.Count <= maxJoinAttempts
}

func (h *Host) handleJoin(w http.ResponseWriter, r *http.Request) {
	ip := extractIP(r)
	if !h.checkRate(ip) {
		http.Error(w, "too many join attempts", http.StatusTooManyRequests)
		return
	}
	var req protocol.JoinRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJoinBody)).Decode(&req); err != nil {
		http.Error(w, "bad join request", http.StatusBadRequest)
		return
	}
	if err := h.gate.CheckPassword(req.Password); err != nil {
		h.logger.Warn("join refused", "addr", ip, "err", err)
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	ticket, err := h.reserve(req.Nickname)
	switch {
	case errors.Is(err, ErrMatchFull):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	case err != nil:
		h.logger.Error("issue ticket", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.logger.Debug("slot reserved", "slot", ticket.Slot, "addr", ip)
	writeJSON(w, ticket)
}

// reserve holds the lowest free client slot for one ticket lifetime
func (h *Host) reserve(nickname string) (protocol.Ticket, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	for slot, r := range h.reserved {
		if now.After(r.expires) {
			delete(h.reserved, slot)
		}
	}
	for slot := HostSlot + 1; slot <= HostSlot+h.cfg.MaxClients; slot++ {
		if _, ok := h.peers[slot]; ok {
			continue
		}
		if _, ok := h.reserved[slot]; ok {
			continue
		}
		nick := cleanNickname(nickname, slot)
		token, id, err := h.gate.Issue(slot, nick)
		if err != nil {
			return protocol.Ticket{}, err
		}
		h.reserved[slot] = reservation{id: id, nickname: nick, expires: now.Add(h.gate.ttl)}
		return protocol.Ticket{Token: token, Slot: slot}, nil
	}
	return protocol.Ticket{}, ErrMatchFull
}

// claim turns a reservation into a connected peer. Each ticket works once.
func (h *Host) claim(c Claims, conn *websocket.Conn, addr string) (*peer, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.reserved[c.Slot]
	if !ok || r.id != c.ID {
		return nil, ErrBadTicket
	}
	delete(h.reserved, c.Slot)
	p := newPeer(conn, c.Slot, r.nickname, addr, h.logger)
	p.readLimit = maxInputSize
	p.rateLimit = maxMessagesPerSec
	h.peers[c.Slot] = p
	return p, nil
}

func (h *Host) handleWS(w http.ResponseWriter, r *http.Request) {
	ip := extractIP(r)
	claims, err := h.gate.Verify(r.URL.Query().Get("ticket"))
	if err != nil {
		h.logger.Warn("websocket refused", "addr", ip, "err", err)
		http.Error(w, ErrBadTicket.Error(), http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade error", "addr", ip, "err", err)
		return
	}
	p, err := h.claim(claims, conn, ip)
	if err != nil {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}

	go p.writePump()
	if !h.enqueue(membership{peer: p, join: true}) {
		p.close()
		return
	}
	go func() {
		err := p.readPump(func(data []byte) { h.handleInput(p, data) })
		h.logger.Debug("read pump ended", "slot", p.slot, "err", err)
		h.mu.Lock()
		if h.peers[p.slot] == p {
			delete(h.peers, p.slot)
		}
		h.mu.Unlock()
		h.enqueue(membership{peer: p})
	}()
}

// enqueue hands a join or leave to the tick goroutine
func (h *Host) enqueue(m membership) bool {
	select {
	case h.inbox <- m:
		return true
	case <-h.done:
		return false
	}
}

// handleInput stores the newest input for the peer's slot. Older unread
// input is overwritten, never queued.
func (h *Host) handleInput(p *peer, data []byte) {
	in, err := protocol.DecodeInput(data)
	if err != nil {
		h.dropped.Add(1)
		h.logger.Debug("dropped input", "slot", p.slot, "err", err)
		return
	}
	h.inputs[p.slot-1].Store(&in)
}

func (h *Host) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := h.runner.Latest()
	st := protocol.Status{
		Level:            snap.LevelNumber,
		ConnectedPlayers: snap.ConnectedPlayers,
		Tick:             snap.Tick,
	}
	switch {
	case snap.GameOver:
		st.Phase = game.PhaseGameOver.String()
	case snap.Victory:
		st.Phase = game.PhaseVictory.String()
	default:
		st.Phase = game.PhasePlaying.String()
	}
	for _, p := range snap.Players {
		if p.Active {
			st.Nicknames = append(st.Nicknames, p.Nickname)
		}
	}
	h.mu.Lock()
	st.OpenSlots = h.cfg.MaxClients - len(h.peers) - len(h.reserved)
	h.mu.Unlock()
	if st.OpenSlots < 0 {
		st.OpenSlots = 0
	}
	writeJSON(w, st)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	json.NewEncoder(w).Encode(v)
}

// beforeStep runs on the tick goroutine: joins and leaves first, then
// the latest input of every remote slot
func (h *Host) beforeStep(w *game.World) {
	h.drainInbox(w)
	for slot := HostSlot + 1; slot <= game.MaxPlayers; slot++ {
		in := h.inputs[slot-1].Swap(nil)
		if in == nil {
			continue
		}
		t := w.Player(slot)
		if t == nil || !t.Active {
			continue
		}
		if in.Nickname != nil {
			t.Nickname = cleanNickname(*in.Nickname, slot)
		}
		w.SetCommand(slot, commandFrom(in))
	}
}

func (h *Host) drainInbox(w *game.World) {
	for {
		select {
		case m := <-h.inbox:
			if m.join {
				h.join(w, m.peer)
			} else {
				h.leave(w, m.peer)
			}
		default:
			return
		}
	}
}

func (h *Host) join(w *game.World, p *peer) {
	if p.closed() {
		return
	}
	h.inputs[p.slot-1].Store(nil)
	w.AddPlayer(p.slot, p.nickname)
	data, err := protocol.Encode(protocol.MsgWelcome, protocol.Welcome{
		Slot:     p.slot,
		Level:    w.Level,
		Seed:     w.Terrain.Seed(),
		TickRate: game.TickRate,
	})
	if err != nil {
		h.logger.Error("encode welcome", "err", err)
		p.close()
		return
	}
	p.sendRaw(data)
	p.welcomed.Store(true)
	h.logger.Info("client joined", "slot", p.slot, "nickname", p.nickname, "addr", p.remoteAddr)
}

// leave frees p's slot unless a newer client already holds it
func (h *Host) leave(w *game.World, p *peer) {
	h.mu.Lock()
	cur := h.peers[p.slot]
	h.mu.Unlock()
	if cur != nil && cur != p {
		h.logger.Debug("stale leave ignored", "slot", p.slot, "nickname", p.nickname)
		return
	}
	h.inputs[p.slot-1].Store(nil)
	w.RemovePlayer(p.slot)
	h.logger.Info("client left", "slot", p.slot, "nickname", p.nickname)
}

// broadcast encodes the snapshot once and queues it for every welcomed
// client. It never blocks on a socket.
func (h *Host) broadcast(snap *protocol.WorldSnapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.peers) == 0 {
		return
	}
	var data []byte
	for slot, p := range h.peers {
		if !p.welcomed.Load() {
			continue
		}
		if data == nil {
			var err error
			if data, err = protocol.Encode(protocol.MsgSnapshot, snap); err != nil {
				h.logger.Error("encode snapshot", "tick", snap.Tick, "err", err)
				return
			}
		}
		if !p.sendRaw(data) {
			h.stalled.Add(1)
			h.logger.Debug("snapshot dropped for slow client", "slot", slot, "tick", snap.Tick)
		}
	}
}

func commandFrom(in *protocol.PlayerInput) game.Command {
	return game.Command{
		Input: game.Input{
			Up:          in.Up,
			Down:        in.Down,
			Left:        in.Left,
			Right:       in.Right,
			Shoot:       in.Shoot,
			RequestLife: in.RequestLife,
			Paused:      in.Paused,
		},
		Remote: true,
		X:      in.PosX,
		Y:      in.PosY,
		Dir:    game.Direction(in.Direction),
	}
}
