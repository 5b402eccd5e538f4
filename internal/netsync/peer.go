package netsync

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	writeWait         = 10 * time.Second
	handshakeWait     = 5 * time.Second
	maxInputSize      = 1024
	maxSnapshotSize   = 256 << 10
	sendBufSize       = 64
	maxMessagesPerSec = 120 // two ticks of input per tick, with slack
	maxNameLen        = 16
)

// peer is one websocket, on either end. Reads happen on the goroutine
// calling readPump; writes only on writePump.
type peer struct {
	conn       *websocket.Conn
	send       chan []byte
	slot       int
	nickname   string
	remoteAddr string
	logger     *log.Logger

	readLimit  int64
	rateLimit  int // frames per second, 0 disables
	msgCount   int
	msgResetAt time.Time

	welcomed  atomic.Bool // host side: Welcome queued, snapshots may follow
	done      chan struct{}
	closeOnce sync.Once
}

func newPeer(conn *websocket.Conn, slot int, nickname, remoteAddr string, logger *log.Logger) *peer {
	return &peer{
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		slot:       slot,
		nickname:   nickname,
		remoteAddr: remoteAddr,
		logger:     logger,
		readLimit:  maxSnapshotSize,
		done:       make(chan struct{}),
	}
}

// readPump hands every binary frame to handle until the socket fails.
// There is no read deadline: a dead peer is noticed when the transport
// reports it.
func (p *peer) readPump(handle func([]byte)) error {
	defer p.close()

	p.conn.SetReadLimit(p.readLimit)
	for {
		msgType, message, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				p.logger.Debug("socket error", "slot", p.slot, "addr", p.remoteAddr, "err", err)
			}
			return fmt.Errorf("%w: %v", ErrDisconnected, err)
		}

		if p.rateLimit > 0 {
			now := time.Now()
			if now.After(p.msgResetAt) {
				p.msgCount = 0
				p.msgResetAt = now.Add(time.Second)
			}
			p.msgCount++
			if p.msgCount > p.rateLimit {
				p.logger.Warn("rate limit exceeded, disconnecting", "slot", p.slot, "addr", p.remoteAddr)
				return fmt.Errorf("%w: rate limit", ErrDisconnected)
			}
		}

		if msgType != websocket.BinaryMessage {
			continue
		}
		handle(message)
	}
}

// writePump drains the send queue until close
func (p *peer) writePump() {
	defer p.conn.Close()

	for {
		select {
		case msg := <-p.send:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
				p.close()
				return
			}
		case <-p.done:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			p.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// sendRaw queues data without blocking. A full queue drops the frame so
// one slow reader never holds up the tick.
func (p *peer) sendRaw(data []byte) bool {
	select {
	case <-p.done:
		return false
	default:
	}
	select {
	case p.send <- data:
		return true
	default:
		return false
	}
}

func (p *peer) close() {
	p.closeOnce.Do(func() { close(p.done) })
}

func (p *peer) closed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// cleanNickname trims and caps a display name
func cleanNickname(s string, slot int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > maxNameLen {
		s = string([]rune(s)[:maxNameLen])
	}
	if s == "" {
		s = fmt.Sprintf("Player %d", slot)
	}
	return s
}
