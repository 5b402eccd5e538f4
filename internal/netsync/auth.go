package netsync

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultTicketTTL = 30 * time.Second
	bcryptCost       = 10
	secretKey        = "ticket_secret"
)

// SecretStore persists the ticket signing key between runs so tickets
// handed out before a restart still verify. Usually the settings table.
type SecretStore interface {
	Setting(key string) (string, error)
	SetSetting(key, value string) error
}

// Gate checks the match password and signs the short-lived tickets that
// bind a websocket to a reserved slot
type Gate struct {
	hash   []byte // nil when the match is open
	secret []byte
	ttl    time.Duration
}

// Claims carried by a verified ticket
type Claims struct {
	ID       string
	Slot     int
	Nickname string
}

// NewGate hashes password once. An empty password opens the match.
func NewGate(password string, secrets SecretStore, ttl time.Duration, logger *log.Logger) (*Gate, error) {
	g := &Gate{
		secret: loadOrCreateSecret(secrets, logger),
		ttl:    ttl,
	}
	if g.ttl <= 0 {
		g.ttl = DefaultTicketTTL
	}
	if password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash match password: %w", err)
		}
		g.hash = h
	}
	return g, nil
}

// loadOrCreateSecret reads the signing key from secrets, or generates and
// persists a new one
func loadOrCreateSecret(secrets SecretStore, logger *log.Logger) []byte {
	if secrets != nil {
		if h, err := secrets.Setting(secretKey); err == nil && h != "" {
			if b, err := hex.DecodeString(h); err == nil && len(b) == 32 {
				return b
			}
		}
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		// fall back to two random UUIDs rather than refusing to host
		a, b := uuid.New(), uuid.New()
		secret = append(a[:], b[:]...)
	}
	if secrets != nil {
		if err := secrets.SetSetting(secretKey, hex.EncodeToString(secret)); err != nil {
			logger.Warn("could not persist ticket secret", "err", err)
		}
	}
	return secret
}

// CheckPassword returns ErrBadPassword on mismatch
func (g *Gate) CheckPassword(password string) error {
	if g.hash == nil {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword(g.hash, []byte(password)); err != nil {
		return ErrBadPassword
	}
	return nil
}

// Issue signs a ticket for slot. The returned id is the ticket's jti.
func (g *Gate) Issue(slot int, nickname string) (token, id string, err error) {
	now := time.Now()
	id = uuid.NewString()
	claims := jwt.MapClaims{
		"jti":  id,
		"slot": slot,
		"nick": nickname,
		"iat":  now.Unix(),
		"exp":  now.Add(g.ttl).Unix(),
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return "", "", fmt.Errorf("sign ticket: %w", err)
	}
	return token, id, nil
}

// Verify parses a ticket. Any failure, expiry included, is ErrBadTicket.
func (g *Gate) Verify(tokenStr string) (Claims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return g.secret, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrBadTicket, err)
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Claims{}, ErrBadTicket
	}
	id, _ := mc["jti"].(string)
	slot, ok := mc["slot"].(float64)
	if !ok || id == "" {
		return Claims{}, fmt.Errorf("%w: missing claims", ErrBadTicket)
	}
	nick, _ := mc["nick"].(string)
	return Claims{ID: id, Slot: int(slot), Nickname: nick}, nil
}
