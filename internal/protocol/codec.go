package protocol

import (
	"errors"
	"fmt"
	"math"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrMalformed marks a message that failed decoding or validation
var ErrMalformed = errors.New("malformed message")

// Encode wraps payload in a versioned envelope
func Encode(t MsgType, payload any) ([]byte, error) {
	if t == 0 {
		return nil, fmt.Errorf("encode: zero message type")
	}
	if payload == nil {
		return nil, fmt.Errorf("encode %#x: nil payload", t)
	}
	pb, err := msgpack.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return msgpack.Marshal(Envelope{V: SchemaVersion, T: t, P: pb})
}

// DecodeEnvelope unwraps a message and checks its schema version
func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, fmt.Errorf("%w: empty frame", ErrMalformed)
	}
	var e Envelope
	if err := msgpack.Unmarshal(b, &e); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if e.V != SchemaVersion {
		return Envelope{}, fmt.Errorf("%w: schema version %d", ErrMalformed, e.V)
	}
	return e, nil
}

// DecodePayload unmarshals the payload of env into T
func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.P) == 0 {
		return out, fmt.Errorf("%w: empty payload for type %#x", ErrMalformed, env.T)
	}
	if err := msgpack.Unmarshal(env.P, &out); err != nil {
		return out, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return out, nil
}

// DecodeInput decodes and validates a client input message
func DecodeInput(b []byte) (PlayerInput, error) {
	env, err := DecodeEnvelope(b)
	if err != nil {
		return PlayerInput{}, err
	}
	if env.T != MsgInput {
		return PlayerInput{}, fmt.Errorf("%w: expected input, got %#x", ErrMalformed, env.T)
	}
	in, err := DecodePayload[PlayerInput](env)
	if err != nil {
		return PlayerInput{}, err
	}
	if in.Direction < 0 || in.Direction > 3 {
		return PlayerInput{}, fmt.Errorf("%w: direction %d", ErrMalformed, in.Direction)
	}
	if !finite(in.PosX) || !finite(in.PosY) {
		return PlayerInput{}, fmt.Errorf("%w: position %v,%v", ErrMalformed, in.PosX, in.PosY)
	}
	return in, nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
