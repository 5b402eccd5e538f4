package protocol

import (
	"errors"
	"math"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

func TestEncodeDecodeInput(t *testing.T) {
	nick := "ace"
	data, err := Encode(MsgInput, PlayerInput{Left: true, Shoot: true, PosX: 66, PosY: 578, Direction: 3, Nickname: &nick})
	if err != nil {
		t.Fatal(err)
	}
	in, err := DecodeInput(data)
	if err != nil {
		t.Fatal(err)
	}
	if !in.Left || !in.Shoot || in.PosX != 66 || in.PosY != 578 || in.Direction != 3 {
		t.Errorf("input mismatch: %+v", in)
	}
	if in.Nickname == nil || *in.Nickname != "ace" {
		t.Errorf("nickname lost: %v", in.Nickname)
	}
}

func TestDecodeInputRejects(t *testing.T) {
	snap, _ := Encode(MsgSnapshot, WorldSnapshot{LevelNumber: 1})
	if _, err := DecodeInput(snap); !errors.Is(err, ErrMalformed) {
		t.Errorf("snapshot decoded as input: %v", err)
	}

	bad, _ := Encode(MsgInput, PlayerInput{Direction: 7})
	if _, err := DecodeInput(bad); !errors.Is(err, ErrMalformed) {
		t.Errorf("direction 7 accepted: %v", err)
	}

	for _, in := range []PlayerInput{{PosX: math.NaN()}, {PosY: math.Inf(-1)}} {
		b, err := Encode(MsgInput, in)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := DecodeInput(b); !errors.Is(err, ErrMalformed) {
			t.Errorf("non-finite position accepted: %v", err)
		}
	}

	if _, err := DecodeInput(nil); !errors.Is(err, ErrMalformed) {
		t.Errorf("empty frame accepted: %v", err)
	}
	if _, err := DecodeInput([]byte{0xc1}); !errors.Is(err, ErrMalformed) {
		t.Errorf("garbage accepted: %v", err)
	}
}

func TestDecodeEnvelopeVersion(t *testing.T) {
	b, _ := msgpack.Marshal(Envelope{V: SchemaVersion + 1, T: MsgInput, P: []byte{0x80}})
	if _, err := DecodeEnvelope(b); !errors.Is(err, ErrMalformed) {
		t.Errorf("future schema accepted: %v", err)
	}
}

func TestEncodeRejectsEmpty(t *testing.T) {
	if _, err := Encode(0, Welcome{}); err == nil {
		t.Error("zero message type should fail")
	}
	if _, err := Encode(MsgWelcome, nil); err == nil {
		t.Error("nil payload should fail")
	}
}

func TestSnapshotSurvivesEncoding(t *testing.T) {
	in := WorldSnapshot{
		Tick:         42,
		Players:      make([]PlayerState, 4),
		MapTiles:     [][]uint8{{2, 2}, {2, 0}},
		BurningTiles: []BurningTile{{Row: 1, Col: 1, FramesRemaining: 12}},
		Bullets:      []BulletState{{ID: 9, X: 10, Y: 20, Power: 2}},
		LevelNumber:  3,
		BaseAlive:    true,
	}
	in.Players[1] = PlayerState{Active: true, Lives: 2, Nickname: "b"}
	data, err := Encode(MsgSnapshot, in)
	if err != nil {
		t.Fatal(err)
	}
	env, err := DecodeEnvelope(data)
	if err != nil {
		t.Fatal(err)
	}
	out, err := DecodePayload[WorldSnapshot](env)
	if err != nil {
		t.Fatal(err)
	}
	if out.Tick != 42 || out.LevelNumber != 3 || !out.BaseAlive {
		t.Errorf("flags lost: %+v", out)
	}
	if len(out.Players) != 4 || out.Players[1].Nickname != "b" || out.Players[1].Lives != 2 {
		t.Errorf("players lost: %+v", out.Players)
	}
	if out.MapTiles[1][0] != 2 || out.BurningTiles[0].FramesRemaining != 12 || out.Bullets[0].ID != 9 {
		t.Error("grid or entity lists lost")
	}
}
