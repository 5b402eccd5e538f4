package protocol

// SchemaVersion is carried in every envelope; peers drop mismatches
const SchemaVersion = 1

// MsgType tags an envelope. Values are wire-stable.
type MsgType uint8

const (
	MsgWelcome  MsgType = 0x01 // host -> client after the socket opens
	MsgInput    MsgType = 0x10 // client -> host, once per client tick
	MsgSnapshot MsgType = 0x20 // host -> client, once per host tick
)

// Envelope wraps every socket message
type Envelope struct {
	V uint8   `msgpack:"v"`
	T MsgType `msgpack:"t"`
	P []byte  `msgpack:"p"` // raw msgpack payload
}

// PlayerInput is sent by a client every tick. Position and direction are
// the client's predicted values; the host adopts them.
type PlayerInput struct {
	Up          bool    `msgpack:"u"`
	Down        bool    `msgpack:"d"`
	Left        bool    `msgpack:"l"`
	Right       bool    `msgpack:"r"`
	Shoot       bool    `msgpack:"s"`
	RequestLife bool    `msgpack:"rl"`
	Paused      bool    `msgpack:"pa,omitempty"`
	PosX        float64 `msgpack:"x"`
	PosY        float64 `msgpack:"y"`
	Direction   int     `msgpack:"dir"`
	Nickname    *string `msgpack:"n,omitempty"`
}

// PlayerState is one slot of the players array
type PlayerState struct {
	Active          bool    `msgpack:"ac"`
	X               float64 `msgpack:"x"`
	Y               float64 `msgpack:"y"`
	Direction       int     `msgpack:"dir"`
	Lives           int     `msgpack:"lv"`
	Alive           bool    `msgpack:"a"`
	Health          int     `msgpack:"hp"`
	ShieldTicks     int     `msgpack:"sh"`
	ShipFlag        bool    `msgpack:"shp"`
	GunFlag         bool    `msgpack:"gun"`
	SawFlag         bool    `msgpack:"saw"`
	StarCount       int     `msgpack:"st"`
	CarCount        int     `msgpack:"car"`
	MachinegunCount int     `msgpack:"mg"`
	Stunned         bool    `msgpack:"stn,omitempty"`
	Paused          bool    `msgpack:"pa,omitempty"`
	Kills           int     `msgpack:"k"`
	Score           int     `msgpack:"sc"`
	Nickname        string  `msgpack:"n,omitempty"`
}

// EnemyState is broadcast per live enemy, in list order
type EnemyState struct {
	X           float64 `msgpack:"x"`
	Y           float64 `msgpack:"y"`
	Direction   int     `msgpack:"dir"`
	Alive       bool    `msgpack:"a"`
	Archetype   int     `msgpack:"ar"`
	Health      int     `msgpack:"hp"`
	ShieldTicks int     `msgpack:"sh,omitempty"`
	Carrier     bool    `msgpack:"c,omitempty"`
}

// BulletState is broadcast per live bullet
type BulletState struct {
	ID                uint32  `msgpack:"id"`
	X                 float64 `msgpack:"x"`
	Y                 float64 `msgpack:"y"`
	Direction         int     `msgpack:"dir"`
	FromEnemy         bool    `msgpack:"e"`
	Power             int     `msgpack:"pw"`
	CanDestroyTrees   bool    `msgpack:"tr"`
	OwnerPlayerNumber int     `msgpack:"o"`
	Size              float64 `msgpack:"sz"`
}

// PowerUpState is broadcast per field power-up
type PowerUpState struct {
	ID   uint32  `msgpack:"id"`
	X    float64 `msgpack:"x"`
	Y    float64 `msgpack:"y"`
	Type int     `msgpack:"t"`
}

// BurningTile is a tree tile on fire
type BurningTile struct {
	Row             int `msgpack:"r"`
	Col             int `msgpack:"c"`
	FramesRemaining int `msgpack:"f"`
}

// WorldSnapshot is the full authoritative state broadcast every host tick
type WorldSnapshot struct {
	Tick                 uint64         `msgpack:"tick"`
	Players              []PlayerState  `msgpack:"p"`
	Enemies              []EnemyState   `msgpack:"en"`
	Bullets              []BulletState  `msgpack:"b"`
	PowerUps             []PowerUpState `msgpack:"pu"`
	MapTiles             [][]uint8      `msgpack:"m"`
	BurningTiles         []BurningTile  `msgpack:"bt"`
	GameOver             bool           `msgpack:"go"`
	Victory              bool           `msgpack:"vi"`
	LevelNumber          int            `msgpack:"lvl"`
	ConnectedPlayers     int            `msgpack:"cp"`
	EnemyFreezeDuration  int            `msgpack:"ef"`
	PlayerFreezeDuration int            `msgpack:"pf"`
	BaseAlive            bool           `msgpack:"ba"`
	BaseFlagState        int            `msgpack:"bf"`
	EnemiesRemaining     int            `msgpack:"er"`
}

// Welcome tells a freshly connected client which slot it drives
type Welcome struct {
	Slot     int   `msgpack:"slot"`
	Level    int   `msgpack:"lvl"`
	Seed     int64 `msgpack:"seed"`
	TickRate int   `msgpack:"hz"`
}

// JoinRequest is the body of POST /join
type JoinRequest struct {
	Nickname string `json:"nickname"`
	Password string `json:"password,omitempty"`
}

// Ticket is the response of POST /join
type Ticket struct {
	Token string `json:"token"`
	Slot  int    `json:"slot"`
}

// Status is the response of GET /status
type Status struct {
	Phase            string   `json:"phase"`
	Level            int      `json:"level"`
	ConnectedPlayers int      `json:"connected_players"`
	OpenSlots        int      `json:"open_slots"`
	Nicknames        []string `json:"nicknames"`
	Tick             uint64   `json:"tick"`
}
