package protocol

import "encoding/json"

// Tile ids inside a chunk terrain grid.
const (
	TileGrass  = 0
	TileDirt   = 1
	TileForest = 2
	TileRock   = 3
	TileWater  = 4
	TileRoad   = 5
)

// World geometry. A chunk is 32x32 tiles of 32px, 1024px square.
const (
	TileSize      = 32
	TilesPerChunk = 32
	ChunkSize     = TileSize * TilesPerChunk
)

// world_state (server -> client): the per-tick snapshot of everything the
// local player can see. Parallel entity lists; absence means removal.
type WorldStateMsg struct {
	Type        string            `json:"type"`
	Players     []PlayerState     `json:"players"`
	Zombies     []ZombieState     `json:"zombies"`
	Projectiles []ProjectileState `json:"projectiles"`
	Inventory   InventoryState    `json:"inventory"`
	Events      []json.RawMessage `json:"events"`
}

func (m *WorldStateMsg) Tag() string { return TypeWorldState }

// world_chunk_load (server -> client).
type ChunkLoadMsg struct {
	Type      string          `json:"type"`
	ChunkX    int             `json:"chunk_x"`
	ChunkY    int             `json:"chunk_y"`
	Seed      int64           `json:"seed"`
	Terrain   [][]int         `json:"terrain"` // [TilesPerChunk][TilesPerChunk]
	Resources []ResourceState `json:"resources"`
	Buildings []BuildingState `json:"buildings"`
}

func (m *ChunkLoadMsg) Tag() string { return TypeChunkLoad }

// world_chunk_unload (server -> client).
type ChunkUnloadMsg struct {
	Type   string `json:"type"`
	ChunkX int    `json:"chunk_x"`
	ChunkY int    `json:"chunk_y"`
}

func (m *ChunkUnloadMsg) Tag() string { return TypeChunkUnload }

// world_buildings_update (server -> client): the full building list for one
// chunk. Wholesale replacement, no per-building diff.
type BuildingsUpdateMsg struct {
	Type      string          `json:"type"`
	ChunkX    int             `json:"chunk_x"`
	ChunkY    int             `json:"chunk_y"`
	Buildings []BuildingState `json:"buildings"`
}

func (m *BuildingsUpdateMsg) Tag() string { return TypeBuildingsUpdate }

type PlayerDiedMsg struct {
	Type     string `json:"type"`
	PlayerID int64  `json:"player_id"`
	KilledBy string `json:"killed_by,omitempty"`
}

func (m *PlayerDiedMsg) Tag() string { return TypePlayerDied }

type PlayerRespawnMsg struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

func (m *PlayerRespawnMsg) Tag() string { return TypePlayerRespawn }

type ZombieHurtMsg struct {
	Type     string `json:"type"`
	ZombieID int64  `json:"zombie_id"`
	Damage   int    `json:"damage"`
}

func (m *ZombieHurtMsg) Tag() string { return TypeZombieHurt }

type ZombieKilledMsg struct {
	Type     string         `json:"type"`
	ZombieID int64          `json:"zombie_id"`
	KillerID int64          `json:"killer_id"`
	Coins    int            `json:"coins"`
	Loot     map[string]int `json:"loot,omitempty"`
}

func (m *ZombieKilledMsg) Tag() string { return TypeZombieKilled }

type WallDamageMsg struct {
	Type   string `json:"type"`
	WallID int64  `json:"wall_id"`
	Damage int    `json:"damage"`
}

func (m *WallDamageMsg) Tag() string { return TypeWallDamage }

// state (server -> client): room-mode snapshot. Same entity lists as
// world_state plus wave bookkeeping; no chunk streaming in rooms.
type RoomStateMsg struct {
	Type             string            `json:"type"`
	Tick             uint64            `json:"tick"`
	Players          []PlayerState     `json:"players"`
	Zombies          []ZombieState     `json:"zombies"`
	Projectiles      []ProjectileState `json:"projectiles"`
	Wave             int               `json:"wave"`
	WaveCountdown    *float64          `json:"wave_countdown"`
	ZombiesRemaining int               `json:"zombies_remaining"`
}

func (m *RoomStateMsg) Tag() string { return TypeRoomState }

type RoomJoinedMsg struct {
	Type     string        `json:"type"`
	RoomCode string        `json:"room_code"`
	Players  []LobbyPlayer `json:"players"`
	YourID   int64         `json:"your_id"`
}

func (m *RoomJoinedMsg) Tag() string { return TypeRoomJoined }

type LobbyUpdateMsg struct {
	Type    string        `json:"type"`
	Players []LobbyPlayer `json:"players"`
}

func (m *LobbyUpdateMsg) Tag() string { return TypeLobbyUpdate }

type GameStartMsg struct {
	Type    string        `json:"type"`
	Players []PlayerState `json:"players"`
}

func (m *GameStartMsg) Tag() string { return TypeGameStart }

type GameOverMsg struct {
	Type        string `json:"type"`
	WaveReached int    `json:"wave_reached"`
	TotalKills  int    `json:"total_kills"`
	CoinsEarned int    `json:"coins_earned"`
}

func (m *GameOverMsg) Tag() string { return TypeGameOver }

type WaveStartMsg struct {
	Type           string   `json:"type"`
	Wave           int      `json:"wave"`
	ZombieCount    int      `json:"zombie_count"`
	SpecialZombies []string `json:"special_zombies,omitempty"`
}

func (m *WaveStartMsg) Tag() string { return TypeWaveStart }

type WaveCompleteMsg struct {
	Type       string `json:"type"`
	Wave       int    `json:"wave"`
	BonusCoins int    `json:"bonus_coins"`
	NextWave   int    `json:"next_wave"`
}

func (m *WaveCompleteMsg) Tag() string { return TypeWaveComplete }

type WaveCountdownMsg struct {
	Type      string  `json:"type"`
	NextWave  int     `json:"next_wave"`
	Countdown float64 `json:"countdown"`
}

func (m *WaveCountdownMsg) Tag() string { return TypeWaveCountdown }

// input (client -> server): one fused command per tick. Seq is a monotonic
// hint for the server, not a reliability mechanism; gaps are fine.
type InputMsg struct {
	Type     string  `json:"type"`
	Seq      uint64  `json:"seq"`
	MoveX    float64 `json:"move_x"`
	MoveY    float64 `json:"move_y"`
	AimX     float64 `json:"aim_x"`
	AimY     float64 `json:"aim_y"`
	Shooting bool    `json:"shooting"`
	Reload   bool    `json:"reload"`
}

func (m *InputMsg) Tag() string { return TypeInput }

type JoinWorldMsg struct {
	Type   string `json:"type"`
	Weapon string `json:"weapon_code,omitempty"`
}

func (m *JoinWorldMsg) Tag() string { return TypeJoinWorld }

func NewJoinWorld(weapon string) *JoinWorldMsg {
	return &JoinWorldMsg{Type: TypeJoinWorld, Weapon: weapon}
}

type LeaveWorldMsg struct {
	Type string `json:"type"`
}

func (m *LeaveWorldMsg) Tag() string { return TypeLeaveWorld }

func NewLeaveWorld() *LeaveWorldMsg { return &LeaveWorldMsg{Type: TypeLeaveWorld} }

type JoinRoomMsg struct {
	Type     string `json:"type"`
	RoomCode string `json:"room_code"`
}

func (m *JoinRoomMsg) Tag() string { return TypeJoinRoom }

func NewJoinRoom(code string) *JoinRoomMsg {
	return &JoinRoomMsg{Type: TypeJoinRoom, RoomCode: code}
}

type LeaveRoomMsg struct {
	Type string `json:"type"`
}

func (m *LeaveRoomMsg) Tag() string { return TypeLeaveRoom }

func NewLeaveRoom() *LeaveRoomMsg { return &LeaveRoomMsg{Type: TypeLeaveRoom} }

type ReadyMsg struct {
	Type    string `json:"type"`
	IsReady bool   `json:"is_ready"`
}

func (m *ReadyMsg) Tag() string { return TypeReady }

func NewReady(ready bool) *ReadyMsg { return &ReadyMsg{Type: TypeReady, IsReady: ready} }

type SwitchWeaponMsg struct {
	Type   string `json:"type"`
	Weapon string `json:"weapon_code"`
}

func (m *SwitchWeaponMsg) Tag() string { return TypeSwitchWeapon }

func NewSwitchWeapon(code string) *SwitchWeaponMsg {
	return &SwitchWeaponMsg{Type: TypeSwitchWeapon, Weapon: code}
}

type CollectResourceMsg struct {
	Type string `json:"type"`
}

func (m *CollectResourceMsg) Tag() string { return TypeCollectResource }

func NewCollectResource() *CollectResourceMsg {
	return &CollectResourceMsg{Type: TypeCollectResource}
}

func NewInput(seq uint64, moveX, moveY, aimX, aimY float64, shooting, reload bool) *InputMsg {
	return &InputMsg{
		Type:     TypeInput,
		Seq:      seq,
		MoveX:    moveX,
		MoveY:    moveY,
		AimX:     aimX,
		AimY:     aimY,
		Shooting: shooting,
		Reload:   reload,
	}
}
