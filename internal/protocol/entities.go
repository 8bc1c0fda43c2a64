package protocol

// Entity payloads inside snapshots. Field sets follow the server's
// serializers exactly; everything here is authoritative and read-only on the
// client.

type PlayerState struct {
	ID             int64   `json:"id"`
	Username       string  `json:"username"`
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
	HP             int     `json:"hp"`
	MaxHP          int     `json:"max_hp"`
	Weapon         string  `json:"weapon"`
	Ammo           int     `json:"ammo"`
	MaxAmmo        int     `json:"max_ammo"`
	Reloading      bool    `json:"reloading"`
	ReloadProgress float64 `json:"reload_progress"`
	AimAngle       float64 `json:"aim_angle"`
	IsDead         bool    `json:"is_dead"`
}

type ZombieState struct {
	ID    int64   `json:"id"`
	Kind  string  `json:"type"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	HP    int     `json:"hp"`
	MaxHP int     `json:"max_hp"`
	Size  float64 `json:"size"`
}

type ProjectileState struct {
	ID      int64   `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Angle   float64 `json:"angle"`
	OwnerID int64   `json:"owner_id"`
}

type ResourceState struct {
	ID        int64   `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Kind      string  `json:"type"` // metal, wood, food
	Amount    int     `json:"amount"`
	Available bool    `json:"available"`
}

type BuildingState struct {
	ID            int64   `json:"id"`
	TypeCode      string  `json:"type_code"`
	GridX         int     `json:"grid_x"`
	GridY         int     `json:"grid_y"`
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	HP            int     `json:"hp"`
	MaxHP         int     `json:"max_hp"`
	Level         int     `json:"level"`
	IsActive      bool    `json:"is_active"`
	IsBuilt       bool    `json:"is_built"`
	BuildProgress float64 `json:"build_progress"`
}

type InventoryState struct {
	Metal int `json:"metal"`
	Wood  int `json:"wood"`
	Food  int `json:"food"`
	Ammo  int `json:"ammo"`
	Meds  int `json:"meds"`
}

// Stable ids, unique within a class and channel for the entity lifetime.
func (p PlayerState) EntityID() int64     { return p.ID }
func (z ZombieState) EntityID() int64     { return z.ID }
func (p ProjectileState) EntityID() int64 { return p.ID }

type LobbyPlayer struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	IsReady     bool   `json:"is_ready"`
	Weapon      string `json:"weapon"`
	Kills       int    `json:"kills"`
	HighestWave int    `json:"highest_wave"`
}
