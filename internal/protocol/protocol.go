package protocol

import "encoding/json"

// Inbound message types (server -> client).
const (
	TypeWorldState      = "world_state"
	TypeChunkLoad       = "world_chunk_load"
	TypeChunkUnload     = "world_chunk_unload"
	TypeBuildingsUpdate = "world_buildings_update"
	TypePlayerDied      = "world_player_died"
	TypePlayerRespawn   = "world_player_respawn"
	TypeZombieHurt      = "world_zombie_hurt"
	TypeZombieKilled    = "world_zombie_killed"
	TypeWallDamage      = "world_wall_damage"

	TypeRoomState     = "state"
	TypeRoomJoined    = "room_joined"
	TypeLobbyUpdate   = "lobby_update"
	TypeGameStart     = "game_start"
	TypeGameOver      = "game_over"
	TypeWaveStart     = "wave_start"
	TypeWaveComplete  = "wave_complete"
	TypeWaveCountdown = "wave_countdown"
)

// Outbound message types (client -> server).
const (
	TypeInput           = "input"
	TypeJoinWorld       = "join_world"
	TypeLeaveWorld      = "leave_world"
	TypeJoinRoom        = "join_room"
	TypeLeaveRoom       = "leave_room"
	TypeReady           = "ready"
	TypeSwitchWeapon    = "switch_weapon"
	TypeCollectResource = "collect_resource"
)

// Message is one decoded wire message. The concrete type is fixed by the
// "type" tag; handlers switch over it.
type Message interface {
	Tag() string
}

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type string `json:"type"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}

// UnknownMsg carries a message whose tag we do not handle. Callers log and
// drop it; it never errors the connection.
type UnknownMsg struct {
	Type string
	Raw  json.RawMessage
}

func (m UnknownMsg) Tag() string { return m.Type }

// Decode parses one wire frame into its concrete message type.
func Decode(b []byte) (Message, error) {
	base, err := DecodeBase(b)
	if err != nil {
		return nil, err
	}
	switch base.Type {
	case TypeWorldState:
		return decodeAs[*WorldStateMsg](b)
	case TypeChunkLoad:
		return decodeAs[*ChunkLoadMsg](b)
	case TypeChunkUnload:
		return decodeAs[*ChunkUnloadMsg](b)
	case TypeBuildingsUpdate:
		return decodeAs[*BuildingsUpdateMsg](b)
	case TypePlayerDied:
		return decodeAs[*PlayerDiedMsg](b)
	case TypePlayerRespawn:
		return decodeAs[*PlayerRespawnMsg](b)
	case TypeZombieHurt:
		return decodeAs[*ZombieHurtMsg](b)
	case TypeZombieKilled:
		return decodeAs[*ZombieKilledMsg](b)
	case TypeWallDamage:
		return decodeAs[*WallDamageMsg](b)
	case TypeRoomState:
		return decodeAs[*RoomStateMsg](b)
	case TypeRoomJoined:
		return decodeAs[*RoomJoinedMsg](b)
	case TypeLobbyUpdate:
		return decodeAs[*LobbyUpdateMsg](b)
	case TypeGameStart:
		return decodeAs[*GameStartMsg](b)
	case TypeGameOver:
		return decodeAs[*GameOverMsg](b)
	case TypeWaveStart:
		return decodeAs[*WaveStartMsg](b)
	case TypeWaveComplete:
		return decodeAs[*WaveCompleteMsg](b)
	case TypeWaveCountdown:
		return decodeAs[*WaveCountdownMsg](b)
	default:
		return UnknownMsg{Type: base.Type, Raw: append(json.RawMessage(nil), b...)}, nil
	}
}

func decodeAs[T Message](b []byte) (Message, error) {
	var m T
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// Encode marshals an outbound message. Constructors in messages.go fill the
// tag; the server routes on it verbatim.
func Encode(m Message) ([]byte, error) {
	return json.Marshal(m)
}
