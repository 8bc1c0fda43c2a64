package protocol

import (
	"testing"
)

func TestDecode_RoutesByTag(t *testing.T) {
	msg, err := Decode([]byte(`{
	  "type":"world_state",
	  "players":[{"id":1,"x":10,"y":20,"hp":100,"max_hp":100}],
	  "zombies":[{"id":2,"type":"tank","x":5,"y":5,"hp":200,"max_hp":200,"size":30}],
	  "projectiles":[],
	  "inventory":{"wood":3},
	  "events":[{"type":"world_zombie_hurt","zombie_id":2,"damage":15}]
	}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	ws, ok := msg.(*WorldStateMsg)
	if !ok {
		t.Fatalf("decoded %T, want *WorldStateMsg", msg)
	}
	if len(ws.Players) != 1 || ws.Players[0].EntityID() != 1 {
		t.Fatalf("players = %+v", ws.Players)
	}
	if ws.Zombies[0].Kind != "tank" || ws.Zombies[0].Size != 30 {
		t.Fatalf("zombie = %+v", ws.Zombies[0])
	}
	if ws.Inventory.Wood != 3 {
		t.Fatalf("inventory = %+v", ws.Inventory)
	}
	if len(ws.Events) != 1 {
		t.Fatalf("events = %d", len(ws.Events))
	}

	ev, err := Decode(ws.Events[0])
	if err != nil {
		t.Fatalf("decode embedded event: %v", err)
	}
	hurt, ok := ev.(*ZombieHurtMsg)
	if !ok || hurt.ZombieID != 2 || hurt.Damage != 15 {
		t.Fatalf("embedded event = %#v", ev)
	}
}

func TestDecode_ChunkLoad(t *testing.T) {
	msg, err := Decode([]byte(`{
	  "type":"world_chunk_load","chunk_x":-3,"chunk_y":7,"seed":42,
	  "terrain":[[0,1],[4,5]],
	  "resources":[{"id":1,"x":9,"y":9,"type":"metal","amount":10,"available":false}],
	  "buildings":[]
	}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	cl := msg.(*ChunkLoadMsg)
	if cl.ChunkX != -3 || cl.ChunkY != 7 || cl.Seed != 42 {
		t.Fatalf("chunk header = %+v", cl)
	}
	if cl.Terrain[1][1] != TileRoad {
		t.Fatalf("terrain[1][1] = %d", cl.Terrain[1][1])
	}
	if cl.Resources[0].Kind != "metal" || cl.Resources[0].Available {
		t.Fatalf("resource = %+v", cl.Resources[0])
	}
}

func TestDecode_UnknownTagIsNotAnError(t *testing.T) {
	msg, err := Decode([]byte(`{"type":"season_event","payload":123}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	u, ok := msg.(UnknownMsg)
	if !ok {
		t.Fatalf("decoded %T, want UnknownMsg", msg)
	}
	if u.Type != "season_event" {
		t.Fatalf("type = %q", u.Type)
	}
}

func TestDecode_MalformedPayload(t *testing.T) {
	if _, err := Decode([]byte(`{"type":"input","seq":"not-a-number"}`)); err == nil {
		t.Fatal("want error for mistyped field")
	}
	if _, err := Decode([]byte(`{`)); err == nil {
		t.Fatal("want error for truncated json")
	}
}

func TestEncode_InputCarriesTag(t *testing.T) {
	b, err := Encode(NewInput(3, 1, 0, 0, -1, true, true))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	back, err := Decode(b)
	if err != nil {
		t.Fatalf("decode back: %v", err)
	}
	in, ok := back.(*InputMsg)
	if !ok {
		t.Fatalf("decoded %T, want *InputMsg", back)
	}
	if in.Seq != 3 || in.MoveX != 1 || in.AimY != -1 || !in.Shooting || !in.Reload {
		t.Fatalf("round trip = %+v", in)
	}
}
