package protocol_test

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"deadgrid.app/internal/protocol"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	validate := func(s *jsonschema.Schema, v any) {
		t.Helper()
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	inputSchema := compile("input.schema.json")
	stateSchema := compile("world_state.schema.json")
	chunkSchema := compile("world_chunk_load.schema.json")

	// An encoded input message must satisfy its own schema.
	raw, err := protocol.Encode(protocol.NewInput(7, 0.5, -0.5, 1, 0, true, false))
	if err != nil {
		t.Fatalf("encode input: %v", err)
	}
	var input any
	_ = json.Unmarshal(raw, &input)
	validate(inputSchema, input)

	var state any
	_ = json.Unmarshal([]byte(`{
	  "type":"world_state",
	  "players":[{"id":1,"username":"ana","x":100.5,"y":200,"hp":80,"max_hp":100,
	    "weapon":"pistol","ammo":7,"max_ammo":12,"reloading":false,
	    "reload_progress":0,"aim_angle":1.57,"is_dead":false}],
	  "zombies":[{"id":9,"type":"fast","x":300,"y":310,"hp":30,"max_hp":40,"size":16}],
	  "projectiles":[{"id":44,"x":120,"y":210,"angle":0.3,"owner_id":1}],
	  "inventory":{"metal":2,"wood":5,"food":1,"ammo":24,"meds":0},
	  "events":[{"type":"world_zombie_hurt","zombie_id":9,"damage":10}]
	}`), &state)
	validate(stateSchema, state)

	var chunk any
	_ = json.Unmarshal([]byte(chunkSample()), &chunk)
	validate(chunkSchema, chunk)
}

// chunkSample builds a syntactically complete chunk payload with a full
// 32x32 terrain grid.
func chunkSample() string {
	row := "["
	for i := 0; i < protocol.TilesPerChunk; i++ {
		if i > 0 {
			row += ","
		}
		row += fmt.Sprint(i % 6)
	}
	row += "]"

	grid := "["
	for i := 0; i < protocol.TilesPerChunk; i++ {
		if i > 0 {
			grid += ","
		}
		grid += row
	}
	grid += "]"

	return `{
	  "type":"world_chunk_load",
	  "chunk_x":2,"chunk_y":-1,"seed":1337,
	  "terrain":` + grid + `,
	  "resources":[{"id":5,"x":2100.0,"y":-300.0,"type":"wood","amount":40,"available":true}],
	  "buildings":[{"id":12,"type_code":"wall_wood","grid_x":66,"grid_y":-20,
	    "width":1,"height":1,"hp":90,"max_hp":100,"level":1,
	    "is_active":true,"is_built":true,"build_progress":1.0}]
	}`
}
