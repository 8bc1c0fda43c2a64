package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"deadgrid.app/internal/config"
	"deadgrid.app/internal/protocol"
	"deadgrid.app/internal/render"
)

// countScene counts live drawables. Only the session goroutine touches it;
// the test inspects it after Run returns.
type countScene struct {
	created  int
	released int
}

func (s *countScene) NewSprite(kind string) render.Sprite { return s.newSprite() }
func (s *countScene) NewLabel(text string) render.Sprite  { return s.newSprite() }

func (s *countScene) newSprite() render.Sprite {
	s.created++
	return &countSprite{scene: s}
}

func (s *countScene) NewBar() render.Bar {
	s.created++
	return &countBar{scene: s}
}

func (s *countScene) live() int { return s.created - s.released }

type countSprite struct {
	scene    *countScene
	released bool
}

func (s *countSprite) SetPosition(x, y float64) {}
func (s *countSprite) SetRotation(r float64)    {}
func (s *countSprite) SetAlpha(a float64)       {}
func (s *countSprite) SetScale(sc float64)      {}
func (s *countSprite) SetAnimation(n string)    {}
func (s *countSprite) Release() {
	if !s.released {
		s.released = true
		s.scene.released++
	}
}

type countBar struct {
	scene    *countScene
	released bool
}

func (b *countBar) SetPosition(x, y float64) {}
func (b *countBar) SetRatio(r float64)       {}
func (b *countBar) SetVisible(v bool)        {}
func (b *countBar) Release() {
	if !b.released {
		b.released = true
		b.scene.released++
	}
}

type gameServer struct {
	ts   *httptest.Server
	conn chan *websocket.Conn
	msgs chan []byte
}

func newGameServer(t *testing.T) *gameServer {
	t.Helper()
	s := &gameServer{
		conn: make(chan *websocket.Conn, 1),
		msgs: make(chan []byte, 256),
	}
	up := websocket.Upgrader{}
	s.ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s.conn <- conn
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}
			s.msgs <- raw
		}
	}))
	t.Cleanup(s.ts.Close)
	return s
}

func (s *gameServer) url() string {
	return "ws" + strings.TrimPrefix(s.ts.URL, "http")
}

func (s *gameServer) accept(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case c := <-s.conn:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("no connection")
		return nil
	}
}

// expectMsg drains outbound messages until one with the tag appears.
func (s *gameServer) expectMsg(t *testing.T, tag string) []byte {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case raw := <-s.msgs:
			var base protocol.BaseMessage
			if err := json.Unmarshal(raw, &base); err != nil {
				t.Fatalf("server got non-json frame: %s", raw)
			}
			if base.Type == tag {
				return raw
			}
		case <-deadline:
			t.Fatalf("server never received %q", tag)
		}
	}
}

func send(t *testing.T, conn *websocket.Conn, payload string) {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
		t.Fatalf("server write: %v", err)
	}
}

func waitFor(t *testing.T, desc string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", desc)
}

func testConfig(url string) config.Config {
	cfg := config.Default()
	cfg.ServerURL = url
	cfg.InputRateHz = 100
	cfg.FrameRateHz = 100
	cfg.Reconnect.BaseDelayMs = 10
	cfg.Reconnect.MaxAttempts = 1
	cfg.SurfaceCacheMB = 0
	cfg.Recorder.Enabled = false
	return cfg
}

func TestSession_WorldEndToEnd(t *testing.T) {
	srv := newGameServer(t)
	scene := &countScene{}

	sess, err := New(testConfig(srv.url()), Options{PlayerID: 1, Weapon: "pistol"},
		scene, render.NopTerrain{}, nil)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	sess.SceneReady()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- sess.Run(ctx) }()

	conn := srv.accept(t)
	defer conn.Close()

	// Joining is the first thing that happens on an open socket.
	join := srv.expectMsg(t, protocol.TypeJoinWorld)
	var jm protocol.JoinWorldMsg
	_ = json.Unmarshal(join, &jm)
	if jm.Weapon != "pistol" {
		t.Fatalf("join = %+v", jm)
	}

	// A snapshot creates the entity set.
	send(t, conn, `{"type":"world_state",
	  "players":[{"id":1,"username":"ana","x":100,"y":100,"hp":100,"max_hp":100}],
	  "zombies":[{"id":7,"type":"fast","x":300,"y":300,"hp":40,"max_hp":40,"size":20}],
	  "projectiles":[],
	  "inventory":{"wood":5}}`)
	waitFor(t, "entities", func() bool {
		st := sess.Stats()
		return st.Players == 1 && st.Zombies == 1
	})
	if st := sess.Stats(); st.Inventory.Wood != 5 {
		t.Fatalf("inventory = %+v", st.Inventory)
	}

	// Chunk streaming.
	send(t, conn, `{"type":"world_chunk_load","chunk_x":0,"chunk_y":0,"seed":1,
	  "terrain":[[0,1],[1,0]],
	  "resources":[{"id":1,"x":10,"y":10,"type":"wood","amount":20,"available":true}],
	  "buildings":[]}`)
	waitFor(t, "chunk", func() bool { return sess.Stats().Chunks == 1 })

	// An embedded kill event credits the local player.
	send(t, conn, `{"type":"world_state",
	  "players":[{"id":1,"username":"ana","x":110,"y":100,"hp":100,"max_hp":100}],
	  "zombies":[],"projectiles":[],
	  "events":[{"type":"world_zombie_killed","zombie_id":7,"killer_id":1,"coins":12}]}`)
	waitFor(t, "kill credit", func() bool {
		st := sess.Stats()
		return st.Zombies == 0 && st.Kills == 1 && st.Coins == 12
	})

	// Input flows while playing.
	sess.JoystickMove(0.5, 0)
	in := srv.expectMsg(t, protocol.TypeInput)
	var im protocol.InputMsg
	_ = json.Unmarshal(in, &im)
	if im.Seq == 0 {
		t.Fatalf("input = %+v", im)
	}

	// Death stops the input stream until respawn.
	send(t, conn, `{"type":"world_player_died","player_id":1,"killed_by":"zombie"}`)
	waitFor(t, "death", func() bool { return sess.Stats().Dead })
	send(t, conn, `{"type":"world_player_respawn","x":50,"y":50}`)
	waitFor(t, "respawn", func() bool { return !sess.Stats().Dead })

	send(t, conn, `{"type":"world_chunk_unload","chunk_x":0,"chunk_y":0}`)
	waitFor(t, "chunk unload", func() bool { return sess.Stats().Chunks == 0 })

	// Leave tears the session down and stops reconnecting.
	sess.Leave()
	srv.expectMsg(t, protocol.TypeLeaveWorld)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return after leave")
	}

	if scene.live() != 0 {
		t.Fatalf("live drawables = %d after teardown", scene.live())
	}
}

func TestSession_RoomLobbyFlow(t *testing.T) {
	srv := newGameServer(t)
	scene := &countScene{}

	sess, err := New(testConfig(srv.url()), Options{Mode: ModeRoom, RoomCode: "ABCD"},
		scene, render.NopTerrain{}, nil)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	sess.SceneReady()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- sess.Run(ctx) }()

	conn := srv.accept(t)
	defer conn.Close()

	join := srv.expectMsg(t, protocol.TypeJoinRoom)
	var jm protocol.JoinRoomMsg
	_ = json.Unmarshal(join, &jm)
	if jm.RoomCode != "ABCD" {
		t.Fatalf("join = %+v", jm)
	}

	send(t, conn, `{"type":"room_joined","room_code":"ABCD","your_id":42,
	  "players":[{"id":42,"username":"ana","is_ready":false}]}`)

	sess.SetReady(true)
	ready := srv.expectMsg(t, protocol.TypeReady)
	var rm protocol.ReadyMsg
	_ = json.Unmarshal(ready, &rm)
	if !rm.IsReady {
		t.Fatalf("ready = %+v", rm)
	}

	send(t, conn, `{"type":"game_start",
	  "players":[{"id":42,"username":"ana","x":0,"y":0,"hp":100,"max_hp":100}]}`)
	send(t, conn, `{"type":"wave_start","wave":1,"zombie_count":6}`)
	waitFor(t, "wave", func() bool {
		st := sess.Stats()
		return st.Players == 1 && st.Wave == 1 && st.ZombiesRemaining == 6
	})

	// Room snapshots use the bare "state" tag.
	send(t, conn, `{"type":"state","tick":10,
	  "players":[{"id":42,"username":"ana","x":5,"y":5,"hp":100,"max_hp":100}],
	  "zombies":[{"id":1,"type":"normal","x":50,"y":50,"hp":20,"max_hp":20,"size":20}],
	  "projectiles":[],"wave":1,"wave_countdown":null,"zombies_remaining":5}`)
	waitFor(t, "room snapshot", func() bool {
		st := sess.Stats()
		return st.Zombies == 1 && st.ZombiesRemaining == 5
	})

	send(t, conn, `{"type":"game_over","wave_reached":3,"total_kills":9,"coins_earned":120}`)

	sess.Leave()
	srv.expectMsg(t, protocol.TypeLeaveRoom)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return after leave")
	}

	if scene.live() != 0 {
		t.Fatalf("live drawables = %d after teardown", scene.live())
	}
}
