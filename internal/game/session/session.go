// Package session is the composition root: it wires the transport, the
// entity reconcilers, the interpolation scheduler, the world streamer and
// the input sampler together, and runs the single goroutine that is allowed
// to touch any of them.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"deadgrid.app/internal/config"
	"deadgrid.app/internal/game/entity"
	"deadgrid.app/internal/game/input"
	"deadgrid.app/internal/game/interp"
	"deadgrid.app/internal/game/world"
	"deadgrid.app/internal/protocol"
	"deadgrid.app/internal/recorder"
	"deadgrid.app/internal/render"
	"deadgrid.app/internal/transport"
)

// Mode selects which server channel the session joins.
type Mode int

const (
	// ModeWorld is the open persistent map with chunk streaming.
	ModeWorld Mode = iota
	// ModeRoom is the private wave-survival arena; no chunk streaming.
	ModeRoom
)

// Options pick the channel and initial loadout for one session.
type Options struct {
	Mode     Mode
	RoomCode string // ModeRoom only; empty creates a new room
	Weapon   string // initial weapon code, server default when empty
	PlayerID int64  // local player id when known up front (world mode)
}

// Stats is a point-in-time view of session state, safe to hand across
// goroutines because it is copied out on the loop.
type Stats struct {
	State       transport.State
	Players     int
	Zombies     int
	Projectiles int
	Chunks      int

	Inventory protocol.InventoryState

	Wave             int
	WaveCountdown    float64
	ZombiesRemaining int

	Kills int
	Coins int
	Dead  bool
}

// Session owns all mutable game state. Everything below the exported
// surface runs on the Run goroutine; external callers reach it through
// enqueued calls only.
type Session struct {
	cfg  config.Config
	opts Options
	log  *log.Logger

	client  *transport.Client
	rec     *recorder.Recorder
	sampler *input.Sampler

	players     *entity.Reconciler[protocol.PlayerState, entity.Player]
	zombies     *entity.Reconciler[protocol.ZombieState, entity.Zombie]
	projectiles *entity.Reconciler[protocol.ProjectileState, entity.Projectile]
	interp      *interp.Scheduler
	world       *world.Streamer

	calls chan func()
	done  chan struct{}

	// State below is owned by the loop.
	localID   int64
	playing   bool
	dead      bool
	closed    bool
	inventory protocol.InventoryState
	lobby     []protocol.LobbyPlayer
	roomCode  string

	wave             int
	waveCountdown    float64
	zombiesRemaining int
	kills            int
	coins            int
}

// New builds a session against a scene and terrain renderer. Nothing
// connects until Run.
func New(cfg config.Config, opts Options, scene render.Scene, terrain render.TerrainRenderer, logger *log.Logger) (*Session, error) {
	if logger == nil {
		logger = log.Default()
	}

	s := &Session{
		cfg:     cfg,
		opts:    opts,
		log:     logger,
		sampler: input.NewSampler(),
		interp:  &interp.Scheduler{},
		calls:   make(chan func(), 64),
		done:    make(chan struct{}),
		localID: opts.PlayerID,
	}

	s.players = entity.NewReconciler[protocol.PlayerState, entity.Player](entity.PlayerClass{Scene: scene})
	s.zombies = entity.NewReconciler[protocol.ZombieState, entity.Zombie](entity.ZombieClass{Scene: scene})
	s.projectiles = entity.NewReconciler[protocol.ProjectileState, entity.Projectile](entity.ProjectileClass{Scene: scene})

	s.interp.Add(s.players, cfg.Smoothing.Player)
	s.interp.Add(s.zombies, cfg.Smoothing.Zombie)
	s.interp.Add(s.projectiles, cfg.Smoothing.Projectile)

	w, err := world.NewStreamer(scene, terrain, logger, int64(cfg.SurfaceCacheMB)*1024*1024)
	if err != nil {
		return nil, err
	}
	s.world = w

	tcfg := transport.Config{
		URL:         cfg.ServerURL,
		Token:       cfg.AuthToken,
		BaseDelay:   cfg.Reconnect.BaseDelay(),
		MaxAttempts: cfg.Reconnect.MaxAttempts,
		Log:         logger,
	}
	if cfg.Recorder.Enabled {
		rec, err := recorder.New(cfg.Recorder.Dir, cfg.ServerURL)
		if err != nil {
			return nil, fmt.Errorf("recorder: %w", err)
		}
		s.rec = rec
		tcfg.Tap = func(dir string, raw []byte) {
			if err := rec.Record(dir, raw); err != nil {
				logger.Printf("record %s frame: %v", dir, err)
			}
		}
		logger.Printf("recording session %s to %s", rec.ID, rec.Path())
	}
	s.client = transport.NewClient(tcfg)
	s.registerHandlers()

	return s, nil
}

// Run connects and drives the session until the context is cancelled or the
// reconnect budget is spent. It owns every handler and tick; no other
// goroutine touches game state while it runs.
func (s *Session) Run(ctx context.Context) error {
	if err := s.client.Connect(); err != nil {
		s.teardown()
		return err
	}

	inputTick := time.NewTicker(time.Second / time.Duration(s.cfg.InputRateHz))
	defer inputTick.Stop()
	frameTick := time.NewTicker(time.Second / time.Duration(s.cfg.FrameRateHz))
	defer frameTick.Stop()
	defer s.teardown()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-s.client.Events():
			s.client.Dispatch(ev)
			if s.closed {
				return nil
			}
		case fn := <-s.calls:
			fn()
		case <-inputTick.C:
			if s.playing && !s.dead {
				s.client.Send(s.sampler.Sample())
			}
		case <-frameTick.C:
			s.interp.Advance()
		}
	}
}

// do runs fn on the loop goroutine. After teardown the call is dropped; the
// session is gone and there is nothing left to mutate.
func (s *Session) do(fn func()) {
	select {
	case s.calls <- fn:
	case <-s.done:
	}
}

// SceneReady tells the streamer the drawing surface exists; buffered chunk
// loads drain on the loop.
func (s *Session) SceneReady() { s.do(s.world.SceneReady) }

// Input forwarding. The host container calls these from its event thread;
// each lands on the loop before the sampler sees it.

func (s *Session) KeyDown(code string) { s.do(func() { s.sampler.Keyboard.KeyDown(code) }) }
func (s *Session) KeyUp(code string)   { s.do(func() { s.sampler.Keyboard.KeyUp(code) }) }
func (s *Session) ResetKeys()          { s.do(s.sampler.Keyboard.Reset) }

func (s *Session) JoystickMove(x, y float64) { s.do(func() { s.sampler.Joystick.SetMove(x, y) }) }
func (s *Session) JoystickAim(x, y float64, firing bool) {
	s.do(func() { s.sampler.Joystick.SetAim(x, y, firing) })
}
func (s *Session) JoystickRelease() { s.do(s.sampler.Joystick.Release) }
func (s *Session) RequestReload()   { s.do(s.sampler.RequestReload) }

// One-shot commands outside the input tick.

func (s *Session) SwitchWeapon(code string) {
	s.do(func() { s.client.Send(protocol.NewSwitchWeapon(code)) })
}

func (s *Session) SetReady(ready bool) {
	s.do(func() { s.client.Send(protocol.NewReady(ready)) })
}

func (s *Session) CollectResource() {
	s.do(func() { s.client.Send(protocol.NewCollectResource()) })
}

// Leave sends the channel-appropriate leave message and stops reconnecting.
func (s *Session) Leave() {
	s.do(func() {
		if s.opts.Mode == ModeRoom {
			s.client.Send(protocol.NewLeaveRoom())
		} else {
			s.client.Send(protocol.NewLeaveWorld())
		}
		s.playing = false
		s.client.Disconnect()
	})
}

// Stats copies the current counters off the loop. Returns the zero value
// after teardown.
func (s *Session) Stats() Stats {
	ch := make(chan Stats, 1)
	s.do(func() { ch <- s.stats() })
	select {
	case st := <-ch:
		return st
	case <-s.done:
		return Stats{}
	}
}

func (s *Session) stats() Stats {
	return Stats{
		State:            s.client.State(),
		Players:          s.players.Len(),
		Zombies:          s.zombies.Len(),
		Projectiles:      s.projectiles.Len(),
		Chunks:           s.world.Len(),
		Inventory:        s.inventory,
		Wave:             s.wave,
		WaveCountdown:    s.waveCountdown,
		ZombiesRemaining: s.zombiesRemaining,
		Kills:            s.kills,
		Coins:            s.coins,
		Dead:             s.dead,
	}
}

func (s *Session) registerHandlers() {
	c := s.client

	c.On(transport.EventOpen, func(transport.Event) { s.onOpen() })
	c.On(transport.EventClose, func(ev transport.Event) {
		s.playing = false
		if ev.Exhausted {
			s.closed = true
		}
	})
	c.On(transport.EventError, func(ev transport.Event) {
		s.log.Printf("transport error: %v", ev.Err)
	})

	c.On(protocol.TypeWorldState, func(ev transport.Event) {
		s.onWorldState(ev.Msg.(*protocol.WorldStateMsg))
	})
	c.On(protocol.TypeRoomState, func(ev transport.Event) {
		s.onRoomState(ev.Msg.(*protocol.RoomStateMsg))
	})

	c.On(protocol.TypeChunkLoad, func(ev transport.Event) {
		s.world.Load(ev.Msg.(*protocol.ChunkLoadMsg))
	})
	c.On(protocol.TypeChunkUnload, func(ev transport.Event) {
		m := ev.Msg.(*protocol.ChunkUnloadMsg)
		s.world.Unload(m.ChunkX, m.ChunkY)
	})
	c.On(protocol.TypeBuildingsUpdate, func(ev transport.Event) {
		m := ev.Msg.(*protocol.BuildingsUpdateMsg)
		s.world.UpdateBuildings(m.ChunkX, m.ChunkY, m.Buildings)
	})
	c.On(protocol.TypeWallDamage, func(ev transport.Event) {
		m := ev.Msg.(*protocol.WallDamageMsg)
		s.world.ApplyWallDamage(m.WallID, m.Damage)
	})

	c.On(protocol.TypePlayerDied, func(ev transport.Event) {
		m := ev.Msg.(*protocol.PlayerDiedMsg)
		if m.PlayerID == s.localID {
			s.dead = true
			s.log.Printf("died (killed by %s)", m.KilledBy)
		}
	})
	c.On(protocol.TypePlayerRespawn, func(ev transport.Event) {
		m := ev.Msg.(*protocol.PlayerRespawnMsg)
		s.dead = false
		if p, ok := s.players.Get(s.localID); ok {
			// Respawn teleports; interpolating across the map looks wrong.
			p.Snap(m.X, m.Y)
		}
	})

	c.On(protocol.TypeZombieKilled, func(ev transport.Event) {
		m := ev.Msg.(*protocol.ZombieKilledMsg)
		if m.KillerID == s.localID {
			s.kills++
			s.coins += m.Coins
			for res, n := range m.Loot {
				s.log.Printf("loot: %d %s", n, res)
			}
		}
	})

	c.On(protocol.TypeRoomJoined, func(ev transport.Event) {
		m := ev.Msg.(*protocol.RoomJoinedMsg)
		s.roomCode = m.RoomCode
		s.localID = m.YourID
		s.lobby = m.Players
		s.log.Printf("joined room %s as player %d", m.RoomCode, m.YourID)
	})
	c.On(protocol.TypeLobbyUpdate, func(ev transport.Event) {
		s.lobby = ev.Msg.(*protocol.LobbyUpdateMsg).Players
	})
	c.On(protocol.TypeGameStart, func(ev transport.Event) {
		m := ev.Msg.(*protocol.GameStartMsg)
		s.players.Reconcile(m.Players)
		s.playing = true
		s.dead = false
		s.kills = 0
		s.coins = 0
		s.log.Printf("game started with %d players", len(m.Players))
	})
	c.On(protocol.TypeGameOver, func(ev transport.Event) {
		m := ev.Msg.(*protocol.GameOverMsg)
		s.playing = false
		s.log.Printf("game over: wave %d, %d kills, %d coins", m.WaveReached, m.TotalKills, m.CoinsEarned)
	})

	c.On(protocol.TypeWaveStart, func(ev transport.Event) {
		m := ev.Msg.(*protocol.WaveStartMsg)
		s.wave = m.Wave
		s.waveCountdown = 0
		s.zombiesRemaining = m.ZombieCount
	})
	c.On(protocol.TypeWaveComplete, func(ev transport.Event) {
		m := ev.Msg.(*protocol.WaveCompleteMsg)
		s.coins += m.BonusCoins
		s.zombiesRemaining = 0
	})
	c.On(protocol.TypeWaveCountdown, func(ev transport.Event) {
		m := ev.Msg.(*protocol.WaveCountdownMsg)
		s.waveCountdown = m.Countdown
	})
}

// onOpen fires on every successful connect, including reconnects: the
// server treats each socket as a fresh join, so state that only arrives
// once per join is re-requested by joining again.
func (s *Session) onOpen() {
	switch s.opts.Mode {
	case ModeRoom:
		s.client.Send(protocol.NewJoinRoom(s.opts.RoomCode))
	default:
		s.client.Send(protocol.NewJoinWorld(s.opts.Weapon))
		s.playing = true
	}
}

func (s *Session) onWorldState(m *protocol.WorldStateMsg) {
	s.players.Reconcile(m.Players)
	s.zombies.Reconcile(m.Zombies)
	s.projectiles.Reconcile(m.Projectiles)
	s.inventory = m.Inventory
	for _, raw := range m.Events {
		s.dispatchEmbedded(raw)
	}
}

func (s *Session) onRoomState(m *protocol.RoomStateMsg) {
	s.players.Reconcile(m.Players)
	s.zombies.Reconcile(m.Zombies)
	s.projectiles.Reconcile(m.Projectiles)
	s.wave = m.Wave
	s.zombiesRemaining = m.ZombiesRemaining
	if m.WaveCountdown != nil {
		s.waveCountdown = *m.WaveCountdown
	} else {
		s.waveCountdown = 0
	}
}

// dispatchEmbedded routes one event carried inside a snapshot through the
// same handlers as a top-level message.
func (s *Session) dispatchEmbedded(raw json.RawMessage) {
	msg, err := protocol.Decode(raw)
	if err != nil {
		s.log.Printf("drop malformed snapshot event: %v", err)
		return
	}
	if u, ok := msg.(protocol.UnknownMsg); ok {
		s.log.Printf("drop unknown snapshot event %q", u.Type)
		return
	}
	s.client.Dispatch(transport.Event{Tag: msg.Tag(), Msg: msg})
}

// teardown releases everything in dependency order. Runs exactly once, on
// the loop goroutine.
func (s *Session) teardown() {
	select {
	case <-s.done:
		return
	default:
	}
	close(s.done)

	s.playing = false
	s.client.Disconnect()

	s.players.Clear()
	s.zombies.Clear()
	s.projectiles.Clear()
	s.world.Teardown()

	if s.rec != nil {
		if err := s.rec.Close(); err != nil {
			s.log.Printf("close recorder: %v", err)
		}
	}
}
