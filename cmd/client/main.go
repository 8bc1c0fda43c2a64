// Headless client: joins a server and runs the full sync engine against a
// no-op scene. Useful for soak-testing servers and for producing recordings.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"deadgrid.app/internal/config"
	"deadgrid.app/internal/game/session"
	"deadgrid.app/internal/render"
)

func main() {
	var (
		cfgPath = flag.String("config", "", "path to yaml config (optional)")
		url     = flag.String("url", "", "ws url (overrides config)")
		token   = flag.String("token", "", "auth token (overrides config)")
		room    = flag.String("room", "", "join a room instead of the open world")
		weapon  = flag.String("weapon", "", "initial weapon code")
		record  = flag.Bool("record", false, "record wire traffic")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[client] ", log.LstdFlags|log.Lmicroseconds)

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		cfg, err = config.Load(*cfgPath)
		if err != nil {
			logger.Fatalf("config: %v", err)
		}
	}
	if *url != "" {
		cfg.ServerURL = *url
	}
	if *token != "" {
		cfg.AuthToken = *token
	}
	if *record {
		cfg.Recorder.Enabled = true
	}

	opts := session.Options{Weapon: *weapon}
	if *room != "" {
		opts.Mode = session.ModeRoom
		opts.RoomCode = *room
	}

	sess, err := session.New(cfg, opts, render.NopScene{}, render.NopTerrain{}, logger)
	if err != nil {
		logger.Fatalf("session: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// No real drawing surface; the engine can stream immediately.
	sess.SceneReady()

	go func() {
		tick := time.NewTicker(5 * time.Second)
		defer tick.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
				st := sess.Stats()
				logger.Printf("state=%s players=%d zombies=%d projectiles=%d chunks=%d wave=%d kills=%d coins=%d",
					st.State, st.Players, st.Zombies, st.Projectiles, st.Chunks, st.Wave, st.Kills, st.Coins)
			}
		}
	}()

	if err := sess.Run(ctx); err != nil && err != context.Canceled {
		logger.Fatalf("run: %v", err)
	}
	logger.Printf("session ended")
}
