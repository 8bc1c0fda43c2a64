// Replay inspects recorded wire traffic: it lists recordings from the index
// and re-runs a recording's inbound frames through the sync engine against a
// no-op scene, reporting what the engine would have held.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"deadgrid.app/internal/game/entity"
	"deadgrid.app/internal/game/world"
	"deadgrid.app/internal/protocol"
	"deadgrid.app/internal/recorder"
	"deadgrid.app/internal/render"
)

func main() {
	var (
		dir  = flag.String("dir", "./recordings", "recordings directory")
		id   = flag.String("id", "", "session id to replay")
		file = flag.String("file", "", "replay a log file directly (bypasses the index)")
	)
	flag.Parse()

	if *file != "" {
		if err := replay(*file); err != nil {
			fmt.Fprintln(os.Stderr, "replay:", err)
			os.Exit(1)
		}
		return
	}

	if *id == "" {
		if err := list(*dir); err != nil {
			fmt.Fprintln(os.Stderr, "list:", err)
			os.Exit(1)
		}
		return
	}

	if err := replay(filepath.Join(*dir, *id+".jsonl.zst")); err != nil {
		fmt.Fprintln(os.Stderr, "replay:", err)
		os.Exit(1)
	}
}

func list(dir string) error {
	ix, err := recorder.OpenIndex(filepath.Join(dir, "index.db"))
	if err != nil {
		return err
	}
	defer ix.Close()

	rows, err := ix.Sessions()
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("no recordings")
		return nil
	}
	for _, r := range rows {
		fmt.Printf("%s  %s  frames=%d bytes=%d  %s\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Frames, r.Bytes, r.ServerURL)
	}
	return nil
}

func replay(path string) error {
	frames, err := recorder.ReadWireLog(path)
	if err != nil {
		return err
	}

	logger := log.New(os.Stdout, "[replay] ", 0)
	scene := render.NopScene{}

	players := entity.NewReconciler[protocol.PlayerState, entity.Player](entity.PlayerClass{Scene: scene})
	zombies := entity.NewReconciler[protocol.ZombieState, entity.Zombie](entity.ZombieClass{Scene: scene})
	projectiles := entity.NewReconciler[protocol.ProjectileState, entity.Projectile](entity.ProjectileClass{Scene: scene})

	streamer, err := world.NewStreamer(scene, render.NopTerrain{}, logger, 0)
	if err != nil {
		return err
	}
	streamer.SceneReady()

	var in, out, malformed int
	var maxChunks int
	counts := map[string]int{}

	for _, fr := range frames {
		if fr.Dir == recorder.DirOut {
			out++
			continue
		}
		in++

		msg, err := protocol.Decode(fr.Raw)
		if err != nil {
			malformed++
			continue
		}
		counts[msg.Tag()]++

		switch m := msg.(type) {
		case *protocol.WorldStateMsg:
			players.Reconcile(m.Players)
			zombies.Reconcile(m.Zombies)
			projectiles.Reconcile(m.Projectiles)
		case *protocol.RoomStateMsg:
			players.Reconcile(m.Players)
			zombies.Reconcile(m.Zombies)
			projectiles.Reconcile(m.Projectiles)
		case *protocol.ChunkLoadMsg:
			streamer.Load(m)
		case *protocol.ChunkUnloadMsg:
			streamer.Unload(m.ChunkX, m.ChunkY)
		case *protocol.BuildingsUpdateMsg:
			streamer.UpdateBuildings(m.ChunkX, m.ChunkY, m.Buildings)
		case *protocol.WallDamageMsg:
			streamer.ApplyWallDamage(m.WallID, m.Damage)
		}
		if streamer.Len() > maxChunks {
			maxChunks = streamer.Len()
		}
	}

	fmt.Printf("frames: %d in, %d out, %d malformed\n", in, out, malformed)

	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		fmt.Printf("  %-24s %d\n", tag, counts[tag])
	}

	fmt.Printf("final: players=%d zombies=%d projectiles=%d chunks=%d (peak %d)\n",
		players.Len(), zombies.Len(), projectiles.Len(), streamer.Len(), maxChunks)
	return nil
}
