package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/hexclash/backend/internal/sim"
)

// Headless soak tool for the simulation core. Runs the physics loop as fast
// as the CPU allows and reports throughput plus the final score, so board
// tuning changes can be compared without a server or a browser.
func main() {
	var (
		runs   = flag.Int("runs", 1, "number of independent simulations")
		ticks  = flag.Int("ticks", 3600, "ticks per run (60 per simulated second)")
		seed   = flag.Int64("seed", 1, "base RNG seed; run i uses seed+i")
		width  = flag.Float64("width", 1280, "board width in pixels")
		height = flag.Float64("height", 720, "board height in pixels")
		roster = flag.Int("roster", 3, "discs per team")
		speed  = flag.Float64("speed", 1.0, "time scale multiplier")
	)
	flag.Parse()

	// Same cadence the arena loop drives at.
	const stepMillis = 1000.0 / 60.0

	for run := 0; run < *runs; run++ {
		runSeed := *seed + int64(run)
		s := sim.New(sim.Config{
			Width:      *width,
			Height:     *height,
			RosterSize: *roster,
			TimeScale:  *speed,
			Seed:       runSeed,
		})
		s.Start()

		started := time.Now()
		now := 0.0
		for i := 0; i < *ticks; i++ {
			now += stepMillis
			s.Tick(now)
		}
		elapsed := time.Since(started)
		if elapsed <= 0 {
			elapsed = time.Nanosecond
		}

		white, black := s.Points()
		fmt.Printf("run=%d seed=%d ticks=%d elapsed=%s ticks/sec=%.0f score=%d-%d\n",
			run, runSeed, *ticks, elapsed.Round(time.Microsecond),
			float64(*ticks)/elapsed.Seconds(), white, black)
	}
}
