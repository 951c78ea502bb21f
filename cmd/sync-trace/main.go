// ABOUTME: Trace tool for the floor sync state machine
// ABOUTME: Drives a seeded ensemble off the generated beat or a band schedule and prints sync transitions
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/harperreed/dancefloor/internal/source"
	"github.com/harperreed/dancefloor/internal/stage"
	"github.com/harperreed/dancefloor/pkg/dance"
	"github.com/harperreed/dancefloor/pkg/spectrum"
)

var (
	dancers = flag.Int("dancers", 8, "Number of dancers")
	seconds = flag.Float64("seconds", 60, "Simulated seconds")
	rate    = flag.Int("rate", 60, "Ticks per second")
	seed    = flag.Int64("seed", 1, "Random seed")
	bpm     = flag.Float64("bpm", source.DefaultBPM, "Tempo of the generated beat")
	sched   = flag.Bool("schedule", false, "Drive bands from the quiet/build/drop schedule instead of the beat")
	debug   = flag.Bool("debug", false, "Log sync episodes")
)

// section is a stretch of synthetic spectrum
type section struct {
	name  string
	secs  float64
	bands spectrum.Bands
}

var schedule = []section{
	{"quiet", 8, spectrum.Bands{Bass: 0.1, Mid: 0.1, High: 0.05, UltraHigh: 0.02}},
	{"build", 6, spectrum.Bands{Bass: 0.5, Mid: 0.4, High: 0.3, UltraHigh: 0.1}},
	{"drop", 10, spectrum.Bands{Bass: 0.95, Mid: 0.6, High: 0.4, UltraHigh: 0.2}},
	{"breakdown", 6, spectrum.Bands{Bass: 0.05, Mid: 0.2, High: 0.1, UltraHigh: 0.05}},
}

// bandsAt loops the schedule
func bandsAt(t float64) (string, spectrum.Bands) {
	var total float64
	for _, s := range schedule {
		total += s.secs
	}
	for t >= total {
		t -= total
	}
	for _, s := range schedule {
		if t < s.secs {
			return s.name, s.bands
		}
		t -= s.secs
	}
	last := schedule[len(schedule)-1]
	return last.name, last.bands
}

func main() {
	flag.Parse()

	logrus.SetLevel(logrus.WarnLevel)
	if *debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	opts := dance.DefaultOptions()
	opts.Count = *dancers
	opts.Seed = *seed
	ens, err := dance.NewEnsemble(opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	dt := 1 / float64(*rate)
	ticks := max(int(*seconds*float64(*rate)), 1)

	var next func(i int) (string, dance.Frame)
	if *sched {
		next = func(i int) (string, dance.Frame) {
			name, b := bandsAt(float64(i) * dt)
			ens.TickBands(b, dt)
			return name, ens.Snapshot()
		}
	} else {
		st := stage.New(ens, source.NewBeat(*bpm, *seed), stage.Config{FrameRate: *rate})
		next = func(int) (string, dance.Frame) {
			st.Advance(1)
			return "beat", st.Latest()
		}
	}

	fmt.Printf("=== Sync Trace: %d dancers, %.0fs at %d fps, seed %d ===\n", *dancers, *seconds, *rate, *seed)

	mode := dance.Individual.String()
	syncedTicks := 0
	moves := map[string]int{}
	for i := 0; i < ticks; i++ {
		name, frame := next(i)

		if frame.SyncMode != mode {
			fmt.Printf("%7.2fs  %-9s  %-10s -> %-10s  move=%s\n", float64(i)*dt, name, mode, frame.SyncMode, frame.SyncMove)
			mode = frame.SyncMode
		}
		if frame.SyncMode != dance.Individual.String() {
			syncedTicks++
		}
		for _, d := range frame.Dancers {
			moves[d.Move]++
		}
	}

	fmt.Printf("\nsynced %.1f%% of ticks\n\nmove share:\n", 100*float64(syncedTicks)/float64(ticks))
	names := make([]string, 0, len(moves))
	total := 0
	for name, n := range moves {
		names = append(names, name)
		total += n
	}
	sort.Slice(names, func(i, j int) bool { return moves[names[i]] > moves[names[j]] })
	for _, name := range names {
		fmt.Printf("  %-10s %5.1f%%\n", name, 100*float64(moves[name])/float64(total))
	}
}
