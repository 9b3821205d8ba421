package main

import (
	"flag"
	"fmt"
	"sort"
	"strings"

	"github.com/Garsondee/Glimmer/internal/effects"
	"github.com/Garsondee/Glimmer/internal/engine"
)

type runStats struct {
	runIndex int
	seed     int64

	prespawn      int
	spawnEvents   int
	reclaimBatch  int
	reclaimed     int
	degradeEvents int

	peakParticles  int
	finalParticles int
	finalSessions  int

	poolFree   int
	poolActive int

	drawOps map[engine.CanvasOp]int
	metrics engine.Metrics
}

func main() {
	var runs int
	var seconds int
	var seedBase int64
	var seedStep int64
	var effectList string
	var intensityName string

	flag.IntVar(&runs, "runs", 3, "number of headless runs")
	flag.IntVar(&seconds, "seconds", 20, "simulated seconds per run")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&effectList, "effects", "snow,embers", "comma-separated effect types to run")
	flag.StringVar(&intensityName, "intensity", "medium", "session intensity (low, medium, high)")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if seconds <= 0 {
		fmt.Println("error: -seconds must be > 0")
		return
	}
	level, err := engine.ParseIntensity(intensityName)
	if err != nil || level == engine.IntensityOff {
		fmt.Printf("error: -intensity must be low, medium, or high\n")
		return
	}
	types := strings.Split(effectList, ",")
	known := map[string]bool{}
	for _, t := range effects.Types() {
		known[t] = true
	}
	for _, t := range types {
		if !known[t] {
			fmt.Printf("error: unknown effect %q (available: %s)\n", t, strings.Join(effects.Types(), ","))
			return
		}
	}

	fmt.Printf("=== Headless Overlay Report ===\n")
	fmt.Printf("effects=%s intensity=%s runs=%d seconds=%d seed_base=%d seed_step=%d\n\n",
		effectList, level, runs, seconds, seedBase, seedStep)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		stats := runOverlay(i+1, seed, seconds, types, level)
		all = append(all, stats)
		printRun(stats)
	}

	printAggregate(all)
}

func runOverlay(runIndex int, seed int64, seconds int, types []string, level engine.Intensity) runStats {
	rig, err := engine.NewRig()
	if err != nil {
		panic(err)
	}
	defer rig.Engine.Destroy()
	effects.RegisterAll(rig.Engine, seed)

	prespawn := 0
	for _, t := range types {
		h := rig.Engine.Start(t, engine.Options{Intensity: level})
		prespawn += rig.Engine.OwnedCount(h)
	}

	peak := rig.Engine.ParticleCount()
	for s := 0; s < seconds; s++ {
		rig.StepSeconds(1)
		if n := rig.Engine.ParticleCount(); n > peak {
			peak = n
		}
	}

	reclaimed := 0
	for _, e := range rig.Trace.Filter("reclaim", "batch") {
		reclaimed += int(e.NumVal)
	}

	stats := runStats{
		runIndex:       runIndex,
		seed:           seed,
		prespawn:       prespawn,
		spawnEvents:    rig.Trace.Count("spawn", "continuous"),
		reclaimBatch:   rig.Trace.Count("reclaim", "batch"),
		reclaimed:      reclaimed,
		degradeEvents:  rig.Trace.Count("perf", "degrade"),
		peakParticles:  peak,
		finalParticles: rig.Engine.ParticleCount(),
		finalSessions:  rig.Engine.SessionCount(),
		poolFree:       rig.Engine.Pool().FreeCount(),
		poolActive:     rig.Engine.Pool().ActiveCount(),
		metrics:        rig.Engine.Metrics(),
	}
	if cv := rig.Canvas(); cv != nil {
		stats.drawOps = cv.Ops
	}
	return stats
}

func printRun(rs runStats) {
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Printf("spawning: prespawn=%d continuous=%d\n", rs.prespawn, rs.spawnEvents)
	fmt.Printf("reclaim: batches=%d particles=%d\n", rs.reclaimBatch, rs.reclaimed)
	fmt.Printf("population: peak=%d final=%d sessions=%d\n", rs.peakParticles, rs.finalParticles, rs.finalSessions)
	fmt.Printf("pool: free=%d active=%d\n", rs.poolFree, rs.poolActive)
	fmt.Printf("perf: degrade_events=%d fps=%d dropped=%d mem_est=%dB\n",
		rs.degradeEvents, rs.metrics.FPS, rs.metrics.DroppedFrames, rs.metrics.MemoryUsage)
	if len(rs.drawOps) > 0 {
		fmt.Printf("draw_ops: %s\n", formatOps(rs.drawOps))
	}
	fmt.Println()
}

func printAggregate(all []runStats) {
	totalSpawn := 0
	totalReclaimed := 0
	totalDegrade := 0
	peaks := make([]int, 0, len(all))
	for _, rs := range all {
		totalSpawn += rs.spawnEvents
		totalReclaimed += rs.reclaimed
		totalDegrade += rs.degradeEvents
		peaks = append(peaks, rs.peakParticles)
	}

	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d\n", len(all))
	fmt.Printf("avg_per_run: continuous_spawns=%.1f reclaimed=%.1f degrade_events=%.1f\n",
		avg(totalSpawn, len(all)), avg(totalReclaimed, len(all)), avg(totalDegrade, len(all)))
	fmt.Printf("peak_particles: min=%d max=%d\n", minOf(peaks), maxOf(peaks))
}

func formatOps(ops map[engine.CanvasOp]int) string {
	keys := make([]string, 0, len(ops))
	for k := range ops {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, ops[engine.CanvasOp(k)]))
	}
	return strings.Join(parts, " ")
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func minOf(vals []int) int {
	if len(vals) == 0 {
		return 0
	}
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(vals []int) int {
	if len(vals) == 0 {
		return 0
	}
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
