package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/plus3/orrery/sim"
)

func main() {
	duration := flag.Duration("duration", 10*time.Second, "The total duration the benchmark should run for.")
	extra := flag.Int("planets", 0, "Extra planets to add beyond the built-in table.")
	stars := flag.Int("stars", sim.StarCount, "Number of background stars.")
	seed := flag.Uint64("seed", 1, "Seed for initial angles and star placement.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	log.Println("Starting orrery benchmark...")

	descriptors := sim.DefaultDescriptors()
	descriptors.Planets = append(descriptors.Planets, extraPlanets(*extra)...)

	world, err := sim.NewWorld(sim.Options{
		Descriptors: descriptors,
		Seed:        *seed,
		Stars:       *stars,
		Width:       1280,
		Height:      720,
	})
	if err != nil {
		log.Fatalf("Failed to create world: %v", err)
	}

	report := &Report{
		Duration:       *duration,
		Planets:        len(descriptors.Planets),
		Stars:          *stars,
		GCPauseMetrics: *gcPauseMetrics,
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	log.Printf("Running simulation for %s...\n", *duration)
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	clock := sim.NewWallClock()
	startTime := time.Now()

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			updateStart := time.Now()
			world.Step(clock)
			report.UpdateTime.Samples = append(report.UpdateTime.Samples, time.Since(updateStart))
			report.TotalUpdates++
		}
	}

	report.TotalTime = time.Since(startTime)
	report.UpdateTime.Finalize()
	report.Systems = world.Scheduler().GetStats().Systems
	runtime.ReadMemStats(&report.MemStatsEnd)

	for _, name := range world.Planets() {
		if b, ok := world.Body(name); ok {
			report.Bodies = append(report.Bodies, b)
		}
	}

	log.Println("Simulation finished.")

	fmt.Println("\n\n--- Benchmark Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Fatalf("Failed to generate report: %v", err)
	}
	fmt.Println("--- End of Report ---")
}

// extraPlanets fills orbits past the built-in table at a steady spacing.
func extraPlanets(n int) []sim.Descriptor {
	out := make([]sim.Descriptor, n)
	for i := range out {
		out[i] = sim.Descriptor{
			Name:   fmt.Sprintf("Extra-%d", i+1),
			Radius: 1,
			Orbit:  52 + float64(i)*2,
			Speed:  sim.SnapSpeed(sim.MinSpeed + float64(i%200)*sim.SpeedStep),
			Color:  sim.Color(0x808080),
		}
	}
	return out
}
