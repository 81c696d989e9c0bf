package main

import (
	"strings"
	"testing"
	"time"

	"github.com/plus3/orrery/ecs"
	"github.com/plus3/orrery/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsFinalize(t *testing.T) {
	s := Stats{Samples: []time.Duration{3 * time.Millisecond, time.Millisecond, 5 * time.Millisecond}}
	s.Finalize()

	assert.Equal(t, time.Millisecond, s.Min)
	assert.Equal(t, 5*time.Millisecond, s.Max)
	assert.Equal(t, 3*time.Millisecond, s.Avg)
}

func TestStatsFinalizeEmpty(t *testing.T) {
	var s Stats
	s.Finalize()
	assert.Zero(t, s.Avg)
}

func TestReportGenerate(t *testing.T) {
	r := &Report{
		Duration:     time.Second,
		Planets:      8,
		Stars:        1000,
		TotalUpdates: 60,
		Systems:      []ecs.SystemStats{{Name: "OrbitSystem", ExecutionCount: 60}},
		Bodies:       []sim.BodyFrame{{Name: "Mars", Speed: 0.003, Angle: 1.5}},
	}

	var out strings.Builder
	require.NoError(t, r.Generate(&out))

	assert.Contains(t, out.String(), "- **Total Ticks:** 60")
	assert.Contains(t, out.String(), "| OrbitSystem | 60 |")
	assert.Contains(t, out.String(), "| Mars | 0.0030 | 1.500 |")
	assert.NotContains(t, out.String(), "GC Pause")
}

func TestExtraPlanetsValidate(t *testing.T) {
	d := sim.DefaultDescriptors()
	d.Planets = append(d.Planets, extraPlanets(250)...)
	require.NoError(t, d.Validate())
}
