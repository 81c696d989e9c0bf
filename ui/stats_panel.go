package ui

import (
	"fmt"
	"math"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/orrery/sim"
)

const statsHistory = 120

// StatsPanel shows frame times, storage counts, per-system timings and the
// state of every body.
type StatsPanel struct {
	world   *sim.World
	history *frameHistory
}

func NewStatsPanel(world *sim.World, historyFrames int) *StatsPanel {
	return &StatsPanel{world: world, history: newFrameHistory(historyFrames)}
}

// frameHistory is a ring of frame times in milliseconds.
type frameHistory struct {
	frames []float32
	index  int
	count  int
}

func newFrameHistory(n int) *frameHistory {
	return &frameHistory{frames: make([]float32, max(n, 1))}
}

func (h *frameHistory) Push(ms float32) {
	h.frames[h.index] = ms
	h.index = (h.index + 1) % len(h.frames)
	h.count = min(h.count+1, len(h.frames))
}

// Average is over the frames recorded so far.
func (h *frameHistory) Average() float32 {
	if h.count == 0 {
		return 0
	}
	var sum float32
	for _, ft := range h.frames {
		sum += ft
	}
	return sum / float32(h.count)
}

func (p *StatsPanel) Render() {
	clock := p.world.Clock()
	p.history.Push(float32(clock.Delta * 1000))

	imgui.SetNextWindowPosV(imgui.NewVec2(10, 330), imgui.CondOnce, imgui.NewVec2(0, 0))
	imgui.SetNextWindowSizeV(imgui.NewVec2(420, 360), imgui.CondOnce)
	if !imgui.BeginV("Frame Stats", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	avg := p.history.Average()
	fps := float32(0)
	if avg > 0 {
		fps = 1000 / avg
	}
	imgui.Text(fmt.Sprintf("Frame %d, %.1f s", clock.Frame, clock.Elapsed))
	imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avg, fps))
	cam := p.world.Camera()
	imgui.Text(fmt.Sprintf("Viewport %dx%d, aspect %.3f, distance %.0f", cam.Width, cam.Height, cam.Aspect, cam.Distance))

	imgui.Separator()
	imgui.Text("Frame Time Graph (ms)")
	imgui.PlotLinesFloatPtr("##frametime", &p.history.frames[0], int32(len(p.history.frames)))

	if imgui.TreeNodeStr("Bodies") {
		p.renderBodies()
		imgui.TreePop()
	}
	if imgui.TreeNodeStr("Systems") {
		p.renderSystems()
		imgui.TreePop()
	}
	if imgui.TreeNodeStr("Storage") {
		stats := p.world.Storage().CollectStats()
		imgui.Text(fmt.Sprintf("Total Entities: %d", stats.TotalEntityCount))
		imgui.Text(fmt.Sprintf("Archetypes: %d", stats.ArchetypeCount))
		for _, singletonType := range stats.SingletonTypes {
			imgui.BulletText(singletonType)
		}
		imgui.TreePop()
	}

	imgui.End()
}

func (p *StatsPanel) renderBodies() {
	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
	if !imgui.BeginTableV("BodiesTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		return
	}
	imgui.TableSetupColumn("Body")
	imgui.TableSetupColumn("Angle")
	imgui.TableSetupColumn("Speed")
	imgui.TableSetupColumn("Texture")
	imgui.TableHeadersRow()

	for _, name := range p.world.Planets() {
		b, ok := p.world.Body(name)
		if !ok {
			continue
		}
		imgui.TableNextRow()
		imgui.TableNextColumn()
		imgui.Text(b.Name)
		imgui.TableNextColumn()
		imgui.Text(fmt.Sprintf("%.1f°", wrapDegrees(b.Angle)))
		imgui.TableNextColumn()
		imgui.Text(sim.FormatSpeed(b.Speed))
		imgui.TableNextColumn()
		imgui.Text(b.TextureStatus.String())
	}
	imgui.EndTable()
}

func (p *StatsPanel) renderSystems() {
	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
	if !imgui.BeginTableV("SystemsTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		return
	}
	imgui.TableSetupColumn("System")
	imgui.TableSetupColumn("Last")
	imgui.TableSetupColumn("Avg")
	imgui.TableSetupColumn("Max")
	imgui.TableHeadersRow()

	for _, st := range p.world.Scheduler().GetStats().Systems {
		imgui.TableNextRow()
		imgui.TableNextColumn()
		imgui.Text(st.Name)
		imgui.TableNextColumn()
		imgui.Text(st.LastDuration.String())
		imgui.TableNextColumn()
		imgui.Text(st.AvgDuration.String())
		imgui.TableNextColumn()
		imgui.Text(st.MaxDuration.String())
	}
	imgui.EndTable()
}

// wrapDegrees maps an unbounded angle in radians to [0, 360).
func wrapDegrees(rad float64) float64 {
	deg := math.Mod(rad*180/math.Pi, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
