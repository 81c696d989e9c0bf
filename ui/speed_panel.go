package ui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/kamstrup/intmap"
	"github.com/plus3/orrery/ecs"
	"github.com/plus3/orrery/sim"
)

// SpeedPanel shows one slider and one text field per planet.
type SpeedPanel struct {
	world  *sim.World
	fields *intmap.Map[ecs.EntityId, *speedField]
}

// speedField is the editable state of one planet's controls.
type speedField struct {
	name    string
	slider  float32
	text    string
	editing bool
}

func NewSpeedPanel(world *sim.World) *SpeedPanel {
	p := &SpeedPanel{
		world:  world,
		fields: intmap.New[ecs.EntityId, *speedField](len(world.Planets())),
	}
	for _, name := range world.Planets() {
		id, _ := world.Entity(name)
		p.fields.Put(id, &speedField{name: name})
	}
	p.sync()
	return p
}

// sync copies current speeds into every field not being edited.
func (p *SpeedPanel) sync() {
	p.fields.ForEach(func(_ ecs.EntityId, f *speedField) bool {
		if f.editing {
			return true
		}
		if speed, ok := p.world.Speed(f.name); ok {
			f.slider = float32(speed)
			f.text = sim.FormatSpeed(speed)
		}
		return true
	})
}

func (p *SpeedPanel) field(name string) *speedField {
	id, ok := p.world.Entity(name)
	if !ok {
		return nil
	}
	f, _ := p.fields.Get(id)
	return f
}

// commitSlider applies a slider position, snapped to the step grid.
func (p *SpeedPanel) commitSlider(f *speedField) bool {
	return p.world.SetSpeed(f.name, sim.SnapSpeed(float64(f.slider)))
}

// commitText applies typed text. Rejected text is replaced by the current
// speed on the next sync.
func (p *SpeedPanel) commitText(f *speedField) bool {
	f.editing = false
	return p.world.SetSpeedText(f.name, f.text)
}

func (p *SpeedPanel) Render() {
	p.sync()

	imgui.SetNextWindowPosV(imgui.NewVec2(10, 10), imgui.CondOnce, imgui.NewVec2(0, 0))
	imgui.SetNextWindowSizeV(imgui.NewVec2(360, 0), imgui.CondOnce)
	if !imgui.BeginV("Orbital Speeds", nil, imgui.WindowFlagsAlwaysAutoResize) {
		imgui.End()
		return
	}

	for _, name := range p.world.Planets() {
		f := p.field(name)
		if f == nil {
			continue
		}

		imgui.SetNextItemWidth(200)
		if imgui.SliderFloatV(fmt.Sprintf("##%s-slider", name), &f.slider, sim.MinSpeed, sim.MaxSpeed, "%.4f", imgui.SliderFlagsAlwaysClamp) {
			p.commitSlider(f)
		}

		imgui.SameLine()
		imgui.SetNextItemWidth(70)
		if imgui.InputTextWithHint(fmt.Sprintf("##%s-text", name), "speed", &f.text, imgui.InputTextFlagsCharsDecimal|imgui.InputTextFlagsEnterReturnsTrue, nil) {
			p.commitText(f)
		}
		if imgui.IsItemActive() {
			f.editing = true
		} else if f.editing {
			p.commitText(f)
		}

		imgui.SameLine()
		imgui.Text(name)
	}

	imgui.End()
}
