package ui

import (
	"fmt"
	"image"
	"maps"
	"reflect"
	"slices"
	"sync"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/orrery/ecs"
	"github.com/plus3/orrery/sim"
)

type fieldInfo struct {
	Name      string
	Index     int
	IsPointer bool
}

// fieldCache remembers the exported fields of component types.
type fieldCache struct {
	mu     sync.RWMutex
	fields map[reflect.Type][]fieldInfo
}

func newFieldCache() *fieldCache {
	return &fieldCache{fields: make(map[reflect.Type][]fieldInfo)}
}

func (c *fieldCache) get(t reflect.Type) []fieldInfo {
	c.mu.RLock()
	cached, ok := c.fields[t]
	c.mu.RUnlock()
	if ok {
		return cached
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var fields []fieldInfo
	if t.Kind() == reflect.Struct {
		for i := range t.NumField() {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			fields = append(fields, fieldInfo{Name: f.Name, Index: i, IsPointer: f.Type.Kind() == reflect.Ptr})
		}
	}
	c.fields[t] = fields
	return fields
}

// fieldLine is one flattened component field, e.g. "Position.X".
type fieldLine struct {
	Name  string
	Value string
}

var imageType = reflect.TypeFor[image.Image]()

// lines flattens v into dotted field paths with printable values.
func (c *fieldCache) lines(v reflect.Value, prefix string, out []fieldLine) []fieldLine {
	for _, f := range c.get(v.Type()) {
		name := prefix + f.Name
		fv := v.Field(f.Index)
		if f.IsPointer {
			if fv.IsNil() {
				out = append(out, fieldLine{name, "nil"})
				continue
			}
			fv = fv.Elem()
		}

		switch {
		case fv.Type() == imageType:
			out = append(out, fieldLine{name, describeImage(fv)})
		case fv.Kind() == reflect.Func:
			out = append(out, fieldLine{name, "func"})
		case fv.Kind() == reflect.Struct:
			out = c.lines(fv, name+".", out)
		case fv.Kind() == reflect.Slice:
			out = append(out, fieldLine{name, fmt.Sprintf("[%d items]", fv.Len())})
		case fv.Kind() == reflect.Float32 || fv.Kind() == reflect.Float64:
			out = append(out, fieldLine{name, fmt.Sprintf("%.4f", fv.Float())})
		default:
			out = append(out, fieldLine{name, fmt.Sprint(fv.Interface())})
		}
	}
	return out
}

func describeImage(v reflect.Value) string {
	if v.IsNil() {
		return "none"
	}
	b := v.Interface().(image.Image).Bounds()
	return fmt.Sprintf("%dx%d", b.Dx(), b.Dy())
}

// componentLines reads every component of id.
func componentLines(storage *ecs.Storage, cache *fieldCache, id ecs.EntityId) map[string][]fieldLine {
	out := make(map[string][]fieldLine)
	for _, a := range storage.Archetypes() {
		if a.ID() != id.ArchetypeId() {
			continue
		}
		for _, t := range a.Types() {
			comp := storage.GetComponent(id, t)
			if comp == nil {
				continue
			}
			v := reflect.ValueOf(comp)
			if v.Kind() == reflect.Ptr {
				v = v.Elem()
			}
			out[t.Name()] = cache.lines(v, "", nil)
		}
	}
	return out
}

// InspectorPanel shows the raw components of one body.
type InspectorPanel struct {
	world    *sim.World
	cache    *fieldCache
	selected string
}

func NewInspectorPanel(world *sim.World) *InspectorPanel {
	p := &InspectorPanel{world: world, cache: newFieldCache()}
	if bodies := world.Bodies(); len(bodies) > 0 {
		p.selected = bodies[0]
	}
	return p
}

func (p *InspectorPanel) Render() {
	imgui.SetNextWindowPosV(imgui.NewVec2(440, 10), imgui.CondOnce, imgui.NewVec2(0, 0))
	imgui.SetNextWindowSizeV(imgui.NewVec2(360, 420), imgui.CondOnce)
	if !imgui.BeginV("Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	for i, name := range p.world.Bodies() {
		if i > 0 {
			imgui.SameLine()
		}
		if imgui.SelectableBoolV(name, name == p.selected, 0, imgui.NewVec2(60, 0)) {
			p.selected = name
		}
	}
	imgui.Separator()

	id, ok := p.world.Entity(p.selected)
	if !ok {
		imgui.Text("No body selected")
		imgui.End()
		return
	}
	imgui.Text(fmt.Sprintf("Entity ID: %d", id))
	imgui.Text(fmt.Sprintf("Archetype: 0x%X", id.ArchetypeId()))

	components := componentLines(p.world.Storage(), p.cache, id)
	for _, t := range slices.Sorted(maps.Keys(components)) {
		if !imgui.TreeNodeStr(t) {
			continue
		}
		if imgui.BeginTableV("##"+t, 2, imgui.TableFlagsBorders|imgui.TableFlagsRowBg, imgui.NewVec2(0, 0), 0) {
			for _, line := range components[t] {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(line.Name)
				imgui.TableNextColumn()
				imgui.Text(line.Value)
			}
			imgui.EndTable()
		}
		imgui.TreePop()
	}

	imgui.End()
}
