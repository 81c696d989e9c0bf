package term

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/plus3/orrery/sim"
)

// App runs the world in a terminal.
type App struct {
	screen   tcell.Screen
	world    *sim.World
	clock    sim.Clock
	sink     *Sink
	selected int
}

func NewApp(screen tcell.Screen, world *sim.World, clock sim.Clock, sink *Sink) *App {
	a := &App{screen: screen, world: world, clock: clock, sink: sink}
	a.selectPlanet(0)
	return a
}

// Run ticks and draws every interval until ctx ends or the user quits.
func (a *App) Run(ctx context.Context, interval time.Duration) error {
	events := make(chan tcell.Event, 100)
	quit := make(chan struct{})
	defer close(quit)
	go a.screen.ChannelEvents(events, quit)

	a.resize()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if !a.HandleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			a.world.Step(a.clock)
			a.sink.Draw()
		}
	}
}

// HandleEvent applies one terminal event. It returns false when the user
// asked to quit.
func (a *App) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
		w, h := ev.Size()
		a.world.Resize(w*cellWidth, h*cellHeight)

	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyUp:
			a.selectPlanet(a.selected - 1)
		case tcell.KeyDown, tcell.KeyTab:
			a.selectPlanet(a.selected + 1)
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case '+', '=':
				a.nudge(sim.SpeedStep)
			case '-', '_':
				a.nudge(-sim.SpeedStep)
			}
		}
	}
	return true
}

func (a *App) resize() {
	a.world.Resize(ViewportSize(a.screen))
}

// ViewportSize is the screen's size in nominal pixels.
func ViewportSize(screen tcell.Screen) (width, height int) {
	w, h := screen.Size()
	return w * cellWidth, h * cellHeight
}

func (a *App) selectPlanet(i int) {
	planets := a.world.Planets()
	if len(planets) == 0 {
		return
	}
	a.selected = (i%len(planets) + len(planets)) % len(planets)
	a.sink.Select(planets[a.selected])
}

// nudge moves the selected planet's speed by one step. Steps past either
// end of the range are ignored.
func (a *App) nudge(step float64) {
	name := a.world.Planets()[a.selected]
	if speed, ok := a.world.Speed(name); ok {
		a.world.SetSpeed(name, speed+step)
	}
}
