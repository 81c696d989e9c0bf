package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/orrery/assets"
	"github.com/plus3/orrery/ecs"
	"github.com/plus3/orrery/metrics"
	"github.com/plus3/orrery/render"
	"github.com/plus3/orrery/sim"
	"github.com/plus3/orrery/stream"
	"github.com/plus3/orrery/term"
	"github.com/plus3/orrery/ui"
)

const (
	ScreenWidth  = 1280
	ScreenHeight = 720
	Title        = "Orrery"
)

type config struct {
	mode     string
	width    int
	height   int
	textures string
	bodies   string
	seed     uint64
	stars    int
	hz       int
	ticks    int
	listen   string
	maxFPS   float64
	stats    bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.mode, "mode", "window", "Front end: window, term or headless.")
	flag.IntVar(&cfg.width, "width", ScreenWidth, "Initial viewport width in pixels.")
	flag.IntVar(&cfg.height, "height", ScreenHeight, "Initial viewport height in pixels.")
	flag.StringVar(&cfg.textures, "textures", "textures", "Directory holding <planet>.jpg surface textures.")
	flag.StringVar(&cfg.bodies, "bodies", "", "YAML file replacing the built-in planet table.")
	flag.Uint64Var(&cfg.seed, "seed", uint64(time.Now().UnixNano()), "Seed for initial angles and star placement.")
	flag.IntVar(&cfg.stars, "stars", sim.StarCount, "Number of background stars.")
	flag.IntVar(&cfg.hz, "hz", 60, "Tick rate for term and headless modes.")
	flag.IntVar(&cfg.ticks, "ticks", 0, "Headless only: stop after this many ticks of 1/hz seconds each.")
	flag.StringVar(&cfg.listen, "listen", "", "Address serving /ws frames and /metrics, e.g. :8080.")
	flag.Float64Var(&cfg.maxFPS, "stream-fps", 30, "Frames per second sent to each websocket client.")
	flag.BoolVar(&cfg.stats, "stats", false, "Log system timings on exit.")
	flag.Parse()

	if cfg.hz <= 0 {
		log.Fatalf("-hz must be positive, got %d", cfg.hz)
	}

	descriptors, err := loadDescriptors(cfg.bodies)
	if err != nil {
		log.Fatalf("Failed to load bodies: %v", err)
	}

	collector := metrics.NewCollector()
	hub := stream.NewHub(stream.Options{MaxFPS: cfg.maxFPS, Observer: collector})
	defer hub.Close()

	var files assets.Options
	if cfg.textures != "" {
		files.Files = os.DirFS(cfg.textures)
	}
	files.Observer = collector
	loader := assets.NewLoader(files)
	defer loader.Close()

	opts := sim.Options{
		Descriptors: descriptors,
		Seed:        cfg.seed,
		Stars:       cfg.stars,
		Width:       cfg.width,
		Height:      cfg.height,
		Loader:      loader,
		GlowSource:  sim.DefaultGlowSource,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var run func(sim.Options) (*sim.World, error)
	switch cfg.mode {
	case "window":
		run = func(opts sim.Options) (*sim.World, error) {
			return runWindow(opts, hub, collector)
		}
	case "term":
		run = func(opts sim.Options) (*sim.World, error) {
			return runTerm(ctx, opts, hub, collector, cfg.hz)
		}
	case "headless":
		run = func(opts sim.Options) (*sim.World, error) {
			return runHeadless(ctx, opts, hub, collector, cfg)
		}
	default:
		log.Fatalf("Unknown -mode %q", cfg.mode)
	}

	if cfg.listen != "" {
		srv := serve(cfg.listen, hub, collector)
		defer func() {
			shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(shutdown)
		}()
	}

	world, err := run(opts)
	if err != nil {
		log.Fatalf("%s: %v", cfg.mode, err)
	}
	if cfg.stats {
		logStats(world.Scheduler().GetStats())
	}
}

func loadDescriptors(path string) (sim.Descriptors, error) {
	if path == "" {
		return sim.DefaultDescriptors(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return sim.Descriptors{}, err
	}
	defer f.Close()
	return sim.LoadDescriptors(f)
}

// newWorld creates the world and hooks up everything that needs it.
func newWorld(opts sim.Options, hub *stream.Hub, collector *metrics.Collector) (*sim.World, error) {
	world, err := sim.NewWorld(opts)
	if err != nil {
		return nil, err
	}
	hub.Attach(world)
	collector.Install(world)
	return world, nil
}

func runWindow(opts sim.Options, hub *stream.Hub, collector *metrics.Collector) (*sim.World, error) {
	ebiten.SetWindowSize(opts.Width, opts.Height)
	ebiten.SetWindowTitle(Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	backend := ui.NewImguiBackend(Title, opts.Width, opts.Height)

	sink := render.NewSink()
	opts.Sink = sim.MultiSink{sink, hub}
	opts.Components = append(opts.Components, ui.RegisterComponents)

	world, err := newWorld(opts, hub, collector)
	if err != nil {
		return nil, err
	}
	overlay := ui.Install(world, backend)

	game := render.NewGame(world, sim.NewWallClock(), sink, overlay)
	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		return world, err
	}
	return world, nil
}

func runTerm(ctx context.Context, opts sim.Options, hub *stream.Hub, collector *metrics.Collector, hz int) (*sim.World, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	defer screen.Fini()

	// the screen owns the terminal until Fini
	log.SetOutput(io.Discard)
	defer log.SetOutput(os.Stderr)

	opts.Width, opts.Height = term.ViewportSize(screen)

	sink := term.NewSink(screen)
	opts.Sink = sim.MultiSink{sink, hub}
	world, err := newWorld(opts, hub, collector)
	if err != nil {
		return nil, err
	}

	app := term.NewApp(screen, world, sim.NewWallClock(), sink)
	return world, app.Run(ctx, time.Second/time.Duration(hz))
}

func runHeadless(ctx context.Context, opts sim.Options, hub *stream.Hub, collector *metrics.Collector, cfg config) (*sim.World, error) {
	opts.Sink = hub
	world, err := newWorld(opts, hub, collector)
	if err != nil {
		return nil, err
	}

	if cfg.ticks > 0 {
		clock := &sim.ManualClock{Step: 1 / float64(cfg.hz)}
		for range cfg.ticks {
			if ctx.Err() != nil {
				break
			}
			world.Step(clock)
		}
		for _, name := range world.Planets() {
			if b, ok := world.Body(name); ok {
				fmt.Printf("%-8s angle=%.4f speed=%s x=%.3f z=%.3f\n", b.Name, b.Angle, sim.FormatSpeed(b.Speed), b.Position.X, b.Position.Z)
			}
		}
		return world, nil
	}

	log.Printf("Running headless at %d Hz", cfg.hz)
	world.Scheduler().Run(ctx, time.Second/time.Duration(cfg.hz))
	return world, nil
}

func serve(addr string, hub *stream.Hub, collector *metrics.Collector) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		log.Printf("Serving /ws and /metrics on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http: %v", err)
		}
	}()
	return srv
}

func logStats(stats *ecs.SchedulerStats) {
	log.Printf("%d systems, %d executions", stats.SystemCount, stats.TotalExecutions)
	for _, s := range stats.Systems {
		log.Printf("  %-16s runs=%d avg=%s max=%s", s.Name, s.ExecutionCount, s.AvgDuration, s.MaxDuration)
	}
}
