// Package metrics exposes simulation, asset and stream counters to
// Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/plus3/orrery/ecs"
	"github.com/plus3/orrery/sim"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "orrery"

// Collector owns a registry and every metric in it. It implements
// assets.Observer and stream.Observer.
type Collector struct {
	registry *prometheus.Registry

	ticks          prometheus.Counter
	frameDelta     prometheus.Histogram
	tickDuration   prometheus.Histogram
	systemDuration *prometheus.GaugeVec
	bodySpeed      *prometheus.GaugeVec
	bodyAngle      *prometheus.GaugeVec
	textureLoads   *prometheus.CounterVec
	streamClients  prometheus.Gauge
	droppedFrames  prometheus.Counter
}

func NewCollector() *Collector {
	m := &Collector{
		registry: prometheus.NewRegistry(),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Frames simulated",
		}),
		frameDelta: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_delta_seconds",
			Help:      "Clock delta handed to each frame",
			Buckets:   []float64{0.004, 0.008, 0.0167, 0.025, 0.033, 0.05, 0.1, 0.25},
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Time spent running all systems for one frame",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
		systemDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "system_last_duration_seconds",
			Help:      "Duration of the most recent run of each system",
		}, []string{"system"}),
		bodySpeed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "body_speed",
			Help:      "Angular speed in radians per 60 Hz frame",
		}, []string{"body"}),
		bodyAngle: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "body_angle_radians",
			Help:      "Accumulated orbital angle",
		}, []string{"body"}),
		textureLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "texture_loads_total",
			Help:      "Texture fetches by outcome",
		}, []string{"result"}),
		streamClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stream_clients",
			Help:      "Connected websocket clients",
		}),
		droppedFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_dropped_frames_total",
			Help:      "Frames skipped because a client was not keeping up",
		}),
	}

	m.registry.MustRegister(
		m.ticks,
		m.frameDelta,
		m.tickDuration,
		m.systemDuration,
		m.bodySpeed,
		m.bodyAngle,
		m.textureLoads,
		m.streamClients,
		m.droppedFrames,
	)

	return m
}

func (m *Collector) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Collector) TextureLoaded(source string, err error) {
	result := "ok"
	if err != nil {
		result = "fallback"
	}
	m.textureLoads.WithLabelValues(result).Inc()
}

func (m *Collector) ClientsChanged(n int) {
	m.streamClients.Set(float64(n))
}

func (m *Collector) FrameDropped() {
	m.droppedFrames.Inc()
}

// RecordTick records one frame's clock sample and the per-system timings
// from the previous frame.
func (m *Collector) RecordTick(delta float64, stats *ecs.SchedulerStats) {
	m.ticks.Inc()
	m.frameDelta.Observe(delta)

	if stats == nil {
		return
	}
	var total time.Duration
	for _, st := range stats.Systems {
		total += st.LastDuration
		m.systemDuration.WithLabelValues(st.Name).Set(st.LastDuration.Seconds())
	}
	m.tickDuration.Observe(total.Seconds())
}

func (m *Collector) RecordBody(name string, angle, speed float64) {
	m.bodyAngle.WithLabelValues(name).Set(angle)
	m.bodySpeed.WithLabelValues(name).Set(speed)
}

// System feeds the collector from inside the world's frame.
type System struct {
	Clock  ecs.Singleton[sim.FrameClock]
	Bodies ecs.Query[struct {
		*sim.Body
		*sim.Orbit
	}]

	collector *Collector
	scheduler *ecs.Scheduler
}

// Install adds a System for m to world.
func (m *Collector) Install(world *sim.World) {
	world.AddSystem(&System{collector: m, scheduler: world.Scheduler()})
}

func (s *System) Execute(frame *ecs.UpdateFrame) {
	s.collector.RecordTick(s.Clock.Get().Delta, s.scheduler.GetStats())
	for body := range s.Bodies.Values() {
		s.collector.RecordBody(body.Body.Name, body.Orbit.Angle, body.Orbit.Speed)
	}
}
