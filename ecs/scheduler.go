package ecs

import (
	"context"
	"reflect"
	"time"
)

// SchedulerStats summarizes system execution times.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Systems         []SystemStats
}

type SystemStats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

// storageBinder is implemented by Query and Singleton.
type storageBinder interface {
	Init(storage *Storage)
}

// frameExecutor is implemented by Query.
type frameExecutor interface {
	Execute()
}

type registeredSystem struct {
	system  System
	queries []frameExecutor
	stats   SystemStats
}

// Scheduler runs registered systems in registration order.
type Scheduler struct {
	storage *Storage
	systems []*registeredSystem
	frame   UpdateFrame
}

func NewScheduler(storage *Storage) *Scheduler {
	return &Scheduler{
		storage: storage,
		frame: UpdateFrame{
			Commands: newCommands(),
			Storage:  storage,
		},
	}
}

// Register binds the Query and Singleton fields of system and appends it to
// the run order.
func (s *Scheduler) Register(system System) {
	entry := &registeredSystem{
		system: system,
		stats: SystemStats{
			Name:        systemName(system),
			MinDuration: time.Duration(1<<63 - 1),
		},
	}

	value := reflect.ValueOf(system)
	if value.Kind() == reflect.Ptr {
		value = value.Elem()
	}
	if value.Kind() == reflect.Struct {
		for i := 0; i < value.NumField(); i++ {
			field := value.Field(i)
			if !field.CanSet() || field.Kind() != reflect.Struct {
				continue
			}

			addr := field.Addr().Interface()
			if binder, ok := addr.(storageBinder); ok {
				binder.Init(s.storage)
			}
			if query, ok := addr.(frameExecutor); ok {
				entry.queries = append(entry.queries, query)
			}
		}
	}

	s.systems = append(s.systems, entry)
}

func systemName(system System) string {
	t := reflect.TypeOf(system)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Once runs every system once with delta time dt, then flushes commands.
func (s *Scheduler) Once(dt float64) {
	s.frame.DeltaTime = dt

	for _, entry := range s.systems {
		start := time.Now()
		for _, query := range entry.queries {
			query.Execute()
		}
		entry.system.Execute(&s.frame)
		elapsed := time.Since(start)

		st := &entry.stats
		st.ExecutionCount++
		st.LastDuration = elapsed
		st.TotalDuration += elapsed
		st.MinDuration = min(st.MinDuration, elapsed)
		st.MaxDuration = max(st.MaxDuration, elapsed)
	}

	s.frame.Commands.Flush(s.storage)
}

// Run calls Once every interval, passing the measured wall-clock delta,
// until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			s.Once(dt)
		}
	}
}

// GetStats returns a copy of the per-system statistics.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount: len(s.systems),
		Systems:     make([]SystemStats, len(s.systems)),
	}

	for i, entry := range s.systems {
		st := entry.stats
		if st.ExecutionCount > 0 {
			st.AvgDuration = st.TotalDuration / time.Duration(st.ExecutionCount)
		} else {
			st.MinDuration = 0
		}
		stats.Systems[i] = st
		stats.TotalExecutions += st.ExecutionCount
	}

	return stats
}
