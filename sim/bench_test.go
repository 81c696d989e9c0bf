package sim

import "testing"

func BenchmarkTick(b *testing.B) {
	w, _ := newTestWorld(b, Options{Stars: StarCount, Sink: nopSink{}})
	b.ReportAllocs()
	for b.Loop() {
		w.Tick(1.0/60, 1)
	}
}

func BenchmarkTickManyPlanets(b *testing.B) {
	ds := DefaultDescriptors()
	base := ds.Planets
	ds.Planets = nil
	for i := range 512 {
		p := base[i%len(base)]
		p.Name = p.Name + "-" + string(rune('A'+i/len(base)%26)) + string(rune('a'+i/len(base)/26))
		ds.Planets = append(ds.Planets, p)
	}

	w, _ := newTestWorld(b, Options{Descriptors: ds, Stars: StarCount, Sink: nopSink{}})
	b.ReportAllocs()
	for b.Loop() {
		w.Tick(1.0/60, 1)
	}
}
