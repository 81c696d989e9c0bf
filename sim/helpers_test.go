package sim

import (
	"image"
	"testing"

	"github.com/plus3/orrery/assets"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	bodies    [][]BodyFrame
	starfield []StarfieldFrame
	cameras   []CameraFrame
}

func (r *recordingSink) UpdateBodies(bodies []BodyFrame) {
	r.bodies = append(r.bodies, append([]BodyFrame(nil), bodies...))
}

func (r *recordingSink) UpdateStarfield(stars StarfieldFrame) {
	r.starfield = append(r.starfield, stars)
}

func (r *recordingSink) UpdateCamera(camera CameraFrame) {
	r.cameras = append(r.cameras, camera)
}

func (r *recordingSink) lastBodies() []BodyFrame {
	if len(r.bodies) == 0 {
		return nil
	}
	return r.bodies[len(r.bodies)-1]
}

type loadRequest struct {
	source string
	tag    any
}

type fakeLoader struct {
	requests []loadRequest
	results  chan assets.Result
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{results: make(chan assets.Result, 64)}
}

func (f *fakeLoader) Request(source string, tag any) {
	f.requests = append(f.requests, loadRequest{source: source, tag: tag})
}

func (f *fakeLoader) Results() <-chan assets.Result {
	return f.results
}

// complete delivers a result to every request for source.
func (f *fakeLoader) complete(source string, img image.Image, err error) int {
	n := 0
	for _, r := range f.requests {
		if r.source == source {
			f.results <- assets.Result{Source: r.source, Tag: r.tag, Image: img, Err: err}
			n++
		}
	}
	return n
}

func newTestWorld(t testing.TB, opts Options) (*World, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	if opts.Descriptors.Planets == nil {
		opts.Descriptors = DefaultDescriptors()
	}
	if opts.Sink == nil {
		opts.Sink = sink
	}
	if opts.Width == 0 {
		opts.Width, opts.Height = 1280, 720
	}
	w, err := NewWorld(opts)
	require.NoError(t, err)
	return w, sink
}

func body(t testing.TB, w *World, name string) BodyFrame {
	t.Helper()
	b, ok := w.Body(name)
	require.True(t, ok, "no body %q", name)
	return b
}
