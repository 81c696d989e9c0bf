package assets

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t testing.TB, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type recordingObserver struct {
	mu      sync.Mutex
	sources []string
	errs    []error
}

func (r *recordingObserver) TextureLoaded(source string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = append(r.sources, source)
	r.errs = append(r.errs, err)
}

// gatedFS counts opens and holds each one until the gate is closed.
type gatedFS struct {
	fs.FS
	opens atomic.Int32
	gate  chan struct{}
}

func (g *gatedFS) Open(name string) (fs.File, error) {
	g.opens.Add(1)
	<-g.gate
	return g.FS.Open(name)
}

func TestLoadFromFiles(t *testing.T) {
	obs := &recordingObserver{}
	l := NewLoader(Options{
		Files:    fstest.MapFS{"earth.png": {Data: pngBytes(t, 4, 2)}},
		Observer: obs,
	})
	defer l.Close()

	img, err := l.Load(context.Background(), "earth.png")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 2), img.Bounds())

	again, err := l.Load(context.Background(), "earth.png")
	require.NoError(t, err)
	assert.Same(t, img, again)
	assert.Len(t, obs.sources, 1, "cached loads are not fetched again")
}

func TestLoadFailuresAreRemembered(t *testing.T) {
	obs := &recordingObserver{}
	l := NewLoader(Options{
		Files:    fstest.MapFS{"broken.jpg": {Data: []byte("not a jpeg")}},
		Observer: obs,
	})
	defer l.Close()

	_, err := l.Load(context.Background(), "missing.jpg")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = l.Load(context.Background(), "broken.jpg")
	assert.ErrorContains(t, err, "decode broken.jpg")

	_, err = l.Load(context.Background(), "missing.jpg")
	assert.Error(t, err)
	assert.Equal(t, []string{"missing.jpg", "broken.jpg"}, obs.sources)
}

func TestLoadWithoutFiles(t *testing.T) {
	l := NewLoader(Options{})
	defer l.Close()

	_, err := l.Load(context.Background(), "sun.jpg")
	assert.ErrorIs(t, err, ErrNoFiles)
}

func TestConcurrentLoadsAreCoalesced(t *testing.T) {
	files := &gatedFS{
		FS:   fstest.MapFS{"glow.png": {Data: pngBytes(t, 8, 8)}},
		gate: make(chan struct{}),
	}
	l := NewLoader(Options{Files: files})
	defer l.Close()

	const n = 16
	var wg sync.WaitGroup
	images := make([]image.Image, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			img, err := l.Load(context.Background(), "glow.png")
			assert.NoError(t, err)
			images[i] = img
		}()
	}

	require.Eventually(t, func() bool { return files.opens.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(files.gate)
	wg.Wait()

	assert.Equal(t, int32(1), files.opens.Load())
	for _, img := range images {
		assert.Same(t, images[0], img)
	}
}

func TestRequestDeliversResults(t *testing.T) {
	l := NewLoader(Options{Files: fstest.MapFS{"mars.png": {Data: pngBytes(t, 2, 2)}}})
	defer l.Close()

	l.Request("mars.png", "surface")
	l.Request("venus.png", "surface")
	l.Request("mars.png", "glow")

	got := map[string]Result{}
	for range 3 {
		select {
		case r := <-l.Results():
			got[r.Source+"/"+r.Tag.(string)] = r
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for results")
		}
	}

	require.Len(t, got, 3)
	assert.NoError(t, got["mars.png/surface"].Err)
	assert.NotNil(t, got["mars.png/glow"].Image)
	assert.Error(t, got["venus.png/surface"].Err)
	assert.Nil(t, got["venus.png/surface"].Image)
}

func TestLoadOverHTTP(t *testing.T) {
	body := pngBytes(t, 3, 3)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/glow.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(body)
	}))
	defer srv.Close()

	l := NewLoader(Options{Client: srv.Client(), Timeout: time.Second})
	defer l.Close()

	img, err := l.Load(context.Background(), srv.URL+"/glow.png")
	require.NoError(t, err)
	assert.Equal(t, 3, img.Bounds().Dx())

	_, err = l.Load(context.Background(), srv.URL+"/nope.png")
	assert.ErrorContains(t, err, "404")
	assert.Equal(t, int32(2), hits.Load())
}

func TestCloseStopsPendingDeliveries(t *testing.T) {
	l := NewLoader(Options{Files: fstest.MapFS{"a.png": {Data: pngBytes(t, 1, 1)}}, Buffer: 1})

	for range 4 {
		l.Request("a.png", nil)
	}

	done := make(chan struct{})
	go func() {
		l.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close blocked on undelivered results")
	}
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://example.com/a.png"))
	assert.True(t, IsRemote("http://example.com/a.png"))
	assert.False(t, IsRemote("textures/earth.jpg"))
}
