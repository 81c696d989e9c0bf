package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/plus3/orrery/sim"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservers(t *testing.T) {
	m := NewCollector()

	m.TextureLoaded("earth.jpg", nil)
	m.TextureLoaded("mars.jpg", errors.New("404"))
	m.TextureLoaded("venus.jpg", errors.New("timeout"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.textureLoads.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.textureLoads.WithLabelValues("fallback")))

	m.ClientsChanged(3)
	m.ClientsChanged(2)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.streamClients))

	m.FrameDropped()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.droppedFrames))
}

func TestSystemRecordsFrames(t *testing.T) {
	m := NewCollector()
	world, err := sim.NewWorld(sim.Options{Descriptors: sim.DefaultDescriptors()})
	require.NoError(t, err)
	m.Install(world)

	world.Tick(0, 0)
	world.Tick(1.0/60, 1.0/60)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ticks))
	assert.Equal(t, 8, testutil.CollectAndCount(m.bodySpeed))
	assert.Equal(t, 0.0035, testutil.ToFloat64(m.bodySpeed.WithLabelValues("Earth")))

	mars, _ := world.Body("Mars")
	assert.Equal(t, mars.Angle, testutil.ToFloat64(m.bodyAngle.WithLabelValues("Mars")))
	assert.Positive(t, testutil.CollectAndCount(m.systemDuration))
}

func TestHandler(t *testing.T) {
	m := NewCollector()
	m.FrameDropped()

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "orrery_stream_dropped_frames_total 1")
	assert.Contains(t, string(body), "orrery_ticks_total 0")
}
