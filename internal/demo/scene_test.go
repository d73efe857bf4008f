package demo

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/session-replay/internal/logformat"
	"github.com/annel0/session-replay/internal/playback"
	"github.com/annel0/session-replay/internal/recorder"
	"github.com/annel0/session-replay/internal/storage"
	"github.com/annel0/session-replay/internal/track"
)

func TestNoise_Range(t *testing.T) {
	n := NewNoise(42)
	for i := 0; i < 100; i++ {
		v := n.At01(float64(i)*0.37, float64(i)*0.11)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
	assert.Equal(t, n.At(1.5, 2.5), NewNoise(42).At(1.5, 2.5), "один сид: одна траектория")
}

func TestRecord_Scene(t *testing.T) {
	sess := recorder.NewSession(recorder.DefaultSettings())
	scene := NewScene(DefaultOptions())

	Record(sess, scene, 5, 30)

	assert.False(t, sess.IsRecording())
	assert.InDelta(t, 5.0, sess.CurrentTime(), 1e-6)
	assert.InDelta(t, 5.0, scene.Time(), 1e-6)
	assert.Len(t, sess.StaticObjects(), 2)
	// 4 ящика, персонаж, камера и снаряды на 1.5, 3.0, 4.5
	assert.Len(t, sess.DynamicObjects(), 6+3)

	records, err := logformat.Parse(sess.DynamicData())
	require.NoError(t, err)

	projectiles, destroyed := 0, 0
	for _, rec := range records {
		if !strings.HasPrefix(rec.Name, "Projectile") {
			continue
		}
		projectiles++
		lines := strings.Split(strings.TrimSpace(rec.Tracks[track.KindLifetime.String()]), "\n")
		assert.True(t, strings.HasSuffix(lines[0], "~true"), "снаряд %s", rec.FullName())
		if strings.HasSuffix(lines[len(lines)-1], "~false") {
			destroyed++
		}
	}
	assert.Equal(t, 3, projectiles)
	// третий снаряд переживает конец записи
	assert.Equal(t, 2, destroyed)
}

func TestRecord_PlaysBack(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	sess := recorder.NewSession(recorder.DefaultSettings(), recorder.WithStore(store))
	Record(sess, NewScene(DefaultOptions()), 4, 30)

	require.True(t, sess.SaveStaticData(ctx, "demo_static"))
	require.True(t, sess.SaveDynamicData(ctx, "demo_dynamic"))

	p := playback.NewPlayer()
	_, err := p.Load(ctx, store, "demo_static", playback.LoadOptions{Static: true})
	require.NoError(t, err)
	set, err := p.Load(ctx, store, "demo_dynamic", playback.LoadOptions{})
	require.NoError(t, err)

	assert.InDelta(t, 0.0, p.StartTime(), 1e-9)
	assert.InDelta(t, 4.0, p.EndTime(), 1e-3)

	p.SetCurrentTime(2.5)
	hero, ok := findByName(set, "Hero")
	require.True(t, ok)
	st := hero.State()
	require.NotNil(t, st.Skeleton)
	assert.True(t, st.Exists)
}

func findByName(set *playback.ObjectSet, name string) (*playback.Object, bool) {
	for _, o := range set.Objects() {
		if o.Name == name {
			return o, true
		}
	}
	return nil, false
}
