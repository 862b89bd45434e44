package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-vis/engine/camera"
	"github.com/Carmen-Shannon/oxy-vis/engine/config"
	"github.com/Carmen-Shannon/oxy-vis/engine/game_object"
	"github.com/Carmen-Shannon/oxy-vis/engine/instance"
	"github.com/Carmen-Shannon/oxy-vis/engine/light"
	"github.com/Carmen-Shannon/oxy-vis/engine/material"
	"github.com/Carmen-Shannon/oxy-vis/engine/renderer"
	"github.com/Carmen-Shannon/oxy-vis/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-vis/engine/scene"
	"github.com/Carmen-Shannon/oxy-vis/engine/visible"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func litScene(name string, options ...scene.SceneBuilderOption) scene.Scene {
	sun := light.NewLight(light.LightTypeDirectional, light.WithName("sun"), light.WithCastsShadows(true))
	options = append([]scene.SceneBuilderOption{
		scene.WithActive(true),
		scene.WithLightGroup("main", sun),
		scene.WithObjects(
			game_object.NewGameObject(instance.NewOpaque(material.NewMaterial(), instance.WithName("floor")),
				game_object.WithLightGroup("main"), game_object.WithCastsShadows(true)),
			game_object.NewGameObject(instance.NewInstance(instance.KindTranslucentRegular, material.NewMaterial(), instance.WithName("glass")),
				game_object.WithLightGroup("main")),
		),
	}, options...)
	return scene.NewScene(name, camera.NewCamera(), options...)
}

// passRecorder counts the batches each pass receives.
type passRecorder struct {
	mu      sync.Mutex
	batches map[pipeline.Pass]int
	cameras []camera.Camera
}

func newPassRecorder() *passRecorder {
	return &passRecorder{batches: map[pipeline.Pass]int{}}
}

func (p *passRecorder) options() []renderer.RendererBuilderOption {
	var opts []renderer.RendererBuilderOption
	for _, pass := range pipeline.Passes {
		opts = append(opts, renderer.WithPassHandler(pass, func(_ context.Context, set visible.VisibleSet, batches []renderer.Batch) error {
			p.mu.Lock()
			defer p.mu.Unlock()
			if len(batches) > 0 {
				p.batches[pass] += len(batches)
			}
			if pass == pipeline.PassShadow {
				p.cameras = append(p.cameras, set.Camera())
			}
			return nil
		}))
	}
	return opts
}

func TestRenderFrame(t *testing.T) {
	rec := newPassRecorder()
	r := renderer.NewRenderer(rec.options()...)
	t.Cleanup(r.Stop)
	frame := uuid.New()
	e := NewEngine(WithRenderer(r), WithProfiling(true), WithAssemblerOptions(visible.WithFrameID(frame)))

	s := litScene("yard")
	set, err := e.RenderFrame(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, frame, set.FrameID())
	assert.Same(t, s.Camera(), set.Camera())
	assert.Equal(t, map[pipeline.Pass]int{
		pipeline.PassShadow:         1,
		pipeline.PassLightGroup:     1,
		pipeline.PassTranslucentLit: 1,
	}, rec.batches)
	assert.Equal(t, uint64(1), e.Frames())
	assert.Equal(t, uint64(1), e.Profiler().Frames())

	e.DisableProfiler()
	_, err = e.RenderFrame(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), e.Frames())
	assert.Equal(t, uint64(1), e.Profiler().Frames())
}

func TestRenderFrameErrors(t *testing.T) {
	errDevice := errors.New("device lost")
	r := renderer.NewRenderer(renderer.WithPassHandler(pipeline.PassLightGroup,
		func(context.Context, visible.VisibleSet, []renderer.Batch) error { return errDevice }))
	t.Cleanup(r.Stop)
	e := NewEngine(WithRenderer(r))

	set, err := e.RenderFrame(context.Background(), litScene("yard"))
	assert.NotNil(t, set)
	assert.ErrorIs(t, err, errDevice)
	assert.ErrorContains(t, err, `engine: scene "yard"`)

	broken := litScene("cellar", scene.WithLightGroup("dark"))
	broken.Add(game_object.NewGameObject(instance.NewOpaque(material.NewMaterial()), game_object.WithLightGroup("dark")))
	set, err = e.RenderFrame(context.Background(), broken)
	assert.Nil(t, set)
	assert.ErrorIs(t, err, visible.ErrLightGroupLacksLights)
	assert.Equal(t, uint64(2), e.Frames())
}

func TestRenderActiveOrder(t *testing.T) {
	rec := newPassRecorder()
	r := renderer.NewRenderer(append(rec.options(), renderer.WithPassWorkers(1))...)
	t.Cleanup(r.Stop)

	back, front, hidden := litScene("back"), litScene("front"), litScene("hidden", scene.WithActive(false))
	e := NewEngine(WithRenderer(r), WithScene(10, front), WithScene(-1, back), WithScene(0, hidden))

	var frames []visible.VisibleSet
	e.SetFrameCallback(func(set visible.VisibleSet, err error) {
		assert.NoError(t, err)
		frames = append(frames, set)
	})
	require.NoError(t, e.RenderActive(context.Background()))
	require.Len(t, frames, 2)
	assert.Same(t, back.Camera(), frames[0].Camera())
	assert.Same(t, front.Camera(), frames[1].Camera())
	assert.Equal(t, []camera.Camera{back.Camera(), front.Camera()}, rec.cameras)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, e.RenderActive(ctx), context.Canceled)
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.PassWorkers = 1
	e := NewEngine(WithConfig(cfg), WithScene(0, litScene("yard")), WithRenderFrameLimit(500))

	ctx, cancel := context.WithCancel(context.Background())
	e.SetFrameCallback(func(visible.VisibleSet, error) {
		if e.Frames() >= 3 {
			cancel()
		}
	})

	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.GreaterOrEqual(t, e.Frames(), uint64(3))

	// The engine owned its renderer and stopped it.
	assert.ErrorIs(t, e.Renderer().Execute(context.Background(), nil, nil), renderer.ErrStopped)
}

func TestRunStopsOnQuit(t *testing.T) {
	e := NewEngine(WithTickRate(200))
	var ticks int
	e.SetTickCallback(func(dt float32) {
		ticks++
		if ticks == 2 {
			e.Quit()
		}
	})

	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background()) }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Quit")
	}
	assert.GreaterOrEqual(t, ticks, 2)
	assert.Zero(t, e.Frames())
	e.Quit()
}

func TestScenesRegistry(t *testing.T) {
	e := NewEngine()
	t.Cleanup(e.Renderer().Stop)
	s := litScene("a")
	e.AddScene(3, s)
	assert.Same(t, s, e.Scene(3))
	assert.Len(t, e.Scenes(), 1)
	e.RemoveScene(3)
	assert.Nil(t, e.Scene(3))
	assert.Empty(t, e.Scenes())
}

func TestWithConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Profiling = true
	cfg.ProfileInterval = "2s"
	e := NewEngine(WithConfig(cfg), WithLogger(nil))
	t.Cleanup(e.Renderer().Stop)

	assert.Equal(t, cfg, e.Config())
	assert.NotNil(t, e.Logger())
	_, err := e.RenderFrame(context.Background(), litScene("a"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), e.Profiler().Frames())
}
