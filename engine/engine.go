package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-vis/engine/config"
	"github.com/Carmen-Shannon/oxy-vis/engine/profiler"
	"github.com/Carmen-Shannon/oxy-vis/engine/renderer"
	"github.com/Carmen-Shannon/oxy-vis/engine/scene"
	"github.com/Carmen-Shannon/oxy-vis/engine/visible"
	"go.uber.org/zap"
)

// idleWait is how long the render loop sleeps when no scene is active.
const idleWait = time.Millisecond

// engine implements the Engine interface.
// Coordinates the fixed-rate tick loop and the render loop.
type engine struct {
	mu *sync.RWMutex

	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running atomic.Bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	cfg           config.Config
	logger        *zap.Logger
	renderer      renderer.Renderer
	ownsRenderer  bool
	assemblerOpts []visible.AssemblerBuilderOption

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool
	frames           atomic.Uint64

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	frameCallback  func(set visible.VisibleSet, err error)

	scenes map[int]scene.Scene

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine is the main entry point for the engine.
// It turns the active scenes into one visible set per scene and frame and hands
// every set to the renderer.
type Engine interface {
	// Renderer returns the renderer frames are handed to.
	//
	// Returns:
	//   - renderer.Renderer: the renderer
	Renderer() renderer.Renderer

	// Config returns the configuration the engine was built with.
	//
	// Returns:
	//   - config.Config: the configuration
	Config() config.Config

	// Logger returns the engine's logger.
	//
	// Returns:
	//   - *zap.Logger: the logger
	Logger() *zap.Logger

	// Profiler returns the frame profiler.
	//
	// Returns:
	//   - *profiler.Profiler: the profiler
	Profiler() *profiler.Profiler

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// Frames returns the number of frames rendered so far, failed frames included.
	//
	// Returns:
	//   - uint64: the frame count
	Frames() uint64

	// SetTickRate sets the engine tick rate in frames per second.
	// The tick callback will be called at this rate for game logic updates.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	// Use this for game logic and scene updates.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetFrameCallback registers the function called after every frame rendered by Run.
	//
	// Parameters:
	//   - callback: receives the frame's visible set (nil if building failed) and its error
	SetFrameCallback(callback func(set visible.VisibleSet, err error))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// AddScene registers a scene at the given z-index key.
	// Scenes are rendered in ascending key order during the render loop.
	//
	// Parameters:
	//   - key: the z-index determining render order (lower renders first)
	//   - s: the Scene to register
	AddScene(key int, s scene.Scene)

	// RemoveScene removes the scene at the given z-index key.
	//
	// Parameters:
	//   - key: the z-index of the scene to remove
	RemoveScene(key int)

	// Scene retrieves the scene registered at the given z-index key.
	// Returns nil if no scene exists at that key.
	//
	// Parameters:
	//   - key: the z-index of the scene to retrieve
	//
	// Returns:
	//   - scene.Scene: the scene at the key, or nil if not found
	Scene(key int) scene.Scene

	// Scenes returns a copy of all registered scenes keyed by z-index.
	//
	// Returns:
	//   - map[int]scene.Scene: a copy of the scenes map
	Scenes() map[int]scene.Scene

	// RenderFrame builds the visible set of one scene, plans it and executes the
	// renderer's passes. The assembler used to build the set is discarded.
	//
	// Parameters:
	//   - ctx: cancels the frame; passed to every pass handler
	//   - s: the scene to render
	//
	// Returns:
	//   - visible.VisibleSet: the frame's snapshot, nil if building it failed
	//   - error: a build error or the renderer's error
	RenderFrame(ctx context.Context, s scene.Scene) (visible.VisibleSet, error)

	// RenderActive renders every active scene once, in ascending key order.
	//
	// Parameters:
	//   - ctx: cancels the remaining frames
	//
	// Returns:
	//   - error: the frame errors joined
	RenderActive(ctx context.Context) error

	// Run starts the tick and render loops and blocks until ctx is done or Quit is called.
	// A renderer created by the engine is stopped when Run returns.
	//
	// Parameters:
	//   - ctx: stops the engine when done
	//
	// Returns:
	//   - error: the context error if ctx ended the run, otherwise nil
	Run(ctx context.Context) error

	// Quit signals all engine goroutines to stop and shuts down the engine.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// Without WithRenderer the engine creates and owns a renderer configured from its
// Config.
//
// Parameters:
//   - options: functional options for engine configuration (config, renderer, profiling, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:              &sync.RWMutex{},
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		scenes:          make(map[int]scene.Scene),
		cfg:             config.Default(),
		logger:          zap.NewNop(),
		engineTickRate:  time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.renderer == nil {
		e.renderer = renderer.NewRenderer(e.cfg.RendererOptions(e.logger)...)
		e.ownsRenderer = true
	}
	e.profiler = profiler.NewProfiler(
		profiler.WithLogger(e.logger),
		profiler.WithInterval(e.cfg.Interval()),
	)

	return e
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Config() config.Config {
	return e.cfg
}

func (e *engine) Logger() *zap.Logger {
	return e.logger
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

func (e *engine) Frames() uint64 {
	return e.frames.Load()
}

func (e *engine) RenderFrame(ctx context.Context, s scene.Scene) (visible.VisibleSet, error) {
	if s == nil {
		panic("engine: RenderFrame requires a non-nil Scene")
	}
	start := time.Now()
	defer e.frames.Add(1)

	opts := append(e.cfg.AssemblerOptions(e.logger), e.assemblerOpts...)
	set, err := s.BuildVisibleSet(opts...)
	if err != nil {
		err = fmt.Errorf("engine: scene %q: %w", s.Name(), err)
		e.record(start, 0, err)
		return nil, err
	}

	batches, err := e.renderer.Plan(set)
	if err == nil {
		err = e.renderer.Execute(ctx, set, batches)
	}
	if err != nil {
		err = fmt.Errorf("engine: scene %q: %w", s.Name(), err)
	}
	e.record(start, len(batches), err)
	return set, err
}

// record feeds one frame into the profiler when profiling is enabled.
func (e *engine) record(start time.Time, batches int, err error) {
	if !e.profilingEnabled.Load() {
		return
	}
	e.profiler.Record(time.Since(start), batches, err)
	e.profiler.Tick()
}

// activeScenes returns the active scenes in ascending z-index order.
func (e *engine) activeScenes() []scene.Scene {
	e.mu.RLock()
	defer e.mu.RUnlock()
	keys := make([]int, 0, len(e.scenes))
	for k := range e.scenes {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	var active []scene.Scene
	for _, k := range keys {
		if s := e.scenes[k]; s.Active() {
			active = append(active, s)
		}
	}
	return active
}

func (e *engine) RenderActive(ctx context.Context) error {
	var errs []error
	for _, s := range e.activeScenes() {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		set, err := e.RenderFrame(ctx, s)
		if cb := e.getFrameCallback(); cb != nil {
			cb(set, err)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (e *engine) getFrameCallback() func(visible.VisibleSet, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.frameCallback
}

func (e *engine) Run(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return errors.New("engine: already running")
	}
	defer e.running.Store(false)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	e.wg.Add(2)
	go e.handleEngine(runCtx)
	go e.handleRender(runCtx)

	select {
	case <-ctx.Done():
	case <-e.quitChannel:
	}
	cancel()
	e.signalQuit()
	e.wg.Wait()

	if e.ownsRenderer {
		e.renderer.Stop()
	}
	return ctx.Err()
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// handleEngine runs the fixed-rate engine tick loop in its own goroutine.
// Fires the tick callback at the configured tick rate and listens for dynamic rate changes
// via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine(ctx context.Context) {
	defer e.wg.Done()

	e.mu.RLock()
	rate := e.engineTickRate
	e.mu.RUnlock()
	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			e.mu.RLock()
			cb := e.tickCallback
			e.mu.RUnlock()
			if cb != nil {
				cb(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.mu.Lock()
			e.engineTickRate = newRate
			e.mu.Unlock()
		}
	}
}

// handleRender runs the uncapped (or frame-limited) render loop in its own goroutine.
// Every iteration renders the active scenes in ascending z-index order. Frame errors
// are logged and do not stop the loop. Recovers from panics to avoid crashing the
// process and signals quit on recovery.
func (e *engine) handleRender(ctx context.Context) {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("render loop recovered from panic", zap.Any("panic", r))
			e.signalQuit()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.quitChannel:
			return
		default:
		}

		frameStart := time.Now()
		if len(e.activeScenes()) == 0 {
			time.Sleep(idleWait)
			continue
		}
		if err := e.RenderActive(ctx); err != nil && ctx.Err() == nil {
			e.logger.Warn("frame failed", zap.Error(err))
		}

		e.mu.RLock()
		limit := e.renderFrameLimit
		e.mu.RUnlock()
		if limit > 0 {
			if remaining := limit - time.Since(frameStart); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if e.running.Load() {
		// Non-blocking send; a pending update is replaced.
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
		return
	}
	e.mu.Lock()
	e.engineTickRate = newRate
	e.mu.Unlock()
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickCallback = callback
}

func (e *engine) SetFrameCallback(callback func(set visible.VisibleSet, err error)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.frameCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.renderFrameLimit = frameDuration(fps)
}

// frameDuration converts a rate to a period; rates <= 0 mean uncapped.
func frameDuration(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}

func (e *engine) AddScene(key int, s scene.Scene) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scenes[key] = s
}

func (e *engine) RemoveScene(key int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.scenes, key)
}

func (e *engine) Scene(key int) scene.Scene {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	e.mu.RLock()
	defer e.mu.RUnlock()
	cp := make(map[int]scene.Scene, len(e.scenes))
	for k, v := range e.scenes {
		cp[k] = v
	}
	return cp
}
