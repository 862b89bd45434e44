package renderer

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-vis/engine/light"
	"github.com/Carmen-Shannon/oxy-vis/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-vis/engine/visible"
	"go.uber.org/zap"
)

// ErrStopped is returned by Render after Stop.
var ErrStopped = errors.New("renderer: stopped")

// PassHandler draws one pass of a frame. Handlers of different passes run
// concurrently and only read from the immutable visible set and their batches.
// A handler is invoked every frame even when its pass has no batches, so shadow
// handlers can still clear the maps of lights without casters.
type PassHandler func(ctx context.Context, set visible.VisibleSet, batches []Batch) error

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex
	// frameMu is read-held for the whole of Execute; Stop write-locks it so the pool
	// is never stopped under a frame in flight.
	frameMu *sync.RWMutex

	pipelineCache map[string]pipeline.Pipeline
	handlers      map[pipeline.Pass]PassHandler

	logger *zap.Logger

	shadowDepthBias  int32
	shadowSlopeScale float32

	// passPool runs pass handlers. Workers persist across frames; a WaitGroup
	// provides the per-frame barrier.
	passPool      worker.DynamicWorkerPool
	passWorkers   int
	passQueueSize int
	stopped       bool
}

// Renderer defines the interface for the frame renderer.
//
// The Renderer turns a finalized visible set into draw batches, resolves the pipeline
// of each batch from its cache and hands every pass to the handler registered for it.
type Renderer interface {
	// Pipeline retrieves the cached Pipeline associated with the given key.
	// If the Pipeline does not exist, this will return nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// Pipelines retrieves a copy of the pipeline cache.
	//
	// Returns:
	//   - map[string]pipeline.Pipeline: a map of pipeline keys to their corresponding Pipeline objects
	Pipelines() map[string]pipeline.Pipeline

	// SetPipeline adds or updates a Pipeline in the cache with the given key.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to add or update in the cache
	//   - p: the Pipeline to add or update in the cache
	SetPipeline(key string, p pipeline.Pipeline)

	// RegisterPassHandler sets the handler for a pass, replacing any previous one.
	// A nil handler unregisters the pass.
	//
	// Parameters:
	//   - pass: the render pass
	//   - h: the handler
	RegisterPassHandler(pass pipeline.Pass, h PassHandler)

	// Plan flattens the set into batches and attaches each batch's pipeline, creating
	// and caching pipelines on first use.
	//
	// Parameters:
	//   - set: the finalized visible set
	//
	// Returns:
	//   - []Batch: the planned batches
	//   - error: an error if the set cannot be planned
	Plan(set visible.VisibleSet) ([]Batch, error)

	// Render plans the set and executes the resulting batches.
	//
	// Parameters:
	//   - ctx: cancels the frame before dispatch and is passed to every handler
	//   - set: the finalized visible set
	//
	// Returns:
	//   - error: the context error, a planning error or the joined handler errors
	Render(ctx context.Context, set visible.VisibleSet) error

	// Execute runs every registered pass handler on the worker pool with the batches
	// of its pass, waiting for all of them. Handler errors are joined.
	//
	// Parameters:
	//   - ctx: cancels the frame before dispatch and is passed to every handler
	//   - set: the finalized visible set the batches were planned from
	//   - batches: the planned batches, usually from Plan
	//
	// Returns:
	//   - error: the context error, ErrStopped or the joined handler errors
	Execute(ctx context.Context, set visible.VisibleSet, batches []Batch) error

	// Stop waits for frames in flight, then releases the worker pool. Render fails
	// with ErrStopped afterwards. Stop must not be called from a pass handler.
	Stop()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer with an empty pipeline cache and no pass handlers.
//
// Parameters:
//   - options: functional options to configure the renderer
//
// Returns:
//   - Renderer: the newly created renderer
func NewRenderer(options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:               &sync.Mutex{},
		frameMu:          &sync.RWMutex{},
		pipelineCache:    make(map[string]pipeline.Pipeline),
		handlers:         make(map[pipeline.Pass]PassHandler),
		logger:           zap.NewNop(),
		shadowDepthBias:  light.DefaultShadowDepthBias,
		shadowSlopeScale: light.DefaultShadowSlopeScale,
		passWorkers:      min(len(pipeline.Passes), max(runtime.NumCPU()-1, 1)),
		passQueueSize:    len(pipeline.Passes),
	}
	for _, option := range options {
		option(r)
	}

	// Initialize the pool after options so WithPassWorkers can override the default.
	r.passPool = worker.NewDynamicWorkerPool(r.passWorkers, r.passQueueSize, time.Second)
	return r
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) Pipelines() map[string]pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]pipeline.Pipeline, len(r.pipelineCache))
	for k, p := range r.pipelineCache {
		out[k] = p
	}
	return out
}

func (r *renderer) SetPipeline(key string, p pipeline.Pipeline) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pipelineCache[key] = p
}

func (r *renderer) RegisterPassHandler(pass pipeline.Pass, h PassHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h == nil {
		delete(r.handlers, pass)
		return
	}
	r.handlers[pass] = h
}

func (r *renderer) Plan(set visible.VisibleSet) ([]Batch, error) {
	batches, err := Plan(set)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range batches {
		batches[i].Pipeline = r.pipelineFor(batches[i].Pass, batches[i].Key)
	}
	return batches, nil
}

// pipelineFor returns the cached pipeline for key, creating it with the pass defaults
// on first use. Caller must hold the mutex.
func (r *renderer) pipelineFor(pass pipeline.Pass, key string) pipeline.Pipeline {
	if p, ok := r.pipelineCache[key]; ok {
		return p
	}
	var opts []pipeline.PipelineBuilderOption
	if pass == pipeline.PassShadow {
		opts = append(opts, pipeline.WithDepthBias(r.shadowDepthBias, r.shadowSlopeScale))
	}
	p := pipeline.NewPipeline(key, pass, opts...)
	r.pipelineCache[key] = p
	r.logger.Debug("pipeline created", zap.String("key", key), zap.Stringer("pass", pass))
	return p
}

func (r *renderer) Render(ctx context.Context, set visible.VisibleSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	batches, err := r.Plan(set)
	if err != nil {
		return err
	}
	return r.Execute(ctx, set, batches)
}

func (r *renderer) Execute(ctx context.Context, set visible.VisibleSet, batches []Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.frameMu.RLock()
	defer r.frameMu.RUnlock()

	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return ErrStopped
	}
	handlers := make(map[pipeline.Pass]PassHandler, len(r.handlers))
	for pass, h := range r.handlers {
		handlers[pass] = h
	}
	r.mu.Unlock()

	byPass := ByPass(batches)

	var (
		wg   sync.WaitGroup
		errs = make([]error, len(pipeline.Passes))
	)
	for i, pass := range pipeline.Passes {
		h, ok := handlers[pass]
		if !ok {
			continue
		}
		wg.Add(1)
		idx, passCap, passBatches := i, pass, byPass[pass]
		r.passPool.SubmitTask(worker.Task{
			ID:      idx,
			Payload: passCap,
			Do: func() (res any, err error) {
				defer wg.Done()
				defer func() {
					if rec := recover(); rec != nil {
						err = fmt.Errorf("renderer: %s pass panicked: %v", passCap, rec)
						errs[idx] = err
					}
				}()
				if err := ctx.Err(); err != nil {
					errs[idx] = err
					return nil, err
				}
				if err := h(ctx, set, passBatches); err != nil {
					errs[idx] = fmt.Errorf("renderer: %s pass: %w", passCap, err)
					return nil, errs[idx]
				}
				return nil, nil
			},
		})
	}
	wg.Wait()

	err := errors.Join(errs...)
	r.logger.Debug("frame rendered",
		zap.Stringer("frame", set.FrameID()),
		zap.Int("batches", len(batches)),
		zap.Int("passes", len(handlers)),
		zap.Error(err),
	)
	return err
}

func (r *renderer) Stop() {
	r.frameMu.Lock()
	defer r.frameMu.Unlock()

	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.mu.Unlock()
	r.passPool.Stop()
}
