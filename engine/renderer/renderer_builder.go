package renderer

import (
	"github.com/Carmen-Shannon/oxy-vis/engine/renderer/pipeline"
	"go.uber.org/zap"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPipeline pre-registers a single Pipeline in the renderer's pipeline cache under the given key.
// Batches whose key matches use it instead of a pipeline built from the pass defaults.
//
// Parameters:
//   - key: the unique identifier for the pipeline
//   - p: the Pipeline to cache
//
// Returns:
//   - RendererBuilderOption: a function that applies the pipeline option to a renderer
func WithPipeline(key string, p pipeline.Pipeline) RendererBuilderOption {
	return func(r *renderer) {
		r.pipelineCache[key] = p
	}
}

// WithPipelines replaces the renderer's entire pipeline cache with the provided map.
//
// Parameters:
//   - pipelines: a map of pipeline keys to their corresponding Pipeline objects
//
// Returns:
//   - RendererBuilderOption: a function that applies the pipelines option to a renderer
func WithPipelines(pipelines map[string]pipeline.Pipeline) RendererBuilderOption {
	return func(r *renderer) {
		if pipelines != nil {
			r.pipelineCache = pipelines
		}
	}
}

// WithPassHandler registers the handler for a pass.
//
// Parameters:
//   - pass: the render pass
//   - h: the handler
//
// Returns:
//   - RendererBuilderOption: a function that registers the handler on a renderer
func WithPassHandler(pass pipeline.Pass, h PassHandler) RendererBuilderOption {
	return func(r *renderer) {
		if h != nil {
			r.handlers[pass] = h
		}
	}
}

// WithPassWorkers sets the number of goroutines that run pass handlers.
// Defaults to runtime.NumCPU()-1, capped at the number of passes.
//
// Parameters:
//   - n: the number of workers (minimum 1)
//
// Returns:
//   - RendererBuilderOption: a function that applies the worker count to a renderer
func WithPassWorkers(n int) RendererBuilderOption {
	return func(r *renderer) {
		if n < 1 {
			n = 1
		}
		r.passWorkers = n
	}
}

// WithPassQueueSize sets the capacity of the pass task queue.
// Defaults to the number of passes.
//
// Parameters:
//   - n: the queue capacity (minimum 1)
//
// Returns:
//   - RendererBuilderOption: a function that applies the queue size to a renderer
func WithPassQueueSize(n int) RendererBuilderOption {
	return func(r *renderer) {
		if n < 1 {
			n = 1
		}
		r.passQueueSize = n
	}
}

// WithShadowDepthBias sets the depth bias used for shadow pipelines created by the renderer.
//
// Parameters:
//   - bias: the constant depth bias
//   - slopeScale: the slope-scaled depth bias
//
// Returns:
//   - RendererBuilderOption: a function that applies the shadow bias to a renderer
func WithShadowDepthBias(bias int32, slopeScale float32) RendererBuilderOption {
	return func(r *renderer) {
		r.shadowDepthBias = bias
		r.shadowSlopeScale = slopeScale
	}
}

// WithLogger sets the logger for pipeline creation and frame records. Defaults to a no-op logger.
//
// Parameters:
//   - logger: the logger; nil is ignored
//
// Returns:
//   - RendererBuilderOption: a function that applies the logger to a renderer
func WithLogger(logger *zap.Logger) RendererBuilderOption {
	return func(r *renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}
