package visible

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-vis/engine/instance"
	"github.com/Carmen-Shannon/oxy-vis/engine/material"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LightGroupPolicy selects how strictly light groups are validated when finalized.
type LightGroupPolicy int

const (
	// LightGroupPolicyStrict requires every light group to hold at least one light
	// and at least one instance.
	LightGroupPolicyStrict LightGroupPolicy = iota

	// LightGroupPolicyAllowEmpty accepts a light group that has lights but no
	// instances. A group without lights is still rejected.
	LightGroupPolicyAllowEmpty
)

// String returns the configuration name of the policy.
func (p LightGroupPolicy) String() string {
	switch p {
	case LightGroupPolicyAllowEmpty:
		return "allow-empty"
	default:
		return "strict"
	}
}

// ParseLightGroupPolicy maps a configuration name back to its policy.
//
// Parameters:
//   - name: "strict" or "allow-empty"; the empty string selects strict
//
// Returns:
//   - LightGroupPolicy: the parsed policy
//   - error: an error if the name is unknown
func ParseLightGroupPolicy(name string) (LightGroupPolicy, error) {
	switch name {
	case "", "strict":
		return LightGroupPolicyStrict, nil
	case "allow-empty":
		return LightGroupPolicyAllowEmpty, nil
	default:
		return LightGroupPolicyStrict, fmt.Errorf("visible: unknown light group policy %q", name)
	}
}

// SignatureFunc classifies an instance into its batching key.
type SignatureFunc func(inst instance.Instance) material.Signature

// ForwardSignature is the default SignatureFunc for visible batches.
func ForwardSignature(inst instance.Instance) material.Signature {
	return inst.Material().Signature()
}

// DepthSignature is the default SignatureFunc for shadow-caster batches.
func DepthSignature(inst instance.Instance) material.Signature {
	return inst.Material().DepthSignature()
}

// assemblerOptions is shared by every assembler created from one root, so nested
// assemblers log and classify exactly like their parent.
type assemblerOptions struct {
	logger         *zap.Logger
	policy         LightGroupPolicy
	frameID        uuid.UUID
	signature      SignatureFunc
	depthSignature SignatureFunc
}

func newAssemblerOptions(options []AssemblerBuilderOption) *assemblerOptions {
	o := &assemblerOptions{
		logger:         zap.NewNop(),
		policy:         LightGroupPolicyStrict,
		signature:      ForwardSignature,
		depthSignature: DepthSignature,
	}
	for _, option := range options {
		option(o)
	}
	if o.frameID == uuid.Nil {
		o.frameID = uuid.New()
	}
	return o
}

// reject logs a refused operation and returns it as an error.
func (o *assemblerOptions) reject(err *Error) error {
	o.logger.Debug("operation rejected",
		zap.Stringer("frame", o.frameID),
		zap.String("op", err.Op),
		zap.Stringer("kind", err.Kind),
		zap.String("detail", err.Detail),
	)
	return err
}

// AssemblerBuilderOption is a functional option for configuring an assembler.
// Use the With* functions to create options.
type AssemblerBuilderOption func(*assemblerOptions)

// WithLogger sets the logger that receives debug records for rejected operations and
// finalized snapshots. Defaults to a no-op logger.
//
// Parameters:
//   - logger: the logger to use; nil is ignored
//
// Returns:
//   - AssemblerBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) AssemblerBuilderOption {
	return func(o *assemblerOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithLightGroupPolicy sets how light groups are validated on finalization.
// Defaults to LightGroupPolicyStrict.
//
// Parameters:
//   - policy: the validation policy
//
// Returns:
//   - AssemblerBuilderOption: option function to apply
func WithLightGroupPolicy(policy LightGroupPolicy) AssemblerBuilderOption {
	return func(o *assemblerOptions) {
		o.policy = policy
	}
}

// WithFrameID sets the identifier stamped on the finalized VisibleSet. A random
// identifier is generated when unset.
//
// Parameters:
//   - id: the frame identifier
//
// Returns:
//   - AssemblerBuilderOption: option function to apply
func WithFrameID(id uuid.UUID) AssemblerBuilderOption {
	return func(o *assemblerOptions) {
		o.frameID = id
	}
}

// WithSignatureFunc overrides how visible opaque and translucent instances are
// classified into batches. Defaults to ForwardSignature.
//
// Parameters:
//   - fn: the classification function; nil is ignored
//
// Returns:
//   - AssemblerBuilderOption: option function to apply
func WithSignatureFunc(fn SignatureFunc) AssemblerBuilderOption {
	return func(o *assemblerOptions) {
		if fn != nil {
			o.signature = fn
		}
	}
}

// WithDepthSignatureFunc overrides how shadow casters are classified into batches.
// Defaults to DepthSignature.
//
// Parameters:
//   - fn: the classification function; nil is ignored
//
// Returns:
//   - AssemblerBuilderOption: option function to apply
func WithDepthSignatureFunc(fn SignatureFunc) AssemblerBuilderOption {
	return func(o *assemblerOptions) {
		if fn != nil {
			o.depthSignature = fn
		}
	}
}
