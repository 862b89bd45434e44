package visible

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-vis/engine/instance"
	"github.com/Carmen-Shannon/oxy-vis/engine/light"
	"github.com/Carmen-Shannon/oxy-vis/engine/material"
	"go.uber.org/zap"
)

// TranslucentKind selects how a translucent entry is shaded.
type TranslucentKind int

const (
	// TranslucentUnlit is blended without lighting.
	TranslucentUnlit TranslucentKind = iota
	// TranslucentLitRegular receives full diffuse and specular lighting.
	TranslucentLitRegular
	// TranslucentLitSpecularOnly receives only specular highlights, e.g. glass.
	TranslucentLitSpecularOnly
)

// String returns the pass-facing name of the kind.
func (k TranslucentKind) String() string {
	switch k {
	case TranslucentUnlit:
		return "unlit"
	case TranslucentLitRegular:
		return "lit-regular"
	case TranslucentLitSpecularOnly:
		return "lit-specular-only"
	default:
		return "unknown"
	}
}

// Translucent is one entry of the translucent paint list.
type Translucent struct {
	kind      TranslucentKind
	instance  instance.Instance
	lights    []light.Light
	signature material.Signature
}

// Kind returns how the entry is shaded.
func (t Translucent) Kind() TranslucentKind {
	return t.kind
}

// Instance returns the translucent instance.
func (t Translucent) Instance() instance.Instance {
	return t.instance
}

// Lights returns the lights affecting the entry. Empty for unlit entries.
func (t Translucent) Lights() []light.Light {
	return slices.Clone(t.lights)
}

// Signature returns the batching signature of the instance.
func (t Translucent) Signature() material.Signature {
	return t.signature
}

// Lit reports whether the entry carries lighting.
func (t Translucent) Lit() bool {
	return t.kind != TranslucentUnlit
}

// TranslucentsAssembler builds the ordered translucent paint list. Entries keep
// exactly the order in which they were added and are never deduplicated.
type TranslucentsAssembler struct {
	builderState
	opts    *assemblerOptions
	entries []Translucent
}

func newTranslucentsAssembler(opts *assemblerOptions) *TranslucentsAssembler {
	return &TranslucentsAssembler{opts: opts}
}

// NewTranslucentsAssembler creates a standalone translucent list assembler.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - *TranslucentsAssembler: an open assembler
func NewTranslucentsAssembler(options ...AssemblerBuilderOption) *TranslucentsAssembler {
	return newTranslucentsAssembler(newAssemblerOptions(options))
}

// AddUnlit appends a translucent instance drawn without lighting.
//
// Parameters:
//   - inst: any translucent instance, including refractive ones
//
// Returns:
//   - error: ErrBuilderInvalid after Finalize, ErrInstanceKindMismatch for an opaque instance
func (t *TranslucentsAssembler) AddUnlit(inst instance.Instance) error {
	const op = "Translucents.AddUnlit"
	if err := t.check(op); err != nil {
		return t.opts.reject(err)
	}
	if inst == nil {
		panic("visible: Translucents.AddUnlit requires a non-nil Instance")
	}
	if !inst.Kind().Translucent() {
		return t.opts.reject(newError(KindInstanceKindMismatch, op, "instance %d is %s", inst.ID(), inst.Kind()))
	}
	t.entries = append(t.entries, Translucent{
		kind:      TranslucentUnlit,
		instance:  inst,
		signature: t.opts.signature(inst),
	})
	return nil
}

// AddLit appends a translucent instance lit by lights. The entry kind follows the
// instance kind: regular instances receive full lighting and specular-only instances
// receive highlights only. Lights that do not affect translucency are dropped.
// Refractive instances cannot be lit.
//
// Parameters:
//   - inst: a regular or specular-only translucent instance
//   - lights: the lights affecting the instance
//
// Returns:
//   - error: ErrBuilderInvalid after Finalize, ErrInstanceKindMismatch for an
//     opaque or refractive instance
func (t *TranslucentsAssembler) AddLit(inst instance.Instance, lights ...light.Light) error {
	const op = "Translucents.AddLit"
	if err := t.check(op); err != nil {
		return t.opts.reject(err)
	}
	if inst == nil {
		panic("visible: Translucents.AddLit requires a non-nil Instance")
	}
	var kind TranslucentKind
	switch inst.Kind() {
	case instance.KindTranslucentRegular:
		kind = TranslucentLitRegular
	case instance.KindTranslucentSpecularOnly:
		kind = TranslucentLitSpecularOnly
	default:
		return t.opts.reject(newError(KindInstanceKindMismatch, op, "instance %d is %s", inst.ID(), inst.Kind()))
	}

	affecting := make([]light.Light, 0, len(lights))
	seen := make(map[light.Light]struct{}, len(lights))
	for _, l := range lights {
		if l == nil {
			panic("visible: Translucents.AddLit requires non-nil Lights")
		}
		if _, ok := seen[l]; ok || !l.AffectsTranslucency() {
			continue
		}
		seen[l] = struct{}{}
		affecting = append(affecting, l)
	}
	t.entries = append(t.entries, Translucent{
		kind:      kind,
		instance:  inst,
		lights:    affecting,
		signature: t.opts.signature(inst),
	})
	return nil
}

// Finalize freezes the list into a VisibleTranslucents snapshot.
//
// Returns:
//   - VisibleTranslucents: the immutable list
//   - error: ErrBuilderInvalid when called twice
func (t *TranslucentsAssembler) Finalize() (VisibleTranslucents, error) {
	const op = "Translucents.Finalize"
	if err := t.finish(op); err != nil {
		return nil, t.opts.reject(err)
	}
	out := &visibleTranslucentsImpl{entries: slices.Clone(t.entries)}
	t.opts.logger.Debug("translucents finalized",
		zap.Stringer("frame", t.opts.frameID),
		zap.Int("entries", len(out.entries)),
	)
	return out, nil
}

// VisibleTranslucents is the finalized translucent paint list.
type VisibleTranslucents interface {
	// Instances returns the entries in exactly the order they were added.
	//
	// Returns:
	//   - []Translucent: the ordered entries
	Instances() []Translucent

	// Len returns the number of entries.
	//
	// Returns:
	//   - int: the entry count
	Len() int
}

type visibleTranslucentsImpl struct {
	entries []Translucent
}

var _ VisibleTranslucents = &visibleTranslucentsImpl{}

func (v *visibleTranslucentsImpl) Instances() []Translucent {
	return slices.Clone(v.entries)
}

func (v *visibleTranslucentsImpl) Len() int {
	return len(v.entries)
}
