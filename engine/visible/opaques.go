package visible

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-vis/engine/instance"
	"github.com/Carmen-Shannon/oxy-vis/engine/light"
	"github.com/Carmen-Shannon/oxy-vis/engine/material"
	"go.uber.org/zap"
)

// OpaquesAssembler builds the opaque half of a frame: a flat unlit batch, any
// number of named light groups and the shadow caster registry.
//
// The assembler owns a single visibility context shared with every light group it
// creates. An instance may be visible at most once across the unlit batch and all
// groups; shadow caster registration does not count as visibility.
type OpaquesAssembler struct {
	builderState
	opts       *assemblerOptions
	visibility *visibilityContext
	unlit      *batches
	groups     []*LightGroupAssembler
	groupNames map[string]struct{}
	shadows    *ShadowsAssembler
}

func newOpaquesAssembler(opts *assemblerOptions) *OpaquesAssembler {
	return &OpaquesAssembler{
		opts:       opts,
		visibility: newVisibilityContext(),
		unlit:      newBatches(),
		groupNames: make(map[string]struct{}),
		shadows:    newShadowsAssembler(opts),
	}
}

// NewOpaquesAssembler creates a standalone opaque set assembler.
//
// Parameters:
//   - options: functional options shared with the nested assemblers
//
// Returns:
//   - *OpaquesAssembler: an open assembler
func NewOpaquesAssembler(options ...AssemblerBuilderOption) *OpaquesAssembler {
	return newOpaquesAssembler(newAssemblerOptions(options))
}

// AddUnlit adds an opaque instance that is drawn without lighting.
//
// Parameters:
//   - inst: the opaque instance
//
// Returns:
//   - error: ErrBuilderInvalid after Finalize, ErrInstanceKindMismatch for a
//     translucent instance, ErrInstanceAlreadyVisible if inst is already visible
func (o *OpaquesAssembler) AddUnlit(inst instance.Instance) error {
	const op = "Opaques.AddUnlit"
	if err := o.check(op); err != nil {
		return o.opts.reject(err)
	}
	if inst == nil {
		panic("visible: Opaques.AddUnlit requires a non-nil Instance")
	}
	if !inst.Kind().Opaque() {
		return o.opts.reject(newError(KindInstanceKindMismatch, op, "instance %d is %s", inst.ID(), inst.Kind()))
	}
	if err := o.visibility.claim(op, inst); err != nil {
		return o.opts.reject(err)
	}
	o.unlit.add(o.opts.signature(inst), inst)
	return nil
}

// NewLightGroup creates a light group sharing this assembler's visibility context
// and shadow registry. The caller populates it and may finalize it early; any group
// still open is finalized by Finalize.
//
// Parameters:
//   - name: a name unique within this opaque set
//
// Returns:
//   - *LightGroupAssembler: the open group
//   - error: ErrBuilderInvalid after Finalize, ErrLightGroupAlreadyAdded for a reused name
func (o *OpaquesAssembler) NewLightGroup(name string) (*LightGroupAssembler, error) {
	const op = "Opaques.NewLightGroup"
	if err := o.check(op); err != nil {
		return nil, o.opts.reject(err)
	}
	if _, ok := o.groupNames[name]; ok {
		return nil, o.opts.reject(newError(KindLightGroupAlreadyAdded, op, "%q", name))
	}
	g := newLightGroupAssembler(o.opts, name, o.visibility, o.shadows)
	o.groupNames[name] = struct{}{}
	o.groups = append(o.groups, g)
	return g, nil
}

// AddShadowCaster registers inst as a shadow caster for l. The instance does not
// become visible and may also be added to the unlit batch or a light group.
//
// Parameters:
//   - l: the shadow light
//   - inst: the opaque caster
//
// Returns:
//   - error: ErrBuilderInvalid after Finalize, ErrInstanceKindMismatch for a translucent instance
func (o *OpaquesAssembler) AddShadowCaster(l light.Light, inst instance.Instance) error {
	if err := o.check("Opaques.AddShadowCaster"); err != nil {
		return o.opts.reject(err)
	}
	return o.shadows.AddCaster(l, inst)
}

// AddShadowLight registers l as a shadow light without casters.
//
// Parameters:
//   - l: the shadow light
//
// Returns:
//   - error: ErrBuilderInvalid after Finalize
func (o *OpaquesAssembler) AddShadowLight(l light.Light) error {
	if err := o.check("Opaques.AddShadowLight"); err != nil {
		return o.opts.reject(err)
	}
	return o.shadows.AddLight(l)
}

// Finalize finalizes every light group in creation order, then the shadow registry,
// and freezes the result. Every nested assembler is finalized even when one fails;
// the first error is returned unchanged and no snapshot is produced.
//
// Returns:
//   - VisibleOpaques: the immutable opaque set
//   - error: ErrBuilderInvalid when called twice, or the first nested error
func (o *OpaquesAssembler) Finalize() (VisibleOpaques, error) {
	const op = "Opaques.Finalize"
	if err := o.finish(op); err != nil {
		return nil, o.opts.reject(err)
	}

	var first error
	groups := make(map[string]LightGroup, len(o.groups))
	names := make([]string, 0, len(o.groups))
	for _, g := range o.groups {
		lg, err := g.outcome()
		if err != nil {
			if first == nil {
				first = err
			}
			continue
		}
		groups[g.name] = lg
		names = append(names, g.name)
	}
	shadows, err := o.shadows.Finalize()
	if err != nil && first == nil {
		first = err
	}
	if first != nil {
		return nil, first
	}

	out := &visibleOpaquesImpl{
		unlit:      o.unlit.freeze(),
		groupNames: names,
		groups:     groups,
		shadows:    shadows,
	}
	o.opts.logger.Debug("opaques finalized",
		zap.Stringer("frame", o.opts.frameID),
		zap.Int("unlit_signatures", len(out.unlit.order)),
		zap.Int("groups", len(names)),
		zap.Int("visible", o.visibility.len()),
	)
	return out, nil
}

// VisibleOpaques is the finalized opaque set.
type VisibleOpaques interface {
	// UnlitSignatures returns the signatures of the unlit batch in first-use order.
	//
	// Returns:
	//   - []material.Signature: the unlit signatures
	UnlitSignatures() []material.Signature

	// InstancesForUnlit returns the unlit instances bucketed under sig.
	//
	// Parameters:
	//   - sig: a signature returned by UnlitSignatures
	//
	// Returns:
	//   - []instance.Instance: the instances in insertion order
	//   - error: ErrMaterialNonexistent for an unknown signature
	InstancesForUnlit(sig material.Signature) ([]instance.Instance, error)

	// GroupNames returns the light group names in creation order.
	//
	// Returns:
	//   - []string: the group names
	GroupNames() []string

	// Group returns the named light group.
	//
	// Parameters:
	//   - name: a name returned by GroupNames
	//
	// Returns:
	//   - LightGroup: the group
	//   - error: ErrLightGroupNonexistent for an unknown name
	Group(name string) (LightGroup, error)

	// Shadows returns the shadow caster registry finalized alongside the opaque set.
	//
	// Returns:
	//   - VisibleShadows: the shadow snapshot
	Shadows() VisibleShadows
}

type visibleOpaquesImpl struct {
	unlit      batchSet
	groupNames []string
	groups     map[string]LightGroup
	shadows    VisibleShadows
}

var _ VisibleOpaques = &visibleOpaquesImpl{}

func (v *visibleOpaquesImpl) UnlitSignatures() []material.Signature {
	return v.unlit.signatures()
}

func (v *visibleOpaquesImpl) InstancesForUnlit(sig material.Signature) ([]instance.Instance, error) {
	insts, ok := v.unlit.instances(sig)
	if !ok {
		return nil, newError(KindMaterialNonexistent, "Opaques.InstancesForUnlit", "%q", sig.String())
	}
	return insts, nil
}

func (v *visibleOpaquesImpl) GroupNames() []string {
	return slices.Clone(v.groupNames)
}

func (v *visibleOpaquesImpl) Group(name string) (LightGroup, error) {
	g, ok := v.groups[name]
	if !ok {
		return nil, newError(KindLightGroupNonexistent, "Opaques.Group", "%q", name)
	}
	return g, nil
}

func (v *visibleOpaquesImpl) Shadows() VisibleShadows {
	return v.shadows
}
