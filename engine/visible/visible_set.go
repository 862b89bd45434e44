package visible

import (
	"github.com/Carmen-Shannon/oxy-vis/engine/camera"
	"github.com/Carmen-Shannon/oxy-vis/engine/instance"
	"github.com/Carmen-Shannon/oxy-vis/engine/light"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Assembler is the per-frame entry point for building a VisibleSet. It composes one
// OpaquesAssembler and one TranslucentsAssembler and forwards every mutating call to
// them. An Assembler is used by a single traversal pass and then discarded; it is
// not safe for concurrent use.
type Assembler struct {
	builderState
	opts         *assemblerOptions
	camera       camera.Camera
	opaques      *OpaquesAssembler
	translucents *TranslucentsAssembler
}

// NewAssembler creates an open Assembler for one frame.
//
// Parameters:
//   - cam: the camera attached unmodified to the finalized set
//   - options: functional options shared with every nested assembler
//
// Returns:
//   - *Assembler: the open assembler
func NewAssembler(cam camera.Camera, options ...AssemblerBuilderOption) *Assembler {
	if cam == nil {
		panic("visible: NewAssembler requires a non-nil Camera")
	}
	opts := newAssemblerOptions(options)
	return &Assembler{
		opts:         opts,
		camera:       cam,
		opaques:      newOpaquesAssembler(opts),
		translucents: newTranslucentsAssembler(opts),
	}
}

// FrameID returns the identifier stamped on the finalized set and on every log record.
func (a *Assembler) FrameID() uuid.UUID {
	return a.opts.frameID
}

// Opaques returns the nested opaque assembler.
func (a *Assembler) Opaques() *OpaquesAssembler {
	return a.opaques
}

// Translucents returns the nested translucent assembler.
func (a *Assembler) Translucents() *TranslucentsAssembler {
	return a.translucents
}

// AddOpaqueUnlit forwards to OpaquesAssembler.AddUnlit.
func (a *Assembler) AddOpaqueUnlit(inst instance.Instance) error {
	return a.opaques.AddUnlit(inst)
}

// NewLightGroup forwards to OpaquesAssembler.NewLightGroup.
func (a *Assembler) NewLightGroup(name string) (*LightGroupAssembler, error) {
	return a.opaques.NewLightGroup(name)
}

// AddShadowCaster forwards to OpaquesAssembler.AddShadowCaster.
func (a *Assembler) AddShadowCaster(l light.Light, inst instance.Instance) error {
	return a.opaques.AddShadowCaster(l, inst)
}

// AddShadowLight forwards to OpaquesAssembler.AddShadowLight.
func (a *Assembler) AddShadowLight(l light.Light) error {
	return a.opaques.AddShadowLight(l)
}

// AddTranslucentUnlit forwards to TranslucentsAssembler.AddUnlit.
func (a *Assembler) AddTranslucentUnlit(inst instance.Instance) error {
	return a.translucents.AddUnlit(inst)
}

// AddTranslucentLit forwards to TranslucentsAssembler.AddLit.
func (a *Assembler) AddTranslucentLit(inst instance.Instance, lights ...light.Light) error {
	return a.translucents.AddLit(inst, lights...)
}

// Finalize finalizes the opaque set (and with it every light group and the shadow
// registry), then the translucent list, and returns the frame's VisibleSet. Both
// halves are finalized even if the first fails. A nested failure is returned
// unchanged and no snapshot is produced.
//
// Returns:
//   - VisibleSet: the immutable snapshot
//   - error: ErrBuilderInvalid when called twice, or the first nested error
func (a *Assembler) Finalize() (VisibleSet, error) {
	const op = "Assembler.Finalize"
	if err := a.finish(op); err != nil {
		return nil, a.opts.reject(err)
	}
	opaques, err := a.opaques.Finalize()
	translucents, terr := a.translucents.Finalize()
	if err == nil {
		err = terr
	}
	if err != nil {
		a.opts.logger.Debug("visible set aborted",
			zap.Stringer("frame", a.opts.frameID),
			zap.Error(err),
		)
		return nil, err
	}

	out := &visibleSetImpl{
		frameID:      a.opts.frameID,
		camera:       a.camera,
		opaques:      opaques,
		translucents: translucents,
	}
	a.opts.logger.Debug("visible set finalized",
		zap.Stringer("frame", a.opts.frameID),
		zap.Int("groups", len(opaques.GroupNames())),
		zap.Int("shadow_lights", len(opaques.Shadows().Lights())),
		zap.Int("translucents", translucents.Len()),
	)
	return out, nil
}

// VisibleSet is the finalized, deeply immutable per-frame snapshot read by render
// passes. It may be shared across goroutines without synchronization.
type VisibleSet interface {
	// FrameID returns the identifier of the frame that produced the set.
	//
	// Returns:
	//   - uuid.UUID: the frame identifier
	FrameID() uuid.UUID

	// Camera returns the camera the set was assembled for.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// Opaques returns the opaque set.
	//
	// Returns:
	//   - VisibleOpaques: the opaque snapshot
	Opaques() VisibleOpaques

	// Shadows returns the shadow registry. It is the same value as Opaques().Shadows().
	//
	// Returns:
	//   - VisibleShadows: the shadow snapshot
	Shadows() VisibleShadows

	// Translucents returns the ordered translucent list.
	//
	// Returns:
	//   - VisibleTranslucents: the translucent snapshot
	Translucents() VisibleTranslucents
}

type visibleSetImpl struct {
	frameID      uuid.UUID
	camera       camera.Camera
	opaques      VisibleOpaques
	translucents VisibleTranslucents
}

var _ VisibleSet = &visibleSetImpl{}

func (v *visibleSetImpl) FrameID() uuid.UUID {
	return v.frameID
}

func (v *visibleSetImpl) Camera() camera.Camera {
	return v.camera
}

func (v *visibleSetImpl) Opaques() VisibleOpaques {
	return v.opaques
}

func (v *visibleSetImpl) Shadows() VisibleShadows {
	return v.opaques.Shadows()
}

func (v *visibleSetImpl) Translucents() VisibleTranslucents {
	return v.translucents
}
