package scene

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-vis/engine/camera"
	"github.com/Carmen-Shannon/oxy-vis/engine/game_object"
	"github.com/Carmen-Shannon/oxy-vis/engine/instance"
	"github.com/Carmen-Shannon/oxy-vis/engine/light"
	"github.com/Carmen-Shannon/oxy-vis/engine/visible"
	"go.uber.org/zap"
)

var (
	// ErrUnknownLightGroup is returned by Traverse when an object names a light group
	// the scene does not define.
	ErrUnknownLightGroup = errors.New("scene: unknown light group")

	// ErrLightGroupExists is returned by AddLightGroup for a name already in use.
	ErrLightGroupExists = errors.New("scene: light group already exists")
)

// Scene holds a camera, scene-wide lights, named light groups and a registry of
// GameObjects, and turns them into one visible set per frame.
// Scenes can be hot-swapped via the Active flag to switch between different views or levels.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Active returns whether this scene is currently active for rendering.
	Active() bool

	// SetActive sets whether this scene is active for rendering.
	SetActive(active bool)

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// SetCamera replaces the scene's camera.
	//
	// Panics if cam is nil.
	//
	// Parameters:
	//   - cam: the new camera
	SetCamera(cam camera.Camera)

	// AddLight adds a scene-wide light. Scene lights do not shade anything; the
	// shadow-casting ones receive the casters of objects outside any light group.
	//
	// Parameters:
	//   - l: the light to add
	AddLight(l light.Light)

	// RemoveLight removes a scene-wide light.
	//
	// Parameters:
	//   - l: the light to remove
	RemoveLight(l light.Light)

	// Lights returns a copy of the scene-wide lights.
	//
	// Returns:
	//   - []light.Light: the scene lights in insertion order
	Lights() []light.Light

	// AddLightGroup defines a new light group. Groups are fed to frames in the order
	// they are defined.
	//
	// Parameters:
	//   - name: the unique group name
	//   - lights: the lights shading the group
	//
	// Returns:
	//   - error: ErrLightGroupExists if the name is taken
	AddLightGroup(name string, lights ...light.Light) error

	// AddGroupLight appends a light to an existing light group.
	//
	// Parameters:
	//   - name: the group name
	//   - l: the light to add
	//
	// Returns:
	//   - error: ErrUnknownLightGroup if the group does not exist
	AddGroupLight(name string, l light.Light) error

	// RemoveLightGroup deletes a light group. Objects still naming it make Traverse fail.
	//
	// Parameters:
	//   - name: the group name
	RemoveLightGroup(name string)

	// LightGroupNames returns the defined light group names in definition order.
	//
	// Returns:
	//   - []string: the group names
	LightGroupNames() []string

	// LightGroupLights returns a copy of the configured lights of a group, without
	// attached object lights.
	//
	// Parameters:
	//   - name: the group name
	//
	// Returns:
	//   - []light.Light: the group lights, nil if the group does not exist
	LightGroupLights(name string) []light.Light

	// Count returns the number of persisted GameObjects in the scene's registry. Does not include ephemeral objects.
	//
	// Returns:
	//   - int: count of non-ephemeral GameObjects in the registry
	Count() int

	// CountEphemeral returns the number of ephemeral GameObjects waiting for the next frame.
	//
	// Returns:
	//   - int: count of pending ephemeral GameObjects
	CountEphemeral() int

	// Add adds a GameObject to the scene, assigning an ID if it has none. Non-ephemeral
	// objects are persisted in the registry and submitted to every frame while enabled;
	// ephemeral objects are submitted to the next frame only.
	//
	// Panics if obj is nil.
	//
	// Parameters:
	//   - obj: the GameObject to add
	//
	// Returns:
	//   - uint64: the assigned object ID
	Add(obj game_object.GameObject) uint64

	// Get retrieves a non-ephemeral GameObject by its ID.
	// Returns nil if not found.
	//
	// Parameters:
	//   - id: the object's unique ID
	//
	// Returns:
	//   - game_object.GameObject: the object or nil
	Get(id uint64) game_object.GameObject

	// Remove removes a non-ephemeral GameObject from the registry by ID.
	//
	// Parameters:
	//   - id: the object's unique ID
	Remove(id uint64)

	// Clear removes all objects from the scene. Lights and light groups are kept.
	Clear()

	// Traverse feeds every enabled object into the assembler:
	//   - opaque objects are added to their light group, or as unlit without one
	//   - shadow-casting opaque objects become casters of every shadow-casting light
	//     of their light group, or of the scene lights without one
	//   - shadow-only objects are casters only
	//   - translucent objects are added lit with the lights of their group that
	//     affect translucency, or unlit when no such light exists or the object is
	//     refractive
	//
	// Light groups are created in definition order, and only when at least one object
	// is drawn in them; their shadow-casting lights are registered either way. Pending
	// ephemeral objects are consumed only by a successful traversal, so a failed frame
	// leaves them queued for the next one.
	//
	// Parameters:
	//   - a: an open assembler for the frame
	//
	// Returns:
	//   - error: the first assembler error, wrapped with the offending object or group
	Traverse(a *visible.Assembler) error

	// BuildVisibleSet creates an assembler for the scene camera, traverses the scene
	// into it and finalizes it. The assembler is discarded afterwards. Ephemeral objects
	// are consumed only when the set finalizes.
	//
	// Parameters:
	//   - options: options for the frame's assembler
	//
	// Returns:
	//   - visible.VisibleSet: the finalized frame snapshot
	//   - error: a traversal or finalization error
	BuildVisibleSet(options ...visible.AssemblerBuilderOption) (visible.VisibleSet, error)
}

type lightGroup struct {
	name   string
	lights []light.Light
}

type scene struct {
	mu *sync.RWMutex

	name   string
	active bool

	cam camera.Camera

	lights []light.Light
	groups []*lightGroup

	registry  map[uint64]game_object.GameObject // non-ephemeral objects by ID
	order     []uint64                          // registry IDs in submission order
	ephemeral []game_object.GameObject          // consumed by the next successful Traverse
	nextID    uint64

	logger *zap.Logger
}

// Ensure scene implements Scene interface.
var _ Scene = &scene{}

// NewScene creates a new Scene viewed through cam.
//
// Panics if cam is nil.
//
// Parameters:
//   - name: the name of the scene
//   - cam: the camera to attach (must not be nil)
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, cam camera.Camera, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}

	s := &scene{
		mu:       &sync.RWMutex{},
		name:     name,
		cam:      cam,
		registry: make(map[uint64]game_object.GameObject),
		nextID:   1,
		logger:   zap.NewNop(),
	}

	for _, option := range options {
		option(s)
	}

	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam
}

func (s *scene) SetCamera(cam camera.Camera) {
	if cam == nil {
		panic("scene: SetCamera requires a non-nil Camera")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cam = cam
}

func (s *scene) AddLight(l light.Light) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lights = append(s.lights, l)
}

func (s *scene) RemoveLight(l light.Light) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.lights {
		if existing == l {
			s.lights = append(s.lights[:i], s.lights[i+1:]...)
			return
		}
	}
}

func (s *scene) Lights() []light.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.lights)
}

func (s *scene) AddLightGroup(name string, lights ...light.Light) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLightGroup(name, lights)
}

// addLightGroup defines a group. Caller must hold s.mu write lock.
func (s *scene) addLightGroup(name string, lights []light.Light) error {
	if s.group(name) != nil {
		return fmt.Errorf("%w: %q", ErrLightGroupExists, name)
	}
	s.groups = append(s.groups, &lightGroup{name: name, lights: slices.Clone(lights)})
	return nil
}

func (s *scene) AddGroupLight(name string, l light.Light) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.group(name)
	if g == nil {
		return fmt.Errorf("%w: %q", ErrUnknownLightGroup, name)
	}
	g.lights = append(g.lights, l)
	return nil
}

func (s *scene) RemoveLightGroup(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups = slices.DeleteFunc(s.groups, func(g *lightGroup) bool { return g.name == name })
}

func (s *scene) LightGroupNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, len(s.groups))
	for i, g := range s.groups {
		names[i] = g.name
	}
	return names
}

func (s *scene) LightGroupLights(name string) []light.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if g := s.group(name); g != nil {
		return slices.Clone(g.lights)
	}
	return nil
}

// group looks up a light group by name. Caller must hold s.mu.
func (s *scene) group(name string) *lightGroup {
	for _, g := range s.groups {
		if g.name == name {
			return g
		}
	}
	return nil
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registry)
}

func (s *scene) CountEphemeral() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ephemeral)
}

func (s *scene) Add(obj game_object.GameObject) uint64 {
	if obj == nil {
		panic("scene: Add requires a non-nil GameObject")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.add(obj)
	return obj.ID()
}

// add assigns an ID and stores the object. Caller must hold s.mu write lock.
func (s *scene) add(obj game_object.GameObject) {
	if obj.ID() == 0 {
		obj.SetID(atomic.AddUint64(&s.nextID, 1) - 1)
	}
	if obj.Ephemeral() {
		s.ephemeral = append(s.ephemeral, obj)
		return
	}
	if _, exists := s.registry[obj.ID()]; !exists {
		s.order = append(s.order, obj.ID())
	}
	s.registry[obj.ID()] = obj
}

func (s *scene) Get(id uint64) game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry[id]
}

func (s *scene) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.registry[id]; !exists {
		return
	}
	delete(s.registry, id)
	s.order = slices.DeleteFunc(s.order, func(o uint64) bool { return o == id })
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry = make(map[uint64]game_object.GameObject)
	s.order = nil
	s.ephemeral = nil
}

// frameObjects returns the enabled objects of the frame in submission order.
// Caller must hold s.mu write lock.
func (s *scene) frameObjects() []game_object.GameObject {
	objs := make([]game_object.GameObject, 0, len(s.order)+len(s.ephemeral))
	for _, id := range s.order {
		if obj := s.registry[id]; obj.Enabled() {
			objs = append(objs, obj)
		}
	}
	for _, obj := range s.ephemeral {
		if obj.Enabled() {
			objs = append(objs, obj)
		}
	}
	return objs
}

// frameLights gathers the enabled lights reaching one group, or the scene lights
// for name "". Lights attached to objects of that group follow the configured ones.
func frameLights(configured []light.Light, name string, objs []game_object.GameObject) []light.Light {
	out := make([]light.Light, 0, len(configured))
	for _, l := range configured {
		if l.Enabled() {
			out = append(out, l)
		}
	}
	for _, obj := range objs {
		if l := obj.Light(); l != nil && l.Enabled() && obj.LightGroup() == name {
			out = append(out, l)
		}
	}
	return out
}

func (s *scene) Traverse(a *visible.Assembler) error {
	if a == nil {
		panic("scene: Traverse requires a non-nil Assembler")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.traverse(a); err != nil {
		return err
	}
	s.ephemeral = nil
	return nil
}

// traverse feeds the frame into a without consuming the ephemeral objects.
// Caller must hold s.mu write lock.
func (s *scene) traverse(a *visible.Assembler) error {
	objs := s.frameObjects()

	// Resolve the lights reaching every group, and which groups have drawn members.
	groupLights := make(map[string][]light.Light, len(s.groups)+1)
	groupLights[""] = frameLights(s.lights, "", objs)
	for _, g := range s.groups {
		groupLights[g.name] = frameLights(g.lights, g.name, objs)
	}
	drawn := make(map[string]bool, len(s.groups))
	for _, obj := range objs {
		name := obj.LightGroup()
		if _, ok := groupLights[name]; !ok {
			return fmt.Errorf("%w: object %d names %q", ErrUnknownLightGroup, obj.ID(), name)
		}
		if name != "" && obj.Instance().Kind().Opaque() && !obj.ShadowOnly() {
			drawn[name] = true
		}
	}

	for _, l := range light.ShadowCasting(groupLights[""]) {
		if err := a.AddShadowLight(l); err != nil {
			return fmt.Errorf("scene: shadow light %q: %w", l.Name(), err)
		}
	}
	assemblers := make(map[string]*visible.LightGroupAssembler, len(drawn))
	for _, g := range s.groups {
		lights := groupLights[g.name]
		if !drawn[g.name] {
			for _, l := range light.ShadowCasting(lights) {
				if err := a.AddShadowLight(l); err != nil {
					return fmt.Errorf("scene: light group %q: %w", g.name, err)
				}
			}
			continue
		}
		ga, err := a.NewLightGroup(g.name)
		if err != nil {
			return fmt.Errorf("scene: light group %q: %w", g.name, err)
		}
		for _, l := range lights {
			if err := ga.AddLight(l); err != nil {
				return fmt.Errorf("scene: light group %q: %w", g.name, err)
			}
		}
		assemblers[g.name] = ga
	}

	for _, obj := range objs {
		if err := s.feed(a, obj, assemblers[obj.LightGroup()], groupLights[obj.LightGroup()]); err != nil {
			return fmt.Errorf("scene: object %d: %w", obj.ID(), err)
		}
	}

	s.logger.Debug("scene traversed",
		zap.String("scene", s.name),
		zap.Stringer("frame", a.FrameID()),
		zap.Int("objects", len(objs)),
		zap.Int("light_groups", len(assemblers)),
	)
	return nil
}

// feed adds one object to the assembler. ga is nil for unlit objects and for groups
// without drawn members.
func (s *scene) feed(a *visible.Assembler, obj game_object.GameObject, ga *visible.LightGroupAssembler, lights []light.Light) error {
	inst := obj.Instance()

	if !inst.Kind().Opaque() {
		if obj.ShadowOnly() {
			return nil
		}
		lit := light.Translucent(lights)
		if obj.LightGroup() == "" || inst.Kind() == instance.KindTranslucentRefractive || len(lit) == 0 {
			return a.AddTranslucentUnlit(inst)
		}
		return a.AddTranslucentLit(inst, lit...)
	}

	if !obj.ShadowOnly() {
		var err error
		if ga == nil {
			err = a.AddOpaqueUnlit(inst)
		} else {
			err = ga.AddInstance(inst)
		}
		if err != nil {
			return err
		}
	}
	if obj.CastsShadows() {
		for _, l := range light.ShadowCasting(lights) {
			if err := a.AddShadowCaster(l, inst); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *scene) BuildVisibleSet(options ...visible.AssemblerBuilderOption) (visible.VisibleSet, error) {
	a := visible.NewAssembler(s.Camera(), options...)
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.traverse(a); err != nil {
		return nil, err
	}
	set, err := a.Finalize()
	if err != nil {
		return nil, err
	}
	s.ephemeral = nil
	return set, nil
}
