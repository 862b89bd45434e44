package visible

import (
	"github.com/Carmen-Shannon/oxy-vis/engine/instance"
)

// visibilityContext is the single registry of instances that will appear in the
// rendered image. One context is created per opaque set and handed by pointer to
// every light group created from it, so an instance can be claimed once across the
// unlit batch and all groups. Shadow casters never touch it.
type visibilityContext struct {
	visible map[instance.Instance]struct{}
}

func newVisibilityContext() *visibilityContext {
	return &visibilityContext{visible: make(map[instance.Instance]struct{})}
}

// claim marks inst visible, failing if it already is.
func (v *visibilityContext) claim(op string, inst instance.Instance) *Error {
	if _, ok := v.visible[inst]; ok {
		return newError(KindInstanceAlreadyVisible, op, "instance %d", inst.ID())
	}
	v.visible[inst] = struct{}{}
	return nil
}

func (v *visibilityContext) contains(inst instance.Instance) bool {
	_, ok := v.visible[inst]
	return ok
}

func (v *visibilityContext) len() int {
	return len(v.visible)
}
