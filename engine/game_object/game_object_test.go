package game_object

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-vis/engine/instance"
	"github.com/Carmen-Shannon/oxy-vis/engine/light"
	"github.com/Carmen-Shannon/oxy-vis/engine/material"
	"github.com/stretchr/testify/assert"
)

func TestNewGameObjectDefaults(t *testing.T) {
	inst := instance.NewOpaque(material.NewMaterial())
	obj := NewGameObject(inst)

	assert.Same(t, inst, obj.Instance())
	assert.True(t, obj.Enabled())
	assert.False(t, obj.Ephemeral())
	assert.Empty(t, obj.LightGroup())
	assert.False(t, obj.CastsShadows())
	assert.False(t, obj.ShadowOnly())
	assert.Nil(t, obj.Light())
	assert.Zero(t, obj.ID())
}

func TestNewGameObjectOptions(t *testing.T) {
	lamp := light.NewLight(light.LightTypeSpherical, light.WithName("lamp"))
	obj := NewGameObject(instance.NewOpaque(material.NewMaterial()),
		WithID(9),
		WithEnabled(false),
		WithEphemeral(true),
		WithLightGroup("hall"),
		WithCastsShadows(true),
		WithLight(lamp),
	)

	assert.Equal(t, uint64(9), obj.ID())
	assert.False(t, obj.Enabled())
	assert.True(t, obj.Ephemeral())
	assert.Equal(t, "hall", obj.LightGroup())
	assert.True(t, obj.CastsShadows())
	assert.Same(t, lamp, obj.Light())
}

func TestShadowOnlyImpliesCasting(t *testing.T) {
	obj := NewGameObject(instance.NewOpaque(material.NewMaterial()), WithShadowOnly(true))
	assert.True(t, obj.ShadowOnly())
	assert.True(t, obj.CastsShadows())

	obj.SetShadowOnly(false)
	assert.False(t, obj.CastsShadows())
}

func TestSetters(t *testing.T) {
	obj := NewGameObject(instance.NewOpaque(material.NewMaterial()))
	next := instance.NewInstance(instance.KindTranslucentRegular, material.NewMaterial())

	obj.SetID(3)
	obj.SetEnabled(false)
	obj.SetInstance(next)
	obj.SetLightGroup("yard")
	obj.SetCastsShadows(true)
	obj.SetLight(nil)

	assert.Equal(t, uint64(3), obj.ID())
	assert.False(t, obj.Enabled())
	assert.Same(t, next, obj.Instance())
	assert.Equal(t, "yard", obj.LightGroup())
	assert.True(t, obj.CastsShadows())
	assert.PanicsWithValue(t, "game_object: SetInstance requires a non-nil Instance", func() { obj.SetInstance(nil) })
}

func TestNewGameObjectRequiresInstance(t *testing.T) {
	assert.PanicsWithValue(t, "game_object: NewGameObject requires a non-nil Instance", func() { NewGameObject(nil) })
}
