package visible

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-vis/engine/instance"
	"github.com/Carmen-Shannon/oxy-vis/engine/material"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpaquesUnlitThenGroup(t *testing.T) {
	o := NewOpaquesAssembler()
	i1 := instance.NewOpaque(plain())
	require.NoError(t, o.AddUnlit(i1))

	g, err := o.NewLightGroup("g")
	require.NoError(t, err)
	assert.ErrorIs(t, g.AddInstance(i1), ErrInstanceAlreadyVisible)
	assert.ErrorIs(t, o.AddUnlit(i1), ErrInstanceAlreadyVisible)
}

func TestOpaquesGroupThenUnlit(t *testing.T) {
	o := NewOpaquesAssembler()
	i1 := instance.NewOpaque(plain())
	g, err := o.NewLightGroup("g")
	require.NoError(t, err)
	require.NoError(t, g.AddInstance(i1))

	err = o.AddUnlit(i1)
	assert.ErrorIs(t, err, ErrInstanceAlreadyVisible)
	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, KindInstanceAlreadyVisible, kind)
}

func TestOpaquesShadowCastersAreIndependentOfVisibility(t *testing.T) {
	o := NewOpaquesAssembler()
	s1, s2 := sun("s1"), sun("s2")
	i1 := instance.NewOpaque(plain())

	require.NoError(t, o.AddShadowCaster(s1, i1))
	require.NoError(t, o.AddShadowCaster(s2, i1))
	require.NoError(t, o.AddUnlit(i1))
	require.NoError(t, o.AddShadowCaster(s1, i1))

	// A caster-only instance stays free to join a group.
	i2 := instance.NewOpaque(plain())
	require.NoError(t, o.AddShadowCaster(s1, i2))
	g, err := o.NewLightGroup("g")
	require.NoError(t, err)
	require.NoError(t, g.AddLight(s1))
	require.NoError(t, g.AddInstance(i2))

	opaques, err := o.Finalize()
	require.NoError(t, err)

	unlit, err := opaques.InstancesForUnlit(plain().Signature())
	require.NoError(t, err)
	assert.Equal(t, []instance.Instance{i1}, unlit)

	casters, err := opaques.Shadows().InstancesFor(s1, plain().DepthSignature())
	require.NoError(t, err)
	assert.Equal(t, []instance.Instance{i1, i1, i2}, casters)
}

func TestOpaquesDuplicateGroupName(t *testing.T) {
	o := NewOpaquesAssembler()
	_, err := o.NewLightGroup("g")
	require.NoError(t, err)

	g, err := o.NewLightGroup("g")
	assert.Nil(t, g)
	assert.ErrorIs(t, err, ErrLightGroupAlreadyAdded)
}

func TestOpaquesSnapshot(t *testing.T) {
	o := NewOpaquesAssembler()
	first := instance.NewOpaque(textured())
	second := instance.NewOpaque(plain())
	third := instance.NewOpaque(textured())
	require.NoError(t, o.AddUnlit(first))
	require.NoError(t, o.AddUnlit(second))
	require.NoError(t, o.AddUnlit(third))

	for _, name := range []string{"zeta", "alpha", "mid"} {
		g, err := o.NewLightGroup(name)
		require.NoError(t, err)
		require.NoError(t, g.AddLight(bulb(name)))
		require.NoError(t, g.AddInstance(instance.NewOpaque(plain())))
	}

	opaques, err := o.Finalize()
	require.NoError(t, err)
	assert.Equal(t, []material.Signature{textured().Signature(), plain().Signature()}, opaques.UnlitSignatures())
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, opaques.GroupNames())

	insts, err := opaques.InstancesForUnlit(textured().Signature())
	require.NoError(t, err)
	assert.Equal(t, []instance.Instance{first, third}, insts)

	_, err = opaques.InstancesForUnlit(material.NewSignature("BT_N"))
	assert.ErrorIs(t, err, ErrMaterialNonexistent)

	_, err = opaques.Group("missing")
	assert.ErrorIs(t, err, ErrLightGroupNonexistent)

	names := opaques.GroupNames()
	names[0] = "changed"
	assert.Equal(t, "zeta", opaques.GroupNames()[0])
}

func TestOpaquesFinalizeCollectsEarlyFinalizedGroups(t *testing.T) {
	o := NewOpaquesAssembler()
	g, err := o.NewLightGroup("early")
	require.NoError(t, err)
	require.NoError(t, g.AddLight(bulb("b1")))
	require.NoError(t, g.AddInstance(instance.NewOpaque(plain())))
	early, err := g.Finalize()
	require.NoError(t, err)

	opaques, err := o.Finalize()
	require.NoError(t, err)
	got, err := opaques.Group("early")
	require.NoError(t, err)
	assert.Same(t, early, got)
}

func TestOpaquesFinalizePropagatesGroupErrorUnchanged(t *testing.T) {
	o := NewOpaquesAssembler()
	good, err := o.NewLightGroup("good")
	require.NoError(t, err)
	require.NoError(t, good.AddLight(bulb("b1")))
	require.NoError(t, good.AddInstance(instance.NewOpaque(plain())))
	_, err = o.NewLightGroup("dark")
	require.NoError(t, err)
	empty, err := o.NewLightGroup("empty")
	require.NoError(t, err)
	require.NoError(t, empty.AddLight(bulb("b2")))

	opaques, err := o.Finalize()
	assert.Nil(t, opaques)
	require.Error(t, err)

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, KindLightGroupLacksLights, verr.Kind)
	assert.Equal(t, "LightGroup.Finalize", verr.Op)
	assert.Equal(t, `"dark"`, verr.Detail)

	// Every nested assembler was consumed.
	assert.ErrorIs(t, good.AddLight(bulb("b3")), ErrBuilderInvalid)
	assert.ErrorIs(t, empty.AddLight(bulb("b4")), ErrBuilderInvalid)
	assert.ErrorIs(t, o.AddUnlit(instance.NewOpaque(plain())), ErrBuilderInvalid)
	assert.ErrorIs(t, o.AddShadowLight(sun("s1")), ErrBuilderInvalid)
	_, err = o.NewLightGroup("late")
	assert.ErrorIs(t, err, ErrBuilderInvalid)
}

func TestOpaquesRejectTranslucent(t *testing.T) {
	o := NewOpaquesAssembler()
	glass := instance.NewInstance(instance.KindTranslucentRefractive, plain())

	assert.ErrorIs(t, o.AddUnlit(glass), ErrInstanceKindMismatch)
	assert.ErrorIs(t, o.AddShadowCaster(sun("s1"), glass), ErrInstanceKindMismatch)
}

func TestOpaquesOneShot(t *testing.T) {
	o := NewOpaquesAssembler()
	_, err := o.Finalize()
	require.NoError(t, err)

	assert.ErrorIs(t, o.AddUnlit(instance.NewOpaque(plain())), ErrBuilderInvalid)
	assert.ErrorIs(t, o.AddShadowCaster(sun("s1"), instance.NewOpaque(plain())), ErrBuilderInvalid)
	assert.ErrorIs(t, o.AddShadowLight(sun("s2")), ErrBuilderInvalid)
	_, err = o.NewLightGroup("g")
	assert.ErrorIs(t, err, ErrBuilderInvalid)
	_, err = o.Finalize()
	assert.ErrorIs(t, err, ErrBuilderInvalid)
}
