package visible

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-vis/engine/instance"
	"github.com/Carmen-Shannon/oxy-vis/engine/light"
	"github.com/Carmen-Shannon/oxy-vis/engine/material"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShadowLightWithoutCasters(t *testing.T) {
	s := NewShadowsAssembler()
	l1 := sun("l1")
	require.NoError(t, s.AddLight(l1))

	shadows, err := s.Finalize()
	require.NoError(t, err)
	assert.Equal(t, []light.Light{l1}, shadows.Lights())

	sigs, err := shadows.MaterialSignaturesFor(l1)
	require.NoError(t, err)
	assert.NotNil(t, sigs)
	assert.Empty(t, sigs)
}

func TestShadowAddLightIsIdempotent(t *testing.T) {
	s := NewShadowsAssembler()
	l1, l2 := sun("l1"), sun("l2")
	caster := instance.NewOpaque(plain())

	require.NoError(t, s.AddLight(l1))
	require.NoError(t, s.AddCaster(l1, caster))
	require.NoError(t, s.AddLight(l2))
	require.NoError(t, s.AddLight(l1))

	shadows, err := s.Finalize()
	require.NoError(t, err)
	assert.Equal(t, []light.Light{l1, l2}, shadows.Lights())

	insts, err := shadows.InstancesFor(l1, material.NewSignature("DC"))
	require.NoError(t, err)
	assert.Equal(t, []instance.Instance{caster}, insts)
}

func TestShadowCastersAreNotDeduplicated(t *testing.T) {
	s := NewShadowsAssembler()
	l1, l2 := sun("l1"), sun("l2")
	caster := instance.NewOpaque(plain())
	masked := instance.NewOpaque(material.NewMaterial(material.WithAlphaMode(material.AlphaMask)))

	require.NoError(t, s.AddCaster(l1, caster))
	require.NoError(t, s.AddCaster(l1, caster))
	require.NoError(t, s.AddCaster(l1, masked))
	require.NoError(t, s.AddCaster(l2, caster))

	shadows, err := s.Finalize()
	require.NoError(t, err)
	assert.Equal(t, []light.Light{l1, l2}, shadows.Lights())

	sigs, err := shadows.MaterialSignaturesFor(l1)
	require.NoError(t, err)
	assert.Equal(t, []material.Signature{material.NewSignature("DC"), material.NewSignature("DM")}, sigs)

	insts, err := shadows.InstancesFor(l1, material.NewSignature("DC"))
	require.NoError(t, err)
	assert.Equal(t, []instance.Instance{caster, caster}, insts)

	insts, err = shadows.InstancesFor(l2, material.NewSignature("DC"))
	require.NoError(t, err)
	assert.Equal(t, []instance.Instance{caster}, insts)
}

func TestShadowLookupErrors(t *testing.T) {
	s := NewShadowsAssembler()
	l1 := sun("l1")
	require.NoError(t, s.AddCaster(l1, instance.NewOpaque(plain())))
	shadows, err := s.Finalize()
	require.NoError(t, err)

	_, err = shadows.MaterialSignaturesFor(sun("stranger"))
	assert.ErrorIs(t, err, ErrLightNonexistent)

	_, err = shadows.InstancesFor(sun("stranger"), material.NewSignature("DC"))
	assert.ErrorIs(t, err, ErrLightNonexistent)

	_, err = shadows.InstancesFor(l1, material.NewSignature("DMT"))
	assert.ErrorIs(t, err, ErrMaterialNonexistent)
}

func TestShadowCasterMustBeOpaque(t *testing.T) {
	s := NewShadowsAssembler()
	glass := instance.NewInstance(instance.KindTranslucentRegular, plain())

	err := s.AddCaster(sun("l1"), glass)
	assert.ErrorIs(t, err, ErrInstanceKindMismatch)
}

func TestShadowsOneShot(t *testing.T) {
	s := NewShadowsAssembler()
	_, err := s.Finalize()
	require.NoError(t, err)

	assert.ErrorIs(t, s.AddLight(sun("l1")), ErrBuilderInvalid)
	assert.ErrorIs(t, s.AddCaster(sun("l1"), instance.NewOpaque(plain())), ErrBuilderInvalid)
	_, err = s.Finalize()
	assert.ErrorIs(t, err, ErrBuilderInvalid)
}

func TestShadowSnapshotIsImmutable(t *testing.T) {
	s := NewShadowsAssembler()
	l1 := sun("l1")
	caster := instance.NewOpaque(plain())
	require.NoError(t, s.AddCaster(l1, caster))
	shadows, err := s.Finalize()
	require.NoError(t, err)

	lights := shadows.Lights()
	lights[0] = sun("intruder")
	insts, err := shadows.InstancesFor(l1, material.NewSignature("DC"))
	require.NoError(t, err)
	insts[0] = instance.NewOpaque(plain())

	assert.Equal(t, []light.Light{l1}, shadows.Lights())
	again, err := shadows.InstancesFor(l1, material.NewSignature("DC"))
	require.NoError(t, err)
	assert.Equal(t, []instance.Instance{caster}, again)
}
