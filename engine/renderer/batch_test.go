package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-vis/engine/camera"
	"github.com/Carmen-Shannon/oxy-vis/engine/instance"
	"github.com/Carmen-Shannon/oxy-vis/engine/light"
	"github.com/Carmen-Shannon/oxy-vis/engine/material"
	"github.com/Carmen-Shannon/oxy-vis/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-vis/engine/visible"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frameFixture struct {
	set        visible.VisibleSet
	sun        light.Light
	lamp       light.Light
	floor      instance.Instance
	crate      instance.Instance
	sky        instance.Instance
	glassA     instance.Instance
	glassB     instance.Instance
	smoke      instance.Instance
	plainMat   material.Material
	texturedMt material.Material
}

func newFrameFixture(t *testing.T) frameFixture {
	t.Helper()
	f := frameFixture{
		sun:        light.NewLight(light.LightTypeDirectional, light.WithName("sun"), light.WithCastsShadows(true)),
		lamp:       light.NewLight(light.LightTypeSpherical, light.WithName("lamp")),
		plainMat:   material.NewMaterial(),
		texturedMt: material.NewMaterial(material.WithDiffuseTexture()),
	}
	f.floor = instance.NewOpaque(f.plainMat, instance.WithName("floor"))
	f.crate = instance.NewOpaque(f.texturedMt, instance.WithName("crate"))
	f.sky = instance.NewOpaque(f.plainMat, instance.WithName("sky"))
	f.glassA = instance.NewInstance(instance.KindTranslucentSpecularOnly, f.plainMat, instance.WithName("glassA"))
	f.glassB = instance.NewInstance(instance.KindTranslucentSpecularOnly, f.plainMat, instance.WithName("glassB"))
	f.smoke = instance.NewInstance(instance.KindTranslucentRegular, f.plainMat, instance.WithName("smoke"))

	a := visible.NewAssembler(camera.NewCamera())
	require.NoError(t, a.AddOpaqueUnlit(f.sky))
	g, err := a.NewLightGroup("main")
	require.NoError(t, err)
	require.NoError(t, g.AddLight(f.sun))
	require.NoError(t, g.AddLight(f.lamp))
	require.NoError(t, g.AddInstance(f.floor))
	require.NoError(t, g.AddInstance(f.crate))
	require.NoError(t, a.AddShadowCaster(f.sun, f.crate))
	require.NoError(t, a.AddShadowCaster(f.sun, f.floor))
	require.NoError(t, a.AddTranslucentLit(f.glassA, f.sun))
	require.NoError(t, a.AddTranslucentLit(f.glassB, f.sun))
	require.NoError(t, a.AddTranslucentUnlit(f.smoke))
	require.NoError(t, a.AddTranslucentLit(f.glassA, f.sun))

	f.set, err = a.Finalize()
	require.NoError(t, err)
	return f
}

func TestPlanFrameOrder(t *testing.T) {
	f := newFrameFixture(t)

	batches, err := Plan(f.set)
	require.NoError(t, err)

	var passes []pipeline.Pass
	var keys []string
	for _, b := range batches {
		passes = append(passes, b.Pass)
		keys = append(keys, b.Key)
		assert.Nil(t, b.Pipeline)
	}
	assert.Equal(t, []pipeline.Pass{
		pipeline.PassShadow,
		pipeline.PassOpaqueUnlit,
		pipeline.PassLightGroup,
		pipeline.PassLightGroup,
		pipeline.PassTranslucentLit,
		pipeline.PassTranslucentUnlit,
		pipeline.PassTranslucentLit,
	}, passes)
	assert.Equal(t, []string{
		"shadow/DC",
		"opaque-unlit/BC",
		"light-group/BC",
		"light-group/BT",
		"translucent-lit/BC",
		"translucent-unlit/BC",
		"translucent-lit/BC",
	}, keys)
}

func TestPlanBatchContents(t *testing.T) {
	f := newFrameFixture(t)

	batches, err := Plan(f.set)
	require.NoError(t, err)
	require.Len(t, batches, 7)

	shadow := batches[0]
	assert.Same(t, f.sun, shadow.Light)
	assert.Equal(t, []instance.Instance{f.crate, f.floor}, shadow.Instances)

	group := batches[2]
	assert.Equal(t, "main", group.Group)
	assert.Equal(t, []light.Light{f.sun, f.lamp}, group.Lights)
	assert.Equal(t, []instance.Instance{f.floor}, group.Instances)

	// Adjacent lit glass merges, the later one stays behind the smoke.
	merged := batches[4]
	assert.Equal(t, visible.TranslucentLitSpecularOnly, merged.Translucent)
	assert.Equal(t, []instance.Instance{f.glassA, f.glassB}, merged.Instances)
	assert.Equal(t, []instance.Instance{f.smoke}, batches[5].Instances)
	assert.Equal(t, []instance.Instance{f.glassA}, batches[6].Instances)
}

func TestPlanEmptySet(t *testing.T) {
	set, err := visible.NewAssembler(camera.NewCamera()).Finalize()
	require.NoError(t, err)

	batches, err := Plan(set)
	require.NoError(t, err)
	assert.Empty(t, batches)
}

func TestPlanShadowLightWithoutCasters(t *testing.T) {
	a := visible.NewAssembler(camera.NewCamera())
	require.NoError(t, a.AddShadowLight(light.NewLight(light.LightTypeProjective, light.WithCastsShadows(true))))
	set, err := a.Finalize()
	require.NoError(t, err)

	batches, err := Plan(set)
	require.NoError(t, err)
	assert.Empty(t, batches)
	assert.Len(t, set.Shadows().Lights(), 1)
}

func TestByPass(t *testing.T) {
	f := newFrameFixture(t)
	batches, err := Plan(f.set)
	require.NoError(t, err)

	byPass := ByPass(batches)
	assert.Len(t, byPass[pipeline.PassShadow], 1)
	assert.Len(t, byPass[pipeline.PassLightGroup], 2)
	require.Len(t, byPass[pipeline.PassTranslucentLit], 2)
	assert.Equal(t, []instance.Instance{f.glassA}, byPass[pipeline.PassTranslucentLit][1].Instances)
}
