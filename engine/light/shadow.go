package light

// DefaultShadowDepthBias is the constant depth bias applied by the shadow depth
// pipeline to reduce shadow acne artifacts.
const DefaultShadowDepthBias int32 = 2

// DefaultShadowSlopeScale is the slope-scaled depth bias applied by the shadow depth
// pipeline. Higher values push steep surfaces further back in the shadow map, reducing
// self-shadowing at the cost of slight shadow detachment from contact points.
const DefaultShadowSlopeScale float32 = 1.5

// ShadowCasting filters lights down to those that need a shadow map, preserving order.
//
// Parameters:
//   - lights: the lights to filter
//
// Returns:
//   - []Light: the shadow-casting subset
func ShadowCasting(lights []Light) []Light {
	out := make([]Light, 0, len(lights))
	for _, l := range lights {
		if l.CastsShadows() {
			out = append(out, l)
		}
	}
	return out
}

// Translucent filters lights down to those that affect translucent surfaces,
// preserving order.
//
// Parameters:
//   - lights: the lights to filter
//
// Returns:
//   - []Light: the subset that affects translucency
func Translucent(lights []Light) []Light {
	out := make([]Light, 0, len(lights))
	for _, l := range lights {
		if l.AffectsTranslucency() {
			out = append(out, l)
		}
	}
	return out
}
