// Package telemetry holds the compile-time rule state the Wave compiler
// updates while it works: the unified field, the tile memory pools, the fate
// scheduler, and the platform probes. None of it is observable in the
// emitted binary; its only output is the post-compile report.
package telemetry

// Field is the three-parameter unified field. All values live in [0,1].
type Field struct {
	I float64 // information density
	E float64 // entropy gradient
	R float64 // relation strength
}

// NewField returns a field at the neutral midpoint.
func NewField() *Field {
	return &Field{I: 0.5, E: 0.5, R: 0.5}
}

// Set clamps each parameter into [0,1].
func (f *Field) Set(i, e, r float64) {
	f.I = clamp01(i)
	f.E = clamp01(e)
	f.R = clamp01(r)
}

// Adjust shifts the parameters by deltas, clamped.
func (f *Field) Adjust(di, de, dr float64) {
	f.Set(f.I+di, f.E+de, f.R+dr)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Derived rules. Each is a fixed projection of the field parameters.

type GravitationalRule struct {
	Strength      float64
	InverseSquare float64
	Threshold     float64
}

type TensionRule struct {
	Base         float64
	Accumulation float64
	Release      float64
}

type EntropyRule struct {
	Initial  float64
	Growth   float64
	Critical float64
}

type ConnectionRule struct {
	Strength   float64
	Plasticity float64
	Decay      float64
}

type MemoryRule struct {
	Persistence float64
	Recall      float64
	Decay       float64
}

type OrbitalRule struct {
	Eccentricity float64
	Period       float64
	Stability    float64
}

func (f *Field) Gravitational() GravitationalRule {
	return GravitationalRule{
		Strength:      f.I,
		InverseSquare: f.E*2.0 + 1.0,
		Threshold:     f.R * 0.1,
	}
}

func (f *Field) Tension() TensionRule {
	return TensionRule{Base: f.R, Accumulation: f.E, Release: f.I * 0.8}
}

func (f *Field) Entropy() EntropyRule {
	return EntropyRule{Initial: f.E, Growth: f.I * 0.01, Critical: 1.0 - f.R*0.1}
}

func (f *Field) Connection() ConnectionRule {
	return ConnectionRule{Strength: f.R, Plasticity: f.E, Decay: 1.0 - f.I}
}

func (f *Field) Memory() MemoryRule {
	return MemoryRule{Persistence: f.I, Recall: f.R, Decay: f.E * 0.001}
}

func (f *Field) Orbital() OrbitalRule {
	return OrbitalRule{Eccentricity: f.E, Period: f.R, Stability: f.I}
}
