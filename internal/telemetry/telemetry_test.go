package telemetry

import (
	"math"
	"testing"
)

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// TestFieldClamp checks Set and Adjust stay inside [0,1].
func TestFieldClamp(t *testing.T) {
	f := NewField()
	if f.I != 0.5 || f.E != 0.5 || f.R != 0.5 {
		t.Fatalf("fresh field = %+v, want midpoint", f)
	}

	f.Set(1.5, -0.2, 0.3)
	if f.I != 1 || f.E != 0 || !almost(f.R, 0.3) {
		t.Errorf("Set clamp = %+v", f)
	}

	f.Adjust(-2, 0.5, 0.9)
	if f.I != 0 || !almost(f.E, 0.5) || f.R != 1 {
		t.Errorf("Adjust clamp = %+v", f)
	}
}

// TestDerivedRules spot-checks the fixed projections.
func TestDerivedRules(t *testing.T) {
	f := &Field{I: 0.2, E: 0.4, R: 0.6}

	g := f.Gravitational()
	if !almost(g.Strength, 0.2) || !almost(g.InverseSquare, 1.8) || !almost(g.Threshold, 0.06) {
		t.Errorf("gravitational = %+v", g)
	}

	m := f.Memory()
	if !almost(m.Persistence, 0.2) || !almost(m.Recall, 0.6) || !almost(m.Decay, 0.0004) {
		t.Errorf("memory = %+v", m)
	}

	c := f.Connection()
	if !almost(c.Decay, 0.8) {
		t.Errorf("connection decay = %v, want 0.8", c.Decay)
	}
}

// TestTilesSelectAndAlloc checks field-driven pool selection and spill.
func TestTilesSelectAndAlloc(t *testing.T) {
	f := NewField()
	tiles := NewTiles(f)
	tiles.AddPool(0x10000, 0x20, "small")
	tiles.AddPool(0x20000, 0x100, "big")

	// equal i and e selects the last pool
	if idx := tiles.SelectPool(); idx != 1 {
		t.Errorf("SelectPool = %d, want 1", idx)
	}
	f.I = 0.9
	f.E = 0.1
	if idx := tiles.SelectPool(); idx != 0 {
		t.Errorf("SelectPool = %d, want 0 with high i", idx)
	}

	// first allocation lands in pool 0, overflow spills to pool 1
	if addr := tiles.Alloc(0x20); addr != 0x10000 {
		t.Errorf("Alloc = %#x, want 0x10000", addr)
	}
	if addr := tiles.Alloc(0x40); addr != 0x20000 {
		t.Errorf("spill Alloc = %#x, want 0x20000", addr)
	}
	if tiles.TotalUsed() != 0x60 {
		t.Errorf("TotalUsed = %#x, want 0x60", tiles.TotalUsed())
	}

	// nothing fits anywhere
	if addr := tiles.Alloc(0x10000); addr != 0 {
		t.Errorf("oversized Alloc = %#x, want 0", addr)
	}
}

// TestTilesAutoPool checks the default pool appears on first use.
func TestTilesAutoPool(t *testing.T) {
	tiles := NewTiles(NewField())
	if addr := tiles.Alloc(8); addr != 0x10000 {
		t.Errorf("Alloc = %#x, want default pool base", addr)
	}
	if tiles.PoolCount() != 1 {
		t.Errorf("PoolCount = %d, want 1", tiles.PoolCount())
	}
}

// TestFateCollapseOnFlatGain checks the scheduler leaves dynamic mode when
// the marginal gain stalls, and freezes the field as learned statics.
func TestFateCollapseOnFlatGain(t *testing.T) {
	fate := NewFate()
	tiles := NewTiles(NewField())

	fate.Tick(tiles)
	if fate.On {
		t.Error("flat gain must collapse the scheduler")
	}
	if got := fate.Recall("static:i"); !almost(got, 0.5) {
		t.Errorf("static:i = %v, want 0.5", got)
	}

	// collapsed schedulers ignore further ticks
	fate.Tick(tiles)
	if fate.On {
		t.Error("tick after collapse must not revive the scheduler")
	}
}

// TestFateLearnRecall checks the key/value store.
func TestFateLearnRecall(t *testing.T) {
	fate := NewFate()
	fate.Learn("k", 2.5)
	if got := fate.Recall("k"); !almost(got, 2.5) {
		t.Errorf("Recall = %v, want 2.5", got)
	}
	fate.Learn("k", 3.5)
	if got := fate.Recall("k"); !almost(got, 3.5) {
		t.Errorf("Recall after overwrite = %v, want 3.5", got)
	}
	if got := fate.Recall("missing"); got != 0 {
		t.Errorf("Recall(missing) = %v, want 0", got)
	}
}

// TestFateIDs checks ids start at 1 and increase.
func TestFateIDs(t *testing.T) {
	fate := NewFate()
	if id := fate.NextID(); id != 1 {
		t.Errorf("first id = %d, want 1", id)
	}
	if id := fate.NextID(); id != 2 {
		t.Errorf("second id = %d, want 2", id)
	}
}

// TestPlatformProbe checks the probe is idempotent and records learned keys.
func TestPlatformProbe(t *testing.T) {
	fate := NewFate()
	var p Platform

	p.Probe(fate)
	if p.ID != 1 || p.SyscallBase != 0 || !p.Probed {
		t.Errorf("platform = %+v", p)
	}
	if got := fate.Recall("platform.id"); !almost(got, 1) {
		t.Errorf("learned platform.id = %v, want 1", got)
	}

	p.Probe(fate)
	if p.ID != 1 {
		t.Error("second probe must not reassign the id")
	}
}

// TestCompatProbe checks the device probe records its requests.
func TestCompatProbe(t *testing.T) {
	fate := NewFate()
	var c Compat
	c.Probe(fate)

	for _, key := range []string{"probe.display", "probe.input", "probe.storage", "probe.network", "probe.audio"} {
		if got := fate.Recall(key); !almost(got, 1) {
			t.Errorf("Recall(%q) = %v, want 1", key, got)
		}
	}
}
