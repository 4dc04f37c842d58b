package telemetry

// Platform records what the scheduler probed about the host. Codegen always
// targets Linux x86-64 regardless; this layer only reports.
type Platform struct {
	ID          int    // scheduler-assigned id
	SyscallBase uint64 // 0 on Linux
	Probed      bool
}

// Probe assigns the platform a scheduler id and records the syscall base.
// Idempotent after the first call.
func (p *Platform) Probe(fate *Fate) {
	if p.Probed {
		return
	}
	p.ID = fate.NextID()
	p.SyscallBase = 0 // Linux
	p.Probed = true
	fate.Learn("platform.id", float64(p.ID))
	fate.Learn("platform.syscall_base", float64(p.SyscallBase))
}

// Standard bridge addresses (externally injected protocol, reporting only).
const (
	AddrDisplayFB     = 0x1000
	AddrDisplayWidth  = 0x1004
	AddrDisplayHeight = 0x1008
	AddrDisplayPitch  = 0x100C
	AddrDisplayFormat = 0x1010
	AddrDisplayReady  = 0x1014
	AddrInputBuffer   = 0x2000
	AddrInputHead     = 0x2004
	AddrInputTail     = 0x2008
	AddrInputReady    = 0x200C
	AddrTimeTicks     = 0x3000
	AddrTimeFreq      = 0x3004
)

// Bridge is the minimal universal bridge state.
type Bridge struct {
	DisplayReady bool
	InputReady   bool
	Width        uint32
	Height       uint32
}

// Compat tracks which device classes a probe requested.
type Compat struct {
	Display bool
	Input   bool
	Storage bool
	Network bool
	Audio   bool
}

// Probe records probe requests as learned keys; actual devices are a runtime
// concern the compiler never touches.
func (c *Compat) Probe(fate *Fate) {
	fate.Learn("probe.display", 1)
	fate.Learn("probe.input", 1)
	fate.Learn("probe.storage", 1)
	fate.Learn("probe.network", 1)
	fate.Learn("probe.audio", 1)
}
