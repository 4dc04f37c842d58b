package codegen

import "strings"

// The listing is a diagnostic AT&T-style trace of what the generator
// emitted, one line per instruction or label. It is recorded alongside the
// bytes, never derived from them, so it stays cheap and never influences
// the emitted image.

// EnableListing turns on listing capture. Off by default.
func (g *CodeGen) EnableListing() { g.listOn = true }

// Listing returns the captured assembly listing.
func (g *CodeGen) Listing() string {
	if len(g.listing) == 0 {
		return ""
	}
	return strings.Join(g.listing, "\n") + "\n"
}

func (g *CodeGen) note(line string) {
	if g.listOn {
		g.listing = append(g.listing, line)
	}
}
