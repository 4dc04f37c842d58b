package telemetry

// MaxPools bounds the tile manager's pool table.
const MaxPools = 16

// Pool is a named abstract memory region. Pools never map to anything in the
// emitted binary; they exist so the scheduler has usage figures to observe.
type Pool struct {
	Base    uint64
	Size    uint64
	Used    uint64
	Purpose string
}

// Tiles is the four-pool tile memory manager. Pool selection follows the
// unified field: information-heavy compiles favor the first (compression)
// pool, entropy-heavy ones the last (fast) pool.
type Tiles struct {
	pools []Pool
	field *Field
}

// NewTiles creates an empty tile manager observing field.
func NewTiles(field *Field) *Tiles {
	return &Tiles{field: field}
}

// AddPool registers a pool and returns its index, or -1 when the table is
// full.
func (t *Tiles) AddPool(base, size uint64, purpose string) int {
	if len(t.pools) >= MaxPools {
		return -1
	}
	t.pools = append(t.pools, Pool{Base: base, Size: size, Purpose: purpose})
	return len(t.pools) - 1
}

// SelectPool picks a pool index from the field parameters.
func (t *Tiles) SelectPool() int {
	if len(t.pools) == 0 {
		return -1
	}
	if t.field.I > t.field.E {
		return 0
	}
	return len(t.pools) - 1
}

// Alloc reserves size bytes in the selected pool, spilling to any pool with
// room. Returns the abstract address, or 0 when nothing fits.
func (t *Tiles) Alloc(size uint64) uint64 {
	if len(t.pools) == 0 {
		t.AddPool(0x10000, 0x100000, "default")
	}
	idx := t.SelectPool()
	if idx < 0 {
		return 0
	}
	pool := &t.pools[idx]
	if pool.Used+size > pool.Size {
		for i := range t.pools {
			if t.pools[i].Used+size <= t.pools[i].Size {
				pool = &t.pools[i]
				break
			}
		}
	}
	if pool.Used+size > pool.Size {
		return 0
	}
	addr := pool.Base + pool.Used
	pool.Used += size
	return addr
}

// TotalUsed sums the bytes allocated across all pools.
func (t *Tiles) TotalUsed() uint64 {
	var sum uint64
	for i := range t.pools {
		sum += t.pools[i].Used
	}
	return sum
}

// Ratio returns used/total across all pools, 0 when no pools exist.
func (t *Tiles) Ratio() float64 {
	var total, used uint64
	for i := range t.pools {
		total += t.pools[i].Size
		used += t.pools[i].Used
	}
	if total == 0 {
		return 0
	}
	return float64(used) / float64(total)
}

// PoolCount returns the number of registered pools.
func (t *Tiles) PoolCount() int { return len(t.pools) }
