// Package cache simulates a set-associative, write-back, write-allocate
// cache with LRU replacement. It replays memory traces and counts hits,
// misses and evictions; no data is stored.
package cache

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// Op is a kind of memory access.
type Op uint8

// Access kinds.
const (
	OpLoad Op = iota
	OpStore
	// OpModify is a load followed by a store to the same address.
	OpModify
)

var opNames = [...]string{"L", "S", "M"}

func (op Op) String() string {
	if int(op) >= len(opNames) {
		return "?"
	}
	return opNames[op]
}

// Eviction describes the line replaced by a miss.
type Eviction struct {
	// Valid is false when the miss filled an empty line.
	Valid bool
	// Dirty is set when the replaced line had been written.
	Dirty bool
	// Addr is the block address of the replaced line.
	Addr uint64
}

// AccessResult is the outcome of one access.
type AccessResult struct {
	Hit      bool
	Eviction Eviction
}

// Statistics holds cache performance statistics.
type Statistics struct {
	Hits           uint64
	Misses         uint64
	DirtyEvictions uint64
	CleanEvictions uint64
}

// Cache is a trace-driven cache model built on an akita directory.
type Cache struct {
	config    Config
	directory *akitacache.DirectoryImpl
	stats     Statistics
}

// New creates an empty cache. It returns an error if the configuration is
// invalid.
func New(config Config) (*Cache, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			config.NumSets(),
			config.Ways,
			config.BlockSize(),
			akitacache.NewLRUVictimFinder(),
		),
	}, nil
}

// Config returns the cache configuration.
func (c *Cache) Config() Config {
	return c.config
}

// Stats returns cache statistics.
func (c *Cache) Stats() Statistics {
	return c.stats
}

func (c *Cache) blockAddr(addr uint64) uint64 {
	return addr &^ (uint64(c.config.BlockSize()) - 1)
}

// SetIndex returns the set addr maps to.
func (c *Cache) SetIndex(addr uint64) int {
	return int((addr >> c.config.BlockBits) & uint64(c.config.NumSets()-1))
}

// Tag returns the tag bits of addr.
func (c *Cache) Tag(addr uint64) uint64 {
	return addr >> (c.config.SetBits + c.config.BlockBits)
}

// Access performs one access. For OpModify the result describes the load;
// the store that follows always hits and is counted as a hit.
func (c *Cache) Access(addr uint64, op Op) AccessResult {
	switch op {
	case OpModify:
		result := c.access(addr, false)
		c.access(addr, true)
		return result
	case OpStore:
		return c.access(addr, true)
	default:
		return c.access(addr, false)
	}
}

func (c *Cache) access(addr uint64, write bool) AccessResult {
	blockAddr := c.blockAddr(addr)

	block := c.directory.Lookup(0, blockAddr)
	if block != nil && block.IsValid {
		c.stats.Hits++
		if write {
			block.IsDirty = true
		}
		c.directory.Visit(block)

		return AccessResult{Hit: true}
	}

	c.stats.Misses++

	return AccessResult{Eviction: c.fill(blockAddr, write)}
}

func (c *Cache) fill(blockAddr uint64, write bool) Eviction {
	victim := c.directory.FindVictim(blockAddr)

	evicted := Eviction{
		Valid: victim.IsValid,
		Dirty: victim.IsValid && victim.IsDirty,
		Addr:  victim.Tag,
	}

	switch {
	case evicted.Dirty:
		c.stats.DirtyEvictions++
	case evicted.Valid:
		c.stats.CleanEvictions++
	}

	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = write
	c.directory.Visit(victim)

	return evicted
}

// Contains returns true if the block holding addr is cached.
func (c *Cache) Contains(addr uint64) bool {
	block := c.directory.Lookup(0, c.blockAddr(addr))
	return block != nil && block.IsValid
}

// Reset invalidates every line and clears the statistics.
func (c *Cache) Reset() {
	c.directory.Reset()
	c.stats = Statistics{}
}

// DisplaySet writes the lines of set i as a table. The LRU column is the
// line's rank in replacement order, 0 being replaced first.
func (c *Cache) DisplaySet(w io.Writer, i int) error {
	if i < 0 || i >= c.config.NumSets() {
		return fmt.Errorf("set %d out of range [0, %d)", i, c.config.NumSets())
	}

	set := c.directory.GetSets()[i]

	rank := make(map[*akitacache.Block]int, len(set.LRUQueue))
	for r, block := range set.LRUQueue {
		rank[block] = r
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("Set %d", i))
	t.AppendHeader(table.Row{"Way", "Valid", "Tag", "LRU", "Dirty"})

	for _, block := range set.Blocks {
		t.AppendRow(table.Row{
			block.WayID,
			block.IsValid,
			fmt.Sprintf("%x", c.Tag(block.Tag)),
			rank[block],
			block.IsDirty,
		})
	}

	t.Render()

	return nil
}
