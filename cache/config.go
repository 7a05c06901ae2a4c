package cache

import (
	"errors"
	"fmt"
)

// AddressBits is the width of the addresses the cache is indexed with.
const AddressBits = 64

// ErrInvalidConfig is returned by Validate for geometries that cannot be
// built.
var ErrInvalidConfig = errors.New("invalid cache configuration")

// Config describes the geometry of a cache in the -s -E -b style.
type Config struct {
	// SetBits is log2 of the number of sets.
	SetBits int `json:"set_bits" yaml:"set_bits"`
	// Ways is the number of lines per set.
	Ways int `json:"ways" yaml:"ways"`
	// BlockBits is log2 of the block size in bytes.
	BlockBits int `json:"block_bits" yaml:"block_bits"`
}

// DefaultConfig returns a 4 KiB, 4-way cache with 64-byte blocks.
func DefaultConfig() Config {
	return Config{
		SetBits:   4,
		Ways:      4,
		BlockBits: 6,
	}
}

// NumSets returns the number of sets.
func (c Config) NumSets() int {
	return 1 << c.SetBits
}

// BlockSize returns the block size in bytes.
func (c Config) BlockSize() int {
	return 1 << c.BlockBits
}

// Capacity returns the data capacity in bytes.
func (c Config) Capacity() int {
	return c.NumSets() * c.Ways * c.BlockSize()
}

// Validate checks that the geometry is usable.
func (c Config) Validate() error {
	if c.SetBits < 0 {
		return fmt.Errorf("set_bits must be >= 0: %w", ErrInvalidConfig)
	}
	if c.BlockBits < 0 {
		return fmt.Errorf("block_bits must be >= 0: %w", ErrInvalidConfig)
	}
	if c.Ways < 1 {
		return fmt.Errorf("ways must be > 0: %w", ErrInvalidConfig)
	}
	if c.SetBits+c.BlockBits >= 32 {
		return fmt.Errorf("set_bits + block_bits must be < 32: %w", ErrInvalidConfig)
	}
	return nil
}
