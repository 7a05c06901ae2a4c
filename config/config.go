// Package config holds the machine configuration of the simulator.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/armpipe/emu"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid machine config")

// Region is an address range in a config file.
type Region struct {
	Base uint64 `json:"base" yaml:"base"`
	Size uint64 `json:"size" yaml:"size"`
}

// MachineConfig describes the simulated machine and how it is run.
type MachineConfig struct {
	// Instruction is the region instruction fetches may read.
	Instruction Region `json:"instruction" yaml:"instruction"`

	// Data is the region loads and stores may access.
	Data Region `json:"data" yaml:"data"`

	// Special lists memory-mapped control register addresses.
	Special []uint64 `json:"special,omitempty" yaml:"special,omitempty"`

	// ReturnFromMain is the link value whose RET halts the program.
	ReturnFromMain uint64 `json:"return_from_main" yaml:"return_from_main"`

	// StackTop is the initial stack pointer.
	StackTop uint64 `json:"stack_top" yaml:"stack_top"`

	// MaxCycles bounds a run. Zero means unbounded.
	MaxCycles uint64 `json:"max_cycles" yaml:"max_cycles"`

	// Trace prints the pipeline state after every cycle.
	Trace bool `json:"trace" yaml:"trace"`
}

// Default returns the configuration used when no file is given.
func Default() *MachineConfig {
	layout := emu.DefaultLayout()

	return &MachineConfig{
		Instruction:    Region(layout.Instruction),
		Data:           Region(layout.Data),
		ReturnFromMain: emu.DefaultReturnFromMain,
		StackTop:       emu.DefaultStackTop,
		MaxCycles:      10_000_000,
	}
}

// Validate checks that the configuration describes a usable machine.
func (c *MachineConfig) Validate() error {
	if c.Instruction.Size == 0 {
		return fmt.Errorf("instruction region is empty: %w", ErrInvalid)
	}
	if c.Data.Size == 0 {
		return fmt.Errorf("data region is empty: %w", ErrInvalid)
	}
	if c.Instruction.Base+c.Instruction.Size < c.Instruction.Base {
		return fmt.Errorf("instruction region wraps around: %w", ErrInvalid)
	}
	if c.Data.Base+c.Data.Size < c.Data.Base {
		return fmt.Errorf("data region wraps around: %w", ErrInvalid)
	}
	if c.Instruction.Base%4 != 0 {
		return fmt.Errorf("instruction base 0x%x is not word aligned: %w",
			c.Instruction.Base, ErrInvalid)
	}
	if c.StackTop%8 != 0 {
		return fmt.Errorf("stack top 0x%x is not 8-byte aligned: %w", c.StackTop, ErrInvalid)
	}
	if c.StackTop <= c.Data.Base || c.StackTop > c.Data.Base+c.Data.Size {
		return fmt.Errorf("stack top 0x%x is outside the data region: %w", c.StackTop, ErrInvalid)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *MachineConfig) Clone() *MachineConfig {
	clone := *c
	clone.Special = append([]uint64(nil), c.Special...)
	return &clone
}

// Layout returns the memory layout described by the configuration.
func (c *MachineConfig) Layout() emu.Layout {
	return emu.Layout{
		Instruction: emu.Region(c.Instruction),
		Data:        emu.Region(c.Data),
		Special:     append([]uint64(nil), c.Special...),
	}
}

// NewMachine creates a machine with the configured layout, stack top and
// return-from-main sentinel.
func (c *MachineConfig) NewMachine() *emu.Machine {
	m := emu.NewMachine(c.Layout())
	m.ReturnFromMain = c.ReturnFromMain
	m.StackTop = c.StackTop
	m.Reset()

	return m
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// Load reads a configuration file. Files ending in .yaml or .yml are parsed
// as YAML, anything else as JSON. Fields missing from the file keep their
// default values. The result is validated.
func Load(path string) (*MachineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read machine config file: %w", err)
	}

	config := Default()
	if isYAML(path) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse machine config %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return config, nil
}

// Save writes the configuration to path, as YAML or JSON depending on the
// file extension.
func (c *MachineConfig) Save(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to serialize machine config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write machine config file: %w", err)
	}

	return nil
}
