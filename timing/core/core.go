// Package core runs the pipeline as a clocked component of an akita
// simulation engine.
package core

import (
	"fmt"
	"log/slog"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/armpipe/emu"
	"github.com/sarchlab/armpipe/timing/pipeline"
)

// Core is a ticking component that advances the pipeline by one cycle per
// tick. It stops ticking once the pipeline halts or fails.
type Core struct {
	*sim.TickingComponent

	engine    sim.Engine
	pipeline  *pipeline.Pipeline
	maxCycles uint64
	err       error
}

// Pipeline returns the pipeline driven by the core.
func (c *Core) Pipeline() *pipeline.Pipeline {
	return c.pipeline
}

// Machine returns the architectural state of the core.
func (c *Core) Machine() *emu.Machine {
	return c.pipeline.Machine()
}

// SetPC sets the entry point of the program.
func (c *Core) SetPC(pc uint64) {
	c.pipeline.SetPC(pc)
}

// Tick advances the pipeline by one cycle.
func (c *Core) Tick() bool {
	if c.err != nil || c.pipeline.Halted() {
		return false
	}

	if c.maxCycles > 0 && c.pipeline.Stats().Cycles >= c.maxCycles {
		c.err = fmt.Errorf("%s after %d cycles: %w",
			c.Name(), c.maxCycles, pipeline.ErrCycleLimit)
		return false
	}

	if err := c.pipeline.Tick(); err != nil {
		c.err = fmt.Errorf("%s: %w", c.Name(), err)
		return false
	}

	if c.pipeline.Halted() {
		slog.Debug("core halted", "core", c.Name(),
			"cycles", c.pipeline.Stats().Cycles,
			"time", c.engine.CurrentTime())
		return false
	}

	return true
}

// Run schedules the first tick and runs the engine until no component has
// more work.
func (c *Core) Run() error {
	c.TickNow()

	if err := c.engine.Run(); err != nil {
		return err
	}

	return c.err
}

// Halted returns true if the pipeline has halted.
func (c *Core) Halted() bool {
	return c.pipeline.Halted()
}

// Err returns the error that stopped the core, if any.
func (c *Core) Err() error {
	return c.err
}

// Stats returns the pipeline statistics.
func (c *Core) Stats() pipeline.Statistics {
	return c.pipeline.Stats()
}

// Reset restores the pipeline and the machine registers to their initial
// state.
func (c *Core) Reset() {
	c.pipeline.Reset()
	c.err = nil
}
