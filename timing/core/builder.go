package core

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/armpipe/emu"
	"github.com/sarchlab/armpipe/timing/pipeline"
)

// Builder can create new cores.
type Builder struct {
	engine    sim.Engine
	freq      sim.Freq
	maxCycles uint64
	options   []pipeline.PipelineOption
}

// MakeBuilder creates a builder with a 1 GHz clock.
func MakeBuilder() Builder {
	return Builder{
		freq: 1 * sim.GHz,
	}
}

// WithEngine sets the engine.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the core.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithMaxCycles bounds the number of cycles the core ticks. Zero means
// unbounded.
func (b Builder) WithMaxCycles(n uint64) Builder {
	b.maxCycles = n
	return b
}

// WithPipelineOptions adds options passed to the pipeline.
func (b Builder) WithPipelineOptions(opts ...pipeline.PipelineOption) Builder {
	b.options = append(append([]pipeline.PipelineOption(nil), b.options...), opts...)
	return b
}

// Build creates a core operating on machine.
func (b Builder) Build(name string, machine *emu.Machine) *Core {
	if b.engine == nil {
		panic("core: engine is not set")
	}

	c := &Core{
		engine:    b.engine,
		pipeline:  pipeline.NewPipeline(machine, b.options...),
		maxCycles: b.maxCycles,
	}
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	return c
}
