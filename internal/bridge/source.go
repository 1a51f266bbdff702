package bridge

import "replica/hal"

// Source is an external machine that produces a framebuffer.
type Source interface {
	Surface() hal.Framebuffer
	Run()
	Pause()
	Reset()
	Running() bool
}

// Capabilities a Source may also implement. Each feeds one telemetry panel;
// a Source without one shows placeholders there.
type (
	RegisterReader interface {
		Registers() [16]uint32
	}
	FlagReader interface {
		Flags() CPUFlags
	}
	InterruptReader interface {
		Interrupts() Interrupts
	}
	ChannelReader interface {
		DMA() [4]DMAChannel
		Timers() [4]TimerChannel
	}
	MemoryReader interface {
		// ReadMemory calls fn with the live bytes of a region, or nil for
		// an unknown one. fn must not retain mem.
		ReadMemory(r Region, fn func(mem []byte))
		ROMSize() int
	}
	StatusReader interface {
		Status() MachineStatus
	}
	DisplayReader interface {
		Display() Display
	}
	PaletteReader interface {
		// Palette returns the background palette as BGR555 words.
		Palette() [PaletteSize]uint16
	}
	OAMReader interface {
		Objects() [ObjectCount]Object
	}
)

// Palette and object table sizes.
const (
	PaletteSize = 256
	ObjectCount = 128
)

// Background is one background layer of the display controller.
type Background struct {
	Enabled    bool
	Priority   uint8
	CharBase   uint32
	ScreenBase uint32
	HOfs, VOfs uint16
}

// Display is the display controller state.
type Display struct {
	Mode   uint8
	BG     [4]Background
	OBJ    bool
	Window bool
	VCount uint16
	HBlank bool
}

// Object is one sprite attribute entry. W and H are in pixels.
type Object struct {
	Enabled bool
	X, Y    int
	W, H    int
}

// CPUFlags is the processor status word.
type CPUFlags struct {
	N, Z, C, V bool
	I, F       bool
	Thumb      bool
	Mode       uint8
}

// Interrupts is the interrupt controller state. IE and IF are bit masks
// indexed like IRQNames.
type Interrupts struct {
	IE, IF uint16
	IME    bool
}

// DMAChannel is one DMA unit. Next counts down from Count while active.
type DMAChannel struct {
	Enabled bool
	Count   int
	Next    int
}

// TimerChannel is one hardware timer.
type TimerChannel struct {
	Enabled  bool
	Cascade  bool
	Prescale uint8
	Value    uint16
}

// MachineStatus is the frame-level progress of a Source.
type MachineStatus struct {
	Frame  uint64
	Cycles uint32
	VBlank bool
}

// Region names a sampled memory area.
type Region uint8

const (
	RegionEWRAM Region = iota
	RegionIWRAM
	RegionVRAM
)

// Region sizes used when sampling.
const (
	EWRAMSize = 256 << 10
	IWRAMSize = 32 << 10
	VRAMSize  = 96 << 10
	ROMMax    = 32 << 20
)

// surfaceSource adapts a Framebuffer to render.TextureSource.
type surfaceSource struct{ fb hal.Framebuffer }

func (s surfaceSource) Size() (w, h int)           { return s.fb.Width(), s.fb.Height() }
func (s surfaceSource) Snapshot(dst []byte) []byte { return s.fb.Snapshot(dst) }
