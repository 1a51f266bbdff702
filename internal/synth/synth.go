// Package synth is a self-contained demo machine. It animates a small
// RGB565 screen and exposes register, interrupt, channel, display and
// memory state so the bridge has something to show without an emulator.
package synth

import (
	"image/color"
	"math"
	"sync"
	"time"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"

	"replica/hal"
	"replica/internal/bridge"
)

const (
	Width     = 240
	Height    = 160
	DefaultHz = 60

	// cyclesPerFrame is one 16.78 MHz frame.
	cyclesPerFrame = 280896
	vblankLines    = 68
	totalLines     = 228
)

// Machine is safe for concurrent use: the ticker goroutine steps it while
// the frame loop reads its state.
type Machine struct {
	fb hal.Framebuffer
	hz int

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}

	frame  uint64
	cycles uint64
	vcount int
	regs   [16]uint32
	flags  bridge.CPUFlags
	irq    bridge.Interrupts
	dma    [4]bridge.DMAChannel
	timers [4]bridge.TimerChannel
	ewram  []byte
	iwram  []byte
	vram   []byte
	rom    int
	// top-left corners of the orbiting sprites, set by draw
	sprites [len(palette)][2]int
}

// spriteSize is the edge of the square each orbiting sprite occupies.
const spriteSize = 16

// New returns a paused machine that steps hz times per second when run.
func New(hz int) *Machine {
	if hz <= 0 {
		hz = DefaultHz
	}
	m := &Machine{
		fb:    hal.NewFramebuffer(Width, Height),
		hz:    hz,
		ewram: make([]byte, bridge.EWRAMSize),
		iwram: make([]byte, bridge.IWRAMSize),
		vram:  make([]byte, bridge.VRAMSize),
	}
	m.reset()
	return m
}

var (
	_ bridge.Source          = (*Machine)(nil)
	_ bridge.RegisterReader  = (*Machine)(nil)
	_ bridge.FlagReader      = (*Machine)(nil)
	_ bridge.InterruptReader = (*Machine)(nil)
	_ bridge.ChannelReader   = (*Machine)(nil)
	_ bridge.MemoryReader    = (*Machine)(nil)
	_ bridge.StatusReader    = (*Machine)(nil)
	_ bridge.DisplayReader   = (*Machine)(nil)
	_ bridge.PaletteReader   = (*Machine)(nil)
	_ bridge.OAMReader       = (*Machine)(nil)
)

func (m *Machine) Surface() hal.Framebuffer { return m.fb }

// Run starts the ticker goroutine. It is a no-op while running.
func (m *Machine) Run() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.running = true
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	go m.loop(m.stop, m.done)
}

// Pause stops the ticker and waits for it to exit.
func (m *Machine) Pause() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	stop, done := m.stop, m.done
	m.mu.Unlock()
	close(stop)
	<-done
}

// Reset returns the machine to its power-on state and blanks the screen.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
}

func (m *Machine) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Machine) loop(stop, done chan struct{}) {
	defer close(done)
	t := time.NewTicker(time.Second / time.Duration(m.hz))
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			m.Step()
		}
	}
}

func (m *Machine) reset() {
	m.frame, m.cycles, m.vcount = 0, 0, 0
	m.regs = [16]uint32{}
	m.regs[13] = 0x03007F00
	m.regs[15] = 0x08000000
	m.flags = bridge.CPUFlags{Mode: 31}
	m.irq = bridge.Interrupts{IE: 1<<0 | 1<<3 | 1<<8 | 1<<12, IME: true}
	m.dma = [4]bridge.DMAChannel{}
	m.timers = [4]bridge.TimerChannel{
		{Enabled: true, Prescale: 0},
		{Enabled: true, Cascade: true},
		{Prescale: 8},
		{Enabled: true, Prescale: 10},
	}
	clear(m.ewram)
	clear(m.iwram)
	clear(m.vram)
	m.rom = 4 << 20
	m.sprites = [len(palette)][2]int{}
	m.fb.ClearRGB(0, 0, 0)
}

// Step advances the machine by one frame.
func (m *Machine) Step() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.frame++
	m.cycles += cyclesPerFrame
	f := uint32(m.frame)

	m.vcount = int(m.frame*37) % totalLines
	vblank := m.vcount >= totalLines-vblankLines

	for i := 0; i < 13; i++ {
		if (f+uint32(i))%uint32(i+2) == 0 {
			m.regs[i] = m.regs[i]*1664525 + 1013904223 + uint32(i)
		}
	}
	m.regs[14] = 0x08000000 + (f%64)*4
	m.regs[15] += 2 + (f%3)*2
	if m.regs[15] > 0x08001000 {
		m.regs[15] = 0x08000000
	}

	r0 := m.regs[0]
	m.flags.N = r0&0x80000000 != 0
	m.flags.Z = r0&0xFF == 0
	m.flags.C = r0&1 != 0
	m.flags.V = r0&2 != 0
	m.flags.Thumb = f%120 < 90
	m.flags.I = vblank
	if f%300 < 15 {
		m.flags.Mode = 18
	} else {
		m.flags.Mode = 31
	}

	m.irq.IF = 0
	if vblank {
		m.irq.IF |= 1 << 0
	}
	if f%8 == 0 {
		m.irq.IF |= 1 << 3
	}
	m.irq.IME = f%200 >= 10

	for i := range m.dma {
		d := &m.dma[i]
		if d.Enabled {
			d.Next -= 16 * (i + 1)
			if d.Next <= 0 {
				*d = bridge.DMAChannel{}
			}
			continue
		}
		if (f+uint32(i)*17)%90 == 0 {
			*d = bridge.DMAChannel{Enabled: true, Count: 512 << i, Next: 512 << i}
			m.irq.IF |= 1 << (8 + i)
		}
	}
	for i := range m.timers {
		tm := &m.timers[i]
		if !tm.Enabled {
			continue
		}
		step := uint16(1) << (4 - min(i, 3))
		if tm.Cascade {
			if m.timers[i-1].Value < step {
				tm.Value++
			}
			continue
		}
		tm.Value += step * 97
	}

	fill(m.ewram, m.frame, 311)
	fill(m.iwram, m.frame, 53)

	m.draw(f, vblank)
}

// fill sets a growing, sparse prefix of mem so utilisation climbs over
// time.
func fill(mem []byte, frame uint64, stride int) {
	n := int(frame) * stride
	if n > len(mem) {
		n = len(mem)
	}
	for i := int(frame-1) * stride; i < n; i += 3 {
		if i >= 0 {
			mem[i] = byte(i) | 1
		}
	}
}

var (
	textColor  = color.RGBA{R: 0xF0, G: 0xF0, B: 0xE0, A: 0xFF}
	background = [3]uint8{0x10, 0x14, 0x28}
	palette    = [...][3]uint8{
		{0x20, 0x60, 0xC0}, {0xE0, 0x40, 0x60}, {0x40, 0xC0, 0x80},
		{0xF0, 0xB0, 0x30}, {0x90, 0x60, 0xE0},
	}
)

func (m *Machine) draw(f uint32, vblank bool) {
	m.fb.Update(func(buf []byte) {
		c := &canvas{buf: buf, stride: m.fb.StrideBytes(), w: Width, h: Height}
		c.clear(rgb565From888(background[0], background[1], background[2]))

		// scrolling stripes
		for y := 0; y < Height; y += 8 {
			shade := uint8(0x18 + (uint32(y)+f)%32)
			c.fillRect(0, y, Width, 4, rgb565From888(shade, shade, shade+0x20))
		}

		// sprites orbiting the centre
		t := float64(f) / 60
		for i, p := range palette {
			a := t*(0.8+0.15*float64(i)) + float64(i)*2*math.Pi/float64(len(palette))
			x := Width/2 + int(70*math.Cos(a))
			y := Height/2 + int(45*math.Sin(a))
			m.sprites[i] = [2]int{x - spriteSize/2, y - spriteSize/2}
			c.fillCircle(x, y, 9, rgb565From888(p[0], p[1], p[2]))
			c.circle(x, y, 11, rgb565From888(0xFF, 0xFF, 0xFF))
		}

		// rotating spokes
		for k := 0; k < 6; k++ {
			a := t*1.3 + float64(k)*math.Pi/3
			c.line(Width/2, Height/2, Width/2+int(30*math.Cos(a)), Height/2+int(30*math.Sin(a)), rgb565From888(0xF0, 0xF0, 0x80))
		}

		// status bar
		c.fillRect(0, Height-12, Width, 12, rgb565From888(0, 0, 0))
		if vblank {
			c.fillRect(Width-10, Height-10, 8, 8, rgb565From888(0x40, 0xF0, 0x60))
		}
		tinyfont.WriteLine(c, &proggy.TinySZ8pt7b, 4, Height-3, "REPLICA DEMO", textColor)

		// vram mirrors the screen so its bar tracks activity
		copy(m.vram, buf)
	})
}

func (m *Machine) Registers() [16]uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.regs
}

func (m *Machine) Flags() bridge.CPUFlags {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flags
}

func (m *Machine) Interrupts() bridge.Interrupts {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.irq
}

func (m *Machine) DMA() [4]bridge.DMAChannel {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dma
}

func (m *Machine) Timers() [4]bridge.TimerChannel {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timers
}

// ReadMemory calls fn with a region's bytes while holding the lock, so
// the ticker cannot write them mid-read.
func (m *Machine) ReadMemory(r bridge.Region, fn func(mem []byte)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch r {
	case bridge.RegionEWRAM:
		fn(m.ewram)
	case bridge.RegionIWRAM:
		fn(m.iwram)
	case bridge.RegionVRAM:
		fn(m.vram)
	default:
		fn(nil)
	}
}

func (m *Machine) ROMSize() int { return m.rom }

func (m *Machine) Status() bridge.MachineStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return bridge.MachineStatus{
		Frame:  m.frame,
		Cycles: uint32(m.cycles),
		VBlank: m.vcount >= totalLines-vblankLines,
	}
}

// Display reports mode 1 with the two text layers on and BG0 scrolling
// with the stripes.
func (m *Machine) Display() bridge.Display {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := bridge.Display{
		Mode:   1,
		OBJ:    true,
		VCount: uint16(m.vcount),
		HBlank: m.frame%3 == 0,
	}
	for i := range d.BG {
		d.BG[i] = bridge.Background{
			Enabled:    i < 2,
			Priority:   uint8(i),
			CharBase:   uint32(i) * 0x4000,
			ScreenBase: uint32(28+i) * 0x800,
		}
	}
	d.BG[0].HOfs = uint16(m.frame)
	d.BG[0].VOfs = uint16(m.frame / 2)
	return d
}

// bgr555 packs 8-bit channels into a palette word.
func bgr555(c [3]uint8) uint16 {
	return uint16(c[0]>>3) | uint16(c[1]>>3)<<5 | uint16(c[2]>>3)<<10
}

// Palette holds the screen colours: the backdrop, the sprite colours, then
// a grey ramp.
func (m *Machine) Palette() [bridge.PaletteSize]uint16 {
	var pal [bridge.PaletteSize]uint16
	pal[0] = bgr555(background)
	for i, p := range palette {
		pal[1+i] = bgr555(p)
	}
	for i := 1 + len(palette); i < len(pal); i++ {
		v := uint8(i * 255 / (len(pal) - 1))
		pal[i] = bgr555([3]uint8{v, v, v})
	}
	return pal
}

// Objects lists the orbiting sprites as the first OAM entries.
func (m *Machine) Objects() [bridge.ObjectCount]bridge.Object {
	m.mu.Lock()
	defer m.mu.Unlock()
	var objs [bridge.ObjectCount]bridge.Object
	if m.frame == 0 {
		return objs
	}
	for i, p := range m.sprites {
		objs[i] = bridge.Object{Enabled: true, X: p[0], Y: p[1], W: spriteSize, H: spriteSize}
	}
	return objs
}
