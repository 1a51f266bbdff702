package bridge

import (
	"fmt"
	"image/color"
	"math"
	"strings"
)

// RegisterNames labels the sixteen general purpose registers.
var RegisterNames = [16]string{
	"R0", "R1", "R2", "R3", "R4", "R5", "R6", "R7",
	"R8", "R9", "R10", "R11", "R12", "SP", "LR", "PC",
}

// IRQNames labels the interrupt bits, lowest first.
var IRQNames = [...]string{
	"VBLANK", "HBLANK", "VCOUNT", "TM0", "TM1", "TM2", "TM3",
	"SIO", "DMA0", "DMA1", "DMA2", "DMA3", "KEY", "GPAK",
}

// MemoryNames labels the memory bars in display order.
var MemoryNames = [6]string{"BIOS", "EWRAM", "IWRAM", "I/O", "VRAM", "ROM"}

var modeNames = map[uint8]string{
	16: "USR", 17: "FIQ", 18: "IRQ", 19: "SVC",
	23: "ABT", 27: "UND", 31: "SYS",
}

var prescaleNames = map[uint8]string{0: "16MHz", 6: "262kHz", 8: "65kHz", 10: "16kHz"}

// ioLoad is shown for the I/O region, which has no backing store to sample.
const ioLoad = 0.3

// Panel sizes.
const (
	PaletteSwatches = 30
	OAMListed       = 6
	TileSlots       = 2048
)

// VRAM layout used by VRAMSplit: background data below vramOBJ, object
// tiles from vramOBJ to vramEnd.
const (
	vramOBJ    = 0x10000
	vramEnd    = 0x18000
	vramStride = 64
)

// VRAMUsage is the sampled share of the background and object areas.
type VRAMUsage struct {
	BG, OBJ float32
}

// Snapshot is one telemetry read. Nil fields were unavailable.
type Snapshot struct {
	Running bool
	Status  *MachineStatus
	Regs    *[16]uint32
	Changed [16]bool
	Flags   *CPUFlags
	IRQ     *Interrupts
	DMA     *[4]DMAChannel
	Timers  *[4]TimerChannel
	Memory  *[6]float32
	Display *Display
	Palette *[PaletteSize]uint16
	Objects *[ObjectCount]Object
	VRAM    *VRAMUsage
}

// Sampler reads Snapshots and remembers registers between reads to mark
// the ones that changed.
type Sampler struct {
	prev [16]uint32
}

// Sample reads every capability src offers. A nil or stopped source yields
// an empty Snapshot.
func (s *Sampler) Sample(src Source) Snapshot {
	var snap Snapshot
	if src == nil || !src.Running() {
		return snap
	}
	snap.Running = true
	snap.Status = readStatus(src)
	if r, ok := src.(RegisterReader); ok {
		regs := r.Registers()
		for i, v := range regs {
			snap.Changed[i] = v != s.prev[i]
		}
		s.prev = regs
		snap.Regs = &regs
	}
	if r, ok := src.(FlagReader); ok {
		f := r.Flags()
		snap.Flags = &f
	}
	if r, ok := src.(InterruptReader); ok {
		irq := r.Interrupts()
		snap.IRQ = &irq
	}
	if r, ok := src.(ChannelReader); ok {
		dma, tm := r.DMA(), r.Timers()
		snap.DMA, snap.Timers = &dma, &tm
	}
	if r, ok := src.(MemoryReader); ok {
		mem := [6]float32{1, 0, 0, ioLoad, 0, float32(min(float64(r.ROMSize())/ROMMax, 1))}
		r.ReadMemory(RegionEWRAM, func(b []byte) { mem[1] = Utilization(b, EWRAMSize) })
		r.ReadMemory(RegionIWRAM, func(b []byte) { mem[2] = Utilization(b, IWRAMSize) })
		var vram VRAMUsage
		r.ReadMemory(RegionVRAM, func(b []byte) {
			mem[4] = Utilization(b, VRAMSize)
			vram = VRAMSplit(b)
		})
		snap.Memory, snap.VRAM = &mem, &vram
	}
	if r, ok := src.(DisplayReader); ok {
		d := r.Display()
		snap.Display = &d
	}
	if r, ok := src.(PaletteReader); ok {
		pal := r.Palette()
		snap.Palette = &pal
	}
	if r, ok := src.(OAMReader); ok {
		objs := r.Objects()
		snap.Objects = &objs
	}
	return snap
}

func readStatus(src Source) *MachineStatus {
	if r, ok := src.(StatusReader); ok {
		st := r.Status()
		return &st
	}
	return nil
}

// Utilization estimates the non-zero share of mem[:limit] from about 256
// evenly spaced samples.
func Utilization(mem []byte, limit int) float32 {
	n := min(len(mem), limit)
	if n <= 0 {
		return 0
	}
	step := max(1, n>>8)
	used := 0
	for i := 0; i < n; i += step {
		if mem[i] != 0 {
			used++
		}
	}
	return float32(float64(used) / (float64(n) / float64(step)))
}

// VRAMSplit samples one halfword every 64 bytes and returns the non-zero
// share of the background and object areas of mem.
func VRAMSplit(mem []byte) VRAMUsage {
	share := func(lo, hi int) float32 {
		hi = min(hi, len(mem)&^1)
		if hi <= lo {
			return 0
		}
		used, n := 0, 0
		for i := lo; i < hi; i += vramStride {
			if mem[i]|mem[i+1] != 0 {
				used++
			}
			n++
		}
		return float32(used) / float32(n)
	}
	return VRAMUsage{BG: share(0, vramOBJ), OBJ: share(vramOBJ, vramEnd)}
}

// Panel is a titled block of telemetry text. Swatches, when set, are drawn
// as colour cells below the lines.
type Panel struct {
	Title    string
	Lines    []string
	Swatches []color.RGBA
}

// BGR555 expands a 15-bit palette word to an opaque colour.
func BGR555(c uint16) color.RGBA {
	return color.RGBA{
		R: uint8(c&0x1F) << 3,
		G: uint8(c>>5&0x1F) << 3,
		B: uint8(c>>10&0x1F) << 3,
		A: 0xFF,
	}
}

// BarWidth is the number of cells in a text bar.
const BarWidth = 10

// Bar renders p in [0,1] as a fixed-width text bar.
func Bar(p float32, width int) string {
	n := int(math.Round(float64(p) * float64(width)))
	n = max(0, min(n, width))
	return "[" + strings.Repeat("#", n) + strings.Repeat(".", width-n) + "]"
}

func h32(v uint32) string { return fmt.Sprintf("0x%08X", v) }
func h16(v uint16) string { return fmt.Sprintf("0x%04X", v) }

func bit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// StatusLine formats the one-line machine status.
func StatusLine(s Snapshot) string {
	if !s.Running {
		return "> WAITING FOR SOURCE"
	}
	if s.Status == nil {
		return "> FRAME: - | CYCLE: ---------- | VBLANK -"
	}
	dot := "o"
	if s.Status.VBlank {
		dot = "*"
	}
	return fmt.Sprintf("> FRAME: %d | CYCLE: %s | VBLANK %s", s.Status.Frame, h32(s.Status.Cycles), dot)
}

// Format renders s as the telemetry panels.
func Format(s Snapshot) []Panel {
	return []Panel{
		{Title: "CPU", Lines: formatRegs(s)},
		{Title: "FLAGS", Lines: formatFlags(s.Flags)},
		{Title: "DISPLAY", Lines: formatDisplay(s.Display)},
		{Title: "BG", Lines: formatBG(s.Display)},
		{Title: "PALETTE", Swatches: swatches(s.Palette)},
		{Title: "OAM", Lines: formatOAM(s.Objects)},
		{Title: "MEMORY", Lines: formatMemory(s.Memory)},
		{Title: "VRAM", Lines: formatVRAM(s.VRAM, s.Display)},
		{Title: "DMA", Lines: formatDMA(s.DMA)},
		{Title: "TIMERS", Lines: formatTimers(s.Timers)},
		{Title: "IRQ", Lines: formatIRQ(s.IRQ)},
	}
}

func formatRegs(s Snapshot) []string {
	lines := make([]string, 0, 8)
	cell := func(i int) string {
		if s.Regs == nil {
			return fmt.Sprintf("%-3s ---------- ", RegisterNames[i])
		}
		mark := " "
		if s.Changed[i] {
			mark = "*"
		}
		return fmt.Sprintf("%-3s %s%s", RegisterNames[i], h32(s.Regs[i]), mark)
	}
	for i := 0; i < 16; i += 2 {
		lines = append(lines, cell(i)+" "+cell(i+1))
	}
	return lines
}

func formatFlags(f *CPUFlags) []string {
	if f == nil {
		return []string{"N:- Z:- C:- V:-", "I:- F:- T:-", "MODE: ---"}
	}
	mode, ok := modeNames[f.Mode]
	if !ok {
		mode = fmt.Sprintf("0x%02X", f.Mode)
	}
	return []string{
		"N:" + bit(f.N) + " Z:" + bit(f.Z) + " C:" + bit(f.C) + " V:" + bit(f.V),
		"I:" + bit(f.I) + " F:" + bit(f.F) + " T:" + bit(f.Thumb),
		"MODE: " + mode,
	}
}

func irqList(mask uint16, limit int) []string {
	var out []string
	for i, name := range IRQNames {
		if mask&(1<<i) != 0 {
			out = append(out, name)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

func formatIRQ(irq *Interrupts) []string {
	if irq == nil {
		return []string{"IE:  ----", "IF:  ----", "IME: ----", "HALT: ----"}
	}
	ie := strings.Join(irqList(irq.IE, 4), " ")
	if ie == "" {
		ie = "NONE"
	}
	ifl := strings.Join(irqList(irq.IF, 3), " ")
	if ifl == "" {
		ifl = "-"
	}
	ime, halt := "DISABLED", "YES"
	if irq.IME {
		ime, halt = "ENABLED", "NO"
	}
	return []string{"IE:  " + ie, "IF:  " + ifl, "IME: " + ime, "HALT: " + halt}
}

// DMAFill returns the bar level of a channel: the remaining share of the
// transfer, at least 0.1 while enabled.
func DMAFill(c DMAChannel) float32 {
	if !c.Enabled {
		return 0
	}
	var p float32
	if c.Count > 0 {
		p = min(1, float32(c.Next)/float32(max(1, c.Count)))
	}
	return max(0.1, 1-p)
}

func formatDMA(dma *[4]DMAChannel) []string {
	lines := make([]string, 4)
	for i := range lines {
		if dma == nil {
			lines[i] = fmt.Sprintf("CH%d %s ----", i, Bar(0, BarWidth))
			continue
		}
		c := dma[i]
		state := "IDLE"
		if c.Enabled {
			state = "ACTIVE"
		}
		lines[i] = fmt.Sprintf("CH%d %s %s", i, Bar(DMAFill(c), BarWidth), state)
	}
	return lines
}

// TimerMode names the clock source of a timer.
func TimerMode(t TimerChannel) string {
	switch {
	case !t.Enabled:
		return "STOPPED"
	case t.Cascade:
		return "CASCADE"
	}
	if s, ok := prescaleNames[t.Prescale]; ok {
		return s
	}
	return "16MHz"
}

func formatTimers(tm *[4]TimerChannel) []string {
	lines := make([]string, 4)
	for i := range lines {
		if tm == nil {
			lines[i] = fmt.Sprintf("TM%d ------ %s ----", i, Bar(0, BarWidth))
			continue
		}
		t := tm[i]
		var v uint16
		if t.Enabled {
			v = t.Value
		}
		lines[i] = fmt.Sprintf("TM%d %s %s %s", i, h16(v), Bar(float32(v)/0xFFFF, BarWidth), TimerMode(t))
	}
	return lines
}

func formatMemory(mem *[6]float32) []string {
	lines := make([]string, len(MemoryNames))
	for i, name := range MemoryNames {
		if mem == nil {
			lines[i] = fmt.Sprintf("%-5s %s  --%%", name, Bar(0, BarWidth))
			continue
		}
		lines[i] = fmt.Sprintf("%-5s %s %3d%%", name, Bar(mem[i], BarWidth), int(math.Round(float64(mem[i])*100)))
	}
	return lines
}

func onOff(b bool) string {
	if b {
		return "ON "
	}
	return "OFF"
}

func formatDisplay(d *Display) []string {
	if d == nil {
		return []string{
			"MODE:   -",
			"BG0: --- BG1: ---",
			"BG2: --- BG3: ---",
			"OBJ: --- WIN: ---",
			"HBLANK: " + Bar(0, 8),
			"VCOUNT: ----",
		}
	}
	hb := float32(d.VCount%4) * 2
	if d.HBlank {
		hb = 8
	}
	return []string{
		fmt.Sprintf("MODE:   %d", d.Mode),
		"BG0: " + onOff(d.BG[0].Enabled) + " BG1: " + onOff(d.BG[1].Enabled),
		"BG2: " + onOff(d.BG[2].Enabled) + " BG3: " + onOff(d.BG[3].Enabled),
		"OBJ: " + onOff(d.OBJ) + " WIN: " + onOff(d.Window),
		"HBLANK: " + Bar(hb/8, 8),
		fmt.Sprintf("VCOUNT: 0x%02X", d.VCount),
	}
}

func formatBG(d *Display) []string {
	lines := make([]string, 0, 6)
	for i := 0; i < 4; i++ {
		if d == nil {
			lines = append(lines, fmt.Sprintf("BG%d PRI=- CBB=- SBB=-", i))
			continue
		}
		bg := d.BG[i]
		lines = append(lines, fmt.Sprintf("BG%d PRI=%d CBB=%d SBB=%d", i, bg.Priority, bg.CharBase>>14, bg.ScreenBase>>11))
	}
	if d == nil {
		return append(lines, "HOFS: ------", "VOFS: ------")
	}
	return append(lines, "HOFS: "+h16(d.BG[0].HOfs&0x1FF), "VOFS: "+h16(d.BG[0].VOfs&0x1FF))
}

// swatches returns the first PaletteSwatches colours, black when pal is nil.
func swatches(pal *[PaletteSize]uint16) []color.RGBA {
	out := make([]color.RGBA, PaletteSwatches)
	for i := range out {
		var c uint16
		if pal != nil {
			c = pal[i]
		}
		out[i] = BGR555(c)
	}
	return out
}

func formatOAM(objs *[ObjectCount]Object) []string {
	var lines []string
	if objs != nil {
		for i, o := range objs {
			if !o.Enabled {
				continue
			}
			w, h := o.W, o.H
			if w == 0 {
				w = 8
			}
			if h == 0 {
				h = 8
			}
			lines = append(lines, fmt.Sprintf("OBJ%d (%3d,%3d) %dx%d", i, o.X, o.Y, w, h))
			if len(lines) == OAMListed {
				break
			}
		}
	}
	if len(lines) == 0 {
		for i := 0; i < OAMListed; i++ {
			lines = append(lines, fmt.Sprintf("OBJ%d (  0,  0) ---", i))
		}
	}
	return lines
}

func formatVRAM(v *VRAMUsage, d *Display) []string {
	if v == nil {
		return []string{
			"BG  " + Bar(0, BarWidth) + "  --%",
			"OBJ " + Bar(0, BarWidth) + "  --%",
			fmt.Sprintf("TILES: ----/%d", TileSlots),
			"MAPS:  -/4",
		}
	}
	pct := func(p float32) int { return int(math.Round(float64(p) * 100)) }
	maps := "-"
	if d != nil {
		n := 0
		for _, bg := range d.BG {
			if bg.Enabled {
				n++
			}
		}
		maps = fmt.Sprint(n)
	}
	return []string{
		fmt.Sprintf("BG  %s %3d%%", Bar(v.BG, BarWidth), pct(v.BG)),
		fmt.Sprintf("OBJ %s %3d%%", Bar(v.OBJ, BarWidth), pct(v.OBJ)),
		fmt.Sprintf("TILES: %d/%d", int(math.Round(float64(v.BG)*TileSlots)), TileSlots),
		"MAPS:  " + maps + "/4",
	}
}
