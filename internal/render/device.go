package render

// BufferKind identifies what a device buffer holds.
type BufferKind uint8

const (
	BufferVertex BufferKind = iota + 1
	BufferIndex
	BufferLine
	BufferTexture
)

func (k BufferKind) String() string {
	switch k {
	case BufferVertex:
		return "vertex"
	case BufferIndex:
		return "index"
	case BufferLine:
		return "line"
	case BufferTexture:
		return "texture"
	default:
		return "unknown"
	}
}

// BufferID is a device buffer handle. Zero is never a valid handle.
type BufferID uint32

// DeviceEventKind is the kind of a buffer lifecycle event.
type DeviceEventKind uint8

const (
	EventAlloc DeviceEventKind = iota + 1
	EventFree
)

// DeviceEvent records one buffer allocation or release.
type DeviceEvent struct {
	Seq    uint64
	Kind   DeviceEventKind
	Buffer BufferID
	Buf    BufferKind
	Bytes  int
}

// DeviceStats summarizes live device memory.
type DeviceStats struct {
	Live      int
	LiveBytes int64
	Allocs    uint64
	Frees     uint64
}

type bufferInfo struct {
	kind  BufferKind
	bytes int
}

// Device stands in for the GPU: it hands out buffer handles when geometry or
// textures are first drawn and takes them back on dispose.
//
// A Device is owned by the frame loop and is not safe for concurrent use.
type Device struct {
	// OnEvent, if set, observes every allocation and release in order.
	OnEvent func(DeviceEvent)

	next  BufferID
	seq   uint64
	live  map[BufferID]bufferInfo
	stats DeviceStats
}

func NewDevice() *Device {
	return &Device{live: make(map[BufferID]bufferInfo)}
}

// Alloc reserves a buffer of the given size.
func (d *Device) Alloc(kind BufferKind, bytes int) BufferID {
	if d.live == nil {
		d.live = make(map[BufferID]bufferInfo)
	}
	d.next++
	id := d.next
	d.live[id] = bufferInfo{kind: kind, bytes: bytes}
	d.stats.Allocs++
	d.stats.Live++
	d.stats.LiveBytes += int64(bytes)
	d.emit(EventAlloc, id, kind, bytes)
	return id
}

// Free releases a buffer. Unknown or zero handles are ignored.
func (d *Device) Free(id BufferID) {
	if d == nil || id == 0 {
		return
	}
	info, ok := d.live[id]
	if !ok {
		return
	}
	delete(d.live, id)
	d.stats.Frees++
	d.stats.Live--
	d.stats.LiveBytes -= int64(info.bytes)
	d.emit(EventFree, id, info.kind, info.bytes)
}

// IsLive reports whether id is currently allocated.
func (d *Device) IsLive(id BufferID) bool {
	if d == nil {
		return false
	}
	_, ok := d.live[id]
	return ok
}

func (d *Device) Stats() DeviceStats { return d.stats }

func (d *Device) emit(kind DeviceEventKind, id BufferID, buf BufferKind, bytes int) {
	d.seq++
	if d.OnEvent != nil {
		d.OnEvent(DeviceEvent{Seq: d.seq, Kind: kind, Buffer: id, Buf: buf, Bytes: bytes})
	}
}
