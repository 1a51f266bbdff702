package hal

// WindowConfig controls the desktop window host.
type WindowConfig struct {
	Title  string
	Width  int
	Height int
	TPS    int
}

func (c WindowConfig) withDefaults() WindowConfig {
	if c.Title == "" {
		c.Title = "Replica"
	}
	if c.Width <= 0 {
		c.Width = 1280
	}
	if c.Height <= 0 {
		c.Height = 800
	}
	if c.TPS <= 0 {
		c.TPS = 60
	}
	return c
}

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Hz    int
	Ticks uint64

	// Width and Height are the virtual viewport size.
	Width  int
	Height int

	// Snapshot, if set, is a PNG path written with the last frame on exit.
	Snapshot string
}

func (c HeadlessConfig) withDefaults() HeadlessConfig {
	if c.Hz <= 0 {
		c.Hz = 60
	}
	if c.Width <= 0 {
		c.Width = 1280
	}
	if c.Height <= 0 {
		c.Height = 800
	}
	return c
}
