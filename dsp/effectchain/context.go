package effectchain

// Context carries the host settings a processor is prepared for.
type Context struct {
	SampleRate float64
	BlockSize  int
	Channels   int
}

func (c Context) valid() bool {
	return c.SampleRate > 0 && c.BlockSize > 0 && c.Channels > 0
}
