package core

// Zero sets all values in buf to 0.
func Zero[T Float](buf []T) {
	for i := range buf {
		buf[i] = 0
	}
}

// ZeroChannels clears every channel of a multichannel buffer.
func ZeroChannels(buf [][]float32) {
	for _, ch := range buf {
		Zero(ch)
	}
}

// NewChannels allocates channels x frames of zeroed float32 storage.
func NewChannels(channels, frames int) [][]float32 {
	if channels <= 0 {
		return nil
	}

	backing := make([]float32, channels*max(frames, 0))
	out := make([][]float32, channels)

	for ch := range out {
		out[ch] = backing[ch*frames : (ch+1)*frames : (ch+1)*frames]
	}

	return out
}

// Frames returns the number of frames every channel of buf can serve: the
// shortest channel length, or 0 when buf is empty.
func Frames(buf [][]float32) int {
	if len(buf) == 0 {
		return 0
	}

	n := len(buf[0])
	for _, ch := range buf[1:] {
		n = min(n, len(ch))
	}

	return n
}

// MixDown writes the average of all channels into dst. dst must be at least
// Frames(buf) long.
func MixDown(dst []float32, buf [][]float32) {
	n := Frames(buf)
	if n == 0 {
		return
	}

	if len(buf) == 1 {
		copy(dst[:n], buf[0])
		return
	}

	scale := 1 / float32(len(buf))
	for i := range n {
		var sum float32
		for _, ch := range buf {
			sum += ch[i]
		}

		dst[i] = sum * scale
	}
}
