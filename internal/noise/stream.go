package noise

// Stream is a deterministic xorshift random stream keyed by coordinates. A
// stream derived from (seed, cell, pass) consumes independently of every
// other stream, so placement work can be reordered or parallelized without
// changing results.
type Stream struct {
	state uint64
}

// NewStream derives a substream for the given cell coordinates and placement
// pass.
func NewStream(seed int64, cellX, cellY, pass int) *Stream {
	h := Hash3(cellX, cellY, pass, seed)
	state := uint64(h)<<32 | uint64(Hash3(cellY, pass, cellX, seed^0x51ed2701))
	if state == 0 {
		state = 0x9e3779b97f4a7c15
	}
	return &Stream{state: state}
}

// Next returns the next 64-bit value in the stream.
func (s *Stream) Next() uint64 {
	s.state ^= s.state << 7
	s.state ^= s.state >> 9
	s.state ^= s.state << 8
	return s.state
}

// Intn returns a value in [0, n). n <= 0 yields 0.
func (s *Stream) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(s.Next() % uint64(n))
}

// IntRange returns a value in [lo, hi].
func (s *Stream) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.Intn(hi-lo+1)
}

// Float64 returns a value in [0, 1).
func (s *Stream) Float64() float64 {
	return float64(s.Next()>>11) / (1 << 53)
}
