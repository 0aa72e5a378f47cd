package velocity

// sampleRing is a fixed-capacity ring buffer of samples. Once full, each push
// overwrites the oldest sample.
type sampleRing struct {
	data []Sample
	pos  int
	full bool
}

func newSampleRing(capacity int) *sampleRing {
	if capacity < 1 {
		capacity = 1
	}
	return &sampleRing{data: make([]Sample, capacity)}
}

// Push adds a sample to the ring.
func (r *sampleRing) Push(s Sample) {
	r.data[r.pos] = s
	r.pos++
	if r.pos >= len(r.data) {
		r.pos = 0
		r.full = true
	}
}

// Len returns the number of samples held.
func (r *sampleRing) Len() int {
	if r.full {
		return len(r.data)
	}
	return r.pos
}

// At returns the i-th sample in insertion order; 0 is the oldest.
func (r *sampleRing) At(i int) Sample {
	if r.full {
		return r.data[(r.pos+i)%len(r.data)]
	}
	return r.data[i]
}

// Clear drops all samples without releasing the backing array.
func (r *sampleRing) Clear() {
	r.pos = 0
	r.full = false
}
