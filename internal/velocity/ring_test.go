package velocity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSampleRing(t *testing.T) {
	t.Parallel()

	base := time.Unix(0, 0)
	sample := func(i int) Sample {
		return Sample{X: float64(i), Time: base.Add(time.Duration(i) * time.Millisecond)}
	}

	t.Run("keeps insertion order before wrap", func(t *testing.T) {
		t.Parallel()
		r := newSampleRing(4)
		for i := 0; i < 3; i++ {
			r.Push(sample(i))
		}
		assert.Equal(t, 3, r.Len())
		for i := 0; i < 3; i++ {
			assert.Equal(t, float64(i), r.At(i).X)
		}
	})

	t.Run("overwrites oldest after wrap", func(t *testing.T) {
		t.Parallel()
		r := newSampleRing(3)
		for i := 0; i < 5; i++ {
			r.Push(sample(i))
		}
		assert.Equal(t, 3, r.Len())
		assert.Equal(t, 2.0, r.At(0).X)
		assert.Equal(t, 3.0, r.At(1).X)
		assert.Equal(t, 4.0, r.At(2).X)
	})

	t.Run("clear empties the ring", func(t *testing.T) {
		t.Parallel()
		r := newSampleRing(2)
		r.Push(sample(1))
		r.Push(sample(2))
		r.Push(sample(3))
		r.Clear()
		assert.Equal(t, 0, r.Len())
		r.Push(sample(9))
		assert.Equal(t, 1, r.Len())
		assert.Equal(t, 9.0, r.At(0).X)
	})

	t.Run("non-positive capacity is clamped", func(t *testing.T) {
		t.Parallel()
		r := newSampleRing(0)
		r.Push(sample(1))
		r.Push(sample(2))
		assert.Equal(t, 1, r.Len())
		assert.Equal(t, 2.0, r.At(0).X)
	})
}
