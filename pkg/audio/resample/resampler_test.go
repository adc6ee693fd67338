package resample

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResampleSameRate(t *testing.T) {
	r := New(44100, 44100, 2)
	in := []int16{1, 2, 3, 4, 5}
	out := r.Resample(in)
	assert.Equal(t, []int16{1, 2, 3, 4}, out, "partial frame dropped")

	out[0] = 100
	assert.Equal(t, int16(1), in[0], "output must not alias input")
}

func TestResampleUpsample(t *testing.T) {
	r := New(1000, 2000, 1)
	out := r.Resample([]int16{0, 100, 200})
	assert.Equal(t, []int16{0, 50, 100, 150, 200, 200}, out)
}

func TestResampleDownsample(t *testing.T) {
	r := New(2000, 1000, 2)
	in := []int16{
		0, -10,
		5, -15,
		10, -20,
		15, -25,
	}
	assert.Equal(t, []int16{0, -10, 10, -20}, r.Resample(in))
}

func TestOutputFrames(t *testing.T) {
	tests := []struct {
		in, out, frames, want int
	}{
		{22050, 44100, 100, 200},
		{48000, 44100, 480, 441},
		{44100, 8000, 1, 1},
		{44100, 8000, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, New(tt.in, tt.out, 1).OutputFrames(tt.frames))
	}
}

func TestResampleEmpty(t *testing.T) {
	assert.Nil(t, New(8000, 16000, 2).Resample([]int16{7}))
}
