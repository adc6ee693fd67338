// ABOUTME: Stream format converter
// ABOUTME: Normalizes decoded streams to the session's canonical format
package decode

import (
	"fmt"

	"github.com/hxtool/hxplay/pkg/audio"
	"github.com/hxtool/hxplay/pkg/audio/resample"
	"github.com/hxtool/hxplay/pkg/eventlog"
	"github.com/hxtool/hxplay/pkg/hx"
)

// Converter turns streams into canonical 16-bit little-endian PCM
type Converter struct {
	log eventlog.Logger
}

// NewConverter creates a converter logging to logger
func NewConverter(logger eventlog.Logger) *Converter {
	if logger == nil {
		logger = eventlog.Discard
	}
	return &Converter{log: logger}
}

// Convert returns s in the target format. A zero sample rate or channel
// count in target keeps the source value. When s is already in the target
// format the result is a byte-identical copy.
func (c *Converter) Convert(s *audio.Stream, target audio.Format) (*audio.Stream, error) {
	if s.Size() == 0 {
		return nil, fmt.Errorf("convert: empty stream: %w", hx.ErrLoad)
	}
	if target.SampleRate == 0 {
		target.SampleRate = s.Format.SampleRate
	}
	if target.Channels == 0 {
		target.Channels = s.Format.Channels
	}
	if s.Format == target {
		return s.Clone(), nil
	}

	if !target.IsCanonical() {
		err := &hx.UnsupportedCodecError{Codec: target.String()}
		c.log.Logf(eventlog.Error, "Failed to convert %016X: %v", s.Source, err)
		return nil, err
	}

	c.log.Logf(eventlog.Info, "Converting %016X (%s -> %s)", s.Source, s.Format, target)
	out, err := c.convert(s, target)
	if err != nil {
		c.log.Logf(eventlog.Error, "Failed to convert %016X: %v", s.Source, err)
		return nil, err
	}
	return out, nil
}

func (c *Converter) convert(s *audio.Stream, target audio.Format) (*audio.Stream, error) {
	dec, err := New(s.Format)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	samples, src, err := dec.Decode(s.Data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %v: %w", s.Format.Codec, err, hx.ErrLoad)
	}
	if src.Channels < 1 || src.SampleRate < 1 {
		return nil, fmt.Errorf("invalid source layout %s: %w", src, hx.ErrLoad)
	}

	samples = MapChannels(samples, src.Channels, target.Channels)
	if src.SampleRate != target.SampleRate {
		samples = resample.New(src.SampleRate, target.SampleRate, target.Channels).Resample(samples)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("conversion produced no samples: %w", hx.ErrLoad)
	}

	data := make([]byte, len(samples)*2)
	for i, v := range samples {
		audio.PutInt16LE(data[i*2:], v)
	}
	return &audio.Stream{Source: s.Source, Format: target, Data: data}, nil
}

// ConvertAll converts every stream, dropping (and logging) the ones that fail
func (c *Converter) ConvertAll(streams []*audio.Stream, target audio.Format) []*audio.Stream {
	out := make([]*audio.Stream, 0, len(streams))
	for _, s := range streams {
		conv, err := c.Convert(s, target)
		if err != nil {
			continue
		}
		out = append(out, conv)
	}
	return out
}

// MapChannels converts interleaved frames between channel counts.
// Downmixing to mono averages; other layouts copy or repeat channels.
func MapChannels(samples []int16, from, to int) []int16 {
	if from == to {
		return samples
	}
	frames := len(samples) / from
	out := make([]int16, frames*to)

	for f := 0; f < frames; f++ {
		in := samples[f*from : f*from+from]
		dst := out[f*to : f*to+to]
		if to == 1 {
			var sum int32
			for _, v := range in {
				sum += int32(v)
			}
			dst[0] = int16(sum / int32(from))
			continue
		}
		for ch := range dst {
			dst[ch] = in[ch%from]
		}
	}
	return out
}
