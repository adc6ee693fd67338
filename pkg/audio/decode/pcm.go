// ABOUTME: PCM audio decoder
// ABOUTME: Decodes 8, 16 and 24-bit PCM of either endianness to int16 samples
package decode

import (
	"encoding/binary"
	"fmt"

	"github.com/hxtool/hxplay/pkg/audio"
	"github.com/hxtool/hxplay/pkg/hx"
)

// PCMDecoder decodes PCM audio
type PCMDecoder struct {
	format audio.Format
	order  binary.ByteOrder
}

// NewPCM creates a new PCM decoder
func NewPCM(format audio.Format) (Decoder, error) {
	if format.Codec != audio.CodecPCM {
		return nil, fmt.Errorf("invalid codec for PCM decoder: %s", format.Codec)
	}

	switch format.BitDepth {
	case 8, 16, 24:
	default:
		return nil, &hx.UnsupportedCodecError{Codec: fmt.Sprintf("PCM %d-bit", format.BitDepth)}
	}

	var order binary.ByteOrder = binary.LittleEndian
	if format.Endian == audio.BigEndian {
		order = binary.BigEndian
	}
	return &PCMDecoder{format: format, order: order}, nil
}

// Decode converts PCM bytes to int16 samples. Trailing bytes that do not
// form a whole sample are dropped.
func (d *PCMDecoder) Decode(data []byte) ([]int16, audio.Format, error) {
	out := audio.Canonical(d.format.SampleRate, d.format.Channels)

	switch d.format.BitDepth {
	case 8:
		// 8-bit PCM is unsigned
		samples := make([]int16, len(data))
		for i, b := range data {
			samples[i] = int16(int(b)-128) << 8
		}
		return samples, out, nil

	case 24:
		// 24-bit PCM: keep the top 16 bits
		numSamples := len(data) / 3
		samples := make([]int16, numSamples)
		for i := 0; i < numSamples; i++ {
			b := data[i*3 : i*3+3]
			if d.format.Endian == audio.BigEndian {
				samples[i] = int16(uint16(b[0])<<8 | uint16(b[1]))
			} else {
				samples[i] = int16(uint16(b[2])<<8 | uint16(b[1]))
			}
		}
		return samples, out, nil

	default:
		numSamples := len(data) / 2
		samples := make([]int16, numSamples)
		for i := 0; i < numSamples; i++ {
			samples[i] = int16(d.order.Uint16(data[i*2:]))
		}
		return samples, out, nil
	}
}

// Close releases resources
func (d *PCMDecoder) Close() error {
	return nil
}
