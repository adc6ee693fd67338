// ABOUTME: MP3 audio decoder
// ABOUTME: Decodes complete MP3 payloads to int16 samples
package decode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
	"github.com/hxtool/hxplay/pkg/audio"
)

// MP3Decoder decodes MP3 audio
type MP3Decoder struct{}

// NewMP3 creates a new MP3 decoder
func NewMP3(format audio.Format) (Decoder, error) {
	if format.Codec != audio.CodecMP3 {
		return nil, fmt.Errorf("invalid codec for MP3 decoder: %s", format.Codec)
	}
	return &MP3Decoder{}, nil
}

// Decode converts MP3 bytes to int16 samples. go-mp3 always yields
// 16-bit little-endian stereo at the stream's own sample rate.
func (d *MP3Decoder) Decode(data []byte) ([]int16, audio.Format, error) {
	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, audio.Format{}, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	pcm, err := io.ReadAll(decoder)
	if err != nil {
		return nil, audio.Format{}, fmt.Errorf("mp3 decode error: %w", err)
	}

	numSamples := len(pcm) / 2
	samples := make([]int16, numSamples)
	for i := 0; i < numSamples; i++ {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return samples, audio.Canonical(decoder.SampleRate(), 2), nil
}

// Close releases decoder resources
func (d *MP3Decoder) Close() error {
	return nil
}
