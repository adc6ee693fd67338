// ABOUTME: Decoder interface definition
// ABOUTME: Common interface for all audio decoders plus codec dispatch
package decode

import (
	"github.com/hxtool/hxplay/pkg/audio"
	"github.com/hxtool/hxplay/pkg/hx"
)

// Decoder decodes audio in various formats to interleaved int16 samples
type Decoder interface {
	// Decode converts encoded audio data to PCM samples and reports the
	// sample rate and channel count of the result
	Decode(data []byte) ([]int16, audio.Format, error)

	// Close releases decoder resources
	Close() error
}

// New returns the decoder for the format's codec
func New(format audio.Format) (Decoder, error) {
	switch format.Codec {
	case audio.CodecPCM:
		return NewPCM(format)
	case audio.CodecMP3:
		return NewMP3(format)
	default:
		return nil, &hx.UnsupportedCodecError{Codec: format.Codec.String()}
	}
}
