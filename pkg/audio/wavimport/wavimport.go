// ABOUTME: Waveform import for replacing wave file object samples
// ABOUTME: Reads 16-bit WAV and FLAC files into canonical streams and injects them into entries
package wavimport

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hxtool/hxplay/pkg/audio"
	"github.com/hxtool/hxplay/pkg/eventlog"
	"github.com/hxtool/hxplay/pkg/hx"
	"github.com/mewkiz/flac"
)

// ErrBitDepth is returned for sources that are not 16-bit
var ErrBitDepth = errors.New("only 16-bit samples can be imported")

// Load reads a WAV or FLAC file, chosen by extension
func Load(path string) (*audio.Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav", ".wave":
		return DecodeWAV(f)
	case ".flac":
		return DecodeFLAC(f)
	default:
		return nil, fmt.Errorf("unsupported import format %q", ext)
	}
}

// DecodeWAV reads a 16-bit PCM WAV container
func DecodeWAV(r io.ReadSeeker) (*audio.Stream, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("invalid wav file")
	}
	if d.BitDepth != 16 {
		return nil, fmt.Errorf("wav is %d-bit: %w", d.BitDepth, ErrBitDepth)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read wav samples: %w", err)
	}
	return fromInts(buf.Data, int(d.SampleRate), int(d.NumChans))
}

// DecodeFLAC reads a 16-bit FLAC stream
func DecodeFLAC(r io.Reader) (*audio.Stream, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("open flac: %w", err)
	}
	defer stream.Close()

	info := stream.Info
	if info.BitsPerSample != 16 {
		return nil, fmt.Errorf("flac is %d-bit: %w", info.BitsPerSample, ErrBitDepth)
	}

	channels := int(info.NChannels)
	var samples []int
	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode flac frame: %w", err)
		}
		// Interleave subframes
		n := len(frame.Subframes[0].Samples)
		for i := 0; i < n; i++ {
			for ch := 0; ch < channels; ch++ {
				samples = append(samples, int(frame.Subframes[ch].Samples[i]))
			}
		}
	}
	return fromInts(samples, int(info.SampleRate), channels)
}

func fromInts(samples []int, sampleRate, channels int) (*audio.Stream, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("no samples: %w", hx.ErrLoad)
	}
	data := make([]byte, len(samples)*2)
	for i, v := range samples {
		audio.PutInt16LE(data[i*2:], audio.ClampInt16(int32(v)))
	}
	return &audio.Stream{Format: audio.Canonical(sampleRate, channels), Data: data}, nil
}

// Inject returns a copy of the wave file object entry e carrying the samples
// of s, encoded in the entry's byte order. The original entry is untouched.
func Inject(e *hx.Entry, s *audio.Stream, name string, logger eventlog.Logger) (*hx.Entry, error) {
	if logger == nil {
		logger = eventlog.Discard
	}
	wf, ok := e.WaveFile()
	if !ok {
		return nil, fmt.Errorf("entry %s is %s: %w", e.ID, e.TypeName(), hx.ErrInvalidClass)
	}
	if wf.Format.Codec != audio.CodecPCM {
		return nil, &hx.UnsupportedCodecError{Codec: wf.Format.Codec.String()}
	}
	if s.Size() == 0 {
		return nil, fmt.Errorf("import %s: empty stream: %w", name, hx.ErrLoad)
	}

	dst := audio.Format{
		Codec:      audio.CodecPCM,
		SampleRate: s.Format.SampleRate,
		Channels:   s.Format.Channels,
		BitDepth:   16,
		Endian:     wf.Format.Endian,
	}
	logger.Logf(eventlog.Info, "Encoding %s (%s -> %s)", name, s.Format, dst)

	data := make([]byte, len(s.Data)&^1)
	copy(data, s.Data)
	if dst.Endian == audio.BigEndian {
		for i := 0; i+1 < len(data); i += 2 {
			data[i], data[i+1] = data[i+1], data[i]
		}
	}

	return &hx.Entry{
		ID:         e.ID,
		Class:      e.Class,
		ClassName:  e.ClassName,
		FileOffset: e.FileOffset,
		Data: &hx.WaveFileObject{
			Format:      dst,
			SampleCount: len(data) / dst.BytesPerFrame(),
			Data:        data,
		},
	}, nil
}

// IntBuffer exposes a canonical stream as a go-audio buffer for encoding
func IntBuffer(s *audio.Stream) *goaudio.IntBuffer {
	n := len(s.Data) / 2
	data := make([]int, n)
	for i := 0; i < n; i++ {
		data[i] = int(audio.Int16LE(s.Data[i*2:]))
	}
	return &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: s.Format.Channels, SampleRate: s.Format.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
}

// WriteWAV encodes a canonical stream as a 16-bit PCM WAV file
func WriteWAV(w io.WriteSeeker, s *audio.Stream) error {
	enc := wav.NewEncoder(w, s.Format.SampleRate, 16, s.Format.Channels, 1)
	if err := enc.Write(IntBuffer(s)); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	return enc.Close()
}
