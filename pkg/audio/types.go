// ABOUTME: Audio type definitions
// ABOUTME: Defines codecs, stream formats and the runtime audio stream
package audio

import (
	"fmt"
	"strings"
	"time"
)

const (
	// 16-bit audio range constants
	Max16Bit = 32767
	Min16Bit = -32768
)

// Codec identifies the sample encoding of a wave file object
type Codec int

const (
	CodecPCM Codec = iota
	CodecUBI
	CodecPSX
	CodecDSP
	CodecIMA
	CodecMP3
)

var codecNames = map[Codec]string{
	CodecPCM: "PCM",
	CodecUBI: "UBI",
	CodecPSX: "PSX",
	CodecDSP: "DSP",
	CodecIMA: "IMA",
	CodecMP3: "MP3",
}

func (c Codec) String() string {
	if name, ok := codecNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", int(c))
}

// ParseCodec parses a codec name (case-insensitive)
func ParseCodec(s string) (Codec, error) {
	for c, name := range codecNames {
		if strings.EqualFold(name, s) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown codec: %s", s)
}

// Endianness of multi-byte samples
type Endianness int

const (
	LittleEndian Endianness = iota
	BigEndian
)

func (e Endianness) String() string {
	if e == BigEndian {
		return "big"
	}
	return "little"
}

// ParseEndianness parses "little"/"le" or "big"/"be"; empty means little
func ParseEndianness(s string) (Endianness, error) {
	switch strings.ToLower(s) {
	case "", "little", "le":
		return LittleEndian, nil
	case "big", "be":
		return BigEndian, nil
	default:
		return 0, fmt.Errorf("unknown endianness: %s", s)
	}
}

// Format describes audio stream format
type Format struct {
	Codec      Codec
	SampleRate int
	Channels   int
	BitDepth   int
	Endian     Endianness
}

// Canonical returns the runtime mixing format: 16-bit signed little-endian PCM
func Canonical(sampleRate, channels int) Format {
	return Format{
		Codec:      CodecPCM,
		SampleRate: sampleRate,
		Channels:   channels,
		BitDepth:   16,
		Endian:     LittleEndian,
	}
}

// IsCanonical reports whether samples can be mixed without conversion
func (f Format) IsCanonical() bool {
	return f.Codec == CodecPCM && f.BitDepth == 16 && f.Endian == LittleEndian
}

// BytesPerFrame returns the size of one interleaved frame
func (f Format) BytesPerFrame() int {
	return f.Channels * f.BitDepth / 8
}

// BytesPerSecond returns the byte rate of the format
func (f Format) BytesPerSecond() int {
	return f.SampleRate * f.BytesPerFrame()
}

func (f Format) String() string {
	endian := "LE"
	if f.Endian == BigEndian {
		endian = "BE"
	}
	return fmt.Sprintf("%s %dHz %dch %d-bit %s", f.Codec, f.SampleRate, f.Channels, f.BitDepth, endian)
}

// Stream is a runtime audio unit: an owned sample buffer plus its format
type Stream struct {
	Source uint64 // content address of the wave file object
	Format Format
	Data   []byte
}

// Size returns the buffer size in bytes
func (s *Stream) Size() int {
	if s == nil {
		return 0
	}
	return len(s.Data)
}

// Clone returns a deep copy of the stream
func (s *Stream) Clone() *Stream {
	data := make([]byte, len(s.Data))
	copy(data, s.Data)
	return &Stream{
		Source: s.Source,
		Format: s.Format,
		Data:   data,
	}
}

// Duration returns the playback length of a canonical stream
func (s *Stream) Duration() time.Duration {
	bps := s.Format.BytesPerSecond()
	if bps <= 0 {
		return 0
	}
	return time.Duration(float64(len(s.Data)) / float64(bps) * float64(time.Second))
}

// ClampInt16 saturates a widened sample to the 16-bit range
func ClampInt16(v int32) int16 {
	if v > Max16Bit {
		return Max16Bit
	}
	if v < Min16Bit {
		return Min16Bit
	}
	return int16(v)
}

// Int16LE reads a little-endian 16-bit sample
func Int16LE(b []byte) int16 {
	return int16(uint16(b[0]) | uint16(b[1])<<8)
}

// PutInt16LE writes a little-endian 16-bit sample
func PutInt16LE(b []byte, v int16) {
	b[0] = byte(v)
	b[1] = byte(uint16(v) >> 8)
}
