package hx

import "errors"

var (
	ErrNotFound           = errors.New("entry not found")
	ErrInvalidClass       = errors.New("invalid entry class")
	ErrGraphDepthExceeded = errors.New("graph depth exceeded")
	ErrUnsupportedCodec   = errors.New("unsupported codec")
	ErrLoad               = errors.New("failed to load audio stream")
	ErrDevice             = errors.New("audio device error")
)

// UnsupportedCodecError names the codec a conversion could not handle
type UnsupportedCodecError struct {
	Codec string
}

func (e *UnsupportedCodecError) Error() string {
	return "unsupported codec " + e.Codec
}

// Is makes errors.Is(err, ErrUnsupportedCodec) hold
func (e *UnsupportedCodecError) Is(target error) bool {
	return target == ErrUnsupportedCodec
}
