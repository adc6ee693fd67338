package hx

import (
	"fmt"

	"github.com/hxtool/hxplay/pkg/audio"
)

// LoadStream materializes the samples of a wave file object into an owned
// stream. External data is read through bank, which may be nil when the
// store has no external references.
func LoadStream(e *Entry, bank *Bank) (*audio.Stream, error) {
	wf, ok := e.WaveFile()
	if !ok {
		return nil, fmt.Errorf("entry %s is %s: %w", e.ID, e.TypeName(), ErrInvalidClass)
	}

	var data []byte
	switch {
	case len(wf.Data) > 0:
		data = make([]byte, len(wf.Data))
		copy(data, wf.Data)
	case wf.IsExternal():
		if bank == nil {
			return nil, fmt.Errorf("entry %s: no bank for external data: %w", e.ID, ErrLoad)
		}
		var err error
		if data, err = bank.Read(*wf.External); err != nil {
			return nil, err
		}
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("entry %s: no sample data: %w", e.ID, ErrLoad)
	}
	return &audio.Stream{Source: uint64(e.ID), Format: wf.Format, Data: data}, nil
}
