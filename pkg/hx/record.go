// ABOUTME: Serialized entry records shared by the manifest and SQLite stores
// ABOUTME: Converts between on-disk records and typed entries
package hx

import (
	"encoding/base64"
	"fmt"

	"github.com/hxtool/hxplay/pkg/audio"
	"golang.org/x/text/language"
)

type record struct {
	ID       string          `yaml:"id" json:"id"`
	Class    string          `yaml:"class" json:"class"`
	Offset   int64           `yaml:"offset,omitempty" json:"offset,omitempty"`
	Event    *eventRecord    `yaml:"event,omitempty" json:"event,omitempty"`
	Wave     *waveRecord     `yaml:"wave,omitempty" json:"wave,omitempty"`
	Program  *programRecord  `yaml:"program,omitempty" json:"program,omitempty"`
	WaveFile *waveFileRecord `yaml:"wavefile,omitempty" json:"wavefile,omitempty"`
}

type eventRecord struct {
	Name         string     `yaml:"name" json:"name"`
	Coefficients [4]float32 `yaml:"coefficients,flow" json:"coefficients"`
	Link         string     `yaml:"link" json:"link"`
}

type waveLinkRecord struct {
	ID       string `yaml:"id" json:"id"`
	Language string `yaml:"language,omitempty" json:"language,omitempty"`
}

type waveRecord struct {
	Default string           `yaml:"default" json:"default"`
	Links   []waveLinkRecord `yaml:"links,omitempty" json:"links,omitempty"`
}

type programRecord struct {
	Links []string `yaml:"links" json:"links"`
}

type formatRecord struct {
	Codec      string `yaml:"codec" json:"codec"`
	SampleRate int    `yaml:"sample_rate" json:"sample_rate"`
	Channels   int    `yaml:"channels" json:"channels"`
	BitDepth   int    `yaml:"bit_depth" json:"bit_depth"`
	Endian     string `yaml:"endian,omitempty" json:"endian,omitempty"`
}

type externalRecord struct {
	File   string `yaml:"file" json:"file"`
	Offset int64  `yaml:"offset" json:"offset"`
	Size   int64  `yaml:"size" json:"size"`
}

type waveFileRecord struct {
	Format   formatRecord    `yaml:"format" json:"format"`
	Samples  int             `yaml:"samples,omitempty" json:"samples,omitempty"`
	Data     string          `yaml:"data,omitempty" json:"data,omitempty"` // base64
	External *externalRecord `yaml:"external,omitempty" json:"external,omitempty"`
}

func hexID(id ID) string {
	return "0x" + id.String()
}

func (r *record) toEntry() (*Entry, error) {
	id, err := ParseID(r.ID)
	if err != nil {
		return nil, err
	}
	e := &Entry{ID: id, Class: ParseClass(r.Class), ClassName: r.Class, FileOffset: r.Offset}

	switch e.Class {
	case ClassEvent:
		if r.Event == nil {
			return nil, fmt.Errorf("entry %s: missing event payload", id)
		}
		link, err := ParseID(r.Event.Link)
		if err != nil {
			return nil, fmt.Errorf("entry %s: event link: %w", id, err)
		}
		e.Data = &EventResourceData{Name: r.Event.Name, Coefficients: r.Event.Coefficients, Link: link}

	case ClassWaveResource:
		if r.Wave == nil {
			return nil, fmt.Errorf("entry %s: missing wave payload", id)
		}
		def, err := ParseID(r.Wave.Default)
		if err != nil {
			return nil, fmt.Errorf("entry %s: default link: %w", id, err)
		}
		data := &WaveResourceData{Default: def}
		for _, l := range r.Wave.Links {
			lid, err := ParseID(l.ID)
			if err != nil {
				return nil, fmt.Errorf("entry %s: wave link: %w", id, err)
			}
			tag, err := ParseLanguage(l.Language)
			if err != nil {
				return nil, fmt.Errorf("entry %s: language %q: %w", id, l.Language, err)
			}
			data.Links = append(data.Links, WaveLink{ID: lid, Language: tag})
		}
		e.Data = data

	case ClassProgram:
		data := &ProgramResourceData{}
		if r.Program != nil {
			for _, s := range r.Program.Links {
				lid, err := ParseID(s)
				if err != nil {
					return nil, fmt.Errorf("entry %s: program link: %w", id, err)
				}
				data.Links = append(data.Links, lid)
			}
		}
		e.Data = data

	case ClassWaveFileObject:
		if r.WaveFile == nil {
			return nil, fmt.Errorf("entry %s: missing wavefile payload", id)
		}
		wf, err := r.WaveFile.toObject()
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", id, err)
		}
		e.Data = wf
	}
	return e, nil
}

func (w *waveFileRecord) toObject() (*WaveFileObject, error) {
	codec, err := audio.ParseCodec(w.Format.Codec)
	if err != nil {
		return nil, err
	}
	endian, err := audio.ParseEndianness(w.Format.Endian)
	if err != nil {
		return nil, err
	}
	obj := &WaveFileObject{
		Format: audio.Format{
			Codec:      codec,
			SampleRate: w.Format.SampleRate,
			Channels:   w.Format.Channels,
			BitDepth:   w.Format.BitDepth,
			Endian:     endian,
		},
		SampleCount: w.Samples,
	}
	if w.Data != "" {
		obj.Data, err = base64.StdEncoding.DecodeString(w.Data)
		if err != nil {
			return nil, fmt.Errorf("decode sample data: %w", err)
		}
	}
	if w.External != nil {
		obj.External = &ExternalRef{Filename: w.External.File, Offset: w.External.Offset, Size: w.External.Size}
	}
	return obj, nil
}

func fromEntry(e *Entry) *record {
	r := &record{ID: hexID(e.ID), Class: e.TypeName(), Offset: e.FileOffset}
	if ev, ok := e.Event(); ok {
		r.Event = &eventRecord{Name: ev.Name, Coefficients: ev.Coefficients, Link: hexID(ev.Link)}
	}
	if wr, ok := e.WaveResource(); ok {
		r.Wave = &waveRecord{Default: hexID(wr.Default)}
		for _, l := range wr.Links {
			lr := waveLinkRecord{ID: hexID(l.ID)}
			if l.Language != language.Und {
				lr.Language = l.Language.String()
			}
			r.Wave.Links = append(r.Wave.Links, lr)
		}
	}
	if p, ok := e.Program(); ok {
		r.Program = &programRecord{}
		for _, l := range p.Links {
			r.Program.Links = append(r.Program.Links, hexID(l))
		}
	}
	if wf, ok := e.WaveFile(); ok {
		r.WaveFile = &waveFileRecord{
			Format: formatRecord{
				Codec:      wf.Format.Codec.String(),
				SampleRate: wf.Format.SampleRate,
				Channels:   wf.Format.Channels,
				BitDepth:   wf.Format.BitDepth,
				Endian:     wf.Format.Endian.String(),
			},
			Samples: wf.SampleCount,
		}
		if len(wf.Data) > 0 {
			r.WaveFile.Data = base64.StdEncoding.EncodeToString(wf.Data)
		}
		if wf.External != nil {
			r.WaveFile.External = &externalRecord{File: wf.External.Filename, Offset: wf.External.Offset, Size: wf.External.Size}
		}
	}
	return r
}
