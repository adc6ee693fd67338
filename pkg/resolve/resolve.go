// ABOUTME: Link resolver for the resource graph
// ABOUTME: Walks from an Event entry to the ordered list of playable wave file objects
package resolve

import (
	"context"
	"fmt"

	"github.com/hxtool/hxplay/pkg/eventlog"
	"github.com/hxtool/hxplay/pkg/hx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/text/language"
)

// DefaultMaxDepth bounds link indirection
const DefaultMaxDepth = 8

var tracer = otel.Tracer("github.com/hxtool/hxplay/pkg/resolve")

// Options tune how wave resources pick their targets
type Options struct {
	MaxDepth int
	// Language selects a matching localized variant over the default link
	Language language.Tag
	// IncludeVariants queues the default link followed by every variant
	IncludeVariants bool
}

// Resolver turns trigger entries into playable wave file objects
type Resolver struct {
	store hx.Store
	opts  Options
	log   eventlog.Logger
}

// New creates a resolver over store
func New(store hx.Store, opts Options, logger eventlog.Logger) *Resolver {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if logger == nil {
		logger = eventlog.Discard
	}
	return &Resolver{store: store, opts: opts, log: logger}
}

// Resolve returns the wave file objects reachable from the Event id, in
// stored link order. Missing links are skipped with a warning; a target
// that is neither a wave resource nor a program yields an empty result.
func (r *Resolver) Resolve(ctx context.Context, id hx.ID) ([]*hx.Entry, error) {
	_, span := tracer.Start(ctx, "resolve")
	defer span.End()
	span.SetAttributes(attribute.String("entry.id", id.String()))

	e, ok := r.store.Entry(id)
	if !ok {
		err := fmt.Errorf("entry %s: %w", id, hx.ErrNotFound)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	ev, ok := e.Event()
	if !ok {
		err := fmt.Errorf("entry %s is %s: %w", id, e.TypeName(), hx.ErrInvalidClass)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var out []*hx.Entry
	if err := r.target(e, ev.Link, 1, &out); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("streams", len(out)))
	return out, nil
}

func (r *Resolver) target(from *hx.Entry, link hx.ID, depth int, out *[]*hx.Entry) error {
	if depth > r.opts.MaxDepth {
		return fmt.Errorf("%s -> %s at depth %d: %w", from.ID, link, depth, hx.ErrGraphDepthExceeded)
	}
	t, ok := r.store.Entry(link)
	if !ok {
		r.log.Logf(eventlog.Warning, "%s: link %s not found", from.Name(), link)
		return nil
	}

	switch t.Class {
	case hx.ClassWaveResource:
		wr, _ := t.WaveResource()
		return r.wave(t, wr, depth+1, out)

	case hx.ClassProgram:
		p, _ := t.Program()
		before := len(*out)
		for _, l := range p.Links {
			if err := r.programLink(t, l, depth+1, out); err != nil {
				return err
			}
		}
		if len(*out) == before {
			r.log.Logf(eventlog.Warning, "Program %s has no playable links", t.ID)
		}
		return nil

	default:
		// Not playable
		return nil
	}
}

func (r *Resolver) programLink(program *hx.Entry, link hx.ID, depth int, out *[]*hx.Entry) error {
	if depth > r.opts.MaxDepth {
		return fmt.Errorf("%s -> %s at depth %d: %w", program.ID, link, depth, hx.ErrGraphDepthExceeded)
	}
	t, ok := r.store.Entry(link)
	if !ok {
		r.log.Logf(eventlog.Warning, "Program %s: link %s not found", program.ID, link)
		return nil
	}
	switch t.Class {
	case hx.ClassWaveResource:
		wr, _ := t.WaveResource()
		return r.wave(t, wr, depth+1, out)
	case hx.ClassProgram:
		return r.target(program, link, depth, out)
	default:
		r.log.Logf(eventlog.Warning, "Program %s: link %s is %s, skipped", program.ID, link, t.TypeName())
		return nil
	}
}

func (r *Resolver) wave(w *hx.Entry, wr *hx.WaveResourceData, depth int, out *[]*hx.Entry) error {
	if depth > r.opts.MaxDepth {
		return fmt.Errorf("%s at depth %d: %w", w.ID, depth, hx.ErrGraphDepthExceeded)
	}
	for _, id := range r.waveTargets(wr) {
		f, ok := r.store.Entry(id)
		if !ok {
			r.log.Logf(eventlog.Warning, "WaveResource %s: link %s not found", w.ID, id)
			continue
		}
		if f.Class != hx.ClassWaveFileObject {
			r.log.Logf(eventlog.Warning, "WaveResource %s: link %s is %s, skipped", w.ID, id, f.TypeName())
			continue
		}
		*out = append(*out, f)
	}
	return nil
}

// waveTargets picks the links a wave resource contributes. Duplicates
// between the default and a variant are kept.
func (r *Resolver) waveTargets(wr *hx.WaveResourceData) []hx.ID {
	if r.opts.IncludeVariants {
		ids := make([]hx.ID, 0, 1+len(wr.Links))
		ids = append(ids, wr.Default)
		for _, l := range wr.Links {
			ids = append(ids, l.ID)
		}
		return ids
	}
	if r.opts.Language != language.Und {
		for _, l := range wr.Links {
			if hx.SameLanguage(l.Language, r.opts.Language) {
				return []hx.ID{l.ID}
			}
		}
	}
	return []hx.ID{wr.Default}
}
