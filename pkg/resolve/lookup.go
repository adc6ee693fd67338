package resolve

import (
	"fmt"

	"github.com/hxtool/hxplay/pkg/hx"
)

// Events returns the Event entries of a store in load order
func Events(store hx.Store) []*hx.Entry {
	var out []*hx.Entry
	for _, e := range hx.Entries(store) {
		if e.Class == hx.ClassEvent {
			out = append(out, e)
		}
	}
	return out
}

// Find looks an entry up by event name first, then by hex content address
func Find(store hx.Store, ref string) (*hx.Entry, error) {
	for _, e := range Events(store) {
		if ev, _ := e.Event(); ev.Name == ref {
			return e, nil
		}
	}
	id, err := hx.ParseID(ref)
	if err != nil {
		return nil, fmt.Errorf("entry %q: %w", ref, hx.ErrNotFound)
	}
	e, ok := store.Entry(id)
	if !ok {
		return nil, fmt.Errorf("entry %s: %w", id, hx.ErrNotFound)
	}
	return e, nil
}
