// Package dedupe collapses incident candidates to one row per
// (mmsi, spill_id) pair.
package dedupe

import "github.com/okian/slicktrace/internal/domain/model"

// Deduper records seen incident keys.
type Deduper interface {
	// SeenAndRecord reports whether key was seen and records it if not.
	SeenAndRecord(key model.IncidentKey) bool

	Size() int
}

type setDeduper struct {
	seen     map[model.IncidentKey]struct{}
	capacity int
}

// New creates an empty Deduper.
func New(opts ...Option) Deduper {
	d := &setDeduper{}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[model.IncidentKey]struct{}, d.capacity)
	return d
}

func (d *setDeduper) SeenAndRecord(key model.IncidentKey) bool {
	if _, ok := d.seen[key]; ok {
		return true
	}
	d.seen[key] = struct{}{}
	return false
}

func (d *setDeduper) Size() int { return len(d.seen) }

// Keyed is anything carrying an incident key.
type Keyed interface {
	Key() model.IncidentKey
}

// Keep returns the first item for each key, in input order. The input is
// not modified and Keep(Keep(x)) equals Keep(x).
func Keep[T Keyed](items []T) []T {
	d := New(WithCapacity(len(items)))
	out := make([]T, 0, len(items))
	for _, it := range items {
		if d.SeenAndRecord(it.Key()) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// Unique deduplicates candidates on (mmsi, spill_id), keeping the first.
func Unique(candidates []model.IncidentCandidate) []model.UniqueIncident {
	kept := Keep(candidates)
	out := make([]model.UniqueIncident, len(kept))
	for i, c := range kept {
		out[i] = model.UniqueIncident{IncidentCandidate: c}
	}
	return out
}
