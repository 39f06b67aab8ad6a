// Package shortlist narrows the catalog to the few candidates worth showing
// the oracle or scoring heuristically.
package shortlist

import (
	"sort"
	"strings"

	"github.com/joseph-ayodele/label-matcher/constants"
	"github.com/joseph-ayodele/label-matcher/internal/core/catalog"
	"github.com/joseph-ayodele/label-matcher/internal/core/signals"
)

// Options bounds the shortlist.
type Options struct {
	MaxTotal           int
	MaxPerFamily       int
	MinBeforeExpansion int
}

// DefaultOptions returns the standard limits (20 total, 6 per family, expand below 5).
func DefaultOptions() Options {
	return Options{
		MaxTotal:           constants.MaxShortlist,
		MaxPerFamily:       constants.MaxPerFamily,
		MinBeforeExpansion: constants.MinBeforeExpansion,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxTotal <= 0 {
		o.MaxTotal = d.MaxTotal
	}
	if o.MaxPerFamily <= 0 {
		o.MaxPerFamily = d.MaxPerFamily
	}
	if o.MinBeforeExpansion <= 0 {
		o.MinBeforeExpansion = d.MinBeforeExpansion
	}
	return o
}

// Build runs the cascade flight -> crop -> token families -> catalog head.
// The result is never empty for a non-empty index and never longer than
// opts.MaxTotal.
func Build(sig signals.Signals, ix *catalog.Index, opts Options) []catalog.Record {
	if ix.Len() == 0 {
		return nil
	}
	opts = opts.withDefaults()

	pool, flightMatched := matchFlight(sig.Flight, ix)
	if !flightMatched {
		pool = ix.Records()
	}
	if sig.Crop != "" {
		var narrowed []catalog.Record
		if flightMatched {
			narrowed = filterCrop(pool, sig.Crop)
		} else {
			narrowed = cropFamilies(sig.Crop, ix)
		}
		if len(narrowed) > 0 {
			pool = narrowed
		}
	}

	var out []catalog.Record
	if flightMatched {
		out = pool
		if len(out) > opts.MaxTotal {
			out = out[:opts.MaxTotal]
		}
	}
	if len(out) < opts.MinBeforeExpansion {
		out = expand(out, pool, sig, ix, opts)
	}
	if len(out) == 0 {
		out = ix.Head(opts.MaxTotal)
	}
	return out
}

// matchFlight collects entries with the same flight key, or, failing that,
// entries whose key contains the extracted one.
func matchFlight(flight string, ix *catalog.Index) ([]catalog.Record, bool) {
	if flight == "" {
		return nil, false
	}
	key := catalog.FlightKey(flight)
	if key == "" {
		return nil, false
	}
	if exact := ix.ByFlight(key); len(exact) > 0 {
		return exact, true
	}
	var partial []catalog.Record
	for _, k := range ix.FlightKeys() {
		if strings.Contains(k, key) {
			partial = append(partial, ix.ByFlight(k)...)
		}
	}
	if len(partial) == 0 {
		return nil, false
	}
	sort.SliceStable(partial, func(i, j int) bool { return partial[i].Ordinal < partial[j].Ordinal })
	return partial, true
}

func filterCrop(pool []catalog.Record, crop string) []catalog.Record {
	var out []catalog.Record
	for _, r := range pool {
		if r.NormCrop != "" && strings.Contains(r.NormCrop, crop) {
			out = append(out, r)
		}
	}
	return out
}

// cropFamilies reads the crop index for every catalog crop containing crop,
// in catalog order.
func cropFamilies(crop string, ix *catalog.Index) []catalog.Record {
	var out []catalog.Record
	for _, k := range ix.Crops() {
		if strings.Contains(k, crop) {
			out = append(out, ix.ByCrop(k)...)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Ordinal < out[j].Ordinal })
	return out
}

// expand appends token families (restricted to pool) until the global cap.
func expand(out, pool []catalog.Record, sig signals.Signals, ix *catalog.Index, opts Options) []catalog.Record {
	inPool := make(map[int]struct{}, len(pool))
	for _, r := range pool {
		inPool[r.Ordinal] = struct{}{}
	}
	seen := make(map[int]struct{}, opts.MaxTotal)
	for _, r := range out {
		seen[r.Ordinal] = struct{}{}
	}

	for _, tok := range sig.StrongTokens {
		if len(out) >= opts.MaxTotal {
			break
		}
		var preferred, other []catalog.Record
		for _, r := range ix.ByFirstToken(tok) {
			if _, ok := inPool[r.Ordinal]; !ok {
				continue
			}
			if signals.ContainsAny(r.NormVariety, sig.Patterns) {
				preferred = append(preferred, r)
			} else {
				other = append(other, r)
			}
		}
		added := 0
		for _, r := range append(preferred, other...) {
			if added >= opts.MaxPerFamily || len(out) >= opts.MaxTotal {
				break
			}
			if _, dup := seen[r.Ordinal]; dup {
				continue
			}
			seen[r.Ordinal] = struct{}{}
			out = append(out, r)
			added++
		}
	}
	return out
}
