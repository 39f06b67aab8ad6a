package catalog

import (
	"strconv"

	"github.com/joseph-ayodele/label-matcher/internal/core/normalize"
)

// Index is a read-only view over one catalog snapshot. Build a new one on
// every reload; never mutate an Index that has been published.
type Index struct {
	records      []Record
	byFlight     map[string][]int
	flightKeys   []string
	byCrop       map[string][]int
	byFirstToken map[string][]int
	crops        []string
}

// BuildIndex normalizes every entry and files it under its flight, crop and
// first-token keys. Entries without a variety name are skipped; entries
// without an ID get their 1-based catalog position.
func BuildIndex(entries []Entry) *Index {
	ix := &Index{
		records:      make([]Record, 0, len(entries)),
		byFlight:     map[string][]int{},
		byCrop:       map[string][]int{},
		byFirstToken: map[string][]int{},
	}
	for pos, e := range entries {
		nv := normalize.Normalize(e.Variety)
		if nv == "" {
			continue
		}
		if e.ID == "" {
			e.ID = strconv.Itoa(pos + 1)
		}
		r := Record{
			Entry:       e,
			Ordinal:     len(ix.records),
			NormVariety: nv,
			NormCrop:    normalize.Normalize(e.Crop),
			FlightKey:   FlightKey(e.Flight),
			FirstToken:  FirstToken(nv),
		}
		ix.records = append(ix.records, r)

		if r.FlightKey != "" {
			if _, seen := ix.byFlight[r.FlightKey]; !seen {
				ix.flightKeys = append(ix.flightKeys, r.FlightKey)
			}
			ix.byFlight[r.FlightKey] = append(ix.byFlight[r.FlightKey], r.Ordinal)
		}
		if r.NormCrop != "" {
			if _, seen := ix.byCrop[r.NormCrop]; !seen {
				ix.crops = append(ix.crops, r.NormCrop)
			}
			ix.byCrop[r.NormCrop] = append(ix.byCrop[r.NormCrop], r.Ordinal)
		}
		if r.FirstToken != "" {
			ix.byFirstToken[r.FirstToken] = append(ix.byFirstToken[r.FirstToken], r.Ordinal)
		}
	}
	return ix
}

// Len returns the number of indexed entries.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.records)
}

// Records returns every indexed entry in catalog order.
func (ix *Index) Records() []Record {
	if ix == nil {
		return nil
	}
	out := make([]Record, len(ix.records))
	copy(out, ix.records)
	return out
}

// Head returns the first n entries in catalog order.
func (ix *Index) Head(n int) []Record {
	if n > ix.Len() {
		n = ix.Len()
	}
	if n <= 0 {
		return nil
	}
	out := make([]Record, n)
	copy(out, ix.records[:n])
	return out
}

// ByFlight returns the entries whose flight key equals key.
func (ix *Index) ByFlight(key string) []Record {
	return ix.collect(ix.byFlight[key])
}

// FlightKeys lists distinct flight keys in first-seen order.
func (ix *Index) FlightKeys() []string {
	return append([]string(nil), ix.flightKeys...)
}

// ByCrop returns the entries filed under a normalized crop.
func (ix *Index) ByCrop(crop string) []Record {
	return ix.collect(ix.byCrop[crop])
}

// ByFirstToken returns the family of entries whose name starts with tok.
func (ix *Index) ByFirstToken(tok string) []Record {
	return ix.collect(ix.byFirstToken[tok])
}

// Crops lists distinct normalized crops in first-seen order.
func (ix *Index) Crops() []string {
	if ix == nil {
		return nil
	}
	return append([]string(nil), ix.crops...)
}

func (ix *Index) collect(ords []int) []Record {
	if len(ords) == 0 {
		return nil
	}
	out := make([]Record, 0, len(ords))
	for _, i := range ords {
		out = append(out, ix.records[i])
	}
	return out
}
