package resolver

import (
	"github.com/joseph-ayodele/label-matcher/internal/core/catalog"
	"github.com/joseph-ayodele/label-matcher/internal/core/normalize"
	"github.com/joseph-ayodele/label-matcher/internal/llm"
)

// Answer is an oracle outcome after validation: either Valid or Invalid.
type Answer interface {
	isAnswer()
}

// Valid is an oracle pick that is grounded in the shortlist.
type Valid struct {
	Entry      catalog.Record
	Crop       string
	Client     string
	Confidence *float64
	Evidence   string
}

// Invalid collapses every way the oracle can fail to produce a usable pick.
type Invalid struct {
	Reason string
	Err    error
}

func (Valid) isAnswer()   {}
func (Invalid) isAnswer() {}

// Validate checks reply against the shortlist. With an id the candidate must
// carry it; without one the normalized name must equal a candidate's.
func Validate(reply llm.Reply, shortlist []catalog.Record) Answer {
	name := normalize.Normalize(reply.Variety)
	if name == "" {
		return Invalid{Reason: "empty"}
	}
	var hit *catalog.Record
	for i := range shortlist {
		c := &shortlist[i]
		if reply.ID != "" {
			if c.ID == reply.ID {
				hit = c
				break
			}
			continue
		}
		if c.NormVariety == name {
			hit = c
			break
		}
	}
	if hit == nil {
		if reply.ID != "" {
			return Invalid{Reason: "unknown_id"}
		}
		return Invalid{Reason: "outside_shortlist"}
	}

	v := Valid{
		Entry:    *hit,
		Crop:     reply.Crop,
		Client:   reply.Client,
		Evidence: reply.Evidence,
	}
	if reply.Confidence != nil {
		v.Confidence = ptr(llm.ClampConfidence(*reply.Confidence))
	}
	if v.Crop == "" {
		v.Crop = hit.Crop
	}
	if v.Client == "" {
		v.Client = hit.Client
	}
	return v
}
