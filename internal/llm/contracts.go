package llm

import "context"

// Candidate is one shortlist entry as presented to the oracle.
type Candidate struct {
	ID      string `json:"id"`
	Variety string `json:"variedad"`
	Crop    string `json:"cultivo,omitempty"`
	Client  string `json:"cliente,omitempty"`
	Flight  string `json:"vuelo,omitempty"`
}

// Reply is the normalized shape we accept from the oracle.
type Reply struct {
	ID         string   `json:"id,omitempty"`
	Variety    string   `json:"variedad"`
	Crop       string   `json:"cultivo,omitempty"`
	Client     string   `json:"cliente,omitempty"`
	Confidence *float64 `json:"conf,omitempty"` // informational, 0..1
	Evidence   string   `json:"evidencia,omitempty"`
}

type ChooseRequest struct {
	RawText        string
	NormalizedText string
	Flight         string
	DetectedCrop   string
	Candidates     []Candidate
}

// IDs returns the candidate identifiers in shortlist order.
func (r ChooseRequest) IDs() []string {
	out := make([]string, 0, len(r.Candidates))
	for _, c := range r.Candidates {
		out = append(out, c.ID)
	}
	return out
}

// Chooser asks a language model to pick one shortlist candidate.
type Chooser interface {
	Name() string
	Choose(ctx context.Context, req ChooseRequest) (Reply, []byte /*rawJSON*/, error)
}
