package resolver

import (
	"time"

	"github.com/joseph-ayodele/label-matcher/constants"
	"github.com/joseph-ayodele/label-matcher/internal/llm"
)

// Result is the caller-facing outcome of one resolution.
type Result struct {
	Success      bool            `json:"success"`
	Variety      string          `json:"variedad"`
	Crop         string          `json:"cultivo"`
	Client       string          `json:"cliente"`
	Flight       string          `json:"vuelo"`
	DetectedCrop string          `json:"cultivo_detectado"`
	Confidence   *float64        `json:"conf"`
	Evidence     string          `json:"evidencia"`
	Stage        constants.Stage `json:"stage"`
	EntryID      string          `json:"entry_id,omitempty"`
	Trace        Trace           `json:"-"`
}

// Trace records how a result was reached, for logs and metrics.
type Trace struct {
	ShortlistSize int
	OracleOutcome string // skipped, valid or the Invalid reason
	OracleElapsed time.Duration
}

func (r *Result) accept(variety string, conf *float64, evidence string, stage constants.Stage) {
	r.Variety = variety
	r.Confidence = conf
	r.Evidence = llm.Truncate(evidence, constants.EvidenceMaxLen)
	r.Stage = stage
	r.Success = r.Variety != ""
}

func ptr(f float64) *float64 { return &f }
