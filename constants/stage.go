package constants

// Stage names the resolver state that produced a result.
type Stage string

// Stable values, surfaced in API payloads and metric labels.
const (
	StageOracle        Stage = "ORACLE"
	StageHeuristic     Stage = "HEURISTIC"
	StageRegexFallback Stage = "REGEX_FALLBACK"
	StageNone          Stage = "NONE"
)

// Stages lists every stage in resolution order.
var Stages = []Stage{StageOracle, StageHeuristic, StageRegexFallback, StageNone}

// Grounded reports whether results from this stage always come from the catalog.
func (s Stage) Grounded() bool {
	return s == StageOracle || s == StageHeuristic
}
