package constants

import "time"

// Shortlist sizing.
const (
	MaxShortlist       = 20
	MaxPerFamily       = 6
	MinBeforeExpansion = 5
)

// Resolver thresholds and confidences.
const (
	HeuristicThreshold = 0.3
	EvidenceMaxLen     = 140

	ConfLabelAndTail  = 0.62
	ConfLabelOnly     = 0.55
	ConfWordsAndTail  = 0.58
	ConfTailOnly      = 0.45
	FallbackLookahead = 4
)

// Oracle transport defaults.
const (
	OracleConnectTimeout = 2 * time.Second
	OracleTimeout        = 5 * time.Second
	DefaultOllamaURL     = "http://localhost:11434"
	DefaultOllamaModel   = "phi3"
)
