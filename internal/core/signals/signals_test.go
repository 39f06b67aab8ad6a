package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/label-matcher/internal/core/normalize"
)

func TestFlight(t *testing.T) {
	cases := map[string]string{
		"AWB:123-4567 8901 ROSA":    "123-4567 8901",
		"MAWB 123-45678901":         "123-45678901",
		"GUIA 729 1234 5678 CLAVEL": "729 1234 5678",
		"PHOENIX 60-4":              "",
		"123-4567":                  "",
		"":                          "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Flight(in), "input %q", in)
	}
}

func TestFlightPrefersColonForm(t *testing.T) {
	assert.Equal(t, "555-1111 2222", Flight("REF 111-2222 3333 AWB:555-1111 2222"))
}

func TestDetectCrop(t *testing.T) {
	crops := []string{"ROSA", "MINI ROSA", "CLAVEL", "ROS"}
	assert.Equal(t, "MINI ROSA", DetectCrop("BOX MINI ROSA EXPLORER", crops))
	assert.Equal(t, "ROSA", DetectCrop("ROSA FREEDOM", crops))
	assert.Equal(t, "", DetectCrop("GYPSOPHILA", crops))
	assert.Equal(t, "AAA", DetectCrop("AAA BBB", []string{"AAA", "BBB"}))
}

func TestPatterns(t *testing.T) {
	s := normalize.Normalize("Phoenix 60 - 4 x 500 FREEDOM 60-4 x500 50-10 1234-5")
	assert.Equal(t, []string{"60-4", "50-10", "X500"}, Patterns(s))
	assert.Empty(t, Patterns("NOTHING HERE 5-4"))
	assert.Equal(t, []string{"X500"}, Patterns(normalize.Normalize("FANCY ROJOx500")), "code glued to a word")
	assert.Empty(t, Patterns("BOX12345"))
}

func TestStrongTokens(t *testing.T) {
	s := normalize.Normalize("AWB 123 Explorer explorer STEMS 25 cm PHOENIX 60-4 VAR: ab")
	assert.Equal(t, []string{"EXPLORER", "PHOENIX", "60-4"}, StrongTokens(s))
}

func TestExtract(t *testing.T) {
	s := normalize.Normalize("AWB:123-4567 8901\nRosa Freedom 50-4")
	sig := Extract(s, []string{"CLAVEL", "ROSA"})

	assert.Equal(t, "123-4567 8901", sig.Flight)
	assert.Equal(t, "ROSA", sig.Crop)
	assert.Equal(t, []string{"50-4"}, sig.Patterns)
	assert.Equal(t, []string{"AWB:123-4567", "ROSA", "FREEDOM", "50-4"}, sig.StrongTokens)
}

func TestContainsAny(t *testing.T) {
	assert.True(t, ContainsAny("PHOENIX 60-4", []string{"X500", "60-4"}))
	assert.False(t, ContainsAny("PHOENIX", []string{"60-4"}))
	assert.False(t, ContainsAny("PHOENIX", nil))
}
