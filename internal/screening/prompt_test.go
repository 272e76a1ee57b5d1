package screening

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPromptDeterministic(t *testing.T) {
	record := "age: 61\nhba1c: 8.2"
	criteria := "Inclusion: adults with T2DM.\nExclusion: pregnancy."

	first := BuildPrompt(record, criteria)
	second := BuildPrompt(record, criteria)
	assert.Equal(t, first, second)

	assert.Contains(t, first, criteria)
	assert.Contains(t, first, record)
	assert.Contains(t, first, "step by step")
	assert.Contains(t, first, "Decision: <Eligible|Ineligible|Uncertain>")
}

func TestParseVerdictMarker(t *testing.T) {
	raw := "STEP 1: Age 61 vs required >50: satisfied.\nSTEP 2: HbA1c in range.\nDecision: Eligible"
	decision, ok := ParseVerdict(raw)
	require.True(t, ok)
	assert.Equal(t, Eligible, decision)
}

func TestParseVerdictToleratesCaseAndPunctuation(t *testing.T) {
	cases := map[string]Decision{
		"reasoning...\nDecision: eligible.":     Eligible,
		"reasoning...\ndecision: INELIGIBLE":    Ineligible,
		"reasoning...\nDecision: **Uncertain**": Uncertain,
		"Decision: ELIGIBLE!":                   Eligible,
	}
	for raw, want := range cases {
		decision, ok := ParseVerdict(raw)
		assert.True(t, ok, "raw=%q", raw)
		assert.Equal(t, want, decision, "raw=%q", raw)
	}
}

func TestParseVerdictUsesLastMarker(t *testing.T) {
	raw := "If age matched, Decision: Eligible would follow. But the exclusion applies.\nDecision: Ineligible"
	decision, ok := ParseVerdict(raw)
	require.True(t, ok)
	assert.Equal(t, Ineligible, decision)
}

func TestParseVerdictNonASCIIBeforeMarker(t *testing.T) {
	// ToLower changes byte lengths on these runes; the marker offset must
	// be computed on the reply itself or the decision token gets garbled.
	decision, ok := ParseVerdict("İ patient noted.\nDecision: Eligible")
	require.True(t, ok)
	assert.Equal(t, Eligible, decision)

	decision, ok = ParseVerdict("Ⱥ atypical flag reviewed.\nDecision: Ineligible")
	require.True(t, ok)
	assert.Equal(t, Ineligible, decision)
}

func TestParseVerdictNonASCIIBeforeBareMarker(t *testing.T) {
	// Lowercasing Ⱥ grows the string by a byte per rune; a reply ending at
	// the marker must fall back to Uncertain, not read past the end.
	decision, ok := ParseVerdict("ȺȺ Ⱥ Decision:")
	assert.False(t, ok)
	assert.Equal(t, Uncertain, decision)
}

func TestParseVerdictNoMarker(t *testing.T) {
	decision, ok := ParseVerdict("the patient seems fine to me")
	assert.False(t, ok)
	assert.Equal(t, Uncertain, decision)
}

func TestParseVerdictUnknownLabel(t *testing.T) {
	decision, ok := ParseVerdict("Decision: maybe")
	assert.False(t, ok)
	assert.Equal(t, Uncertain, decision)
}

func TestNewVerdictParseFailureKeepsRawText(t *testing.T) {
	raw := "model rambled without a verdict line"
	verdict, ok := NewVerdict("p1", "trial_a", raw)
	assert.False(t, ok)
	assert.Equal(t, Uncertain, verdict.Decision)
	assert.Equal(t, raw, verdict.RawResponse)
	assert.Contains(t, verdict.Explanation, raw)
	assert.Contains(t, verdict.Explanation, "parse failure")
}

func TestNewVerdictSuccessRetainsFullReply(t *testing.T) {
	raw := "STEP 1: ...\nSTEP 2: ...\nDecision: Ineligible"
	verdict, ok := NewVerdict("p1", "trial_a", raw)
	require.True(t, ok)
	assert.Equal(t, Ineligible, verdict.Decision)
	assert.Equal(t, raw, verdict.Explanation)
	assert.Equal(t, raw, verdict.RawResponse)
	assert.False(t, strings.Contains(verdict.Explanation, "parse failure"))
}

func TestParseDecisionTable(t *testing.T) {
	cases := []struct {
		token string
		want  Decision
		ok    bool
	}{
		{"Eligible", Eligible, true},
		{"ELIGIBLE.", Eligible, true},
		{"'ineligible'", Ineligible, true},
		{"Uncertain,", Uncertain, true},
		{"eligibleish", Uncertain, false},
		{"", Uncertain, false},
	}
	for _, tc := range cases {
		got, ok := ParseDecision(tc.token)
		assert.Equal(t, tc.ok, ok, "token=%q", tc.token)
		assert.Equal(t, tc.want, got, "token=%q", tc.token)
	}
}
