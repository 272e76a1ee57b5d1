package screening

import (
	"regexp"
	"strings"
)

// decisionMarker is the format contract shared between the prompt template
// and the verdict parser. Change them together or parsing breaks.
const decisionMarker = "Decision:"

const systemPrompt = "You are an expert Clinical Research Associate screening patients for clinical trial eligibility. Follow the requested output format exactly."

// BuildPrompt renders the screening request for one (patient, trial) pair.
// Pure function of its inputs: identical record text and criteria text
// always produce an identical prompt.
func BuildPrompt(recordText, criteriaText string) string {
	return strings.Join([]string{
		"Determine whether the patient below is Eligible, Ineligible, or Uncertain for the clinical trial.",
		"",
		"## TRIAL CRITERIA",
		criteriaText,
		"",
		"## PATIENT DATA",
		recordText,
		"",
		"## INSTRUCTIONS",
		"1. Compare the patient data against every inclusion and exclusion criterion.",
		"2. Think step by step: quote the patient value, quote the criterion limit, and state whether it is satisfied.",
		"3. If any required data point is not recorded and the criterion cannot be decided, the overall answer is Uncertain.",
		"4. After your reasoning, finish with exactly one line in this form:",
		"",
		decisionMarker + " <Eligible|Ineligible|Uncertain>",
		"",
		"The final line must contain exactly one of those three labels and nothing else.",
	}, "\n")
}

// markerRegex matches the decision marker case-insensitively. Indexing via
// a lowercased copy of the reply is unsafe: ToLower can change byte lengths
// on non-ASCII text, so offsets must come from the reply itself.
var markerRegex = regexp.MustCompile("(?i)" + regexp.QuoteMeta(decisionMarker))

// ParseVerdict extracts the decision from a raw model reply. The second
// return reports whether the reply honored the format contract; when it did
// not, the decision is Uncertain by policy — an ambiguous reply must never
// pass as a confident Eligible or Ineligible.
func ParseVerdict(raw string) (Decision, bool) {
	locs := markerRegex.FindAllStringIndex(raw, -1)
	if len(locs) == 0 {
		return Uncertain, false
	}
	rest := raw[locs[len(locs)-1][1]:]
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return Uncertain, false
	}
	return ParseDecision(fields[0])
}

const parseFailureNote = "[parse failure] model reply did not contain a recognizable \"Decision: <label>\" line; recorded as Uncertain for review"

// NewVerdict builds the structured verdict for one pair from the raw reply.
// The full reply is always retained; parse failures get the note appended.
// The second return reports whether the reply parsed cleanly.
func NewVerdict(patientID, trialID, raw string) (Verdict, bool) {
	decision, ok := ParseVerdict(raw)
	explanation := strings.TrimSpace(raw)
	if !ok {
		if explanation == "" {
			explanation = parseFailureNote
		} else {
			explanation = explanation + "\n\n" + parseFailureNote
		}
	}
	return Verdict{
		PatientID:   patientID,
		TrialID:     trialID,
		Decision:    decision,
		Explanation: explanation,
		RawResponse: raw,
	}, ok
}
