package screening

import (
	"strings"

	"github.com/clinicaldss/trialscreen/internal/patients"
)

// notRecorded is emitted for blank fields. Dropping a blank field instead
// would change the prompt shape between patients and silently shift what
// the model treats as missing information.
const notRecorded = "not recorded"

// FormatRecord renders a patient record as one "name: value" line per field
// in the source column order. The same record always formats to identical
// bytes.
func FormatRecord(rec patients.Record) string {
	var b strings.Builder
	for i, f := range rec.Fields {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(f.Name)
		b.WriteString(": ")
		if strings.TrimSpace(f.Value) == "" {
			b.WriteString(notRecorded)
		} else {
			b.WriteString(f.Value)
		}
	}
	return b.String()
}
