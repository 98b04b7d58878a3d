package guard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medchron/internal/guard"
)

func TestCheck_Clean(t *testing.T) {
	content := "01/30/2023. Kaiser Permanente ED. Chief Complaint: low back pain after fall.\n\n" +
		"03/01/2023. Senta Neurosurgery. MRI L4-L5 reviewed; conservative care advised."

	assert.Empty(t, guard.Check(content))
}

func TestCheck_Violations(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bold", "01/01/2020 **Diagnosis** lumbar strain", "Bold text"},
		{"star bullet", "Intro\n  * item one", "Bullet points"},
		{"dash bullet", "- item", "Bullet points"},
		{"dot bullet", "• item", "Bullet points"},
		{"numbered", "1. First item", "Bullet points"},
		{"all caps", "MEDICAL RECORDS SUMMARY FOR THE PATIENT", "All-caps"},
		{"narrative", "The patient was seen for neck pain.", "the patient was seen for"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := guard.Check(tt.content)
			require.NotEmpty(t, violations)
			assert.Contains(t, violations[0], tt.want)
		})
	}
}

func TestCheck_OneListViolationOnly(t *testing.T) {
	violations := guard.Check("* a\n- b\n1. c")

	assert.Len(t, violations, 1)
}

func TestCheck_FourCapsWordsAllowed(t *testing.T) {
	assert.Empty(t, guard.Check("MRI CT EMG NCV ordered."))
}

func TestCheck_OverlappingNarrativePhrases(t *testing.T) {
	violations := guard.Check("The patient presented with a chief complaint of headache.")

	assert.Len(t, violations, 2)
}
