package cli

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"quizzy/internal/domain"
	"quizzy/internal/questions"
)

func TestReportProblems(t *testing.T) {
	color.NoColor = true

	bank := []domain.Question{{ID: "c1", Category: "closures"}}

	var out bytes.Buffer
	assert.NoError(t, reportProblems(&out, bank, nil))
	assert.Contains(t, out.String(), "✓ 1 questions valid across 1 categories")

	out.Reset()
	err := reportProblems(&out, bank, []questions.Problem{{Index: 0, QuestionID: "c1", Message: "missing code"}})
	assert.EqualError(t, err, "1 problems found")
	assert.Contains(t, out.String(), "✗")
	assert.Contains(t, out.String(), "missing code")
}

func TestAccuracyColorThresholds(t *testing.T) {
	color.NoColor = true
	assert.Equal(t, "80%", accuracyColor(80))
	assert.Equal(t, "0%", accuracyColor(0))
}
