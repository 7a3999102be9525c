package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studycoach/studycoach-backend/models"
)

func TestParseGradeResponse(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantGrade    int
		wantFallback bool
	}{
		{"labeled fields", "GRADE: 85\nFEEDBACK: Solid structure, work on citations.", 85, false},
		{"lowercase labels", "grade: 92\nfeedback: Great work.", 92, false},
		{"markdown noise", "**GRADE: 78**\n**FEEDBACK:** Decent effort.", 78, false},
		{"equals separator", "GRADE = 64\nFEEDBACK = Needs more depth.", 64, false},
		{"bare number only", "I would give this a 88 out of 100, nice use of sources.", 88, false},
		{"labeled grade clamped", "GRADE: 150\nFEEDBACK: off the chart", 100, false},
		{"no number at all", "This submission shows real promise.", FallbackGrade, true},
		{"empty response", "", FallbackGrade, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseGradeResponse(tt.raw)
			assert.Equal(t, tt.wantGrade, result.Grade)
			assert.Equal(t, tt.wantFallback, result.Fallback)
			assert.NotEmpty(t, result.Feedback)
		})
	}

	t.Run("feedback comes from the labeled field", func(t *testing.T) {
		result := ParseGradeResponse("GRADE: 70\nFEEDBACK: Tighten the intro paragraph.")
		assert.Equal(t, "Tighten the intro paragraph.", result.Feedback)
	})
}

func TestContentSeed(t *testing.T) {
	assignment := &models.Assignment{ID: "a1", Title: "Essay 1", Description: "desc", Content: "body", RubricID: "r1"}
	sub := &models.Submission{StudentEmail: testStudentEmail, SubmissionText: "my essay"}

	t.Run("deterministic for identical content", func(t *testing.T) {
		assert.Equal(t, ContentSeed(assignment, sub), ContentSeed(assignment, sub))
	})

	t.Run("non-negative", func(t *testing.T) {
		assert.GreaterOrEqual(t, ContentSeed(assignment, sub), int32(0))
	})

	t.Run("changes when submission content changes", func(t *testing.T) {
		changed := *sub
		changed.SubmissionText = "my essay, revised"
		assert.NotEqual(t, ContentSeed(assignment, sub), ContentSeed(assignment, &changed))
	})

	t.Run("ignores timestamps and grading state", func(t *testing.T) {
		graded := *sub
		g := models.Grade(55)
		graded.Grade = &g
		graded.Timestamp = "2026-01-01T00:00:00Z"
		graded.GradedTimestamp = "2026-01-02T00:00:00Z"
		assert.Equal(t, ContentSeed(assignment, sub), ContentSeed(assignment, &graded))
	})
}

func TestGradeAssignment(t *testing.T) {
	newGrading := func(t *testing.T, ai AIClient) (*GradingService, *SubmissionService) {
		store := newTestStore(t)
		uploads := newTestUploads(t)
		seedClassData(t, store)
		return NewGradingService(store, uploads, ai), NewSubmissionService(store, uploads)
	}

	t.Run("manual grade is written with attribution", func(t *testing.T) {
		grading, subs := newGrading(t, &stubAI{})
		submitText(t, subs, "my essay")

		graded, err := grading.GradeAssignment(context.Background(), testTeacherEmail, GradeInput{
			AssignmentID: "a1", StudentEmail: testStudentEmail, Grade: 88, Feedback: "Nice work",
		})
		require.NoError(t, err)
		require.NotNil(t, graded.Grade)
		assert.Equal(t, 88, int(*graded.Grade))
		assert.Equal(t, "Nice work", graded.Feedback)
		assert.Equal(t, testTeacherEmail, graded.GradedBy)
		assert.NotEmpty(t, graded.GradedTimestamp)
		assert.False(t, graded.GradeIsFallback)
	})

	t.Run("grade outside range is rejected", func(t *testing.T) {
		grading, subs := newGrading(t, &stubAI{})
		submitText(t, subs, "my essay")

		_, err := grading.GradeAssignment(context.Background(), testTeacherEmail, GradeInput{
			AssignmentID: "a1", StudentEmail: testStudentEmail, Grade: 101,
		})
		assert.ErrorIs(t, err, ErrInvalidGrade)

		_, err = grading.GradeAssignment(context.Background(), testTeacherEmail, GradeInput{
			AssignmentID: "a1", StudentEmail: testStudentEmail, Grade: -1,
		})
		assert.ErrorIs(t, err, ErrInvalidGrade)
	})

	t.Run("non-teacher cannot grade", func(t *testing.T) {
		grading, subs := newGrading(t, &stubAI{})
		submitText(t, subs, "my essay")

		_, err := grading.GradeAssignment(context.Background(), "stranger@example.com", GradeInput{
			AssignmentID: "a1", StudentEmail: testStudentEmail, Grade: 50,
		})
		assert.ErrorIs(t, err, ErrAuthorization)
	})

	t.Run("re-grading overwrites the previous grade", func(t *testing.T) {
		grading, subs := newGrading(t, &stubAI{})
		submitText(t, subs, "my essay")

		_, err := grading.GradeAssignment(context.Background(), testTeacherEmail, GradeInput{
			AssignmentID: "a1", StudentEmail: testStudentEmail, Grade: 60, Feedback: "first pass",
		})
		require.NoError(t, err)

		graded, err := grading.GradeAssignment(context.Background(), testTeacherEmail, GradeInput{
			AssignmentID: "a1", StudentEmail: testStudentEmail, Grade: 75, Feedback: "second pass",
		})
		require.NoError(t, err)
		assert.Equal(t, 75, int(*graded.Grade))
		assert.Equal(t, "second pass", graded.Feedback)
	})

	t.Run("enhanced feedback replaces the draft", func(t *testing.T) {
		ai := &stubAI{replies: []string{"Polished feedback."}}
		grading, subs := newGrading(t, ai)
		submitText(t, subs, "my essay")

		graded, err := grading.GradeAssignment(context.Background(), testTeacherEmail, GradeInput{
			AssignmentID: "a1", StudentEmail: testStudentEmail, Grade: 80,
			Feedback: "rough draft", EnhanceFeedback: true,
		})
		require.NoError(t, err)
		assert.Equal(t, "Polished feedback.", graded.Feedback)
		assert.Len(t, ai.calls, 1)
	})

	t.Run("enhancement failure keeps the draft", func(t *testing.T) {
		ai := &stubAI{err: errors.New("model unavailable")}
		grading, subs := newGrading(t, ai)
		submitText(t, subs, "my essay")

		graded, err := grading.GradeAssignment(context.Background(), testTeacherEmail, GradeInput{
			AssignmentID: "a1", StudentEmail: testStudentEmail, Grade: 80,
			Feedback: "rough draft", EnhanceFeedback: true,
		})
		require.NoError(t, err)
		assert.Equal(t, "rough draft", graded.Feedback)
	})
}

func TestAIGradeAssignment(t *testing.T) {
	newGrading := func(t *testing.T, ai AIClient) (*GradingService, *SubmissionService) {
		store := newTestStore(t)
		uploads := newTestUploads(t)
		seedClassData(t, store)
		return NewGradingService(store, uploads, ai), NewSubmissionService(store, uploads)
	}

	t.Run("parses the model verdict", func(t *testing.T) {
		ai := &stubAI{replies: []string{"GRADE: 91\nFEEDBACK: Strong argumentation."}}
		grading, subs := newGrading(t, ai)
		submitText(t, subs, "my essay")

		graded, err := grading.AIGradeAssignment(context.Background(), testTeacherEmail, "a1", testStudentEmail)
		require.NoError(t, err)
		assert.Equal(t, 91, int(*graded.Grade))
		assert.Equal(t, "Strong argumentation.", graded.Feedback)
		assert.Equal(t, "AI (via "+testTeacherEmail+")", graded.GradedBy)
		assert.False(t, graded.GradeIsFallback)
	})

	t.Run("prompt carries assignment, rubric and submission", func(t *testing.T) {
		ai := &stubAI{replies: []string{"GRADE: 70\nFEEDBACK: ok"}}
		grading, subs := newGrading(t, ai)
		submitText(t, subs, "my essay about hometown")

		_, err := grading.AIGradeAssignment(context.Background(), testTeacherEmail, "a1", testStudentEmail)
		require.NoError(t, err)

		require.Len(t, ai.calls, 1)
		prompt := ai.calls[0].Messages[0].Content
		assert.Contains(t, prompt, "Essay 1")
		assert.Contains(t, prompt, "Clarity, structure, evidence")
		assert.Contains(t, prompt, "my essay about hometown")
		require.NotNil(t, ai.calls[0].Seed)
	})

	t.Run("model failure falls back to a flagged grade", func(t *testing.T) {
		ai := &stubAI{err: errors.New("quota exceeded")}
		grading, subs := newGrading(t, ai)
		submitText(t, subs, "my essay")

		graded, err := grading.AIGradeAssignment(context.Background(), testTeacherEmail, "a1", testStudentEmail)
		require.NoError(t, err)
		assert.Equal(t, FallbackGrade, int(*graded.Grade))
		assert.True(t, graded.GradeIsFallback)
		assert.NotEmpty(t, graded.Feedback)
	})

	t.Run("missing submission", func(t *testing.T) {
		grading, _ := newGrading(t, &stubAI{})
		_, err := grading.AIGradeAssignment(context.Background(), testTeacherEmail, "a1", testStudentEmail)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
