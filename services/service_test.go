package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/studycoach/studycoach-backend/models"
	"github.com/studycoach/studycoach-backend/storage"
)

const (
	testClassCode    = "abc12345"
	testStudentEmail = "an@example.com"
	testTeacherEmail = "binh@example.com"
)

// stubAI trả lời theo kịch bản cố định, ghi lại mọi request nhận được
type stubAI struct {
	replies []string
	err     error
	calls   []ChatRequest
}

func (s *stubAI) Complete(_ context.Context, req ChatRequest) (string, error) {
	s.calls = append(s.calls, req)
	if s.err != nil {
		return "", s.err
	}
	if len(s.replies) == 0 {
		return "", nil
	}
	reply := s.replies[0]
	if len(s.replies) > 1 {
		s.replies = s.replies[1:]
	}
	return reply, nil
}

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.NewStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func newTestUploads(t *testing.T) *UploadStore {
	t.Helper()
	uploads, err := NewUploadStore(t.TempDir())
	require.NoError(t, err)
	return uploads
}

// seedClassData dựng một lớp với một giáo viên, một học sinh đã ghi danh,
// một rubric và một bài tập chưa có bài nộp
func seedClassData(t *testing.T, store *storage.Store) {
	t.Helper()
	err := store.Update(func(users *models.UsersDocument, classrooms *models.ClassroomsDocument) error {
		users.Students = append(users.Students, models.Student{
			ID: "u1", Name: "An", Email: testStudentEmail,
			Classrooms: []string{testClassCode},
		})
		users.Teachers = append(users.Teachers, models.Teacher{
			ID: "u2", Name: "Binh", Email: testTeacherEmail,
			Classrooms: []string{testClassCode},
		})
		classrooms.Classrooms = append(classrooms.Classrooms, models.Classroom{
			Code:          testClassCode,
			TeacherEmails: []string{testTeacherEmail},
			ClassName:     "Văn 10A",
			School:        "THPT Nguyễn Du",
			Students:      []string{testStudentEmail},
			Rubrics: []models.Rubric{
				{ID: "r1", Title: "Essay rubric", Content: "Clarity, structure, evidence", TeacherEmail: testTeacherEmail},
			},
			Assignments: []models.Assignment{
				{ID: "a1", Title: "Essay 1", Description: "Write about your hometown", RubricID: "r1",
					TeacherEmail: testTeacherEmail, Submissions: []models.Submission{}},
			},
		})
		return nil
	})
	require.NoError(t, err)
}

// submitText nộp nhanh một bài text cho bài tập a1
func submitText(t *testing.T, svc *SubmissionService, text string) *models.Submission {
	t.Helper()
	sub, err := svc.Submit(testStudentEmail, "a1", SubmissionPayload{Text: text})
	require.NoError(t, err)
	return sub
}
