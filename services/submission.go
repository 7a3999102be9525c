package services

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/studycoach/studycoach-backend/models"
	"github.com/studycoach/studycoach-backend/storage"
)

// SubmissionService quản lý vòng đời bài nộp:
// NONE -> SUBMITTED -> GRADED, SUBMITTED -> NONE qua unsubmit,
// GRADED chỉ thay đổi bằng hành động chấm lại.
type SubmissionService struct {
	store   *storage.Store
	uploads *UploadStore
}

func NewSubmissionService(store *storage.Store, uploads *UploadStore) *SubmissionService {
	return &SubmissionService{store: store, uploads: uploads}
}

// SubmissionPayload: người gửi chọn đúng một kênh nội dung
type SubmissionPayload struct {
	Text     string
	Link     string
	FileName string
	FileData []byte
}

// Channel chọn kênh theo thứ tự text > link > file, sau khi trim khoảng trắng.
// Không kênh nào có nội dung -> không đủ điều kiện nộp.
func (p SubmissionPayload) Channel() (string, bool) {
	if strings.TrimSpace(p.Text) != "" {
		return "text", true
	}
	if strings.TrimSpace(p.Link) != "" {
		return "link", true
	}
	if strings.TrimSpace(p.FileName) != "" && len(p.FileData) > 0 {
		return "file", true
	}
	return "", false
}

// Submit tạo hoặc thay thế bài nộp của học sinh cho một bài tập.
// Nộp lại khi chưa chấm là idempotent: bản ghi cũ bị thay hẳn (kể cả file).
// Đồng thời cập nhật last_activity của học sinh.
func (s *SubmissionService) Submit(studentEmail, assignmentID string, payload SubmissionPayload) (*models.Submission, error) {
	channel, ok := payload.Channel()
	if !ok {
		return nil, ErrEmptySubmission
	}

	var result *models.Submission
	err := s.store.Update(func(users *models.UsersDocument, classrooms *models.ClassroomsDocument) error {
		student := users.FindStudent(studentEmail)
		if student == nil {
			return notFoundf("student %s not found", studentEmail)
		}
		classroom, assignment := classrooms.FindAssignment(assignmentID)
		if assignment == nil {
			return notFoundf("assignment %s not found", assignmentID)
		}
		if !student.HasJoined(classroom.Code) && !classroom.HasStudent(studentEmail) {
			return authorizationf("you are not enrolled in class %s", classroom.ClassName)
		}

		prior, idx := assignment.FindSubmission(studentEmail)
		if prior != nil {
			if prior.Grade != nil {
				return ErrAlreadyGraded
			}
			s.uploads.Delete(prior.Filename)
			assignment.Submissions = append(assignment.Submissions[:idx], assignment.Submissions[idx+1:]...)
		}

		sub := models.Submission{
			ID:           uuid.NewString(),
			StudentEmail: studentEmail,
			AssignmentID: assignment.ID,
			Timestamp:    time.Now().UTC().Format(time.RFC3339),
		}
		switch channel {
		case "text":
			sub.SubmissionText = strings.TrimSpace(payload.Text)
		case "link":
			sub.SubmissionLink = strings.TrimSpace(payload.Link)
		case "file":
			stored, err := s.uploads.Save(studentEmail, assignment.ID, payload.FileName, payload.FileData)
			if err != nil {
				return err
			}
			sub.Filename = stored
		}

		assignment.Submissions = append(assignment.Submissions, sub)
		TouchStudentActivity(student, time.Now().UTC())

		result = &sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Unsubmit rút lại bài nộp chưa chấm, xoá luôn file đính kèm.
// Bài đã chấm thì luôn từ chối, bản ghi giữ nguyên.
func (s *SubmissionService) Unsubmit(studentEmail, assignmentID string) error {
	return s.store.UpdateClassrooms(func(classrooms *models.ClassroomsDocument) error {
		_, assignment := classrooms.FindAssignment(assignmentID)
		if assignment == nil {
			return notFoundf("assignment %s not found", assignmentID)
		}
		sub, idx := assignment.FindSubmission(studentEmail)
		if sub == nil {
			return notFoundf("no submission for assignment %s", assignmentID)
		}
		if sub.Grade != nil {
			return ErrAlreadyGraded
		}

		s.uploads.Delete(sub.Filename)
		assignment.Submissions = append(assignment.Submissions[:idx], assignment.Submissions[idx+1:]...)
		return nil
	})
}

// GetSubmission đọc một bài nộp (dành cho view của web layer).
// Học sinh chỉ xem bài của chính mình, giáo viên chỉ xem bài trong lớp mình dạy.
func (s *SubmissionService) GetSubmission(viewerRole, viewerEmail, assignmentID, studentEmail string) (*models.Submission, error) {
	classrooms, err := s.store.LoadClassrooms()
	if err != nil {
		return nil, err
	}
	classroom, assignment := classrooms.FindAssignment(assignmentID)
	if assignment == nil {
		return nil, notFoundf("assignment %s not found", assignmentID)
	}
	switch viewerRole {
	case models.RoleTeacher:
		if !classroom.HasTeacher(viewerEmail) {
			return nil, authorizationf("you do not teach class %s", classroom.ClassName)
		}
	default:
		if studentEmail != viewerEmail {
			return nil, authorizationf("you can only view your own submission")
		}
	}
	sub, _ := assignment.FindSubmission(studentEmail)
	if sub == nil {
		return nil, notFoundf("no submission for assignment %s", assignmentID)
	}
	return sub, nil
}
