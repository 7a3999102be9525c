package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// CLASSROOM (LỚP HỌC)
type Classroom struct {
	Code          string       `json:"code"` // mã tham gia lớp
	TeacherEmails []string     `json:"teacher_emails"`
	ClassName     string       `json:"class_name"`
	School        string       `json:"school"`
	Students      []string     `json:"students"` // chỉ lưu email, tra cứu qua users.json
	Rubrics       []Rubric     `json:"rubrics"`
	Assignments   []Assignment `json:"assignments"`
	CreatedAt     string       `json:"created_at,omitempty"`

	// Trường cũ, được dồn vào TeacherEmails khi load (xem migrate.go)
	LegacyTeacherEmail string `json:"teacher_email,omitempty"`
}

// RUBRIC (TIÊU CHÍ CHẤM)
type Rubric struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	Timestamp    string `json:"timestamp"`
	TeacherEmail string `json:"teacher_email"`
}

// ASSIGNMENT (BÀI TẬP)
type Assignment struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Content      string       `json:"content"`
	Description  string       `json:"description"`
	RubricID     string       `json:"rubric_id,omitempty"` // tham chiếu yếu, rubric có thể đã bị xoá
	Timestamp    string       `json:"timestamp"`
	TeacherEmail string       `json:"teacher_email,omitempty"`
	Submissions  []Submission `json:"submissions"`
}

// SUBMISSION (BÀI NỘP) — đúng một kênh nội dung: text, link hoặc file
type Submission struct {
	ID             string `json:"id"`
	StudentEmail   string `json:"student_email"`
	AssignmentID   string `json:"assignment_id"`
	SubmissionText string `json:"submission_text,omitempty"`
	SubmissionLink string `json:"submission_link,omitempty"`
	Filename       string `json:"filename,omitempty"` // tên file đã lưu trong uploads/
	Timestamp      string `json:"timestamp"`

	Grade           *Grade `json:"grade,omitempty"`
	Feedback        string `json:"feedback,omitempty"`
	GradedBy        string `json:"graded_by,omitempty"` // email giáo viên hoặc "AI (via <email>)"
	GradedTimestamp string `json:"graded_timestamp,omitempty"`
	GradeIsFallback bool   `json:"grade_is_fallback,omitempty"` // true nếu là điểm mặc định, không phải kết quả model
}

// Grade chấp nhận cả số lẫn chuỗi số khi decode (dữ liệu cũ lưu điểm dạng chuỗi)
type Grade int

func (g *Grade) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*g = Grade(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("grade must be a number or numeric string, got %s", string(b))
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("grade %q is not numeric", s)
	}
	*g = Grade(n)
	return nil
}

// ClassroomsDocument là toàn bộ nội dung classrooms.json
type ClassroomsDocument struct {
	Classrooms []Classroom `json:"classrooms"`
}

func (d *ClassroomsDocument) FindClassroom(code string) *Classroom {
	for i := range d.Classrooms {
		if d.Classrooms[i].Code == code {
			return &d.Classrooms[i]
		}
	}
	return nil
}

// FindAssignment tìm bài tập trong mọi lớp, trả về cả lớp chứa nó
func (d *ClassroomsDocument) FindAssignment(assignmentID string) (*Classroom, *Assignment) {
	for i := range d.Classrooms {
		if a := d.Classrooms[i].FindAssignment(assignmentID); a != nil {
			return &d.Classrooms[i], a
		}
	}
	return nil, nil
}

func (c *Classroom) FindAssignment(id string) *Assignment {
	for i := range c.Assignments {
		if c.Assignments[i].ID == id {
			return &c.Assignments[i]
		}
	}
	return nil
}

// FindRubric trả về nil khi rubric đã bị xoá (tham chiếu yếu)
func (c *Classroom) FindRubric(id string) *Rubric {
	if id == "" {
		return nil
	}
	for i := range c.Rubrics {
		if c.Rubrics[i].ID == id {
			return &c.Rubrics[i]
		}
	}
	return nil
}

func (c *Classroom) HasTeacher(email string) bool {
	for _, e := range c.TeacherEmails {
		if e == email {
			return true
		}
	}
	return false
}

func (c *Classroom) HasStudent(email string) bool {
	for _, e := range c.Students {
		if e == email {
			return true
		}
	}
	return false
}

// FindSubmission quét tuyến tính theo (assignment, student_email);
// mỗi học sinh tối đa một bài nộp cho một bài tập
func (a *Assignment) FindSubmission(studentEmail string) (*Submission, int) {
	for i := range a.Submissions {
		if a.Submissions[i].StudentEmail == studentEmail {
			return &a.Submissions[i], i
		}
	}
	return nil, -1
}
