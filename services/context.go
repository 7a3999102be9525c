package services

import (
	"fmt"
	"strings"

	"github.com/studycoach/studycoach-backend/models"
	"github.com/studycoach/studycoach-backend/storage"
)

const (
	// số bài nộp / feedback gần nhất đưa vào context
	recentItemLimit = 5
	excerptLen      = 200
	// chặn trên thô cho khối context, giữ prompt trong ngân sách token
	maxContextChars = 12000
)

// ContextAssembler gom dữ liệu người hỏi được phép thấy (lớp, bài tập,
// rubric, lịch sử nộp bài, thống kê) thành một system prompt có giới hạn
// kích thước cho model.
type ContextAssembler struct {
	store *storage.Store
}

func NewContextAssembler(store *storage.Store) *ContextAssembler {
	return &ContextAssembler{store: store}
}

// AccessibleClassrooms: học sinh thấy lớp đã tham gia, giáo viên thấy lớp
// mình dạy (kể cả đồng giảng). classCode khác rỗng thì thu hẹp về một lớp.
func (ca *ContextAssembler) AccessibleClassrooms(role, email, classCode string) ([]models.Classroom, error) {
	users, err := ca.store.LoadUsers()
	if err != nil {
		return nil, err
	}
	classrooms, err := ca.store.LoadClassrooms()
	if err != nil {
		return nil, err
	}

	var accessible []models.Classroom
	for _, c := range classrooms.Classrooms {
		if classCode != "" && c.Code != classCode {
			continue
		}
		switch role {
		case models.RoleStudent:
			student := users.FindStudent(email)
			if student != nil && (student.HasJoined(c.Code) || c.HasStudent(email)) {
				accessible = append(accessible, c)
			}
		case models.RoleTeacher:
			if c.HasTeacher(email) {
				accessible = append(accessible, c)
			}
		}
	}
	return accessible, nil
}

// BuildChatContext dựng system prompt cho trợ lý AI. personality là phần mở
// đầu do web layer truyền xuống (có thể rỗng).
func (ca *ContextAssembler) BuildChatContext(role, email, classCode, personality string) (string, error) {
	users, err := ca.store.LoadUsers()
	if err != nil {
		return "", err
	}
	classes, err := ca.AccessibleClassrooms(role, email, classCode)
	if err != nil {
		return "", err
	}

	name := email
	switch role {
	case models.RoleStudent:
		if s := users.FindStudent(email); s != nil {
			name = s.Name
		}
	case models.RoleTeacher:
		if t := users.FindTeacher(email); t != nil {
			name = t.Name
		}
	}

	var sb strings.Builder
	if personality != "" {
		sb.WriteString(personality)
		sb.WriteString("\n\n")
	}
	fmt.Fprintf(&sb, "You are assisting %s, a %s on StudyCoach.\n", name, role)
	if role == models.RoleStudent {
		sb.WriteString("Guide the student toward understanding instead of giving away answers.\n")
	} else {
		sb.WriteString("Support the teacher with planning, grading consistency and student insight.\n")
	}

	// Bài tập và rubric gom theo lớp để model phân biệt được
	// các bài tập trùng tên ở lớp khác nhau
	for _, class := range classes {
		fmt.Fprintf(&sb, "\n## Class %q (%s, code %s)\n", class.ClassName, class.School, class.Code)
		if len(class.Assignments) > 0 {
			sb.WriteString("Assignments:\n")
			for _, a := range class.Assignments {
				fmt.Fprintf(&sb, "- %s: %s", a.Title, excerpt(firstNonEmpty(a.Description, a.Content)))
				if r := class.FindRubric(a.RubricID); r != nil {
					fmt.Fprintf(&sb, " (rubric: %s)", r.Title)
				}
				sb.WriteString("\n")
			}
		}
		if len(class.Rubrics) > 0 {
			sb.WriteString("Rubrics:\n")
			for _, r := range class.Rubrics {
				fmt.Fprintf(&sb, "- %s: %s\n", r.Title, excerpt(r.Content))
			}
		}
	}

	switch role {
	case models.RoleStudent:
		ca.appendStudentHistory(&sb, classes, email)
	case models.RoleTeacher:
		ca.appendTeacherFeedback(&sb, classes, email)
	}

	prompt := sb.String()
	if len(prompt) > maxContextChars {
		prompt = prompt[:maxContextChars]
	}
	return prompt, nil
}

// appendStudentHistory thêm các bài nộp gần nhất và khối thống kê kết quả
func (ca *ContextAssembler) appendStudentHistory(sb *strings.Builder, classes []models.Classroom, email string) {
	type record struct {
		class      string
		assignment string
		sub        models.Submission
	}
	var records []record
	for _, class := range classes {
		for _, a := range class.Assignments {
			for _, s := range a.Submissions {
				if s.StudentEmail == email {
					records = append(records, record{class: class.ClassName, assignment: a.Title, sub: s})
				}
			}
		}
	}
	if len(records) == 0 {
		return
	}
	if len(records) > recentItemLimit {
		records = records[len(records)-recentItemLimit:]
	}

	sb.WriteString("\n## Recent submissions\n")
	for _, r := range records {
		content := firstNonEmpty(r.sub.SubmissionText, r.sub.SubmissionLink, r.sub.Filename)
		fmt.Fprintf(sb, "- %q in class %q: %s", r.assignment, r.class, excerpt(content))
		if r.sub.Grade != nil {
			fmt.Fprintf(sb, " | grade %d/100", int(*r.sub.Grade))
			if r.sub.Feedback != "" {
				fmt.Fprintf(sb, " | feedback: %s", excerpt(r.sub.Feedback))
			}
		} else {
			sb.WriteString(" | not graded yet")
		}
		sb.WriteString("\n")
	}

	var grades []int
	for _, class := range classes {
		grades = append(grades, classGrades(class, email)...)
	}
	if perf := ComputePerformance(grades); perf.GradedCount > 0 {
		fmt.Fprintf(sb, "\n## Performance\nAverage grade %.1f over %d graded assignments (%s). Recent grades: %v.\n",
			perf.Average, perf.GradedCount, perf.Tier, perf.RecentGrades)
		sb.WriteString("Use this to personalize tone: celebrate progress, or slow down and encourage when the student is struggling.\n")
	}
}

// appendTeacherFeedback thêm các feedback giáo viên tự viết gần đây
// để model giữ giọng chấm nhất quán giữa các học sinh
func (ca *ContextAssembler) appendTeacherFeedback(sb *strings.Builder, classes []models.Classroom, email string) {
	type entry struct {
		assignment string
		feedback   string
	}
	var entries []entry
	for _, class := range classes {
		for _, a := range class.Assignments {
			for _, s := range a.Submissions {
				if s.GradedBy == email && s.Feedback != "" {
					entries = append(entries, entry{assignment: a.Title, feedback: s.Feedback})
				}
			}
		}
	}
	if len(entries) == 0 {
		return
	}
	if len(entries) > recentItemLimit {
		entries = entries[len(entries)-recentItemLimit:]
	}

	sb.WriteString("\n## Your recent feedback\n")
	for _, e := range entries {
		fmt.Fprintf(sb, "- on %q: %s\n", e.assignment, excerpt(e.feedback))
	}
	sb.WriteString("Keep new feedback consistent with the examples above.\n")
}

func excerpt(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
	if len(s) <= excerptLen {
		return s
	}
	return s[:excerptLen] + "..."
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
