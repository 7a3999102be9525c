package services

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/studycoach/studycoach-backend/models"
	"github.com/studycoach/studycoach-backend/storage"
)

// ClassroomService: tạo lớp, tham gia lớp, đăng rubric và bài tập
type ClassroomService struct {
	store *storage.Store
}

func NewClassroomService(store *storage.Store) *ClassroomService {
	return &ClassroomService{store: store}
}

// CreateClass tạo lớp mới với mã tham gia 8 ký tự hex
func (s *ClassroomService) CreateClass(teacherEmail, className, school string) (*models.Classroom, error) {
	if strings.TrimSpace(className) == "" {
		return nil, validationf("class name is required")
	}

	code := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	var created *models.Classroom
	err := s.store.Update(func(users *models.UsersDocument, classrooms *models.ClassroomsDocument) error {
		teacher := users.FindTeacher(teacherEmail)
		if teacher == nil {
			return notFoundf("teacher %s not found", teacherEmail)
		}

		classroom := models.Classroom{
			Code:          code,
			TeacherEmails: []string{teacherEmail},
			ClassName:     strings.TrimSpace(className),
			School:        strings.TrimSpace(school),
			Students:      []string{},
			Rubrics:       []models.Rubric{},
			Assignments:   []models.Assignment{},
			CreatedAt:     time.Now().UTC().Format(time.RFC3339),
		}
		classrooms.Classrooms = append(classrooms.Classrooms, classroom)
		teacher.Classrooms = append(teacher.Classrooms, code)

		created = &classrooms.Classrooms[len(classrooms.Classrooms)-1]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// JoinClassAsStudent ghi danh hai chiều (lớp giữ email, học sinh giữ mã lớp),
// tham gia lại lớp cũ không nhân đôi
func (s *ClassroomService) JoinClassAsStudent(studentEmail, code string) (*models.Classroom, error) {
	var joined *models.Classroom
	err := s.store.Update(func(users *models.UsersDocument, classrooms *models.ClassroomsDocument) error {
		student := users.FindStudent(studentEmail)
		if student == nil {
			return notFoundf("student %s not found", studentEmail)
		}
		classroom := classrooms.FindClassroom(code)
		if classroom == nil {
			return notFoundf("invalid classroom code %s", code)
		}

		if !student.HasJoined(code) {
			student.Classrooms = append(student.Classrooms, code)
		}
		if !classroom.HasStudent(studentEmail) {
			classroom.Students = append(classroom.Students, studentEmail)
		}

		copied := *classroom
		joined = &copied
		return nil
	})
	if err != nil {
		return nil, err
	}
	return joined, nil
}

// JoinClassAsTeacher thêm đồng giảng viên vào lớp
func (s *ClassroomService) JoinClassAsTeacher(teacherEmail, code string) error {
	return s.store.Update(func(users *models.UsersDocument, classrooms *models.ClassroomsDocument) error {
		teacher := users.FindTeacher(teacherEmail)
		if teacher == nil {
			return notFoundf("teacher %s not found", teacherEmail)
		}
		classroom := classrooms.FindClassroom(code)
		if classroom == nil {
			return notFoundf("class %s not found", code)
		}

		if !classroom.HasTeacher(teacherEmail) {
			classroom.TeacherEmails = append(classroom.TeacherEmails, teacherEmail)
		}
		joined := false
		for _, c := range teacher.Classrooms {
			if c == code {
				joined = true
				break
			}
		}
		if !joined {
			teacher.Classrooms = append(teacher.Classrooms, code)
		}
		return nil
	})
}

// MyClasses liệt kê lớp theo vai trò: học sinh -> lớp đã tham gia,
// giáo viên -> lớp mình dạy
func (s *ClassroomService) MyClasses(role, email string) ([]models.Classroom, error) {
	users, err := s.store.LoadUsers()
	if err != nil {
		return nil, err
	}
	classrooms, err := s.store.LoadClassrooms()
	if err != nil {
		return nil, err
	}

	var mine []models.Classroom
	for _, c := range classrooms.Classrooms {
		switch role {
		case models.RoleStudent:
			student := users.FindStudent(email)
			if student != nil && (student.HasJoined(c.Code) || c.HasStudent(email)) {
				mine = append(mine, c)
			}
		case models.RoleTeacher:
			if c.HasTeacher(email) {
				mine = append(mine, c)
			}
		}
	}
	return mine, nil
}

// AddRubric đăng tiêu chí chấm vào lớp
func (s *ClassroomService) AddRubric(teacherEmail, code, title, content string) (*models.Rubric, error) {
	if strings.TrimSpace(title) == "" {
		return nil, validationf("rubric title is required")
	}

	var created *models.Rubric
	err := s.store.UpdateClassrooms(func(classrooms *models.ClassroomsDocument) error {
		classroom := classrooms.FindClassroom(code)
		if classroom == nil {
			return notFoundf("class %s not found", code)
		}
		if !classroom.HasTeacher(teacherEmail) {
			return authorizationf("you do not teach class %s", classroom.ClassName)
		}

		rubric := models.Rubric{
			ID:           uuid.NewString(),
			Title:        strings.TrimSpace(title),
			Content:      content,
			Timestamp:    time.Now().UTC().Format(time.RFC3339),
			TeacherEmail: teacherEmail,
		}
		classroom.Rubrics = append(classroom.Rubrics, rubric)

		copied := rubric
		created = &copied
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

type AssignmentInput struct {
	Title       string
	Content     string
	Description string
	RubricID    string // tham chiếu yếu, không kiểm tra tồn tại
}

// AddAssignment đăng bài tập mới vào lớp
func (s *ClassroomService) AddAssignment(teacherEmail, code string, in AssignmentInput) (*models.Assignment, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, validationf("assignment title is required")
	}

	var created *models.Assignment
	err := s.store.UpdateClassrooms(func(classrooms *models.ClassroomsDocument) error {
		classroom := classrooms.FindClassroom(code)
		if classroom == nil {
			return notFoundf("class %s not found", code)
		}
		if !classroom.HasTeacher(teacherEmail) {
			return authorizationf("you do not teach class %s", classroom.ClassName)
		}

		assignment := models.Assignment{
			ID:           uuid.NewString(),
			Title:        strings.TrimSpace(in.Title),
			Content:      in.Content,
			Description:  in.Description,
			RubricID:     in.RubricID,
			Timestamp:    time.Now().UTC().Format(time.RFC3339),
			TeacherEmail: teacherEmail,
			Submissions:  []models.Submission{},
		}
		classroom.Assignments = append(classroom.Assignments, assignment)

		copied := assignment
		created = &copied
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateAssignment sửa bài tập đã đăng, bài nộp hiện có giữ nguyên
func (s *ClassroomService) UpdateAssignment(teacherEmail, assignmentID string, in AssignmentInput) (*models.Assignment, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, validationf("assignment title is required")
	}

	var updated *models.Assignment
	err := s.store.UpdateClassrooms(func(classrooms *models.ClassroomsDocument) error {
		classroom, assignment := classrooms.FindAssignment(assignmentID)
		if assignment == nil {
			return notFoundf("assignment %s not found", assignmentID)
		}
		if !classroom.HasTeacher(teacherEmail) {
			return authorizationf("you do not teach class %s", classroom.ClassName)
		}

		assignment.Title = strings.TrimSpace(in.Title)
		assignment.Content = in.Content
		assignment.Description = in.Description
		assignment.RubricID = in.RubricID

		copied := *assignment
		updated = &copied
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
