package models

// Vai trò người dùng, web layer đặt vào header X-User-Role
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
)

// STUDENT (HỌC SINH)
type Student struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Classrooms   []string `json:"classrooms"`              // danh sách mã lớp đã tham gia
	LastActivity string   `json:"last_activity,omitempty"` // ISO timestamp
}

// TEACHER (GIÁO VIÊN)
type Teacher struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	School        string   `json:"school"`
	ClassName     string   `json:"class_name"`
	ClassroomCode string   `json:"classroom_code,omitempty"`
	Classrooms    []string `json:"classrooms,omitempty"`
}

// UsersDocument là toàn bộ nội dung users.json
type UsersDocument struct {
	Students []Student `json:"students"`
	Teachers []Teacher `json:"teachers"`
}

func (d *UsersDocument) FindStudent(email string) *Student {
	for i := range d.Students {
		if d.Students[i].Email == email {
			return &d.Students[i]
		}
	}
	return nil
}

func (d *UsersDocument) FindTeacher(email string) *Teacher {
	for i := range d.Teachers {
		if d.Teachers[i].Email == email {
			return &d.Teachers[i]
		}
	}
	return nil
}

func (s *Student) HasJoined(code string) bool {
	for _, c := range s.Classrooms {
		if c == code {
			return true
		}
	}
	return false
}
