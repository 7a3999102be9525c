package models

// Nâng cấp một lần các shape dữ liệu cũ ngay khi load document.
// Dữ liệu sinh ra từ bản Flask cũ có teacher_email dạng chuỗi đơn
// và điểm lưu dạng chuỗi (đã xử lý trong Grade.UnmarshalJSON).

func (d *UsersDocument) Migrate() {
	if d.Students == nil {
		d.Students = []Student{}
	}
	if d.Teachers == nil {
		d.Teachers = []Teacher{}
	}
	for i := range d.Students {
		if d.Students[i].Classrooms == nil {
			d.Students[i].Classrooms = []string{}
		}
	}
}

func (d *ClassroomsDocument) Migrate() {
	if d.Classrooms == nil {
		d.Classrooms = []Classroom{}
	}
	for i := range d.Classrooms {
		c := &d.Classrooms[i]

		// teacher_email (chuỗi đơn) -> teacher_emails
		if c.LegacyTeacherEmail != "" {
			if !c.HasTeacher(c.LegacyTeacherEmail) {
				c.TeacherEmails = append([]string{c.LegacyTeacherEmail}, c.TeacherEmails...)
			}
			c.LegacyTeacherEmail = ""
		}
		if c.TeacherEmails == nil {
			c.TeacherEmails = []string{}
		}
		if c.Students == nil {
			c.Students = []string{}
		}
		if c.Rubrics == nil {
			c.Rubrics = []Rubric{}
		}
		if c.Assignments == nil {
			c.Assignments = []Assignment{}
		}
		for j := range c.Assignments {
			a := &c.Assignments[j]
			if a.Submissions == nil {
				a.Submissions = []Submission{}
			}
			for k := range a.Submissions {
				if a.Submissions[k].AssignmentID == "" {
					a.Submissions[k].AssignmentID = a.ID
				}
			}
		}
	}
}
