package services

import (
	"fmt"
	"math"
	"time"

	"github.com/studycoach/studycoach-backend/models"
)

// Ngưỡng hiển thị "hoạt động lần cuối"
const (
	minuteThreshold = 60 * time.Second
	hourThreshold   = time.Hour
	dayThreshold    = 24 * time.Hour
	weekThreshold   = 7 * 24 * time.Hour
)

// Ngưỡng phân loại kết quả học tập
const (
	TierGood             = "good"              // trung bình >= 80
	TierNeedsImprovement = "needs_improvement" // 60–79
	TierStruggling       = "struggling"        // < 60
)

// TouchStudentActivity đóng dấu thời điểm hoạt động cuối của học sinh.
// Các hành động kích hoạt: mở dashboard, mở trang AI, gửi tin chat, nộp bài.
func TouchStudentActivity(student *models.Student, now time.Time) {
	student.LastActivity = now.UTC().Format(time.RFC3339)
}

// FormatLastActivity diễn giải khoảng thời gian từ lần hoạt động cuối
// thành chuỗi thân thiện
func FormatLastActivity(lastActivity string, now time.Time) string {
	t, err := time.Parse(time.RFC3339, lastActivity)
	if err != nil {
		return "No activity yet"
	}
	elapsed := now.Sub(t)

	switch {
	case elapsed < minuteThreshold:
		return "Just now"
	case elapsed < hourThreshold:
		return plural(int(elapsed.Minutes()), "minute")
	case elapsed < dayThreshold:
		return plural(int(elapsed.Hours()), "hour")
	case elapsed < weekThreshold:
		return plural(int(elapsed.Hours()/24), "day")
	default:
		return t.Format("Jan 2, 2006")
	}
}

func plural(n int, unit string) string {
	if n <= 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// ActivityScore: điểm 0–100 suy giảm tuyến tính từng đoạn theo số giờ
// từ lần hoạt động cuối. Chỉ là chỉ số hiển thị, không phải số liệu
// cần chính xác tuyệt đối.
//
//	<=1h: 90–100, <=6h: 70–90, <=24h: 40–70, <=72h: 20–40,
//	<=168h: 10–20, xa hơn: 0–10 (chặn dưới 0)
func ActivityScore(lastActivity string, now time.Time) int {
	t, err := time.Parse(time.RFC3339, lastActivity)
	if err != nil {
		return 0
	}
	h := now.Sub(t).Hours()

	switch {
	case h <= 0:
		return 100
	case h <= 1:
		return int(math.Round(100 - 10*h))
	case h <= 6:
		return int(math.Round(90 - 20*(h-1)/5))
	case h <= 24:
		return int(math.Round(70 - 30*(h-6)/18))
	case h <= 72:
		return int(math.Round(40 - 20*(h-24)/48))
	case h <= 168:
		return int(math.Round(20 - 10*(h-72)/96))
	default:
		score := 10 - 10*(h-168)/168
		if score < 0 {
			return 0
		}
		return int(math.Round(score))
	}
}

// Performance tổng hợp lịch sử điểm của một học sinh
type Performance struct {
	Average      float64 `json:"average_grade"`
	Tier         string  `json:"tier,omitempty"`
	RecentGrades []int   `json:"recent_grades"`
	GradedCount  int     `json:"graded_count"`
}

// ComputePerformance tính trung bình, phân hạng và 3 điểm gần nhất
func ComputePerformance(grades []int) Performance {
	perf := Performance{RecentGrades: []int{}}
	if len(grades) == 0 {
		return perf
	}

	sum := 0
	for _, g := range grades {
		sum += g
	}
	perf.GradedCount = len(grades)
	perf.Average = float64(sum) / float64(len(grades))

	switch {
	case perf.Average >= 80:
		perf.Tier = TierGood
	case perf.Average >= 60:
		perf.Tier = TierNeedsImprovement
	default:
		perf.Tier = TierStruggling
	}

	recent := grades
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}
	perf.RecentGrades = append(perf.RecentGrades, recent...)
	return perf
}

// classGrades gom mọi điểm đã chấm của học sinh trong một lớp,
// theo thứ tự xuất hiện (bài cũ trước)
func classGrades(class models.Classroom, email string) []int {
	var grades []int
	for _, a := range class.Assignments {
		for _, s := range a.Submissions {
			if s.StudentEmail == email && s.Grade != nil {
				grades = append(grades, int(*s.Grade))
			}
		}
	}
	return grades
}

// TeacherOverseesStudent: giáo viên chỉ được xem dữ liệu của học sinh
// có chung ít nhất một lớp với mình
func TeacherOverseesStudent(doc *models.ClassroomsDocument, teacherEmail, studentEmail string) bool {
	for _, c := range doc.Classrooms {
		if c.HasTeacher(teacherEmail) && c.HasStudent(studentEmail) {
			return true
		}
	}
	return false
}

// StudentGrades gom điểm của học sinh trên toàn bộ các lớp
func StudentGrades(doc *models.ClassroomsDocument, email string) []int {
	var grades []int
	for _, c := range doc.Classrooms {
		grades = append(grades, classGrades(c, email)...)
	}
	return grades
}
