package services

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/studycoach/studycoach-backend/models"
	"github.com/studycoach/studycoach-backend/storage"
)

// FallbackGrade là điểm mặc định khi model lỗi hoặc trả lời không parse được.
// UI phân biệt điểm này với điểm thật qua cờ grade_is_fallback.
const FallbackGrade = 75

const fallbackFeedback = "Automatic grading could not produce a reliable result for this submission. " +
	"A provisional grade has been assigned; please review the work manually."

// GradingService chấm tay và chấm bằng AI
type GradingService struct {
	store   *storage.Store
	uploads *UploadStore
	ai      AIClient
}

func NewGradingService(store *storage.Store, uploads *UploadStore, ai AIClient) *GradingService {
	return &GradingService{store: store, uploads: uploads, ai: ai}
}

type GradeInput struct {
	AssignmentID    string
	StudentEmail    string
	Grade           int
	Feedback        string
	EnhanceFeedback bool // nhờ AI viết lại feedback, best-effort
}

// GradeAssignment chấm tay. Điểm ngoài [0,100] bị từ chối trước khi ghi.
// Bước enhance feedback lỗi thì giữ nguyên feedback gốc, không bao giờ
// làm hỏng thao tác chấm.
func (g *GradingService) GradeAssignment(ctx context.Context, teacherEmail string, in GradeInput) (*models.Submission, error) {
	if in.Grade < 0 || in.Grade > 100 {
		return nil, ErrInvalidGrade
	}

	feedback := in.Feedback
	if in.EnhanceFeedback {
		// Gọi model ngoài lock của store để không chặn writer khác
		classrooms, err := g.store.LoadClassrooms()
		if err != nil {
			return nil, err
		}
		_, assignment := classrooms.FindAssignment(in.AssignmentID)
		if assignment != nil {
			feedback = g.enhanceFeedback(ctx, assignment.Title, in.Grade, in.Feedback)
		}
	}

	return g.writeGrade(teacherEmail, in.AssignmentID, in.StudentEmail, GradeResult{
		Grade:    in.Grade,
		Feedback: feedback,
	}, teacherEmail)
}

// AIGradeAssignment chấm tự động: dựng prompt từ bài tập + các kênh nội dung
// của bài nộp + rubric (nếu còn), seed lấy từ hash nội dung để chấm lại trên
// nội dung không đổi cho cùng kết quả. Model lỗi -> điểm fallback có cắm cờ.
func (g *GradingService) AIGradeAssignment(ctx context.Context, teacherEmail, assignmentID, studentEmail string) (*models.Submission, error) {
	classrooms, err := g.store.LoadClassrooms()
	if err != nil {
		return nil, err
	}
	classroom, assignment := classrooms.FindAssignment(assignmentID)
	if assignment == nil {
		return nil, notFoundf("assignment %s not found", assignmentID)
	}
	if !classroom.HasTeacher(teacherEmail) {
		return nil, authorizationf("you do not teach class %s", classroom.ClassName)
	}
	sub, _ := assignment.FindSubmission(studentEmail)
	if sub == nil {
		return nil, notFoundf("no submission from %s for this assignment", studentEmail)
	}

	prompt := g.buildGradingPrompt(classroom, assignment, sub)
	seed := ContentSeed(assignment, sub)

	var result GradeResult
	raw, err := g.ai.Complete(ctx, ChatRequest{
		System: "You are an experienced teacher grading student work. " +
			"Reply in exactly this format:\nGRADE: <integer 0-100>\nFEEDBACK: <2-4 sentences of constructive feedback>",
		Messages:    []ChatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   600,
		Temperature: 0.2,
		Seed:        &seed,
	})
	if err != nil {
		log.Printf("AI grading failed for assignment %s, student %s: %v", assignmentID, studentEmail, err)
		result = GradeResult{Grade: FallbackGrade, Feedback: fallbackFeedback, Fallback: true}
	} else {
		result = ParseGradeResponse(raw)
	}

	gradedBy := fmt.Sprintf("AI (via %s)", teacherEmail)
	return g.writeGrade(teacherEmail, assignmentID, studentEmail, result, gradedBy)
}

// writeGrade định vị lại bài nộp dưới lock rồi ghi điểm (idempotent,
// chấm lại ghi đè và đóng dấu thời gian mới)
func (g *GradingService) writeGrade(teacherEmail, assignmentID, studentEmail string, result GradeResult, gradedBy string) (*models.Submission, error) {
	result.Grade = clampGrade(result.Grade)

	var graded *models.Submission
	err := g.store.UpdateClassrooms(func(classrooms *models.ClassroomsDocument) error {
		classroom, assignment := classrooms.FindAssignment(assignmentID)
		if assignment == nil {
			return notFoundf("assignment %s not found", assignmentID)
		}
		if !classroom.HasTeacher(teacherEmail) {
			return authorizationf("you do not teach class %s", classroom.ClassName)
		}
		sub, _ := assignment.FindSubmission(studentEmail)
		if sub == nil {
			return notFoundf("no submission from %s for this assignment", studentEmail)
		}

		grade := models.Grade(result.Grade)
		sub.Grade = &grade
		sub.Feedback = result.Feedback
		sub.GradedBy = gradedBy
		sub.GradedTimestamp = time.Now().UTC().Format(time.RFC3339)
		sub.GradeIsFallback = result.Fallback

		copied := *sub
		graded = &copied
		return nil
	})
	if err != nil {
		return nil, err
	}
	return graded, nil
}

func (g *GradingService) buildGradingPrompt(classroom *models.Classroom, assignment *models.Assignment, sub *models.Submission) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Grade the following student submission.\n\nAssignment: %s\n", assignment.Title)
	if assignment.Description != "" {
		fmt.Fprintf(&sb, "Assignment description: %s\n", assignment.Description)
	}
	if assignment.Content != "" {
		fmt.Fprintf(&sb, "Assignment material: %s\n", assignment.Content)
	}
	if rubric := classroom.FindRubric(assignment.RubricID); rubric != nil {
		fmt.Fprintf(&sb, "\nGrading rubric (%s):\n%s\n", rubric.Title, rubric.Content)
	}

	sb.WriteString("\nStudent submission:\n")
	if sub.SubmissionText != "" {
		fmt.Fprintf(&sb, "Submitted text:\n%s\n", sub.SubmissionText)
	}
	if sub.SubmissionLink != "" {
		fmt.Fprintf(&sb, "Submitted link: %s\n", sub.SubmissionLink)
	}
	if sub.Filename != "" {
		fmt.Fprintf(&sb, "Submitted file content:\n%s\n", ReadSubmissionFile(g.uploads.Path(sub.Filename)))
	}

	sb.WriteString("\nGrade only the quality of the content actually provided; do not penalize the choice of submission method.")
	return sb.String()
}

// enhanceFeedback nhờ model trau chuốt feedback của giáo viên; lỗi thì giữ bản gốc
func (g *GradingService) enhanceFeedback(ctx context.Context, assignmentTitle string, grade int, draft string) string {
	if strings.TrimSpace(draft) == "" {
		return draft
	}
	prompt := fmt.Sprintf(
		"Improve the following feedback for a student. Assignment: %q. Grade given: %d/100.\n\nDraft feedback:\n%s\n\nRewrite it to be clear, specific and encouraging. Keep the same meaning and judgement, return only the improved feedback text.",
		assignmentTitle, grade, draft)

	enhanced, err := g.ai.Complete(ctx, ChatRequest{
		System:      "You are an assistant that polishes teacher feedback without changing its meaning.",
		Messages:    []ChatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   400,
		Temperature: 0.6,
	})
	if err != nil || strings.TrimSpace(enhanced) == "" {
		log.Printf("feedback enhancement failed, keeping original: %v", err)
		return draft
	}
	return strings.TrimSpace(enhanced)
}

// ContentSeed băm toàn bộ trường nội dung của bài tập + bài nộp thành seed
// cho model: nội dung không đổi -> seed không đổi -> chấm lại không trôi điểm
func ContentSeed(assignment *models.Assignment, sub *models.Submission) int32 {
	h := sha256.New()
	for _, field := range []string{
		assignment.ID, assignment.Title, assignment.Description, assignment.Content, assignment.RubricID,
		sub.StudentEmail, sub.SubmissionText, sub.SubmissionLink, sub.Filename,
	} {
		h.Write([]byte(field))
		h.Write([]byte{0})
	}
	sum := h.Sum(nil)
	return int32(binary.BigEndian.Uint32(sum[:4]) & 0x7fffffff)
}

// GradeResult là kết quả đã chuẩn hoá của một lần chấm
type GradeResult struct {
	Grade    int
	Feedback string
	Fallback bool // true: điểm mặc định, không phải phán quyết của model
}

var (
	gradeLineRe  = regexp.MustCompile(`(?im)^[\s*#]*GRADE\s*[:=]\s*(\d{1,3})`)
	feedbackRe   = regexp.MustCompile(`(?is)FEEDBACK\s*[:=]\s*(.+)$`)
	bareNumberRe = regexp.MustCompile(`\b(\d{1,3})\b`)
)

// ParseGradeResponse chứa toàn bộ chuỗi fallback cho output tự do của model:
// trường có nhãn -> số trần đầu tiên trong [0,100] -> điểm mặc định.
// Không bao giờ trả lỗi: output hỏng chỉ làm điểm rơi về mặc định có cắm cờ.
func ParseGradeResponse(text string) GradeResult {
	trimmed := strings.TrimSpace(text)

	if m := gradeLineRe.FindStringSubmatch(trimmed); m != nil {
		grade, _ := strconv.Atoi(m[1])
		feedback := trimmed
		if fm := feedbackRe.FindStringSubmatch(trimmed); fm != nil {
			feedback = strings.TrimSpace(fm[1])
		}
		return GradeResult{Grade: clampGrade(grade), Feedback: feedback}
	}

	for _, m := range bareNumberRe.FindAllStringSubmatch(trimmed, -1) {
		n, err := strconv.Atoi(m[1])
		if err == nil && n >= 0 && n <= 100 {
			return GradeResult{Grade: n, Feedback: trimmed}
		}
	}

	log.Printf("unparsable grading response, using fallback grade %d: %.120q", FallbackGrade, text)
	feedback := trimmed
	if feedback == "" {
		feedback = fallbackFeedback
	}
	return GradeResult{Grade: FallbackGrade, Feedback: feedback, Fallback: true}
}

func clampGrade(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
