package services

import (
	"errors"
	"fmt"
)

// Phân loại lỗi để tầng web ánh xạ sang HTTP status.
// Mọi lỗi nghiệp vụ đều wrap một trong các sentinel này (errors.Is).
var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
	ErrAuthorization = errors.New("not allowed")
	ErrExternal      = errors.New("external service failure")
)

var (
	// ErrAlreadyGraded: bài nộp đã có điểm thì không được rút lại hay ghi đè khi nộp
	ErrAlreadyGraded = fmt.Errorf("submission has already been graded: %w", ErrValidation)
	// ErrInvalidGrade: điểm hợp lệ là số nguyên trong [0,100]
	ErrInvalidGrade = fmt.Errorf("grade must be an integer between 0 and 100: %w", ErrValidation)
	// ErrEmptySubmission: phải có ít nhất một kênh nội dung sau khi trim khoảng trắng
	ErrEmptySubmission = fmt.Errorf("submission needs text, a link or a file: %w", ErrValidation)
)

func validationf(format string, a ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, a...), ErrValidation)
}

func notFoundf(format string, a ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, a...), ErrNotFound)
}

func authorizationf(format string, a ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, a...), ErrAuthorization)
}

func externalf(format string, a ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, a...), ErrExternal)
}
