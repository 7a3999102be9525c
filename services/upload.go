package services

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
)

// MaxUploadSize giới hạn file bài nộp 16MB
const MaxUploadSize = 16 << 20

var allowedExtensions = map[string]bool{
	".txt":  true,
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".doc":  true,
	".docx": true,
}

// UploadStore lưu file bài nộp phẳng trong một thư mục uploads/,
// tên file {student_email}_{assignment_id}_{original_filename}
type UploadStore struct {
	dir string
}

func NewUploadStore(dir string) (*UploadStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create upload dir %s: %w", dir, err)
	}
	return &UploadStore{dir: dir}, nil
}

func (u *UploadStore) Dir() string { return u.dir }

// Save kiểm tra phần mở rộng + kích thước rồi ghi file, trả về tên đã lưu
func (u *UploadStore) Save(studentEmail, assignmentID, originalName string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExtensions[ext] {
		return "", validationf("file type %q is not allowed", ext)
	}
	if len(data) > MaxUploadSize {
		return "", validationf("file exceeds the 16MB limit")
	}

	name := StoredFilename(studentEmail, assignmentID, originalName)
	if err := os.WriteFile(filepath.Join(u.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("cannot store upload %s: %w", name, err)
	}
	return name, nil
}

// Delete xoá file đính kèm; file không tồn tại thì bỏ qua
func (u *UploadStore) Delete(storedName string) {
	if storedName == "" {
		return
	}
	if err := os.Remove(filepath.Join(u.dir, storedName)); err != nil && !os.IsNotExist(err) {
		log.Printf("cannot delete upload %s: %v", storedName, err)
	}
}

func (u *UploadStore) Path(storedName string) string {
	if storedName == "" {
		return ""
	}
	return filepath.Join(u.dir, storedName)
}

// StoredFilename ghép tên file lưu trữ; phần tên gốc được slug hoá để
// loại ký tự lạ nhưng giữ nguyên phần mở rộng
func StoredFilename(studentEmail, assignmentID, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	base := strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName))
	safe := slug.Make(base)
	if safe == "" {
		safe = "file"
	}
	return fmt.Sprintf("%s_%s_%s%s", studentEmail, assignmentID, safe, ext)
}
