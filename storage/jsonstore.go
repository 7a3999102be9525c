package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/studycoach/studycoach-backend/models"
)

const (
	usersFile      = "users.json"
	classroomsFile = "classrooms.json"
)

// Store đọc/ghi hai document JSON (users.json, classrooms.json).
// Mỗi document một mutex: đọc toàn bộ -> sửa trong bộ nhớ -> ghi toàn bộ,
// ghi ra file chỉ khi closure mutate trả về nil.
type Store struct {
	usersPath      string
	classroomsPath string

	usersMu      sync.Mutex
	classroomsMu sync.Mutex
}

func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create data dir %s: %w", dataDir, err)
	}
	return &Store{
		usersPath:      filepath.Join(dataDir, usersFile),
		classroomsPath: filepath.Join(dataDir, classroomsFile),
	}, nil
}

// LoadUsers trả về bản sao độc lập của users.json (file chưa tồn tại -> document rỗng)
func (s *Store) LoadUsers() (*models.UsersDocument, error) {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()
	return s.readUsers()
}

func (s *Store) LoadClassrooms() (*models.ClassroomsDocument, error) {
	s.classroomsMu.Lock()
	defer s.classroomsMu.Unlock()
	return s.readClassrooms()
}

// UpdateUsers chạy mutate trên bản mới đọc và chỉ commit khi mutate thành công
func (s *Store) UpdateUsers(mutate func(*models.UsersDocument) error) error {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	doc, err := s.readUsers()
	if err != nil {
		return err
	}
	if err := mutate(doc); err != nil {
		return err
	}
	return writeJSON(s.usersPath, doc)
}

func (s *Store) UpdateClassrooms(mutate func(*models.ClassroomsDocument) error) error {
	s.classroomsMu.Lock()
	defer s.classroomsMu.Unlock()

	doc, err := s.readClassrooms()
	if err != nil {
		return err
	}
	if err := mutate(doc); err != nil {
		return err
	}
	return writeJSON(s.classroomsPath, doc)
}

// Update mutate cả hai document trong một lần khoá (vd: nộp bài vừa ghi
// classroom vừa cập nhật last_activity của học sinh).
// Thứ tự khoá cố định users -> classrooms để tránh deadlock.
func (s *Store) Update(mutate func(*models.UsersDocument, *models.ClassroomsDocument) error) error {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()
	s.classroomsMu.Lock()
	defer s.classroomsMu.Unlock()

	users, err := s.readUsers()
	if err != nil {
		return err
	}
	classrooms, err := s.readClassrooms()
	if err != nil {
		return err
	}
	if err := mutate(users, classrooms); err != nil {
		return err
	}
	// Hai lần ghi không atomic với nhau: ghi classrooms (bản ghi chính) trước,
	// nếu ghi users sau đó lỗi thì chỉ mất dấu last_activity, không mất bài nộp
	if err := writeJSON(s.classroomsPath, classrooms); err != nil {
		return err
	}
	return writeJSON(s.usersPath, users)
}

func (s *Store) readUsers() (*models.UsersDocument, error) {
	doc := &models.UsersDocument{}
	if err := readJSON(s.usersPath, doc); err != nil {
		return nil, err
	}
	doc.Migrate()
	return doc, nil
}

func (s *Store) readClassrooms() (*models.ClassroomsDocument, error) {
	doc := &models.ClassroomsDocument{}
	if err := readJSON(s.classroomsPath, doc); err != nil {
		return nil, err
	}
	doc.Migrate()
	return doc, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil // file chưa có -> document rỗng
	}
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("cannot parse %s: %w", path, err)
	}
	return nil
}

// writeJSON ghi indent=2 (ops script sửa tay các file này) và ghi atomic
// qua file tạm + rename để không bao giờ để lại document cụt
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot encode %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("cannot write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("cannot replace %s: %w", path, err)
	}
	return nil
}
