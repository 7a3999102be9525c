package utils

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/studycoach/studycoach-backend/config"
)

// CleanupOrphanUploads xóa các file trong thư mục upload không còn được
// bài nộp nào tham chiếu (sót lại khi process chết giữa chừng lúc rút bài)
func CleanupOrphanUploads() {
	store := config.Store
	uploads := config.Uploads

	doc, err := store.LoadClassrooms()
	if err != nil {
		log.Printf("Lỗi khi đọc classrooms cho cleanup: %v", err)
		return
	}

	referenced := make(map[string]bool)
	for _, class := range doc.Classrooms {
		for _, a := range class.Assignments {
			for _, s := range a.Submissions {
				if s.Filename != "" {
					referenced[s.Filename] = true
				}
			}
		}
	}

	entries, err := os.ReadDir(uploads.Dir())
	if err != nil {
		log.Printf("Lỗi khi đọc thư mục upload: %v", err)
		return
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || referenced[entry.Name()] {
			continue
		}
		// Chừa lại file mới ghi, có thể bài nộp đang trong quá trình lưu
		info, err := entry.Info()
		if err != nil || time.Since(info.ModTime()) < time.Hour {
			continue
		}
		if err := os.Remove(filepath.Join(uploads.Dir(), entry.Name())); err != nil {
			log.Printf("Lỗi khi xóa file mồ côi %s: %v", entry.Name(), err)
			continue
		}
		removed++
	}

	if removed > 0 {
		log.Printf("Đã xóa %d file upload mồ côi", removed)
	}
}

// StartCleanupJob chạy cleanup job định kỳ
func StartCleanupJob() {
	// Chạy cleanup ngay lần đầu khi khởi động
	log.Println("Đang chạy cleanup lần đầu...")
	CleanupOrphanUploads()

	// Thiết lập ticker để chạy mỗi 6 giờ
	ticker := time.NewTicker(6 * time.Hour)

	go func() {
		defer ticker.Stop()
		for range ticker.C {
			log.Println("Cleanup job được kích hoạt...")
			CleanupOrphanUploads()
		}
	}()

	log.Println("Cleanup job đã được khởi động (chạy mỗi 6 giờ)")
}
