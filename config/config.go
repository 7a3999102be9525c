package config

import (
	"log"
	"os"

	"github.com/studycoach/studycoach-backend/services"
	"github.com/studycoach/studycoach-backend/storage"
)

// Các singleton dùng chung cho toàn app, khởi tạo một lần trong Init
var (
	Store         *storage.Store
	Uploads       *services.UploadStore
	AI            services.AIClient
	Classrooms    *services.ClassroomService
	Submissions   *services.SubmissionService
	Grading       *services.GradingService
	Assembler     *services.ContextAssembler
	Conversations *services.ConversationStore
	Chat          *services.ChatService
)

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Init đọc biến môi trường và dựng store + các service.
// Thiếu GEMINI_API_KEY thì vẫn chạy, các tính năng AI sẽ báo lỗi khi gọi.
func Init() {
	dataDir := getenv("DATA_DIR", ".")
	uploadDir := getenv("UPLOAD_DIR", "uploads")
	geminiKey := os.Getenv("GEMINI_API_KEY")
	geminiModel := getenv("GEMINI_MODEL", "gemini-2.0-flash")

	store, err := storage.NewStore(dataDir)
	if err != nil {
		log.Fatal("Không thể khởi tạo data store:", err)
	}
	uploads, err := services.NewUploadStore(uploadDir)
	if err != nil {
		log.Fatal("Không thể khởi tạo thư mục upload:", err)
	}
	if geminiKey == "" {
		log.Println("GEMINI_API_KEY chưa được cấu hình, các tính năng AI sẽ không hoạt động")
	}

	Store = store
	Uploads = uploads
	AI = services.NewGeminiClient(geminiKey, geminiModel)
	Classrooms = services.NewClassroomService(store)
	Submissions = services.NewSubmissionService(store, uploads)
	Grading = services.NewGradingService(store, uploads, AI)
	Assembler = services.NewContextAssembler(store)
	Conversations = services.NewConversationStore(AI)
	Chat = services.NewChatService(store, Assembler, Conversations, AI)

	log.Println("JSON store & services initialized successfully!")
}
