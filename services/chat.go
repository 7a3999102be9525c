package services

import (
	"context"
	"log"
	"time"

	"github.com/studycoach/studycoach-backend/models"
	"github.com/studycoach/studycoach-backend/storage"
)

// ChatService nối các mảnh lại: dựng context theo người hỏi, quản lý lịch sử
// hội thoại và gọi model
type ChatService struct {
	store         *storage.Store
	assembler     *ContextAssembler
	conversations *ConversationStore
	ai            AIClient
}

func NewChatService(store *storage.Store, assembler *ContextAssembler, conversations *ConversationStore, ai AIClient) *ChatService {
	return &ChatService{store: store, assembler: assembler, conversations: conversations, ai: ai}
}

// Chat xử lý một lượt hỏi đáp. Lượt của người dùng luôn được ghi vào lịch sử
// trước khi gọi model; học sinh gửi tin nhắn cũng là một hành động hoạt động.
func (s *ChatService) Chat(ctx context.Context, role, email, classCode, personality, prompt string) (string, error) {
	if prompt == "" {
		return "", validationf("prompt is required")
	}

	system, err := s.assembler.BuildChatContext(role, email, classCode, personality)
	if err != nil {
		return "", err
	}

	history := s.conversations.Append(ctx, role, email, ChatMessage{Role: "user", Content: prompt})

	reply, err := s.ai.Complete(ctx, ChatRequest{
		System:      system,
		Messages:    history,
		MaxTokens:   1000,
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}

	s.conversations.Append(ctx, role, email, ChatMessage{Role: "assistant", Content: reply})

	if role == models.RoleStudent {
		// chỉ là dấu hoạt động, lỗi không làm hỏng lượt chat
		if err := RecordStudentActivity(s.store, email); err != nil {
			log.Printf("cannot record chat activity for %s: %v", email, err)
		}
	}
	return reply, nil
}

// History trả về lịch sử hội thoại hiện tại của người dùng
func (s *ChatService) History(role, email string) []ChatMessage {
	return s.conversations.History(role, email)
}

// RecordStudentActivity đóng dấu hoạt động của học sinh vào users.json
func RecordStudentActivity(store *storage.Store, email string) error {
	return store.UpdateUsers(func(users *models.UsersDocument) error {
		if student := users.FindStudent(email); student != nil {
			TouchStudentActivity(student, time.Now().UTC())
		}
		return nil
	})
}
