package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
)

// maxHistoryTurns: quá ngưỡng này thì nén toàn bộ lịch sử thành một lượt
// tóm tắt để chặn context (và chi phí) phình vô hạn
const maxHistoryTurns = 50

// ConversationStore giữ lịch sử hội thoại theo key (role, email).
// Ghi đè kiểu last-write-wins cho mỗi key, đúng mô hình một request một lúc.
type ConversationStore struct {
	mu        sync.Mutex
	ai        AIClient
	histories map[string][]ChatMessage
}

func NewConversationStore(ai AIClient) *ConversationStore {
	return &ConversationStore{
		ai:        ai,
		histories: make(map[string][]ChatMessage),
	}
}

func convKey(role, email string) string {
	return role + "|" + email
}

// History trả về bản sao lịch sử hiện tại
func (c *ConversationStore) History(role, email string) []ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	history := c.histories[convKey(role, email)]
	out := make([]ChatMessage, len(history))
	copy(out, history)
	return out
}

// Append thêm một lượt vào lịch sử; vượt ngưỡng thì gọi đúng một lần tóm tắt
// và reset lịch sử về [lượt tóm tắt, lượt vừa thêm]. Tóm tắt lỗi thì giữ
// nguyên lịch sử và thử lại ở lượt sau. Trả về bản sao lịch sử sau khi thêm.
func (c *ConversationStore) Append(ctx context.Context, role, email string, turn ChatMessage) []ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := convKey(role, email)
	history := append(c.histories[key], turn)

	if len(history) > maxHistoryTurns {
		if summary, err := c.summarize(ctx, history); err == nil {
			history = []ChatMessage{
				{Role: "system", Content: "Summary of the conversation so far: " + summary},
				turn,
			}
		} else {
			log.Printf("conversation summarization failed for %s: %v", key, err)
		}
	}

	c.histories[key] = history
	out := make([]ChatMessage, len(history))
	copy(out, history)
	return out
}

// Reset xoá lịch sử của một người dùng
func (c *ConversationStore) Reset(role, email string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.histories, convKey(role, email))
}

func (c *ConversationStore) summarize(ctx context.Context, history []ChatMessage) (string, error) {
	var sb strings.Builder
	for _, m := range history {
		fmt.Fprintf(&sb, "%s: %s\n", m.Role, m.Content)
	}

	summary, err := c.ai.Complete(ctx, ChatRequest{
		System: "Summarize the following tutoring conversation in a compact paragraph. " +
			"Keep the topics discussed, what the user was working on, and any commitments or open questions.",
		Messages:    []ChatMessage{{Role: "user", Content: sb.String()}},
		MaxTokens:   400,
		Temperature: 0.3,
	})
	if err != nil {
		return "", err
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", externalf("empty summary")
	}
	return summary, nil
}
