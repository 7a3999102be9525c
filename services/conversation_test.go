package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studycoach/studycoach-backend/models"
)

func TestConversationStoreAppend(t *testing.T) {
	ctx := context.Background()

	t.Run("history grows below the threshold", func(t *testing.T) {
		ai := &stubAI{}
		cs := NewConversationStore(ai)

		for i := 0; i < maxHistoryTurns; i++ {
			cs.Append(ctx, models.RoleStudent, testStudentEmail, ChatMessage{Role: "user", Content: fmt.Sprintf("turn %d", i)})
		}

		history := cs.History(models.RoleStudent, testStudentEmail)
		assert.Len(t, history, maxHistoryTurns)
		assert.Empty(t, ai.calls, "no summarization below the threshold")
	})

	t.Run("crossing the threshold compacts to summary plus latest turn", func(t *testing.T) {
		ai := &stubAI{replies: []string{"they discussed essays"}}
		cs := NewConversationStore(ai)

		for i := 0; i <= maxHistoryTurns; i++ {
			cs.Append(ctx, models.RoleStudent, testStudentEmail, ChatMessage{Role: "user", Content: fmt.Sprintf("turn %d", i)})
		}

		history := cs.History(models.RoleStudent, testStudentEmail)
		require.Len(t, history, 2)
		assert.Equal(t, "system", history[0].Role)
		assert.Contains(t, history[0].Content, "they discussed essays")
		assert.Equal(t, fmt.Sprintf("turn %d", maxHistoryTurns), history[1].Content)
		assert.Len(t, ai.calls, 1, "exactly one summarization call")
	})

	t.Run("summarization failure keeps the full history", func(t *testing.T) {
		ai := &stubAI{err: errors.New("model down")}
		cs := NewConversationStore(ai)

		for i := 0; i <= maxHistoryTurns; i++ {
			cs.Append(ctx, models.RoleStudent, testStudentEmail, ChatMessage{Role: "user", Content: fmt.Sprintf("turn %d", i)})
		}

		history := cs.History(models.RoleStudent, testStudentEmail)
		assert.Len(t, history, maxHistoryTurns+1)
	})

	t.Run("histories are keyed by role and email", func(t *testing.T) {
		cs := NewConversationStore(&stubAI{})
		cs.Append(ctx, models.RoleStudent, testStudentEmail, ChatMessage{Role: "user", Content: "student turn"})
		cs.Append(ctx, models.RoleTeacher, testTeacherEmail, ChatMessage{Role: "user", Content: "teacher turn"})

		assert.Len(t, cs.History(models.RoleStudent, testStudentEmail), 1)
		assert.Len(t, cs.History(models.RoleTeacher, testTeacherEmail), 1)
		assert.Empty(t, cs.History(models.RoleTeacher, testStudentEmail))
	})

	t.Run("returned history is a copy", func(t *testing.T) {
		cs := NewConversationStore(&stubAI{})
		cs.Append(ctx, models.RoleStudent, testStudentEmail, ChatMessage{Role: "user", Content: "original"})

		history := cs.History(models.RoleStudent, testStudentEmail)
		history[0].Content = "tampered"

		assert.Equal(t, "original", cs.History(models.RoleStudent, testStudentEmail)[0].Content)
	})
}

func TestConversationStoreReset(t *testing.T) {
	cs := NewConversationStore(&stubAI{})
	ctx := context.Background()

	cs.Append(ctx, models.RoleStudent, testStudentEmail, ChatMessage{Role: "user", Content: "hello"})
	cs.Reset(models.RoleStudent, testStudentEmail)

	assert.Empty(t, cs.History(models.RoleStudent, testStudentEmail))
}

func TestChatService(t *testing.T) {
	newChat := func(t *testing.T, ai AIClient) (*ChatService, *ConversationStore) {
		store := newTestStore(t)
		seedClassData(t, store)
		conversations := NewConversationStore(ai)
		return NewChatService(store, NewContextAssembler(store), conversations, ai), conversations
	}

	t.Run("round trip records both turns", func(t *testing.T) {
		ai := &stubAI{replies: []string{"Here is a hint."}}
		svc, conversations := newChat(t, ai)

		reply, err := svc.Chat(context.Background(), models.RoleStudent, testStudentEmail, "", "", "Help me with my essay")
		require.NoError(t, err)
		assert.Equal(t, "Here is a hint.", reply)

		history := conversations.History(models.RoleStudent, testStudentEmail)
		require.Len(t, history, 2)
		assert.Equal(t, "user", history[0].Role)
		assert.Equal(t, "assistant", history[1].Role)

		// system prompt mang context lớp của học sinh
		require.NotEmpty(t, ai.calls)
		assert.Contains(t, ai.calls[0].System, "Văn 10A")
	})

	t.Run("empty prompt is rejected", func(t *testing.T) {
		svc, _ := newChat(t, &stubAI{})
		_, err := svc.Chat(context.Background(), models.RoleStudent, testStudentEmail, "", "", "")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("model failure keeps the user turn for retry", func(t *testing.T) {
		ai := &stubAI{err: errors.New("model down")}
		svc, conversations := newChat(t, ai)

		_, err := svc.Chat(context.Background(), models.RoleStudent, testStudentEmail, "", "", "Help me")
		require.Error(t, err)

		history := conversations.History(models.RoleStudent, testStudentEmail)
		require.Len(t, history, 1)
		assert.Equal(t, "user", history[0].Role)
	})
}
