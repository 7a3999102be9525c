package services

import (
	"context"
	"strings"
	"time"

	"google.golang.org/genai"
)

// Contract chat-completion tối giản: model chỉ cần nhận system prompt +
// danh sách lượt {role, content} và trả về text. Core không phụ thuộc SDK nào.
type ChatMessage struct {
	Role    string `json:"role"` // "user" | "assistant" | "system"
	Content string `json:"content"`
}

type ChatRequest struct {
	System      string
	Messages    []ChatMessage
	MaxTokens   int32
	Temperature float32
	Seed        *int32 // để chấm AI tái lập được trên cùng nội dung
}

type AIClient interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// aiCallTimeout chặn request treo vô hạn khi gọi model
const aiCallTimeout = 30 * time.Second

// GeminiClient hiện thực AIClient qua Gemini
type GeminiClient struct {
	apiKey string
	model  string
}

func NewGeminiClient(apiKey, model string) *GeminiClient {
	return &GeminiClient{apiKey: apiKey, model: model}
}

func (g *GeminiClient) Complete(ctx context.Context, req ChatRequest) (string, error) {
	if len(req.Messages) == 0 {
		return "", externalf("empty message list")
	}

	ctx, cancel := context.WithTimeout(ctx, aiCallTimeout)
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", externalf("cannot create Gemini client: %v", err)
	}

	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		contents = append(contents, genai.NewContentFromText(m.Content, genaiRole(m.Role)))
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, contents, generationConfig(req))
	if err != nil {
		return "", externalf("Gemini call failed: %v", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", externalf("Gemini returned no usable candidate")
	}
	return text, nil
}

// generationConfig ánh xạ ChatRequest sang config của SDK, seed được truyền
// nguyên vẹn xuống vendor
func generationConfig(req ChatRequest) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = req.MaxTokens
	}
	if req.Seed != nil {
		seed := *req.Seed
		config.Seed = &seed
	}
	return config
}

// Gemini chỉ nhận role "user"/"model"; các lượt system đã gom vào SystemInstruction
func genaiRole(role string) genai.Role {
	switch role {
	case "assistant", "model", "system":
		return genai.RoleModel
	default:
		return genai.RoleUser
	}
}
