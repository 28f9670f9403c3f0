package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sashabaranov/go-openai"
)

type IChatGPT interface {
	ProcessConversation(ctx context.Context, userMessage string, conversationHistory []ConversationMessage) (string, error)
	ClassifyIntent(ctx context.Context, userMessage string, knownIntents []IntentInfo) (*ClassificationResult, error)
	RerankCandidates(ctx context.Context, userMessage string, candidates []IntentInfo) (*RerankResult, error)
}

type ConversationMessage struct {
	Role    string `json:"role"`    // "system", "user", "assistant"
	Content string `json:"content"`
}

type IntentInfo struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type DetectedIntent struct {
	Code       string                 `json:"code"`
	Confidence float64                `json:"confidence"`
	Params     map[string]interface{} `json:"params,omitempty"`
}

type ClassificationResult struct {
	Intents               []DetectedIntent `json:"intents"`
	NeedsClarification    bool             `json:"needs_clarification"`
	ClarificationQuestion string           `json:"clarification_question,omitempty"`
	Confidence            float64          `json:"confidence"`
}

type RerankResult struct {
	Code       string  `json:"code"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason,omitempty"`
}

type chatGPTService struct {
	client *openai.Client
	model  string
}

func NewChatGPT() IChatGPT {
	apiKey := os.Getenv("OPENAI_API_KEY")
	model := os.Getenv("OPENAI_CHAT_MODEL")

	if model == "" {
		model = openai.GPT4 // or GPT3Dot5Turbo for cheaper option
	}

	return &chatGPTService{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (c *chatGPTService) ProcessConversation(
	ctx context.Context,
	userMessage string,
	conversationHistory []ConversationMessage,
) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{
			Role: openai.ChatMessageRoleSystem,
			Content: `Kamu adalah Pabrik AI, asisten operasional pabrik yang membantu operator dan supervisor.

Tugas kamu:
1. Menjawab pertanyaan seputar operasi pabrik (produksi, kualitas, timbangan, data)
2. Membantu pengguna memahami hasil query yang baru dijalankan
3. Mengarahkan pengguna ke perintah yang tepat jika maksudnya kurang jelas

Aturan penting:
- SELALU jawab dalam Bahasa Indonesia yang ringkas dan jelas
- Jawaban maksimal 2-3 kalimat
- Jangan mengarang data: jika data tidak tersedia, katakan perintah apa yang bisa dijalankan
- Untuk perintah operasional (mulai/hentikan produksi), minta konfirmasi eksplisit

Contoh:
User: "Gimana kualitas produksi hari ini?"
Assistant: "Untuk melihat hasil inspeksi hari ini, jalankan perintah cek kualitas. Mau saya jalankan?"`,
		},
	}

	// Add conversation history
	for _, msg := range conversationHistory {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	// Add current user message
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userMessage,
	})

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:       c.model,
			Messages:    messages,
			Temperature: 0.7,
			MaxTokens:   150,
		},
	)

	if err != nil {
		return "", fmt.Errorf("ChatGPT API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from ChatGPT")
	}

	return resp.Choices[0].Message.Content, nil
}

func (c *chatGPTService) ClassifyIntent(
	ctx context.Context,
	userMessage string,
	knownIntents []IntentInfo,
) (*ClassificationResult, error) {
	catalog, err := json.Marshal(knownIntents)
	if err != nil {
		return nil, err
	}

	systemPrompt := fmt.Sprintf(`You are an intent classifier for a factory operations assistant. Map the user command onto zero or more intents from the catalog below. A single command may contain several intents.

IMPORTANT: Return ONLY valid JSON, nothing else.

Format:
{
  "intents": [{"code": "QUALITY_STATS", "confidence": 0.9, "params": {"period": "month"}}],
  "needs_clarification": false,
  "clarification_question": "",
  "confidence": 0.9
}

Rules:
- Only use intent codes from the catalog
- confidence per intent and overall, both in [0.0, 1.0]
- Extract parameters the user mentioned (line, period, product, shift) into params
- If the command is ambiguous between catalog intents, set needs_clarification=true and ask in Bahasa Indonesia
- If nothing matches, return an empty intents array

Intent catalog:
%s`, string(catalog))

	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		},
		{
			Role:    openai.ChatMessageRoleUser,
			Content: userMessage,
		},
	}

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:       c.model,
			Messages:    messages,
			Temperature: 0.3,
			MaxTokens:   400,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		},
	)

	if err != nil {
		return nil, fmt.Errorf("ChatGPT API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from ChatGPT")
	}

	var result ClassificationResult
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &result); err != nil {
		return nil, fmt.Errorf("failed to parse classification result: %w", err)
	}

	return &result, nil
}

func (c *chatGPTService) RerankCandidates(
	ctx context.Context,
	userMessage string,
	candidates []IntentInfo,
) (*RerankResult, error) {
	catalog, err := json.Marshal(candidates)
	if err != nil {
		return nil, err
	}

	systemPrompt := fmt.Sprintf(`You are a reranker for a factory operations assistant. Pick the ONE candidate intent that best matches the user command.

IMPORTANT: Return ONLY valid JSON, nothing else.

Format:
{"code": "QUALITY_STATS", "confidence": 0.85, "reason": "user asked for monthly quality numbers"}

Rules:
- code MUST be one of the candidate codes
- confidence in [0.0, 1.0]

Candidates:
%s`, string(catalog))

	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		},
		{
			Role:    openai.ChatMessageRoleUser,
			Content: userMessage,
		},
	}

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:       c.model,
			Messages:    messages,
			Temperature: 0.2,
			MaxTokens:   150,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		},
	)

	if err != nil {
		return nil, fmt.Errorf("ChatGPT API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from ChatGPT")
	}

	var result RerankResult
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &result); err != nil {
		return nil, fmt.Errorf("failed to parse rerank result: %w", err)
	}

	return &result, nil
}
