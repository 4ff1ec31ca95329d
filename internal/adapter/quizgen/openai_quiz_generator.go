package quizgen

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"synapse/internal/config"
	"synapse/internal/domain"
	"synapse/internal/logger"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

// OpenAIQuizGenerator implements domain.QuizGenerator against any
// OpenAI-compatible chat completions endpoint.
type OpenAIQuizGenerator struct {
	llm         llms.Model
	temperature float64
	timeout     time.Duration
}

// NewOpenAIQuizGenerator builds the langchaingo client from cfg. The HTTP
// client records upstream status codes so 429 and 402 can be told apart.
func NewOpenAIQuizGenerator(cfg config.LLMConfig) (domain.QuizGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("LLM API key cannot be empty")
	}
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithHTTPClient(&statusRecordingClient{inner: &http.Client{}}),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Model != "" {
		opts = append(opts, openai.WithModel(cfg.Model))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create LangchainGo OpenAI client: %w", err)
	}
	logger.Named("quizgen").Info("Initialized LLM quiz generator", zap.String("base_url", cfg.BaseURL), zap.String("model", cfg.Model))
	return NewQuizGeneratorWithModel(llm, cfg.Temperature, cfg.Timeout), nil
}

// NewQuizGeneratorWithModel wraps an existing llms.Model.
func NewQuizGeneratorWithModel(llm llms.Model, temperature float64, timeout time.Duration) *OpenAIQuizGenerator {
	if temperature <= 0 {
		temperature = 0.7
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAIQuizGenerator{llm: llm, temperature: temperature, timeout: timeout}
}

// Generate performs one completion round trip. Failures are never retried.
func (g *OpenAIQuizGenerator) Generate(ctx context.Context, req domain.GenerationRequest) ([]domain.GeneratedQuestion, error) {
	l := logger.Named("quizgen")

	content := truncateContent(strings.TrimSpace(req.Content))
	if content == "" {
		return nil, domain.ValidationErrors{domain.NewMissingFieldError("content")}
	}
	difficulty := req.Difficulty
	if !difficulty.Valid() {
		difficulty = domain.DifficultyMedium
	}
	count := domain.ClampQuestionCount(req.QuestionCount)

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, buildSystemPrompt(difficulty, count)),
		llms.TextParts(llms.ChatMessageTypeHuman, buildUserPrompt(content, difficulty, count)),
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	rec := &statusRecorder{}
	ctx = context.WithValue(ctx, statusRecorderKey{}, rec)

	l.Info("Requesting quiz generation", zap.Int("question_count", count), zap.String("difficulty", string(difficulty)), zap.Int("content_chars", len([]rune(content))))

	resp, err := g.llm.GenerateContent(ctx, messages, llms.WithTemperature(g.temperature))
	if err != nil {
		mapped := classifyUpstreamError(rec, err)
		l.Error("LLM generation failed", zap.Error(err), zap.Int("upstream_status", rec.Status()))
		return nil, mapped
	}
	if resp == nil || len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return nil, domain.NewParseError("model returned no content", nil)
	}

	questions, err := parseQuestions(resp.Choices[0].Content)
	if err != nil {
		l.Warn("Failed to parse model response", zap.Error(err))
		return nil, err
	}
	l.Info("Quiz questions generated", zap.Int("count", len(questions)))
	return questions, nil
}

func classifyUpstreamError(rec *statusRecorder, err error) error {
	switch rec.Status() {
	case http.StatusTooManyRequests:
		return domain.NewRateLimitedError(err)
	case http.StatusPaymentRequired:
		return domain.NewQuotaExhaustedError(err)
	}
	// Fakes and clients that bypass the recorder still surface the code in text.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "status code: 429"), strings.Contains(msg, "429 Too Many Requests"):
		return domain.NewRateLimitedError(err)
	case strings.Contains(msg, "status code: 402"), strings.Contains(msg, "402 Payment Required"):
		return domain.NewQuotaExhaustedError(err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewNetworkError(fmt.Errorf("LLM request timed out: %w", err))
	}
	return domain.NewNetworkError(err)
}

type statusRecorderKey struct{}

type statusRecorder struct {
	mu     sync.Mutex
	status int
}

func (r *statusRecorder) set(code int) {
	r.mu.Lock()
	r.status = code
	r.mu.Unlock()
}

func (r *statusRecorder) Status() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// statusRecordingClient satisfies langchaingo's Doer and reports the last
// response status to the recorder carried in the request context.
type statusRecordingClient struct {
	inner *http.Client
}

func (c *statusRecordingClient) Do(req *http.Request) (*http.Response, error) {
	resp, err := c.inner.Do(req)
	if err != nil {
		return nil, err
	}
	if rec, ok := req.Context().Value(statusRecorderKey{}).(*statusRecorder); ok {
		rec.set(resp.StatusCode)
	}
	return resp, nil
}

var _ domain.QuizGenerator = (*OpenAIQuizGenerator)(nil)
