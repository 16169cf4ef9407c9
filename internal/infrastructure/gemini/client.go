package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/pgvector/pgvector-go"
	"github.com/sphere-team/sphere-backend/internal/domain"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const (
	defaultModel          = "gemini-1.5-flash"
	defaultEmbeddingModel = "text-embedding-004"
	defaultAnalyzeTimeout = 25 * time.Second
	defaultEmbedTimeout   = 15 * time.Second
)

// Config for the Gemini client. Zero timeouts fall back to the
// defaults above.
type Config struct {
	APIKey         string
	Model          string
	EmbeddingModel string
	AnalyzeTimeout time.Duration
	EmbedTimeout   time.Duration
}

// Client wraps the Gemini API as both the compatibility oracle and the
// embedding provider. The model's output is treated as untrusted text:
// anything that does not parse into the expected contract becomes the
// deterministic fallback result.
type Client struct {
	client         *genai.Client
	model          *genai.GenerativeModel
	embeddingModel *genai.EmbeddingModel
	analyzeTimeout time.Duration
	embedTimeout   time.Duration
	logger         *zap.Logger
}

func NewClient(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = defaultModel
	}
	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.7)

	embeddingName := cfg.EmbeddingModel
	if embeddingName == "" {
		embeddingName = defaultEmbeddingModel
	}

	analyzeTimeout := cfg.AnalyzeTimeout
	if analyzeTimeout <= 0 {
		analyzeTimeout = defaultAnalyzeTimeout
	}
	embedTimeout := cfg.EmbedTimeout
	if embedTimeout <= 0 {
		embedTimeout = defaultEmbedTimeout
	}

	return &Client{
		client:         client,
		model:          model,
		embeddingModel: client.EmbeddingModel(embeddingName),
		analyzeTimeout: analyzeTimeout,
		embedTimeout:   embedTimeout,
		logger:         logger,
	}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// AnalyzeMatch asks the model for a compatibility assessment of the
// two profiles. Transport errors, timeouts and unparseable output all
// degrade to domain.FallbackMatchResult so the matching pipeline keeps
// the candidate alive.
func (c *Client) AnalyzeMatch(ctx context.Context, a, b *domain.Profile, cohortContext string) (*domain.MatchResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.analyzeTimeout)
	defer cancel()

	prompt := buildMatchPrompt(a, b, cohortContext)

	resp, err := c.model.GenerateContent(callCtx, genai.Text(prompt))
	if err != nil {
		c.logger.Warn("gemini analyze call failed, using fallback result",
			zap.String("user_a", a.ID.String()),
			zap.String("user_b", b.ID.String()),
			zap.Error(err),
		)
		return domain.FallbackMatchResult(), nil
	}

	raw := responseText(resp)
	result, err := parseMatchResult(raw)
	if err != nil {
		c.logger.Warn("gemini analyze response unparseable, using fallback result",
			zap.String("user_a", a.ID.String()),
			zap.String("user_b", b.ID.String()),
			zap.String("response_preview", preview(raw, 200)),
			zap.Error(err),
		)
		return domain.FallbackMatchResult(), nil
	}
	return result, nil
}

// EmbedTexts embeds the texts in one batch call, one vector per text
// in input order.
func (c *Client) EmbedTexts(ctx context.Context, texts []string) ([]pgvector.Vector, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, c.embedTimeout)
	defer cancel()

	batch := c.embeddingModel.NewBatch()
	for _, text := range texts {
		batch.AddContent(genai.Text(text))
	}

	resp, err := c.embeddingModel.BatchEmbedContents(callCtx, batch)
	if err != nil {
		return nil, fmt.Errorf("batch embed: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("batch embed: got %d embeddings for %d texts", len(resp.Embeddings), len(texts))
	}

	vectors := make([]pgvector.Vector, len(resp.Embeddings))
	for i, embedding := range resp.Embeddings {
		vectors[i] = pgvector.NewVector(embedding.Values)
	}
	return vectors, nil
}

// responseText flattens the first candidate's text parts.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String()
}

func buildMatchPrompt(a, b *domain.Profile, cohortContext string) string {
	var sb strings.Builder
	sb.WriteString("Analyze compatibility between two people for a potential networking connection.\n\n")
	sb.WriteString("=== PERSON A ===\n")
	writeProfileBlock(&sb, a)
	sb.WriteString("\n=== PERSON B ===\n")
	writeProfileBlock(&sb, b)
	if cohortContext != "" {
		fmt.Fprintf(&sb, "\nContext: both are part of %q\n", cohortContext)
	}
	sb.WriteString(`
Determine:
1. compatibility_score (0.0-1.0) - how interesting they could be to each other
2. match_type - one of: "friendship", "professional", "romantic", "creative"
3. explanation - why they might be interesting to each other (2-3 sentences, warm and human, WITHOUT mentioning names)
4. icebreaker - one good question to start a conversation

IMPORTANT: Respond with valid JSON only, no markdown:
{"compatibility_score": 0.75, "match_type": "friendship", "explanation": "...", "icebreaker": "..."}`)
	return sb.String()
}

// writeProfileBlock serializes the explicit fields only; embeddings
// never leave the database.
func writeProfileBlock(sb *strings.Builder, p *domain.Profile) {
	fmt.Fprintf(sb, "Name: %s\n", p.DisplayName)
	fmt.Fprintf(sb, "Interests: %s\n", strings.Join(p.Interests, ", "))
	fmt.Fprintf(sb, "Goals: %s\n", strings.Join(p.Goals, ", "))
	fmt.Fprintf(sb, "Bio: %s\n", orNotSpecified(p.Bio))
	fmt.Fprintf(sb, "Looking for: %s\n", orNotSpecified(p.LookingFor))
	fmt.Fprintf(sb, "Can help with: %s\n", orNotSpecified(p.CanHelpWith))
}

func orNotSpecified(s *string) string {
	if s == nil || *s == "" {
		return "Not specified"
	}
	return *s
}

func preview(s string, limit int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
