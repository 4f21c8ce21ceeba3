package analytics

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"CoinScope/internal/domain/models"
	domsvc "CoinScope/internal/domain/service"
	"CoinScope/internal/service/cache"
	applogger "CoinScope/pkg/logger"
)

const commentarySystemPrompt = "You are a market analyst. Write a short, neutral commentary " +
	"on the cryptocurrency metrics provided as JSON. Do not give financial advice."

// ChatCommentary calls an OpenAI-compatible chat completions endpoint.
type ChatCommentary struct {
	base      *HTTPServiceBase
	model     string
	maxTokens int
	retries   int
}

var _ domsvc.CommentaryGenerator = (*ChatCommentary)(nil)

type ChatOptions struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
	Retries   int
}

func NewChatCommentary(opts ChatOptions) *ChatCommentary {
	headers := map[string]string{}
	if opts.APIKey != "" {
		headers["Authorization"] = "Bearer " + opts.APIKey
	}
	return &ChatCommentary{
		base:      NewHTTPServiceBase(strings.TrimRight(opts.BaseURL, "/"), opts.Timeout, headers),
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
		retries:   opts.Retries,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatReq struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResp struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate returns the first completion verbatim.
func (g *ChatCommentary) Generate(ctx context.Context, summary models.FeatureSummary) (string, error) {
	payload, err := json.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("encode summary: %w", err)
	}
	req := chatReq{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: commentarySystemPrompt},
			{Role: "user", Content: string(payload)},
		},
		MaxTokens: g.maxTokens,
	}
	var resp chatResp
	if err := g.base.PostJSONWithRetry(ctx, "/v1/chat/completions", req, &resp, g.retries+1); err != nil {
		return "", fmt.Errorf("generate commentary: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("generate commentary: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

// CachedCommentary memoizes generated text by the content of the summary.
type CachedCommentary struct {
	next  domsvc.CommentaryGenerator
	cache cache.BytesCache
	ttl   time.Duration
	l     *applogger.Logger
}

func NewCachedCommentary(next domsvc.CommentaryGenerator, c cache.BytesCache, ttl time.Duration, l *applogger.Logger) *CachedCommentary {
	if l == nil {
		l = applogger.Nop()
	}
	return &CachedCommentary{next: next, cache: c, ttl: ttl, l: l}
}

// Generate implements CommentaryGenerator; cache failures degrade to a direct call.
func (g *CachedCommentary) Generate(ctx context.Context, summary models.FeatureSummary) (string, error) {
	text, _, err := g.GenerateCached(ctx, summary)
	return text, err
}

// GenerateCached also reports whether the text came from the cache.
func (g *CachedCommentary) GenerateCached(ctx context.Context, summary models.FeatureSummary) (string, bool, error) {
	key, err := SummaryKey(summary)
	if err != nil {
		return "", false, err
	}
	if b, ok, err := g.cache.GetBytes(ctx, key); err != nil {
		g.l.Warn("commentary cache read failed", applogger.Error(err))
	} else if ok {
		return string(b), true, nil
	}

	text, err := g.next.Generate(ctx, summary)
	if err != nil {
		return "", false, err
	}
	if err := g.cache.SetBytes(ctx, key, []byte(text), g.ttl); err != nil {
		g.l.Warn("commentary cache write failed", applogger.Error(err))
	}
	return text, false, nil
}

// SummaryKey hashes the canonical JSON form of summary.
func SummaryKey(summary models.FeatureSummary) (string, error) {
	b, err := json.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("encode summary: %w", err)
	}
	sum := sha256.Sum256(b)
	return "commentary:" + hex.EncodeToString(sum[:]), nil
}
