// Package enrich rewrites the generated executive summary through an
// OpenAI-compatible chat completion endpoint. Enrichment is strictly
// best effort: every number in the report is computed locally, the
// model only improves the prose, and any failure leaves the original
// summary in place.
package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"erpinsight/pkg/contracts/domain"
)

// DefaultTimeout bounds a polish call so enrichment can never stall a
// run past it.
const DefaultTimeout = 10 * time.Second

const systemPrompt = "You are a business analyst. Rewrite the bullet points for an executive audience. " +
	"Keep every number and percentage exactly as given, keep one bullet per line, do not add bullets " +
	"and do not invent figures. Reply with the rewritten bullets only, one per line."

// Config selects the endpoint. Enrichment is disabled when BaseURL or
// APIKey is empty.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

func (c Config) enabled() bool {
	return c.BaseURL != "" && c.APIKey != ""
}

// Client calls the chat completion API.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Enabled reports whether the client is configured to make calls.
func (c *Client) Enabled() bool { return c.cfg.enabled() }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Polish rewrites the summary bullets. On any failure it returns an
// error and the caller keeps the original summary; the line count of a
// successful response always matches the input.
func (c *Client) Polish(ctx context.Context, summary []string, insights []domain.Insight) ([]string, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("enrichment disabled: endpoint not configured")
	}
	if len(summary) == 0 {
		return summary, nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	body, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Temperature: 0.3,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: promptFor(summary, insights)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat completion call: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read chat response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chat completion status %d: %s", resp.StatusCode, truncate(string(payload), 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("chat completion error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	polished := splitBullets(parsed.Choices[0].Message.Content)
	if len(polished) != len(summary) {
		return nil, fmt.Errorf("polished summary has %d bullets, expected %d", len(polished), len(summary))
	}
	return polished, nil
}

// promptFor gives the model the bullets plus the severity headlines as
// context for tone.
func promptFor(summary []string, insights []domain.Insight) string {
	var b strings.Builder
	b.WriteString("Bullets to rewrite:\n")
	for _, line := range summary {
		b.WriteString("- ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	if len(insights) > 0 {
		b.WriteString("\nContext findings (do not quote directly):\n")
		for i, ins := range insights {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&b, "- [%s] %s\n", ins.Severity, ins.Finding)
		}
	}
	return b.String()
}

func splitBullets(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "- ")
		line = strings.TrimPrefix(line, "* ")
		line = strings.TrimLeft(line, "•")
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
