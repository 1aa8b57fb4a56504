package llm

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"resonance/internal/domain"
)

const summarySystemPrompt = `You write short plain-language summaries of food resonance test results for a clinic report.
Write one paragraph of at most five sentences addressed to the patient.
Mention the most and least compatible foods by name. Do not give medical advice or dosage.
Use only plain ASCII punctuation.`

type completeFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)

// Summarizer writes the optional narrative paragraph printed on PDF reports.
type Summarizer struct {
	complete completeFunc
	logger   *zap.Logger
}

func New(apiKey, model string, httpClient *http.Client, logger *zap.Logger) *Summarizer {
	client := anthropic.NewClient(option.WithAPIKey(apiKey), option.WithHTTPClient(httpClient))
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("llm")
	return &Summarizer{
		logger: logger,
		complete: func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
			message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
				Model:     anthropic.Model(model),
				MaxTokens: 512,
				System: []anthropic.TextBlockParam{
					{Text: systemPrompt},
				},
				Messages: []anthropic.MessageParam{
					anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
				},
			})
			if err != nil {
				return "", fmt.Errorf("Anthropic API error: %w", err)
			}
			logger.Debug("summary response",
				zap.Int64("tokens_in", message.Usage.InputTokens),
				zap.Int64("tokens_out", message.Usage.OutputTokens))
			for _, block := range message.Content {
				if block.Type == "text" {
					return block.Text, nil
				}
			}
			return "", fmt.Errorf("no text content in Anthropic response")
		},
	}
}

// Summarize returns a narrative for rows, or "" when there is nothing to summarize.
func (s *Summarizer) Summarize(ctx context.Context, patient domain.Patient, rows []domain.Row) (string, error) {
	if len(rows) == 0 {
		return "", nil
	}
	text, err := s.complete(ctx, summarySystemPrompt, buildSummaryPrompt(patient, rows))
	if err != nil {
		s.logger.Warn("summary failed", zap.Error(err))
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func buildSummaryPrompt(patient domain.Patient, rows []domain.Row) string {
	sorted := make([]domain.Row, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })

	var b strings.Builder
	fmt.Fprintf(&b, "Patient first name: %s\n", firstName(patient.Name))
	if !patient.TestDate.IsZero() {
		fmt.Fprintf(&b, "Test date: %s\n", patient.TestDate.Format("2006-01-02"))
	}
	fmt.Fprintf(&b, "Results (%d items, highest score first):\n", len(sorted))
	for _, r := range sorted {
		fmt.Fprintf(&b, "- %s [%s]: %d/100, %s\n", r.Item, r.Category, r.Score, r.Resonance)
	}
	return b.String()
}

func firstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
