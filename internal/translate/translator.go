package translate

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/time/rate"
)

const (
	// DefaultTranslateDelay is the minimum spacing between provider calls.
	DefaultTranslateDelay = 500 * time.Millisecond

	maxRetries     = 3
	retryBaseDelay = time.Second
	maxTokens      = 4096
)

// Translator batches text through the translation provider, consulting the
// memory first so only never-seen source text costs an API call.
type Translator struct {
	client    *anthropic.Client
	model     string
	system    string
	limiter   *rate.Limiter
	memory    *Memory
	logger    *slog.Logger
	apiCalls  int
	memHits   int
	memMisses int
}

// NewTranslator creates a provider-backed translator for one language pair.
func NewTranslator(apiKey, model, system string, memory *Memory, logger *slog.Logger) (*Translator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("translation API key is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	return &Translator{
		client:  &client,
		model:   model,
		system:  system,
		limiter: rate.NewLimiter(rate.Every(DefaultTranslateDelay), 1),
		memory:  memory,
		logger:  logger,
	}, nil
}

// APICalls returns the number of provider calls made so far.
func (t *Translator) APICalls() int {
	return t.apiCalls
}

// MemoryHits returns how many texts were served from memory so far.
func (t *Translator) MemoryHits() int {
	return t.memHits
}

// MemoryMisses returns how many texts needed the provider so far.
func (t *Translator) MemoryMisses() int {
	return t.memMisses
}

// TranslateBatch translates the given texts, returning a source→target map.
// Memory hits never reach the provider; the remaining unique texts go out
// as one numbered-line batch. Texts the provider fails to return stay
// absent from the result so callers can fall back to the source text.
func (t *Translator) TranslateBatch(ctx context.Context, texts []string) (map[string]string, error) {
	result := make(map[string]string, len(texts))

	var misses []string
	seen := map[string]bool{}
	for _, text := range texts {
		if text == "" || seen[text] {
			continue
		}
		seen[text] = true
		if target, ok := t.memory.Get(text); ok {
			result[text] = target
			t.memHits++
			continue
		}
		misses = append(misses, text)
	}
	t.memMisses += len(misses)

	if len(misses) == 0 {
		return result, nil
	}

	// Protect euro amounts per line before building the batch prompt.
	protected := make([]string, len(misses))
	amounts := make([][]Amount, len(misses))
	var prompt strings.Builder
	for i, text := range misses {
		protected[i], amounts[i] = ProtectAmounts(text)
		fmt.Fprintf(&prompt, "%d: %s\n", i+1, protected[i])
	}

	t.logger.Info("translating batch", "texts", len(texts), "memory_hits", len(result), "api_lines", len(misses))

	response, err := t.complete(ctx, prompt.String())
	if err != nil {
		return nil, fmt.Errorf("translate batch of %d: %w", len(misses), err)
	}

	if len(response) < len(prompt.String())/5 || len(response) > len(prompt.String())*4 {
		t.logger.Warn("translation response length far from source length",
			"source_len", prompt.Len(), "response_len", len(response))
	}

	translations := parseNumberedResponse(response)
	for i, text := range misses {
		translated, ok := translations[i+1]
		if !ok {
			t.logger.Warn("translation missing from response", "line", i+1, "source", text)
			continue
		}
		translated = RestoreAmounts(translated, amounts[i])
		if !VerifyAmounts(text, translated) {
			t.logger.Warn("euro amounts differ after translation", "source", text, "translated", translated)
		}
		result[text] = translated
		t.memory.Store(text, translated)
	}

	return result, nil
}

// complete performs one provider call with retries and exponential backoff.
func (t *Translator) complete(ctx context.Context, prompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(t.model),
		MaxTokens: maxTokens,
		System: []anthropic.TextBlockParam{
			{Type: "text", Text: t.system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay * time.Duration(1<<(attempt-1))
			t.logger.Warn("translation call failed, retrying", "attempt", attempt, "delay", delay, "error", lastErr)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		if err := t.limiter.Wait(ctx); err != nil {
			return "", err
		}

		t.apiCalls++
		message, err := t.client.Messages.New(ctx, params)
		if err != nil {
			lastErr = err
			continue
		}

		var b strings.Builder
		for _, content := range message.Content {
			if content.Type == "text" {
				b.WriteString(content.Text)
			}
		}
		return b.String(), nil
	}

	return "", fmt.Errorf("translation failed after %d attempts: %w", maxRetries, lastErr)
}

var numberedLine = regexp.MustCompile(`^(\d+):\s*(.*)$`)

// parseNumberedResponse extracts "N: text" lines from the provider reply,
// keyed by line number. Non-matching lines (commentary, blanks) are
// ignored; a repeated number keeps the last occurrence.
func parseNumberedResponse(response string) map[int]string {
	result := map[int]string{}
	for _, line := range strings.Split(response, "\n") {
		m := numberedLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		result[n] = strings.TrimSpace(m[2])
	}
	return result
}
