// Package llm wraps the Gemini API behind the two narrow contracts the
// bot needs: answering a single screening question and drafting
// tailored application documents.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	defaultModel = "gemini-2.5-flash"
	maxAttempts  = 3
)

// Client is a thin Gemini wrapper with bounded retries.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient builds a Gemini-backed client. apiKey must be a Gemini API
// key; model may be empty to use the default.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("llm: api key is empty")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: create client: %w", err)
	}
	if model == "" {
		model = defaultModel
	}
	return &Client{client: client, model: model}, nil
}

// generate sends one prompt and returns the response text, retrying
// transient failures with a short linear backoff.
func (c *Client) generate(ctx context.Context, prompt string, temperature float32) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 4096,
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
		if err == nil {
			if text := strings.TrimSpace(resp.Text()); text != "" {
				return stripFences(text), nil
			}
			err = fmt.Errorf("empty response")
		}
		lastErr = err
		if attempt < maxAttempts {
			slog.Debug("llm: retrying", slog.Int("attempt", attempt), slog.Any("error", err))
			select {
			case <-time.After(time.Duration(attempt) * time.Second):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}
	return "", fmt.Errorf("llm: generate after %d attempts: %w", maxAttempts, lastErr)
}

// Answer resolves one screening question. For enumerated questions the
// model must pick one of the given options; the returned string is the
// model's choice verbatim.
func (c *Client) Answer(ctx context.Context, question string, options []string, jobTitle string) (string, error) {
	var b strings.Builder
	b.WriteString("You are filling out a job application form on behalf of a qualified candidate.\n")
	if jobTitle != "" {
		fmt.Fprintf(&b, "The position is: %s\n", jobTitle)
	}
	fmt.Fprintf(&b, "Question: %s\n", question)
	if len(options) > 0 {
		b.WriteString("Answer by choosing EXACTLY ONE of these options, returning it verbatim:\n")
		for _, opt := range options {
			fmt.Fprintf(&b, "- %s\n", opt)
		}
	} else {
		b.WriteString("Answer briefly and affirmatively, in the language of the question. ")
		b.WriteString("Return only the answer text, no explanations.\n")
	}

	answer, err := c.generate(ctx, b.String(), 0.2)
	if err != nil {
		return "", err
	}
	return strings.Trim(answer, `"' `), nil
}

// DraftDocument produces a tailored document (CV or cover letter) in
// markdown from a base document and a job description.
func (c *Client) DraftDocument(ctx context.Context, kind, baseDoc, jobTitle, company, description string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Rewrite the candidate's %s below, tailored for this job posting.\n", kind)
	fmt.Fprintf(&b, "Job title: %s\nCompany: %s\n\nJob description:\n%s\n\n", jobTitle, company, truncate(description, 6000))
	fmt.Fprintf(&b, "Candidate's current %s:\n%s\n\n", kind, baseDoc)
	b.WriteString("Keep every fact truthful, reuse the candidate's real experience, ")
	b.WriteString("emphasize what matches the posting, and return only the document in markdown.\n")

	return c.generate(ctx, b.String(), 0.6)
}

// stripFences removes markdown code fences from model output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```markdown")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
