// Package docs produces per-job tailored application documents from
// the candidate's base CV and cover letter.
package docs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/DIEGOHORVATTI/indeed-bot/internal/indeed"
	"github.com/DIEGOHORVATTI/indeed-bot/internal/llm"
)

// Generator tailors the base documents to a specific posting. Each job
// gets freshly drafted files under OutputDir; nothing is reused across
// jobs.
type Generator struct {
	Client       *llm.Client
	BaseCVPath   string
	BaseCoverDoc string // base cover letter text, optional
	OutputDir    string
}

// Generate drafts a tailored CV and, when a base cover letter exists, a
// tailored cover letter. The CV is mandatory: a draft failure fails the
// whole generation so the caller can fall back to the stored resume.
// The cover letter is best effort.
func (g *Generator) Generate(ctx context.Context, job indeed.JobInfo) (string, string, error) {
	if job.Title == "" && job.Description == "" {
		return "", "", fmt.Errorf("docs: job has no usable posting data")
	}

	base, err := os.ReadFile(g.BaseCVPath)
	if err != nil {
		return "", "", fmt.Errorf("docs: read base cv: %w", err)
	}
	if err := os.MkdirAll(g.OutputDir, 0o755); err != nil {
		return "", "", fmt.Errorf("docs: output dir: %w", err)
	}

	cv, err := g.Client.DraftDocument(ctx, "CV", string(base), job.Title, job.Company, job.Description)
	if err != nil {
		return "", "", fmt.Errorf("docs: draft cv: %w", err)
	}
	cvPath, err := g.write("cv", cv)
	if err != nil {
		return "", "", err
	}
	slog.Info("docs: tailored cv drafted", slog.String("job", job.Title), slog.String("path", cvPath))

	coverPath := ""
	if g.BaseCoverDoc != "" {
		cover, err := g.Client.DraftDocument(ctx, "cover letter", g.BaseCoverDoc, job.Title, job.Company, job.Description)
		if err != nil {
			slog.Warn("docs: cover letter draft failed, applying without one", slog.Any("error", err))
		} else if coverPath, err = g.write("cover", cover); err != nil {
			slog.Warn("docs: cover letter write failed", slog.Any("error", err))
			coverPath = ""
		}
	}

	return cvPath, coverPath, nil
}

func (g *Generator) write(prefix, content string) (string, error) {
	name := fmt.Sprintf("%s-%s.md", prefix, uuid.NewString()[:8])
	path := filepath.Join(g.OutputDir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("docs: write %s: %w", prefix, err)
	}
	return path, nil
}
