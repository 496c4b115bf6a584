package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"ResuMatch/internal/llm"
	"ResuMatch/internal/matcher"
	"ResuMatch/pkg/circuitbreaker"
	"ResuMatch/pkg/logger"
)

// leadingSymbols matches the punctuation bullets models tend to emit
// ("-", "*", "•") so every line can be re-bulleted uniformly.
var leadingSymbols = regexp.MustCompile(`^\W*`)

// Summarizer turns the best matches of a run into a short hiring summary via
// the configured LLM. Calls go through a circuit breaker so a dead model
// endpoint degrades to a canned notice instead of stalling every request.
type Summarizer struct {
	llm     llm.LLM
	model   string
	breaker circuitbreaker.CircuitBreaker
	log     *logger.Logger
}

// NewSummarizer wires the LLM behind a circuit breaker. The model name only
// feeds the degraded-mode notice.
func NewSummarizer(client llm.LLM, model string, breaker circuitbreaker.CircuitBreaker, log *logger.Logger) *Summarizer {
	return &Summarizer{llm: client, model: model, breaker: breaker, log: log}
}

// SummarizeMatches writes a recruiter-style summary of the best match per
// file. It never returns an error: when the model is unreachable or the
// breaker is open, the returned text says so.
func (s *Summarizer) SummarizeMatches(ctx context.Context, jobText string, matches []matcher.SectionMatch) string {
	var snippets strings.Builder
	for i, m := range matches {
		fmt.Fprintf(&snippets, "--- Resume %d: %s ---\n", i+1, m.Filename)
		fmt.Fprintf(&snippets, "Relevance: %v%%\n", m.MatchPercentage)
		fmt.Fprintf(&snippets, "Matching Section (%s):\n%s\n\n", m.SectionName, m.Text)
	}

	prompt := fmt.Sprintf(`You are an expert HR assistant. Your task is to analyze the following resumes and provide a summary of why they are a good fit for the given job description.

**Job Description:**
%s

**Top Matching Resumes:**
%s

**Your Task:**
Based on the job description and the provided resume snippets, write a concise summary for each of the top 2-3 candidates. Highlight their key qualifications, relevant experience, and skills that align with the job requirements. Keep it brief and to the point.`,
		jobText, snippets.String())

	return s.generate(ctx, prompt)
}

// SummarizeResume explains how well a single stored resume fits a job
// description, degrading the same way SummarizeMatches does.
func (s *Summarizer) SummarizeResume(ctx context.Context, jobText, resumeText string) string {
	prompt := fmt.Sprintf(`You are an expert HR assistant. Analyze the following resume against the job description and explain how well the candidate fits.

**Job Description:**
%s

**Resume:**
%s

**Your Task:**
Write a concise assessment of this candidate. Highlight the qualifications, experience, and skills that align with the job requirements, and note any obvious gaps. Keep it brief and to the point.`,
		jobText, resumeText)

	return s.generate(ctx, prompt)
}

func (s *Summarizer) generate(ctx context.Context, prompt string) string {
	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.llm.Generate(ctx, prompt)
	})
	if err != nil {
		s.log.WithError(err).Warn("Summary generation failed, returning fallback notice")
		return fmt.Sprintf("⚠️ Could not generate AI summary. Ensure the '%s' model is available.\nError: %v", s.model, err)
	}

	text, _ := result.(string)
	return formatSummary(text)
}

// formatSummary normalizes the model output into one bullet per non-blank
// line, replacing any leading punctuation with "• ".
func formatSummary(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		lines = append(lines, leadingSymbols.ReplaceAllString(stripped, "• "))
	}
	return strings.Join(lines, "\n")
}
