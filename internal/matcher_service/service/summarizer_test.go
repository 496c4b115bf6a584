package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"ResuMatch/internal/matcher"
	"ResuMatch/pkg/circuitbreaker"
	"ResuMatch/pkg/logger"
)

type fakeLLM struct {
	reply   string
	err     error
	calls   int
	prompts []string
}

func (f *fakeLLM) Generate(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func newTestSummarizer(t *testing.T, model *fakeLLM) *Summarizer {
	t.Helper()
	logger.Init(logrus.ErrorLevel)
	breaker := circuitbreaker.New(3, 1, time.Minute)
	return NewSummarizer(model, "mistral", breaker, logger.New("summarizer-test", "test"))
}

func TestSummarizeMatchesBuildsPromptFromMatches(t *testing.T) {
	model := &fakeLLM{reply: "Jane fits well."}
	s := newTestSummarizer(t, model)

	matches := []matcher.SectionMatch{
		{Filename: "jane.pdf", SectionName: "skills", Text: "Go, SQL", MatchPercentage: 85.5},
		{Filename: "bob.pdf", SectionName: "experience", Text: "Five years", MatchPercentage: 72},
	}
	s.SummarizeMatches(context.Background(), "Backend engineer", matches)

	if model.calls != 1 {
		t.Fatalf("model calls = %d, want 1", model.calls)
	}
	prompt := model.prompts[0]
	for _, want := range []string{
		"**Job Description:**\nBackend engineer",
		"--- Resume 1: jane.pdf ---",
		"Relevance: 85.5%",
		"Matching Section (skills):\nGo, SQL",
		"--- Resume 2: bob.pdf ---",
		"Relevance: 72%",
		"top 2-3 candidates",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q\nprompt:\n%s", want, prompt)
		}
	}
}

func TestSummarizeMatchesRebullets(t *testing.T) {
	model := &fakeLLM{reply: "- Jane is strong\n\n* Bob is fine\n  ** Carol: solid\nplain line"}
	s := newTestSummarizer(t, model)

	got := s.SummarizeMatches(context.Background(), "job", nil)
	want := "• Jane is strong\n• Bob is fine\n• Carol: solid\n• plain line"
	if got != want {
		t.Fatalf("summary = %q, want %q", got, want)
	}
}

func TestSummarizeMatchesFallbackOnError(t *testing.T) {
	model := &fakeLLM{err: errors.New("connection refused")}
	s := newTestSummarizer(t, model)

	got := s.SummarizeMatches(context.Background(), "job", nil)
	if !strings.Contains(got, "⚠️ Could not generate AI summary. Ensure the 'mistral' model is available.") {
		t.Fatalf("fallback notice missing, got %q", got)
	}
	if !strings.Contains(got, "connection refused") {
		t.Fatalf("fallback should carry the cause, got %q", got)
	}
}

func TestSummarizeStopsCallingAfterBreakerOpens(t *testing.T) {
	model := &fakeLLM{err: errors.New("model down")}
	s := newTestSummarizer(t, model)

	for i := 0; i < 5; i++ {
		s.SummarizeMatches(context.Background(), "job", nil)
	}

	if model.calls != 3 {
		t.Fatalf("model calls = %d, want 3 before the breaker opens", model.calls)
	}
	got := s.SummarizeMatches(context.Background(), "job", nil)
	if !strings.Contains(got, circuitbreaker.ErrCircuitOpen.Error()) {
		t.Fatalf("open-breaker fallback should name the breaker error, got %q", got)
	}
}

func TestSummarizeResumePrompt(t *testing.T) {
	model := &fakeLLM{reply: "Good fit."}
	s := newTestSummarizer(t, model)

	s.SummarizeResume(context.Background(), "DevOps role", "Jane Doe\nKubernetes, Terraform")

	prompt := model.prompts[0]
	for _, want := range []string{
		"**Job Description:**\nDevOps role",
		"**Resume:**\nJane Doe\nKubernetes, Terraform",
		"concise assessment",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
