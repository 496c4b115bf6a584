package matcher

import (
	"context"
	"testing"
)

func TestFormatJobText(t *testing.T) {
	sections := map[string]string{
		SectionSkills:     "Go, Kubernetes",
		SectionExperience: "3+ years backend",
		SectionOthers:     "",
	}

	got := FormatJobText(sections)

	want := "Skills:\nGo, Kubernetes\n\nExperience:\n3+ years backend"
	if got != want {
		t.Errorf("FormatJobText() = %q, want %q", got, want)
	}
}

func TestFormatJobTextTitlesUnderscoredNames(t *testing.T) {
	got := FormatJobText(map[string]string{SectionContactInfo: "hr@corp.example"})

	want := "Contact Info:\nhr@corp.example"
	if got != want {
		t.Errorf("FormatJobText() = %q, want %q", got, want)
	}
}

func TestMatchAggregatesStoreHits(t *testing.T) {
	store := newFakeStore()
	store.matches = []SectionMatch{
		{DocumentID: "a", Filename: "a.pdf", SectionName: SectionSkills, MatchPercentage: 90},
		{DocumentID: "a", Filename: "a.pdf", SectionName: SectionSummary, MatchPercentage: 70},
		{DocumentID: "b", Filename: "b.pdf", SectionName: SectionSkills, MatchPercentage: 65},
	}
	pipeline := NewMatchPipeline(&stubEncoder{}, store, testLogger())

	result, err := pipeline.Match(context.Background(), "Go backend role", 10, 0.1)
	if err != nil {
		t.Fatalf("Match returned error: %v", err)
	}

	if store.lastTopK != 10 || store.lastThreshold != 0.1 {
		t.Errorf("store query got topK=%d threshold=%v", store.lastTopK, store.lastThreshold)
	}
	if len(result.Matches) != 3 {
		t.Errorf("Matches = %d, want 3", len(result.Matches))
	}
	if result.DocumentScores["a"] != 80 {
		t.Errorf("DocumentScores[a] = %v, want 80", result.DocumentScores["a"])
	}
	if len(result.BestPerFile) != 2 || result.BestPerFile[0].Filename != "a.pdf" {
		t.Errorf("BestPerFile = %v", result.BestPerFile)
	}
}

func TestMatchEmptyResultIsNotAnError(t *testing.T) {
	store := newFakeStore()
	pipeline := NewMatchPipeline(&stubEncoder{}, store, testLogger())

	result, err := pipeline.Match(context.Background(), "niche role", 5, 0.9)
	if err != nil {
		t.Fatalf("Match returned error: %v", err)
	}

	if len(result.Matches) != 0 || len(result.DocumentScores) != 0 || len(result.BestPerFile) != 0 {
		t.Errorf("expected an empty result, got %+v", result)
	}
}
