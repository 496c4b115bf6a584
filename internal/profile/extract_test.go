package profile

import (
	"reflect"
	"testing"
)

func TestExtractFindsNameOnFirstLine(t *testing.T) {
	p := Extract("Jane Doe\nSenior engineer with 5 years of experience")
	if p.Name != "Jane Doe" {
		t.Fatalf("Name = %q, want %q", p.Name, "Jane Doe")
	}
}

func TestExtractNameOnlyLooksAtFirstLine(t *testing.T) {
	p := Extract("curriculum vitae\nJane Doe")
	if p.Name != UnknownCandidate {
		t.Fatalf("Name = %q, want fallback %q", p.Name, UnknownCandidate)
	}
}

func TestExtractNameFallback(t *testing.T) {
	for _, text := range []string{"", "RESUME 2024", "  leading spaces"} {
		if p := Extract(text); p.Name != UnknownCandidate {
			t.Errorf("Extract(%q).Name = %q, want %q", text, p.Name, UnknownCandidate)
		}
	}
}

func TestExtractSkillsInVocabularyOrder(t *testing.T) {
	text := "Jane Doe\nBuilt services with PostgreSQL and Django, fluent in python and JavaScript."
	p := Extract(text)

	want := []string{"Python", "Javascript", "Django", "Postgresql"}
	if !reflect.DeepEqual(p.Skills, want) {
		t.Fatalf("Skills = %v, want %v", p.Skills, want)
	}
}

func TestExtractSkillsRespectWordBoundaries(t *testing.T) {
	p := Extract("Jane Doe\nJavaScript and TypeScript only.")

	for _, skill := range p.Skills {
		if skill == "Java" {
			t.Fatalf("Skills = %v, matched Java inside JavaScript", p.Skills)
		}
	}
	want := []string{"Javascript", "Typescript"}
	if !reflect.DeepEqual(p.Skills, want) {
		t.Fatalf("Skills = %v, want %v", p.Skills, want)
	}
}

func TestExtractMultiWordSkills(t *testing.T) {
	p := Extract("Jane Doe\nFocus on machine learning and natural language processing.")

	want := []string{"Machine learning", "Natural language processing"}
	if !reflect.DeepEqual(p.Skills, want) {
		t.Fatalf("Skills = %v, want %v", p.Skills, want)
	}
}

func TestExtractExperience(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Jane Doe\n5 years of experience in backend work", "5+ years"},
		{"Jane Doe\nover 7+ years of experience", "7+ years"},
		{"Jane Doe\n12 Years Of Experience", "12+ years"},
		{"Jane Doe\n3 year of experience", "3+ years"},
		{"Jane Doe\nmany years of experience", NotSpecified},
		{"Jane Doe\nno mention at all", NotSpecified},
	}
	for _, tt := range tests {
		if got := Extract(tt.text).Experience; got != tt.want {
			t.Errorf("Extract(%q).Experience = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestExtractEmptyText(t *testing.T) {
	p := Extract("")

	if p.Name != UnknownCandidate {
		t.Errorf("Name = %q, want %q", p.Name, UnknownCandidate)
	}
	if p.Experience != NotSpecified {
		t.Errorf("Experience = %q, want %q", p.Experience, NotSpecified)
	}
	if p.Skills == nil || len(p.Skills) != 0 {
		t.Errorf("Skills = %#v, want empty non-nil slice", p.Skills)
	}
}
