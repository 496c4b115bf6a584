package matcher

import (
	"strings"
	"testing"
)

func TestFilterByField(t *testing.T) {
	got := filterByField(FieldFileName, "resume.pdf")
	want := `file_name == "resume.pdf"`
	if got != want {
		t.Errorf("filterByField() = %s, want %s", got, want)
	}
}

func TestFilterByFieldEscapesQuotes(t *testing.T) {
	got := filterByField(FieldFileName, `my "best" resume.pdf`)
	want := `file_name == "my \"best\" resume.pdf"`
	if got != want {
		t.Errorf("filterByField() = %s, want %s", got, want)
	}
}

func TestSectionKey(t *testing.T) {
	got := SectionKey("resume.pdf_1a2b3c4d", SectionSkills)
	if got != "resume.pdf_1a2b3c4d_skills" {
		t.Errorf("SectionKey() = %s", got)
	}
}

func TestTruncateText(t *testing.T) {
	short := "short text"
	if got := truncateText(short, 100); got != short {
		t.Errorf("short text was modified: %q", got)
	}

	long := strings.Repeat("long", 10)
	got := truncateText(long, 10)
	if got != "longlonglo" {
		t.Errorf("truncateText() = %q", got)
	}

	// Multi-byte runes count as one character each.
	unicode := strings.Repeat("ü", 20)
	got = truncateText(unicode, 10)
	if got != strings.Repeat("ü", 10) {
		t.Errorf("unicode truncation = %q", got)
	}
}
