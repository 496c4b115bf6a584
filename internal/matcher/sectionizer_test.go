package matcher

import (
	"reflect"
	"sort"
	"strings"
	"testing"
)

func TestSectionizeClassifiesLabeledLines(t *testing.T) {
	text := "Email: a@b.com\nSkills: Python, Go\nExperience: 5 years at X"

	sections := Sectionize(text)

	want := map[string]string{
		SectionContactInfo: "Email: a@b.com",
		SectionSkills:      "Skills: Python, Go",
		SectionExperience:  "Experience: 5 years at X",
	}
	for name, text := range want {
		if sections[name] != text {
			t.Errorf("sections[%q] = %q, want %q", name, sections[name], text)
		}
	}
	for _, name := range SectionNames {
		if _, expected := want[name]; !expected && sections[name] != "" {
			t.Errorf("sections[%q] = %q, want empty", name, sections[name])
		}
	}
}

func TestSectionizeDefaultsToOthers(t *testing.T) {
	text := "John Smith\nSenior backend developer\nBuilt things since 2012"

	sections := Sectionize(text)

	want := "John Smith\nSenior backend developer\nBuilt things since 2012"
	if sections[SectionOthers] != want {
		t.Errorf("sections[others] = %q, want %q", sections[SectionOthers], want)
	}
}

func TestSectionizeHeaderSwitchIsSticky(t *testing.T) {
	text := "Work History\nCompany A, 2019-2022\nCompany B, 2022-now\nEducation\nState University"

	sections := Sectionize(text)

	wantExperience := "Work History\nCompany A, 2019-2022\nCompany B, 2022-now"
	if sections[SectionExperience] != wantExperience {
		t.Errorf("sections[experience] = %q, want %q", sections[SectionExperience], wantExperience)
	}
	wantEducation := "Education\nState University"
	if sections[SectionEducation] != wantEducation {
		t.Errorf("sections[education] = %q, want %q", sections[SectionEducation], wantEducation)
	}
}

func TestSectionizeBlankLinesDoNotSwitch(t *testing.T) {
	text := "Skills\nGo\n\n\nKubernetes"

	sections := Sectionize(text)

	want := "Skills\nGo\nKubernetes"
	if sections[SectionSkills] != want {
		t.Errorf("sections[skills] = %q, want %q", sections[SectionSkills], want)
	}
}

func TestSectionizePriorityOrderWins(t *testing.T) {
	// The line matches both contact_info (email) and education; the first
	// group in priority order takes it.
	sections := Sectionize("Email from my university")

	if sections[SectionContactInfo] == "" {
		t.Error("expected the line to land in contact_info")
	}
	if sections[SectionEducation] != "" {
		t.Errorf("sections[education] = %q, want empty", sections[SectionEducation])
	}
}

func TestSectionizeDeterministic(t *testing.T) {
	text := "Contact\na@b.com\nSkills\nGo, SQL\nProjects\nSearch engine"

	first := Sectionize(text)
	second := Sectionize(text)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated runs differ: %v vs %v", first, second)
	}
}

func TestSectionizeKeepsAllContentOnItsOwnOutput(t *testing.T) {
	text := "Summary\nBackend developer\nSkills\nGo\nExperience\nFive years"

	first := JoinSections(Sectionize(text))
	second := JoinSections(Sectionize(first))

	if sortedLines(first) != sortedLines(second) {
		t.Errorf("re-sectionizing lost content:\nfirst: %q\nsecond: %q", first, second)
	}
}

func TestJoinSectionsFollowsVocabularyOrder(t *testing.T) {
	sections := map[string]string{
		SectionOthers:      "tail",
		SectionSkills:      "Go",
		SectionContactInfo: "a@b.com",
	}

	got := JoinSections(sections)

	want := "a@b.com\nGo\ntail"
	if got != want {
		t.Errorf("JoinSections() = %q, want %q", got, want)
	}
}

func sortedLines(text string) string {
	lines := strings.Split(text, "\n")
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}
