package matcher

import "strings"

// Section names of the fixed vocabulary.
const (
	SectionContactInfo    = "contact_info"
	SectionSummary        = "summary"
	SectionSkills         = "skills"
	SectionExperience     = "experience"
	SectionEducation      = "education"
	SectionProjects       = "projects"
	SectionCertifications = "certifications"
	SectionOthers         = "others"
)

// SectionNames is the fixed section vocabulary in enumeration order. Full
// text assembly and section storage both follow this order.
var SectionNames = []string{
	SectionContactInfo,
	SectionSummary,
	SectionSkills,
	SectionExperience,
	SectionEducation,
	SectionProjects,
	SectionCertifications,
	SectionOthers,
}

// sectionKeywords are the header keyword groups in priority order. The
// first group with a keyword contained in the line wins.
var sectionKeywords = []struct {
	name     string
	keywords []string
}{
	{SectionContactInfo, []string{"contact", "email", "phone", "linkedin", "github"}},
	{SectionSummary, []string{"summary", "objective", "profile", "about"}},
	{SectionSkills, []string{"skill", "tech", "tools", "stack"}},
	{SectionExperience, []string{"experience", "employment", "work history", "professional experience", "internship"}},
	{SectionEducation, []string{"education", "university", "college", "degree", "b.tech", "bachelors", "masters", "phd"}},
	{SectionProjects, []string{"project", "projects", "portfolio", "case study"}},
	{SectionCertifications, []string{"certification", "certifications", "awards", "achievements"}},
}

// Sectionize splits raw resume text into the fixed section vocabulary using
// keyword-driven line classification. The scan starts in the others bucket;
// a line containing a header keyword switches the bucket and the switch
// sticks until the next matching line. Every non-blank line, header lines
// included, lands in the bucket active after the switch test. Blank lines
// neither switch buckets nor are kept.
//
// The result always carries all vocabulary keys; unpopulated sections hold
// an empty string.
func Sectionize(text string) map[string]string {
	sections := make(map[string]string, len(SectionNames))
	for _, name := range SectionNames {
		sections[name] = ""
	}

	current := SectionOthers
	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}

		lower := strings.ToLower(line)
		for _, group := range sectionKeywords {
			if containsAny(lower, group.keywords) {
				current = group.name
				break
			}
		}

		sections[current] += line + "\n"
	}

	for name, body := range sections {
		sections[name] = strings.TrimSpace(body)
	}

	return sections
}

// JoinSections rebuilds the document text from its non-empty sections in
// vocabulary order.
func JoinSections(sections map[string]string) string {
	var parts []string
	for _, name := range SectionNames {
		if text := strings.TrimSpace(sections[name]); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}

func containsAny(line string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(line, keyword) {
			return true
		}
	}
	return false
}
