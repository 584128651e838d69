// Package config loads procedural-knowledge files a host wants every
// matching sub-agent to carry in its system prompt: short markdown
// documents describing how to do some recurring task, kept outside the
// definition's own prompt template so a host can update them without
// touching agent definitions.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Skill is one loaded procedure document.
type Skill struct {
	Name    string // derived from filename, without extension
	Content string // raw markdown content
}

// LoadSkills reads every .md file in dirs and returns them as Skills.
// A missing directory is skipped rather than treated as an error, since
// a host may point at directories that only sometimes exist (e.g. a
// project-local skills folder that not every checkout has).
func LoadSkills(dirs ...string) ([]Skill, error) {
	var skills []Skill

	for _, dir := range dirs {
		dirSkills, err := loadSkillsFromDir(dir)
		if err != nil {
			continue
		}
		skills = append(skills, dirSkills...)
	}

	return skills, nil
}

// FormatSkillsPrompt renders skills as a block suitable for splicing
// into a system prompt ahead of the run-specific directive.
func FormatSkillsPrompt(skills []Skill) string {
	if len(skills) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("# Available Skills\n\n")

	for _, skill := range skills {
		sb.WriteString("## ")
		sb.WriteString(skill.Name)
		sb.WriteString("\n\n")
		sb.WriteString(skill.Content)
		sb.WriteString("\n\n")
	}

	return sb.String()
}

func loadSkillsFromDir(dir string) ([]Skill, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var skills []Skill
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".md")
		skills = append(skills, Skill{
			Name:    name,
			Content: string(content),
		})
	}

	return skills, nil
}
