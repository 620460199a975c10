// Package journal parses Markdown dream-journal files for import.
package journal

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"

	"github.com/oneiro-ai/oneiro/internal/models"
	"gopkg.in/yaml.v3"
)

// Entry is one dream parsed from a journal file, before indexing.
type Entry struct {
	Title       string
	Summary     string
	Tags        []string
	KeyEntities []string
}

// Document is a parsed journal file. Frontmatter applies to every entry:
// its project overrides the import default, its tags are merged into
// each entry's own.
type Document struct {
	Project string
	Tags    []string
	Entries []Entry
}

var headingRegex = regexp.MustCompile(`^##\s+(.+)$`)

// Parse reads a journal in Markdown form. Each second-level heading
// starts one dream entry; "Tags:" and "Entities:" lines directly under
// the heading become structured fields, everything else is the summary.
func Parse(content string) (*Document, error) {
	doc := &Document{}

	remaining := content
	if strings.HasPrefix(content, "---\n") {
		endIdx := strings.Index(content[4:], "\n---")
		if endIdx > 0 {
			frontmatterYAML := content[4 : 4+endIdx]
			remaining = strings.TrimPrefix(content[4+endIdx+4:], "\n")

			var fm struct {
				Project string   `yaml:"project"`
				Tags    []string `yaml:"tags"`
			}
			if err := yaml.Unmarshal([]byte(frontmatterYAML), &fm); err != nil {
				return nil, fmt.Errorf("parse frontmatter: %w", err)
			}
			doc.Project = fm.Project
			doc.Tags = fm.Tags
		}
	}

	var current *Entry
	var summary strings.Builder

	flush := func() {
		if current == nil {
			return
		}
		current.Summary = strings.TrimSpace(summary.String())
		summary.Reset()
		doc.Entries = append(doc.Entries, *current)
		current = nil
	}

	scanner := bufio.NewScanner(strings.NewReader(remaining))
	for scanner.Scan() {
		line := scanner.Text()

		if match := headingRegex.FindStringSubmatch(line); len(match) > 0 {
			flush()
			current = &Entry{Title: strings.TrimSpace(match[1])}
			continue
		}
		if current == nil {
			continue
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "Tags:"):
			current.Tags = append(current.Tags, splitList(strings.TrimPrefix(trimmed, "Tags:"))...)
		case strings.HasPrefix(trimmed, "Entities:"):
			current.KeyEntities = append(current.KeyEntities, splitList(strings.TrimPrefix(trimmed, "Entities:"))...)
		default:
			summary.WriteString(line)
			summary.WriteString("\n")
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan journal: %w", err)
	}
	return doc, nil
}

// ToDreamEntry converts a parsed entry into the storable form, merging
// document-level tags.
func (d *Document) ToDreamEntry(e Entry, project string) models.DreamEntry {
	if d.Project != "" {
		project = d.Project
	}
	tags := mergeUnique(d.Tags, e.Tags)
	return models.DreamEntry{
		Title:       e.Title,
		Project:     project,
		Summary:     e.Summary,
		Tags:        tags,
		KeyEntities: e.KeyEntities,
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func mergeUnique(base, extra []string) []string {
	seen := make(map[string]bool, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, s := range append(append([]string{}, base...), extra...) {
		key := strings.ToLower(s)
		if !seen[key] {
			seen[key] = true
			out = append(out, s)
		}
	}
	return out
}
