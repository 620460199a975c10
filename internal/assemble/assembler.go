// Package assemble turns retrieval results into the bounded context
// block handed to the completion call.
package assemble

import (
	"fmt"
	"strings"

	"github.com/oneiro-ai/oneiro/internal/models"
	"github.com/oneiro-ai/oneiro/internal/retrieval"
)

// truncationMarker is appended whenever a field is cut at its budget.
const truncationMarker = "…[truncated]"

// Section is one formatted entry in a context block.
type Section struct {
	Heading string
	Body    string
}

// ContextBlock is the size-bounded material for one completion call.
// TotalChars never exceeds the configured cap.
type ContextBlock struct {
	Sections   []Section
	TotalChars int
}

// Empty reports whether no sections survived assembly. An empty block is
// valid; substituting a placeholder is the caller's decision.
func (b ContextBlock) Empty() bool {
	return len(b.Sections) == 0
}

// Render flattens the block into prompt text.
func (b ContextBlock) Render() string {
	var sb strings.Builder
	for i, s := range b.Sections {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString("## ")
		sb.WriteString(s.Heading)
		sb.WriteString("\n")
		sb.WriteString(s.Body)
	}
	return sb.String()
}

// Assembler formats retrieved entries under per-field budgets and a hard
// total cap.
type Assembler struct {
	// FieldBudget bounds each formatted field (title, tags, summary).
	FieldBudget int

	// TotalCap bounds the whole block. Enforced by dropping the
	// lowest-relevance sections, never by breaking section structure.
	TotalCap int
}

// Assemble formats the result's entries in their given order (already
// most-relevant first). An empty result produces an empty block.
func (a Assembler) Assemble(result retrieval.Result) ContextBlock {
	block := ContextBlock{}
	for _, entry := range result.Items {
		section := a.formatEntry(entry)
		size := sectionChars(section)

		if a.TotalCap > 0 && block.TotalChars+size > a.TotalCap {
			// Items arrive most-relevant first, so everything from here
			// on is lower relevance: stop rather than squeeze.
			break
		}
		block.Sections = append(block.Sections, section)
		block.TotalChars += size
	}
	return block
}

func (a Assembler) formatEntry(entry models.DreamEntry) Section {
	var body strings.Builder
	if len(entry.Tags) > 0 {
		body.WriteString("Tags: ")
		body.WriteString(truncate(strings.Join(entry.Tags, ", "), a.FieldBudget))
		body.WriteString("\n")
	}
	if len(entry.KeyEntities) > 0 {
		body.WriteString("Entities: ")
		body.WriteString(truncate(strings.Join(entry.KeyEntities, ", "), a.FieldBudget))
		body.WriteString("\n")
	}
	body.WriteString(truncate(strings.TrimSpace(entry.Summary), a.FieldBudget))

	heading := truncate(entry.Title, a.FieldBudget)
	if !entry.IndexedAt.IsZero() {
		heading = fmt.Sprintf("%s (%s)", heading, entry.IndexedAt.Format("2006-01-02"))
	}

	return Section{Heading: heading, Body: strings.TrimSpace(body.String())}
}

func sectionChars(s Section) int {
	return len([]rune(s.Heading)) + len([]rune(s.Body))
}

// truncate keeps the prefix and appends the truncation marker. Budgets
// smaller than the marker degrade to the bare marker prefix.
func truncate(s string, budget int) string {
	if budget <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= budget {
		return s
	}
	keep := budget - len([]rune(truncationMarker))
	if keep < 0 {
		keep = 0
	}
	return strings.TrimSpace(string(runes[:keep])) + truncationMarker
}
