package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJournal(t *testing.T) {
	content := `---
project: night-log
tags: [recurring]
---

# My Dream Journal

## Falling Through Water

Tags: water, falling
Entities: ocean, childhood home

I was sinking slowly through warm water.
It felt calm rather than frightening.

## The Locked Door

A door at the end of a hallway that would not open.
`

	doc, err := Parse(content)
	require.NoError(t, err)

	assert.Equal(t, "night-log", doc.Project)
	assert.Equal(t, []string{"recurring"}, doc.Tags)
	require.Len(t, doc.Entries, 2)

	first := doc.Entries[0]
	assert.Equal(t, "Falling Through Water", first.Title)
	assert.Equal(t, []string{"water", "falling"}, first.Tags)
	assert.Equal(t, []string{"ocean", "childhood home"}, first.KeyEntities)
	assert.Equal(t, "I was sinking slowly through warm water.\nIt felt calm rather than frightening.", first.Summary)

	second := doc.Entries[1]
	assert.Equal(t, "The Locked Door", second.Title)
	assert.Empty(t, second.Tags)
	assert.Equal(t, "A door at the end of a hallway that would not open.", second.Summary)
}

func TestParseJournalNoFrontmatter(t *testing.T) {
	doc, err := Parse("## Just A Dream\n\nShort summary.\n")
	require.NoError(t, err)

	assert.Empty(t, doc.Project)
	require.Len(t, doc.Entries, 1)
	assert.Equal(t, "Just A Dream", doc.Entries[0].Title)
	assert.Equal(t, "Short summary.", doc.Entries[0].Summary)
}

func TestParseJournalBadFrontmatter(t *testing.T) {
	_, err := Parse("---\nproject: [unclosed\n---\n\n## Dream\n\ntext\n")
	assert.Error(t, err)
}

func TestParseJournalIgnoresPreamble(t *testing.T) {
	doc, err := Parse("# Heading One\n\nintro text that belongs to no entry\n\n## Real Entry\n\nbody\n")
	require.NoError(t, err)
	require.Len(t, doc.Entries, 1)
	assert.Equal(t, "Real Entry", doc.Entries[0].Title)
	assert.Equal(t, "body", doc.Entries[0].Summary)
}

func TestToDreamEntryMergesTags(t *testing.T) {
	doc := &Document{Project: "night-log", Tags: []string{"recurring", "Water"}}
	entry := Entry{Title: "T", Summary: "s", Tags: []string{"water", "teeth"}}

	dream := doc.ToDreamEntry(entry, "fallback")
	assert.Equal(t, "night-log", dream.Project)
	assert.Equal(t, []string{"recurring", "Water", "teeth"}, dream.Tags)
}
