package retrieval

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantMode  Mode
		wantTitle string
	}{
		{
			name:     "plain pattern query",
			raw:      "What patterns do I have with water in my dreams?",
			wantMode: ModePatternSearch,
		},
		{
			name:      "straight double quotes",
			raw:       `What does "My Flying Dream" mean from a Jungian perspective?`,
			wantMode:  ModeSingleItem,
			wantTitle: "My Flying Dream",
		},
		{
			name:      "curly quotes",
			raw:       "Tell me about “The Endless Staircase” again",
			wantMode:  ModeSingleItem,
			wantTitle: "The Endless Staircase",
		},
		{
			name:      "title is trimmed",
			raw:       `what about "  Ocean at Night  "?`,
			wantMode:  ModeSingleItem,
			wantTitle: "Ocean at Night",
		},
		{
			name:     "empty quotes degrade to pattern",
			raw:      `what is "" about`,
			wantMode: ModePatternSearch,
		},
		{
			name:     "whitespace-only quotes degrade to pattern",
			raw:      `what is "   " about`,
			wantMode: ModePatternSearch,
		},
		{
			name:     "unbalanced quote degrades to pattern",
			raw:      `what does "My Flying Dream mean`,
			wantMode: ModePatternSearch,
		},
		{
			name:      "multiple quoted substrings use the first",
			raw:       `compare "First Dream" with "Second Dream"`,
			wantMode:  ModeSingleItem,
			wantTitle: "First Dream",
		},
		{
			name:      "quotes win over pattern wording",
			raw:       `what patterns connect to "The Locked Door"?`,
			wantMode:  ModeSingleItem,
			wantTitle: "The Locked Door",
		},
		{
			name:     "empty input",
			raw:      "",
			wantMode: ModePatternSearch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Classify(tt.raw, 120)
			if q.Mode != tt.wantMode {
				t.Errorf("mode = %v, want %v", q.Mode, tt.wantMode)
			}
			if q.Title != tt.wantTitle {
				t.Errorf("title = %q, want %q", q.Title, tt.wantTitle)
			}
			if q.Raw != tt.raw {
				t.Errorf("raw text must be preserved")
			}
		})
	}
}

func TestClassifyTruncatesOverlongTitles(t *testing.T) {
	long := ""
	for range 40 {
		long += "dream "
	}
	q := Classify(`"`+long+`"`, 120)
	if q.Mode != ModeSingleItem {
		t.Fatalf("mode = %v, want single item", q.Mode)
	}
	if got := len([]rune(q.Title)); got > 120 {
		t.Errorf("title length = %d runes, want <= 120", got)
	}
	if q.Title == "" {
		t.Error("truncated title must not be empty")
	}
}
