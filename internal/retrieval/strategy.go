package retrieval

import "context"

// Strategy is the per-project retrieval capability. It is selected once
// per project scope instead of branching on project names at call sites.
type Strategy interface {
	Retrieve(ctx context.Context, rawText, project string) (Result, error)
}

// SingleOrPattern classifies each turn into quoted-title lookup or
// semantic pattern search and dispatches through the router.
type SingleOrPattern struct {
	Router      *Router
	MaxTitleLen int
}

func (s SingleOrPattern) Retrieve(ctx context.Context, rawText, project string) (Result, error) {
	query := Classify(rawText, s.MaxTitleLen)
	return s.Router.Retrieve(ctx, query, project)
}

// KeywordOnly serves projects not opted into semantic indexing: plain
// keyword matching, no embedding calls.
type KeywordOnly struct {
	Source EntrySource
	Limit  int
}

func (s KeywordOnly) Retrieve(ctx context.Context, rawText, project string) (Result, error) {
	candidates, err := s.Source.ListEntries(ctx, project)
	if err != nil {
		return Result{}, err
	}
	result := Result{
		Mode:  ModePatternSearch,
		Items: SearchKeywords(rawText, candidates, s.Limit),
	}
	if len(result.Items) == 0 {
		result.Notes = append(result.Notes, "no matching dreams found")
	}
	return result, nil
}

var _ Strategy = SingleOrPattern{}
var _ Strategy = KeywordOnly{}
