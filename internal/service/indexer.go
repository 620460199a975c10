package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/oneiro-ai/oneiro/internal/config"
	"github.com/oneiro-ai/oneiro/internal/db"
	"github.com/oneiro-ai/oneiro/internal/journal"
	"github.com/oneiro-ai/oneiro/internal/llm"
	"github.com/oneiro-ai/oneiro/internal/models"
)

// IndexerService handles journal import and embedding backfill.
type IndexerService struct {
	db       *db.Client
	embedder *llm.Embedder
	cfg      config.Config
}

// NewIndexerService creates a new indexer service. embedder may be nil;
// imports then store entries without embeddings for later backfill.
func NewIndexerService(database *db.Client, embedder *llm.Embedder, cfg config.Config) *IndexerService {
	return &IndexerService{db: database, embedder: embedder, cfg: cfg}
}

// ImportResult summarizes one journal import.
type ImportResult struct {
	EntriesCreated int
	Embedded       int
	Errors         []string
}

// ImportJournal parses a Markdown journal file and stores every entry.
// Entries are embedded inline when the project is semantically indexed
// and an embedder is available; embedding failures downgrade the entry
// to unembedded rather than failing the import.
func (s *IndexerService) ImportJournal(ctx context.Context, path, project string) (*ImportResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}

	doc, err := journal.Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parse journal: %w", err)
	}
	if len(doc.Entries) == 0 {
		return nil, fmt.Errorf("no dream entries found in %s", path)
	}

	result := &ImportResult{}
	for _, parsed := range doc.Entries {
		entry := doc.ToDreamEntry(parsed, project)

		if s.embedder != nil && s.cfg.SemanticIndexing(entry.Project) {
			vector, err := s.embedder.Embed(ctx, embeddingText(entry))
			if err != nil {
				slog.Warn("embedding failed during import, storing unembedded",
					"title", entry.Title, "error", err)
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", entry.Title, err))
			} else {
				entry.Embedding = vector
				result.Embedded++
			}
		}

		if err := s.createWithSlug(ctx, entry); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", entry.Title, err))
			continue
		}
		result.EntriesCreated++
	}

	slog.Info("journal imported", "path", path,
		"created", result.EntriesCreated, "embedded", result.Embedded,
		"errors", len(result.Errors))
	return result, nil
}

// createWithSlug stores an entry under a slug id, falling back to a
// random suffix when the title slug is taken. Duplicate titles are
// legitimate (recurring dreams), so collisions are expected.
func (s *IndexerService) createWithSlug(ctx context.Context, entry models.DreamEntry) error {
	id := models.Slugify(entry.Title)
	_, err := s.db.CreateDream(ctx, id, entry)
	if errors.Is(err, db.ErrAlreadyExists) {
		_, err = s.db.CreateDream(ctx, id+"-"+uuid.New().String()[:8], entry)
	}
	return err
}

// BackfillProgress reports per-entry backfill advancement to the UI.
type BackfillProgress func(done, total int, title string)

// BackfillResult summarizes one backfill run.
type BackfillResult struct {
	Embedded int
	Skipped  int
	Errors   []string
}

// backfillBatchSize bounds one embedding request during backfill.
const backfillBatchSize = 16

// BackfillEmbeddings embeds every entry still missing a vector, in
// batches. A failed batch retries entry by entry so one bad entry is
// skipped and reported instead of stalling the rest of the pool.
func (s *IndexerService) BackfillEmbeddings(ctx context.Context, project string, progress BackfillProgress) (*BackfillResult, error) {
	if s.embedder == nil {
		return nil, fmt.Errorf("no embedder configured")
	}

	pending, err := s.db.ListEntriesMissingEmbedding(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("list pending entries: %w", err)
	}

	result := &BackfillResult{}
	for start := 0; start < len(pending); start += backfillBatchSize {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		end := start + backfillBatchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		texts := make([]string, len(batch))
		for i, entry := range batch {
			texts[i] = embeddingText(entry)
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			slog.Warn("batch embedding failed, retrying entries individually",
				"batch_start", start, "error", err)
			vectors = make([][]float32, len(batch))
			for i, entry := range batch {
				if vectors[i], err = s.embedder.Embed(ctx, texts[i]); err != nil {
					slog.Warn("backfill embedding failed", "title", entry.Title, "error", err)
					vectors[i] = nil
				}
			}
		}

		for i, entry := range batch {
			if vectors[i] == nil {
				result.Skipped++
				result.Errors = append(result.Errors, fmt.Sprintf("%s: embedding failed", entry.Title))
				continue
			}

			if err := s.storeEmbedding(ctx, entry, vectors[i]); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", entry.Title, err))
				continue
			}
			result.Embedded++
			if progress != nil {
				progress(start+i+1, len(pending), entry.Title)
			}
		}
	}

	slog.Info("backfill finished", "project", project,
		"embedded", result.Embedded, "skipped", result.Skipped)
	return result, nil
}

func (s *IndexerService) storeEmbedding(ctx context.Context, entry models.DreamEntry, vector []float32) error {
	id, err := models.RecordIDString(entry.ID)
	if err != nil {
		return err
	}
	return s.db.SetEmbedding(ctx, id, vector)
}

// embeddingText is the canonical text a dream is indexed under: title,
// tags and summary together, so pattern queries can hit any of them.
func embeddingText(entry models.DreamEntry) string {
	var sb strings.Builder
	sb.WriteString(entry.Title)
	if len(entry.Tags) > 0 {
		sb.WriteString("\nTags: ")
		sb.WriteString(strings.Join(entry.Tags, ", "))
	}
	if len(entry.KeyEntities) > 0 {
		sb.WriteString("\nEntities: ")
		sb.WriteString(strings.Join(entry.KeyEntities, ", "))
	}
	sb.WriteString("\n")
	sb.WriteString(entry.Summary)
	return sb.String()
}
