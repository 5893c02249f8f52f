package engine

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	lru "github.com/hashicorp/golang-lru/v2"

	errs "github.com/quarry-search/quarry/internal/errors"
	"github.com/quarry-search/quarry/internal/model"
	"github.com/quarry-search/quarry/internal/stream"
)

// queryCacheSize bounds the per-engine query result cache. The cache is
// purged on every commit, so it only ever serves results from the current
// index generation.
const queryCacheSize = 128

// bleveDocument is the schema stored in the index: every field is stored
// for retrieval; id, link and source are indexed for exact match, title
// and content as full text.
type bleveDocument struct {
	ID      string `json:"id"`
	Source  string `json:"source"`
	Title   string `json:"title"`
	Link    string `json:"link"`
	Content string `json:"content"`
}

// Bleve implements Engine on a bleve index.
type Bleve struct {
	mu     sync.RWMutex
	index  bleve.Index
	path   string
	cache  *lru.Cache[string, []model.FoundItem]
	logger *slog.Logger
	closed bool
}

// NewBleve opens (or creates) a bleve index at path. An empty path creates
// an in-memory index, which is what tests use.
func NewBleve(path string, logger *slog.Logger) (*Bleve, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		idx bleve.Index
		err error
	)
	mapping := buildIndexMapping()
	if path == "" {
		idx, err = bleve.NewMemOnly(mapping)
	} else {
		idx, err = bleve.Open(path)
		if err == bleve.ErrorIndexPathDoesNotExist {
			idx, err = bleve.New(path, mapping)
		}
	}
	if err != nil {
		return nil, errs.New(errs.ErrCodeEngineIndex, "opening index", err).WithDetail("path", path)
	}

	cache, err := lru.New[string, []model.FoundItem](queryCacheSize)
	if err != nil {
		_ = idx.Close()
		return nil, errs.New(errs.ErrCodeInternal, "creating query cache", err)
	}

	return &Bleve{index: idx, path: path, cache: cache, logger: logger}, nil
}

// buildIndexMapping declares the fixed schema.
func buildIndexMapping() mapping.IndexMapping {
	keyword := bleve.NewKeywordFieldMapping()
	text := bleve.NewTextFieldMapping()

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("id", keyword)
	doc.AddFieldMappingsAt("source", keyword)
	doc.AddFieldMappingsAt("link", keyword)
	doc.AddFieldMappingsAt("title", text)
	doc.AddFieldMappingsAt("content", text)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	return m
}

// docKey builds the index key. Source and id together are the addressable
// identity, so re-indexing upserts instead of duplicating.
func docKey(source, id string) string {
	return source + "/" + id
}

// Index upserts the batch and commits. Only one Index call holds the
// write lock at a time; concurrent calls queue behind it, which keeps
// commit order equal to invocation order.
func (e *Bleve) Index(ctx context.Context, docs []model.Document) error {
	if len(docs) == 0 {
		return nil
	}
	for _, d := range docs {
		if d.ID == "" || d.Source == "" {
			return errs.New(errs.ErrCodeEngineIndex, "document is missing id or source", nil).
				WithDetail("title", d.Title)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return errs.New(errs.ErrCodeEngineClosed, "index is closed", nil)
	}

	batch := e.index.NewBatch()
	for _, d := range docs {
		stored := bleveDocument{
			ID:      d.ID,
			Source:  d.Source,
			Title:   d.Title,
			Link:    d.Link,
			Content: d.Content,
		}
		if err := batch.Index(docKey(d.Source, d.ID), stored); err != nil {
			return errs.Newf(errs.ErrCodeEngineIndex, err, "adding document %s to batch", d.ID)
		}
	}

	if err := e.index.Batch(batch); err != nil {
		return errs.New(errs.ErrCodeEngineIndex, "committing batch", err)
	}

	e.cache.Purge()
	e.logger.Debug("batch_committed", slog.Int("documents", len(docs)))
	return nil
}

// Search runs the query off the caller's goroutine and streams the ranked
// results. Searches only take the read lock, so they run fully
// concurrently with each other.
func (e *Bleve) Search(ctx context.Context, query string) *stream.Stream[model.FoundItem] {
	return stream.Generate(1, func(tx stream.Sender[model.FoundItem]) error {
		items, err := e.query(ctx, query)
		if err != nil {
			return err
		}
		for _, item := range items {
			if err := tx.Send(ctx, item); err != nil {
				return err
			}
		}
		return nil
	})
}

func (e *Bleve) query(ctx context.Context, queryStr string) ([]model.FoundItem, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return nil, errs.New(errs.ErrCodeEngineClosed, "index is closed", nil)
	}
	if queryStr == "" {
		return nil, nil
	}
	if cached, ok := e.cache.Get(queryStr); ok {
		return cached, nil
	}

	title := bleve.NewMatchQuery(queryStr)
	title.SetField("title")
	content := bleve.NewMatchQuery(queryStr)
	content.SetField("content")

	req := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(title, content))
	req.Size = TopK
	req.Fields = []string{"id", "source", "title", "link", "content"}

	result, err := e.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, errs.Newf(errs.ErrCodeEngineSearch, err, "searching %q", queryStr)
	}

	items := make([]model.FoundItem, 0, len(result.Hits))
	for _, hit := range result.Hits {
		body := fieldString(hit.Fields, "content")
		items = append(items, model.FoundItem{
			ID:      fieldString(hit.Fields, "id"),
			Score:   hit.Score,
			Source:  fieldString(hit.Fields, "source"),
			Title:   fieldString(hit.Fields, "title"),
			Link:    fieldString(hit.Fields, "link"),
			Snippet: makeSnippet(body, queryStr),
		})
	}

	e.cache.Add(queryStr, items)
	return items, nil
}

// Count returns the number of documents in the index.
func (e *Bleve) Count() (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return 0, errs.New(errs.ErrCodeEngineClosed, "index is closed", nil)
	}
	return e.index.DocCount()
}

// Purge closes the engine and removes the on-disk index.
func (e *Bleve) Purge() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.index != nil && !e.closed {
		_ = e.index.Close()
		e.closed = true
	}
	e.cache.Purge()

	if e.path == "" {
		return nil
	}
	if err := os.RemoveAll(e.path); err != nil {
		return errs.Newf(errs.ErrCodeEngineIndex, err, "removing index at %s", e.path)
	}
	return nil
}

// Close closes the underlying index.
func (e *Bleve) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	if e.index != nil {
		return e.index.Close()
	}
	return nil
}

// fieldString extracts a stored string field from a hit.
func fieldString(fields map[string]interface{}, name string) string {
	if v, ok := fields[name].(string); ok {
		return v
	}
	return ""
}

// Verify interface implementation.
var _ Engine = (*Bleve)(nil)
