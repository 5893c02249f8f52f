// Package model defines the data types that flow through the ingestion
// pipeline and the search facade.
package model

// Document is one unit of ingested content. A Document is immutable once
// produced by a source; the index addresses it by (Source, ID).
type Document struct {
	// ID is unique within one source. For file-backed sources this is the
	// file's full path.
	ID string `json:"id"`

	// Source is the identifier of the configured source that produced
	// this document.
	Source string `json:"source"`

	// Title is a short human-readable name, e.g. the file's base name.
	Title string `json:"title"`

	// Link is a stable locator for the document (path or URL).
	Link string `json:"link"`

	// Content is the full document body.
	Content string `json:"content"`

	// Metadata holds additional string attributes. Ordering is irrelevant.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// FoundItem is a single scored search result. It is ephemeral: produced by
// a query, never persisted.
type FoundItem struct {
	ID      string  `json:"id"`
	Score   float64 `json:"score"`
	Source  string  `json:"source"`
	Title   string  `json:"title"`
	Link    string  `json:"link"`
	Snippet string  `json:"snippet,omitempty"`
}

// Repository describes one git repository to clone and ingest.
type Repository struct {
	Name     string `json:"name"`
	CloneURL string `json:"cloneUrl"`
}
