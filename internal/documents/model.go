package documents

import "time"

// Kind distinguishes text documents from medical images. It is fixed at
// creation and never mutated.
type Kind string

const (
	KindDocument Kind = "document"
	KindImage    Kind = "image"
)

// Document is one ingested artifact owned by a user. Records are created
// atomically once the pipeline completes and are immutable afterwards.
type Document struct {
	ID             string
	OwnerID        string
	Title          string // original filename, display only
	StorageKey     string // opaque object-store reference; empty after cleanup
	MimeType       string
	SizeBytes      int64
	Kind           Kind
	NormalizedText string // empty for images whose recognized text failed
	Caption        string // populated only for images
	CreatedAt      time.Time
}

// CorpusDoc is the slim projection used for similarity comparison: the
// per-user set of prior document-kind records.
type CorpusDoc struct {
	ID             string
	Title          string
	NormalizedText string
}
