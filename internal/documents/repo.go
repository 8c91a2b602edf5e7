package documents

import "context"

// Repo defines persistence operations for documents. Created documents must
// be immediately visible to subsequent reads from the same process.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, ownerID, documentID string) (Document, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Document, error)
	// ListKind returns the owner's documents of one kind, oldest first, as
	// corpus projections. excludeID, when non-empty, drops that document.
	ListKind(ctx context.Context, ownerID string, kind Kind, excludeID string) ([]CorpusDoc, error)
}
