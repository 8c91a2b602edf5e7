package documents

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoCreateBindsAllColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	doc := Document{
		ID:             "doc-1",
		OwnerID:        "user-1",
		Title:          "visit.txt",
		StorageKey:     "abc/visit.txt",
		MimeType:       "text/plain",
		SizeBytes:      37,
		Kind:           KindDocument,
		NormalizedText: "patient fever cough",
		CreatedAt:      time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO documents").
		WithArgs(
			doc.ID,
			doc.OwnerID,
			doc.Title,
			sqlmock.AnyArg(), // storage_key
			doc.MimeType,
			doc.SizeBytes,
			string(doc.Kind),
			doc.NormalizedText,
			nil, // caption empty for documents
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), doc); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectQuery("SELECT id, owner_id, title").
		WithArgs("user-1", "missing").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "owner_id", "title", "storage_key", "mime_type",
			"size_bytes", "kind", "normalized_text", "caption", "created_at",
		}))

	if _, err := repo.GetByID(context.Background(), "user-1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListKindExcludesDocument(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	rows := sqlmock.NewRows([]string{"id", "title", "normalized_text"}).
		AddRow("doc-a", "xray.pdf", "chest xray opacity").
		AddRow("doc-b", "panel.pdf", "blood test normal")

	mock.ExpectQuery("SELECT id, title, normalized_text").
		WithArgs("user-1", string(KindDocument), "doc-new").
		WillReturnRows(rows)

	corpus, err := repo.ListKind(context.Background(), "user-1", KindDocument, "doc-new")
	if err != nil {
		t.Fatalf("ListKind: %v", err)
	}
	if len(corpus) != 2 {
		t.Fatalf("expected 2 corpus docs, got %d", len(corpus))
	}
	if corpus[0].ID != "doc-a" || corpus[0].NormalizedText != "chest xray opacity" {
		t.Fatalf("unexpected first corpus doc: %+v", corpus[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListByOwnerScansNulls(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	created := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "owner_id", "title", "storage_key", "mime_type",
		"size_bytes", "kind", "normalized_text", "caption", "created_at",
	}).AddRow("img-1", "user-1", "scan.png", nil, "image/png", int64(1024), "image", nil, "Error analyzing image.", created)

	mock.ExpectQuery("SELECT id, owner_id, title").
		WithArgs("user-1", 20, 0).
		WillReturnRows(rows)

	docs, err := repo.ListByOwner(context.Background(), "user-1", 20, 0)
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	doc := docs[0]
	if doc.StorageKey != "" || doc.NormalizedText != "" {
		t.Fatalf("expected NULL columns to scan as empty, got %+v", doc)
	}
	if doc.Kind != KindImage || doc.Caption != "Error analyzing image." {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
