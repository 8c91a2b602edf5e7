package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"medlense-backend/internal/analyzer"
	"medlense-backend/internal/extract"
	"medlense-backend/internal/similarity"
)

type fakeStore struct {
	saved   map[string][]byte
	saveErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{saved: make(map[string][]byte)}
}

func (s *fakeStore) Save(ctx context.Context, userId, fileName string, r io.Reader) (string, int64, string, error) {
	if s.saveErr != nil {
		return "", 0, "", s.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, "", err
	}
	key := fmt.Sprintf("%s/%s", userId, fileName)
	s.saved[key] = data
	return key, int64(len(data)), "application/octet-stream", nil
}

func (s *fakeStore) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	data, ok := s.saved[storageKey]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

type fakeAnalyzer struct {
	result analyzer.Result
	err    error
	calls  int
}

func (a *fakeAnalyzer) Analyze(ctx context.Context, fileName string, data []byte) (analyzer.Result, error) {
	a.calls++
	return a.result, a.err
}

func newTestService(repo Repo, store *fakeStore, an *fakeAnalyzer) *Service {
	return &Service{
		Repo:     repo,
		Store:    store,
		Analyzer: an,
		Ranker:   similarity.DefaultRankerConfig(),
	}
}

func seedDocument(t *testing.T, repo Repo, ownerID, id, title, normalized string) {
	t.Helper()
	err := repo.Create(context.Background(), Document{
		ID:             id,
		OwnerID:        ownerID,
		Title:          title,
		Kind:           KindDocument,
		NormalizedText: normalized,
		CreatedAt:      time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed document: %v", err)
	}
}

func TestIngestFirstDocumentHasNoMatches(t *testing.T) {
	repo := NewMemoryRepo()
	store := newFakeStore()
	svc := newTestService(repo, store, &fakeAnalyzer{})

	body := "patient presents with fever and cough"
	res, err := svc.Ingest(context.Background(), "user-1", "visit.txt", "text/plain", strings.NewReader(body))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if res.Document.Kind != KindDocument {
		t.Fatalf("expected document kind, got %s", res.Document.Kind)
	}
	if len(res.Matches) != 0 {
		t.Fatalf("expected no matches on first upload, got %+v", res.Matches)
	}
	if res.Document.NormalizedText == "" {
		t.Fatalf("expected normalized text to be stored")
	}

	stored, err := repo.GetByID(context.Background(), "user-1", res.Document.ID)
	if err != nil {
		t.Fatalf("expected document persisted: %v", err)
	}
	if stored.StorageKey == "" {
		t.Fatalf("expected storage key on persisted document")
	}
	if _, ok := store.saved[stored.StorageKey]; !ok {
		t.Fatalf("expected upload saved in object store")
	}
}

func TestIngestRanksAgainstOwnerCorpus(t *testing.T) {
	repo := NewMemoryRepo()
	store := newFakeStore()
	svc := newTestService(repo, store, &fakeAnalyzer{})

	seedDocument(t, repo, "user-1", "doc-a", "chest-xray.pdf", "chest xray shows mild opacity")
	seedDocument(t, repo, "user-1", "doc-b", "blood-panel.pdf", "blood test results normal")

	res, err := svc.Ingest(context.Background(), "user-1", "followup.txt", "text/plain",
		strings.NewReader("chest xray mild opacity noted"))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if len(res.Matches) != 1 {
		t.Fatalf("expected exactly the related document to match, got %+v", res.Matches)
	}
	if res.Matches[0].DocumentID != "doc-a" {
		t.Fatalf("expected doc-a to match, got %s", res.Matches[0].DocumentID)
	}
	if res.Matches[0].Score <= similarity.DefaultThreshold || res.Matches[0].Score > 1 {
		t.Fatalf("score out of range: %v", res.Matches[0].Score)
	}
}

func TestIngestDoesNotMatchAcrossOwners(t *testing.T) {
	repo := NewMemoryRepo()
	store := newFakeStore()
	svc := newTestService(repo, store, &fakeAnalyzer{})

	seedDocument(t, repo, "other-user", "doc-x", "chest-xray.pdf", "chest xray shows mild opacity")

	res, err := svc.Ingest(context.Background(), "user-1", "followup.txt", "text/plain",
		strings.NewReader("chest xray mild opacity noted"))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if len(res.Matches) != 0 {
		t.Fatalf("expected no cross-owner matches, got %+v", res.Matches)
	}
}

func TestIngestImageUsesAnalyzerCaption(t *testing.T) {
	repo := NewMemoryRepo()
	store := newFakeStore()
	an := &fakeAnalyzer{result: analyzer.Result{Caption: "chest x-ray", ExtractedText: "Opacity in left lung"}}
	svc := newTestService(repo, store, an)

	res, err := svc.Ingest(context.Background(), "user-1", "scan.png", "image/png",
		bytes.NewReader([]byte{0x89, 'P', 'N', 'G'}))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if an.calls != 1 {
		t.Fatalf("expected analyzer to be called once, got %d", an.calls)
	}
	if res.Document.Kind != KindImage {
		t.Fatalf("expected image kind, got %s", res.Document.Kind)
	}
	if res.Caption != "chest x-ray" {
		t.Fatalf("unexpected caption: %q", res.Caption)
	}
	if res.ExtractedText != "Opacity in left lung" {
		t.Fatalf("unexpected extracted text: %q", res.ExtractedText)
	}
	if res.Document.NormalizedText != "opacity left lung" {
		t.Fatalf("expected recognized text normalized, got %q", res.Document.NormalizedText)
	}
	if len(res.Matches) != 0 {
		t.Fatalf("images must not produce matches, got %+v", res.Matches)
	}
}

func TestIngestImageAnalyzerFailureFallsBack(t *testing.T) {
	repo := NewMemoryRepo()
	store := newFakeStore()
	an := &fakeAnalyzer{err: errors.New("connection refused")}
	svc := newTestService(repo, store, an)

	res, err := svc.Ingest(context.Background(), "user-1", "scan.jpg", "image/jpeg",
		bytes.NewReader([]byte{0xff, 0xd8, 0xff}))
	if err != nil {
		t.Fatalf("analyzer failure must not abort ingestion: %v", err)
	}

	if res.Caption != analyzer.FallbackCaption {
		t.Fatalf("expected fallback caption, got %q", res.Caption)
	}
	if _, err := repo.GetByID(context.Background(), "user-1", res.Document.ID); err != nil {
		t.Fatalf("expected image persisted despite analyzer failure: %v", err)
	}
}

func TestIngestImageEmptyCaptionGetsPlaceholder(t *testing.T) {
	repo := NewMemoryRepo()
	store := newFakeStore()
	an := &fakeAnalyzer{result: analyzer.Result{}}
	svc := newTestService(repo, store, an)

	res, err := svc.Ingest(context.Background(), "user-1", "scan.png", "image/png",
		bytes.NewReader([]byte{0x89, 'P', 'N', 'G'}))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if res.Caption != fallbackCaptionMissing {
		t.Fatalf("expected placeholder caption, got %q", res.Caption)
	}
}

func TestIngestExtractionFailurePersistsNothing(t *testing.T) {
	repo := NewMemoryRepo()
	store := newFakeStore()
	svc := newTestService(repo, store, &fakeAnalyzer{})

	_, err := svc.Ingest(context.Background(), "user-1", "broken.pdf", "application/pdf",
		strings.NewReader("not a real pdf"))
	if err == nil {
		t.Fatalf("expected extraction error")
	}
	if !errors.Is(err, extract.ErrExtraction) {
		t.Fatalf("expected extract.ErrExtraction, got %v", err)
	}

	docs, err := repo.ListByOwner(context.Background(), "user-1", 10, 0)
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("expected nothing persisted, got %d documents", len(docs))
	}
	if len(store.saved) != 0 {
		t.Fatalf("expected nothing stored, got %d objects", len(store.saved))
	}
}

func TestIngestRequiresOwnerAndFileName(t *testing.T) {
	svc := newTestService(NewMemoryRepo(), newFakeStore(), &fakeAnalyzer{})

	if _, err := svc.Ingest(context.Background(), "", "a.txt", "text/plain", strings.NewReader("x")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty owner, got %v", err)
	}
	if _, err := svc.Ingest(context.Background(), "user-1", "", "text/plain", strings.NewReader("x")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty file name, got %v", err)
	}
}

func TestGetScopedToOwner(t *testing.T) {
	repo := NewMemoryRepo()
	svc := newTestService(repo, newFakeStore(), &fakeAnalyzer{})
	seedDocument(t, repo, "user-1", "doc-a", "a.txt", "text")

	if _, err := svc.Get(context.Background(), "user-2", "doc-a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other owner, got %v", err)
	}
	doc, err := svc.Get(context.Background(), "user-1", "doc-a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if doc.ID != "doc-a" {
		t.Fatalf("unexpected document: %+v", doc)
	}
}
