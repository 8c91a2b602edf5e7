package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"medlense-backend/internal/analyzer"
	"medlense-backend/internal/extract"
	"medlense-backend/internal/shared/metrics"
	"medlense-backend/internal/shared/storage/object"
	"medlense-backend/internal/shared/telemetry"
	"medlense-backend/internal/similarity"
	"medlense-backend/internal/textproc"
)

// Analyzer is the external image analysis collaborator. Failures are
// recovered locally with the documented fallback, never surfaced.
type Analyzer interface {
	Analyze(ctx context.Context, fileName string, data []byte) (analyzer.Result, error)
}

// Service runs the ingestion pipeline: extraction, normalization, the
// image/document branch, similarity scoring against the owner's corpus, and
// the persistence handoff.
type Service struct {
	Repo     Repo
	Store    object.ObjectStore
	Analyzer Analyzer
	Ranker   similarity.RankerConfig
}

// IngestResult is what one upload produces: the persisted document plus the
// request-scoped (never persisted) similarity matches.
type IngestResult struct {
	Document      Document
	Caption       string
	ExtractedText string
	Matches       []similarity.Match
}

const fallbackCaptionMissing = "No caption generated."

// Ingest processes one uploaded file for ownerID. Extraction failures abort
// with an error wrapping extract.ErrExtraction and nothing is persisted;
// analyzer failures degrade to the fallback caption; scoring problems degrade
// to an empty match list. Each call is an independent, sequential unit of
// work reading a snapshot of the corpus as it exists right now.
func (s *Service) Ingest(ctx context.Context, ownerID, fileName, mimeType string, r io.Reader) (IngestResult, error) {
	if ownerID == "" || fileName == "" {
		return IngestResult{}, ErrInvalidInput
	}

	metrics.IncIngestStarted()
	start := time.Now()
	res, err := s.ingest(ctx, ownerID, fileName, mimeType, r)
	if err != nil {
		metrics.IncIngestFailed()
		return IngestResult{}, err
	}
	metrics.IncIngestCompleted()
	metrics.ObserveIngestDurationMs(float64(time.Since(start).Microseconds()) / 1000.0)
	return res, nil
}

func (s *Service) ingest(ctx context.Context, ownerID, fileName, mimeType string, r io.Reader) (IngestResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return IngestResult{}, fmt.Errorf("read upload: %w", err)
	}

	var (
		kind          Kind
		caption       string
		extractedText string
		normalized    string
	)

	if extract.IsImage(mimeType) {
		kind = KindImage
		res, analyzeErr := s.Analyzer.Analyze(ctx, fileName, data)
		if analyzeErr != nil {
			// An analyzer outage never blocks image ingestion.
			telemetry.Warn("ingest.analyzer_failed", map[string]any{
				"owner_id": ownerID,
				"file":     fileName,
				"err":      analyzeErr.Error(),
			})
			caption = analyzer.FallbackCaption
		} else {
			caption = res.Caption
			if caption == "" {
				caption = fallbackCaptionMissing
			}
			extractedText = res.ExtractedText
		}
		normalized = textproc.Normalize(extractedText)
	} else {
		kind = KindDocument
		rawText, extractErr := extract.Text(data, mimeType, fileName)
		if extractErr != nil {
			return IngestResult{}, extractErr
		}
		normalized = textproc.Normalize(rawText)
	}

	var matches []similarity.Match
	if kind == KindDocument {
		matches = s.scoreAgainstCorpus(ctx, ownerID, normalized)
	}

	storageKey, size, _, err := s.Store.Save(ctx, ownerID, fileName, bytes.NewReader(data))
	if err != nil {
		return IngestResult{}, fmt.Errorf("store upload: %w", err)
	}

	doc := Document{
		ID:             uuid.NewString(),
		OwnerID:        ownerID,
		Title:          fileName,
		StorageKey:     storageKey,
		MimeType:       mimeType,
		SizeBytes:      size,
		Kind:           kind,
		NormalizedText: normalized,
		Caption:        caption,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		return IngestResult{}, fmt.Errorf("persist document: %w", err)
	}

	if matches == nil {
		matches = []similarity.Match{}
	}
	return IngestResult{
		Document:      doc,
		Caption:       caption,
		ExtractedText: extractedText,
		Matches:       matches,
	}, nil
}

// scoreAgainstCorpus ranks the normalized text against the owner's prior
// document-kind records. The new document is not yet persisted, so nothing
// needs excluding. Any failure here degrades to no matches; a document whose
// extraction succeeded is always ingested.
func (s *Service) scoreAgainstCorpus(ctx context.Context, ownerID, normalized string) []similarity.Match {
	corpus, err := s.Repo.ListKind(ctx, ownerID, KindDocument, "")
	if err != nil {
		telemetry.Error("ingest.corpus_fetch_failed", map[string]any{
			"owner_id": ownerID,
			"err":      err.Error(),
		})
		return []similarity.Match{}
	}
	if len(corpus) == 0 {
		// Fewer than two documents in the space: similarity is undefined,
		// skip vectorization entirely.
		return []similarity.Match{}
	}

	texts := make([]string, 0, len(corpus)+1)
	texts = append(texts, normalized)
	for _, doc := range corpus {
		texts = append(texts, doc.NormalizedText)
	}
	vectors := similarity.BuildVectors(texts)

	candidates := make([]similarity.Match, 0, len(corpus))
	for i, doc := range corpus {
		candidates = append(candidates, similarity.Match{
			DocumentID: doc.ID,
			Title:      doc.Title,
			Score:      similarity.Cosine(vectors[0], vectors[i+1]),
		})
	}
	return similarity.Rank(candidates, s.Ranker)
}

// Get returns one document owned by ownerID.
func (s *Service) Get(ctx context.Context, ownerID, documentID string) (Document, error) {
	if ownerID == "" || documentID == "" {
		return Document{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, ownerID, documentID)
}

// List returns the owner's documents newest-first.
func (s *Service) List(ctx context.Context, ownerID string, limit, offset int) ([]Document, error) {
	if ownerID == "" {
		return nil, errors.New("owner id required")
	}
	return s.Repo.ListByOwner(ctx, ownerID, limit, offset)
}
