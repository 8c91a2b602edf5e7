package documents

import (
	"time"

	"medlense-backend/internal/similarity"
)

// IngestResponse is the outward-facing result of one upload. Fields
// irrelevant to a branch are empty: documents carry matches, images carry
// caption and extractedText.
type IngestResponse struct {
	Message       string             `json:"message"`
	Submitted     string             `json:"submitted"`
	Caption       string             `json:"caption"`
	ExtractedText string             `json:"extractedText"`
	Matches       []similarity.Match `json:"matches"`
}

const (
	messageDocument = "Document uploaded successfully"
	messageImage    = "Image analyzed successfully"
)

func toIngestResponse(res IngestResult) IngestResponse {
	msg := messageDocument
	if res.Document.Kind == KindImage {
		msg = messageImage
	}
	return IngestResponse{
		Message:       msg,
		Submitted:     res.Document.ID,
		Caption:       res.Caption,
		ExtractedText: res.ExtractedText,
		Matches:       res.Matches,
	}
}

// DocumentResponse is the outward-facing representation of a stored document.
type DocumentResponse struct {
	DocumentID string    `json:"documentId"`
	Title      string    `json:"title"`
	MimeType   string    `json:"mimeType"`
	SizeBytes  int64     `json:"sizeBytes"`
	Kind       string    `json:"kind"`
	Caption    string    `json:"caption,omitempty"`
	UploadedAt time.Time `json:"uploadedAt"`
}

func toDocumentResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		DocumentID: doc.ID,
		Title:      doc.Title,
		MimeType:   doc.MimeType,
		SizeBytes:  doc.SizeBytes,
		Kind:       string(doc.Kind),
		Caption:    doc.Caption,
		UploadedAt: doc.CreatedAt,
	}
}
