// Package attachments implements lead file attachments for Prospect.
// It provides types, data access, and business logic for attachment
// upload, metadata management, and blob storage integration. Typical
// payloads are pitch decks, RFP documents, and exported conversations
// tied to a lead under qualification.
package attachments

import (
	"time"

	"github.com/google/uuid"
)

// Attachment represents a stored file with its metadata and blob storage reference.
type Attachment struct {
	ID          uuid.UUID `json:"id"`
	LeadID      uuid.UUID `json:"lead_id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	PageCount   *int      `json:"page_count"`
	StorageKey  string    `json:"storage_key"`
	UploadedAt  time.Time `json:"uploaded_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateCommand carries the data needed to upload and register a new attachment.
// Data holds the raw file bytes. PageCount is optional and may be extracted
// by the caller via pdfcpu; nil values are stored as NULL.
type CreateCommand struct {
	Data        []byte
	LeadID      uuid.UUID
	Filename    string
	ContentType string
	PageCount   *int
}
