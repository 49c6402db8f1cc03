package service

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type SessionStorage interface {
	CreateSession(ctx context.Context) (*Session, error)
	// GetOrCreateSession returns the session, creating an empty one on first access.
	GetOrCreateSession(ctx context.Context, id uuid.UUID) (*Session, error)
	// UpdateSession applies fn to the stored record and returns the result.
	UpdateSession(ctx context.Context, id uuid.UUID, fn func(record *FormRecord) error) (*Session, error)
	// ResetSession replaces the stored record with a fresh one.
	ResetSession(ctx context.Context, id uuid.UUID) error
	// DeleteIdleSessions removes sessions last accessed before the cutoff.
	DeleteIdleSessions(ctx context.Context, cutoff time.Time) (int, error)
}

type SessionService interface {
	CreateSession(ctx context.Context) (*Session, error)
	GetSession(ctx context.Context, id uuid.UUID) (*Session, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields FormFields) (*Session, error)
	AppendRow(ctx context.Context, id uuid.UUID, kind TableKind) (*TableUpdate, error)
	UpdateRow(ctx context.Context, id uuid.UUID, kind TableKind, index int, values map[string]string) (*TableUpdate, error)
	ImportRows(ctx context.Context, id uuid.UUID, kind TableKind, csv string) (*TableUpdate, error)
	RenderDocument(ctx context.Context, id uuid.UUID) (*RenderedDocument, error)
	DraftNarrative(ctx context.Context, id uuid.UUID) (*Draft, error)
	Submit(ctx context.Context, id uuid.UUID, attachments []*Attachment) (*SubmissionReceipt, error)
	ExpireIdleSessions(ctx context.Context) (int, error)
}

// Session owns the form draft of one user between submissions.
type Session struct {
	ID           uuid.UUID   `json:"id"`
	Record       *FormRecord `json:"record"`
	Created      time.Time   `json:"created"`
	LastAccessed time.Time   `json:"last_accessed"`
}

// TableUpdate is returned after a table has been modified.
type TableUpdate struct {
	SessionID uuid.UUID     `json:"session_id"`
	Kind      TableKind     `json:"kind"`
	Index     int           `json:"index"`
	Rows      *TableSection `json:"rows"`
}

// NewDraftRecord returns the record a fresh session starts with.
func NewDraftRecord(now time.Time) *FormRecord {
	r := NewFormRecord()
	r.Version = DefaultVersion
	r.DateCreated = now.Format(DateLayout)
	r.Frequency = FrequencyDaily

	return r
}
