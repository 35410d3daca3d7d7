package service

import (
	"context"
	"fmt"
	"time"

	"github.com/nsorokin/web-scheduler/backend/internal/domain"
	"github.com/nsorokin/web-scheduler/backend/internal/repo"
)

// Audit listing window bounds. Requests outside the range are clamped, not
// rejected, matching the original UI's expectations.
const (
	DefaultAuditDays = 2
	MaxAuditDays     = 365
)

// AuditService implements the read side of the audit log.
// Writes never go through here — they flow through the async recorder.
type AuditService struct {
	audit repo.AuditRepo
	now   func() time.Time
}

// NewAuditService constructs an AuditService backed by the provided repo.
func NewAuditService(audit repo.AuditRepo) *AuditService {
	return &AuditService{audit: audit, now: time.Now}
}

// List returns entries from the last `days` days, newest first.
// days is clamped to [1, MaxAuditDays]; zero or negative falls back to the
// default window.
func (s *AuditService) List(ctx context.Context, days int) ([]domain.AuditEntry, error) {
	if days < 1 {
		days = DefaultAuditDays
	}
	if days > MaxAuditDays {
		days = MaxAuditDays
	}

	since := s.now().UTC().AddDate(0, 0, -days).Truncate(time.Second).Format("2006-01-02T15:04:05Z")
	entries, err := s.audit.ListSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("service.AuditService.List: %w", err)
	}
	if entries == nil {
		return []domain.AuditEntry{}, nil
	}
	return entries, nil
}
