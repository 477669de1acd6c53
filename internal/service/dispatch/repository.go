package dispatch

import (
	"context"
	"time"

	"github.com/luminaed/atrium/internal/domain"
)

// CampaignRepository persists campaign metadata and the derived status.
type CampaignRepository interface {
	Upsert(ctx context.Context, c *domain.Campaign) error
	UpdateStatus(ctx context.Context, id string, status domain.CampaignStatus) error
}

// RecipientRepository persists per-recipient delivery state. UpsertPending
// conflicts on (campaign_id, manual_email) and rewrites r.ID with the
// surviving row's id, so re-sends reuse the existing row instead of
// duplicating it.
type RecipientRepository interface {
	UpsertPending(ctx context.Context, r *domain.Recipient) error
	MarkSent(ctx context.Context, id string, at time.Time) error
	MarkFailed(ctx context.Context, id string, errMsg string) error
	CountByStatus(ctx context.Context, campaignID string) (domain.RecipientStatusCounts, error)
}
