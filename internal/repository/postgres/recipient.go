package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/luminaed/atrium/internal/domain"
)

// RecipientRepo implements dispatch.RecipientRepository against PostgreSQL.
//
// The email_recipients table carries two partial unique indexes, one on
// (campaign_id, manual_email) and one on (campaign_id, person_id), so a
// re-dispatched recipient lands on its existing row instead of a new one.
type RecipientRepo struct{ db *sql.DB }

// NewRecipientRepo creates a Postgres-backed recipient repository.
func NewRecipientRepo(db *sql.DB) *RecipientRepo { return &RecipientRepo{db: db} }

func (r *RecipientRepo) UpsertPending(ctx context.Context, rec *domain.Recipient) error {
	conflict := "(campaign_id, person_id) WHERE person_id IS NOT NULL"
	if rec.ManualEmail != nil {
		conflict = "(campaign_id, manual_email) WHERE manual_email IS NOT NULL"
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO email_recipients (id, campaign_id, person_id, manual_email, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT `+conflict+` DO UPDATE SET
			status = EXCLUDED.status,
			sent_at = NULL,
			error_message = '',
			updated_at = NOW()
		RETURNING id
	`, rec.ID, rec.CampaignID, rec.PersonID, rec.ManualEmail, rec.Status).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("upsert recipient: %w", err)
	}
	return nil
}

func (r *RecipientRepo) MarkSent(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE email_recipients
		SET status = $2, sent_at = $3, error_message = '', updated_at = NOW()
		WHERE id = $1
	`, id, domain.RecipientSent, at)
	if err != nil {
		return fmt.Errorf("mark recipient sent: %w", err)
	}
	return nil
}

func (r *RecipientRepo) MarkFailed(ctx context.Context, id string, errMsg string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE email_recipients
		SET status = $2, error_message = $3, updated_at = NOW()
		WHERE id = $1
	`, id, domain.RecipientFailed, errMsg)
	if err != nil {
		return fmt.Errorf("mark recipient failed: %w", err)
	}
	return nil
}

func (r *RecipientRepo) CountByStatus(ctx context.Context, campaignID string) (domain.RecipientStatusCounts, error) {
	var c domain.RecipientStatusCounts
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'pending'),
		       COUNT(*) FILTER (WHERE status = 'sent'),
		       COUNT(*) FILTER (WHERE status = 'failed')
		FROM email_recipients
		WHERE campaign_id = $1
	`, campaignID).Scan(&c.Total, &c.Pending, &c.Sent, &c.Failed)
	if err != nil {
		return domain.RecipientStatusCounts{}, fmt.Errorf("count recipients: %w", err)
	}
	return c, nil
}
