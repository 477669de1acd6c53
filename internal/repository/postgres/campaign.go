package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/luminaed/atrium/internal/domain"
)

// CampaignRepo implements dispatch.CampaignRepository against PostgreSQL.
type CampaignRepo struct{ db *sql.DB }

// NewCampaignRepo creates a Postgres-backed campaign repository.
func NewCampaignRepo(db *sql.DB) *CampaignRepo { return &CampaignRepo{db: db} }

func (r *CampaignRepo) Upsert(ctx context.Context, c *domain.Campaign) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO email_campaigns (id, title, subject, body, footer, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			subject = EXCLUDED.subject,
			body = EXCLUDED.body,
			footer = EXCLUDED.footer,
			status = EXCLUDED.status,
			updated_at = NOW()
	`, c.ID, c.Title, c.Subject, c.Body, c.Footer, c.Status)
	if err != nil {
		return fmt.Errorf("upsert campaign: %w", err)
	}
	return nil
}

func (r *CampaignRepo) UpdateStatus(ctx context.Context, id string, status domain.CampaignStatus) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE email_campaigns SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("update campaign status: %w", err)
	}
	return nil
}
