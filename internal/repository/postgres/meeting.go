package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/luminaed/atrium/internal/domain"
)

// MeetingRepo reads meeting invite lists, the other source of campaign
// recipients besides the people table.
type MeetingRepo struct{ db *sql.DB }

// NewMeetingRepo creates a Postgres-backed meeting repository.
func NewMeetingRepo(db *sql.DB) *MeetingRepo { return &MeetingRepo{db: db} }

// ListInvitees returns the invitees of one meeting ordered by last name.
func (r *MeetingRepo) ListInvitees(ctx context.Context, meetingID string) ([]domain.Invitee, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, meeting_id, COALESCE(email_address,''), first_name, last_name, status
		FROM meeting_invitees
		WHERE meeting_id = $1
		ORDER BY last_name, first_name
	`, meetingID)
	if err != nil {
		return nil, fmt.Errorf("list invitees: %w", err)
	}
	defer rows.Close()

	var out []domain.Invitee
	for rows.Next() {
		var inv domain.Invitee
		if err := rows.Scan(&inv.ID, &inv.MeetingID, &inv.EmailAddress,
			&inv.FirstName, &inv.LastName, &inv.Status); err != nil {
			return nil, fmt.Errorf("scan invitee: %w", err)
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list invitees: %w", err)
	}
	return out, nil
}
