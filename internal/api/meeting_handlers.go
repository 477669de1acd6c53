package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/luminaed/atrium/internal/domain"
	"github.com/luminaed/atrium/internal/pkg/httputil"
	"github.com/luminaed/atrium/internal/service/dispatch"
)

// InviteeSource reads a meeting's invite list.
type InviteeSource interface {
	ListInvitees(ctx context.Context, meetingID string) ([]domain.Invitee, error)
}

// MeetingHandler turns meeting invite lists into campaign recipient
// candidates.
type MeetingHandler struct {
	meetings InviteeSource
}

// NewMeetingHandler wires the meeting routes.
func NewMeetingHandler(meetings InviteeSource) *MeetingHandler {
	return &MeetingHandler{meetings: meetings}
}

// Recipients handles GET /api/meetings/{id}/recipients. Only CONFIRMED and
// PARTICIPATED invitees are returned: declined or merely invited people must
// not end up on a campaign send list. Invitees become candidates with
// synthetic meeting_ ids, so dispatch records them as manual addresses
// rather than person rows.
func (h *MeetingHandler) Recipients(w http.ResponseWriter, r *http.Request) {
	meetingID := chi.URLParam(r, "id")
	invitees, err := h.meetings.ListInvitees(r.Context(), meetingID)
	if err != nil {
		httputil.InternalError(w, err, nil)
		return
	}

	recipients := make([]dispatch.Candidate, 0, len(invitees))
	for _, inv := range invitees {
		if inv.EmailAddress == "" {
			continue
		}
		if inv.Status != domain.InviteeConfirmed && inv.Status != domain.InviteeParticipated {
			continue
		}
		recipients = append(recipients, dispatch.Candidate{
			ID:        fmt.Sprintf("meeting_%d", inv.ID),
			Email:     inv.EmailAddress,
			FirstName: inv.FirstName,
			LastName:  inv.LastName,
			Role:      string(inv.Status),
			IsManual:  true,
		})
	}
	httputil.OK(w, map[string]any{
		"meetingId":  meetingID,
		"recipients": recipients,
	})
}
