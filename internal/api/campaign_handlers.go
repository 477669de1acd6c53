package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/luminaed/atrium/internal/pkg/httputil"
	"github.com/luminaed/atrium/internal/service/dispatch"
)

// CampaignHandler serves campaign dispatch and status routes.
type CampaignHandler struct {
	dispatcher *dispatch.Service
}

// NewCampaignHandler wires the campaign routes to the dispatch service.
func NewCampaignHandler(dispatcher *dispatch.Service) *CampaignHandler {
	return &CampaignHandler{dispatcher: dispatcher}
}

type sendSummary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// SendEmail handles POST /api/send-email. A fully successful batch returns
// 200; a partially failed one returns 207 with the failures enumerated.
func (h *CampaignHandler) SendEmail(w http.ResponseWriter, r *http.Request) {
	var req dispatch.Request
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.Campaign.ID == "" {
		httputil.BadRequest(w, "campaign id is required")
		return
	}

	res, err := h.dispatcher.SendCampaign(r.Context(), req)
	switch {
	case errors.Is(err, dispatch.ErrNoRecipients):
		httputil.BadRequest(w, err.Error())
		return
	case errors.Is(err, dispatch.ErrLocked):
		httputil.Conflict(w, "campaign send already in progress")
		return
	case err != nil:
		httputil.InternalError(w, err, nil)
		return
	}

	summary := sendSummary{Total: res.Total, Successful: res.Successful, Failed: res.Failed}
	if res.Failed > 0 {
		httputil.JSON(w, http.StatusMultiStatus, map[string]any{
			"status":     "partial_success",
			"campaignId": res.CampaignID,
			"summary":    summary,
			"failures":   res.Failures,
		})
		return
	}
	httputil.OK(w, map[string]any{
		"status":     "success",
		"campaignId": res.CampaignID,
		"summary":    summary,
	})
}

// Status handles GET /api/campaigns/{id}/status with the derived status and
// the per-state recipient counts behind it.
func (h *CampaignHandler) Status(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	status, counts, err := h.dispatcher.CampaignStatus(r.Context(), id)
	if err != nil {
		httputil.InternalError(w, err, nil)
		return
	}
	httputil.OK(w, map[string]any{
		"campaignId": id,
		"status":     status,
		"counts":     counts,
	})
}
