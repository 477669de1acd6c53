package api

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/luminaed/atrium/internal/ingest"
	"github.com/luminaed/atrium/internal/pkg/httputil"
	"github.com/luminaed/atrium/internal/pkg/logger"
	"github.com/luminaed/atrium/internal/service/reconcile"
)

// maxUploadBytes bounds report uploads. Partner exports top out well under
// this.
const maxUploadBytes = 32 << 20

// ReportsHandler serves the bulk report upload and error re-export routes.
type ReportsHandler struct {
	reconciler *reconcile.Service
}

// NewReportsHandler wires the upload routes to the reconciliation service.
func NewReportsHandler(reconciler *reconcile.Service) *ReportsHandler {
	return &ReportsHandler{reconciler: reconciler}
}

type uploadResponse struct {
	Status  string            `json:"status"`
	Summary reconcile.Summary `json:"summary"`
	Errors  []ingest.Row      `json:"errors"`
}

// Upload handles POST /api/reports/upload: pre-shaped JSON rows.
func (h *ReportsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rows json.RawMessage `json:"rows"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}

	var rows []ingest.Row
	if len(req.Rows) == 0 || json.Unmarshal(req.Rows, &rows) != nil || rows == nil {
		httputil.BadRequest(w, "No rows provided")
		return
	}

	h.reconcileAndRespond(w, r, ingest.PrepareRows(rows))
}

// UploadFile handles POST /api/reports/upload/file: a multipart CSV or XLSX
// upload. The header row is validated in full before any data row is
// touched.
func (h *ReportsHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httputil.BadRequest(w, "invalid multipart form: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.BadRequest(w, "missing file field")
		return
	}
	defer file.Close()

	rawHeader, rawRows, err := ingest.ReadUpload(header.Filename, file)
	if err != nil {
		httputil.BadRequest(w, "unreadable upload: "+err.Error())
		return
	}
	if len(rawHeader) == 0 {
		httputil.BadRequest(w, "No rows provided")
		return
	}

	mapping := ingest.MapColumns(rawHeader)
	if err := ingest.ValidateRequiredHeaders(mapping); err != nil {
		var he *ingest.HeaderError
		if errors.As(err, &he) {
			httputil.JSON(w, http.StatusBadRequest, httputil.ErrorResponse{
				Status:  "error",
				Error:   he.Error(),
				Details: map[string]any{"missing_headers": he.Missing},
			})
			return
		}
		httputil.BadRequest(w, err.Error())
		return
	}

	h.reconcileAndRespond(w, r, ingest.NormalizeRows(mapping, rawRows))
}

func (h *ReportsHandler) reconcileAndRespond(w http.ResponseWriter, r *http.Request, rows []ingest.Row) {
	summary := h.reconciler.ReconcileRows(r.Context(), rows)
	logger.Info("report upload reconciled",
		"received", summary.Received,
		"added", summary.Added,
		"updated", summary.Updated,
		"errors", summary.Errors)

	errRows := summary.ErrorRows
	if errRows == nil {
		errRows = []ingest.Row{}
	}
	httputil.OK(w, uploadResponse{
		Status:  "success",
		Summary: summary,
		Errors:  errRows,
	})
}

// ExportErrors handles POST /api/reports/errors/export: turns failed rows
// back into a canonical-header CSV for user-driven retry.
func (h *ReportsHandler) ExportErrors(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rows []ingest.Row `json:"rows"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}
	if len(req.Rows) == 0 {
		httputil.BadRequest(w, "No rows provided")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="error_rows.csv"`)
	cw := csv.NewWriter(w)
	if err := cw.Write(ingest.CanonicalHeader()); err != nil {
		logger.Error("writing csv export", "error", err.Error())
		return
	}
	for _, row := range req.Rows {
		if err := cw.Write(row.Cells()); err != nil {
			logger.Error("writing csv export", "error", err.Error())
			return
		}
	}
	cw.Flush()
}
