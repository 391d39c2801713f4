package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/scormpack/pkg/domain/interfaces"
	"github.com/m-mizutani/scormpack/pkg/domain/types"
	"github.com/m-mizutani/scormpack/pkg/usecase"
)

// DownloadHandler serves the download session API.
type DownloadHandler struct {
	downloadUC interfaces.DownloadUseCase
}

// NewDownloadHandler creates a new DownloadHandler
func NewDownloadHandler(downloadUC interfaces.DownloadUseCase) *DownloadHandler {
	return &DownloadHandler{
		downloadUC: downloadUC,
	}
}

// downloadRequest is the POST /api/download body.
type downloadRequest struct {
	DOIDs []string `json:"do_ids"`
}

// StartDownload starts a new download session.
func (h *DownloadHandler) StartDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	var req downloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error("Failed to decode download request", "error", err)
		writeError(w, goerr.Wrap(err, "invalid JSON payload"), http.StatusBadRequest)
		return
	}

	doIDs := make([]types.DOID, 0, len(req.DOIDs))
	for _, raw := range req.DOIDs {
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			doIDs = append(doIDs, types.DOID(trimmed))
		}
	}
	if len(doIDs) == 0 {
		writeError(w, goerr.New("no valid DO IDs provided"), http.StatusBadRequest)
		return
	}

	session, err := h.downloadUC.StartSession(ctx, doIDs)
	if err != nil {
		if errors.Is(err, usecase.ErrSessionRunning) {
			writeError(w, err, http.StatusBadRequest)
			return
		}
		logger.Error("Failed to start download session", "error", err)
		writeError(w, err, http.StatusInternalServerError)
		return
	}

	logger.Info("Download session started",
		"session_id", session.ID(),
		"total_courses", len(doIDs),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]any{
		"success":       true,
		"message":       fmt.Sprintf("Download started for %d courses", len(doIDs)),
		"session_id":    session.ID(),
		"total_courses": len(doIDs),
	}); err != nil {
		logger.Error("Failed to encode download response", "error", err)
	}
}

// Status returns the current session snapshot.
func (h *DownloadHandler) Status(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(h.downloadUC.Status()); err != nil {
		ctxlog.From(r.Context()).Error("Failed to encode status response", "error", err)
	}
}

// DownloadArchive serves the most recent archive as a file download.
func (h *DownloadHandler) DownloadArchive(w http.ResponseWriter, r *http.Request) {
	path := h.downloadUC.ArchivePath()
	if path == "" {
		writeError(w, goerr.New("archive not available"), http.StatusNotFound)
		return
	}

	name := filepath.Base(path)
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	http.ServeFile(w, r, path)
}
