package interfaces

import (
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/pklimczu/FinTrack/internal/finance/application"
)

type ExportServiceInterface interface {
	Export(profile application.UserProfile) (*application.ExportSnapshot, error)
	ImportJSON(userID string, r io.Reader) (*application.ImportResult, error)
	ImportCSV(userID string, r io.Reader) (*application.ImportResult, error)
}

// ProfileProvider resolves the authenticated user's profile for the export
// snapshot.
type ProfileProvider interface {
	GetProfile(userID string) (application.UserProfile, error)
}

type ExportHandler struct {
	service      ExportServiceInterface
	profiles     ProfileProvider
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string)
}

func NewExportHandler(
	service ExportServiceInterface,
	profiles ProfileProvider,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *ExportHandler {
	if service == nil {
		log.Fatal("Service must not be nil")
		return nil
	}
	return &ExportHandler{
		service:      service,
		profiles:     profiles,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	profile, err := h.profiles.GetProfile(userID)
	if err != nil {
		log.Printf("export: profile lookup failed: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to export data")
		return
	}
	snapshot, err := h.service.Export(profile)
	if err != nil {
		log.Printf("export failed: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to export data")
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="fintrack-export.json"`)
	h.respondJSON(w, http.StatusOK, snapshot)
}

// Import accepts either a JSON snapshot or a CSV upload, chosen by
// Content-Type, and applies rows best-effort.
func (h *ExportHandler) Import(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var result *application.ImportResult
	var err error
	if strings.Contains(r.Header.Get("Content-Type"), "csv") {
		result, err = h.service.ImportCSV(userID, r.Body)
	} else {
		result, err = h.service.ImportJSON(userID, r.Body)
	}
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid import payload")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   result,
	})
}
