package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/calc-content-backend/internal/domain"
	"github.com/heartmarshall/calc-content-backend/internal/service/dropdown"
)

// dropdownService defines the minimal interface needed by DropdownHandler.
type dropdownService interface {
	Resolve(ctx context.Context, screen, language string) (*dropdown.Result, error)
	Stats() dropdown.Stats
	ClearCache(ctx context.Context) int
}

// DropdownHandler serves dropdown and cache REST endpoints.
type DropdownHandler struct {
	svc dropdownService
	log *slog.Logger
}

// NewDropdownHandler creates a DropdownHandler.
func NewDropdownHandler(svc dropdownService, logger *slog.Logger) *DropdownHandler {
	return &DropdownHandler{svc: svc, log: logger.With("handler", "dropdown")}
}

type dropdownSummary struct {
	Key       string `json:"key"`
	FieldName string `json:"field_name"`
	Label     string `json:"label"`
}

type cacheInfo struct {
	Hit              bool    `json:"hit"`
	ProcessingTimeMs float64 `json:"processing_time_ms"`
	Source           string  `json:"source"`
}

type dropdownsResponse struct {
	Status         string                             `json:"status"`
	ScreenLocation string                             `json:"screen_location,omitempty"`
	LanguageCode   string                             `json:"language_code,omitempty"`
	Message        string                             `json:"message,omitempty"`
	Errors         []fieldErrorResponse               `json:"errors,omitempty"`
	Dropdowns      []dropdownSummary                  `json:"dropdowns"`
	Options        map[string][]domain.DropdownOption `json:"options"`
	Placeholders   map[string]string                  `json:"placeholders"`
	Labels         map[string]string                  `json:"labels"`
	CacheInfo      *cacheInfo                         `json:"cache_info,omitempty"`
}

type fieldErrorResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type cacheStatsResponse struct {
	Status       string   `json:"status"`
	Entries      int      `json:"entries"`
	Keys         []string `json:"keys"`
	Hits         uint64   `json:"hits"`
	Misses       uint64   `json:"misses"`
	HitRate      float64  `json:"hit_rate"`
	TTLSeconds   float64  `json:"ttl_seconds"`
	DroppedRows  uint64   `json:"dropped_rows"`
	RejectedRows uint64   `json:"rejected_rows"`
}

type cacheClearResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	KeysCleared int    `json:"keys_cleared"`
}

// Dropdowns returns every dropdown of a screen in one language.
// GET /api/dropdowns/{screen}/{language}
func (h *DropdownHandler) Dropdowns(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Resolve(r.Context(), r.PathValue("screen"), r.PathValue("language"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	summaries := make([]dropdownSummary, 0, len(res.Dropdowns))
	for _, d := range res.Dropdowns {
		summaries = append(summaries, dropdownSummary{Key: d.Key, FieldName: d.FieldName, Label: d.Label})
	}

	writeJSON(w, http.StatusOK, dropdownsResponse{
		Status:         "success",
		ScreenLocation: res.Screen,
		LanguageCode:   res.Language,
		Dropdowns:      summaries,
		Options:        res.Options(),
		Placeholders:   res.Placeholders(),
		Labels:         res.Labels(),
		CacheInfo: &cacheInfo{
			Hit:              res.CacheHit,
			ProcessingTimeMs: res.ProcessingTimeMs(),
			Source:           res.Source.String(),
		},
	})
}

// CacheStats reports resolution cache usage.
// GET /api/content/cache/stats
func (h *DropdownHandler) CacheStats(w http.ResponseWriter, r *http.Request) {
	st := h.svc.Stats()
	keys := st.Keys
	if keys == nil {
		keys = []string{}
	}

	writeJSON(w, http.StatusOK, cacheStatsResponse{
		Status:       "success",
		Entries:      st.Entries,
		Keys:         keys,
		Hits:         st.Hits,
		Misses:       st.Misses,
		HitRate:      st.HitRate,
		TTLSeconds:   st.TTL.Seconds(),
		DroppedRows:  st.DroppedRows,
		RejectedRows: st.RejectedRows,
	})
}

// ClearCache drops every cached dropdown set.
// DELETE /api/content/cache/clear
func (h *DropdownHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	n := h.svc.ClearCache(r.Context())
	writeJSON(w, http.StatusOK, cacheClearResponse{
		Status:      "success",
		Message:     "Dropdown cache cleared",
		KeysCleared: n,
	})
}

func (h *DropdownHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		body := emptyDropdowns("Invalid request parameters")
		for _, fe := range ve.Errors {
			body.Errors = append(body.Errors, fieldErrorResponse{Field: fe.Field, Message: fe.Message})
		}
		writeJSON(w, http.StatusBadRequest, body)
	case r.Context().Err() != nil:
		// Client is gone; there is nobody to answer.
		h.log.InfoContext(r.Context(), "request canceled", slog.String("error", err.Error()))
	default:
		h.log.ErrorContext(r.Context(), "resolve dropdowns",
			slog.String("screen", r.PathValue("screen")),
			slog.String("language", r.PathValue("language")),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, emptyDropdowns("Failed to fetch dropdown data"))
	}
}

func emptyDropdowns(message string) dropdownsResponse {
	return dropdownsResponse{
		Status:       "error",
		Message:      message,
		Dropdowns:    []dropdownSummary{},
		Options:      map[string][]domain.DropdownOption{},
		Placeholders: map[string]string{},
		Labels:       map[string]string{},
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"status": "error", "message": message})
}

// NotFound answers unknown routes with a JSON error body.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "not found")
}
