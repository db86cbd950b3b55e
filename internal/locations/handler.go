package locations

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/employee-tracker/internal/platform/httpx"
	"github.com/noah-isme/employee-tracker/internal/shared"
)

// LocationService is the behaviour the HTTP layer needs.
type LocationService interface {
	List(ctx context.Context, filter ListFilter) ([]View, error)
	Update(ctx context.Context, caller *shared.Identity, req UpdateRequest) (*View, error)
}

// Recorder receives location write outcomes for metrics.
type Recorder interface {
	ObserveLocationUpdate(outcome string)
}

// Handler exposes the latest-location endpoints.
type Handler struct {
	logger   *slog.Logger
	service  LocationService
	recorder Recorder
}

// NewHandler builds Handler instance. recorder may be nil.
func NewHandler(logger *slog.Logger, service LocationService, recorder Recorder) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, recorder: recorder}
}

// MountRoutes registers location routes. The {id} segment only keeps the
// resource shape; updates always target the caller's own row.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Put("/{id}", h.update)
	r.Patch("/{id}", h.update)
}

type listResponse struct {
	Data []View `json:"data"`
}

type updateResponse struct {
	OK       bool `json:"ok"`
	Location View `json:"location"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseListFilter(r.URL.Query().Get("max_accuracy"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	views, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list locations failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if views == nil {
		views = []View{}
	}
	httpx.JSON(w, http.StatusOK, listResponse{Data: views})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	caller := shared.UserFromContext(r.Context())
	view, err := h.service.Update(r.Context(), caller, req)
	if err != nil {
		status := httpx.StatusFor(err)
		if status >= http.StatusInternalServerError {
			h.observe("error")
			h.logger.Error("update location failed", slog.Any("error", err))
		} else {
			h.observe("invalid")
		}
		httpx.RespondError(w, err)
		return
	}
	h.observe("success")
	httpx.JSON(w, http.StatusOK, updateResponse{OK: true, Location: *view})
}

func (h *Handler) observe(outcome string) {
	if h.recorder != nil {
		h.recorder.ObserveLocationUpdate(outcome)
	}
}
