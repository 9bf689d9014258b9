package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"airdrop/internal/platform/middleware"
	"airdrop/internal/registration"
	"airdrop/internal/store"
	"airdrop/pkg/platform/middleware/version"
	"airdrop/pkg/requestcontext"
)

// RegistrationService is implemented by *registration.Service.
type RegistrationService interface {
	Register(ctx context.Context, req registration.RegisterRequest) (*store.User, error)
	Lookup(ctx context.Context, req registration.LookupRequest) (*store.User, error)
}

// RegistrationHandler serves the public register and lookup endpoints.
type RegistrationHandler struct {
	service RegistrationService
	logger  *slog.Logger
}

func NewRegistrationHandler(service RegistrationService, logger *slog.Logger) *RegistrationHandler {
	return &RegistrationHandler{service: service, logger: logger}
}

// Register mounts the routes, including the /1.0 aliases older clients use.
func (h *RegistrationHandler) Register(r chi.Router) {
	r.With(middleware.ContentTypeJSON).Post("/register", h.handleRegister)
	r.Get("/get", h.handleLookup)

	r.With(version.Deprecated(version.Legacy, "/register", h.logger), middleware.ContentTypeJSON).Post("/1.0/", h.handleRegister)
	r.With(version.Deprecated(version.Legacy, "/get", h.logger)).Get("/1.0/get", h.handleLookup)
}

type registerRequest struct {
	NotResident bool   `json:"not_resident"`
	Terms       bool   `json:"terms"`
	Address     string `json:"address"`
	Recaptcha   string `json:"recaptcha"`
}

func (h *RegistrationHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if status, err := decodeBody(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "invalid register request",
			"request_id", middleware.GetRequestID(ctx),
			"status", status,
			"error", err.Error(),
		)
		writeRegistryError(w, status, status, bodyErrorMessage(status))
		return
	}

	user, err := h.service.Register(ctx, registration.RegisterRequest{
		Address:     req.Address,
		NotResident: req.NotResident,
		Terms:       req.Terms,
		Recaptcha:   req.Recaptcha,
		RemoteIP:    requestcontext.ClientIP(ctx),
	})
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	writeUser(w, user)
}

func (h *RegistrationHandler) handleLookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	if !q.Has("address") || !q.Has("recaptcha") {
		h.logger.WarnContext(ctx, "invalid lookup request",
			"request_id", middleware.GetRequestID(ctx),
		)
		writeRegistryError(w, http.StatusBadRequest, http.StatusBadRequest, "address and recaptcha are required")
		return
	}

	user, err := h.service.Lookup(ctx, registration.LookupRequest{
		Address:   q.Get("address"),
		Recaptcha: q.Get("recaptcha"),
		RemoteIP:  requestcontext.ClientIP(ctx),
	})
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	writeUser(w, user)
}
