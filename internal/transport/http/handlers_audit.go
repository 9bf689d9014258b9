package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"airdrop/internal/platform/middleware"
	"airdrop/internal/store"
	dErrors "airdrop/pkg/domain-errors"
	"airdrop/pkg/platform/httputil"
)

// AuditService is implemented by *auditlog.Service.
type AuditService interface {
	CreateToken(ctx context.Context, headers map[string]string) (string, error)
	LogAction(ctx context.Context, token, action string, payload map[string]string) error
	Entries(ctx context.Context, token string) ([]store.LogEntry, error)
}

// AuditHandler serves token issuance and client action logging.
type AuditHandler struct {
	service AuditService
	logger  *slog.Logger
}

func NewAuditHandler(service AuditService, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{service: service, logger: logger}
}

func (h *AuditHandler) Register(r chi.Router) {
	r.Post("/token", h.handleCreateToken)
	r.With(middleware.ContentTypeJSON).Post("/log", h.handleLog)
}

// handleCreateToken ignores any ?token= echo sent by older clients.
func (h *AuditHandler) handleCreateToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token, err := h.service.CreateToken(ctx, flattenHeaders(r.Header))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create token",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		writeAuditError(w, http.StatusInternalServerError, "internal error")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, auditResponse{Status: "ok", Token: token})
}

type logRequest struct {
	Token   string            `json:"token"`
	Action  string            `json:"action"`
	Payload map[string]string `json:"payload"`
}

func (h *AuditHandler) handleLog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req logRequest
	if status, err := decodeBody(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "invalid log request",
			"request_id", middleware.GetRequestID(ctx),
			"status", status,
			"error", err.Error(),
		)
		writeAuditError(w, status, bodyErrorMessage(status))
		return
	}

	err := h.service.LogAction(ctx, req.Token, req.Action, req.Payload)
	switch {
	case err == nil:
		httputil.WriteJSON(w, http.StatusOK, auditResponse{Status: "ok"})
	case dErrors.HasCode(err, dErrors.CodeUnauthorized):
		writeAuditError(w, http.StatusUnauthorized, "invalid token")
	default:
		writeAuditError(w, http.StatusInternalServerError, "internal error")
	}
}

// flattenHeaders joins repeated header values with ", ".
func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = strings.Join(v, ", ")
	}
	return out
}
