package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"airdrop/internal/platform/middleware"
	"airdrop/pkg/platform/httputil"
	"airdrop/pkg/requestcontext"
)

// AdminHandler exposes the operator read-back of audit entries.
type AdminHandler struct {
	audit     AuditService
	validator middleware.OperatorValidator
	logger    *slog.Logger
}

func NewAdminHandler(audit AuditService, validator middleware.OperatorValidator, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{audit: audit, validator: validator, logger: logger}
}

func (h *AdminHandler) Register(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireOperator(h.validator, h.logger))
		r.Get("/logs/{token}", h.handleListLogs)
	})
}

type logEntryView struct {
	Action    string            `json:"action"`
	Payload   map[string]string `json:"payload"`
	CreatedAt time.Time         `json:"created_at"`
}

type logsResponse struct {
	Token   string         `json:"token"`
	Entries []logEntryView `json:"entries"`
}

func (h *AdminHandler) handleListLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := chi.URLParam(r, "token")

	entries, err := h.audit.Entries(ctx, token)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list audit entries",
			"request_id", middleware.GetRequestID(ctx),
			"operator", requestcontext.Operator(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "audit entries read",
		"request_id", middleware.GetRequestID(ctx),
		"operator", requestcontext.Operator(ctx),
		"count", len(entries),
	)

	resp := logsResponse{Token: token, Entries: make([]logEntryView, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, logEntryView{
			Action:    e.Action,
			Payload:   e.Payload,
			CreatedAt: e.CreatedAt,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
