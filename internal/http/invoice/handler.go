package invoice

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kedarnag/invoiceflow/internal/http/respond"
	"github.com/kedarnag/invoiceflow/internal/invoice"
	"github.com/kedarnag/invoiceflow/internal/render"
)

type Handler struct {
	svc *invoice.Service
}

func NewHandler(svc *invoice.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/pending", h.listPending)
	r.Get("/approved", h.listApproved)
	r.Get("/{id}/items", h.items)
	r.Get("/{id}/audit", h.audit)
	r.Get("/{id}/print", h.print)
	r.Post("/{id}/transition", h.transition)
}

func roleParam(r *http.Request) (invoice.Role, bool) {
	role := invoice.Role(r.URL.Query().Get("role"))
	return role, invoice.ValidRole(role)
}

func (h *Handler) listPending(w http.ResponseWriter, r *http.Request) {
	role, ok := roleParam(r)
	if !ok {
		respond.Err(w, http.StatusBadRequest, "unknown role")
		return
	}

	invs, err := h.svc.ListPending(r.Context(), role)
	if err != nil {
		respond.Err(w, http.StatusInternalServerError, "failed to list invoices")
		return
	}

	respond.OK(w, toResponseList(invs))
}

func (h *Handler) listApproved(w http.ResponseWriter, r *http.Request) {
	role, ok := roleParam(r)
	if !ok {
		respond.Err(w, http.StatusBadRequest, "unknown role")
		return
	}

	invs, err := h.svc.ListApproved(r.Context(), role)
	if err != nil {
		respond.Err(w, http.StatusInternalServerError, "failed to list invoices")
		return
	}

	respond.OK(w, toResponseList(invs))
}

func (h *Handler) items(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Err(w, http.StatusBadRequest, "invalid invoice id")
		return
	}

	items, err := h.svc.Items(r.Context(), id)
	if err != nil {
		respond.Err(w, http.StatusInternalServerError, "failed to list invoice items")
		return
	}

	respond.OK(w, toItemResponseList(items))
}

func (h *Handler) audit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Err(w, http.StatusBadRequest, "invalid invoice id")
		return
	}

	entries, err := h.svc.Audit(r.Context(), id)
	if err != nil {
		respond.Err(w, http.StatusInternalServerError, "failed to list audit trail")
		return
	}

	respond.OK(w, toAuditResponseList(entries))
}

type transitionRequest struct {
	Role invoice.Role `json:"role"`
	Note string       `json:"note"`
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Err(w, http.StatusBadRequest, "invalid invoice id")
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Err(w, http.StatusBadRequest, err.Error())
		return
	}

	inv, err := h.svc.Transition(r.Context(), req.Role, id, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, invoice.ErrUnknownRole):
			respond.Err(w, http.StatusBadRequest, "unknown role")
		case errors.Is(err, invoice.ErrNotFound):
			respond.Err(w, http.StatusNotFound, "invoice not found")
		case errors.Is(err, invoice.ErrInvalidTransition):
			respond.Err(w, http.StatusConflict, err.Error())
		default:
			respond.Err(w, http.StatusInternalServerError, "failed to update invoice status")
		}

		return
	}

	respond.OK(w, toResponse(inv))
}

// print serves the print-ready HTML document directly, outside the JSON
// envelope, so a browser can open it and invoke its native print dialog.
func (h *Handler) print(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Err(w, http.StatusBadRequest, "invalid invoice id")
		return
	}

	inv, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, invoice.ErrNotFound) {
			respond.Err(w, http.StatusNotFound, "invoice not found")
			return
		}

		respond.Err(w, http.StatusInternalServerError, "failed to load invoice")

		return
	}

	items, err := h.svc.Items(r.Context(), id)
	if err != nil {
		respond.Err(w, http.StatusInternalServerError, "failed to load invoice items")
		return
	}

	doc, err := render.Document(inv, items, inv.CenterName)
	if err != nil {
		respond.Err(w, http.StatusInternalServerError, "failed to render invoice")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if _, err := w.Write([]byte(doc)); err != nil {
		slog.Error("failed to write print document", "error", err)
	}
}
