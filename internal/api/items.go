package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/erazemk/skinledger/internal/imaging"
	"github.com/erazemk/skinledger/internal/model"
	"github.com/erazemk/skinledger/internal/service"
)

// ItemsHandler handles item endpoints. Every operation is scoped to the
// authenticated user.
type ItemsHandler struct {
	Items *service.ItemService
}

type itemResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Item    *model.Item `json:"item"`
}

type listResponse struct {
	Success    bool             `json:"success"`
	Items      []model.Item     `json:"items"`
	Pagination model.Pagination `json:"pagination"`
}

type statsResponse struct {
	Success bool         `json:"success"`
	Stats   *model.Stats `json:"stats"`
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	q := r.URL.Query()

	query, err := service.ParseListQuery(q.Get("page"), q.Get("limit"), q.Get("sort"), q.Get("order"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	items, page, err := h.Items.List(r.Context(), claims.UserID, query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, listResponse{Success: true, Items: items, Pagination: page})
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req model.ItemInput
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Items.Create(r.Context(), claims.UserID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("item created", "item", item.ID, "name", item.Name, "by", claims.Username)
	jsonResponse(w, http.StatusCreated, itemResponse{Success: true, Item: item})
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	item, err := h.Items.Get(r.Context(), claims.UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, itemResponse{Success: true, Item: item})
}

// Update handles PUT /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req model.ItemInput
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Items.Update(r.Context(), claims.UserID, chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("item updated", "item", item.ID, "by", claims.Username)
	jsonResponse(w, http.StatusOK, itemResponse{Success: true, Message: "Item updated successfully", Item: item})
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.Items.Delete(r.Context(), claims.UserID, id); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("item deleted", "item", id, "by", claims.Username)
	jsonResponse(w, http.StatusOK, messageResponse{Success: true, Message: "Item deleted successfully"})
}

// Stats handles GET /api/items/stats.
func (h *ItemsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	stats, err := h.Items.Stats(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, statsResponse{Success: true, Stats: stats})
}

// UploadImage handles PUT /api/items/{id}/image.
func (h *ItemsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	// Leave room for multipart framing around a maximum-size image.
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+64<<10)
	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	item, err := h.Items.SetImage(r.Context(), claims.UserID, chi.URLParam(r, "id"), file)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("item image uploaded", "item", item.ID, "by", claims.Username)
	jsonResponse(w, http.StatusOK, itemResponse{Success: true, Message: "Image uploaded", Item: item})
}

// GetImage handles GET /api/items/{id}/image.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	data, mime, err := h.Items.Image(r.Context(), claims.UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(data)
}
