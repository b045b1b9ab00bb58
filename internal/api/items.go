package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/avillega/trueque/internal/imaging"
	"github.com/avillega/trueque/internal/model"
	"github.com/avillega/trueque/internal/store"
)

// ItemsHandler handles the garment catalog endpoints.
type ItemsHandler struct {
	DB *sql.DB
}

type createItemRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Size        string `json:"size"`
	Condition   string `json:"condition"`
	Description string `json:"description"`
}

type updateItemRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Size        string `json:"size"`
	Condition   string `json:"condition"`
	Description string `json:"description"`
}

// List handles GET /api/items, the available catalog with optional
// category and size filters. The caller's own garments are included so the
// catalog matches what other members see.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	size := r.URL.Query().Get("size")

	items, err := store.ListAvailableItems(r.Context(), h.DB, category, size)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items. New garments always start available.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	member := currentMember(w, r, h.DB)
	if member == nil {
		return
	}

	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" || req.Category == "" || req.Size == "" {
		jsonError(w, http.StatusBadRequest, "name, category and size required")
		return
	}

	item, err := store.CreateItem(r.Context(), h.DB, member.ID, req.Name, req.Category, req.Size, req.Condition, req.Description)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil || item.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// ownedEditableItem loads the item and checks the caller owns it and that it
// is not reserved or exchanged. Writes the error response itself on failure.
func (h *ItemsHandler) ownedEditableItem(w http.ResponseWriter, r *http.Request) *model.Item {
	member := currentMember(w, r, h.DB)
	if member == nil {
		return nil
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return nil
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return nil
	}
	if item == nil || item.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return nil
	}
	if item.MemberID != member.ID {
		jsonError(w, http.StatusForbidden, "not your item")
		return nil
	}
	if item.Status != model.ItemStatusAvailable {
		jsonError(w, http.StatusConflict, "item is reserved by an offer")
		return nil
	}
	return item
}

// Update handles PUT /api/items/{id}. Only the owner may edit, and only
// while the garment is available.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	item := h.ownedEditableItem(w, r)
	if item == nil {
		return
	}

	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" || req.Category == "" || req.Size == "" {
		jsonError(w, http.StatusBadRequest, "name, category and size required")
		return
	}

	if err := store.UpdateItem(r.Context(), h.DB, item.ID, req.Name, req.Category, req.Size, req.Condition, req.Description); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	updated, _ := store.GetItem(r.Context(), h.DB, item.ID)
	jsonResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/items/{id}. Soft delete, owner only, and only
// while the garment is available so reserved items stay consistent with
// their offers.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	item := h.ownedEditableItem(w, r)
	if item == nil {
		return
	}

	if err := store.DeleteItem(r.Context(), h.DB, item.ID); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// UploadImage handles PUT /api/items/{id}/image. The photo is validated,
// downscaled and re-encoded before it is stored.
func (h *ItemsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	member := currentMember(w, r, h.DB)
	if member == nil {
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil || item.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	if item.MemberID != member.ID {
		jsonError(w, http.StatusForbidden, "not your item")
		return
	}

	// Limit to 5 MB.
	r.Body = http.MaxBytesReader(w, r.Body, 5<<20)

	if err := r.ParseMultipartForm(5 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	result, err := imaging.Process(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetItemImage(r.Context(), h.DB, id, result.Data, result.MIME); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to save image")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "image uploaded"})
}

// GetImage handles GET /api/items/{id}/image.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	data, mime, err := store.GetItemImage(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}
