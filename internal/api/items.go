package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"itemvault/internal/model"
	"itemvault/internal/store"
)

// ItemsHandler handles item CRUD. Regular users only see and mutate their own
// items; superusers see everything.
type ItemsHandler struct {
	DB *sql.DB
}

type createItemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type updateItemRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	caller := CurrentUser(r.Context())

	var (
		items []model.Item
		err   error
	)
	if caller.IsSuperuser {
		items, err = store.ListItems(r.Context(), h.DB)
	} else {
		items, err = store.ListItemsByOwner(r.Context(), h.DB, caller.ID)
	}
	if err != nil {
		slog.Error("listing items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items. The owner is always the authenticated
// caller; a client-supplied owner field would be ignored by the decoder.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Title == "" {
		jsonError(w, http.StatusBadRequest, "title required")
		return
	}

	caller := CurrentUser(r.Context())
	item, err := store.CreateItem(r.Context(), h.DB, store.ItemInput{
		Title:       req.Title,
		Description: req.Description,
	}, caller.ID)
	if err != nil {
		slog.Error("creating item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	slog.Info("item created", "owner", caller.Email, "item_id", item.ID)
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, ok := h.loadOwned(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT /api/items/{id}. The owner never changes.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	item, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title != nil && *req.Title == "" {
		jsonError(w, http.StatusBadRequest, "title cannot be empty")
		return
	}

	updated, err := store.UpdateItem(r.Context(), h.DB, item.ID, store.ItemPatch{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, http.StatusNotFound, "item not found")
			return
		}
		slog.Error("updating item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	jsonResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	item, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	if err := store.DeleteItem(r.Context(), h.DB, item.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, http.StatusNotFound, "item not found")
			return
		}
		slog.Error("deleting item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// loadOwned fetches the item from the path and enforces ownership. It writes
// the error response itself and reports whether the caller may proceed.
func (h *ItemsHandler) loadOwned(w http.ResponseWriter, r *http.Request) (*model.Item, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return nil, false
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("getting item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return nil, false
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return nil, false
	}

	caller := CurrentUser(r.Context())
	if item.OwnerID != caller.ID && !caller.IsSuperuser {
		jsonError(w, http.StatusForbidden, "insufficient privileges")
		return nil, false
	}

	return item, true
}
