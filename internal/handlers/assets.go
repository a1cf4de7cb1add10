package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"media-pipeline/internal/assets"
	"media-pipeline/internal/logging"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// AssetListResponse wraps a page of assets.
type AssetListResponse struct {
	Assets []*assets.Asset `json:"assets"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
	Count  int             `json:"count"`
}

// ListAssets returns a page of stored assets, newest first.
// Query parameters: limit (default 50, max 500) and offset.
func (h *Handlers) ListAssets(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultListLimit)
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	list, err := h.assets.ListAssets(r.Context(), limit, offset)
	if err != nil {
		logging.Error("Failed to list assets: %v", err)
		writeJSONError(w, "failed to list assets", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*assets.Asset{}
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, AssetListResponse{
		Assets: list,
		Limit:  limit,
		Offset: offset,
		Count:  len(list),
	})
}

// GetAsset returns a single asset by ID.
func (h *Handlers) GetAsset(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		writeJSONError(w, "missing asset ID", http.StatusBadRequest)
		return
	}

	asset, err := h.assets.GetAsset(r.Context(), id)
	if err != nil {
		if errors.Is(err, assets.ErrAssetNotFound) {
			writeJSONError(w, "asset not found", http.StatusNotFound)
			return
		}
		logging.Error("Failed to load asset %s: %v", id, err)
		writeJSONError(w, "failed to load asset", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, asset)
}

// GetAssetThumbnails returns the thumbnail paths recorded for an asset,
// keyed by size name.
func (h *Handlers) GetAssetThumbnails(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		writeJSONError(w, "missing asset ID", http.StatusBadRequest)
		return
	}

	if _, err := h.assets.GetAsset(r.Context(), id); err != nil {
		if errors.Is(err, assets.ErrAssetNotFound) {
			writeJSONError(w, "asset not found", http.StatusNotFound)
			return
		}
		logging.Error("Failed to load asset %s: %v", id, err)
		writeJSONError(w, "failed to load asset", http.StatusInternalServerError)
		return
	}

	thumbs, err := h.assets.GetThumbnails(r.Context(), id)
	if err != nil {
		logging.Error("Failed to load thumbnails for asset %s: %v", id, err)
		writeJSONError(w, "failed to load thumbnails", http.StatusInternalServerError)
		return
	}
	if thumbs == nil {
		thumbs = map[string]string{}
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]interface{}{
		"asset_id":   id,
		"thumbnails": thumbs,
	})
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
