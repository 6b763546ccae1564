package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/tilespeak/internal/model"
)

// TileServiceInterface はタイルハンドラーが必要とするサービスインターフェース。
type TileServiceInterface interface {
	// Create はページ上に新しいタイルを作成する。
	Create(ctx context.Context, user *model.User, pageID string, attrs model.TileAttrs) (*model.Tile, error)
	// Update はタイルの属性を部分更新する。
	Update(ctx context.Context, user *model.User, tileID string, attrs model.TileAttrs) (*model.Tile, error)
	// Remove はタイルを削除する。
	Remove(ctx context.Context, user *model.User, tileID string) (*model.Tile, error)
}

// TileHandler はタイル管理のHTTPハンドラー。
type TileHandler struct {
	service TileServiceInterface
}

// NewTileHandler はTileHandlerを生成する。
func NewTileHandler(service TileServiceInterface) *TileHandler {
	return &TileHandler{service: service}
}

// createTileRequest はタイル作成リクエストのボディ。
type createTileRequest struct {
	PageID  string           `json:"pageId"`
	NewTile *model.TileAttrs `json:"newTile"`
}

// updateTileRequest はタイル更新リクエストのボディ。
type updateTileRequest struct {
	TileID  string           `json:"tileId"`
	NewTile *model.TileAttrs `json:"newTile"`
}

// removeTileRequest はタイル削除リクエストのボディ。
type removeTileRequest struct {
	TileID string `json:"tileId"`
}

// Create はタイル作成を処理する。
// POST /api/v1/tile/create
func (h *TileHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUserID(w, r)
	if !ok {
		return
	}

	var req createTileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, idResponse{Error: strPtr("Invalid request body")})
		return
	}
	if req.PageID == "" {
		writeJSON(w, http.StatusBadRequest, idResponse{Error: strPtr("Missing pageId")})
		return
	}
	if req.NewTile == nil {
		writeJSON(w, http.StatusBadRequest, idResponse{Error: strPtr("Missing tile")})
		return
	}

	tile, err := h.service.Create(r.Context(), user, req.PageID, *req.NewTile)
	if err != nil {
		writeIDError(w, err)
		return
	}

	writeIDSuccess(w, tile.ID)
}

// Update はタイル更新を処理する。
// POST /api/v1/tile/update
func (h *TileHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUserID(w, r)
	if !ok {
		return
	}

	var req updateTileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, idResponse{Error: strPtr("Invalid request body")})
		return
	}
	if req.TileID == "" {
		writeJSON(w, http.StatusBadRequest, idResponse{Error: strPtr("Missing tileId")})
		return
	}
	if req.NewTile == nil {
		writeJSON(w, http.StatusBadRequest, idResponse{Error: strPtr("Missing tile")})
		return
	}

	tile, err := h.service.Update(r.Context(), user, req.TileID, *req.NewTile)
	if err != nil {
		writeIDError(w, err)
		return
	}

	writeIDSuccess(w, tile.ID)
}

// Remove はタイル削除を処理する。
// POST /api/v1/tile/remove
func (h *TileHandler) Remove(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUserID(w, r)
	if !ok {
		return
	}

	var req removeTileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, idResponse{Error: strPtr("Invalid request body")})
		return
	}
	if req.TileID == "" {
		writeJSON(w, http.StatusBadRequest, idResponse{Error: strPtr("Missing tileId")})
		return
	}

	tile, err := h.service.Remove(r.Context(), user, req.TileID)
	if err != nil {
		writeIDError(w, err)
		return
	}

	writeIDSuccess(w, tile.ID)
}
