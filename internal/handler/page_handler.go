package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/tilespeak/internal/middleware"
	"github.com/hitoshi/tilespeak/internal/model"
)

// PageServiceInterface はページハンドラーが必要とするサービスインターフェース。
type PageServiceInterface interface {
	// Create はプロジェクト内に新しいページを作成する。
	Create(ctx context.Context, user *model.User, projectID, name string) (*model.TilePage, error)
	// Update はページ名を変更する。
	Update(ctx context.Context, user *model.User, pageID, name string) (*model.TilePage, error)
	// Delete はページとその配下のタイルを削除する。
	Delete(ctx context.Context, user *model.User, pageID string) (*model.TilePage, error)
}

// PageHandler はタイルページ管理のHTTPハンドラー。
type PageHandler struct {
	service PageServiceInterface
}

// NewPageHandler はPageHandlerを生成する。
func NewPageHandler(service PageServiceInterface) *PageHandler {
	return &PageHandler{service: service}
}

// createPageRequest はページ作成リクエストのボディ。
type createPageRequest struct {
	ProjectID string `json:"projectId"`
	Name      string `json:"name"`
}

// updatePageRequest はページ更新リクエストのボディ。
type updatePageRequest struct {
	PageID string `json:"pageId"`
	Name   string `json:"name"`
}

// deletePageRequest はページ削除リクエストのボディ。
type deletePageRequest struct {
	PageID string `json:"pageId"`
}

// requestUserID はコンテキストからユーザーを取り出す。
// 取り出せない場合は{id,error}形式で401を書き込む。
func requestUserID(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, idResponse{Error: strPtr("No token provided.")})
		return nil, false
	}
	return user, true
}

// Create はページ作成を処理する。
// POST /api/v1/page/create
func (h *PageHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUserID(w, r)
	if !ok {
		return
	}

	var req createPageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, idResponse{Error: strPtr("Invalid request body")})
		return
	}
	if req.ProjectID == "" {
		writeJSON(w, http.StatusBadRequest, idResponse{Error: strPtr("Missing projectId")})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, idResponse{Error: strPtr("Missing name")})
		return
	}

	page, err := h.service.Create(r.Context(), user, req.ProjectID, req.Name)
	if err != nil {
		writeIDError(w, err)
		return
	}

	writeIDSuccess(w, page.ID)
}

// Update はページ更新を処理する。
// POST /api/v1/page/update
func (h *PageHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUserID(w, r)
	if !ok {
		return
	}

	var req updatePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, idResponse{Error: strPtr("Invalid request body")})
		return
	}
	if req.PageID == "" {
		writeJSON(w, http.StatusBadRequest, idResponse{Error: strPtr("Missing pageId")})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, idResponse{Error: strPtr("Missing name")})
		return
	}

	page, err := h.service.Update(r.Context(), user, req.PageID, req.Name)
	if err != nil {
		writeIDError(w, err)
		return
	}

	writeIDSuccess(w, page.ID)
}

// Delete はページ削除を処理する。
// POST /api/v1/page/delete
func (h *PageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUserID(w, r)
	if !ok {
		return
	}

	var req deletePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, idResponse{Error: strPtr("Invalid request body")})
		return
	}
	if req.PageID == "" {
		writeJSON(w, http.StatusBadRequest, idResponse{Error: strPtr("Missing pageId")})
		return
	}

	page, err := h.service.Delete(r.Context(), user, req.PageID)
	if err != nil {
		writeIDError(w, err)
		return
	}

	writeIDSuccess(w, page.ID)
}
