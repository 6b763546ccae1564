package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/tilespeak/internal/model"
)

// ExploreServiceInterface は公開プロジェクト探索ハンドラーが必要とする
// サービスインターフェース。
type ExploreServiceInterface interface {
	// Search は名前・説明が一致する公開プロジェクトを検索する。
	Search(ctx context.Context, query string) ([]*model.ProjectWithAuthor, error)
	// Explore は公開プロジェクトを10件ずつページングで返す。
	Explore(ctx context.Context, page int) ([]*model.ProjectWithAuthor, error)
}

// ExploreHandler は公開プロジェクト探索のHTTPハンドラー。
type ExploreHandler struct {
	service ExploreServiceInterface
}

// NewExploreHandler はExploreHandlerを生成する。
func NewExploreHandler(service ExploreServiceInterface) *ExploreHandler {
	return &ExploreHandler{service: service}
}

// searchRequest は検索リクエストのボディ。
type searchRequest struct {
	SearchStr string `json:"searchStr"`
}

// exploreRequest はページング探索リクエストのボディ。ページは1始まり。
type exploreRequest struct {
	Page int `json:"page"`
}

// exploreResponse は探索ルート共通のレスポンス。
type exploreResponse struct {
	Error    *string                    `json:"error"`
	Projects []*model.ProjectWithAuthor `json:"projects"`
}

// writeExploreError は{error,projects}形式のエラーレスポンスを書き込む。
func writeExploreError(w http.ResponseWriter, err error) {
	statusCode, message := serviceErrorStatus(err)
	writeJSON(w, statusCode, exploreResponse{Error: strPtr(message)})
}

// Search は公開プロジェクトの全文検索を処理する。
// POST /api/v1/explore/create
func (h *ExploreHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, exploreResponse{Error: strPtr("Invalid request body")})
		return
	}
	if req.SearchStr == "" {
		writeJSON(w, http.StatusBadRequest, exploreResponse{Error: strPtr("Missing searchStr")})
		return
	}

	projects, err := h.service.Search(r.Context(), req.SearchStr)
	if err != nil {
		writeExploreError(w, err)
		return
	}
	if projects == nil {
		projects = []*model.ProjectWithAuthor{}
	}

	writeJSON(w, http.StatusOK, exploreResponse{Projects: projects})
}

// Explore は公開プロジェクトのページング取得を処理する。
// POST /api/v1/explore/explore
func (h *ExploreHandler) Explore(w http.ResponseWriter, r *http.Request) {
	var req exploreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, exploreResponse{Error: strPtr("Invalid request body")})
		return
	}
	if req.Page == 0 {
		writeJSON(w, http.StatusBadRequest, exploreResponse{Error: strPtr("Missing page")})
		return
	}

	projects, err := h.service.Explore(r.Context(), req.Page)
	if err != nil {
		writeExploreError(w, err)
		return
	}
	if projects == nil {
		projects = []*model.ProjectWithAuthor{}
	}

	writeJSON(w, http.StatusOK, exploreResponse{Projects: projects})
}
