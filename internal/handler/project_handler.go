package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/tilespeak/internal/middleware"
	"github.com/hitoshi/tilespeak/internal/model"
	"github.com/hitoshi/tilespeak/internal/project"
)

// ProjectServiceInterface はプロジェクトハンドラーが必要とするサービスインターフェース。
type ProjectServiceInterface interface {
	// Create はプロジェクトと初期ページ・タイルを作成する。
	Create(ctx context.Context, user *model.User, name, description string) (*model.Project, error)
	// Get はidまたはslugでプロジェクトを取得する。クローンマージも行う。
	Get(ctx context.Context, user *model.User, id, slug string) (*model.ProjectWhole, error)
	// Update はプロジェクトを更新する。作者のみ実行できる。
	Update(ctx context.Context, user *model.User, id string, params project.UpdateParams) (*model.Project, error)
	// Delete はプロジェクトを削除する。作者のみ実行できる。
	Delete(ctx context.Context, user *model.User, id string) error
	// Clone は公開プロジェクトの非公開コピーを作成する。
	Clone(ctx context.Context, user *model.User, id string) (*model.Project, error)
}

// ProjectHandler はプロジェクト管理のHTTPハンドラー。
type ProjectHandler struct {
	service ProjectServiceInterface
}

// NewProjectHandler はProjectHandlerを生成する。
func NewProjectHandler(service ProjectServiceInterface) *ProjectHandler {
	return &ProjectHandler{service: service}
}

// createProjectRequest はプロジェクト作成リクエストのボディ。
type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// getProjectRequest はプロジェクト取得リクエストのボディ。idとslugはどちらか必須。
type getProjectRequest struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
}

// updateProjectRequest はプロジェクト更新リクエストのボディ。
// 省略されたフィールドは既存の値を維持する。
type updateProjectRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    *bool  `json:"isPublic"`
	Columns     int    `json:"columns"`
	Image       string `json:"image"`
}

// projectIDRequest はid1つだけを取るプロジェクトルートのボディ。
type projectIDRequest struct {
	ID string `json:"id"`
}

// projectResponse はプロジェクトルート共通のレスポンス。
type projectResponse struct {
	URL     *string             `json:"url"`
	ID      *string             `json:"id"`
	Error   *string             `json:"error"`
	Project *model.ProjectWhole `json:"project"`
}

// projectURL はプロジェクトのフロントエンド向けパスを返す。
func projectURL(slug string) string {
	return "/project/" + slug
}

// writeProjectError は{url,id,error,project}形式のエラーレスポンスを書き込む。
func writeProjectError(w http.ResponseWriter, err error) {
	statusCode, message := serviceErrorStatus(err)
	writeJSON(w, statusCode, projectResponse{Error: strPtr(message)})
}

// requestUserProject はコンテキストからユーザーを取り出す。
// 取り出せない場合はプロジェクトルートの形式で401を書き込む。
func requestUserProject(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, projectResponse{Error: strPtr("No token provided.")})
		return nil, false
	}
	return user, true
}

// Create はプロジェクト作成を処理する。
// POST /api/v1/project/create
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUserProject(w, r)
	if !ok {
		return
	}

	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, projectResponse{Error: strPtr("Invalid request body")})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, projectResponse{Error: strPtr("Missing name")})
		return
	}

	created, err := h.service.Create(r.Context(), user, req.Name, req.Description)
	if err != nil {
		writeProjectError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, projectResponse{
		URL: strPtr(projectURL(created.Slug)),
		ID:  strPtr(created.ID),
	})
}

// Get はプロジェクト取得を処理する。
// POST /api/v1/project/get
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUserProject(w, r)
	if !ok {
		return
	}

	var req getProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, projectResponse{Error: strPtr("Invalid request body")})
		return
	}
	if req.ID == "" && req.Slug == "" {
		writeJSON(w, http.StatusBadRequest, projectResponse{Error: strPtr("Missing id or slug")})
		return
	}

	whole, err := h.service.Get(r.Context(), user, req.ID, req.Slug)
	if err != nil {
		writeProjectError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, projectResponse{
		URL:     strPtr(projectURL(whole.Slug)),
		ID:      strPtr(whole.ID),
		Project: whole,
	})
}

// Update はプロジェクト更新を処理する。
// POST /api/v1/project/update
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUserProject(w, r)
	if !ok {
		return
	}

	var req updateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, projectResponse{Error: strPtr("Invalid request body")})
		return
	}
	if req.ID == "" {
		writeJSON(w, http.StatusBadRequest, projectResponse{Error: strPtr("Missing id")})
		return
	}

	updated, err := h.service.Update(r.Context(), user, req.ID, project.UpdateParams{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		IsPublic:    req.IsPublic,
		Columns:     req.Columns,
	})
	if err != nil {
		writeProjectError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, projectResponse{
		URL: strPtr(projectURL(updated.Slug)),
		ID:  strPtr(updated.ID),
	})
}

// Delete はプロジェクト削除を処理する。成功時は全フィールドnull。
// POST /api/v1/project/delete
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUserProject(w, r)
	if !ok {
		return
	}

	var req projectIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, projectResponse{Error: strPtr("Invalid request body")})
		return
	}
	if req.ID == "" {
		writeJSON(w, http.StatusBadRequest, projectResponse{Error: strPtr("Missing id")})
		return
	}

	if err := h.service.Delete(r.Context(), user, req.ID); err != nil {
		writeProjectError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, projectResponse{})
}

// Clone はプロジェクトのクローン作成を処理する。
// POST /api/v1/project/clone
func (h *ProjectHandler) Clone(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUserProject(w, r)
	if !ok {
		return
	}

	var req projectIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, projectResponse{Error: strPtr("Invalid request body")})
		return
	}
	if req.ID == "" {
		writeJSON(w, http.StatusBadRequest, projectResponse{Error: strPtr("Missing id")})
		return
	}

	cloned, err := h.service.Clone(r.Context(), user, req.ID)
	if err != nil {
		writeProjectError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, projectResponse{
		URL: strPtr(projectURL(cloned.Slug)),
		ID:  strPtr(cloned.ID),
	})
}
