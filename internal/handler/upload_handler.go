package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/tilespeak/internal/middleware"
	"github.com/hitoshi/tilespeak/internal/model"
)

// UploadServiceInterface はアップロードハンドラーが必要とするサービスインターフェース。
type UploadServiceInterface interface {
	// UploadBase64 はbase64エンコードされたファイルをオブジェクトストレージに
	// 保存し、公開URLを返す。
	UploadBase64(ctx context.Context, user *model.User, name, encoded string) (string, error)
}

// UploadHandler はファイルアップロードのHTTPハンドラー。
type UploadHandler struct {
	service UploadServiceInterface
}

// NewUploadHandler はUploadHandlerを生成する。
func NewUploadHandler(service UploadServiceInterface) *UploadHandler {
	return &UploadHandler{service: service}
}

// uploadRequest はアップロードリクエストのボディ。fileはbase64エンコード。
type uploadRequest struct {
	File string `json:"file"`
	Name string `json:"name"`
}

// uploadResponse はアップロードのレスポンス。
type uploadResponse struct {
	URL   *string `json:"url"`
	Error *string `json:"error"`
}

// Upload はファイルアップロードを処理する。
// POST /api/v1/s3/upload
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, uploadResponse{Error: strPtr("No token provided.")})
		return
	}

	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, uploadResponse{Error: strPtr("Invalid request body")})
		return
	}
	if req.File == "" {
		writeJSON(w, http.StatusBadRequest, uploadResponse{Error: strPtr("Missing file")})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, uploadResponse{Error: strPtr("Missing name")})
		return
	}

	url, err := h.service.UploadBase64(r.Context(), user, req.Name, req.File)
	if err != nil {
		statusCode, message := serviceErrorStatus(err)
		writeJSON(w, statusCode, uploadResponse{Error: strPtr(message)})
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{URL: strPtr(url)})
}
