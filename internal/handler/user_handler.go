package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/tilespeak/internal/model"
	"github.com/hitoshi/tilespeak/internal/user"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// Update はユーザーの名前・メールアドレスを更新する。本人のみ実行できる。
	Update(ctx context.Context, actor *model.User, userID string, attrs user.Attrs) (*model.User, error)
	// Delete はユーザーアカウントを削除する。本人のみ実行できる。
	Delete(ctx context.Context, actor *model.User, userID string) error
}

// UserHandler はユーザー管理のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// updateUserRequest はユーザー更新リクエストのボディ。
// newUserのnilフィールドは変更しない。
type updateUserRequest struct {
	UserID  string      `json:"userId"`
	NewUser *user.Attrs `json:"newUser"`
}

// deleteUserRequest はユーザー削除リクエストのボディ。
type deleteUserRequest struct {
	UserID string `json:"userId"`
}

// Update はユーザー更新を処理する。
// POST /api/v1/user/update
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestUserID(w, r)
	if !ok {
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, idResponse{Error: strPtr("Invalid request body")})
		return
	}
	if req.UserID == "" {
		writeJSON(w, http.StatusBadRequest, idResponse{Error: strPtr("Missing userId")})
		return
	}
	if req.NewUser == nil {
		writeJSON(w, http.StatusBadRequest, idResponse{Error: strPtr("Missing user")})
		return
	}

	updated, err := h.service.Update(r.Context(), actor, req.UserID, *req.NewUser)
	if err != nil {
		writeIDError(w, err)
		return
	}

	writeIDSuccess(w, updated.ID)
}

// Delete はユーザー削除を処理する。
// POST /api/v1/user/delete
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestUserID(w, r)
	if !ok {
		return
	}

	var req deleteUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, idResponse{Error: strPtr("Invalid request body")})
		return
	}
	if req.UserID == "" {
		writeJSON(w, http.StatusBadRequest, idResponse{Error: strPtr("Missing userId")})
		return
	}

	if err := h.service.Delete(r.Context(), actor, req.UserID); err != nil {
		writeIDError(w, err)
		return
	}

	writeIDSuccess(w, req.UserID)
}
