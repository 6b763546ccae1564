package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/hitoshi/tilespeak/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Signup は新規アカウントを作成し、アクセストークンを発行する。
	Signup(ctx context.Context, email, password, name string) (string, error)
	// Login はメールアドレスとパスワードを検証し、アクセストークンを発行する。
	Login(ctx context.Context, email, password string) (string, error)
	// ValidateEmail はメールアドレスの構文と未使用を検証する。
	ValidateEmail(ctx context.Context, email string) error
	// CurrentUser はトークンの所有者を所有プロジェクト込みで返す。
	CurrentUser(ctx context.Context, token string) (*model.UserWithProjects, error)
}

// AuthHandler はアカウント作成・ログイン・トークン検証のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// signupRequest はアカウント作成リクエストのボディ。
type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// validateEmailRequest はメールアドレス検証リクエストのボディ。
type validateEmailRequest struct {
	Email string `json:"email"`
}

// authResponse は認証ルート共通のレスポンス。
type authResponse struct {
	AccessToken *string                 `json:"access_token"`
	Error       *string                 `json:"error"`
	User        *model.UserWithProjects `json:"user,omitempty"`
}

// writeAuthError は{access_token,error}形式のエラーレスポンスを書き込む。
func writeAuthError(w http.ResponseWriter, err error) {
	statusCode, message := serviceErrorStatus(err)
	writeJSON(w, statusCode, authResponse{Error: strPtr(message)})
}

// Signup はアカウント作成を処理する。
// POST /api/v1/auth/create
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, authResponse{Error: strPtr("Invalid request body")})
		return
	}

	token, err := h.service.Signup(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{AccessToken: strPtr(token)})
}

// Login はログインを処理する。
// POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, authResponse{Error: strPtr("Invalid request body")})
		return
	}

	token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{AccessToken: strPtr(token)})
}

// ValidateEmail はメールアドレスの使用可否を検証する。
// POST /api/v1/auth/validate-email
func (h *AuthHandler) ValidateEmail(w http.ResponseWriter, r *http.Request) {
	var req validateEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, authResponse{Error: strPtr("Invalid request body")})
		return
	}

	if err := h.service.ValidateEmail(r.Context(), req.Email); err != nil {
		writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{})
}

// Me は現在のユーザーを所有プロジェクト込みで返す。
// GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if token == "" {
		writeAuthError(w, model.NewNoTokenError())
		return
	}

	user, err := h.service.CurrentUser(r.Context(), token)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		AccessToken: strPtr(token),
		User:        user,
	})
}
