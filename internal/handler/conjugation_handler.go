package handler

import (
	"context"
	"encoding/json"
	"net/http"
)

// ConjugationServiceInterface は活用形ハンドラーが必要とするサービスインターフェース。
type ConjugationServiceInterface interface {
	// Conjugate は指定言語における単語の活用形一覧を返す。
	Conjugate(ctx context.Context, word, language string) ([]string, error)
}

// ConjugationHandler は単語の活用形生成のHTTPハンドラー。
type ConjugationHandler struct {
	service ConjugationServiceInterface
}

// NewConjugationHandler はConjugationHandlerを生成する。
func NewConjugationHandler(service ConjugationServiceInterface) *ConjugationHandler {
	return &ConjugationHandler{service: service}
}

// conjugateRequest は活用形生成リクエストのボディ。
type conjugateRequest struct {
	Word     string `json:"word"`
	Language string `json:"language"`
}

// conjugateResponse は活用形生成のレスポンス。
type conjugateResponse struct {
	Conjugations []string `json:"conjugations"`
	Error        *string  `json:"error"`
}

// Conjugate は活用形生成を処理する。
// POST /api/v1/openai/conjugate
func (h *ConjugationHandler) Conjugate(w http.ResponseWriter, r *http.Request) {
	var req conjugateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, conjugateResponse{Error: strPtr("Invalid request body")})
		return
	}

	conjugations, err := h.service.Conjugate(r.Context(), req.Word, req.Language)
	if err != nil {
		statusCode, message := serviceErrorStatus(err)
		writeJSON(w, statusCode, conjugateResponse{Error: strPtr(message)})
		return
	}

	writeJSON(w, http.StatusOK, conjugateResponse{Conjugations: conjugations})
}
