// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/tilespeak/internal/model"
)

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// strPtr はnull許容のJSONフィールド用に文字列ポインタを返す。
func strPtr(s string) *string {
	return &s
}

// serviceErrorStatus はサービス層から返されたエラーを
// HTTPステータスコードとクライアント向けメッセージに変換する。
// APIError以外のエラーは詳細を漏らさず500として扱う。
func serviceErrorStatus(err error) (int, string) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return apiErrorStatus(apiErr), apiErr.Message
	}

	slog.Error("internal server error", slog.String("error", err.Error()))
	return http.StatusInternalServerError, "Internal server error"
}

// apiErrorStatus はAPIErrorをHTTPステータスコードにマッピングする。
//
//	404: 参照先エンティティの未検出
//	403: 非公開プロジェクトへのアクセス、作者以外による変更
//	401: トークン未提示・無効（ミドルウェアを透過したケース）
//	400: バリデーション、所有権チェック、外部プロバイダ失敗
func apiErrorStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeProjectPrivate, model.ErrCodeNotAuthor:
		return http.StatusForbidden
	case model.ErrCodeNoToken, model.ErrCodeInvalidToken:
		return http.StatusUnauthorized
	}

	switch apiErr.Category {
	case "notfound":
		return http.StatusNotFound
	case "validation", "permission", "upstream", "auth":
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// idResponse はpage/tile/userルートで共通の{id,error}レスポンス。
type idResponse struct {
	ID    *string `json:"id"`
	Error *string `json:"error"`
}

// writeIDError は{id,error}形式のエラーレスポンスを書き込む。
func writeIDError(w http.ResponseWriter, err error) {
	statusCode, message := serviceErrorStatus(err)
	writeJSON(w, statusCode, idResponse{Error: strPtr(message)})
}

// writeIDSuccess は{id,error}形式の成功レスポンスを書き込む。
func writeIDSuccess(w http.ResponseWriter, id string) {
	writeJSON(w, http.StatusOK, idResponse{ID: strPtr(id)})
}
