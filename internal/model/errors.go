// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// Messageはそのままクライアントのerrorフィールドに返される文字列。
type APIError struct {
	Code     string // エラーコード
	Message  string // クライアント向けエラーメッセージ
	Category string // カテゴリ: auth, validation, permission, notfound, upstream
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidEmail     = "INVALID_EMAIL"
	ErrCodeNoPassword       = "NO_PASSWORD"
	ErrCodeEmailTaken       = "EMAIL_TAKEN"
	ErrCodeLoginFailed      = "LOGIN_FAILED"
	ErrCodeMissingField     = "MISSING_FIELD"
	ErrCodeNoToken          = "NO_TOKEN"
	ErrCodeInvalidToken     = "INVALID_TOKEN"
	ErrCodeUserNotFound     = "USER_NOT_FOUND"
	ErrCodeProjectNotFound  = "PROJECT_NOT_FOUND"
	ErrCodePageNotFound     = "PAGE_NOT_FOUND"
	ErrCodeTileNotFound     = "TILE_NOT_FOUND"
	ErrCodeProjectPrivate   = "PROJECT_PRIVATE"
	ErrCodeNotAuthor        = "NOT_AUTHOR"
	ErrCodePermissionDenied = "PERMISSION_DENIED"
	ErrCodeInvalidProvider  = "INVALID_PROVIDER"
	ErrCodeUpstreamFailed   = "UPSTREAM_FAILED"
)

// NewInvalidEmailError は無効なメールアドレスエラーを生成する。
func NewInvalidEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidEmail,
		Message:  "Invalid email",
		Category: "validation",
	}
}

// NewEmailTakenError はメールアドレス重複エラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  "Email already taken",
		Category: "validation",
	}
}

// NewMissingFieldError は必須フィールド欠落エラーを生成する。
func NewMissingFieldError(field string) *APIError {
	return &APIError{
		Code:     ErrCodeMissingField,
		Message:  fmt.Sprintf("Missing %s", field),
		Category: "validation",
	}
}

// NewLoginFailedError はログイン失敗エラーを生成する。
// メッセージは呼び出し側で指定する（"User not found" 等）。
func NewLoginFailedError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeLoginFailed,
		Message:  message,
		Category: "auth",
	}
}

// NewNoTokenError はトークン未提示エラーを生成する。
func NewNoTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeNoToken,
		Message:  "No token provided.",
		Category: "auth",
	}
}

// NewInvalidTokenError は無効なトークンエラーを生成する。
func NewInvalidTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidToken,
		Message:  "Invalid authentication.",
		Category: "auth",
	}
}

// NewUserNotFoundError はユーザー未検出エラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "User not found",
		Category: "notfound",
	}
}

// NewProjectNotFoundError はプロジェクト未検出エラーを生成する。
func NewProjectNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeProjectNotFound,
		Message:  "Project not found",
		Category: "notfound",
	}
}

// NewPageNotFoundError はページ未検出エラーを生成する。
func NewPageNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodePageNotFound,
		Message:  "Page not found",
		Category: "notfound",
	}
}

// NewTileNotFoundError はタイル未検出エラーを生成する。
func NewTileNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeTileNotFound,
		Message:  "Tile not found",
		Category: "notfound",
	}
}

// NewProjectPrivateError は非公開プロジェクトへのアクセス拒否エラーを生成する。
func NewProjectPrivateError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeProjectPrivate,
		Message:  message,
		Category: "permission",
	}
}

// NewNotAuthorError はプロジェクト作者以外による変更拒否エラーを生成する。
func NewNotAuthorError() *APIError {
	return &APIError{
		Code:     ErrCodeNotAuthor,
		Message:  "You are not the author of this project",
		Category: "permission",
	}
}

// NewPermissionDeniedError は所有権チェック失敗エラーを生成する。
func NewPermissionDeniedError() *APIError {
	return &APIError{
		Code:     ErrCodePermissionDenied,
		Message:  "You don't have permission to do that",
		Category: "permission",
	}
}

// NewInvalidProviderError は不明な音声合成プロバイダエラーを生成する。
func NewInvalidProviderError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidProvider,
		Message:  "Invalid provider",
		Category: "validation",
	}
}

// NewUpstreamFailedError は外部プロバイダ呼び出し失敗エラーを生成する。
// プロバイダ側のエラー詳細はクライアントに漏らさない。
func NewUpstreamFailedError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeUpstreamFailed,
		Message:  message,
		Category: "upstream",
	}
}
