// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// HashedPasswordはAPIレスポンスに含めてはならない（json:"-"）。
type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	HashedPassword  string    `json:"-"`
	IdentifierToken string    `json:"identifier_token"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// UserWithProjects はユーザーと所有プロジェクト一覧を結合したモデル。
// GET /api/v1/auth/me のレスポンスで使用される。
type UserWithProjects struct {
	User
	Projects []*Project `json:"projects"`
}

// AccessToken はBearer認証用の不透明トークンを表す。
// サインアップまたはログイン成功時に発行され、期限切れまで有効。
type AccessToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
