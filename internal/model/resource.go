package model

import "time"

// StoredResource はオブジェクトストレージへのアップロード成功後に
// 記録される監査レコードを表す。
type StoredResource struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}
