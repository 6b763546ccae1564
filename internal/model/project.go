// Package model はドメインモデルを定義する。
package model

import "time"

// Project はユーザーが所有するAACボードを表す。
// ClonedFromが設定されている場合、読み取り時に元プロジェクトの
// ページ構造とマージされる（クローンマージ）。
type Project struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Slug        string    `json:"slug"`
	Public      bool      `json:"public"`
	Columns     int       `json:"columns"`
	Image       string    `json:"image"`
	ClonedFrom  string    `json:"cloned_from,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TilePage はプロジェクト内のタイルの集まりを表す。
type TilePage struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tile はページ上の1つのシンボルボタンを表す。
type Tile struct {
	ID              string    `json:"id"`
	TilePageID      string    `json:"tilePageId"`
	UserID          string    `json:"user_id"`
	TileIndex       int       `json:"tile_index"`
	DisplayText     string    `json:"display_text"`
	SpeakText       string    `json:"speak_text"`
	Image           string    `json:"image"`
	BackgroundColor string    `json:"background_color"`
	TextColor       string    `json:"text_color"`
	BorderColor     string    `json:"border_color"`
	LinkID          string    `json:"link_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// PageWithTiles はページとタイル一覧を結合したモデル。
type PageWithTiles struct {
	TilePage
	Tiles []*Tile `json:"tiles"`
}

// ProjectWhole はプロジェクトに作者とページ・タイルを埋め込んだ
// 読み取り専用の複合モデル。project/get のレスポンスで使用される。
type ProjectWhole struct {
	Project
	Author *User            `json:"author"`
	Pages  []*PageWithTiles `json:"pages"`
}

// ProjectWithAuthor はプロジェクトと作者を結合したモデル。
// explore系エンドポイントの一覧表示で使用される。
type ProjectWithAuthor struct {
	Project
	Author *User `json:"author"`
}

// TileAttrs はタイル作成・更新リクエストの自由形式フィールドを表す。
// nilのフィールドは変更せず、既存の値を維持する。
type TileAttrs struct {
	TileIndex       *int    `json:"tile_index"`
	DisplayText     *string `json:"display_text"`
	SpeakText       *string `json:"speak_text"`
	Image           *string `json:"image"`
	BackgroundColor *string `json:"background_color"`
	TextColor       *string `json:"text_color"`
	BorderColor     *string `json:"border_color"`
	LinkID          *string `json:"link_id"`
}
