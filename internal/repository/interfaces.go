// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/tilespeak/internal/model"
)

// ErrDuplicateSlug はプロジェクトのスラグが一意制約に違反した場合に返される。
// 呼び出し側はスラグを再生成してリトライできる。
var ErrDuplicateSlug = errors.New("duplicate project slug")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error

	// Update はユーザーの全フィールドを上書き更新する。
	Update(ctx context.Context, user *model.User) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 関連するaccess_tokens、projects以下はCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// AccessTokenRepository はアクセストークンの永続化インターフェース。
type AccessTokenRepository interface {
	// Create はアクセストークンを作成する。
	Create(ctx context.Context, token *model.AccessToken) error

	// FindUserByToken はトークン文字列から所有ユーザーを取得する。
	// トークンが存在しない、または期限切れの場合はnilを返す。
	FindUserByToken(ctx context.Context, token string) (*model.User, error)
}

// ProjectRepository はプロジェクトデータの永続化インターフェース。
type ProjectRepository interface {
	// FindByID は指定IDのプロジェクトを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Project, error)

	// FindWholeByID はプロジェクトを作者・ページ・タイル込みで取得する。
	// 見つからない場合はnilを返す。
	FindWholeByID(ctx context.Context, id string) (*model.ProjectWhole, error)

	// FindWholeBySlug はスラグでプロジェクトを作者・ページ・タイル込みで取得する。
	// 見つからない場合はnilを返す。
	FindWholeBySlug(ctx context.Context, slug string) (*model.ProjectWhole, error)

	// ListPagesWithTiles はプロジェクトの全ページをタイル込みで取得する。
	// クローンマージの元プロジェクト読み取りに使用する。
	ListPagesWithTiles(ctx context.Context, projectID string) ([]*model.PageWithTiles, error)

	// Create はプロジェクト単体を作成する。
	// スラグの一意制約違反の場合はErrDuplicateSlugを返す。
	Create(ctx context.Context, project *model.Project) error

	// CreateWithHomePage はプロジェクトと初期ページ・初期タイルを
	// 同一トランザクションで作成する。
	// スラグの一意制約違反の場合はErrDuplicateSlugを返す。
	CreateWithHomePage(ctx context.Context, project *model.Project, page *model.TilePage, tile *model.Tile) error

	// Update はプロジェクトの全フィールドを上書き更新する。
	Update(ctx context.Context, project *model.Project) error

	// DeleteByID は指定IDのプロジェクトを削除する。
	// 関連するtile_pages、tilesはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error

	// ListByUserID はユーザーの所有プロジェクト一覧を返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Project, error)

	// SearchPublic は公開プロジェクトを名前または説明文で検索し、作者込みで返す。
	SearchPublic(ctx context.Context, query string) ([]*model.ProjectWithAuthor, error)

	// ListPublic は公開プロジェクトを作成日時の降順でページング取得する。
	ListPublic(ctx context.Context, limit, offset int) ([]*model.ProjectWithAuthor, error)
}

// TilePageRepository はページデータの永続化インターフェース。
type TilePageRepository interface {
	// FindByID は指定IDのページを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.TilePage, error)

	// Create はページを作成する。
	Create(ctx context.Context, page *model.TilePage) error

	// UpdateName はページ名を更新する。
	UpdateName(ctx context.Context, id, name string) error

	// DeleteByID は指定IDのページを削除する。タイルはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// TileRepository はタイルデータの永続化インターフェース。
type TileRepository interface {
	// FindByID は指定IDのタイルを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Tile, error)

	// Create はタイルを作成する。
	Create(ctx context.Context, tile *model.Tile) error

	// Update はタイルの全フィールドを上書き更新する。
	Update(ctx context.Context, tile *model.Tile) error

	// DeleteByID は指定IDのタイルを削除する。
	DeleteByID(ctx context.Context, id string) error
}

// StoredResourceRepository はアップロード監査レコードの永続化インターフェース。
type StoredResourceRepository interface {
	// Create はアップロード成功後の監査レコードを作成する。
	Create(ctx context.Context, resource *model.StoredResource) error
}
