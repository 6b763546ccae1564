package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/tilespeak/internal/model"
)

// PostgresTilePageRepo はPostgreSQLを使用したページリポジトリ。
type PostgresTilePageRepo struct {
	db *sql.DB
}

// NewPostgresTilePageRepo はPostgresTilePageRepoを生成する。
func NewPostgresTilePageRepo(db *sql.DB) *PostgresTilePageRepo {
	return &PostgresTilePageRepo{db: db}
}

// FindByID は指定IDのページを取得する。見つからない場合はnilを返す。
// id列はUUID型のため、UUID形式でない文字列は未検出として扱う。
func (r *PostgresTilePageRepo) FindByID(ctx context.Context, id string) (*model.TilePage, error) {
	if uuid.Validate(id) != nil {
		return nil, nil
	}
	page := &model.TilePage{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, project_id, user_id, name, created_at, updated_at
		 FROM tile_pages WHERE id = $1`,
		id,
	).Scan(&page.ID, &page.ProjectID, &page.UserID, &page.Name, &page.CreatedAt, &page.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find page: %w", err)
	}

	return page, nil
}

// Create はページを作成する。
func (r *PostgresTilePageRepo) Create(ctx context.Context, page *model.TilePage) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tile_pages (id, project_id, user_id, name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		page.ID, page.ProjectID, page.UserID, page.Name, page.CreatedAt, page.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert page: %w", err)
	}
	return nil
}

// UpdateName はページ名を更新する。
func (r *PostgresTilePageRepo) UpdateName(ctx context.Context, id, name string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tile_pages SET name = $2, updated_at = $3 WHERE id = $1`,
		id, name, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update page: %w", err)
	}
	return nil
}

// DeleteByID は指定IDのページを削除する。タイルはCASCADE削除される。
func (r *PostgresTilePageRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM tile_pages WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete page: %w", err)
	}
	return nil
}

// compile-time interface check
var _ TilePageRepository = (*PostgresTilePageRepo)(nil)
