package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/hitoshi/tilespeak/internal/model"
)

// PostgresTileRepo はPostgreSQLを使用したタイルリポジトリ。
type PostgresTileRepo struct {
	db *sql.DB
}

// NewPostgresTileRepo はPostgresTileRepoを生成する。
func NewPostgresTileRepo(db *sql.DB) *PostgresTileRepo {
	return &PostgresTileRepo{db: db}
}

// FindByID は指定IDのタイルを取得する。見つからない場合はnilを返す。
// id列はUUID型のため、UUID形式でない文字列は未検出として扱う。
func (r *PostgresTileRepo) FindByID(ctx context.Context, id string) (*model.Tile, error) {
	if uuid.Validate(id) != nil {
		return nil, nil
	}
	tile := &model.Tile{}
	var linkID sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, tile_page_id, user_id, tile_index, display_text, speak_text,
		        image, background_color, text_color, border_color, link_id, created_at, updated_at
		 FROM tiles WHERE id = $1`,
		id,
	).Scan(
		&tile.ID, &tile.TilePageID, &tile.UserID, &tile.TileIndex,
		&tile.DisplayText, &tile.SpeakText, &tile.Image,
		&tile.BackgroundColor, &tile.TextColor, &tile.BorderColor,
		&linkID, &tile.CreatedAt, &tile.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find tile: %w", err)
	}

	tile.LinkID = linkID.String
	return tile, nil
}

// Create はタイルを作成する。
func (r *PostgresTileRepo) Create(ctx context.Context, tile *model.Tile) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tiles (id, tile_page_id, user_id, tile_index, display_text, speak_text, image, background_color, text_color, border_color, link_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		tile.ID, tile.TilePageID, tile.UserID, tile.TileIndex,
		tile.DisplayText, tile.SpeakText, tile.Image,
		tile.BackgroundColor, tile.TextColor, tile.BorderColor,
		nullIfEmpty(tile.LinkID), tile.CreatedAt, tile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert tile: %w", err)
	}
	return nil
}

// Update はタイルの全フィールドを上書き更新する。
func (r *PostgresTileRepo) Update(ctx context.Context, tile *model.Tile) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tiles
		 SET tile_index = $2, display_text = $3, speak_text = $4, image = $5,
		     background_color = $6, text_color = $7, border_color = $8, link_id = $9, updated_at = $10
		 WHERE id = $1`,
		tile.ID, tile.TileIndex, tile.DisplayText, tile.SpeakText, tile.Image,
		tile.BackgroundColor, tile.TextColor, tile.BorderColor,
		nullIfEmpty(tile.LinkID), tile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update tile: %w", err)
	}
	return nil
}

// DeleteByID は指定IDのタイルを削除する。
func (r *PostgresTileRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM tiles WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete tile: %w", err)
	}
	return nil
}

// compile-time interface check
var _ TileRepository = (*PostgresTileRepo)(nil)
