package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/tilespeak/internal/model"
)

// PostgresStoredResourceRepo はPostgreSQLを使用したアップロード監査リポジトリ。
type PostgresStoredResourceRepo struct {
	db *sql.DB
}

// NewPostgresStoredResourceRepo はPostgresStoredResourceRepoを生成する。
func NewPostgresStoredResourceRepo(db *sql.DB) *PostgresStoredResourceRepo {
	return &PostgresStoredResourceRepo{db: db}
}

// Create はアップロード成功後の監査レコードを作成する。
func (r *PostgresStoredResourceRepo) Create(ctx context.Context, resource *model.StoredResource) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO stored_resources (id, user_id, url, created_at)
		 VALUES ($1, $2, $3, $4)`,
		resource.ID, resource.UserID, resource.URL, resource.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert stored resource: %w", err)
	}
	return nil
}

// compile-time interface check
var _ StoredResourceRepository = (*PostgresStoredResourceRepo)(nil)
