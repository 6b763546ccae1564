package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/hitoshi/tilespeak/internal/model"
)

// PostgresAccessTokenRepo はPostgreSQLを使用したアクセストークンリポジトリ。
type PostgresAccessTokenRepo struct {
	db *sql.DB
}

// NewPostgresAccessTokenRepo はPostgresAccessTokenRepoを生成する。
func NewPostgresAccessTokenRepo(db *sql.DB) *PostgresAccessTokenRepo {
	return &PostgresAccessTokenRepo{db: db}
}

// Create はアクセストークンを作成する。
func (r *PostgresAccessTokenRepo) Create(ctx context.Context, token *model.AccessToken) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO access_tokens (token, user_id, expires_at, created_at)
		 VALUES ($1, $2, $3, $4)`,
		token.Token, token.UserID, token.ExpiresAt, token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create access token: %w", err)
	}
	return nil
}

// FindUserByToken はトークン文字列から所有ユーザーを取得する。
// トークンが存在しない、または期限切れの場合はnilを返す。
// token列はUUID型のため、UUID形式でない文字列は未検出として扱う。
func (r *PostgresAccessTokenRepo) FindUserByToken(ctx context.Context, token string) (*model.User, error) {
	if uuid.Validate(token) != nil {
		return nil, nil
	}
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT u.id, u.email, u.name, u.hashed_password, u.identifier_token, u.created_at, u.updated_at
		 FROM access_tokens t
		 JOIN users u ON u.id = t.user_id
		 WHERE t.token = $1 AND t.expires_at > now()`,
		token,
	).Scan(
		&user.ID, &user.Email, &user.Name, &user.HashedPassword,
		&user.IdentifierToken, &user.CreatedAt, &user.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by token: %w", err)
	}

	return user, nil
}

// compile-time interface check
var _ AccessTokenRepository = (*PostgresAccessTokenRepo)(nil)
