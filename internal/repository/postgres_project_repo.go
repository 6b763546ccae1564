package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/hitoshi/tilespeak/internal/model"
)

// PostgresProjectRepo はPostgreSQLを使用したプロジェクトリポジトリ。
type PostgresProjectRepo struct {
	db *sql.DB
}

// NewPostgresProjectRepo はPostgresProjectRepoを生成する。
func NewPostgresProjectRepo(db *sql.DB) *PostgresProjectRepo {
	return &PostgresProjectRepo{db: db}
}

const projectColumns = `id, user_id, name, description, slug, public, columns, image, cloned_from, created_at, updated_at`

// uniqueViolationCode はPostgreSQLの一意制約違反のエラーコード。
const uniqueViolationCode = "23505"

func isSlugViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolationCode && pqErr.Constraint == "projects_slug_key"
	}
	return false
}

func scanProject(scanner interface{ Scan(...any) error }) (*model.Project, error) {
	p := &model.Project{}
	var clonedFrom sql.NullString
	err := scanner.Scan(
		&p.ID, &p.UserID, &p.Name, &p.Description, &p.Slug,
		&p.Public, &p.Columns, &p.Image, &clonedFrom,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.ClonedFrom = clonedFrom.String
	return p, nil
}

// FindByID は指定IDのプロジェクトを取得する。見つからない場合はnilを返す。
// id列はUUID型のため、UUID形式でない文字列は未検出として扱う。
func (r *PostgresProjectRepo) FindByID(ctx context.Context, id string) (*model.Project, error) {
	if uuid.Validate(id) != nil {
		return nil, nil
	}
	p, err := scanProject(r.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`,
		id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find project by ID: %w", err)
	}
	return p, nil
}

// FindWholeByID はプロジェクトを作者・ページ・タイル込みで取得する。
// 見つからない場合はnilを返す。UUID形式でないIDは未検出として扱う。
func (r *PostgresProjectRepo) FindWholeByID(ctx context.Context, id string) (*model.ProjectWhole, error) {
	if uuid.Validate(id) != nil {
		return nil, nil
	}
	return r.findWhole(ctx, `id = $1`, id)
}

// FindWholeBySlug はスラグでプロジェクトを作者・ページ・タイル込みで取得する。
// 見つからない場合はnilを返す。
func (r *PostgresProjectRepo) FindWholeBySlug(ctx context.Context, slug string) (*model.ProjectWhole, error) {
	return r.findWhole(ctx, `slug = $1`, slug)
}

func (r *PostgresProjectRepo) findWhole(ctx context.Context, where string, arg any) (*model.ProjectWhole, error) {
	whole := &model.ProjectWhole{Author: &model.User{}}
	var clonedFrom sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT p.id, p.user_id, p.name, p.description, p.slug, p.public, p.columns,
		        p.image, p.cloned_from, p.created_at, p.updated_at,
		        u.id, u.email, u.name, u.identifier_token, u.created_at, u.updated_at
		 FROM projects p
		 JOIN users u ON u.id = p.user_id
		 WHERE p.`+where,
		arg,
	).Scan(
		&whole.ID, &whole.UserID, &whole.Name, &whole.Description, &whole.Slug,
		&whole.Public, &whole.Columns, &whole.Image, &clonedFrom,
		&whole.CreatedAt, &whole.UpdatedAt,
		&whole.Author.ID, &whole.Author.Email, &whole.Author.Name,
		&whole.Author.IdentifierToken, &whole.Author.CreatedAt, &whole.Author.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	whole.ClonedFrom = clonedFrom.String

	pages, err := r.ListPagesWithTiles(ctx, whole.ID)
	if err != nil {
		return nil, err
	}
	whole.Pages = pages

	return whole, nil
}

// ListPagesWithTiles はプロジェクトの全ページをタイル込みで取得する。
func (r *PostgresProjectRepo) ListPagesWithTiles(ctx context.Context, projectID string) ([]*model.PageWithTiles, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, project_id, user_id, name, created_at, updated_at
		 FROM tile_pages
		 WHERE project_id = $1
		 ORDER BY created_at`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	defer rows.Close()

	pages := []*model.PageWithTiles{}
	byID := map[string]*model.PageWithTiles{}
	for rows.Next() {
		page := &model.PageWithTiles{Tiles: []*model.Tile{}}
		if err := rows.Scan(
			&page.ID, &page.ProjectID, &page.UserID, &page.Name,
			&page.CreatedAt, &page.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		pages = append(pages, page)
		byID[page.ID] = page
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pages: %w", err)
	}

	tileRows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t.tile_page_id, t.user_id, t.tile_index, t.display_text, t.speak_text,
		        t.image, t.background_color, t.text_color, t.border_color, t.link_id,
		        t.created_at, t.updated_at
		 FROM tiles t
		 JOIN tile_pages tp ON tp.id = t.tile_page_id
		 WHERE tp.project_id = $1
		 ORDER BY t.tile_index`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tiles: %w", err)
	}
	defer tileRows.Close()

	for tileRows.Next() {
		tile := &model.Tile{}
		var linkID sql.NullString
		if err := tileRows.Scan(
			&tile.ID, &tile.TilePageID, &tile.UserID, &tile.TileIndex,
			&tile.DisplayText, &tile.SpeakText, &tile.Image,
			&tile.BackgroundColor, &tile.TextColor, &tile.BorderColor,
			&linkID, &tile.CreatedAt, &tile.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan tile: %w", err)
		}
		tile.LinkID = linkID.String
		if page, ok := byID[tile.TilePageID]; ok {
			page.Tiles = append(page.Tiles, tile)
		}
	}
	if err := tileRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tiles: %w", err)
	}

	return pages, nil
}

// Create はプロジェクト単体を作成する。
// スラグの一意制約違反の場合はErrDuplicateSlugを返す。
func (r *PostgresProjectRepo) Create(ctx context.Context, project *model.Project) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (id, user_id, name, description, slug, public, columns, image, cloned_from, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		project.ID, project.UserID, project.Name, project.Description, project.Slug,
		project.Public, project.Columns, project.Image, nullIfEmpty(project.ClonedFrom),
		project.CreatedAt, project.UpdatedAt,
	)
	if err != nil {
		if isSlugViolation(err) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("failed to insert project: %w", err)
	}
	return nil
}

// CreateWithHomePage はプロジェクトと初期ページ・初期タイルを
// 同一トランザクションで作成する。
// スラグの一意制約違反の場合はErrDuplicateSlugを返す。
func (r *PostgresProjectRepo) CreateWithHomePage(ctx context.Context, project *model.Project, page *model.TilePage, tile *model.Tile) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO projects (id, user_id, name, description, slug, public, columns, image, cloned_from, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		project.ID, project.UserID, project.Name, project.Description, project.Slug,
		project.Public, project.Columns, project.Image, nullIfEmpty(project.ClonedFrom),
		project.CreatedAt, project.UpdatedAt,
	)
	if err != nil {
		if isSlugViolation(err) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("failed to insert project: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO tile_pages (id, project_id, user_id, name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		page.ID, page.ProjectID, page.UserID, page.Name, page.CreatedAt, page.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert home page: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO tiles (id, tile_page_id, user_id, tile_index, display_text, speak_text, image, background_color, text_color, border_color, link_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		tile.ID, tile.TilePageID, tile.UserID, tile.TileIndex,
		tile.DisplayText, tile.SpeakText, tile.Image,
		tile.BackgroundColor, tile.TextColor, tile.BorderColor,
		nullIfEmpty(tile.LinkID), tile.CreatedAt, tile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert first tile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Update はプロジェクトの全フィールドを上書き更新する。
func (r *PostgresProjectRepo) Update(ctx context.Context, project *model.Project) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE projects
		 SET name = $2, description = $3, public = $4, columns = $5, image = $6, updated_at = $7
		 WHERE id = $1`,
		project.ID, project.Name, project.Description, project.Public,
		project.Columns, project.Image, project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	return nil
}

// DeleteByID は指定IDのプロジェクトを削除する。
// 関連するtile_pages、tilesはCASCADE削除される。
func (r *PostgresProjectRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM projects WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// ListByUserID はユーザーの所有プロジェクト一覧を返す。
func (r *PostgresProjectRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE user_id = $1 ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []*model.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}
	return projects, nil
}

// SearchPublic は公開プロジェクトを名前または説明文で検索し、作者込みで返す。
func (r *PostgresProjectRepo) SearchPublic(ctx context.Context, query string) ([]*model.ProjectWithAuthor, error) {
	return r.listWithAuthor(ctx,
		`SELECT p.id, p.user_id, p.name, p.description, p.slug, p.public, p.columns,
		        p.image, p.cloned_from, p.created_at, p.updated_at,
		        u.id, u.email, u.name, u.identifier_token, u.created_at, u.updated_at
		 FROM projects p
		 JOIN users u ON u.id = p.user_id
		 WHERE p.public AND (p.name ILIKE '%' || $1 || '%' OR p.description ILIKE '%' || $1 || '%')
		 ORDER BY p.created_at DESC`,
		query,
	)
}

// ListPublic は公開プロジェクトを作成日時の降順でページング取得する。
func (r *PostgresProjectRepo) ListPublic(ctx context.Context, limit, offset int) ([]*model.ProjectWithAuthor, error) {
	return r.listWithAuthor(ctx,
		`SELECT p.id, p.user_id, p.name, p.description, p.slug, p.public, p.columns,
		        p.image, p.cloned_from, p.created_at, p.updated_at,
		        u.id, u.email, u.name, u.identifier_token, u.created_at, u.updated_at
		 FROM projects p
		 JOIN users u ON u.id = p.user_id
		 WHERE p.public
		 ORDER BY p.created_at DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
}

func (r *PostgresProjectRepo) listWithAuthor(ctx context.Context, query string, args ...any) ([]*model.ProjectWithAuthor, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list public projects: %w", err)
	}
	defer rows.Close()

	projects := []*model.ProjectWithAuthor{}
	for rows.Next() {
		p := &model.ProjectWithAuthor{Author: &model.User{}}
		var clonedFrom sql.NullString
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.Name, &p.Description, &p.Slug,
			&p.Public, &p.Columns, &p.Image, &clonedFrom,
			&p.CreatedAt, &p.UpdatedAt,
			&p.Author.ID, &p.Author.Email, &p.Author.Name,
			&p.Author.IdentifierToken, &p.Author.CreatedAt, &p.Author.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan public project: %w", err)
		}
		p.ClonedFrom = clonedFrom.String
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate public projects: %w", err)
	}
	return projects, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// compile-time interface check
var _ ProjectRepository = (*PostgresProjectRepo)(nil)
