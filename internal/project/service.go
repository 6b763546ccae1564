// Package project はプロジェクト管理のドメインロジックを提供する。
// 作成・読み取り（クローンマージ込み）・更新・削除・クローン・公開検索を含む。
package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/tilespeak/internal/model"
	"github.com/hitoshi/tilespeak/internal/repository"
	"github.com/hitoshi/tilespeak/internal/security"
)

// slugRetryLimit はスラグ衝突時の再生成回数の上限。
const slugRetryLimit = 5

// explorePageSize は公開プロジェクト一覧の1ページあたりの件数。
const explorePageSize = 10

// Service はプロジェクト管理のサービス層。
type Service struct {
	repo      repository.ProjectRepository
	sanitizer security.TextSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.ProjectRepository, sanitizer security.TextSanitizerService) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
	}
}

// Create は新規プロジェクトを作成する。
// 初期ページ「Home」とその最初のタイルを同一トランザクションで作成する。
// スラグ衝突時はサフィックスを再生成してリトライする。
func (s *Service) Create(ctx context.Context, user *model.User, name, description string) (*model.Project, error) {
	name = s.sanitizer.Sanitize(name)
	description = s.sanitizer.Sanitize(description)

	now := time.Now()
	project := &model.Project{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		Name:        name,
		Description: description,
		Columns:     4,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	page := &model.TilePage{
		ID:        uuid.NewString(),
		ProjectID: project.ID,
		UserID:    user.ID,
		Name:      "Home",
		CreatedAt: now,
		UpdatedAt: now,
	}
	tile := &model.Tile{
		ID:          uuid.NewString(),
		TilePageID:  page.ID,
		UserID:      user.ID,
		TileIndex:   0,
		DisplayText: "First tile!",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for attempt := 0; attempt < slugRetryLimit; attempt++ {
		project.Slug = generateSlug(name)
		err := s.repo.CreateWithHomePage(ctx, project, page, tile)
		if err == nil {
			return project, nil
		}
		if !errors.Is(err, repository.ErrDuplicateSlug) {
			return nil, fmt.Errorf("failed to create project: %w", err)
		}
		slog.Warn("project slug collision, regenerating",
			slog.String("slug", project.Slug),
		)
	}

	return nil, fmt.Errorf("failed to create project: slug collisions exhausted %d attempts", slugRetryLimit)
}

// Get はIDまたはスラグでプロジェクトを作者・ページ・タイル込みで取得する。
// 非公開プロジェクトは作者のみ閲覧できる。
// cloned_fromが設定されたプロジェクトにはクローンマージを適用する。
func (s *Service) Get(ctx context.Context, user *model.User, id, slug string) (*model.ProjectWhole, error) {
	var whole *model.ProjectWhole
	var err error
	if id != "" {
		whole, err = s.repo.FindWholeByID(ctx, id)
	} else {
		whole, err = s.repo.FindWholeBySlug(ctx, slug)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if whole == nil {
		return nil, model.NewProjectNotFoundError()
	}

	if whole.UserID != user.ID && !whole.Public {
		return nil, model.NewProjectPrivateError("Project is private")
	}

	if whole.ClonedFrom != "" {
		if err := s.mergeClonedPages(ctx, user, whole); err != nil {
			return nil, err
		}
	}

	return whole, nil
}

// mergeClonedPages はクローン元プロジェクトのページ構造を基礎として、
// クローン側のタイルを重ね合わせる。
// ページIDが一致する場合: 元ページのフィールドを保ち、
// タイルは元ページのタイルの後ろにクローン側のタイルを連結する。
// 一致しない元ページはそのまま使用し、クローン側だけのページは結果に含めない。
// 元プロジェクトにも公開または作者本人の可視性チェックを適用する。
func (s *Service) mergeClonedPages(ctx context.Context, user *model.User, whole *model.ProjectWhole) error {
	original, err := s.repo.FindByID(ctx, whole.ClonedFrom)
	if err != nil {
		return fmt.Errorf("failed to get original project: %w", err)
	}
	if original == nil {
		return &model.APIError{
			Code:     model.ErrCodeProjectNotFound,
			Message:  "Original project not found",
			Category: "notfound",
		}
	}
	if original.UserID != user.ID && !original.Public {
		return model.NewProjectPrivateError("Original project is private")
	}

	originalPages, err := s.repo.ListPagesWithTiles(ctx, original.ID)
	if err != nil {
		return fmt.Errorf("failed to list original pages: %w", err)
	}

	clonedByID := make(map[string]*model.PageWithTiles, len(whole.Pages))
	for _, page := range whole.Pages {
		clonedByID[page.ID] = page
	}

	merged := make([]*model.PageWithTiles, 0, len(originalPages))
	for _, page := range originalPages {
		if overlay, ok := clonedByID[page.ID]; ok {
			combined := &model.PageWithTiles{
				TilePage: page.TilePage,
				Tiles:    make([]*model.Tile, 0, len(page.Tiles)+len(overlay.Tiles)),
			}
			combined.Tiles = append(combined.Tiles, page.Tiles...)
			combined.Tiles = append(combined.Tiles, overlay.Tiles...)
			merged = append(merged, combined)
			continue
		}
		merged = append(merged, page)
	}
	whole.Pages = merged

	return nil
}

// UpdateParams はプロジェクト更新の任意フィールドを表す。
// nilまたは空文字のフィールドは変更せず、既存の値を維持する。
type UpdateParams struct {
	Name        string
	Description string
	Image       string
	IsPublic    *bool
	Columns     int
}

// Update はプロジェクトを更新する。作者のみ実行できる。
func (s *Service) Update(ctx context.Context, user *model.User, id string, params UpdateParams) (*model.Project, error) {
	project, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if project == nil {
		return nil, model.NewProjectNotFoundError()
	}
	if project.UserID != user.ID {
		return nil, model.NewNotAuthorError()
	}

	// 未指定のフィールドは既存の値を維持する
	if params.Name != "" {
		project.Name = s.sanitizer.Sanitize(params.Name)
	}
	if params.Description != "" {
		project.Description = s.sanitizer.Sanitize(params.Description)
	}
	if params.Image != "" {
		project.Image = params.Image
	}
	if params.IsPublic != nil {
		project.Public = *params.IsPublic
	}
	if params.Columns > 0 {
		project.Columns = params.Columns
	}
	project.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return project, nil
}

// Delete はプロジェクトを削除する。作者のみ実行できる。
// ページとタイルはCASCADE削除される。
func (s *Service) Delete(ctx context.Context, user *model.User, id string) error {
	project, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get project: %w", err)
	}
	if project == nil {
		return model.NewProjectNotFoundError()
	}
	if project.UserID != user.ID {
		return model.NewNotAuthorError()
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}

// Clone は公開プロジェクト（または自身のプロジェクト）の非公開コピーを作成する。
// コピーはcloned_fromで元プロジェクトを参照し、読み取り時にマージされる。
func (s *Service) Clone(ctx context.Context, user *model.User, id string) (*model.Project, error) {
	source, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if source == nil {
		return nil, model.NewProjectNotFoundError()
	}
	if !source.Public && source.UserID != user.ID {
		return nil, model.NewProjectPrivateError("Project is private")
	}

	now := time.Now()
	clone := &model.Project{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		Name:        source.Name,
		Description: source.Description,
		Public:      false,
		Columns:     source.Columns,
		ClonedFrom:  source.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for attempt := 0; attempt < slugRetryLimit; attempt++ {
		clone.Slug = generateSlug(source.Name)
		err := s.repo.Create(ctx, clone)
		if err == nil {
			return clone, nil
		}
		if !errors.Is(err, repository.ErrDuplicateSlug) {
			return nil, fmt.Errorf("failed to clone project: %w", err)
		}
	}

	return nil, fmt.Errorf("failed to clone project: slug collisions exhausted %d attempts", slugRetryLimit)
}

// Search は公開プロジェクトを名前または説明文で検索する。
func (s *Service) Search(ctx context.Context, query string) ([]*model.ProjectWithAuthor, error) {
	projects, err := s.repo.SearchPublic(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search projects: %w", err)
	}
	return projects, nil
}

// Explore は公開プロジェクトを10件単位でページング取得する。
// pageは1始まり。
func (s *Service) Explore(ctx context.Context, page int) ([]*model.ProjectWithAuthor, error) {
	projects, err := s.repo.ListPublic(ctx, explorePageSize, explorePageSize*(page-1))
	if err != nil {
		return nil, fmt.Errorf("failed to list public projects: %w", err)
	}
	return projects, nil
}
