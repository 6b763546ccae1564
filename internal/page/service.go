// Package page はプロジェクト内のタイルページに対するCRUD操作を提供する。
package page

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/tilespeak/internal/model"
	"github.com/hitoshi/tilespeak/internal/repository"
	"github.com/hitoshi/tilespeak/internal/security"
)

// projectFinder はページ操作の所有者チェックに必要なプロジェクト参照。
type projectFinder interface {
	FindByID(ctx context.Context, id string) (*model.Project, error)
}

// Service はページ操作のビジネスロジックを提供する。
type Service struct {
	pages     repository.TilePageRepository
	projects  projectFinder
	sanitizer security.TextSanitizerService
}

// NewService はページサービスを生成する。
func NewService(pages repository.TilePageRepository, projects projectFinder, sanitizer security.TextSanitizerService) *Service {
	return &Service{pages: pages, projects: projects, sanitizer: sanitizer}
}

// Create は指定プロジェクトに新しいページを追加する。
// プロジェクトの作者以外は追加できない。
func (s *Service) Create(ctx context.Context, user *model.User, projectID, name string) (*model.TilePage, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("find project: %w", err)
	}
	if project == nil {
		return nil, model.NewProjectNotFoundError()
	}
	if project.UserID != user.ID {
		return nil, model.NewPermissionDeniedError()
	}

	now := time.Now()
	page := &model.TilePage{
		ID:        uuid.NewString(),
		ProjectID: project.ID,
		UserID:    user.ID,
		Name:      s.sanitizer.Sanitize(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.pages.Create(ctx, page); err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	return page, nil
}

// Update はページ名を変更する。プロジェクトの作者以外は変更できない。
func (s *Service) Update(ctx context.Context, user *model.User, pageID, name string) (*model.TilePage, error) {
	page, err := s.authorizedPage(ctx, user, pageID)
	if err != nil {
		return nil, err
	}

	page.Name = s.sanitizer.Sanitize(name)
	if err := s.pages.UpdateName(ctx, page.ID, page.Name); err != nil {
		return nil, fmt.Errorf("update page: %w", err)
	}
	return page, nil
}

// Delete はページとその配下のタイルを削除する。
func (s *Service) Delete(ctx context.Context, user *model.User, pageID string) (*model.TilePage, error) {
	page, err := s.authorizedPage(ctx, user, pageID)
	if err != nil {
		return nil, err
	}

	if err := s.pages.DeleteByID(ctx, page.ID); err != nil {
		return nil, fmt.Errorf("delete page: %w", err)
	}
	return page, nil
}

// authorizedPage はページを取得し、所属プロジェクトの作者であることを確認する。
func (s *Service) authorizedPage(ctx context.Context, user *model.User, pageID string) (*model.TilePage, error) {
	page, err := s.pages.FindByID(ctx, pageID)
	if err != nil {
		return nil, fmt.Errorf("find page: %w", err)
	}
	if page == nil {
		return nil, model.NewPageNotFoundError()
	}

	project, err := s.projects.FindByID(ctx, page.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("find project: %w", err)
	}
	if project == nil {
		return nil, model.NewProjectNotFoundError()
	}
	if project.UserID != user.ID {
		return nil, model.NewPermissionDeniedError()
	}
	return page, nil
}
