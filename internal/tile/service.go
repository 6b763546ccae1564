// Package tile はページ上のタイル(シンボルボタン)に対するCRUD操作を提供する。
package tile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/tilespeak/internal/model"
	"github.com/hitoshi/tilespeak/internal/repository"
	"github.com/hitoshi/tilespeak/internal/security"
)

// pageFinder はタイル操作の所有者チェックに必要なページ参照。
type pageFinder interface {
	FindByID(ctx context.Context, id string) (*model.TilePage, error)
}

// Service はタイル操作のビジネスロジックを提供する。
type Service struct {
	tiles     repository.TileRepository
	pages     pageFinder
	sanitizer security.TextSanitizerService
}

// NewService はタイルサービスを生成する。
func NewService(tiles repository.TileRepository, pages pageFinder, sanitizer security.TextSanitizerService) *Service {
	return &Service{tiles: tiles, pages: pages, sanitizer: sanitizer}
}

// Create は指定ページに新しいタイルを追加する。
// ページの作成者以外は追加できない。
func (s *Service) Create(ctx context.Context, user *model.User, pageID string, attrs model.TileAttrs) (*model.Tile, error) {
	page, err := s.pages.FindByID(ctx, pageID)
	if err != nil {
		return nil, fmt.Errorf("find page: %w", err)
	}
	if page == nil {
		return nil, model.NewPageNotFoundError()
	}
	if page.UserID != user.ID {
		return nil, model.NewPermissionDeniedError()
	}

	now := time.Now()
	tile := &model.Tile{
		ID:         uuid.NewString(),
		TilePageID: page.ID,
		UserID:     user.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.apply(tile, attrs)
	if err := s.tiles.Create(ctx, tile); err != nil {
		return nil, fmt.Errorf("create tile: %w", err)
	}
	return tile, nil
}

// Update はタイルの属性を部分的に更新する。指定のないフィールドは変更しない。
func (s *Service) Update(ctx context.Context, user *model.User, tileID string, attrs model.TileAttrs) (*model.Tile, error) {
	tile, err := s.authorizedTile(ctx, user, tileID)
	if err != nil {
		return nil, err
	}

	s.apply(tile, attrs)
	tile.UpdatedAt = time.Now()
	if err := s.tiles.Update(ctx, tile); err != nil {
		return nil, fmt.Errorf("update tile: %w", err)
	}
	return tile, nil
}

// Remove はタイルを削除する。
func (s *Service) Remove(ctx context.Context, user *model.User, tileID string) (*model.Tile, error) {
	tile, err := s.authorizedTile(ctx, user, tileID)
	if err != nil {
		return nil, err
	}

	if err := s.tiles.DeleteByID(ctx, tile.ID); err != nil {
		return nil, fmt.Errorf("delete tile: %w", err)
	}
	return tile, nil
}

// authorizedTile はタイルを取得し、所属ページの作成者であることを確認する。
func (s *Service) authorizedTile(ctx context.Context, user *model.User, tileID string) (*model.Tile, error) {
	tile, err := s.tiles.FindByID(ctx, tileID)
	if err != nil {
		return nil, fmt.Errorf("find tile: %w", err)
	}
	if tile == nil {
		return nil, model.NewTileNotFoundError()
	}

	page, err := s.pages.FindByID(ctx, tile.TilePageID)
	if err != nil {
		return nil, fmt.Errorf("find page: %w", err)
	}
	if page == nil {
		return nil, model.NewPageNotFoundError()
	}
	if page.UserID != user.ID {
		return nil, model.NewPermissionDeniedError()
	}
	return tile, nil
}

// apply は指定された属性のみタイルへ反映する。表示・発話テキストはサニタイズする。
func (s *Service) apply(tile *model.Tile, attrs model.TileAttrs) {
	if attrs.TileIndex != nil {
		tile.TileIndex = *attrs.TileIndex
	}
	if attrs.DisplayText != nil {
		tile.DisplayText = s.sanitizer.Sanitize(*attrs.DisplayText)
	}
	if attrs.SpeakText != nil {
		tile.SpeakText = s.sanitizer.Sanitize(*attrs.SpeakText)
	}
	if attrs.Image != nil {
		tile.Image = *attrs.Image
	}
	if attrs.BackgroundColor != nil {
		tile.BackgroundColor = *attrs.BackgroundColor
	}
	if attrs.TextColor != nil {
		tile.TextColor = *attrs.TextColor
	}
	if attrs.BorderColor != nil {
		tile.BorderColor = *attrs.BorderColor
	}
	if attrs.LinkID != nil {
		tile.LinkID = *attrs.LinkID
	}
}
