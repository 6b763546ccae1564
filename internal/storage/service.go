package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/tilespeak/internal/model"
	"github.com/hitoshi/tilespeak/internal/repository"
)

// Service はファイルアップロードのビジネスロジックを提供する。
// アップロード成功後に監査レコードを記録する。
type Service struct {
	putter    ObjectPutter
	resources repository.StoredResourceRepository
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(putter ObjectPutter, resources repository.StoredResourceRepository) *Service {
	return &Service{putter: putter, resources: resources, now: time.Now}
}

// UploadBase64 はbase64エンコードされたファイルをデコードしてアップロードし、
// 公開URLを返す。キーはミリ秒タイムスタンプの先頭5桁とファイル名を連結したもの。
func (s *Service) UploadBase64(ctx context.Context, user *model.User, name, encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64のデコードに失敗しました: %w", err)
	}
	return s.Upload(ctx, user, name, data, "")
}

// Upload はファイルをアップロードし、公開URLを返す。
func (s *Service) Upload(ctx context.Context, user *model.User, name string, data []byte, contentType string) (string, error) {
	key := s.objectKey(name)

	url, err := s.putter.PutObject(ctx, key, data, contentType)
	if err != nil {
		return "", err
	}

	resource := &model.StoredResource{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		URL:       url,
		CreatedAt: s.now(),
	}
	if err := s.resources.Create(ctx, resource); err != nil {
		// 監査レコードの失敗でアップロード自体は取り消さない
		slog.Error("アップロード監査レコードの記録に失敗しました",
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
	}

	slog.Info("ファイルをアップロードしました",
		slog.String("user_id", user.ID),
		slog.String("key", key),
		slog.Int("size_bytes", len(data)),
	)
	return url, nil
}

// objectKey はアップロードキーを生成する。
func (s *Service) objectKey(name string) string {
	millis := strconv.FormatInt(s.now().UnixMilli(), 10)
	return millis[:5] + name
}
