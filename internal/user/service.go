// Package user はユーザー情報の更新と退会処理を提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/hitoshi/tilespeak/internal/model"
	"github.com/hitoshi/tilespeak/internal/repository"
	"github.com/hitoshi/tilespeak/internal/security"
)

// Attrs はユーザー更新で受け付ける属性。指定されたフィールドのみ反映する。
type Attrs struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// Service はユーザー管理のサービス層。
type Service struct {
	userRepo  repository.UserRepository
	sanitizer security.TextSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository, sanitizer security.TextSanitizerService) *Service {
	return &Service{userRepo: userRepo, sanitizer: sanitizer}
}

// Update はユーザーの表示名・メールアドレスを更新する。
// 本人以外のアカウントは更新できない。
func (s *Service) Update(ctx context.Context, actor *model.User, userID string, attrs Attrs) (*model.User, error) {
	target, err := s.authorizedUser(ctx, actor, userID)
	if err != nil {
		return nil, err
	}

	if attrs.Name != nil {
		target.Name = s.sanitizer.Sanitize(*attrs.Name)
	}
	if attrs.Email != nil {
		email := strings.TrimSpace(*attrs.Email)
		if !validEmail(email) {
			return nil, model.NewInvalidEmailError()
		}
		existing, err := s.userRepo.FindByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("find user by email: %w", err)
		}
		if existing != nil && existing.ID != target.ID {
			return nil, model.NewEmailTakenError()
		}
		target.Email = email
	}

	target.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, target); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return target, nil
}

// Delete はユーザーを退会させる。
// トークン・プロジェクト・ページ・タイルはCASCADEで削除される。
func (s *Service) Delete(ctx context.Context, actor *model.User, userID string) error {
	target, err := s.authorizedUser(ctx, actor, userID)
	if err != nil {
		return err
	}

	slog.Info("deleting user account", slog.String("user_id", target.ID))
	if err := s.userRepo.DeleteByID(ctx, target.ID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// authorizedUser は対象ユーザーを取得し、操作者本人であることを確認する。
func (s *Service) authorizedUser(ctx context.Context, actor *model.User, userID string) (*model.User, error) {
	target, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if target == nil {
		return nil, model.NewUserNotFoundError()
	}
	if target.ID != actor.ID {
		return nil, model.NewPermissionDeniedError()
	}
	return target, nil
}

// validEmail はメールアドレスの形式を検証する。
// 判定基準はauthパッケージのサインアップ時検証と一致させる。
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	return strings.Contains(email[at+1:], ".")
}
