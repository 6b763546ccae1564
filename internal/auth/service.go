// Package auth はアカウント作成・ログイン・アクセストークン認証の
// ドメインロジックを提供する。
package auth

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/tilespeak/internal/model"
	"github.com/hitoshi/tilespeak/internal/repository"
)

// bcryptCost はパスワードハッシュのコストパラメータ。
const bcryptCost = 10

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	// TokenTTL は発行するアクセストークンの有効期間。
	TokenTTL time.Duration
}

// ProjectLister はユーザーの所有プロジェクト一覧の取得インターフェース。
// repository.ProjectRepositoryの部分集合として定義する。
type ProjectLister interface {
	ListByUserID(ctx context.Context, userID string) ([]*model.Project, error)
}

// Service は認証のサービス層。
// サインアップ、ログイン、トークン検証を提供する。
type Service struct {
	userRepo    repository.UserRepository
	tokenRepo   repository.AccessTokenRepository
	projectRepo ProjectLister
	config      ServiceConfig
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	tokenRepo repository.AccessTokenRepository,
	projectRepo ProjectLister,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo:    userRepo,
		tokenRepo:   tokenRepo,
		projectRepo: projectRepo,
		config:      config,
	}
}

// validEmail はメールアドレスの構文を検証する。
// RFC 5322のアドレス単体（表示名なし）かつドメインにドットを含むものだけを許可する。
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	return strings.Contains(email[at+1:], ".")
}

// Signup は新規アカウントを作成し、アクセストークンを発行する。
// メールアドレスが不正、パスワードが空、またはメールアドレスが
// 使用済みの場合はAPIErrorを返す。
func (s *Service) Signup(ctx context.Context, email, password, name string) (string, error) {
	if !validEmail(email) {
		return "", model.NewInvalidEmailError()
	}
	if password == "" {
		return "", &model.APIError{
			Code:     model.ErrCodeNoPassword,
			Message:  "No password",
			Category: "validation",
		}
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return "", model.NewEmailTakenError()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:              uuid.NewString(),
		Email:           email,
		Name:            name,
		HashedPassword:  string(hash),
		IdentifierToken: email,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	return s.issueToken(ctx, user.ID)
}

// Login はメールアドレスとパスワードを検証し、アクセストークンを発行する。
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return "", model.NewLoginFailedError("User not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return "", model.NewLoginFailedError("Incorrect password.")
	}

	return s.issueToken(ctx, user.ID)
}

// ValidateEmail はメールアドレスの構文と未使用を確認する。
// アカウント作成前のフロントエンド検証用。
func (s *Service) ValidateEmail(ctx context.Context, email string) error {
	if !validEmail(email) {
		return model.NewInvalidEmailError()
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return model.NewEmailTakenError()
	}

	return nil
}

// Authenticate はトークン文字列から所有ユーザーを解決する。
// 失敗時はAPIError（NO_TOKEN / INVALID_TOKEN）を返す。
// 成功時、返すユーザーのハッシュ済みパスワードは除去済み。
func (s *Service) Authenticate(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, model.NewNoTokenError()
	}

	user, err := s.tokenRepo.FindUserByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}
	if user == nil {
		return nil, model.NewInvalidTokenError()
	}

	// 秘密情報はハンドラーに渡す前に除去する
	user.HashedPassword = ""
	return user, nil
}

// CurrentUser はトークンからユーザーを解決し、所有プロジェクト一覧を埋め込んで返す。
// GET /auth/me 用。
func (s *Service) CurrentUser(ctx context.Context, token string) (*model.UserWithProjects, error) {
	user, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	projects, err := s.projectRepo.ListByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user projects: %w", err)
	}

	return &model.UserWithProjects{User: *user, Projects: projects}, nil
}

// issueToken はユーザーに新しいアクセストークンを発行する。
func (s *Service) issueToken(ctx context.Context, userID string) (string, error) {
	now := time.Now()
	token := &model.AccessToken{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: now.Add(s.config.TokenTTL),
		CreatedAt: now,
	}
	if err := s.tokenRepo.Create(ctx, token); err != nil {
		return "", fmt.Errorf("failed to create access token: %w", err)
	}
	return token.Token, nil
}
