package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-gin-contacts/internal/core/auth"
	"go-gin-contacts/internal/core/cache"
	"go-gin-contacts/internal/core/mail"
	"go-gin-contacts/internal/core/storage"
	"go-gin-contacts/internal/domain"
	"go-gin-contacts/pkg/utils"
)

// AvatarUploader 由 storage.AvatarStore 实现
type AvatarUploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type UserService struct {
	users    domain.UserRepository
	jwt      *auth.JWTer
	mailer   mail.Mailer
	store    AvatarUploader // 可为空
	byID     *cache.Entity[domain.User] // 未配置 redis 时为空
	l        *zap.Logger

	// 后台任务（发邮件），测试里替换成同步执行
	async func(func())
	now   func() time.Time
}

type Options struct {
	Mailer   mail.Mailer
	Store    AvatarUploader
	Cache    *cache.Cache
	CacheTTL time.Duration
}

func NewUserService(users domain.UserRepository, j *auth.JWTer, l *zap.Logger, o Options) *UserService {
	if o.Mailer == nil {
		o.Mailer = mail.Noop{L: l}
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = 15 * time.Minute
	}
	return &UserService{
		users:    users,
		jwt:      j,
		mailer:   o.Mailer,
		store:    o.Store,
		byID:     userCache(o.Cache, o.CacheTTL),
		l:        l,
		async:    func(f func()) { go f() },
		now:      time.Now,
	}
}

func userCache(c *cache.Cache, ttl time.Duration) *cache.Entity[domain.User] {
	if c == nil {
		return nil
	}
	return cache.NewEntity[domain.User](c, "user", ttl)
}

// trimEmail 只去掉首尾空白；邮箱按原样大小写存储和比较
func trimEmail(email string) string { return strings.TrimSpace(email) }

// Signup 注册；默认头像用 gravatar，确认邮件异步发送
func (s *UserService) Signup(ctx context.Context, email, password string) (*domain.User, error) {
	email = trimEmail(email)
	exist, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, domain.ErrUserExists
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	avatar := utils.GravatarURL(email)
	u := &domain.User{Email: email, PasswordHash: hash, Role: domain.RoleUser, Avatar: &avatar}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.sendConfirmation(u.Email)
	return u, nil
}

func (s *UserService) sendConfirmation(email string) {
	s.async(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		tok, err := s.jwt.IssueEmail(email)
		if err != nil {
			s.l.Error("issue email token failed", zap.String("email", email), zap.Error(err))
			return
		}
		if err := s.mailer.SendConfirmation(ctx, email, "", tok); err != nil {
			s.l.Error("send confirmation failed", zap.String("email", email), zap.Error(err))
		}
	})
}

func (s *UserService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	u, err := s.users.FindByEmail(ctx, trimEmail(email))
	if err != nil {
		return nil, err
	}
	if u == nil || !utils.CheckPassword(password, u.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	if !u.Confirmed {
		return nil, domain.ErrEmailNotConfirmed
	}
	return s.issuePair(ctx, u)
}

func (s *UserService) issuePair(ctx context.Context, u *domain.User) (*TokenPair, error) {
	access, err := s.jwt.Issue(u.ID, u.Role)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.jwt.IssueRefresh(u.ID, u.Role)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	if err := s.users.UpdateToken(ctx, u.ID, &refresh); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}

// Refresh 只接受当前保存的 refresh token；不一致时清空，旧 token 全部失效
func (s *UserService) Refresh(ctx context.Context, token string) (*TokenPair, error) {
	claims, err := s.jwt.ParseScope(token, auth.ScopeRefresh)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	uid, err := claims.UserID()
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	u, err := s.users.FindByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrInvalidToken
	}
	if u.RefreshToken == nil || *u.RefreshToken != token {
		if err := s.users.UpdateToken(ctx, u.ID, nil); err != nil {
			return nil, err
		}
		s.l.Warn("refresh token mismatch, revoked", zap.Uint("user_id", u.ID))
		return nil, domain.ErrInvalidToken
	}
	return s.issuePair(ctx, u)
}

// ConfirmEmail 返回 true 表示之前已确认
func (s *UserService) ConfirmEmail(ctx context.Context, token string) (bool, error) {
	claims, err := s.jwt.ParseScope(token, auth.ScopeEmail)
	if err != nil || claims.Subject == "" {
		return false, domain.ErrInvalidToken
	}
	u, err := s.users.FindByEmail(ctx, claims.Subject)
	if err != nil {
		return false, err
	}
	if u == nil {
		return false, domain.ErrInvalidToken
	}
	if u.Confirmed {
		return true, nil
	}
	if err := s.users.ConfirmEmail(ctx, u.Email); err != nil {
		return false, err
	}
	s.invalidate(ctx, u.ID)
	return false, nil
}

// RequestEmail 重发确认邮件；未知邮箱不报错，避免暴露注册情况
func (s *UserService) RequestEmail(ctx context.Context, email string) (bool, error) {
	u, err := s.users.FindByEmail(ctx, trimEmail(email))
	if err != nil {
		return false, err
	}
	if u == nil {
		return false, nil
	}
	if u.Confirmed {
		return true, nil
	}
	s.sendConfirmation(u.Email)
	return false, nil
}

// CurrentUser 鉴权中间件用；有 redis 时走缓存
func (s *UserService) CurrentUser(ctx context.Context, id uint) (*domain.User, error) {
	return s.byID.Get(ctx, id, func(ctx context.Context) (*domain.User, error) {
		return s.users.FindByID(ctx, id)
	})
}

func (s *UserService) UpdateAvatar(ctx context.Context, u *domain.User, filename, contentType string, body io.Reader) (*domain.User, error) {
	if s.store == nil {
		return nil, domain.ErrStorageDisabled
	}
	url, err := s.store.Upload(ctx, storage.AvatarKey(u.ID, filename, s.now()), body, contentType)
	if err != nil {
		return nil, err
	}
	updated, err := s.users.UpdateAvatar(ctx, u.Email, url)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, errors.New("user vanished during avatar update")
	}
	s.invalidate(ctx, u.ID)
	return updated, nil
}

func (s *UserService) invalidate(ctx context.Context, id uint) {
	if err := s.byID.Forget(ctx, id); err != nil {
		s.l.Warn("user cache invalidate failed", zap.Uint("user_id", id), zap.Error(err))
	}
}
