package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"hr-lms/backend/internal/dto"
)

var (
	ErrTokenRevokeUnavailable = errors.New("Token 吊销服务不可用")
)

// TokenBlacklist Token 黑名单存储（由 *redis.Client 实现）
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// AuthService 认证业务接口
// Token 由上游身份系统签发，本服务只负责吊销与身份回显
type AuthService interface {
	Logout(ctx context.Context, jti string, expiresAt time.Time, userID string) error
	Me(ctx context.Context, userID, role string) *dto.CurrentUserResponse
}

type authService struct {
	blacklist TokenBlacklist
	now       func() time.Time
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例
// blacklist 为空时登出不可用（Redis 降级运行）
func NewAuthService(blacklist TokenBlacklist, logger *zap.Logger) AuthService {
	return &authService{blacklist: blacklist, now: time.Now, logger: logger}
}

// Logout 将当前 Token 加入黑名单，TTL 取其剩余有效期
func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time, userID string) error {
	if s.blacklist == nil {
		return ErrTokenRevokeUnavailable
	}
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, jti, ttl); err != nil {
		s.logger.Error("写入 Token 黑名单失败", zap.String("user_id", userID), zap.Error(err))
		return ErrTokenRevokeUnavailable
	}
	s.logger.Info("用户登出", zap.String("user_id", userID))
	return nil
}

func (s *authService) Me(_ context.Context, userID, role string) *dto.CurrentUserResponse {
	return &dto.CurrentUserResponse{UserID: userID, Role: role}
}
