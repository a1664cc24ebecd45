package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anoixa/photo-share/database/models"
	"github.com/anoixa/photo-share/database/repo/accounts"
	"github.com/anoixa/photo-share/internal/apperr"
	cryptopackage "github.com/anoixa/photo-share/utils/crypto"
)

// ErrInvalidCredentials 用户名或密码错误
var ErrInvalidCredentials = errors.New("invalid username or password")

// RegisterRequest 注册参数
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=20,notblank"`
	Email    string `json:"email" binding:"required,email,max=50"`
	Password string `json:"password" binding:"required,min=6,max=40"`
}

// LoginResult 登录结果
type LoginResult struct {
	User              *models.User
	AccessToken       string
	AccessTokenExpiry time.Time
}

// LoginService 注册与登录
type LoginService struct {
	accountsRepo *accounts.Repository
	jwtService   *JWTService
}

// NewLoginService 创建新的登录服务
func NewLoginService(accountsRepo *accounts.Repository, jwtService *JWTService) *LoginService {
	return &LoginService{accountsRepo: accountsRepo, jwtService: jwtService}
}

// Register 注册新用户，默认授予 USER 角色
func (s *LoginService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	const op = "auth.Register"

	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	taken, err := s.accountsRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, apperr.Persistence(op, err)
	}
	if taken {
		return nil, apperr.Validation(op, "username is already taken")
	}
	taken, err = s.accountsRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Persistence(op, err)
	}
	if taken {
		return nil, apperr.Validation(op, "email is already in use")
	}

	hashed, err := cryptopackage.GenerateFromPassword(req.Password)
	if err != nil {
		return nil, err
	}
	roles, err := s.accountsRepo.FindRoles(ctx, models.RoleUser)
	if err != nil {
		return nil, apperr.Persistence(op, err)
	}

	user := &models.User{Username: username, Email: email, Password: hashed, Roles: roles}
	if err := s.accountsRepo.CreateUser(ctx, user); err != nil {
		return nil, apperr.Persistence(op, err)
	}
	return user, nil
}

// ValidateCredentials 验证用户凭据
func (s *LoginService) ValidateCredentials(ctx context.Context, username, password string) (*models.User, bool, error) {
	user, err := s.accountsRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, accounts.ErrUserNotFound) {
			return nil, false, nil
		}
		return nil, false, apperr.Persistence("auth.Login", err)
	}

	ok, err := cryptopackage.ComparePasswordAndHash(password, user.Password)
	if err != nil {
		return nil, false, nil
	}
	return user, ok, nil
}

// Login 校验凭据并签发访问令牌
func (s *LoginService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, valid, err := s.ValidateCredentials(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, ErrInvalidCredentials
	}

	token, expiry, err := s.jwtService.GenerateAccessToken(user.Username, user.ID, user.RoleNames())
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, AccessToken: token, AccessTokenExpiry: expiry}, nil
}
