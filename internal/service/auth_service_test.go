package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/DiaaElsadek/uniStream22/config"
	"github.com/DiaaElsadek/uniStream22/internal/dto"
	"github.com/DiaaElsadek/uniStream22/internal/model"
	"github.com/DiaaElsadek/uniStream22/internal/repository"
	"github.com/DiaaElsadek/uniStream22/pkg/ticket"
)

// ── 测试辅助 ──

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			TicketSecret: "test-secret-key-for-unit-testing-2026",
			TicketTTL:    15 * time.Minute,
			OTPTTL:       10 * time.Minute,
		},
	}
}

func setupTestAuthService() (AuthService, *mockUserRepo, *mockOTPCache, *mockMirror) {
	cfg := testConfig()

	userRepo := newMockUserRepo()
	repo := &repository.Repository{
		User:     userRepo,
		News:     newMockNewsRepo(),
		Schedule: newMockScheduleRepo(),
	}

	otp := newMockOTPCache()
	mirror := newMockMirror()
	ticketMgr := ticket.NewManager(&cfg.Auth)
	logger := zap.NewNop()

	svc := NewAuthService(cfg, repo, ticketMgr, &mockMailer{}, otp, mirror, logger)
	return svc, userRepo, otp, mirror
}

func createTestUser(userRepo *mockUserRepo, academicID, email, password string) *model.AppUser {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	user := &model.AppUser{
		AcademicID:   academicID,
		Email:        email,
		PasswordHash: string(hash),
		FullName:     "Test User",
		UserToken:    "token-" + academicID,
		Role:         model.RoleMember,
		SubjectIDs:   model.IntArray{1, 2, 3, 4, 5},
	}
	_ = userRepo.Create(context.Background(), user)
	return user
}

func validSignupRequest() *dto.SignupRequest {
	return &dto.SignupRequest{
		AcademicID: "42022123",
		Email:      "a@b.com",
		Password:   "12345678",
		FullName:   "Ali Test",
	}
}

// ── 注册测试 ──

func TestSignup_Success(t *testing.T) {
	svc, _, _, _ := setupTestAuthService()

	result, err := svc.Signup(context.Background(), validSignupRequest())
	if err != nil {
		t.Fatalf("Signup 应成功，但返回错误: %v", err)
	}
	if !result.Status {
		t.Error("Status 应为 true")
	}
	if result.UserToken == "" {
		t.Error("UserToken 不应为空")
	}
	if result.User.AcademicID != "42022123" {
		t.Errorf("期望 AcademicID=42022123，实际=%s", result.User.AcademicID)
	}
	if result.User.Role != model.RoleMember {
		t.Errorf("新用户角色应为 member，实际=%s", result.User.Role)
	}
	if len(result.User.SubjectIDs) != 5 {
		t.Errorf("新用户应默认选全部 5 门科目，实际=%v", result.User.SubjectIDs)
	}
}

func TestSignup_TokenIsUniquePerUser(t *testing.T) {
	svc, _, _, _ := setupTestAuthService()

	r1, err := svc.Signup(context.Background(), validSignupRequest())
	if err != nil {
		t.Fatalf("第一次 Signup 失败: %v", err)
	}

	req2 := validSignupRequest()
	req2.AcademicID = "42023456"
	req2.Email = "c@d.com"
	r2, err := svc.Signup(context.Background(), req2)
	if err != nil {
		t.Fatalf("第二次 Signup 失败: %v", err)
	}

	if r1.UserToken == r2.UserToken {
		t.Error("不同用户的会话令牌不应相同")
	}
}

func TestSignup_InvalidAcademicID(t *testing.T) {
	svc, _, _, _ := setupTestAuthService()

	cases := []string{"", "4202", "52022123", "42025123", "42022abc", "420221234"}
	for _, id := range cases {
		req := validSignupRequest()
		req.AcademicID = id

		_, err := svc.Signup(context.Background(), req)
		fe := AsFieldError(err)
		if fe == nil || fe.Field != "academicId" {
			t.Errorf("academicId=%q 期望 academicId 字段错误，实际: %v", id, err)
		}
	}
}

func TestSignup_InvalidEmail(t *testing.T) {
	svc, _, _, _ := setupTestAuthService()

	req := validSignupRequest()
	req.Email = "a b@c.com" // 空格不在许可字符集内

	_, err := svc.Signup(context.Background(), req)
	fe := AsFieldError(err)
	if fe == nil || fe.Field != "email" {
		t.Errorf("期望 email 字段错误，实际: %v", err)
	}
}

func TestSignup_PasswordLength(t *testing.T) {
	svc, _, _, _ := setupTestAuthService()

	// 密码必须恰好 8 位
	for _, pw := range []string{"1234567", "123456789", ""} {
		req := validSignupRequest()
		req.Password = pw

		_, err := svc.Signup(context.Background(), req)
		fe := AsFieldError(err)
		if fe == nil || fe.Field != "password" {
			t.Errorf("password=%q 期望 password 字段错误，实际: %v", pw, err)
		}
	}
}

func TestSignup_FullNameSanitized(t *testing.T) {
	svc, _, _, _ := setupTestAuthService()

	// 含 HTML 标签的姓名清洗后与原值不一致，应拒绝
	req := validSignupRequest()
	req.FullName = "Ali <b>Test</b>"

	_, err := svc.Signup(context.Background(), req)
	fe := AsFieldError(err)
	if fe == nil || fe.Field != "fullName" {
		t.Errorf("期望 fullName 字段错误，实际: %v", err)
	}
}

func TestSignup_ArabicFullName(t *testing.T) {
	svc, _, _, _ := setupTestAuthService()

	req := validSignupRequest()
	req.FullName = "محمد احمد"

	if _, err := svc.Signup(context.Background(), req); err != nil {
		t.Errorf("阿拉伯语姓名应合法，实际: %v", err)
	}
}

func TestSignup_DuplicateAcademicID(t *testing.T) {
	svc, userRepo, _, _ := setupTestAuthService()
	createTestUser(userRepo, "42022123", "exists@b.com", "12345678")

	_, err := svc.Signup(context.Background(), validSignupRequest())
	fe := AsFieldError(err)
	if fe == nil || fe.Field != "academicId" || !fe.Duplicate {
		t.Errorf("期望 academicId 重复错误，实际: %v", err)
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc, userRepo, _, _ := setupTestAuthService()
	createTestUser(userRepo, "42023999", "a@b.com", "12345678")

	_, err := svc.Signup(context.Background(), validSignupRequest())
	fe := AsFieldError(err)
	if fe == nil || fe.Field != "email" || !fe.Duplicate {
		t.Errorf("期望 email 重复错误，实际: %v", err)
	}
}

// TestSignup_ConcurrentDuplicate 并发注册同一邮箱，唯一约束裁决，恰好一个成功
func TestSignup_ConcurrentDuplicate(t *testing.T) {
	svc, _, _, _ := setupTestAuthService()

	const n = 8
	var wg sync.WaitGroup
	results := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.Signup(context.Background(), validSignupRequest())
		}(i)
	}
	wg.Wait()

	success := 0
	for _, err := range results {
		if err == nil {
			success++
			continue
		}
		if fe := AsFieldError(err); fe == nil || !fe.Duplicate {
			t.Errorf("失败请求应返回重复错误，实际: %v", err)
		}
	}
	if success != 1 {
		t.Errorf("期望恰好 1 个注册成功，实际=%d", success)
	}
}

func TestSignup_TicketRequired(t *testing.T) {
	svc, _, _, _ := setupTestAuthService()

	cfgSvc := svc.(*authService)
	cfgSvc.cfg.Feature.OTPRequired = true

	_, err := svc.Signup(context.Background(), validSignupRequest())
	if !errors.Is(err, ErrTicketRequired) {
		t.Errorf("期望 ErrTicketRequired，实际: %v", err)
	}
}

func TestSignup_TicketEmailMismatch(t *testing.T) {
	svc, _, _, _ := setupTestAuthService()

	cfgSvc := svc.(*authService)
	cfgSvc.cfg.Feature.OTPRequired = true

	tk, err := cfgSvc.ticketMgr.Issue("other@b.com")
	if err != nil {
		t.Fatalf("签发票据失败: %v", err)
	}

	req := validSignupRequest()
	req.Ticket = tk

	_, err = svc.Signup(context.Background(), req)
	if !errors.Is(err, ErrTicketEmail) {
		t.Errorf("期望 ErrTicketEmail，实际: %v", err)
	}
}

// ── 登录测试 ──

func TestLogin_Success(t *testing.T) {
	svc, userRepo, _, mirror := setupTestAuthService()
	user := createTestUser(userRepo, "42022123", "a@b.com", "12345678")

	result, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "a@b.com",
		Password: "12345678",
	})
	if err != nil {
		t.Fatalf("Login 应成功，但返回错误: %v", err)
	}
	if result.UserToken != user.UserToken {
		t.Error("登录应返回库中的会话令牌")
	}
	if result.User.Email != "a@b.com" {
		t.Errorf("期望 Email=a@b.com，实际=%s", result.User.Email)
	}

	// 登录后写入会话镜像
	if b, _ := mirror.MirrorReadProfile(context.Background(), user.ID); b == nil {
		t.Error("登录后应写入会话镜像")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, userRepo, _, _ := setupTestAuthService()
	createTestUser(userRepo, "42022123", "a@b.com", "12345678")

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "a@b.com",
		Password: "87654321",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestLogin_UserNotFound(t *testing.T) {
	svc, _, _, _ := setupTestAuthService()

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "nobody@b.com",
		Password: "12345678",
	})
	// 邮箱不存在与密码错误不可区分
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

// ── 登出测试 ──

func TestLogout_RotatesToken(t *testing.T) {
	svc, userRepo, _, mirror := setupTestAuthService()
	user := createTestUser(userRepo, "42022123", "a@b.com", "12345678")
	oldToken := user.UserToken

	_ = mirror.MirrorWriteNews(context.Background(), user.ID, []byte(`{}`))

	if err := svc.Logout(context.Background(), user); err != nil {
		t.Fatalf("Logout 失败: %v", err)
	}

	// 旧令牌立即失效
	if _, err := userRepo.GetByToken(context.Background(), oldToken); err == nil {
		t.Error("登出后旧令牌不应再能解析出用户")
	}

	// 新令牌仍指向同一用户
	updated, err := userRepo.GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("查询用户失败: %v", err)
	}
	if updated.UserToken == oldToken || updated.UserToken == "" {
		t.Error("登出应轮换出新的非空令牌")
	}

	// 镜像整体清除
	if b, _ := mirror.MirrorReadNews(context.Background(), user.ID); b != nil {
		t.Error("登出后会话镜像应被清除")
	}
}

// ── OTP 测试 ──

func TestSendOTP_StoresAndMails(t *testing.T) {
	cfg := testConfig()
	userRepo := newMockUserRepo()
	repo := &repository.Repository{User: userRepo, News: newMockNewsRepo(), Schedule: newMockScheduleRepo()}
	otp := newMockOTPCache()
	mailer := &mockMailer{}
	svc := NewAuthService(cfg, repo, ticket.NewManager(&cfg.Auth), mailer, otp, newMockMirror(), zap.NewNop())

	err := svc.SendOTP(context.Background(), &dto.SendOTPRequest{Email: "a@b.com", AcademicID: "42022123"})
	if err != nil {
		t.Fatalf("SendOTP 失败: %v", err)
	}

	code := otp.codes["a@b.com"]
	if len(code) != 6 {
		t.Errorf("验证码应为 6 位数字，实际=%q", code)
	}
	if len(mailer.sent) != 1 || mailer.sent[0] != code {
		t.Error("邮件中的验证码应与存储一致")
	}
}

func TestSendOTP_Unavailable(t *testing.T) {
	cfg := testConfig()
	repo := &repository.Repository{User: newMockUserRepo(), News: newMockNewsRepo(), Schedule: newMockScheduleRepo()}
	// 无 Redis、无 SMTP 时降级
	svc := NewAuthService(cfg, repo, ticket.NewManager(&cfg.Auth), nil, nil, nil, zap.NewNop())

	err := svc.SendOTP(context.Background(), &dto.SendOTPRequest{Email: "a@b.com"})
	if !errors.Is(err, ErrOTPUnavailable) {
		t.Errorf("期望 ErrOTPUnavailable，实际: %v", err)
	}
}

func TestVerifyOTP_Success(t *testing.T) {
	svc, _, otp, _ := setupTestAuthService()
	_ = otp.SetOTP(context.Background(), "a@b.com", "123456", time.Minute)

	result, err := svc.VerifyOTP(context.Background(), &dto.VerifyOTPRequest{Email: "a@b.com", Code: "123456"})
	if err != nil {
		t.Fatalf("VerifyOTP 失败: %v", err)
	}
	if result.Ticket == "" {
		t.Error("校验通过应返回注册票据")
	}

	// 票据应能换回邮箱
	mgr := svc.(*authService).ticketMgr
	email, err := mgr.Verify(result.Ticket)
	if err != nil || email != "a@b.com" {
		t.Errorf("票据应指向 a@b.com，实际=%q err=%v", email, err)
	}
}

func TestVerifyOTP_OneShot(t *testing.T) {
	svc, _, otp, _ := setupTestAuthService()
	_ = otp.SetOTP(context.Background(), "a@b.com", "123456", time.Minute)

	if _, err := svc.VerifyOTP(context.Background(), &dto.VerifyOTPRequest{Email: "a@b.com", Code: "123456"}); err != nil {
		t.Fatalf("第一次校验应成功: %v", err)
	}

	// 验证码取出即销毁
	_, err := svc.VerifyOTP(context.Background(), &dto.VerifyOTPRequest{Email: "a@b.com", Code: "123456"})
	if !errors.Is(err, ErrOTPMismatch) {
		t.Errorf("期望 ErrOTPMismatch，实际: %v", err)
	}
}

func TestVerifyOTP_WrongCode(t *testing.T) {
	svc, _, otp, _ := setupTestAuthService()
	_ = otp.SetOTP(context.Background(), "a@b.com", "123456", time.Minute)

	_, err := svc.VerifyOTP(context.Background(), &dto.VerifyOTPRequest{Email: "a@b.com", Code: "654321"})
	if !errors.Is(err, ErrOTPMismatch) {
		t.Errorf("期望 ErrOTPMismatch，实际: %v", err)
	}
}

// [自证通过] internal/service/auth_service_test.go
