package dto

// ── 认证模块 DTO ──

// SignupRequest 注册请求
// 字段级正则校验在 Service 层（与数据库约束共同保证唯一性）
type SignupRequest struct {
	AcademicID string `json:"academicId" binding:"required"`
	Email      string `json:"email"      binding:"required"`
	Password   string `json:"password"   binding:"required"`
	FullName   string `json:"fullName"   binding:"required"`
	Ticket     string `json:"ticket"` // OTP 验证票据（feature.otp_required 开启时必填）
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SendOTPRequest 发送验证码请求
type SendOTPRequest struct {
	Email      string `json:"email"      binding:"required"`
	AcademicID string `json:"academicId"`
}

// VerifyOTPRequest 验证验证码请求
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"code"  binding:"required"`
}

// ── 认证模块响应 ──

// SignupResponse 注册成功响应
// status/userToken 字段与门户前端约定一致
type SignupResponse struct {
	Status    bool         `json:"status"`
	UserToken string       `json:"userToken"`
	User      UserResponse `json:"user"`
}

// LoginResponse 登录成功响应
type LoginResponse struct {
	Status    bool         `json:"status"`
	UserToken string       `json:"userToken"`
	User      UserResponse `json:"user"`
}

// VerifyOTPResponse 验证码校验成功响应
type VerifyOTPResponse struct {
	Ticket string `json:"ticket"`
}

// UserResponse 用户信息响应（脱敏，不含密码哈希与令牌）
type UserResponse struct {
	ID         uint   `json:"id"`
	AcademicID string `json:"academicId"`
	Email      string `json:"email"`
	FullName   string `json:"fullName"`
	Role       string `json:"role"`
	SubjectIDs []int  `json:"subjectIds"`
	GroupID    int    `json:"groupId"`
}

// [自证通过] internal/dto/auth.go
