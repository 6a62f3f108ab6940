package model

const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

var Priorities = []string{PriorityHigh, PriorityMedium, PriorityLow}

// Task is a single entry on a user's task list.
// All timestamps are unix millisecond timestamps
type Task struct {
	ID        string `gorm:"primaryKey;size:16" json:"id"`
	UserID    string `gorm:"index;not null" json:"-"`
	Title     string `gorm:"size:200;not null" json:"title"`
	Priority  string `gorm:"default:Medium" json:"priority"`
	DueDate   string `json:"dueDate,omitempty"`
	Completed bool   `gorm:"default:false" json:"completed"`
	CreatedAt int64  `gorm:"autoCreateTime:milli" json:"createdAt"`
	UpdatedAt int64  `gorm:"autoUpdateTime:milli" json:"updatedAt"`
}
