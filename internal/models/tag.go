package models

import "time"

type Tag struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Color     string    `gorm:"type:varchar(20)" json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Tasks []Task `gorm:"many2many:task_tags;" json:"-"`
}

// TaskTag is the join row between a task and a tag. The composite primary
// key keeps a tag from being attached to the same task twice.
type TaskTag struct {
	TaskID uint64 `gorm:"primaryKey;autoIncrement:false"`
	TagID  uint64 `gorm:"primaryKey;autoIncrement:false;index"`
}

func (TaskTag) TableName() string {
	return "task_tags"
}
