package models

import "time"

type Task struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	Title       string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_tasks_project_title,priority:2" json:"title"`
	Description *string   `gorm:"type:text" json:"description"`
	DueDate     time.Time `gorm:"not null;index" json:"due_date"`
	Priority    int       `gorm:"not null;check:chk_tasks_priority,priority >= 1 AND priority <= 3" json:"priority"`
	Completed   bool      `gorm:"not null;default:false" json:"completed"`
	ProjectID   uint64    `gorm:"not null;uniqueIndex:idx_tasks_project_title,priority:1" json:"project_id"`
	OwnerID     uint64    `gorm:"not null;index" json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	Owner   User    `gorm:"foreignKey:OwnerID" json:"-"`
}

// OwnedBy returns the id of the user owning the task.
func (t *Task) OwnedBy() uint64 {
	if t == nil {
		return 0
	}
	return t.OwnerID
}
