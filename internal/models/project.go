package models

import "time"

type Project struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_projects_owner_name,priority:2" json:"name"`
	Description string    `gorm:"type:text;not null" json:"description"`
	OwnerID     uint64    `gorm:"not null;uniqueIndex:idx_projects_owner_name,priority:1" json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Owner User `gorm:"foreignKey:OwnerID" json:"-"`
}

// OwnedBy returns the id of the user owning the project.
func (p *Project) OwnedBy() uint64 {
	if p == nil {
		return 0
	}
	return p.OwnerID
}
