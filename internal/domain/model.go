package domain

import "time"

// Model представляет отслеживаемый профиль, к которому привязаны трекинг-ссылки.
type Model struct {
	ID             int64     `gorm:"primaryKey;column:id" json:"id"`
	Slug           string    `gorm:"column:slug;size:100;uniqueIndex;not null" json:"slug"`
	Name           string    `gorm:"column:name;size:200;not null" json:"name"`
	OrganizationID *int64    `gorm:"column:organization_id;index" json:"organization_id,omitempty"`
	IsActive       bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	Organization  *Organization  `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	TrackingLinks []TrackingLink `gorm:"foreignKey:ModelID" json:"tracking_links,omitempty"`
}

// TableName возвращает название таблицы для GORM
func (Model) TableName() string {
	return "models"
}
