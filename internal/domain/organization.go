package domain

import "time"

// Organization представляет организацию-арендатора с собственным API ключом.
type Organization struct {
	ID        int64     `gorm:"primaryKey;column:id" json:"id"`
	Name      string    `gorm:"column:name;size:200;not null" json:"name"`
	APIKey    string    `gorm:"column:api_key;size:64;uniqueIndex;not null" json:"-"` // скрываем ключ в JSON
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	Models []Model `gorm:"foreignKey:OrganizationID" json:"models,omitempty"`
}

// TableName возвращает название таблицы для GORM
func (Organization) TableName() string {
	return "organizations"
}
