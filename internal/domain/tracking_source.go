package domain

import "time"

// TrackingSource представляет источник трафика (платформенный или кастомный).
type TrackingSource struct {
	ID        int64     `gorm:"primaryKey;column:id" json:"id"`
	Name      string    `gorm:"column:name;size:100;not null" json:"name"`
	Slug      string    `gorm:"column:slug;size:100;uniqueIndex;not null" json:"slug"`
	IsCustom  bool      `gorm:"column:is_custom;not null;default:false" json:"is_custom"` // платформенные источники удалять нельзя
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	Subtags []TrackingSubtag `gorm:"foreignKey:SourceID" json:"subtags,omitempty"`
}

// TableName возвращает название таблицы для GORM
func (TrackingSource) TableName() string {
	return "tracking_sources"
}

// TrackingSubtag представляет сабтег, вложенный ровно в один источник.
type TrackingSubtag struct {
	ID        int64     `gorm:"primaryKey;column:id" json:"id"`
	SourceID  int64     `gorm:"column:source_id;not null;index" json:"source_id"`
	Name      string    `gorm:"column:name;size:100;not null" json:"name"`
	Slug      string    `gorm:"column:slug;size:100;not null" json:"slug"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	// Relationships
	Source *TrackingSource `gorm:"foreignKey:SourceID" json:"source,omitempty"`
}

// TableName возвращает название таблицы для GORM
func (TrackingSubtag) TableName() string {
	return "tracking_subtags"
}
