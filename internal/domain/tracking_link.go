package domain

import "time"

// TrackingLink представляет трекинг-ссылку вида c<N>, привязанную к модели и источнику.
type TrackingLink struct {
	ID             int64     `gorm:"primaryKey;column:id" json:"id"`
	Slug           string    `gorm:"column:slug;size:50;not null;uniqueIndex:idx_model_slug" json:"slug"`
	ModelID        int64     `gorm:"column:model_id;not null;uniqueIndex:idx_model_slug;index" json:"model_id"`
	SourceID       int64     `gorm:"column:source_id;not null;index" json:"source_id"`
	SubtagID       *int64    `gorm:"column:subtag_id;index" json:"subtag_id,omitempty"`
	DestinationURL *string   `gorm:"column:destination_url;size:2000" json:"destination_url,omitempty"`
	IsActive       bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	IsArchived     bool      `gorm:"column:is_archived;not null;default:false" json:"is_archived"`
	ClickCount     int64     `gorm:"column:click_count;not null;default:0" json:"click_count"` // монотонный счетчик, обновляется только на стороне БД
	OrganizationID *int64    `gorm:"column:organization_id;index" json:"organization_id,omitempty"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	Model        *Model          `gorm:"foreignKey:ModelID" json:"model,omitempty"`
	Source       *TrackingSource `gorm:"foreignKey:SourceID" json:"source,omitempty"`
	Subtag       *TrackingSubtag `gorm:"foreignKey:SubtagID" json:"subtag,omitempty"`
	Organization *Organization   `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
}

// TableName возвращает название таблицы для GORM
func (TrackingLink) TableName() string {
	return "tracking_links"
}
