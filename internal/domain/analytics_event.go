package domain

import (
	"net"
	"time"
)

// Типы аналитических событий
const (
	EventTypePageView   = "page_view"
	EventTypeLinkClick  = "link_click"
	EventTypeStoryView  = "story_view"
	EventTypeBridgeView = "bridge_view"
)

// AnalyticsEvent представляет сырое аналитическое событие. Запись неизменяема:
// после создания никогда не обновляется.
type AnalyticsEvent struct {
	ID             int64     `gorm:"primaryKey;column:id" json:"id"`
	EventType      string    `gorm:"column:event_type;size:50;not null;index" json:"event_type"`
	ModelID        *int64    `gorm:"column:model_id;index" json:"model_id,omitempty"`
	TrackingLinkID *int64    `gorm:"column:tracking_link_id;index" json:"tracking_link_id,omitempty"`
	SourceID       *int64    `gorm:"column:source_id;index" json:"source_id,omitempty"`
	Country        *string   `gorm:"column:country;size:2" json:"country,omitempty"` // ISO код страны
	City           *string   `gorm:"column:city;size:100" json:"city,omitempty"`
	Referrer       *string   `gorm:"column:referrer;size:500" json:"referrer,omitempty"`
	UserAgent      *string   `gorm:"column:user_agent;type:text" json:"user_agent,omitempty"`
	DeviceType     *string   `gorm:"column:device_type;size:10" json:"device_type,omitempty"` // 'desktop', 'mobile', 'tablet', 'bot'
	IPAddress      *net.IP   `gorm:"column:ip_address;type:inet" json:"ip_address,omitempty"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}

// TableName возвращает название таблицы для GORM
func (AnalyticsEvent) TableName() string {
	return "analytics_events"
}

// IsClick возвращает true, если событие считается кликом при агрегации.
func (e *AnalyticsEvent) IsClick() bool {
	return e.EventType == EventTypeLinkClick
}
