package domain

import "time"

// DailyLinkStat представляет предрассчитанный дневной агрегат по источнику трафика.
// TrafficSource хранит идентификатор трекинг-ссылки в строковом виде.
type DailyLinkStat struct {
	ID            int64     `gorm:"primaryKey;column:id" json:"-"`
	Date          time.Time `gorm:"column:date;type:date;not null;uniqueIndex:idx_date_source_country" json:"date"`
	TrafficSource string    `gorm:"column:traffic_source;size:100;not null;uniqueIndex:idx_date_source_country" json:"traffic_source"`
	ModelID       *int64    `gorm:"column:model_id;index" json:"model_id,omitempty"`
	Country       *string   `gorm:"column:country;size:2;uniqueIndex:idx_date_source_country" json:"country,omitempty"`
	Views         int64     `gorm:"column:views;not null;default:0" json:"views"`
	Clicks        int64     `gorm:"column:clicks;not null;default:0" json:"clicks"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}

// TableName возвращает название таблицы для GORM
func (DailyLinkStat) TableName() string {
	return "daily_link_stats"
}
