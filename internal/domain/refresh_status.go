package domain

import "time"

// Состояния обновления агрегатов
const (
	RefreshStatusNever      = "never"
	RefreshStatusInProgress = "in_progress"
	RefreshStatusSuccess    = "success"
	RefreshStatusError      = "error"
)

// RefreshStatus представляет состояние последнего обновления агрегатов по ключу.
// Запись создается лениво при первом запуске и мутируется только оркестратором.
type RefreshStatus struct {
	ID           int64     `gorm:"primaryKey;column:id" json:"-"`
	Key          string    `gorm:"column:key;size:100;uniqueIndex;not null" json:"key"`
	Status       string    `gorm:"column:status;size:20;not null" json:"status"`
	Timestamp    time.Time `gorm:"column:timestamp;not null" json:"timestamp"`
	DurationMs   *int64    `gorm:"column:duration_ms" json:"duration_ms,omitempty"`
	ErrorMessage *string   `gorm:"column:error_message;type:text" json:"error_message,omitempty"`
}

// TableName возвращает название таблицы для GORM
func (RefreshStatus) TableName() string {
	return "refresh_statuses"
}

// IsRunning возвращает true, если обновление выполняется прямо сейчас.
func (r *RefreshStatus) IsRunning() bool {
	return r.Status == RefreshStatusInProgress
}
