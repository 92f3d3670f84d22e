package database

import (
	"LinkTrace-Backend/internal/domain"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AutoMigrate выполняет автоматические миграции для всех доменных моделей
func AutoMigrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("starting database auto-migration")

	// Порядок миграций важен из-за внешних ключей
	models := []interface{}{
		&domain.Organization{},   // Сначала арендаторы
		&domain.Model{},          // Модели (зависят от организаций)
		&domain.TrackingSource{}, // Справочник источников
		&domain.TrackingSubtag{}, // Сабтеги (зависят от источников)
		&domain.TrackingLink{},   // Ссылки (зависят от моделей и источников)
		&domain.AnalyticsEvent{}, // Сырые события
		&domain.DailyLinkStat{},  // Предрассчитанные агрегаты
		&domain.RefreshStatus{},  // Статусы обновления агрегатов
	}

	for i, model := range models {
		modelName := fmt.Sprintf("%T", model)
		log.Debug("migrating model",
			zap.String("model", modelName),
			zap.Int("step", i+1),
			zap.Int("total", len(models)))

		if err := db.AutoMigrate(model); err != nil {
			log.Error("failed to migrate model",
				zap.String("model", modelName),
				zap.Error(err))
			return fmt.Errorf("failed to migrate model %s: %w", modelName, err)
		}
	}

	log.Info("database auto-migration completed successfully", zap.Int("migrated_models", len(models)))
	return nil
}

// SeedData заполняет базу данных платформенными источниками трафика.
// Платформенные источники (is_custom = false) не подлежат удалению.
func SeedData(db *gorm.DB, log *zap.Logger) error {
	log.Info("starting database seeding")

	// Проверяем, есть ли уже данные
	var count int64
	db.Model(&domain.TrackingSource{}).Count(&count)
	if count > 0 {
		log.Info("tracking sources already exist, skipping seeding", zap.Int64("existing_count", count))
		return nil
	}

	platformSources := []domain.TrackingSource{
		{Name: "Instagram", Slug: "instagram"},
		{Name: "TikTok", Slug: "tiktok"},
		{Name: "X", Slug: "x"},
		{Name: "YouTube", Slug: "youtube"},
		{Name: "Telegram", Slug: "telegram"},
		{Name: "Reddit", Slug: "reddit"},
		{Name: "Threads", Slug: "threads"},
	}

	if err := db.Create(&platformSources).Error; err != nil {
		log.Error("failed to seed tracking sources", zap.Error(err))
		return fmt.Errorf("failed to seed tracking sources: %w", err)
	}

	log.Info("database seeding completed successfully", zap.Int("sources_created", len(platformSources)))
	return nil
}
