package port

import (
	"context"

	"print-guard/internal/domain/entity"
)

// SubscriberRepository интерфейс хранилища подписчиков
type SubscriberRepository interface {
	// Get возвращает подписчика по ID, создаёт нового если не найден
	Get(ctx context.Context, userID, chatID int64) (*entity.Subscriber, error)

	// Save сохраняет подписчика
	Save(ctx context.Context, subscriber *entity.Subscriber) error

	// Active возвращает всех подписчиков с активной подпиской
	Active(ctx context.Context) ([]*entity.Subscriber, error)
}
