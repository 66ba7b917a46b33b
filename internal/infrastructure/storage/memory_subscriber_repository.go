package storage

import (
	"context"
	"sort"
	"sync"

	"print-guard/internal/domain/entity"
	"print-guard/internal/domain/port"
)

// MemorySubscriberRepository in-memory хранилище подписчиков
type MemorySubscriberRepository struct {
	mu          sync.RWMutex
	subscribers map[int64]*entity.Subscriber
}

// NewMemorySubscriberRepository создаёт новое in-memory хранилище
func NewMemorySubscriberRepository() *MemorySubscriberRepository {
	return &MemorySubscriberRepository{
		subscribers: make(map[int64]*entity.Subscriber),
	}
}

// Get возвращает подписчика по ID, создаёт нового если не найден
func (r *MemorySubscriberRepository) Get(ctx context.Context, userID, chatID int64) (*entity.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sub, exists := r.subscribers[userID]; exists {
		copied := *sub
		return &copied, nil
	}

	sub := entity.NewSubscriber(userID, chatID)
	r.subscribers[userID] = sub

	copied := *sub
	return &copied, nil
}

// Save сохраняет подписчика
func (r *MemorySubscriberRepository) Save(ctx context.Context, sub *entity.Subscriber) error {
	copied := *sub

	r.mu.Lock()
	r.subscribers[sub.ID] = &copied
	r.mu.Unlock()

	return nil
}

// Active возвращает подписчиков с активной подпиской, упорядоченных по ID
func (r *MemorySubscriberRepository) Active(ctx context.Context) ([]*entity.Subscriber, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*entity.Subscriber
	for _, sub := range r.subscribers {
		if sub.Active() {
			copied := *sub
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Проверка реализации интерфейса
var _ port.SubscriberRepository = (*MemorySubscriberRepository)(nil)
