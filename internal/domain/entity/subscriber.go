package entity

// SubscriberState состояние подписчика уведомлений
type SubscriberState string

const (
	SubscriberInactive SubscriberState = "inactive" // Не получает уведомления
	SubscriberActive   SubscriberState = "active"   // Получает уведомления о сбоях
)

// Subscriber представляет чат Telegram, получающий уведомления
type Subscriber struct {
	ID     int64           // Telegram User ID
	ChatID int64           // Telegram Chat ID
	State  SubscriberState // Текущее состояние подписки
}

// NewSubscriber создаёт подписчика с неактивной подпиской
func NewSubscriber(userID, chatID int64) *Subscriber {
	return &Subscriber{
		ID:     userID,
		ChatID: chatID,
		State:  SubscriberInactive,
	}
}

// SetState обновляет состояние подписки
func (s *Subscriber) SetState(state SubscriberState) {
	s.State = state
}

// Active сообщает, нужно ли отправлять уведомления
func (s *Subscriber) Active() bool {
	return s.State == SubscriberActive
}
