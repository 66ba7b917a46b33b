package port

import "context"

// Notifier канал уведомлений помимо контроллера принтера
type Notifier interface {
	Notify(ctx context.Context, text string) error
}
