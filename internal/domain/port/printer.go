package port

import (
	"context"

	"print-guard/internal/domain/entity"
)

// PrinterController интерфейс внешнего контроллера принтера
type PrinterController interface {
	// State возвращает текущее состояние задания печати
	State(ctx context.Context) (entity.PrintState, error)

	// ConsoleMessage выводит сообщение в консоль принтера
	ConsoleMessage(ctx context.Context, text string) error

	// Notify отправляет push-уведомление через контроллер
	Notify(ctx context.Context, text string) error

	// Pause ставит печать на паузу
	Pause(ctx context.Context) error

	// Cancel отменяет печать
	Cancel(ctx context.Context) error
}
