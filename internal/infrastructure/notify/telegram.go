package notify

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"print-guard/internal/domain/port"
)

// Sender отправляет сообщения Telegram (реализуется *tgbotapi.BotAPI)
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// ChatSource список чатов активных подписчиков
type ChatSource interface {
	ActiveChats(ctx context.Context) ([]int64, error)
}

// TelegramNotifier рассылает уведомления о сбоях подписчикам и в чат по умолчанию
type TelegramNotifier struct {
	sender      Sender
	chats       ChatSource
	defaultChat int64
}

// NewTelegramNotifier создаёт уведомитель. defaultChat == 0 означает «только подписчики».
func NewTelegramNotifier(sender Sender, chats ChatSource, defaultChat int64) *TelegramNotifier {
	return &TelegramNotifier{
		sender:      sender,
		chats:       chats,
		defaultChat: defaultChat,
	}
}

// Notify отправляет текст во все чаты. Возвращает первую ошибку, но пытается отправить во все.
func (n *TelegramNotifier) Notify(ctx context.Context, text string) error {
	targets, err := n.targets(ctx)
	if err != nil {
		return err
	}

	var firstErr error
	for _, chatID := range targets {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := n.sender.Send(tgbotapi.NewMessage(chatID, text)); err != nil && firstErr == nil {
			firstErr = errors.Wrapf(err, "send to chat %d", chatID)
		}
	}
	return firstErr
}

func (n *TelegramNotifier) targets(ctx context.Context) ([]int64, error) {
	var chats []int64
	if n.chats != nil {
		active, err := n.chats.ActiveChats(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "list subscribers")
		}
		chats = active
	}

	if n.defaultChat != 0 {
		for _, id := range chats {
			if id == n.defaultChat {
				return chats, nil
			}
		}
		chats = append([]int64{n.defaultChat}, chats...)
	}
	return chats, nil
}

var _ port.Notifier = (*TelegramNotifier)(nil)
