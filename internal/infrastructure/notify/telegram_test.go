package notify

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	fail map[int64]bool
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg := c.(tgbotapi.MessageConfig)
	f.sent = append(f.sent, msg)
	if f.fail[msg.ChatID] {
		return tgbotapi.Message{}, errors.New("blocked")
	}
	return tgbotapi.Message{}, nil
}

type staticChats []int64

func (s staticChats) ActiveChats(ctx context.Context) ([]int64, error) {
	return s, nil
}

func TestTelegramNotifier_SendsToDefaultAndSubscribers(t *testing.T) {
	sender := &fakeSender{}
	n := NewTelegramNotifier(sender, staticChats{20, 30}, 10)

	require.NoError(t, n.Notify(context.Background(), "⚠️ AI Failure Detected – Action: Pause Print"))
	require.Len(t, sender.sent, 3)
	require.Equal(t, int64(10), sender.sent[0].ChatID)
	require.Equal(t, "⚠️ AI Failure Detected – Action: Pause Print", sender.sent[0].Text)
}

func TestTelegramNotifier_DefaultChatNotDuplicated(t *testing.T) {
	sender := &fakeSender{}
	n := NewTelegramNotifier(sender, staticChats{10, 30}, 10)

	require.NoError(t, n.Notify(context.Background(), "hi"))
	require.Len(t, sender.sent, 2)
}

func TestTelegramNotifier_ContinuesAfterError(t *testing.T) {
	sender := &fakeSender{fail: map[int64]bool{20: true}}
	n := NewTelegramNotifier(sender, staticChats{20, 30}, 0)

	err := n.Notify(context.Background(), "hi")
	require.Error(t, err)
	require.Len(t, sender.sent, 2)
}
