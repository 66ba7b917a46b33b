package telegram

import (
	"context"
	"fmt"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"

	app "print-guard/internal/application"
	"print-guard/internal/domain/entity"
	"print-guard/internal/infrastructure/storage"
)

type recordingSender struct {
	sent []tgbotapi.Chattable
}

func (r *recordingSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	r.sent = append(r.sent, c)
	return tgbotapi.Message{}, nil
}

func (r *recordingSender) lastText(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, r.sent)
	msg, ok := r.sent[len(r.sent)-1].(tgbotapi.MessageConfig)
	require.True(t, ok)
	return msg.Text
}

func command(chatID, userID int64, text string) *tgbotapi.Message {
	name := text
	if i := strings.IndexByte(text, ' '); i >= 0 {
		name = text[:i]
	}
	return &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: chatID},
		From:     &tgbotapi.User{ID: userID},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(name)}},
	}
}

func newTestBot() (*Bot, *recordingSender, *app.MonitorService, *app.SubscriberService) {
	sender := &recordingSender{}
	monitor := app.NewMonitorService(app.MonitorDeps{})
	subs := app.NewSubscriberService(storage.NewMemorySubscriberRepository())
	return &Bot{sender: sender, monitor: monitor, subscribers: subs}, sender, monitor, subs
}

func TestBot_WatchAndStop(t *testing.T) {
	bot, sender, monitor, _ := newTestBot()
	ctx := context.Background()

	bot.handleMessage(ctx, command(10, 1, "/watch"))
	require.Equal(t, msgWatchStarted, sender.lastText(t))
	require.True(t, monitor.Status().MonitoringActive)

	bot.handleMessage(ctx, command(10, 1, "/stop"))
	require.Equal(t, msgStopped, sender.lastText(t))
	require.False(t, monitor.Status().MonitoringActive)
}

func TestBot_Subscribe(t *testing.T) {
	bot, sender, _, subs := newTestBot()
	ctx := context.Background()

	bot.handleMessage(ctx, command(10, 1, "/subscribe"))
	require.Equal(t, msgSubscribed, sender.lastText(t))

	chats, err := subs.ActiveChats(ctx)
	require.NoError(t, err)
	require.Equal(t, []int64{10}, chats)

	bot.handleMessage(ctx, command(10, 1, "/unsubscribe"))
	chats, err = subs.ActiveChats(ctx)
	require.NoError(t, err)
	require.Empty(t, chats)
}

func TestBot_Frame(t *testing.T) {
	bot, sender, _, _ := newTestBot()
	ctx := context.Background()

	bot.handleMessage(ctx, command(10, 1, "/frame 1"))
	photo, ok := sender.sent[len(sender.sent)-1].(tgbotapi.PhotoConfig)
	require.True(t, ok)
	require.Equal(t, "Secondary camera", photo.Caption)

	bot.handleMessage(ctx, command(10, 1, "/frame 5"))
	require.Equal(t, msgBadCamera, sender.lastText(t))
}

func TestBot_UnknownAndPlainText(t *testing.T) {
	bot, sender, _, _ := newTestBot()
	ctx := context.Background()

	bot.handleMessage(ctx, command(10, 1, "/dance"))
	require.Equal(t, msgUnknownCommand, sender.lastText(t))

	bot.handleMessage(ctx, &tgbotapi.Message{Text: "hello", Chat: &tgbotapi.Chat{ID: 10}})
	require.Equal(t, msgUseCommands, sender.lastText(t))
}

func TestFormatStatus(t *testing.T) {
	cam := entity.SecondaryCamera
	text := FormatStatus(app.StatusSnapshot{
		Status:           entity.StatusFailureDetected,
		Failures:         3,
		MaxRetries:       3,
		Score:            0.91,
		MonitoringActive: true,
		FailureCam:       &cam,
		FailureReason:    &entity.FailureReason{Category: "spaghetti", Confidence: 0.91},
	})

	require.Contains(t, text, "Статус: failure_detected")
	require.Contains(t, text, "Счётчик сбоев: 3/3")
	require.Contains(t, text, "Мониторинг: включён (макрос печати)")
	require.Contains(t, text, "Сбой: Spaghetti 91% (Secondary camera)")
}

func TestFormatHistory_NewestFirstAndLimited(t *testing.T) {
	var events []entity.FailureEvent
	for i := 0; i < 12; i++ {
		events = append(events, entity.FailureEvent{
			Time:       fmt.Sprintf("12:00:%02d", i),
			Category:   "blob",
			Confidence: 40 + i,
			Severity:   entity.SeverityDetect,
		})
	}

	text := FormatHistory(events, 10)
	require.Contains(t, text, "blob 51%")
	require.NotContains(t, text, "blob 41%")
	require.Equal(t, msgNoHistory, FormatHistory(nil, 10))
}
