package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	app "print-guard/internal/application"
	"print-guard/internal/domain/entity"
	"print-guard/internal/logger"
)

const moduleBot = "Telegram"

const (
	msgStart = `👋 Привет! Я слежу за печатью через камеры принтера.

📋 Команды:
/status — текущее состояние
/watch — включить мониторинг вручную
/stop — выключить мониторинг
/frame — последний кадр камеры (/frame 1 — вторая камера)
/history — последние события
/subscribe — получать уведомления о сбоях
/unsubscribe — отписаться
/help — справка`

	msgHelp = `ℹ️ Как это работает:

1️⃣ Мониторинг включается макросом начала печати или командой /watch
2️⃣ Кадры камер проверяются моделью с заданным интервалом
3️⃣ Если сбой держится несколько проверок подряд, печать ставится на паузу или отменяется

📋 Команды:
/status, /watch, /stop, /frame, /history, /subscribe, /unsubscribe`

	msgWatchStarted   = "👁 Мониторинг включён вручную."
	msgStopped        = "⏹ Мониторинг выключен."
	msgSubscribed     = "🔔 Вы подписаны на уведомления о сбоях."
	msgUnsubscribed   = "🔕 Уведомления отключены."
	msgNoHistory      = "📭 Событий пока нет."
	msgUnknownCommand = "❓ Неизвестная команда. Используйте /help для справки."
	msgUseCommands    = "Используйте команды. /help — справка."
	msgBadCamera      = "⚠️ Камера должна быть 0 или 1."
	msgFrameError     = "⚠️ Не удалось получить кадр."
	msgInternalError  = "⚠️ Внутренняя ошибка, попробуйте позже."

	historyLimit = 10
)

// Monitor операции ядра, доступные из бота
type Monitor interface {
	Start()
	Stop(ctx context.Context)
	Status() app.StatusSnapshot
	History() []entity.FailureEvent
	Frame(cam entity.CameraID, maskColor string) ([]byte, error)
}

// Subscribers управление подписками
type Subscribers interface {
	Subscribe(ctx context.Context, userID, chatID int64) (*entity.Subscriber, error)
	Unsubscribe(ctx context.Context, userID, chatID int64) (*entity.Subscriber, error)
}

// Sender отправка сообщений (реализуется *tgbotapi.BotAPI)
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot представляет Telegram-бота
type Bot struct {
	api         *tgbotapi.BotAPI
	sender      Sender
	monitor     Monitor
	subscribers Subscribers
}

// NewBotAPI авторизуется в Telegram
func NewBotAPI(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	logger.Info(moduleBot, "Authorized on account %s", api.Self.UserName)
	return api, nil
}

// NewBot создаёт нового бота
func NewBot(api *tgbotapi.BotAPI, monitor Monitor, subscribers Subscribers) *Bot {
	return &Bot{
		api:         api,
		sender:      api,
		monitor:     monitor,
		subscribers: subscribers,
	}
}

// Run запускает основной цикл обработки сообщений до отмены контекста
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil {
		return
	}
	if !msg.IsCommand() {
		b.sendMessage(msg.Chat.ID, msgUseCommands)
		return
	}
	b.handleCommand(ctx, msg)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	userID := chatID
	if msg.From != nil {
		userID = msg.From.ID
	}

	switch msg.Command() {
	case "start":
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "status":
		b.sendMessage(chatID, FormatStatus(b.monitor.Status()))

	case "watch":
		b.monitor.Start()
		b.sendMessage(chatID, msgWatchStarted)

	case "stop":
		b.monitor.Stop(ctx)
		b.sendMessage(chatID, msgStopped)

	case "history":
		b.sendMessage(chatID, FormatHistory(b.monitor.History(), historyLimit))

	case "frame":
		b.handleFrame(chatID, msg.CommandArguments())

	case "subscribe":
		if _, err := b.subscribers.Subscribe(ctx, userID, chatID); err != nil {
			logger.Error(moduleBot, "Subscribe failed: %v", err)
			b.sendMessage(chatID, msgInternalError)
			return
		}
		b.sendMessage(chatID, msgSubscribed)

	case "unsubscribe":
		if _, err := b.subscribers.Unsubscribe(ctx, userID, chatID); err != nil {
			logger.Error(moduleBot, "Unsubscribe failed: %v", err)
			b.sendMessage(chatID, msgInternalError)
			return
		}
		b.sendMessage(chatID, msgUnsubscribed)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

// handleFrame отправляет последний кадр камеры
func (b *Bot) handleFrame(chatID int64, args string) {
	cam := entity.PrimaryCamera
	if arg := strings.TrimSpace(args); arg != "" {
		id, err := strconv.Atoi(arg)
		if err != nil || !entity.CameraID(id).Valid() {
			b.sendMessage(chatID, msgBadCamera)
			return
		}
		cam = entity.CameraID(id)
	}

	data, err := b.monitor.Frame(cam, "")
	if err != nil {
		logger.Error(moduleBot, "Frame failed: %v", err)
		b.sendMessage(chatID, msgFrameError)
		return
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "frame.jpg", Bytes: data})
	photo.Caption = cam.Name()
	if _, err := b.sender.Send(photo); err != nil {
		logger.Error(moduleBot, "Error sending photo: %v", err)
	}
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.sender.Send(msg); err != nil {
		logger.Error(moduleBot, "Error sending message: %v", err)
	}
}

// FormatStatus текст ответа на /status
func FormatStatus(st app.StatusSnapshot) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "📊 Статус: %s\n", st.Status)
	switch {
	case !st.MonitoringActive:
		sb.WriteString("Мониторинг: выключен\n")
	case st.ManualOverride:
		sb.WriteString("Мониторинг: включён (вручную)\n")
	default:
		sb.WriteString("Мониторинг: включён (макрос печати)\n")
	}
	fmt.Fprintf(&sb, "Счётчик сбоев: %d/%d\n", st.Failures, st.MaxRetries)
	fmt.Fprintf(&sb, "Макс. уверенность: %d%%\n", entity.ConfidencePercent(st.Score))
	if st.PrintState != "" {
		fmt.Fprintf(&sb, "Печать: %s\n", st.PrintState)
	}
	if st.AIReady {
		sb.WriteString("Модель: загружена")
	} else {
		sb.WriteString("Модель: не загружена")
	}

	if st.FailureReason != nil {
		cam := "?"
		if st.FailureCam != nil {
			cam = st.FailureCam.Name()
		}
		fmt.Fprintf(&sb, "\n⚠️ Сбой: %s %d%% (%s)",
			entity.CategoryLabel(st.FailureReason.Category), entity.ConfidencePercent(st.FailureReason.Confidence), cam)
	}
	return sb.String()
}

// FormatHistory последние limit событий журнала, новые сверху
func FormatHistory(events []entity.FailureEvent, limit int) string {
	if len(events) == 0 {
		return msgNoHistory
	}

	var sb strings.Builder
	sb.WriteString("🕘 Последние события:")
	for i, n := len(events)-1, 0; i >= 0 && n < limit; i, n = i-1, n+1 {
		ev := events[i]
		fmt.Fprintf(&sb, "\n%s · %s · %s %d%% (%s)", ev.Time, ev.Camera.Label(), ev.Category, ev.Confidence, ev.Severity)
	}
	return sb.String()
}
