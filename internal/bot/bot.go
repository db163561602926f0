package bot

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/example/sleepbot/internal/scheduler"
	"github.com/example/sleepbot/internal/tracker"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// createReplyKeyboard creates a resized reply keyboard; each inner slice is a row
func createReplyKeyboard(rows ...[]string) tgbotapi.ReplyKeyboardMarkup {
	var keyboard [][]tgbotapi.KeyboardButton
	for _, row := range rows {
		var keyboardRow []tgbotapi.KeyboardButton
		for _, text := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewKeyboardButton(text))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	markup := tgbotapi.NewReplyKeyboard(keyboard...)
	markup.ResizeKeyboard = true
	return markup
}

// sender is the part of the Telegram API the handlers talk to
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot represents the Telegram bot application
type Bot struct {
	api     *tgbotapi.BotAPI
	sender  sender
	tracker *tracker.Tracker
	config  Config
	log     zerolog.Logger
	pick    func(options []string) string

	handlers sync.WaitGroup

	mu       sync.Mutex
	loopDone chan struct{}
}

// New creates a bot authorised with token
func New(token string, tr *tracker.Tracker, cfg Config, log zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %w", err)
	}
	b := newBot(api, tr, cfg, log)
	b.api = api
	b.log.Info().Str("account", api.Self.UserName).Msg("authorized")
	return b, nil
}

func newBot(s sender, tr *tracker.Tracker, cfg Config, log zerolog.Logger) *Bot {
	return &Bot{
		sender:  s,
		tracker: tr,
		config:  cfg,
		log:     log.With().Str("component", "bot").Logger(),
		pick: func(options []string) string {
			return options[rand.Intn(len(options))]
		},
	}
}

// Start receives updates until ctx is cancelled. Each update is handled on
// its own goroutine; updates for the same chat are serialised by the tracker.
func (b *Bot) Start(ctx context.Context) error {
	if b.api == nil {
		return errors.New("bot is not connected to Telegram")
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = b.config.UpdateTimeout
	updates := b.api.GetUpdatesChan(updateConfig)

	served := make(chan struct{})
	defer close(served)
	go func() {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
		case <-served:
		}
	}()

	return b.serve(ctx, updates)
}

// serve dispatches updates until ctx is cancelled or updates is closed.
// Handlers are not cancelled with ctx; each one is bounded by HandlerTimeout.
func (b *Bot) serve(ctx context.Context, updates <-chan tgbotapi.Update) error {
	done := make(chan struct{})
	b.mu.Lock()
	b.loopDone = done
	b.mu.Unlock()
	defer close(done)

	handlerCtx := context.WithoutCancel(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.handlers.Add(1)
			go func() {
				defer b.handlers.Done()
				b.handleUpdate(handlerCtx, update)
			}()
		}
	}
}

// Stop waits for the update loop to exit and then for in-flight handlers to
// finish, or for ctx to expire. The caller cancels the context given to Start.
func (b *Bot) Stop(ctx context.Context) error {
	b.mu.Lock()
	loopDone := b.loopDone
	b.mu.Unlock()

	if loopDone != nil {
		select {
		case <-loopDone:
		case <-ctx.Done():
			return fmt.Errorf("waiting for update loop: %w", ctx.Err())
		}
	}

	done := make(chan struct{})
	go func() {
		b.handlers.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.log.Info().Msg("bot stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for handlers: %w", ctx.Err())
	}
}

// SendReminder implements the scheduler.Notifier interface
func (b *Bot) SendReminder(chatID int64, kind scheduler.ReminderKind) error {
	var text string
	switch kind {
	case scheduler.WakeReminder:
		text = textWakeReminder
	case scheduler.BedtimeReminder:
		text = textBedtimeReminder
	default:
		return fmt.Errorf("unknown reminder kind %d", kind)
	}

	if _, err := b.sender.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("sending %s reminder to chat %d: %w", kind, chatID, err)
	}
	b.log.Info().Int64("chat_id", chatID).Stringer("kind", kind).Msg("reminder delivered")
	return nil
}

// handleUpdate handles incoming updates from Telegram
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	ctx, cancel := context.WithTimeout(ctx, b.config.HandlerTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			b.log.Error().Interface("panic", r).Int("update_id", update.UpdateID).Msg("handler panicked")
		}
	}()

	switch {
	case update.Message != nil && update.Message.Chat != nil:
		if update.Message.IsCommand() {
			b.HandleCommand(ctx, update.Message)
		} else {
			b.handleText(ctx, update.Message)
		}
	case update.CallbackQuery != nil:
		b.handleCallbackQuery(ctx, update.CallbackQuery)
	}
}

// send delivers c and logs a failed delivery
func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.sender.Send(c); err != nil {
		b.log.Warn().Err(err).Msg("failed to send message")
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) replyWithMarkup(chatID int64, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	b.send(msg)
}

// replyTo quotes the user's message in the answer
func (b *Bot) replyTo(message *tgbotapi.Message, text string) {
	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ReplyToMessageID = message.MessageID
	b.send(msg)
}

// replyError turns a tracker error into a reply. guidance maps user error
// kinds to the text that tells the user what to do instead.
func (b *Bot) replyError(chatID int64, err error, guidance map[error]string) {
	for kind, text := range guidance {
		if errors.Is(err, kind) {
			b.reply(chatID, text)
			return
		}
	}
	if tracker.IsUserError(err) {
		b.log.Debug().Err(err).Int64("chat_id", chatID).Msg("user error without guidance")
	} else {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("request failed")
	}
	b.reply(chatID, textStorageFailure)
}

func mainMenu() tgbotapi.ReplyKeyboardMarkup {
	return createReplyKeyboard([]string{btnAbout, btnStats})
}
