package bot

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/example/sleepbot/internal/excel"
	"github.com/example/sleepbot/internal/tracker"
	"github.com/example/sleepbot/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// HandleCommand handles bot commands
func (b *Bot) HandleCommand(ctx context.Context, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.handleStart(ctx, message)
	case "help":
		b.handleHelp(message.Chat.ID)
	case "sleep":
		b.handleSleep(ctx, message)
	case "wake":
		b.handleWake(ctx, message)
	case "quality":
		b.handleQuality(ctx, message)
	case "notes":
		b.handleNotes(ctx, message)
	case "stats":
		b.handleStatsDates(ctx, message.Chat.ID, 0)
	case "export":
		b.handleExport(ctx, message)
	default:
		b.replyWithMarkup(message.Chat.ID, textUnknownCommand, mainMenu())
	}
}

// handleText handles reply keyboard buttons and free text
func (b *Bot) handleText(ctx context.Context, message *tgbotapi.Message) {
	switch strings.TrimSpace(message.Text) {
	case btnAbout:
		b.handleHelp(message.Chat.ID)
	case btnStats:
		b.handleStatsDates(ctx, message.Chat.ID, 0)
	case btnConfirm:
		b.handleConfirmNewCycle(ctx, message.Chat.ID)
	case btnKeep:
		b.handleKeepPrevious(ctx, message.Chat.ID)
	default:
		b.replyTo(message, textUnrecognised)
	}
}

// handleCallbackQuery handles callback queries from buttons
func (b *Bot) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if _, err := b.sender.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.log.Warn().Err(err).Msg("failed to answer callback")
	}
	if callback.Message == nil || callback.Message.Chat == nil {
		return
	}
	chatID := callback.Message.Chat.ID

	switch {
	case strings.HasPrefix(callback.Data, callbackStatsPagePrefix):
		page, err := strconv.Atoi(strings.TrimPrefix(callback.Data, callbackStatsPagePrefix))
		if err != nil {
			b.log.Debug().Str("data", callback.Data).Msg("bad stats page")
			return
		}
		b.handleStatsDates(ctx, chatID, page)
	case strings.HasPrefix(callback.Data, callbackStatPrefix):
		b.handleStatsDetail(ctx, chatID, strings.TrimPrefix(callback.Data, callbackStatPrefix))
	default:
		b.log.Debug().Str("data", callback.Data).Msg("unknown callback")
	}
}

func (b *Bot) handleStart(ctx context.Context, message *tgbotapi.Message) {
	u, err := b.tracker.Start(ctx, message.Chat.ID, displayName(message))
	if err != nil {
		b.replyError(message.Chat.ID, err, nil)
		return
	}
	name := u.DisplayName
	if name == "" {
		name = displayName(message)
	}
	b.replyWithMarkup(message.Chat.ID, fmt.Sprintf(textGreeting, name), mainMenu())
}

func (b *Bot) handleHelp(chatID int64) {
	b.replyWithMarkup(chatID, textHelp, mainMenu())
}

func (b *Bot) handleSleep(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	outcome, cycle, err := b.tracker.Sleep(ctx, chatID)
	if err != nil {
		b.replyError(chatID, err, nil)
		return
	}

	switch outcome {
	case tracker.AlreadySleeping:
		b.reply(chatID, textAlreadySleeping)
	case tracker.ConfirmOverwrite:
		b.askOverwrite(chatID)
	case tracker.SleepStarted:
		b.sleepStarted(chatID, cycle)
	}
}

func (b *Bot) askOverwrite(chatID int64) {
	b.replyWithMarkup(chatID, textConfirmOverwrite, createReplyKeyboard([]string{btnConfirm, btnKeep}))
}

// handleConfirmNewCycle starts the cycle on the date of the confirmation.
// A confirmation arriving after midnight onto a date that is taken asks again.
func (b *Bot) handleConfirmNewCycle(ctx context.Context, chatID int64) {
	outcome, cycle, err := b.tracker.ConfirmNewCycle(ctx, chatID)
	if err != nil {
		b.replyError(chatID, err, map[error]string{tracker.ErrInvalidTransition: textNothingPending})
		return
	}
	if outcome == tracker.ConfirmOverwrite {
		b.askOverwrite(chatID)
		return
	}
	b.sleepStarted(chatID, cycle)
}

func (b *Bot) handleKeepPrevious(ctx context.Context, chatID int64) {
	date, err := b.tracker.KeepPrevious(ctx, chatID)
	if err != nil {
		b.replyError(chatID, err, map[error]string{tracker.ErrInvalidTransition: textNothingPending})
		return
	}
	b.replyWithMarkup(chatID, fmt.Sprintf(textKeptPrevious, date), mainMenu())
}

func (b *Bot) sleepStarted(chatID int64, cycle *models.Cycle) {
	b.reply(chatID, fmt.Sprintf(textSleepRecorded, cycle.SleepTime))
	b.replyWithMarkup(chatID, fmt.Sprintf(textRemindWake, b.pick(nightPhrases)), mainMenu())
}

func (b *Bot) handleWake(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	cycle, err := b.tracker.Wake(ctx, chatID)
	if err != nil {
		b.replyError(chatID, err, map[error]string{tracker.ErrInvalidTransition: textNotSleeping})
		return
	}

	b.reply(chatID, fmt.Sprintf(textWakeRecorded, cycle.WakeTime))
	b.replyWithMarkup(chatID,
		fmt.Sprintf(textWakeSummary, b.pick(morningPhrases), formatHours(*cycle.DurationHours)),
		mainMenu())
}

func (b *Bot) handleQuality(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	cycle, err := b.tracker.Quality(ctx, chatID, message.CommandArguments())
	if err != nil {
		b.replyError(chatID, err, map[error]string{
			tracker.ErrInvalidTransition: textQualityNotReady,
			tracker.ErrInvalidInput:      textQualityUsage,
		})
		return
	}

	switch {
	case cycle.Quality <= 5:
		b.replyTo(message, textQualityLow)
	case cycle.Quality == tracker.MaxQuality:
		b.replyTo(message, textQualityPerfect)
	default:
		b.replyTo(message, textQualityGood)
	}
	b.reply(chatID, textNotesHint)
}

func (b *Bot) handleNotes(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	_, err := b.tracker.Notes(ctx, chatID, message.CommandArguments())
	if err != nil {
		b.replyError(chatID, err, map[error]string{
			tracker.ErrInvalidTransition: textNotesNotReady,
			tracker.ErrInvalidInput:      textNotesUsage,
		})
		return
	}
	b.replyWithMarkup(chatID, textNotesSaved, createReplyKeyboard([]string{btnStats}))
}

// handleStatsDates offers the recorded dates as inline buttons. Page 0 holds
// the latest dates; older pages are reached through the navigation row.
func (b *Bot) handleStatsDates(ctx context.Context, chatID int64, page int) {
	dates, err := b.tracker.StatsDates(ctx, chatID)
	if err != nil {
		b.replyError(chatID, err, nil)
		return
	}
	if len(dates) == 0 {
		b.reply(chatID, textNoStats)
		return
	}
	b.replyWithMarkup(chatID, textChooseDate, createKeyboard(b.statsRows(dates, page)))
}

func (b *Bot) statsRows(dates []string, page int) [][]MenuButton {
	size := b.config.MaxStatsButtons
	if size <= 0 {
		size = len(dates)
	}
	pages := (len(dates) + size - 1) / size
	if page < 0 {
		page = 0
	}
	if page >= pages {
		page = pages - 1
	}

	end := len(dates) - page*size
	start := end - size
	if start < 0 {
		start = 0
	}
	shown := dates[start:end]

	perRow := b.config.StatsButtonsPerRow
	if perRow <= 0 {
		perRow = 1
	}

	var rows [][]MenuButton
	for i := 0; i < len(shown); i += perRow {
		last := i + perRow
		if last > len(shown) {
			last = len(shown)
		}
		var row []MenuButton
		for _, date := range shown[i:last] {
			row = append(row, MenuButton{Text: date, CallbackData: callbackStatPrefix + date})
		}
		rows = append(rows, row)
	}

	var nav []MenuButton
	if page+1 < pages {
		nav = append(nav, MenuButton{Text: btnOlder, CallbackData: callbackStatsPagePrefix + strconv.Itoa(page+1)})
	}
	if page > 0 {
		nav = append(nav, MenuButton{Text: btnNewer, CallbackData: callbackStatsPagePrefix + strconv.Itoa(page-1)})
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	return rows
}

func (b *Bot) handleStatsDetail(ctx context.Context, chatID int64, date string) {
	s, err := b.tracker.StatsDetail(ctx, chatID, date)
	if err != nil {
		b.replyError(chatID, err, map[error]string{tracker.ErrNotFound: fmt.Sprintf(textNoDataFor, date)})
		return
	}
	b.reply(chatID, formatSummary(s))
	b.reply(chatID, textGoingToSleep)
}

// handleExport sends the whole diary as a document
func (b *Bot) handleExport(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	format, err := excel.ParseFormat(message.CommandArguments())
	if err != nil {
		b.reply(chatID, textExportUsage)
		return
	}

	u, err := b.tracker.Snapshot(ctx, chatID)
	if err != nil {
		b.replyError(chatID, err, nil)
		return
	}
	if u.CycleCount() == 0 {
		b.reply(chatID, textExportEmpty)
		return
	}

	var buf bytes.Buffer
	if err := excel.Export(u, format, &buf); err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to render export")
		b.reply(chatID, textStorageFailure)
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  excel.FileName(u, format),
		Bytes: buf.Bytes(),
	})
	b.send(doc)
}

func formatSummary(s tracker.Summary) string {
	wake, duration, quality := textNotSet, textNotSet, textNotSet
	if s.WakeTime != "" {
		wake = s.WakeTime
		duration = formatHours(s.DurationHours)
	}
	if s.Quality != 0 {
		quality = strconv.Itoa(s.Quality)
	}
	return fmt.Sprintf(textStatsDetail, s.Date, s.SleepTime, wake, duration, quality, s.Notes)
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

// displayName picks the friendliest name Telegram gives us
func displayName(message *tgbotapi.Message) string {
	if message.From == nil {
		return ""
	}
	if message.From.FirstName != "" {
		return message.From.FirstName
	}
	return message.From.UserName
}
