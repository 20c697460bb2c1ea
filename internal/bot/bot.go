// Package bot provides the Telegram adapter: plain text messages are
// translated through the AI gateway and answered as formatted HTML.
package bot

import (
	"context"
	"errors"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/hanmaru/vocanote/internal/ai"
)

// Bot wraps the Telegram long-polling loop.
type Bot struct {
	api       *tgbotapi.BotAPI
	generator ai.Generator
	logger    *zap.Logger

	mu       sync.Mutex
	sessions map[int64]*userSession
}

// userSession is lightweight per-user state, kept in memory only.
type userSession struct {
	vocabCount int
}

// New creates the bot. The token must be non-empty; the generator may be nil
// (every translation then uses the fallback entry).
func New(token string, generator ai.Generator, logger *zap.Logger) (*Bot, error) {
	if token == "" {
		return nil, errors.New("telegram bot token is required")
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Bot{
		api:       api,
		generator: generator,
		logger:    logger,
		sessions:  make(map[int64]*userSession),
	}, nil
}

// Run starts long polling and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("bot connected", zap.String("username", b.api.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
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

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			b.session(msg.From.ID) // initialize
			b.reply(msg.Chat.ID, startText(msg.From.FirstName), "")
		case "help":
			b.reply(msg.Chat.ID, helpText, "")
		case "about":
			b.reply(msg.Chat.ID, aboutText, "")
		default:
			b.reply(msg.Chat.ID, "알 수 없는 명령어입니다. /help를 확인해보세요!", "")
		}
		return
	}
	b.translate(ctx, msg)
}

func (b *Bot) translate(ctx context.Context, msg *tgbotapi.Message) {
	word := strings.TrimSpace(msg.Text)
	if word == "" {
		b.reply(msg.Chat.ID, "한국어 단어를 입력해주세요! 🤔", "")
		return
	}

	entry := ai.GenerateOrFallback(ctx, b.generator, word, b.logger)

	session := b.session(msg.From.ID)
	b.mu.Lock()
	session.vocabCount++
	count := session.vocabCount
	b.mu.Unlock()

	b.reply(msg.Chat.ID, formatVocabularyHTML(entry, count), tgbotapi.ModeHTML)
}

func (b *Bot) session(userID int64) *userSession {
	b.mu.Lock()
	defer b.mu.Unlock()
	session, ok := b.sessions[userID]
	if !ok {
		session = &userSession{}
		b.sessions[userID] = session
	}
	return session
}

func (b *Bot) reply(chatID int64, text, parseMode string) {
	reply := tgbotapi.NewMessage(chatID, text)
	if parseMode != "" {
		reply.ParseMode = parseMode
	}
	if _, err := b.api.Send(reply); err != nil {
		b.logger.Warn("telegram send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
