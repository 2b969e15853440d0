package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/example/hostelhunt/internal/hunt"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/xid"
)

// sender delivers outgoing messages
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type handlerFunc func(ctx context.Context, logger *slog.Logger, msg *tgbotapi.Message) error

// command is an entry of the dispatch table
type command struct {
	guards []guard
	handle handlerFunc
}

// Bot represents the Telegram bot application
type Bot struct {
	api      *tgbotapi.BotAPI
	sender   sender
	hunt     *hunt.Service
	cfg      Config
	logger   *slog.Logger
	commands map[string]command
	now      func() time.Time

	// parseUpdate decodes webhook requests
	parseUpdate func(r *http.Request) (*tgbotapi.Update, error)

	baseCtx context.Context
	queue   *userQueue
	wg      sync.WaitGroup
}

// New creates a new bot instance
func New(cfg Config, svc *hunt.Service, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}
	logger.Info("authorized on telegram", "account", api.Self.UserName)

	b := newBot(api, cfg, svc, logger)
	b.api = api
	b.parseUpdate = api.HandleUpdate
	return b, nil
}

func newBot(s sender, cfg Config, svc *hunt.Service, logger *slog.Logger) *Bot {
	b := &Bot{
		sender:  s,
		hunt:    svc,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
		baseCtx: context.Background(),
	}
	b.commands = b.commandTable()
	b.queue = newUserQueue(&b.wg, func(update tgbotapi.Update) {
		b.HandleUpdate(b.baseCtx, update)
	})
	return b
}

func (b *Bot) commandTable() map[string]command {
	commands := map[string]command{
		"start":    {handle: b.handleStart},
		"help":     {handle: b.handleHelp},
		"register": {handle: b.handleRegister},
		"cancel":   {handle: b.handleCancel},
		"hint":     {guards: []guard{b.registeredOnly}, handle: b.handleHint},
		"claim":    {guards: []guard{b.registeredOnly}, handle: b.handleClaim},
		"verify":   {guards: []guard{b.adminOnly}, handle: b.handleVerify},
	}
	if b.cfg.BroadcastEnabled {
		commands["broadcast"] = command{guards: []guard{b.masterOnly}, handle: b.handleBroadcast}
	}
	return commands
}

// Start receives updates until ctx is cancelled, by webhook when a
// webhook URL is configured and by long polling otherwise.
func (b *Bot) Start(ctx context.Context) error {
	if b.api == nil {
		return errors.New("bot API is not initialized")
	}
	b.baseCtx = ctx

	if b.cfg.WebhookURL == "" {
		return b.poll(ctx)
	}
	return b.serveWebhook(ctx)
}

func (b *Bot) poll(ctx context.Context) error {
	// getUpdates is refused while a webhook is set
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)
	b.logger.Info("bot started", "mode", "polling")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.wg.Wait()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				b.wg.Wait()
				return nil
			}
			b.queue.push(update)
		}
	}
}

// HandleUpdate processes one update. Concurrent calls for the same user are
// handled one at a time; arrival order is kept by the update queue.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return
	}

	logger := b.logger.With(
		"update_id", update.UpdateID,
		"request_id", xid.New().String(),
		"user_id", msg.From.ID,
	)

	unlock := b.hunt.Sessions().Lock(msg.From.ID)
	defer unlock()

	if err := b.dispatch(ctx, logger, msg); err != nil {
		logger.Error("failed to handle update", "error", err)
	}
}

func (b *Bot) dispatch(ctx context.Context, logger *slog.Logger, msg *tgbotapi.Message) error {
	if !msg.IsCommand() {
		if msg.Text == "" {
			// stickers, photos and other non-text messages
			return nil
		}
		reply, err := b.hunt.HandleRegistrationText(ctx, userOf(msg), msg.Text)
		return b.respond(msg, reply, err)
	}

	name := msg.Command()
	if name != "cancel" && b.hunt.InRegistration(msg.From.ID) {
		return b.reply(msg, hunt.MsgFinishRegister)
	}

	cmd, ok := b.commands[name]
	if !ok {
		return b.reply(msg, hunt.MsgUnknownCommand)
	}

	for _, g := range cmd.guards {
		allowed, err := g(ctx, logger, msg)
		if err != nil || !allowed {
			return err
		}
	}

	logger.Debug("handling command", "command", name)
	return cmd.handle(ctx, logger, msg)
}

// reply sends text back to the chat of msg. Empty text sends nothing.
func (b *Bot) reply(msg *tgbotapi.Message, text string) error {
	return b.send(msg.Chat.ID, text)
}

func (b *Bot) send(chatID int64, text string) error {
	if text == "" {
		return nil
	}
	if _, err := b.sender.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("failed to send message to %d: %w", chatID, err)
	}
	return nil
}

// respond sends the reply a service call produced and reports both errors.
func (b *Bot) respond(msg *tgbotapi.Message, text string, err error) error {
	return errors.Join(err, b.reply(msg, text))
}

func userOf(msg *tgbotapi.Message) hunt.User {
	return hunt.User{ID: msg.From.ID, Name: strings.TrimSpace(msg.From.FirstName)}
}
