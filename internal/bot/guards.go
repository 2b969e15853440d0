package bot

import (
	"context"
	"log/slog"

	"github.com/example/hostelhunt/internal/hunt"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// guard runs before a command handler. It reports false to stop the
// command and takes care of any denial message itself.
type guard func(ctx context.Context, logger *slog.Logger, msg *tgbotapi.Message) (bool, error)

func (b *Bot) registeredOnly(ctx context.Context, _ *slog.Logger, msg *tgbotapi.Message) (bool, error) {
	registered, err := b.hunt.IsRegistered(ctx, msg.From.ID)
	if err != nil {
		return false, b.respond(msg, hunt.MsgGenericFailure, err)
	}
	if !registered {
		return false, b.reply(msg, hunt.MsgRegisteredOnly)
	}
	return true, nil
}

// adminOnly drops commands from non-admins without answering.
func (b *Bot) adminOnly(_ context.Context, logger *slog.Logger, msg *tgbotapi.Message) (bool, error) {
	if b.hunt.IsAdmin(msg.From.ID) {
		return true, nil
	}
	logger.Warn("admin command from non-admin dropped", "command", msg.Command())
	return false, nil
}

func (b *Bot) masterOnly(_ context.Context, logger *slog.Logger, msg *tgbotapi.Message) (bool, error) {
	if b.hunt.IsMaster(msg.From.ID) {
		return true, nil
	}
	logger.Warn("master command from other user dropped", "command", msg.Command())
	return false, nil
}
