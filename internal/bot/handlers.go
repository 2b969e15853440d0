package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/hostelhunt/internal/hunt"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleStart(_ context.Context, _ *slog.Logger, msg *tgbotapi.Message) error {
	if err := b.reply(msg, hunt.MsgWelcome); err != nil {
		return err
	}
	return b.reply(msg, hunt.MsgRules)
}

func (b *Bot) handleHelp(_ context.Context, _ *slog.Logger, msg *tgbotapi.Message) error {
	if err := b.reply(msg, hunt.MsgHelp); err != nil {
		return err
	}
	if !b.hunt.IsAdmin(msg.From.ID) {
		return nil
	}

	text := hunt.MsgAdminHelp
	if b.cfg.BroadcastEnabled && b.hunt.IsMaster(msg.From.ID) {
		text += "\n" + hunt.MsgMasterHelp
	}
	return b.reply(msg, text)
}

func (b *Bot) handleRegister(ctx context.Context, _ *slog.Logger, msg *tgbotapi.Message) error {
	reply, err := b.hunt.BeginRegistration(ctx, userOf(msg))
	return b.respond(msg, reply, err)
}

func (b *Bot) handleCancel(_ context.Context, _ *slog.Logger, msg *tgbotapi.Message) error {
	return b.reply(msg, b.hunt.CancelRegistration(msg.From.ID))
}

func (b *Bot) handleHint(ctx context.Context, _ *slog.Logger, msg *tgbotapi.Message) error {
	reply, err := b.hunt.RequestHint(ctx, msg.From.ID, b.now())
	return b.respond(msg, reply, err)
}

func (b *Bot) handleClaim(ctx context.Context, logger *slog.Logger, msg *tgbotapi.Message) error {
	result, err := b.hunt.Claim(ctx, msg.From.ID, strings.Fields(msg.CommandArguments()), b.now())
	if err := b.respond(msg, result.Reply, err); err != nil {
		return err
	}
	if result.Hash == "" {
		return nil
	}

	logger.Info("token claimed")
	return b.reply(msg, result.Receipt())
}

func (b *Bot) handleVerify(ctx context.Context, _ *slog.Logger, msg *tgbotapi.Message) error {
	reply, err := b.hunt.Verify(ctx, strings.Fields(msg.CommandArguments()))
	return b.respond(msg, reply, err)
}

// handleBroadcast relays a message to every participant. Failed deliveries
// are logged and skipped.
func (b *Bot) handleBroadcast(ctx context.Context, logger *slog.Logger, msg *tgbotapi.Message) error {
	text := strings.TrimSpace(msg.CommandArguments())
	if text == "" {
		return b.reply(msg, hunt.MsgBroadcastEmpty)
	}

	ids, err := b.hunt.Participants(ctx)
	if err != nil {
		return b.respond(msg, hunt.MsgGenericFailure, err)
	}

	delivered := 0
	for i, id := range ids {
		if i > 0 {
			if err := sleep(ctx, b.cfg.BroadcastDelay); err != nil {
				return err
			}
		}
		if err := b.send(id, text); err != nil {
			logger.Warn("broadcast delivery failed", "recipient", id, "error", err)
			continue
		}
		delivered++
	}

	logger.Info("broadcast finished", "delivered", delivered, "participants", len(ids))
	return b.reply(msg, fmt.Sprintf(hunt.MsgBroadcastDone, delivered, len(ids)))
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
