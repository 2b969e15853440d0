package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const shutdownTimeout = 5 * time.Second

// Router serves Telegram webhook calls on /<bot token> and a health check.
func (b *Bot) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", b.handleHealth)
	r.Post("/"+b.cfg.TelegramToken, b.handleWebhook)
	return r
}

func (b *Bot) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "ok\nactive_registrations %d\n", b.hunt.Sessions().Active())
}

// handleWebhook queues the update and acknowledges it right away so Telegram
// does not redeliver slow updates.
func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.parseUpdate(r)
	if err != nil {
		b.logger.Warn("invalid webhook payload", "error", err)
		http.Error(w, "invalid update", http.StatusBadRequest)
		return
	}
	b.queue.push(*update)
	w.WriteHeader(http.StatusOK)
}

func (b *Bot) serveWebhook(ctx context.Context) error {
	link := strings.TrimRight(b.cfg.WebhookURL, "/") + "/" + b.cfg.TelegramToken
	wh, err := tgbotapi.NewWebhook(link)
	if err != nil {
		return fmt.Errorf("invalid webhook url: %w", err)
	}
	// one connection at a time keeps the delivery order of updates
	wh.MaxConnections = 1
	if _, err := b.api.Request(wh); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", b.cfg.Port),
		Handler:           b.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	b.logger.Info("bot started", "mode", "webhook", "port", b.cfg.Port)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			b.logger.Error("webhook server shutdown failed", "error", err)
		}
		b.wg.Wait()
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("webhook server failed: %w", err)
	}
}
