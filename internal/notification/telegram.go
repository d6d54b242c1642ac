package notification

import (
	"context"
	"fmt"

	"tutorbook_backend/internal/model"

	"github.com/go-telegram/bot"
)

// UserDirectory resolves recipients to users for delivery routing.
type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// TelegramChannel delivers events as Telegram messages to users who linked
// a chat id. Users without one are silently skipped.
type TelegramChannel struct {
	bot   *bot.Bot
	users UserDirectory
}

func NewTelegramChannel(b *bot.Bot, users UserDirectory) *TelegramChannel {
	return &TelegramChannel{bot: b, users: users}
}

func (c *TelegramChannel) Name() string {
	return "telegram"
}

func (c *TelegramChannel) Send(ctx context.Context, e Event) error {
	text := formatEvent(e)

	for _, userID := range Recipients(e) {
		user, err := c.users.GetByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("resolve recipient %d: %w", userID, err)
		}
		if user.TelegramChatID == nil {
			continue
		}

		_, err = c.bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: *user.TelegramChatID,
			Text:   text,
		})
		if err != nil {
			return fmt.Errorf("send telegram message to %d: %w", userID, err)
		}
	}
	return nil
}

func formatEvent(e Event) string {
	res := e.Reservation
	when := fmt.Sprintf("%s %s-%s", res.Date.Format("Mon, 02 Jan"), res.Start, res.End)

	switch e.Type {
	case EventReservationCreated:
		return fmt.Sprintf("📚 New booking request for %s. Waiting for your confirmation.", when)
	case EventReservationConfirmed:
		return fmt.Sprintf("✅ Your session on %s is confirmed.", when)
	case EventReservationCompleted:
		return fmt.Sprintf("🎓 Session on %s is marked as completed.", when)
	case EventReservationCancelled:
		return fmt.Sprintf("❌ Session on %s was cancelled by the %s.", when, e.ActorRole)
	case EventPaymentCompleted:
		if e.Payment != nil && e.Payment.Method == model.PaymentMethodCash {
			return fmt.Sprintf("💵 Cash payment for the session on %s was confirmed by the tutor.", when)
		}
		return fmt.Sprintf("💳 Payment for the session on %s went through.", when)
	}
	return fmt.Sprintf("Update for your session on %s.", when)
}
