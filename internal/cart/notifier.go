package cart

import (
	"context"

	"go.uber.org/zap"

	"storefront/internal/domain"
)

// LogNotifier writes recovery reminders to the log instead of sending mail.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyAbandonedCart(_ context.Context, cart domain.AbandonedCart) error {
	email := ""
	if cart.Email != nil {
		email = *cart.Email
	}
	n.logger.Info("cart recovery reminder",
		zap.String("cartId", cart.ID),
		zap.String("email", email),
		zap.Int("itemCount", cart.ItemCount),
		zap.String("totalAmount", cart.TotalAmount.StringFixed(2)),
		zap.Int("attempt", cart.RecoveryAttempts),
	)
	return nil
}
