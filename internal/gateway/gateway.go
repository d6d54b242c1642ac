// Package gateway adapts the external payment provider. Only the charge
// handoff lives here; settlement comes back through the provider callback.
package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RedirectGateway issues checkout references under a provider base URL.
// The reference is opaque to the core; the student is redirected to it
// and the provider reports the outcome asynchronously.
type RedirectGateway struct {
	baseURL string
	logger  *zap.Logger
}

func NewRedirectGateway(baseURL string, logger *zap.Logger) *RedirectGateway {
	return &RedirectGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

func (g *RedirectGateway) CreateCharge(ctx context.Context, amount int, metadata map[string]string) (string, error) {
	if amount < 0 {
		return "", fmt.Errorf("create charge: negative amount %d", amount)
	}

	ref := fmt.Sprintf("%s/checkout/%s", g.baseURL, uuid.NewString())
	g.logger.Info("Charge created",
		zap.Int("amount", amount),
		zap.String("redirect_ref", ref),
		zap.Any("metadata", metadata),
	)
	return ref, nil
}
