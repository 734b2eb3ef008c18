package device

import (
	"context"
	"log/slog"
)

// Gateway delivers a push notification to one installed client instance,
// addressed by its push handle.
type Gateway interface {
	Send(ctx context.Context, pushToken, title, body string)
}

// LogGateway is the development gateway: it logs what a real push provider
// would deliver.
type LogGateway struct {
	Log *slog.Logger
}

func (g LogGateway) Send(ctx context.Context, pushToken, title, body string) {
	log := g.Log
	if log == nil {
		log = slog.Default()
	}
	log.LogAttrs(ctx, slog.LevelInfo, "push.send",
		slog.String("push_token", pushToken),
		slog.String("title", title),
		slog.String("body", body),
	)
}
