package events

import (
	"context"
	"log/slog"
)

// LogNotifier records every committed thread and message on the logger. It is
// the default sink for the bus; delivery integrations subscribe next to it.
func LogNotifier(ctx context.Context, sub Subscriber, logger *slog.Logger) error {
	logger = logger.WithGroup("notify")

	if err := sub.OnThreadCreated(ctx, func(_ context.Context, ev ThreadCreated) error {
		logger.Info("thread created",
			"thread_id", ev.ThreadID,
			"sender_id", ev.SenderID,
			"participants", ev.ParticipantIDs,
		)
		return nil
	}); err != nil {
		return err
	}

	return sub.OnMessageSent(ctx, func(_ context.Context, ev MessageSent) error {
		logger.Info("message sent",
			"thread_id", ev.ThreadID,
			"message_id", ev.MessageID,
			"sender_id", ev.SenderID,
			"recipients", ev.RecipientIDs,
		)
		return nil
	})
}
