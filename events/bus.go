package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/jcooky/go-din"

	"github.com/habiliai/inbox/errors"
	"github.com/habiliai/inbox/internal/mylog"
)

const metaKeySenderID = "sender_id"

// Bus is an in-process event bus on top of watermill's GoChannel.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger *slog.Logger
}

var (
	_ Publisher  = (*Bus)(nil)
	_ Subscriber = (*Bus)(nil)
)

func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 64},
			watermill.NewStdLogger(false, false),
		),
		logger: logger,
	}
}

func (b *Bus) PublishThreadCreated(_ context.Context, ev ThreadCreated) error {
	return b.publish(TopicThreadCreated, ev.SenderID, ev)
}

func (b *Bus) PublishMessageSent(_ context.Context, ev MessageSent) error {
	return b.publish(TopicMessageSent, ev.SenderID, ev)
}

func (b *Bus) OnThreadCreated(ctx context.Context, fn func(context.Context, ThreadCreated) error) error {
	return subscribe(ctx, b, TopicThreadCreated, fn)
}

func (b *Bus) OnMessageSent(ctx context.Context, fn func(context.Context, MessageSent) error) error {
	return subscribe(ctx, b, TopicMessageSent, fn)
}

func (b *Bus) Close() error {
	return b.pubsub.Close()
}

func (b *Bus) publish(topic string, senderID uint, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal %s event", topic)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set(metaKeySenderID, strconv.FormatUint(uint64(senderID), 10))

	return errors.Wrapf(b.pubsub.Publish(topic, msg), "failed to publish %s event", topic)
}

// subscribe consumes topic until ctx is done. Handler errors nack the message
// and are logged; the in-memory bus does not redeliver.
func subscribe[T any](ctx context.Context, b *Bus, topic string, fn func(context.Context, T) error) error {
	messages, err := b.pubsub.Subscribe(ctx, topic)
	if err != nil {
		return errors.Wrapf(err, "failed to subscribe to %s", topic)
	}

	go func() {
		for msg := range messages {
			var ev T
			if err := json.Unmarshal(msg.Payload, &ev); err != nil {
				b.logger.Error("failed to decode event", "topic", topic, "msg_id", msg.UUID, mylog.Err(err))
				msg.Nack()
				continue
			}

			if err := fn(msg.Context(), ev); err != nil {
				b.logger.Error("failed to handle event", "topic", topic, "msg_id", msg.UUID, mylog.Err(err))
				msg.Nack()
				continue
			}
			msg.Ack()
		}
		b.logger.Debug("subscription ended", "topic", topic)
	}()

	return nil
}

func init() {
	din.RegisterT(func(c *din.Container) (*Bus, error) {
		logger, err := din.GetT[*mylog.Logger](c)
		if err != nil {
			return nil, err
		}

		bus := NewBus(logger)
		go func() {
			<-c.Done()
			if err := bus.Close(); err != nil {
				logger.Warn("failed to close event bus", mylog.Err(err))
			}
		}()

		return bus, nil
	})
	din.RegisterT(func(c *din.Container) (Publisher, error) {
		bus, err := din.GetT[*Bus](c)
		if err != nil {
			return nil, err
		}
		return bus, nil
	})
	din.RegisterT(func(c *din.Container) (Subscriber, error) {
		bus, err := din.GetT[*Bus](c)
		if err != nil {
			return nil, err
		}
		return bus, nil
	})
}
