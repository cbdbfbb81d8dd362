package eventstest

import (
	"context"

	"github.com/habiliai/inbox/events"
	"github.com/stretchr/testify/mock"
)

type PublisherMock struct {
	mock.Mock
}

func (p *PublisherMock) PublishThreadCreated(ctx context.Context, ev events.ThreadCreated) error {
	args := p.Called(ctx, ev)
	return args.Error(0)
}

func (p *PublisherMock) PublishMessageSent(ctx context.Context, ev events.MessageSent) error {
	args := p.Called(ctx, ev)
	return args.Error(0)
}

var (
	_ events.Publisher = (*PublisherMock)(nil)
)
