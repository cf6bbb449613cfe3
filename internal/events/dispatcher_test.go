package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishInvokesSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var got []Event
	d.Subscribe(EventLoginSucceeded, func(ctx context.Context, e Event) error {
		got = append(got, e)
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventLoginSucceeded, UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "u1", got[0].UserID)
}

func TestPublishOnlyMatchingType(t *testing.T) {
	d := NewInMemoryDispatcher()

	calls := 0
	d.Subscribe(EventLoginFailed, func(ctx context.Context, e Event) error {
		calls++
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventLoginSucceeded}))
	assert.Zero(t, calls)
}

func TestPublishContinuesPastHandlerError(t *testing.T) {
	d := NewInMemoryDispatcher()

	boom := errors.New("boom")
	second := false
	d.Subscribe(EventUserDeleted, func(ctx context.Context, e Event) error { return boom })
	d.Subscribe(EventUserDeleted, func(ctx context.Context, e Event) error {
		second = true
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventUserDeleted})
	assert.ErrorIs(t, err, boom)
	assert.True(t, second)
}

func TestPublishReturnsLastError(t *testing.T) {
	d := NewInMemoryDispatcher()

	first := errors.New("first")
	last := errors.New("last")
	d.Subscribe(EventPasswordChanged, func(ctx context.Context, e Event) error { return first })
	d.Subscribe(EventPasswordChanged, func(ctx context.Context, e Event) error { return last })

	err := d.Publish(context.Background(), Event{Type: EventPasswordChanged})
	assert.ErrorIs(t, err, last)
}

func TestPublishWithNoSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventTokenRefreshed}))
}
