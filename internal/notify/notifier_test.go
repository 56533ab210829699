package notify

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	name   string
	err    error
	titles []string
}

func (s *fakeSender) Send(ctx context.Context, title, message string) error {
	if s.err != nil {
		return s.err
	}
	s.titles = append(s.titles, title)
	return nil
}

func (s *fakeSender) Name() string { return s.name }

func TestNotifierKindFilter(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	t.Run("configured kinds pass", func(t *testing.T) {
		sender := &fakeSender{name: "fake"}
		n := NewNotifier([]Sender{sender}, []string{"timeout", "settlementFailed"}, logger)

		require.NoError(t, n.Notify(context.Background(), "timeout", "t1", "m"))
		require.NoError(t, n.Notify(context.Background(), "emptySolution", "t2", "m"))
		assert.Equal(t, []string{"t1"}, sender.titles)
	})

	t.Run("wildcard allows everything", func(t *testing.T) {
		sender := &fakeSender{name: "fake"}
		n := NewNotifier([]Sender{sender}, []string{"*"}, logger)

		require.NoError(t, n.Notify(context.Background(), "whatever", "t1", "m"))
		assert.Equal(t, []string{"t1"}, sender.titles)
	})

	t.Run("empty list allows everything", func(t *testing.T) {
		sender := &fakeSender{name: "fake"}
		n := NewNotifier([]Sender{sender}, nil, logger)

		require.NoError(t, n.Notify(context.Background(), "whatever", "t1", "m"))
		assert.Equal(t, []string{"t1"}, sender.titles)
	})

	t.Run("notify all bypasses the filter", func(t *testing.T) {
		sender := &fakeSender{name: "fake"}
		n := NewNotifier([]Sender{sender}, []string{"timeout"}, logger)

		require.NoError(t, n.NotifyAll(context.Background(), "t1", "m"))
		assert.Equal(t, []string{"t1"}, sender.titles)
	})
}

func TestNotifierCollectsSenderErrors(t *testing.T) {
	broken := &fakeSender{name: "broken", err: errors.New("webhook gone")}
	working := &fakeSender{name: "working"}
	n := NewNotifier([]Sender{broken, working}, nil, slog.New(slog.DiscardHandler))

	err := n.Notify(context.Background(), "timeout", "t1", "m")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.Equal(t, []string{"t1"}, working.titles, "one failing sender must not block the rest")
}

func TestNotifierNoSenders(t *testing.T) {
	n := NewNotifier(nil, nil, slog.New(slog.DiscardHandler))
	assert.NoError(t, n.Notify(context.Background(), "timeout", "t", "m"))
}
