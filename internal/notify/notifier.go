// Package notify forwards solver events to operator channels. Alerts are
// dispatched to all registered senders (Telegram, Discord, etc.) and can
// be filtered by notification kind so operators receive only the driver
// reports they care about.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Sender is the interface that each notification channel must implement.
type Sender interface {
	// Send delivers a notification with the given title and message body.
	Send(ctx context.Context, title, message string) error
	// Name returns a human-readable identifier for the sender (e.g. "telegram").
	Name() string
}

// Notifier dispatches notifications to one or more Senders. It maintains
// a set of allowed notification kinds; Notify only forwards messages
// whose kind is in the allowed set.
type Notifier struct {
	senders []Sender
	kinds   map[string]bool
	all     bool
	logger  *slog.Logger
}

// NewNotifier creates a Notifier that will deliver to the given senders.
// Only notifications whose kind appears in kinds are forwarded. An empty
// list, or a list containing "*", allows every kind.
func NewNotifier(senders []Sender, kinds []string, logger *slog.Logger) *Notifier {
	allowed := make(map[string]bool, len(kinds))
	all := len(kinds) == 0
	for _, k := range kinds {
		k = strings.TrimSpace(k)
		if k == "*" {
			all = true
			continue
		}
		allowed[k] = true
	}
	return &Notifier{
		senders: senders,
		kinds:   allowed,
		all:     all,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// Notify sends a notification to all senders if the kind passes the
// configured filter.
func (n *Notifier) Notify(ctx context.Context, kind, title, message string) error {
	if !n.all && !n.kinds[kind] {
		n.logger.DebugContext(ctx, "notification kind filtered out",
			slog.String("kind", kind),
		)
		return nil
	}
	return n.dispatch(ctx, title, message)
}

// NotifyAll sends a notification to all senders regardless of kind.
func (n *Notifier) NotifyAll(ctx context.Context, title, message string) error {
	return n.dispatch(ctx, title, message)
}

// dispatch iterates over all senders and sends the notification. Errors
// from individual senders are collected and returned as a combined
// error; a single sender failure does not prevent delivery to the rest.
func (n *Notifier) dispatch(ctx context.Context, title, message string) error {
	if len(n.senders) == 0 {
		return nil
	}

	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
		} else {
			n.logger.DebugContext(ctx, "notification sent",
				slog.String("sender", s.Name()),
				slog.String("title", title),
			)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}
