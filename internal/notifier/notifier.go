package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/upgraded-notifs/notifs/internal/config"
	"github.com/upgraded-notifs/notifs/internal/domain"
	"github.com/upgraded-notifs/notifs/internal/logger"
)

const defaultTimeout = 30 * time.Second

// BatchSender delivers a batch of emails.
type BatchSender interface {
	SendBatch(ctx context.Context, emails []Email) error
}

// Notifier renders the digest of matched listings and emails it.
type Notifier struct {
	sender BatchSender
	from   string
	log    logger.Logger
}

// New builds a Notifier around an already configured sender.
func New(sender BatchSender, from string, log logger.Logger) *Notifier {
	return &Notifier{sender: sender, from: from, log: logger.Ensure(log)}
}

// Send emails one digest of matches to the configured recipient.
func (n *Notifier) Send(ctx context.Context, matches []domain.Listing, digest config.Digest) error {
	if n == nil || n.sender == nil {
		return errors.New("notifier is not initialized")
	}
	if len(matches) == 0 {
		return errors.New("no matches to send")
	}

	groups := GroupBySource(matches)
	html, err := RenderHTML(groups, digest.Roles)
	if err != nil {
		return err
	}
	subject := Subject(groups)

	if err := n.sender.SendBatch(ctx, []Email{{
		From:    n.from,
		To:      []string{digest.RecipientEmail},
		Subject: subject,
		HTML:    html,
	}}); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}

	n.log.InfoObj("email sent", "email_meta", map[string]any{
		"recipient": digest.RecipientEmail,
		"subject":   subject,
		"matches":   len(matches),
	})
	return nil
}
