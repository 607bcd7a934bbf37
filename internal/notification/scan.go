package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Hirdyansh9/Orderbook/internal/models"
	"github.com/Hirdyansh9/Orderbook/internal/trigger"
)

// ScanReport summarises one scan pass.
type ScanReport struct {
	Accounts       int `json:"accounts"`
	FailedAccounts int `json:"failedAccounts"`
	Matches        int `json:"matches"`
	Created        int `json:"created"`
	Suppressed     int `json:"suppressed"`
	Failed         int `json:"failed"`
}

// RunNow runs the scheduled pipeline on demand.
func (s *Service) RunNow(ctx context.Context) (ScanReport, error) {
	s.logger.Info("Manual notification scan requested")
	return s.Scan(ctx)
}

// Scan evaluates every enabled trigger of every active owner against all
// orders. A failing account is logged and skipped; the error returned is
// only for failures that prevent the scan from starting. Once started, a
// scan ignores cancellation of ctx and runs to completion.
func (s *Service) Scan(ctx context.Context) (ScanReport, error) {
	ctx = context.WithoutCancel(ctx)
	release, err := s.lock.Acquire(ctx)
	if err != nil {
		return ScanReport{}, err
	}
	defer release()

	var report ScanReport
	users, err := s.records.ListActiveUsers(ctx)
	if err != nil {
		return report, fmt.Errorf("list active users: %w", err)
	}

	for _, u := range users {
		if u.Role != models.RoleOwner || !u.Active {
			continue
		}
		report.Accounts++
		if err := s.processAccount(ctx, u.ID, &report); err != nil {
			report.FailedAccounts++
			s.logger.WithError(err).WithField("owner_id", u.ID).Error("Account scan failed")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"accounts":        report.Accounts,
		"failed_accounts": report.FailedAccounts,
		"matches":         report.Matches,
		"created":         report.Created,
		"suppressed":      report.Suppressed,
		"failed":          report.Failed,
	}).Info("Notification scan completed")
	return report, nil
}

func (s *Service) processAccount(ctx context.Context, ownerID string, report *ScanReport) error {
	policy, err := s.policies.GetPolicy(ctx, ownerID)
	if errors.Is(err, models.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load policy: %w", err)
	}

	triggers := policy.EnabledTriggers()
	if len(triggers) == 0 {
		return nil
	}

	users, err := s.records.ListActiveUsers(ctx)
	if err != nil {
		return fmt.Errorf("list active users: %w", err)
	}
	orders, err := s.records.ListOrders(ctx)
	if err != nil {
		return fmt.Errorf("list orders: %w", err)
	}

	for _, t := range triggers {
		for _, o := range orders {
			s.applyTrigger(ctx, t, o, users, report)
		}
	}
	return nil
}

// applyTrigger notifies every recipient of a matched order. A failed dedup
// check or create is logged and counted; the other recipients still go out.
func (s *Service) applyTrigger(ctx context.Context, t models.Trigger, o models.Order, users []models.User, report *ScanReport) {
	ok, data := s.evaluator.Evaluate(t, o)
	if !ok {
		return
	}
	report.Matches++

	targets := trigger.ResolveRecipients(t.RecipientSpecifiers(), users)
	title := s.renderer.Render(t.TitleTemplate, data)
	message := s.renderer.Render(t.MessageTemplate, data)

	for _, u := range targets {
		fields := logrus.Fields{
			"trigger_id": t.ID,
			"user_id":    u.ID,
			"order_id":   o.ID,
		}
		now := s.now()
		seen, err := s.dedup.alreadyNotified(ctx, u.ID, t.ID, title, now)
		if err != nil {
			report.Failed++
			s.logger.WithError(err).WithFields(fields).Error("Dedup check failed")
			continue
		}
		if seen {
			report.Suppressed++
			continue
		}

		triggerID := t.ID
		created, err := s.sink.CreateNotification(ctx, models.Notification{
			UserID:    u.ID,
			Type:      t.Severity,
			Title:     title,
			Message:   message,
			TriggerID: &triggerID,
			CreatedAt: now,
		})
		if err != nil {
			report.Failed++
			s.logger.WithError(err).WithFields(fields).Error("Create notification failed")
			continue
		}
		report.Created++
		s.logger.WithFields(fields).Debug("Notification created")
		s.publish(ctx, created)
	}
}
