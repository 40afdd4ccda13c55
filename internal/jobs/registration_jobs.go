package jobs

import (
	"context"

	"clubhub-backend/internal/logger"
)

// ExpireRegistrations moves paid approved memberships past their end date to EXPIRED
func (jr *JobRunner) ExpireRegistrations() {
	jr.runWithRecovery("ExpireRegistrations", func(ctx context.Context) error {
		count, err := jr.registrations.ExpireOverdue(ctx, jr.now().UTC())
		if err != nil {
			return err
		}
		logger.Info("Expired registrations", "count", count)
		return nil
	})
}

// SendRenewalReminders notifies members whose membership ends in renewal_reminder_days
func (jr *JobRunner) SendRenewalReminders() {
	jr.runWithRecovery("SendRenewalReminders", func(ctx context.Context) error {
		days := jr.config.Membership.RenewalReminderDays
		count, err := jr.registrations.RemindExpiring(ctx, jr.now().UTC(), days)
		if err != nil {
			return err
		}
		logger.Info("Sent renewal reminders", "count", count, "days_ahead", days)
		return nil
	})
}
