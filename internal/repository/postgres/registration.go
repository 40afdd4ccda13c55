package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/logger"
	"clubhub-backend/internal/repository"
)

const registrationColumns = `r.id, r.user_id, r.package_id, p.club_id, r.status, r.approver_id, r.join_reason,
	r.is_paid, r.payment_date, r.payment_method, r.order_code, r.payment_link_id, r.payment_reference,
	r.start_date, r.end_date, r.join_date, r.created_at, r.updated_at`

const selectRegistration = `SELECT ` + registrationColumns + `
	FROM registrations r JOIN membership_packages p ON p.id = r.package_id`

type registrationRepository struct {
	db *sql.DB
}

func NewRegistrationRepository(db *sql.DB) repository.RegistrationRepository {
	return &registrationRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegistration(row rowScanner) (*domain.Registration, error) {
	reg := &domain.Registration{}
	err := row.Scan(
		&reg.ID, &reg.UserID, &reg.PackageID, &reg.ClubID, &reg.Status, &reg.ApproverID, &reg.JoinReason,
		&reg.IsPaid, &reg.PaymentDate, &reg.PaymentMethod, &reg.OrderCode, &reg.PaymentLinkID, &reg.PaymentReference,
		&reg.StartDate, &reg.EndDate, &reg.JoinDate, &reg.CreatedAt, &reg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return reg, nil
}

func collectRegistrations(rows *sql.Rows) ([]domain.Registration, error) {
	defer rows.Close()

	regs := []domain.Registration{}
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, *reg)
	}
	return regs, rows.Err()
}

func statusStrings(statuses []domain.RegistrationStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func (r *registrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	logger.EnterMethod("registrationRepository.Create", "userID", reg.UserID, "packageID", reg.PackageID)

	query := `INSERT INTO registrations (user_id, package_id, status, join_reason, is_paid, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	now := time.Now()
	err := conn(ctx, r.db).QueryRowContext(ctx, query,
		reg.UserID, reg.PackageID, reg.Status, reg.JoinReason, reg.IsPaid, now, now,
	).Scan(&reg.ID)
	if err != nil {
		err = translateError(err)
		logger.ExitMethodWithError("registrationRepository.Create", err, "userID", reg.UserID)
		return err
	}
	reg.CreatedAt = now
	reg.UpdatedAt = now

	logger.ExitMethod("registrationRepository.Create", "registrationID", reg.ID)
	return nil
}

func (r *registrationRepository) GetByID(ctx context.Context, id int32) (*domain.Registration, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, selectRegistration+` WHERE r.id = $1`, id)
	reg, err := scanRegistration(row)
	return reg, translateError(err)
}

func (r *registrationRepository) LockByID(ctx context.Context, id int32) (*domain.Registration, error) {
	logger.DatabaseCall("SELECT FOR UPDATE", "registrations", "registrationID", id)
	row := conn(ctx, r.db).QueryRowContext(ctx, selectRegistration+` WHERE r.id = $1 FOR UPDATE OF r`, id)
	reg, err := scanRegistration(row)
	return reg, translateError(err)
}

const paymentAttemptColumns = `order_code, registration_id, payment_link_id, payment_reference, settled_at, created_at`

func (r *registrationRepository) AddPaymentAttempt(ctx context.Context, attempt *domain.PaymentAttempt) error {
	logger.DatabaseCall("INSERT", "payment_attempts", "registrationID", attempt.RegistrationID, "orderCode", attempt.OrderCode)

	query := `INSERT INTO payment_attempts (order_code, registration_id, payment_link_id, created_at)
	          VALUES ($1, $2, $3, $4)`
	now := time.Now()
	_, err := conn(ctx, r.db).ExecContext(ctx, query, attempt.OrderCode, attempt.RegistrationID, attempt.PaymentLinkID, now)
	if err != nil {
		err = translateError(err)
		logger.DatabaseResult("INSERT", 0, err, "orderCode", attempt.OrderCode)
		return err
	}
	attempt.CreatedAt = now
	return nil
}

func (r *registrationRepository) LockPaymentAttempt(ctx context.Context, orderCode int64) (*domain.PaymentAttempt, error) {
	logger.DatabaseCall("SELECT FOR UPDATE", "payment_attempts", "orderCode", orderCode)

	attempt := &domain.PaymentAttempt{}
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+paymentAttemptColumns+` FROM payment_attempts WHERE order_code = $1 FOR UPDATE`, orderCode,
	).Scan(&attempt.OrderCode, &attempt.RegistrationID, &attempt.PaymentLinkID, &attempt.Reference, &attempt.SettledAt, &attempt.CreatedAt)
	if err != nil {
		return nil, translateError(err)
	}
	return attempt, nil
}

// SettlePaymentAttempt records that the gateway captured money for orderCode.
// Settling an attempt twice reports ErrNotFound.
func (r *registrationRepository) SettlePaymentAttempt(ctx context.Context, orderCode int64, reference string, settledAt time.Time) error {
	query := `UPDATE payment_attempts SET settled_at = $1, payment_reference = $2
	          WHERE order_code = $3 AND settled_at IS NULL`
	res, err := conn(ctx, r.db).ExecContext(ctx, query, settledAt, reference, orderCode)
	if err != nil {
		return translateError(err)
	}
	affected, err := res.RowsAffected()
	logger.DatabaseResult("UPDATE", affected, err, "orderCode", orderCode)
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *registrationRepository) Update(ctx context.Context, reg *domain.Registration) error {
	logger.EnterMethod("registrationRepository.Update", "registrationID", reg.ID, "status", reg.Status)

	query := `
		UPDATE registrations SET
			package_id = $1,
			status = $2,
			approver_id = $3,
			is_paid = $4,
			payment_date = $5,
			payment_method = $6,
			order_code = $7,
			payment_link_id = $8,
			payment_reference = $9,
			start_date = $10,
			end_date = $11,
			join_date = $12,
			updated_at = $13
		WHERE id = $14
	`
	now := time.Now()
	res, err := conn(ctx, r.db).ExecContext(ctx, query,
		reg.PackageID, reg.Status, reg.ApproverID, reg.IsPaid, reg.PaymentDate, reg.PaymentMethod,
		reg.OrderCode, reg.PaymentLinkID, reg.PaymentReference, reg.StartDate, reg.EndDate, reg.JoinDate,
		now, reg.ID,
	)
	if err != nil {
		err = translateError(err)
		logger.ExitMethodWithError("registrationRepository.Update", err, "registrationID", reg.ID)
		return err
	}

	affected, err := res.RowsAffected()
	logger.DatabaseResult("UPDATE", affected, err, "registrationID", reg.ID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	reg.UpdatedAt = now

	logger.ExitMethod("registrationRepository.Update", "registrationID", reg.ID)
	return nil
}

func (r *registrationRepository) Delete(ctx context.Context, id int32) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM registrations WHERE id = $1`, id)
	if err != nil {
		return translateError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *registrationRepository) FindOccupying(ctx context.Context, userID, packageID int32) (*domain.Registration, error) {
	query := selectRegistration + ` WHERE r.user_id = $1 AND r.package_id = $2 AND r.status = ANY($3) LIMIT 1`
	row := conn(ctx, r.db).QueryRowContext(ctx, query, userID, packageID, pq.Array(statusStrings(domain.OccupyingStatuses)))
	reg, err := scanRegistration(row)
	return reg, translateError(err)
}

func (r *registrationRepository) HasPaidMembershipInClub(ctx context.Context, userID, clubID int32) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM registrations r JOIN membership_packages p ON p.id = r.package_id
		WHERE r.user_id = $1 AND p.club_id = $2 AND r.status = $3 AND r.is_paid
	)`
	var exists bool
	err := conn(ctx, r.db).QueryRowContext(ctx, query, userID, clubID, domain.RegistrationStatusApproved).Scan(&exists)
	return exists, translateError(err)
}

func (r *registrationRepository) ListByUser(ctx context.Context, userID int32) ([]domain.Registration, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, selectRegistration+` WHERE r.user_id = $1 ORDER BY r.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return collectRegistrations(rows)
}

func (r *registrationRepository) ListByClubAndStatus(ctx context.Context, clubID int32, statuses []domain.RegistrationStatus) ([]domain.Registration, error) {
	logger.EnterMethod("registrationRepository.ListByClubAndStatus", "clubID", clubID, "statuses", statuses)

	query := selectRegistration + ` WHERE p.club_id = $1`
	args := []any{clubID}
	if len(statuses) > 0 {
		query += ` AND r.status = ANY($2)`
		args = append(args, pq.Array(statusStrings(statuses)))
	}
	query += ` ORDER BY r.created_at ASC`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		logger.ExitMethodWithError("registrationRepository.ListByClubAndStatus", err, "clubID", clubID)
		return nil, err
	}
	regs, err := collectRegistrations(rows)
	if err != nil {
		logger.ExitMethodWithError("registrationRepository.ListByClubAndStatus", err, "clubID", clubID)
		return nil, err
	}

	logger.ExitMethod("registrationRepository.ListByClubAndStatus", "clubID", clubID, "count", len(regs))
	return regs, nil
}

// ExpireOverdue moves paid approved registrations whose window ended before now
// to EXPIRED and clears is_paid. Payment date, method and reference are kept.
func (r *registrationRepository) ExpireOverdue(ctx context.Context, now time.Time) ([]domain.Registration, error) {
	query := `
		UPDATE registrations r
		SET status = $1, is_paid = FALSE, updated_at = $2
		FROM membership_packages p
		WHERE p.id = r.package_id
		  AND r.status = $3
		  AND r.is_paid
		  AND r.end_date < $2
		RETURNING ` + registrationColumns
	logger.DatabaseCall("UPDATE", "registrations", "operation", "expire_overdue")

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, domain.RegistrationStatusExpired, now, domain.RegistrationStatusApproved)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		return nil, err
	}
	regs, err := collectRegistrations(rows)
	logger.DatabaseResult("UPDATE", int64(len(regs)), err)
	return regs, err
}

func (r *registrationRepository) ListExpiringBetween(ctx context.Context, from, to time.Time) ([]domain.Registration, error) {
	query := selectRegistration + `
		WHERE r.status = $1 AND r.is_paid AND r.end_date >= $2 AND r.end_date < $3
		ORDER BY r.end_date ASC`
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, domain.RegistrationStatusApproved, from, to)
	if err != nil {
		return nil, err
	}
	return collectRegistrations(rows)
}
