package postgres

import (
	"context"
	"database/sql"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/repository"
)

type membershipPackageRepository struct {
	db *sql.DB
}

func NewMembershipPackageRepository(db *sql.DB) repository.MembershipPackageRepository {
	return &membershipPackageRepository{db: db}
}

func (r *membershipPackageRepository) GetByID(ctx context.Context, id int32) (*domain.MembershipPackage, error) {
	pkg := &domain.MembershipPackage{}
	query := `SELECT id, club_id, name, price, term_months, is_active FROM membership_packages WHERE id = $1`
	err := conn(ctx, r.db).QueryRowContext(ctx, query, id).Scan(&pkg.ID, &pkg.ClubID, &pkg.Name, &pkg.Price, &pkg.TermMonths, &pkg.IsActive)
	if err != nil {
		return nil, translateError(err)
	}
	return pkg, nil
}
