package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/logger"
	"clubhub-backend/internal/repository"
)

type clubRepository struct {
	db *sql.DB
}

func NewClubRepository(db *sql.DB) repository.ClubRepository {
	return &clubRepository{db: db}
}

func (r *clubRepository) GetByID(ctx context.Context, id int32) (*domain.Club, error) {
	club := &domain.Club{}
	err := conn(ctx, r.db).QueryRowContext(ctx, `SELECT id, name FROM clubs WHERE id = $1`, id).Scan(&club.ID, &club.Name)
	if err != nil {
		return nil, translateError(err)
	}
	return club, nil
}

type clubRoleRepository struct {
	db *sql.DB
}

func NewClubRoleRepository(db *sql.DB) repository.ClubRoleRepository {
	return &clubRoleRepository{db: db}
}

// ListLeaderClubIDs returns the clubs in which the user holds a president or vice-president role.
func (r *clubRoleRepository) ListLeaderClubIDs(ctx context.Context, userID int32) ([]int32, error) {
	query := `SELECT club_id FROM club_roles WHERE user_id = $1 AND role = ANY($2) ORDER BY club_id`
	leaderRoles := []string{}
	for _, role := range domain.LeadershipRoles() {
		leaderRoles = append(leaderRoles, string(role))
	}
	logger.DatabaseCall("SELECT", query, "userID", userID)

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, userID, pq.Array(leaderRoles))
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err, "userID", userID)
		return nil, err
	}
	defer rows.Close()

	clubIDs := []int32{}
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		clubIDs = append(clubIDs, id)
	}
	logger.DatabaseResult("SELECT", int64(len(clubIDs)), rows.Err(), "userID", userID)
	return clubIDs, rows.Err()
}
