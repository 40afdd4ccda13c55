package postgres

import (
	"context"
	"database/sql"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/repository"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	user := &domain.User{}
	query := `SELECT id, email, name, COALESCE(student_id, '') FROM users WHERE id = $1`
	err := conn(ctx, r.db).QueryRowContext(ctx, query, id).Scan(&user.ID, &user.Email, &user.Name, &user.StudentID)
	if err != nil {
		return nil, translateError(err)
	}
	return user, nil
}
