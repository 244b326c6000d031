package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bloodlink/internal/utils"
	"bloodlink/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

var userColumns = utils.StructTagValues(types.User{})

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) User(ctx context.Context, userID string) (*types.User, error) {
	return r.userWhere(ctx, sq.Eq{"id": userID})
}

// UserByIdentifier looks a user up by username or email.
func (r *UserRepository) UserByIdentifier(ctx context.Context, identifier string) (*types.User, error) {
	identifier = strings.TrimSpace(identifier)
	return r.userWhere(ctx, sq.Or{
		sq.Eq{"username": identifier},
		sq.Eq{"lower(email)": strings.ToLower(identifier)},
	})
}

func (r *UserRepository) userWhere(ctx context.Context, pred sq.Sqlizer) (*types.User, error) {
	query, args, err := psql().
		Select(userColumns...).
		From(userTableName).
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user query: %w", err)
	}

	var user types.User
	err = pgxscan.Get(ctx, r.pool, &user, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	return &user, nil
}

func (r *UserRepository) Users(ctx context.Context) ([]*types.User, error) {
	query, args, err := psql().
		Select(userColumns...).
		From(userTableName).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate users query: %w", err)
	}

	users := make([]*types.User, 0)
	if err := pgxscan.Select(ctx, r.pool, &users, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}

	return users, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, user *types.User) error {
	now := time.Now()
	if user.ID == "" {
		user.ID = utils.NanoID()
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	query, args, err := psql().
		Insert(userTableName).
		SetMap(utils.StructToMap(user)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create user query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err := conflictError(err); err != nil {
		return err
	}

	return utils.ErrorWrapOrNil(err, "failed to create user")
}

func (r *UserRepository) UpdateUser(ctx context.Context, userID string, user *types.User) error {
	user.ID = userID
	user.UpdatedAt = time.Now()

	query, args, err := psql().
		Update(userTableName).
		SetMap(utils.StructToMap(user, "id", "created_at")).
		Where(sq.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update user query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err := conflictError(err); err != nil {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrUserNotFound
	}

	return nil
}

func (r *UserRepository) SetAdmin(ctx context.Context, userID string, admin bool) error {
	query, args, err := psql().
		Update(userTableName).
		Set("is_admin", admin).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate set admin query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update admin status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrUserNotFound
	}

	return nil
}

func (r *UserRepository) DeleteUser(ctx context.Context, userID string) error {
	query, args, err := psql().Delete(userTableName).Where(sq.Eq{"id": userID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete user query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrUserNotFound
	}

	return nil
}

// conflictError maps unique violations on username or email to their
// sentinel errors. Any other error, including nil, yields nil.
func conflictError(err error) error {
	constraint, ok := uniqueViolation(err)
	if !ok {
		return nil
	}

	switch {
	case strings.Contains(constraint, "username"):
		return types.ErrUsernameTaken
	default:
		return types.ErrEmailTaken
	}
}
