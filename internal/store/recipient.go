package store

import (
	"context"
	"fmt"
	"time"

	"bloodlink/internal/utils"
	"bloodlink/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

var recipientColumns = utils.StructTagValues(types.RecipientRequest{})

type RecipientRepository struct {
	pool *pgxpool.Pool
}

func NewRecipientRepository(pool *pgxpool.Pool) *RecipientRepository {
	return &RecipientRepository{pool: pool}
}

func (r *RecipientRepository) CreateRecipient(ctx context.Context, req *types.RecipientRequest) error {
	now := time.Now()
	if req.ID == "" {
		req.ID = utils.NanoID()
	}
	req.CreatedAt = now
	req.UpdatedAt = now

	query, args, err := psql().
		Insert(recipientTableName).
		SetMap(utils.StructToMap(req)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert recipient query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create recipient request")
}

func (r *RecipientRepository) Recipient(ctx context.Context, recipientID string) (*types.RecipientRequest, error) {
	query, args, err := psql().
		Select(recipientColumns...).
		From(recipientTableName).
		Where(sq.Eq{"id": recipientID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate recipient query: %w", err)
	}

	var req types.RecipientRequest
	err = pgxscan.Get(ctx, r.pool, &req, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrRecipientNotFound
		}
		return nil, fmt.Errorf("failed to fetch recipient request: %w", err)
	}

	return &req, nil
}

func (r *RecipientRepository) Recipients(ctx context.Context) ([]*types.RecipientRequest, error) {
	query, args, err := psql().
		Select(recipientColumns...).
		From(recipientTableName).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate recipients query: %w", err)
	}

	out := make([]*types.RecipientRequest, 0)
	if err := pgxscan.Select(ctx, r.pool, &out, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch recipient requests: %w", err)
	}

	return out, nil
}

func (r *RecipientRepository) UpdateRecipient(ctx context.Context, recipientID string, req *types.RecipientRequest) error {
	req.ID = recipientID
	req.UpdatedAt = time.Now()

	query, args, err := psql().
		Update(recipientTableName).
		SetMap(utils.StructToMap(req, "id", "created_at")).
		Where(sq.Eq{"id": recipientID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update recipient query for %s: %w", recipientID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update recipient request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrRecipientNotFound
	}

	return nil
}

func (r *RecipientRepository) DeleteRecipient(ctx context.Context, recipientID string) error {
	query, args, err := psql().Delete(recipientTableName).Where(sq.Eq{"id": recipientID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete recipient query for %s: %w", recipientID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete recipient request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrRecipientNotFound
	}

	return nil
}

func (r *RecipientRepository) CountRecipients(ctx context.Context) (int64, error) {
	query, args, err := psql().Select("count(*)").From(recipientTableName).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate recipient count query: %w", err)
	}

	var n int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count recipient requests: %w", err)
	}

	return n, nil
}
