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

var donorColumns = utils.StructTagValues(types.Donor{})

type DonorRepository struct {
	pool *pgxpool.Pool
}

func NewDonorRepository(pool *pgxpool.Pool) *DonorRepository {
	return &DonorRepository{pool: pool}
}

// FindAvailable runs one matching tier. Only donors flagged available are
// returned, in insertion order.
func (r *DonorRepository) FindAvailable(ctx context.Context, q types.DonorQuery) ([]*types.Donor, error) {
	if len(q.BloodGroups) == 0 {
		return []*types.Donor{}, nil
	}

	builder := psql().
		Select(donorColumns...).
		From(donorTableName).
		Where(sq.Eq{"is_available": true, "blood_group": q.BloodGroups})

	if q.ExcludeCity {
		builder = builder.Where(sq.NotEq{"city": q.City})
	} else {
		builder = builder.Where(sq.Eq{"city": q.City})
	}

	builder = builder.OrderBy("created_at ASC", "id ASC")
	if q.Limit > 0 {
		builder = builder.Limit(q.Limit)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate available donors query: %w", err)
	}

	donors := make([]*types.Donor, 0)
	err = pgxscan.Select(ctx, r.pool, &donors, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch available donors: %w", err)
	}

	return donors, nil
}

func (r *DonorRepository) Donor(ctx context.Context, donorID string) (*types.Donor, error) {
	return r.donorWhere(ctx, sq.Eq{"id": donorID})
}

func (r *DonorRepository) DonorByUserID(ctx context.Context, userID string) (*types.Donor, error) {
	return r.donorWhere(ctx, sq.Eq{"user_id": userID})
}

func (r *DonorRepository) DonorByEmail(ctx context.Context, email string) (*types.Donor, error) {
	return r.donorWhere(ctx, sq.Eq{"lower(email)": strings.ToLower(strings.TrimSpace(email))})
}

func (r *DonorRepository) donorWhere(ctx context.Context, pred sq.Sqlizer) (*types.Donor, error) {
	query, args, err := psql().
		Select(donorColumns...).
		From(donorTableName).
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate donor query: %w", err)
	}

	var donor types.Donor
	err = pgxscan.Get(ctx, r.pool, &donor, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrDonorNotFound
		}
		return nil, fmt.Errorf("failed to fetch donor: %w", err)
	}

	return &donor, nil
}

// Donors returns every donor, newest first.
func (r *DonorRepository) Donors(ctx context.Context) ([]*types.Donor, error) {
	query, args, err := psql().
		Select(donorColumns...).
		From(donorTableName).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate donors query: %w", err)
	}

	donors := make([]*types.Donor, 0)
	err = pgxscan.Select(ctx, r.pool, &donors, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch donors: %w", err)
	}

	return donors, nil
}

// AvailableDonorsByBloodGroup returns available donors of exactly group,
// newest first.
func (r *DonorRepository) AvailableDonorsByBloodGroup(ctx context.Context, group types.BloodGroup) ([]*types.Donor, error) {
	query, args, err := psql().
		Select(donorColumns...).
		From(donorTableName).
		Where(sq.Eq{"blood_group": group, "is_available": true}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate donors by blood group query: %w", err)
	}

	donors := make([]*types.Donor, 0)
	err = pgxscan.Select(ctx, r.pool, &donors, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch donors by blood group: %w", err)
	}

	return donors, nil
}

func (r *DonorRepository) CreateDonor(ctx context.Context, donor *types.Donor) error {
	now := time.Now()
	if donor.ID == "" {
		donor.ID = utils.NanoID()
	}
	donor.CreatedAt = now
	donor.UpdatedAt = now

	query, args, err := psql().
		Insert(donorTableName).
		SetMap(utils.StructToMap(donor)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert donor query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if _, ok := uniqueViolation(err); ok {
		return types.ErrDuplicateDonorEmail
	}

	return utils.ErrorWrapOrNil(err, "failed to create donor")
}

func (r *DonorRepository) UpdateDonor(ctx context.Context, donorID string, donor *types.Donor) error {
	donor.ID = donorID
	donor.UpdatedAt = time.Now()

	query, args, err := psql().
		Update(donorTableName).
		SetMap(utils.StructToMap(donor, "id", "created_at")).
		Where(sq.Eq{"id": donorID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update donor query for donor %s: %w", donorID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if _, ok := uniqueViolation(err); ok {
		return types.ErrDuplicateDonorEmail
	}
	if err != nil {
		return fmt.Errorf("failed to update donor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrDonorNotFound
	}

	return nil
}

// SetAvailability flips the availability flag. When lastDonation is non-nil
// it is stored alongside.
func (r *DonorRepository) SetAvailability(ctx context.Context, donorID string, available bool, lastDonation *time.Time) error {
	builder := psql().
		Update(donorTableName).
		Set("is_available", available).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": donorID})
	if lastDonation != nil {
		builder = builder.Set("last_donation", *lastDonation)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate donor availability query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update donor availability: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrDonorNotFound
	}

	return nil
}

func (r *DonorRepository) DeleteDonor(ctx context.Context, donorID string) error {
	query, args, err := psql().Delete(donorTableName).Where(sq.Eq{"id": donorID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete donor query for donor %s: %w", donorID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete donor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrDonorNotFound
	}

	return nil
}

// DeleteDonorsByEmailSuffix removes donors whose email ends with suffix and
// reports how many rows were deleted.
func (r *DonorRepository) DeleteDonorsByEmailSuffix(ctx context.Context, suffix string) (int64, error) {
	query, args, err := psql().
		Delete(donorTableName).
		Where(sq.Like{"email": "%" + suffix}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate delete donors query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete donors: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *DonorRepository) CountDonors(ctx context.Context) (int64, error) {
	return r.count(ctx, "count(*)")
}

func (r *DonorRepository) CountCities(ctx context.Context) (int64, error) {
	return r.count(ctx, "count(DISTINCT city)")
}

func (r *DonorRepository) count(ctx context.Context, expr string) (int64, error) {
	query, args, err := psql().Select(expr).From(donorTableName).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate donor count query: %w", err)
	}

	var n int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count donors: %w", err)
	}

	return n, nil
}
