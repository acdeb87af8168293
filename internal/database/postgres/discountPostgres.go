package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ds124wfegd/hotel-booking/internal/entity"
)

type discountRepository struct {
	db *sql.DB
}

func NewDiscountRepository(db *sql.DB) DiscountRepository {
	return &discountRepository{db: db}
}

func (r *discountRepository) GetPackageByID(ctx context.Context, id int64) (*entity.Package, error) {
	var pkg entity.Package
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, type, value, valid_from, valid_to, active
		FROM packages WHERE id = $1`, id,
	).Scan(
		&pkg.ID,
		&pkg.Name,
		&pkg.Type,
		&pkg.Value,
		&pkg.ValidFrom,
		&pkg.ValidTo,
		&pkg.Active,
	)

	if err == sql.ErrNoRows {
		return nil, entity.ErrPackageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get package: %v", err)
	}

	return &pkg, nil
}

func (r *discountRepository) GetPromotionByID(ctx context.Context, id int64) (*entity.Promotion, error) {
	var promo entity.Promotion
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, discount_type, discount_value, valid_from, valid_to, active, applicable_rooms
		FROM promotions WHERE id = $1`, id,
	).Scan(
		&promo.ID,
		&promo.Name,
		&promo.DiscountType,
		&promo.DiscountValue,
		&promo.ValidFrom,
		&promo.ValidTo,
		&promo.Active,
		&promo.ApplicableRooms,
	)

	if err == sql.ErrNoRows {
		return nil, entity.ErrPromotionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get promotion: %v", err)
	}

	return &promo, nil
}

func (r *discountRepository) GetCouponByCode(ctx context.Context, code string) (*entity.Coupon, error) {
	var coupon entity.Coupon
	var usageLimit sql.NullInt64
	err := r.db.QueryRowContext(ctx, `
		SELECT id, code, discount_type, discount_value, usage_limit, used_count,
		       valid_from, valid_to, active
		FROM coupons WHERE code = $1`, code,
	).Scan(
		&coupon.ID,
		&coupon.Code,
		&coupon.DiscountType,
		&coupon.DiscountValue,
		&usageLimit,
		&coupon.UsedCount,
		&coupon.ValidFrom,
		&coupon.ValidTo,
		&coupon.Active,
	)

	if err == sql.ErrNoRows {
		return nil, entity.ErrCouponNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get coupon: %v", err)
	}

	if usageLimit.Valid {
		limit := int(usageLimit.Int64)
		coupon.UsageLimit = &limit
	}

	return &coupon, nil
}

func (r *discountRepository) GetActivePackages(ctx context.Context) ([]*entity.Package, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, type, value, valid_from, valid_to, active
		FROM packages
		WHERE active = true AND valid_to >= NOW()
		ORDER BY valid_from`)
	if err != nil {
		return nil, fmt.Errorf("failed to query packages: %v", err)
	}
	defer rows.Close()

	var packages []*entity.Package
	for rows.Next() {
		var pkg entity.Package
		err := rows.Scan(
			&pkg.ID,
			&pkg.Name,
			&pkg.Type,
			&pkg.Value,
			&pkg.ValidFrom,
			&pkg.ValidTo,
			&pkg.Active,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan package: %v", err)
		}
		packages = append(packages, &pkg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating packages: %v", err)
	}

	return packages, nil
}

func (r *discountRepository) GetActivePromotions(ctx context.Context) ([]*entity.Promotion, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, discount_type, discount_value, valid_from, valid_to, active, applicable_rooms
		FROM promotions
		WHERE active = true AND valid_to >= NOW()
		ORDER BY valid_from`)
	if err != nil {
		return nil, fmt.Errorf("failed to query promotions: %v", err)
	}
	defer rows.Close()

	var promotions []*entity.Promotion
	for rows.Next() {
		var promo entity.Promotion
		err := rows.Scan(
			&promo.ID,
			&promo.Name,
			&promo.DiscountType,
			&promo.DiscountValue,
			&promo.ValidFrom,
			&promo.ValidTo,
			&promo.Active,
			&promo.ApplicableRooms,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan promotion: %v", err)
		}
		promotions = append(promotions, &promo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating promotions: %v", err)
	}

	return promotions, nil
}
