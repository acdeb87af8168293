package service

import (
	"context"
	"strings"

	repository "github.com/ds124wfegd/hotel-booking/internal/database/postgres"
	"github.com/ds124wfegd/hotel-booking/internal/entity"
)

type discountService struct {
	repo repository.DiscountRepository
}

func NewDiscountService(repo repository.DiscountRepository) DiscountService {
	return &discountService{repo: repo}
}

func (s *discountService) GetActivePackages(ctx context.Context) ([]*entity.Package, error) {
	return s.repo.GetActivePackages(ctx)
}

func (s *discountService) GetActivePromotions(ctx context.Context) ([]*entity.Promotion, error) {
	return s.repo.GetActivePromotions(ctx)
}

func (s *discountService) GetCoupon(ctx context.Context, code string) (*entity.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, entity.ErrCouponNotFound
	}
	return s.repo.GetCouponByCode(ctx, code)
}
