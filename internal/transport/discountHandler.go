package transport

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ds124wfegd/hotel-booking/internal/service"
)

type DiscountHandler struct {
	discountService service.DiscountService
}

func NewDiscountHandler(discountService service.DiscountService) *DiscountHandler {
	return &DiscountHandler{discountService: discountService}
}

func (h *DiscountHandler) GetActivePackages(c *gin.Context) {
	packages, err := h.discountService.GetActivePackages(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Packages retrieved successfully",
		Data:    packages,
	})
}

func (h *DiscountHandler) GetActivePromotions(c *gin.Context) {
	promotions, err := h.discountService.GetActivePromotions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Promotions retrieved successfully",
		Data:    promotions,
	})
}

// GetCoupon возвращает купон по коду вместе с признаком применимости
func (h *DiscountHandler) GetCoupon(c *gin.Context) {
	coupon, err := h.discountService.GetCoupon(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Coupon retrieved successfully",
		Data:    coupon,
		Meta: map[string]interface{}{
			"valid":     coupon.ValidAt(time.Now()),
			"exhausted": coupon.Exhausted(),
		},
	})
}
