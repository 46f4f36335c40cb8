package promo

import (
	"context"

	"github.com/xraph/credits/id"
)

type Store interface {
	Create(ctx context.Context, p *Promotion) error
	Get(ctx context.Context, promotionID id.PromotionID) (*Promotion, error)
	List(ctx context.Context, opts ListOpts) ([]*Promotion, error)
	Update(ctx context.Context, p *Promotion) error
}
