package plan

import (
	"context"

	"github.com/xraph/credits/id"
)

type Store interface {
	Create(ctx context.Context, p *WalletPlan) error
	Get(ctx context.Context, planID id.WalletPlanID) (*WalletPlan, error)
	GetBySlug(ctx context.Context, slug string) (*WalletPlan, error)
	List(ctx context.Context, opts ListOpts) ([]*WalletPlan, error)
	Update(ctx context.Context, p *WalletPlan) error
}
