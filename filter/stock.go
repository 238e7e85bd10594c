package filter

import (
	"context"

	"github.com/rushteam/shoprec/core"
)

// StockFilter 是库存过滤器：剔除库存不足的商品。
// 只对携带商品快照（Meta["product"]）的 Item 生效，
// 没有快照的 Item（例如冷启动榜单产出的裸 ID）放行，由上层决定是否补快照。
type StockFilter struct {
	// MinStock 最低库存，默认 1（库存为 0 即剔除）
	MinStock int
}

func (f *StockFilter) Name() string { return "filter.stock" }

func (f *StockFilter) ShouldFilter(
	_ context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	p := item.Product()
	if p == nil {
		return false, nil
	}
	minStock := f.MinStock
	if minStock <= 0 {
		minStock = 1
	}
	return p.Stock < minStock, nil
}
