package filter

import (
	"context"

	"github.com/rushteam/shoprec/core"
)

// SeenFilter 是已触达过滤器：剔除用户历史中出现过的商品。
//
// 候选集不变式：出现在搜索（点击或展示）、评价、交互、浏览任一历史中的商品，
// 在本次计算内永久失去候选资格。内容召回本身也排除 seen 商品，
// 该过滤器保证其它召回路径（热销兜底、自定义 Source）同样遵守不变式：
// 交互/评分加权因此只会作用到从别的路径进入且未被触达的商品。
//
// 数据源：
//  1. rctx.Signals 中的 seen 集合（本次计算内的信号快照）
//  2. 可选的 ExposureStore（跨会话曝光列表，例如由投放侧写入）
type SeenFilter struct {
	// Store 可选的曝光历史存储
	Store ExposureStore

	// KeyPrefix 是 Store 中的 key 前缀，实际 key 为 {KeyPrefix}:{UserID}
	KeyPrefix string
}

// ExposureStore 是跨会话曝光历史的存储接口。
type ExposureStore interface {
	// ExposedProductIDs 返回用户已曝光的商品 ID 列表
	ExposedProductIDs(ctx context.Context, userID string, keyPrefix string) ([]string, error)
}

func (f *SeenFilter) Name() string { return "filter.seen" }

func (f *SeenFilter) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil || rctx == nil {
		return false, nil
	}

	if seen := rctx.Signals.SeenSet(); seen != nil {
		if _, ok := seen[item.ID]; ok {
			return true, nil
		}
	}

	if f.Store != nil && rctx.UserID != "" {
		keyPrefix := f.KeyPrefix
		if keyPrefix == "" {
			keyPrefix = "user:exposed"
		}
		exposed, err := f.Store.ExposedProductIDs(ctx, rctx.UserID, keyPrefix)
		if err == nil {
			for _, id := range exposed {
				if item.ID == id {
					return true, nil
				}
			}
		}
		// 曝光列表读取失败时放行，seen 集合已经覆盖本次计算的信号
	}

	return false, nil
}
