package rank

import (
	"context"
	"fmt"
	"sort"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/pkg/utils"
)

// DefaultInteractionBoosts 返回默认的交互类型加权表。
// 权重语义：购买 > 收藏 > 评价 > 其余（加购/取消类统一 1.0）。
// 表对全部 InteractionKind 显式列举，ValidateBoosts 校验完整性，
// 不允许静默漏项落入默认值。
func DefaultInteractionBoosts() map[core.InteractionKind]float64 {
	return map[core.InteractionKind]float64{
		core.InteractionPurchase:           2.0,
		core.InteractionAddToWishlist:      1.5,
		core.InteractionReview:             1.2,
		core.InteractionAddToCart:          1.0,
		core.InteractionRemoveFromCart:     1.0,
		core.InteractionRemoveFromWishlist: 1.0,
	}
}

// ValidateBoosts 校验加权表覆盖全部交互类型，漏项时报错。
func ValidateBoosts(boosts map[core.InteractionKind]float64) error {
	for _, kind := range core.AllInteractionKinds() {
		if _, ok := boosts[kind]; !ok {
			return core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput,
				fmt.Sprintf("rank: boost table missing interaction kind %q", kind))
		}
	}
	return nil
}

// RatingBoost 返回评分加成：4~5 星 1.5，3 星 1.0，其余 0.5。
func RatingBoost(rating int) float64 {
	switch {
	case rating >= 4:
		return 1.5
	case rating >= 3:
		return 1.0
	default:
		return 0.5
	}
}

// BoostNode 是加权排序 Node：在内容相似度分数之上叠加行为加成，然后排序。
//
// 两轮加成（只作用于仍在候选集中的商品）：
//  1. 交互加成：每条交互记录按类型权重累加到对应商品分数
//  2. 评分加成：每条评价按星级权重累加
//
// 已触达商品在过滤阶段即被剔除，因此这两轮加成只会命中
// 经其它召回路径进入且未被触达的商品。这是有意的行为收敛，
// 不是让历史商品重新上榜的后门。
//
// 排序：按累积分数降序稳定排序，同分保持候选发现顺序，结果可复现。
type BoostNode struct {
	// InteractionBoosts 交互类型权重表；为空时使用 DefaultInteractionBoosts
	InteractionBoosts map[core.InteractionKind]float64

	// DefaultBoost 未登记交互类型的权重，默认 1.0
	DefaultBoost float64

	// DisableRatingBoost 关闭评分加成（默认开启）
	DisableRatingBoost bool
}

func (n *BoostNode) Name() string        { return "rank.boost" }
func (n *BoostNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *BoostNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	boosts := n.InteractionBoosts
	if boosts == nil {
		boosts = DefaultInteractionBoosts()
	}
	defaultBoost := n.DefaultBoost
	if defaultBoost == 0 {
		defaultBoost = 1.0
	}

	if rctx != nil && rctx.Signals != nil {
		byID := make(map[string]*core.Item, len(items))
		for _, it := range items {
			if it != nil {
				byID[it.ID] = it
			}
		}

		for _, rec := range rctx.Signals.Interactions {
			it, ok := byID[rec.Product.ID]
			if !ok {
				continue
			}
			w, ok := boosts[rec.Kind]
			if !ok {
				w = defaultBoost
			}
			it.Score += w
			it.PutLabel("boost", utils.Label{Value: string(rec.Kind), Source: "rank"})
		}

		if !n.DisableRatingBoost {
			for _, rev := range rctx.Signals.Reviews {
				it, ok := byID[rev.Product.ID]
				if !ok {
					continue
				}
				it.Score += RatingBoost(rev.Rating)
				it.PutLabel("boost", utils.Label{Value: "rating", Source: "rank"})
			}
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i] == nil {
			return false
		}
		if items[j] == nil {
			return true
		}
		return items[i].Score > items[j].Score
	})
	return items, nil
}
