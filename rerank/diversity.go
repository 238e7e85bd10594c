package rerank

import (
	"context"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
)

// Diversity 是一个简单的多样性 ReRank：按类目限流，
// 每个类目最多保留 MaxPerCategory 个商品（保留排序靠前的）。
// 类目来源优先级：
// - Meta["product"] 商品快照的 Category
// - label["category"].Value
type Diversity struct {
	// MaxPerCategory 每个类目最多保留的商品数，默认 1
	MaxPerCategory int

	// LabelKey 类目 label 的 key，默认 "category"
	LabelKey string
}

func (n *Diversity) Name() string        { return "rerank.diversity" }
func (n *Diversity) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	key := n.LabelKey
	if key == "" {
		key = "category"
	}
	maxPer := n.MaxPerCategory
	if maxPer <= 0 {
		maxPer = 1
	}

	counts := make(map[string]int, 32)
	out := make([]*core.Item, 0, len(items))

	for _, it := range items {
		if it == nil {
			continue
		}

		cate := ""
		if p := it.Product(); p != nil {
			cate = p.Category
		}
		if cate == "" && it.Labels != nil {
			if lbl, ok := it.Labels[key]; ok {
				cate = lbl.Value
			}
		}

		// 无类目商品不参与限流
		if cate == "" {
			out = append(out, it)
			continue
		}
		if counts[cate] >= maxPer {
			continue
		}
		counts[cate]++
		out = append(out, it)
	}

	return out, nil
}
