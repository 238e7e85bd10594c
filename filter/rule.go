package filter

import (
	"context"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pkg/dsl"
)

// RuleFilter 是规则过滤器：用 CEL 表达式描述剔除条件，表达式为 true 时剔除。
//
// 示例：
//   - `item.price > 9999.0`：剔除高价商品
//   - `label.category == "adult"`：剔除特定类目
//   - `label.recall_source.contains("popular") && item.score == 0.0`
//
// 运营侧的临时规则走配置下发即可，不必为每条规则发版。
// 表达式求值失败时放行该商品（降级原则：宁可多推，不可整链失败）。
type RuleFilter struct {
	// Expr CEL 表达式，为 true 时商品被剔除
	Expr string
}

func NewRuleFilter(expr string) *RuleFilter {
	return &RuleFilter{Expr: expr}
}

func (f *RuleFilter) Name() string { return "filter.rule" }

func (f *RuleFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	if f.Expr == "" {
		return false, nil
	}

	matched, err := dsl.NewEval(item, rctx).Evaluate(f.Expr)
	if err != nil {
		return false, nil
	}
	return matched, nil
}
