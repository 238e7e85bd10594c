package core

import "github.com/rushteam/shoprec/pkg/utils"

// RecommendContext 承载用户/场景/行为信号，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	UserID string // 商城侧用户 ID（身份解析由外部认证服务完成，此处只消费结果）
	Scene  string // 场景标识：home / product_detail / cart 等

	// Signals 是用户行为信号快照（搜索/评价/交互/浏览），
	// 由 Facade 在计算前一次性拉取，计算期间不可变。
	Signals *UserSignals

	// Labels 是用户级标签，可驱动整个 Pipeline 行为（新用户、高价值用户等）。
	Labels map[string]utils.Label

	// Params 请求级上下文参数（query、device_type、page 等）。
	Params map[string]any
}

// PutLabel 写入用户级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取用户级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
