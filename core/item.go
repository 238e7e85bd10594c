package core

import "github.com/rushteam/shoprec/pkg/utils"

// Item 是推荐链路中的统一承载结构：候选商品的分数、特征、元信息、标签。
// ID 为商品 ID；Score 在召回/加权阶段累积，用于最终排序决策；
// Meta["product"] 携带 *Product 快照，排序截断后据此还原完整商品记录。
type Item struct {
	ID       string
	Score    float64
	Features map[string]float64
	Meta     map[string]any
	Labels   map[string]utils.Label
}

func NewItem(id string) *Item {
	return &Item{
		ID:       id,
		Score:    0,
		Features: make(map[string]float64),
		Meta:     make(map[string]any),
		Labels:   make(map[string]utils.Label),
	}
}

// NewProductItem 以商品快照构建 Item，并带上 category label（供多样性重排等使用）。
func NewProductItem(p *Product) *Item {
	it := NewItem(p.ID)
	it.Meta["product"] = p
	if p.Category != "" {
		it.Labels["category"] = utils.Label{Value: p.Category, Source: "catalog"}
	}
	return it
}

// Product 返回 Meta 中携带的商品快照；未携带时返回 nil。
func (it *Item) Product() *Product {
	if it == nil || it.Meta == nil {
		return nil
	}
	if p, ok := it.Meta["product"].(*Product); ok {
		return p
	}
	return nil
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}
