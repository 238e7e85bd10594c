// Package feature 实现特征向量化：把商品的类目与标签映射到一次计算内共享的向量空间。
package feature

import "github.com/rushteam/shoprec/core"

// Vocabulary 是一次推荐计算内共享的特征词表：
// 全目录去重后的类目序列 + 标签序列，类目段在前、标签段在后，
// 数组下标即特征维度偏移。
//
// 设计要点：
//   - 每次计算基于目录快照重建，作为不可变值显式传入向量化与相似度调用，
//     不做全局/包级状态
//   - 同一词表产出的所有向量维度一致（|categories| + |tags|），
//     这是余弦相似度成立的前提
//   - 收集顺序为首次出现顺序，保证同一快照下结果可复现
type Vocabulary struct {
	categories []string
	tags       []string
	catIndex   map[string]int
	tagIndex   map[string]int
}

// NewVocabulary 扫描目录快照构建词表。
// 空类目被丢弃；类目与标签各自按首次出现顺序去重。
func NewVocabulary(products []core.Product) *Vocabulary {
	v := &Vocabulary{
		categories: make([]string, 0),
		tags:       make([]string, 0),
		catIndex:   make(map[string]int),
		tagIndex:   make(map[string]int),
	}
	for i := range products {
		if c := products[i].Category; c != "" {
			if _, ok := v.catIndex[c]; !ok {
				v.catIndex[c] = len(v.categories)
				v.categories = append(v.categories, c)
			}
		}
		for _, t := range products[i].Tags {
			if t == "" {
				continue
			}
			if _, ok := v.tagIndex[t]; !ok {
				v.tagIndex[t] = len(v.tags)
				v.tags = append(v.tags, t)
			}
		}
	}
	return v
}

// Dim 返回特征空间维度：|categories| + |tags|。
func (v *Vocabulary) Dim() int {
	return len(v.categories) + len(v.tags)
}

// Categories 返回类目序列（只读视图，调用方不应修改）。
func (v *Vocabulary) Categories() []string { return v.categories }

// Tags 返回标签序列（只读视图，调用方不应修改）。
func (v *Vocabulary) Tags() []string { return v.tags }

// Vectorize 把商品映射为 0/1 向量：类目段 one-hot，标签段 multi-hot。
// 纯函数：输出只取决于 (product, vocabulary)。
// 类目或标签不在词表中时静默置零，不报错。跨快照的陈旧投影
// （例如信号里携带的已下架商品）对相应维度贡献为零。
func (v *Vocabulary) Vectorize(p core.Product) []float64 {
	vec := make([]float64, v.Dim())
	if p.Category != "" {
		if idx, ok := v.catIndex[p.Category]; ok {
			vec[idx] = 1
		}
	}
	base := len(v.categories)
	for _, t := range p.Tags {
		if idx, ok := v.tagIndex[t]; ok {
			vec[base+idx] = 1
		}
	}
	return vec
}
