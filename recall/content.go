package recall

import (
	"context"
	"sort"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/feature"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/pkg/utils"
)

// ContentRecall 是基于内容的召回源（Content-Based Recommendation）。
//
// 核心思想："用户触达过具有某些类目/标签的商品，推荐特征相似的其他商品"。
//
// 打分规则：
//   - 种子集 = 用户信号中触达过的全部商品（搜索点击与展示、评价、交互、浏览）
//   - 对每个种子向量，向所有不在 seen 集合中的候选累加 cosine(seed, candidate)
//   - 累加不做种子数归一化：历史越重，信号置信度越高，分数被有意放大
//   - 候选按目录发现顺序产出，零分候选也保留（排序阶段负责截断），
//     同分时稳定排序退回该顺序，保证结果可复现
//
// 快照注入：Facade 预取目录后通过 Snapshot/Vocab 注入，避免二次拉取；
// 独立使用时只设 Catalog，召回时自行拉快照并建词表。
type ContentRecall struct {
	// Catalog 商品目录（Snapshot 为空时从这里拉取全量快照）
	Catalog core.CatalogStore

	// Snapshot 预取的目录快照（可选，Facade 注入）
	Snapshot []core.Product

	// Vocab 预建的特征词表（可选；为空时基于快照重建）
	Vocab *feature.Vocabulary

	// Metric 相似度度量，默认 cosine
	Metric Similarity

	// TopK 可选截断；<= 0 表示不截断（交给 rerank.TopN）
	TopK int
}

func (r *ContentRecall) Name() string        { return "recall.content" }
func (r *ContentRecall) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (r *ContentRecall) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口
func (r *ContentRecall) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if rctx == nil || rctx.Signals.Empty() {
		return nil, nil
	}

	products := r.Snapshot
	if products == nil {
		if r.Catalog == nil {
			return nil, nil
		}
		var err error
		products, err = r.Catalog.AllProducts(ctx)
		if err != nil {
			return nil, err
		}
	}
	if len(products) == 0 {
		return nil, nil
	}

	vocab := r.Vocab
	if vocab == nil {
		vocab = feature.NewVocabulary(products)
	}

	metric := r.Metric
	if metric == nil {
		metric = CosineSimilarity{}
	}

	seen := rctx.Signals.SeenSet()
	seeds := rctx.Signals.SeedProducts()
	if len(seeds) == 0 {
		return nil, nil
	}

	// 候选向量只算一次；候选顺序 = 目录顺序
	candidates := make([]*core.Item, 0, len(products))
	candidateVecs := make([][]float64, 0, len(products))
	for i := range products {
		if _, ok := seen[products[i].ID]; ok {
			continue
		}
		candidates = append(candidates, core.NewProductItem(&products[i]))
		candidateVecs = append(candidateVecs, vocab.Vectorize(products[i]))
	}

	for i := range seeds {
		seedVec := vocab.Vectorize(seeds[i])
		for j := range candidates {
			candidates[j].Score += metric.Score(seedVec, candidateVecs[j])
		}
	}

	for _, it := range candidates {
		it.PutLabel("recall_source", utils.Label{Value: "content", Source: "recall"})
		it.PutLabel("recall_metric", utils.Label{Value: metric.Name(), Source: "recall"})
	}

	// 独立使用时支持就地截断：先按分数稳定排序再取 TopK；
	// 在完整 Pipeline 中 TopK 置 0，排序与截断交给 rank/rerank 阶段
	if r.TopK > 0 && len(candidates) > r.TopK {
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].Score > candidates[j].Score
		})
		candidates = candidates[:r.TopK]
	}
	return candidates, nil
}
