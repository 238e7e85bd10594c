package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/filter"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/rank"
	"github.com/rushteam/shoprec/recall"
	"github.com/rushteam/shoprec/rerank"
)

// DefaultLimit 是调用方未指定条数时的推荐条数。
const DefaultLimit = 10

// Engine 是推荐计算的门面：一次调用完成信号拉取、召回、过滤、加权、截断。
//
// 计算流程：
//  1. 并发拉取目录快照与四路行为信号（搜索/评价/交互/浏览）
//  2. 基于快照构建特征词表，内容召回累加种子相似度
//  3. seen 过滤（信号内已见 + 可选曝光历史）与库存过滤
//  4. 交互/评分加权后稳定降序排序
//  5. TopN 截断，回填商品快照
//
// 降级约定：任何存储读取失败都视为对应集合为空，推荐结果只会变少不会报错；
// 唯一向上传播的错误是 ctx 取消/超时。
type Engine struct {
	catalog core.CatalogStore
	signals core.SignalStore

	windows        core.SignalWindows
	metric         recall.Similarity
	boosts         map[core.InteractionKind]float64
	noRatingBoost  bool
	coldStart      recall.Source
	exposure       filter.ExposureStore
	extraFilters   []filter.Filter
	maxPerCategory int
	scene          string
}

// Option 配置 Engine。
type Option func(*Engine)

// WithSignalWindows 覆盖各路信号的读取窗口。
func WithSignalWindows(w core.SignalWindows) Option {
	return func(e *Engine) { e.windows = w }
}

// WithSimilarity 覆盖相似度度量（默认 cosine）。
func WithSimilarity(m recall.Similarity) Option {
	return func(e *Engine) { e.metric = m }
}

// WithInteractionBoosts 覆盖交互类型权重表，New 时做完整性校验。
func WithInteractionBoosts(b map[core.InteractionKind]float64) Option {
	return func(e *Engine) { e.boosts = b }
}

// WithoutRatingBoost 关闭评分加成。
func WithoutRatingBoost() Option {
	return func(e *Engine) { e.noRatingBoost = true }
}

// WithColdStartSource 设置冷启动兜底召回源（例如热销榜单）。
// 默认不设置：没有任何行为信号的用户得到空结果。
func WithColdStartSource(src recall.Source) Option {
	return func(e *Engine) { e.coldStart = src }
}

// WithExposureStore 设置跨会话曝光历史存储，seen 过滤会额外剔除其中的商品。
func WithExposureStore(s filter.ExposureStore) Option {
	return func(e *Engine) { e.exposure = s }
}

// WithFilters 追加业务过滤器（黑名单、规则 DSL 等），在内置过滤之后生效。
func WithFilters(fs ...filter.Filter) Option {
	return func(e *Engine) { e.extraFilters = append(e.extraFilters, fs...) }
}

// WithDiversity 开启类目打散，每个类目最多保留 maxPerCategory 个商品。
func WithDiversity(maxPerCategory int) Option {
	return func(e *Engine) { e.maxPerCategory = maxPerCategory }
}

// WithScene 设置场景标识（home / product_detail / cart 等），透传给各 Node。
func WithScene(scene string) Option {
	return func(e *Engine) { e.scene = scene }
}

// New 创建推荐引擎。catalog 与 signals 为必填，其余走 Option。
func New(catalog core.CatalogStore, signals core.SignalStore, opts ...Option) (*Engine, error) {
	if catalog == nil {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "catalog store is required")
	}
	if signals == nil {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "signal store is required")
	}

	e := &Engine{
		catalog: catalog,
		signals: signals,
		windows: core.DefaultSignalWindows(),
		metric:  recall.CosineSimilarity{},
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.boosts != nil {
		if err := rank.ValidateBoosts(e.boosts); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Recommendation 是一条推荐结果：商品快照加最终得分。
type Recommendation struct {
	Product core.Product `json:"product"`
	Score   float64      `json:"score"`
}

// Recommend 为用户计算内容推荐。limit <= 0 返回空结果；
// 常规调用传 DefaultLimit。
func (e *Engine) Recommend(ctx context.Context, userID string, limit int) ([]Recommendation, error) {
	if limit <= 0 {
		return []Recommendation{}, nil
	}

	snapshot, signals, err := e.fetch(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(snapshot) == 0 {
		return []Recommendation{}, nil
	}
	if signals.Empty() && e.coldStart == nil {
		return []Recommendation{}, nil
	}

	rctx := &core.RecommendContext{
		UserID:  userID,
		Scene:   e.scene,
		Signals: signals,
	}

	items, err := e.buildPipeline(snapshot, limit).Run(ctx, rctx, nil)
	if err != nil {
		return nil, err
	}

	return e.resolve(snapshot, items), nil
}

// RecommendItems 与 Recommend 相同，但返回 Pipeline 原始 Item
// （带 Labels，可用于调试召回来源与过滤原因）。
func (e *Engine) RecommendItems(ctx context.Context, userID string, limit int) ([]*core.Item, error) {
	if limit <= 0 {
		return []*core.Item{}, nil
	}

	snapshot, signals, err := e.fetch(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(snapshot) == 0 {
		return []*core.Item{}, nil
	}
	if signals.Empty() && e.coldStart == nil {
		return []*core.Item{}, nil
	}

	rctx := &core.RecommendContext{
		UserID:  userID,
		Scene:   e.scene,
		Signals: signals,
	}
	return e.buildPipeline(snapshot, limit).Run(ctx, rctx, nil)
}

// fetch 并发拉取目录快照与四路行为信号。
// 单路失败按空集合降级；只有 ctx 取消/超时会让整次计算失败。
func (e *Engine) fetch(ctx context.Context, userID string) ([]core.Product, *core.UserSignals, error) {
	var (
		snapshot []core.Product
		signals  core.UserSignals
	)

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		products, err := e.catalog.AllProducts(egCtx)
		if err != nil {
			return egCtx.Err()
		}
		snapshot = products
		return nil
	})
	eg.Go(func() error {
		searches, err := e.signals.RecentSearches(egCtx, userID, e.windows.Searches)
		if err != nil {
			return egCtx.Err()
		}
		signals.Searches = searches
		return nil
	})
	eg.Go(func() error {
		reviews, err := e.signals.ReviewsByUser(egCtx, userID)
		if err != nil {
			return egCtx.Err()
		}
		signals.Reviews = reviews
		return nil
	})
	eg.Go(func() error {
		interactions, err := e.signals.RecentInteractions(egCtx, userID, e.windows.Interactions)
		if err != nil {
			return egCtx.Err()
		}
		signals.Interactions = interactions
		return nil
	})
	eg.Go(func() error {
		views, err := e.signals.RecentViews(egCtx, userID, e.windows.Views)
		if err != nil {
			return egCtx.Err()
		}
		signals.Views = views
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	return snapshot, &signals, nil
}

func (e *Engine) buildPipeline(snapshot []core.Product, limit int) *pipeline.Pipeline {
	content := &recall.ContentRecall{
		Snapshot: snapshot,
		Metric:   e.metric,
	}

	var recallNode pipeline.Node = content
	if e.coldStart != nil {
		recallNode = &recall.Fanout{
			Sources:       []recall.Source{content, e.coldStart},
			Dedup:         true,
			MergeStrategy: "first",
		}
	}

	filters := []filter.Filter{
		&filter.SeenFilter{Store: e.exposure},
		&filter.StockFilter{},
	}
	filters = append(filters, e.extraFilters...)

	nodes := []pipeline.Node{
		recallNode,
		&filter.FilterNode{Filters: filters},
		&rank.BoostNode{
			InteractionBoosts:  e.boosts,
			DisableRatingBoost: e.noRatingBoost,
		},
	}
	if e.maxPerCategory > 0 {
		nodes = append(nodes, &rerank.Diversity{MaxPerCategory: e.maxPerCategory})
	}
	nodes = append(nodes, &rerank.TopNNode{N: limit})

	return &pipeline.Pipeline{Nodes: nodes}
}

// resolve 将存活 Item 回填为商品快照。
// 冷启动产出的裸 ID 从目录快照补全，目录中不存在的 ID 丢弃。
func (e *Engine) resolve(snapshot []core.Product, items []*core.Item) []Recommendation {
	byID := make(map[string]*core.Product, len(snapshot))
	for i := range snapshot {
		byID[snapshot[i].ID] = &snapshot[i]
	}

	out := make([]Recommendation, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		p := item.Product()
		if p == nil {
			p = byID[item.ID]
		}
		if p == nil {
			continue
		}
		out = append(out, Recommendation{Product: *p, Score: item.Score})
	}
	return out
}
