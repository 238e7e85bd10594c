package core

import "context"

// CatalogStore 是商品目录的领域接口（目录快照加载器）。
//
// 契约：
//   - AllProducts 返回目录中全部在售商品，不分页：词表必须覆盖完整目录，
//     候选打分也需要遍历全部商品
//   - 返回空切片是合法结果（空目录 → 无推荐可给）
//   - 出错时由调用方（engine）降级为空目录，不向上抛
//
// 实现：
//   - store.CatalogAdapter（JSON over KV）
//   - store.SQLStore（SQLite / PostgreSQL 关系表）
type CatalogStore interface {
	// Name 返回后端名称（用于日志/监控）
	Name() string

	// AllProducts 返回全量商品快照（含类目名与标签）
	AllProducts(ctx context.Context) ([]Product, error)
}

// SignalStore 是用户行为信号的领域接口（信号聚合器的数据源）。
//
// 四路集合独立拉取、各自带时间窗口（最近优先、条数封顶）；
// 每条记录在读取时即关联商品最小投影（id/name/category/tags），
// 向量化阶段不需要二次查询。窗口默认值见 DefaultSignalWindows。
type SignalStore interface {
	// Name 返回后端名称
	Name() string

	// RecentSearches 返回最近 limit 次搜索（含点击商品与展示商品投影）
	RecentSearches(ctx context.Context, userID string, limit int) ([]SearchRecord, error)

	// ReviewsByUser 返回该用户全部评价（不限窗口）
	ReviewsByUser(ctx context.Context, userID string) ([]ReviewRecord, error)

	// RecentInteractions 返回最近 limit 条交互（加购/收藏/购买等）
	RecentInteractions(ctx context.Context, userID string, limit int) ([]InteractionRecord, error)

	// RecentViews 返回最近 limit 次浏览（含停留时长）
	RecentViews(ctx context.Context, userID string, limit int) ([]ViewRecord, error)
}

// SignalWindows 是四路信号的窗口配置。评价不设窗口。
type SignalWindows struct {
	Searches     int // 最近 N 次搜索
	Interactions int // 最近 N 条交互
	Views        int // 最近 N 次浏览
}

// DefaultSignalWindows 返回默认窗口：搜索 20 / 交互 50 / 浏览 30。
func DefaultSignalWindows() SignalWindows {
	return SignalWindows{
		Searches:     20,
		Interactions: 50,
		Views:        30,
	}
}
