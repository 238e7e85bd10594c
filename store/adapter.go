package store

import (
	"context"
	"encoding/json"

	"github.com/rushteam/shoprec/core"
)

// CatalogAdapter 是基于 core.Store 的目录快照适配器。
// 全量商品以 JSON 数组存于单个 key（离线任务定期刷写），
// 读取即一次 Get + Unmarshal，满足"全量快照、不分页"的目录契约。
//
// key 约定：{KeyPrefix}:products
type CatalogAdapter struct {
	store core.Store

	// KeyPrefix 是存储 key 的前缀，默认 "catalog"
	KeyPrefix string
}

// NewCatalogAdapter 创建一个基于 core.Store 的目录适配器。
func NewCatalogAdapter(s core.Store, keyPrefix string) *CatalogAdapter {
	if keyPrefix == "" {
		keyPrefix = "catalog"
	}
	return &CatalogAdapter{store: s, KeyPrefix: keyPrefix}
}

func (a *CatalogAdapter) Name() string { return "catalog." + a.store.Name() }

func (a *CatalogAdapter) AllProducts(ctx context.Context) ([]core.Product, error) {
	data, err := a.store.Get(ctx, a.KeyPrefix+":products")
	if err != nil {
		if core.IsStoreNotFound(err) {
			return []core.Product{}, nil
		}
		return nil, err
	}

	var products []core.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// SaveProducts 刷写全量目录快照（供离线同步任务使用）。
func (a *CatalogAdapter) SaveProducts(ctx context.Context, products []core.Product, ttl ...int) error {
	data, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return a.store.Set(ctx, a.KeyPrefix+":products", data, ttl...)
}

var _ core.CatalogStore = (*CatalogAdapter)(nil)

// SignalAdapter 是基于 core.Store 的行为信号适配器。
// 每路信号按用户存一个 key，JSON 数组按时间倒序（最新在前），
// 窗口截断在读取侧完成。
//
// key 约定：
//
//	搜索：{KeyPrefix}:searches:{userID}
//	评价：{KeyPrefix}:reviews:{userID}
//	交互：{KeyPrefix}:interactions:{userID}
//	浏览：{KeyPrefix}:views:{userID}
type SignalAdapter struct {
	store core.Store

	// KeyPrefix 是存储 key 的前缀，默认 "signals"
	KeyPrefix string
}

// NewSignalAdapter 创建一个基于 core.Store 的信号适配器。
func NewSignalAdapter(s core.Store, keyPrefix string) *SignalAdapter {
	if keyPrefix == "" {
		keyPrefix = "signals"
	}
	return &SignalAdapter{store: s, KeyPrefix: keyPrefix}
}

func (a *SignalAdapter) Name() string { return "signal." + a.store.Name() }

func (a *SignalAdapter) RecentSearches(ctx context.Context, userID string, limit int) ([]core.SearchRecord, error) {
	var out []core.SearchRecord
	if err := a.load(ctx, "searches", userID, &out); err != nil {
		return nil, err
	}
	return truncate(out, limit), nil
}

func (a *SignalAdapter) ReviewsByUser(ctx context.Context, userID string) ([]core.ReviewRecord, error) {
	var out []core.ReviewRecord
	if err := a.load(ctx, "reviews", userID, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *SignalAdapter) RecentInteractions(ctx context.Context, userID string, limit int) ([]core.InteractionRecord, error) {
	var out []core.InteractionRecord
	if err := a.load(ctx, "interactions", userID, &out); err != nil {
		return nil, err
	}
	return truncate(out, limit), nil
}

func (a *SignalAdapter) RecentViews(ctx context.Context, userID string, limit int) ([]core.ViewRecord, error) {
	var out []core.ViewRecord
	if err := a.load(ctx, "views", userID, &out); err != nil {
		return nil, err
	}
	return truncate(out, limit), nil
}

// SaveSearches 等写入方法供信号采集侧/测试使用，写入前应保证最新在前。

func (a *SignalAdapter) SaveSearches(ctx context.Context, userID string, records []core.SearchRecord) error {
	return a.save(ctx, "searches", userID, records)
}

func (a *SignalAdapter) SaveReviews(ctx context.Context, userID string, records []core.ReviewRecord) error {
	return a.save(ctx, "reviews", userID, records)
}

func (a *SignalAdapter) SaveInteractions(ctx context.Context, userID string, records []core.InteractionRecord) error {
	return a.save(ctx, "interactions", userID, records)
}

func (a *SignalAdapter) SaveViews(ctx context.Context, userID string, records []core.ViewRecord) error {
	return a.save(ctx, "views", userID, records)
}

func (a *SignalAdapter) key(kind, userID string) string {
	return a.KeyPrefix + ":" + kind + ":" + userID
}

func (a *SignalAdapter) load(ctx context.Context, kind, userID string, out any) error {
	data, err := a.store.Get(ctx, a.key(kind, userID))
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, out)
}

func (a *SignalAdapter) save(ctx context.Context, kind, userID string, records any) error {
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return a.store.Set(ctx, a.key(kind, userID), data)
}

// ExposureAdapter 基于 core.Store 的曝光历史适配器，
// 满足 filter.SeenFilter 的 ExposureStore 依赖。
// key 约定：{keyPrefix}:{userID}，值为 JSON 商品 ID 数组。
type ExposureAdapter struct {
	store core.Store
}

// NewExposureAdapter 创建曝光历史适配器。
func NewExposureAdapter(s core.Store) *ExposureAdapter {
	return &ExposureAdapter{store: s}
}

func (a *ExposureAdapter) ExposedProductIDs(ctx context.Context, userID string, keyPrefix string) ([]string, error) {
	data, err := a.store.Get(ctx, keyPrefix+":"+userID)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// AppendExposure 追加本次曝光的商品 ID（供曝光上报侧使用）。
func (a *ExposureAdapter) AppendExposure(ctx context.Context, userID, keyPrefix string, productIDs []string, ttl ...int) error {
	existing, err := a.ExposedProductIDs(ctx, userID, keyPrefix)
	if err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		seen[id] = struct{}{}
	}
	for _, id := range productIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		existing = append(existing, id)
		seen[id] = struct{}{}
	}

	data, err := json.Marshal(existing)
	if err != nil {
		return err
	}
	return a.store.Set(ctx, keyPrefix+":"+userID, data, ttl...)
}

func truncate[T any](s []T, limit int) []T {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}

var _ core.SignalStore = (*SignalAdapter)(nil)
