package core

// InteractionKind 是用户-商品交互的枚举类型。
// 使用封闭的常量集合而非裸字符串，权重表可据此做完整性校验。
type InteractionKind string

const (
	InteractionAddToCart          InteractionKind = "add_to_cart"
	InteractionRemoveFromCart     InteractionKind = "remove_from_cart"
	InteractionAddToWishlist      InteractionKind = "add_to_wishlist"
	InteractionRemoveFromWishlist InteractionKind = "remove_from_wishlist"
	InteractionPurchase           InteractionKind = "purchase"
	InteractionReview             InteractionKind = "review"
)

// AllInteractionKinds 返回全部交互类型（固定顺序），用于权重表完整性校验。
func AllInteractionKinds() []InteractionKind {
	return []InteractionKind{
		InteractionAddToCart,
		InteractionRemoveFromCart,
		InteractionAddToWishlist,
		InteractionRemoveFromWishlist,
		InteractionPurchase,
		InteractionReview,
	}
}

// ParseInteractionKind 将存储层的字符串解析为 InteractionKind。
// 未知类型原样保留（打分时按默认权重处理），不报错。
func ParseInteractionKind(s string) InteractionKind {
	return InteractionKind(s)
}

// SearchRecord 是一次搜索行为：查询词、用户直接点击的商品（可选）、
// 该次查询展示过的商品列表。商品投影在读取时一并关联，向量化无需二次查询。
type SearchRecord struct {
	Query         string    `json:"search_query"`
	Clicked       *Product  `json:"product,omitempty"`
	ShownProducts []Product `json:"searched_products,omitempty"`
}

// ReviewRecord 是用户的一条评价：商品投影 + 1~5 星评分。
type ReviewRecord struct {
	Product Product `json:"product"`
	Rating  int     `json:"rating"`
}

// InteractionRecord 是一条交互事实：商品投影 + 交互类型。
// 存储层按时间倒序返回，调用方只读最近的一个窗口。
type InteractionRecord struct {
	Product Product         `json:"product"`
	Kind    InteractionKind `json:"interaction_type"`
}

// ViewRecord 是一次商品浏览：商品投影 + 停留时长（秒）。
// 时长目前只采不用（未参与加权），保留字段以便后续引入时长权重。
type ViewRecord struct {
	Product         Product `json:"product"`
	DurationSeconds int     `json:"view_duration_seconds"`
}

// UserSignals 是一个用户的行为信号汇总：搜索、评价、交互、浏览四路独立拉取的集合。
// 推荐计算期间不可变；seen 集合在首次访问时构建并缓存（单次计算内复用，
// 不跨计算共享，也不做并发初始化保护，一次计算只在一个 goroutine 中消费）。
type UserSignals struct {
	Searches     []SearchRecord      `json:"searches"`
	Reviews      []ReviewRecord      `json:"reviews"`
	Interactions []InteractionRecord `json:"interactions"`
	Views        []ViewRecord        `json:"views"`

	seenIDs []string
	seenSet map[string]struct{}
}

// Empty 判断信号是否完全为空（新用户 / 拉取失败降级后的状态）。
func (s *UserSignals) Empty() bool {
	if s == nil {
		return true
	}
	return len(s.Searches) == 0 && len(s.Reviews) == 0 &&
		len(s.Interactions) == 0 && len(s.Views) == 0
}

// SeenProductIDs 返回用户触达过的所有商品 ID，按首次出现顺序去重。
// 顺序固定：搜索（点击商品在前、展示商品在后）→ 评价 → 交互 → 浏览，
// 该顺序同时决定内容召回中种子商品的遍历顺序，保证结果可复现。
func (s *UserSignals) SeenProductIDs() []string {
	if s == nil {
		return nil
	}
	if s.seenIDs != nil {
		return s.seenIDs
	}
	s.buildSeen()
	return s.seenIDs
}

// SeenSet 返回 seen 集合的 map 视图，用于 O(1) 候选排除。
func (s *UserSignals) SeenSet() map[string]struct{} {
	if s == nil {
		return nil
	}
	if s.seenSet != nil {
		return s.seenSet
	}
	s.buildSeen()
	return s.seenSet
}

// SeedProducts 返回种子商品投影（携带类目与标签），按首次出现顺序去重。
// 种子即 seen 集合中的商品，内容召回以它们为正信号源。
func (s *UserSignals) SeedProducts() []Product {
	if s == nil {
		return nil
	}
	seen := make(map[string]struct{})
	out := make([]Product, 0)
	add := func(p *Product) {
		if p == nil || p.ID == "" {
			return
		}
		if _, ok := seen[p.ID]; ok {
			return
		}
		seen[p.ID] = struct{}{}
		out = append(out, *p)
	}
	for i := range s.Searches {
		add(s.Searches[i].Clicked)
		for j := range s.Searches[i].ShownProducts {
			add(&s.Searches[i].ShownProducts[j])
		}
	}
	for i := range s.Reviews {
		add(&s.Reviews[i].Product)
	}
	for i := range s.Interactions {
		add(&s.Interactions[i].Product)
	}
	for i := range s.Views {
		add(&s.Views[i].Product)
	}
	return out
}

func (s *UserSignals) buildSeen() {
	set := make(map[string]struct{})
	ids := make([]string, 0)
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := set[id]; ok {
			return
		}
		set[id] = struct{}{}
		ids = append(ids, id)
	}
	for i := range s.Searches {
		if s.Searches[i].Clicked != nil {
			add(s.Searches[i].Clicked.ID)
		}
		for j := range s.Searches[i].ShownProducts {
			add(s.Searches[i].ShownProducts[j].ID)
		}
	}
	for i := range s.Reviews {
		add(s.Reviews[i].Product.ID)
	}
	for i := range s.Interactions {
		add(s.Interactions[i].Product.ID)
	}
	for i := range s.Views {
		add(s.Views[i].Product.ID)
	}
	s.seenSet = set
	s.seenIDs = ids
}
