package store

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/shoprec/core"
)

func newTestSQLStore(t *testing.T) *SQLStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedProducts(t *testing.T, s *SQLStore, products ...core.Product) {
	t.Helper()
	ctx := context.Background()
	for _, p := range products {
		if err := s.SaveProduct(ctx, p); err != nil {
			t.Fatalf("save product %s: %v", p.ID, err)
		}
	}
}

func TestSQLStoreCatalog(t *testing.T) {
	s := newTestSQLStore(t)
	ctx := context.Background()

	products, err := s.AllProducts(ctx)
	if err != nil {
		t.Fatalf("all products: %v", err)
	}
	if len(products) != 0 {
		t.Fatalf("expected empty catalog, got %d", len(products))
	}

	seedProducts(t, s,
		core.Product{ID: "p1", Name: "跑步鞋", Category: "鞋类", Tags: []string{"运动", "跑步"}, Price: 399, Cost: 120, Stock: 10},
		core.Product{ID: "p2", Name: "登山包", Category: "箱包", Tags: []string{"户外"}, Price: 599, Stock: 0},
	)

	products, err = s.AllProducts(ctx)
	if err != nil {
		t.Fatalf("all products: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	if products[0].ID != "p1" || products[0].Category != "鞋类" || len(products[0].Tags) != 2 {
		t.Fatalf("unexpected product: %+v", products[0])
	}

	p, err := s.GetProduct(ctx, "p2")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if p.Name != "登山包" || p.Stock != 0 {
		t.Fatalf("unexpected product: %+v", p)
	}

	if _, err := s.GetProduct(ctx, "missing"); !core.IsStoreNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	// 覆盖写入
	seedProducts(t, s, core.Product{ID: "p1", Name: "新跑步鞋", Category: "鞋类", Price: 459, Stock: 5})
	p, err = s.GetProduct(ctx, "p1")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if p.Name != "新跑步鞋" || p.Price != 459 {
		t.Fatalf("upsert not applied: %+v", p)
	}
}

func TestSQLStoreSignals(t *testing.T) {
	s := newTestSQLStore(t)
	ctx := context.Background()

	seedProducts(t, s,
		core.Product{ID: "p1", Name: "跑步鞋", Category: "鞋类", Tags: []string{"运动"}},
		core.Product{ID: "p2", Name: "登山包", Category: "箱包"},
		core.Product{ID: "p3", Name: "水壶", Category: "户外"},
	)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := s.AddSearch(ctx, "u1", "跑鞋", "p1", []string{"p1", "p2"}, base); err != nil {
		t.Fatalf("add search: %v", err)
	}
	if err := s.AddSearch(ctx, "u1", "水壶", "", []string{"p3"}, base.Add(time.Minute)); err != nil {
		t.Fatalf("add search: %v", err)
	}
	if err := s.AddReview(ctx, "u1", "p2", 4, base); err != nil {
		t.Fatalf("add review: %v", err)
	}
	if err := s.AddInteraction(ctx, "u1", "p1", core.InteractionPurchase, base); err != nil {
		t.Fatalf("add interaction: %v", err)
	}
	if err := s.AddInteraction(ctx, "u1", "p3", core.InteractionAddToCart, base.Add(time.Minute)); err != nil {
		t.Fatalf("add interaction: %v", err)
	}
	if err := s.AddView(ctx, "u1", "p3", 42, base); err != nil {
		t.Fatalf("add view: %v", err)
	}

	searches, err := s.RecentSearches(ctx, "u1", 20)
	if err != nil {
		t.Fatalf("recent searches: %v", err)
	}
	if len(searches) != 2 {
		t.Fatalf("expected 2 searches, got %d", len(searches))
	}
	// 最新在前
	if searches[0].Query != "水壶" || searches[0].Clicked != nil {
		t.Fatalf("unexpected first search: %+v", searches[0])
	}
	if searches[1].Clicked == nil || searches[1].Clicked.ID != "p1" {
		t.Fatalf("clicked product not loaded: %+v", searches[1])
	}
	if len(searches[1].ShownProducts) != 2 || searches[1].ShownProducts[0].ID != "p1" {
		t.Fatalf("shown products not loaded in position order: %+v", searches[1].ShownProducts)
	}

	reviews, err := s.ReviewsByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("reviews: %v", err)
	}
	if len(reviews) != 1 || reviews[0].Product.ID != "p2" || reviews[0].Rating != 4 {
		t.Fatalf("unexpected reviews: %+v", reviews)
	}

	interactions, err := s.RecentInteractions(ctx, "u1", 1)
	if err != nil {
		t.Fatalf("interactions: %v", err)
	}
	if len(interactions) != 1 || interactions[0].Product.ID != "p3" || interactions[0].Kind != core.InteractionAddToCart {
		t.Fatalf("window/order wrong: %+v", interactions)
	}

	views, err := s.RecentViews(ctx, "u1", 30)
	if err != nil {
		t.Fatalf("views: %v", err)
	}
	if len(views) != 1 || views[0].Product.ID != "p3" || views[0].DurationSeconds != 42 {
		t.Fatalf("unexpected views: %+v", views)
	}

	// 其他用户的行为互不可见
	other, err := s.RecentInteractions(ctx, "u2", 50)
	if err != nil {
		t.Fatalf("interactions: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected no interactions for u2, got %d", len(other))
	}
}
