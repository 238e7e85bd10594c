package store

import (
	"context"
	"testing"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/filter"
)

func TestCatalogAdapterRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	catalog := NewCatalogAdapter(s, "")

	// 空目录：key 不存在时返回空切片而不是错误
	products, err := catalog.AllProducts(ctx)
	if err != nil {
		t.Fatalf("all products: %v", err)
	}
	if len(products) != 0 {
		t.Fatalf("expected empty catalog, got %d", len(products))
	}

	want := []core.Product{
		{ID: "p1", Name: "跑步鞋", Category: "鞋类", Tags: []string{"运动", "跑步"}, Price: 399, Stock: 10},
		{ID: "p2", Name: "登山包", Category: "箱包", Tags: []string{"户外"}, Price: 599, Stock: 3},
	}
	if err := catalog.SaveProducts(ctx, want); err != nil {
		t.Fatalf("save products: %v", err)
	}

	got, err := catalog.AllProducts(ctx)
	if err != nil {
		t.Fatalf("all products: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 products, got %d", len(got))
	}
	if got[0].ID != "p1" || got[1].ID != "p2" {
		t.Fatalf("order not preserved: %v", got)
	}
	if got[0].Category != "鞋类" || len(got[0].Tags) != 2 {
		t.Fatalf("product fields lost: %+v", got[0])
	}
}

func TestSignalAdapterWindows(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	signals := NewSignalAdapter(s, "")

	clicked := core.Product{ID: "p1", Name: "跑步鞋"}
	searches := []core.SearchRecord{
		{Query: "跑鞋", Clicked: &clicked},
		{Query: "登山包"},
		{Query: "水壶"},
	}
	if err := signals.SaveSearches(ctx, "u1", searches); err != nil {
		t.Fatalf("save searches: %v", err)
	}

	got, err := signals.RecentSearches(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("recent searches: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("window not applied, got %d records", len(got))
	}
	if got[0].Query != "跑鞋" || got[0].Clicked == nil || got[0].Clicked.ID != "p1" {
		t.Fatalf("unexpected first record: %+v", got[0])
	}

	// limit <= 0 表示不截断
	all, err := signals.RecentSearches(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("recent searches: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected all 3 records, got %d", len(all))
	}
}

func TestExposureAdapter(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	exposure := NewExposureAdapter(s)

	// filter.SeenFilter 依赖的接口
	var _ filter.ExposureStore = exposure

	ids, err := exposure.ExposedProductIDs(ctx, "u1", "user:exposed")
	if err != nil {
		t.Fatalf("exposed: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected empty exposure list, got %v", ids)
	}

	if err := exposure.AppendExposure(ctx, "u1", "user:exposed", []string{"p1", "p2"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	// 重复 ID 去重
	if err := exposure.AppendExposure(ctx, "u1", "user:exposed", []string{"p2", "p3"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	ids, err = exposure.ExposedProductIDs(ctx, "u1", "user:exposed")
	if err != nil {
		t.Fatalf("exposed: %v", err)
	}
	if len(ids) != 3 || ids[0] != "p1" || ids[2] != "p3" {
		t.Fatalf("unexpected exposure list: %v", ids)
	}
}

func TestSignalAdapterMissingUser(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	signals := NewSignalAdapter(s, "")

	searches, err := signals.RecentSearches(ctx, "nobody", 20)
	if err != nil {
		t.Fatalf("recent searches: %v", err)
	}
	if len(searches) != 0 {
		t.Fatalf("expected empty searches, got %d", len(searches))
	}

	reviews, err := signals.ReviewsByUser(ctx, "nobody")
	if err != nil {
		t.Fatalf("reviews: %v", err)
	}
	if len(reviews) != 0 {
		t.Fatalf("expected empty reviews, got %d", len(reviews))
	}

	views, err := signals.RecentViews(ctx, "nobody", 30)
	if err != nil {
		t.Fatalf("views: %v", err)
	}
	if len(views) != 0 {
		t.Fatalf("expected empty views, got %d", len(views))
	}
}
