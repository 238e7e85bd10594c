package filter

import (
	"context"
	"testing"

	"github.com/rushteam/shoprec/core"
)

func TestSeenFilter_ExcludesSignalProducts(t *testing.T) {
	signals := &core.UserSignals{
		Views: []core.ViewRecord{
			{Product: core.Product{ID: "seen-1"}},
		},
		Interactions: []core.InteractionRecord{
			{Product: core.Product{ID: "seen-2"}, Kind: core.InteractionPurchase},
		},
	}
	rctx := &core.RecommendContext{UserID: "u1", Signals: signals}
	f := &SeenFilter{}

	tests := []struct {
		id   string
		want bool
	}{
		{"seen-1", true},
		{"seen-2", true},
		{"fresh", false},
	}
	for _, tt := range tests {
		got, err := f.ShouldFilter(context.Background(), rctx, core.NewItem(tt.id))
		if err != nil {
			t.Fatalf("ShouldFilter(%s) error = %v", tt.id, err)
		}
		if got != tt.want {
			t.Errorf("ShouldFilter(%s) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestSeenFilter_NilSignals(t *testing.T) {
	f := &SeenFilter{}
	rctx := &core.RecommendContext{UserID: "u1"}
	got, err := f.ShouldFilter(context.Background(), rctx, core.NewItem("p"))
	if err != nil || got {
		t.Errorf("ShouldFilter with nil signals = (%v, %v), want (false, nil)", got, err)
	}
}

type staticExposure struct {
	ids []string
}

func (s *staticExposure) ExposedProductIDs(_ context.Context, _ string, _ string) ([]string, error) {
	return s.ids, nil
}

func TestSeenFilter_StoreBackedExposure(t *testing.T) {
	f := &SeenFilter{Store: &staticExposure{ids: []string{"ad-1"}}}
	rctx := &core.RecommendContext{UserID: "u1", Signals: &core.UserSignals{}}

	if got, _ := f.ShouldFilter(context.Background(), rctx, core.NewItem("ad-1")); !got {
		t.Error("exposed product should be filtered")
	}
	if got, _ := f.ShouldFilter(context.Background(), rctx, core.NewItem("other")); got {
		t.Error("unexposed product should pass")
	}
}

func TestStockFilter(t *testing.T) {
	f := &StockFilter{}

	inStock := core.NewProductItem(&core.Product{ID: "a", Stock: 3})
	outOfStock := core.NewProductItem(&core.Product{ID: "b", Stock: 0})
	noSnapshot := core.NewItem("c")

	if got, _ := f.ShouldFilter(context.Background(), nil, inStock); got {
		t.Error("in-stock product should pass")
	}
	if got, _ := f.ShouldFilter(context.Background(), nil, outOfStock); !got {
		t.Error("out-of-stock product should be filtered")
	}
	if got, _ := f.ShouldFilter(context.Background(), nil, noSnapshot); got {
		t.Error("item without product snapshot should pass")
	}
}

func TestRuleFilter(t *testing.T) {
	rctx := &core.RecommendContext{UserID: "u1"}

	cheap := core.NewProductItem(&core.Product{ID: "cheap", Price: 9.9})
	pricey := core.NewProductItem(&core.Product{ID: "pricey", Price: 10999})

	f := NewRuleFilter(`item.price > 9999.0`)

	if got, _ := f.ShouldFilter(context.Background(), rctx, pricey); !got {
		t.Error("rule should filter the pricey product")
	}
	if got, _ := f.ShouldFilter(context.Background(), rctx, cheap); got {
		t.Error("rule should keep the cheap product")
	}

	// 表达式出错时放行
	broken := NewRuleFilter(`label.nonexistent == "x"`)
	if got, _ := broken.ShouldFilter(context.Background(), rctx, cheap); got {
		t.Error("broken rule must not filter")
	}

	// 空表达式放行
	empty := NewRuleFilter("")
	if got, _ := empty.ShouldFilter(context.Background(), rctx, cheap); got {
		t.Error("empty rule must not filter")
	}
}

func TestFilterNode_CombinesAndLabels(t *testing.T) {
	signals := &core.UserSignals{
		Views: []core.ViewRecord{{Product: core.Product{ID: "seen"}}},
	}
	rctx := &core.RecommendContext{UserID: "u1", Signals: signals}

	node := &FilterNode{Filters: []Filter{&SeenFilter{}, &StockFilter{}}}

	items := []*core.Item{
		core.NewProductItem(&core.Product{ID: "seen", Stock: 5}),
		core.NewProductItem(&core.Product{ID: "gone", Stock: 0}),
		core.NewProductItem(&core.Product{ID: "keep", Stock: 5}),
	}

	out, err := node.Process(context.Background(), rctx, items)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(out) != 1 || out[0].ID != "keep" {
		t.Fatalf("Process() kept %v, want only 'keep'", out)
	}

	// 被剔除的 item 打上 filtered label 及原因
	if lbl, ok := items[0].Labels["filtered"]; !ok || lbl.Source != "filter.seen" {
		t.Errorf("seen item label = %+v, want filtered by filter.seen", items[0].Labels)
	}
	if lbl, ok := items[1].Labels["filtered"]; !ok || lbl.Source != "filter.stock" {
		t.Errorf("stock item label = %+v, want filtered by filter.stock", items[1].Labels)
	}
}
