package feature

import (
	"reflect"
	"testing"

	"github.com/rushteam/shoprec/core"
)

func TestNewVocabulary_FirstSeenOrder(t *testing.T) {
	products := []core.Product{
		{ID: "p1", Category: "electronics", Tags: []string{"wireless", "audio"}},
		{ID: "p2", Category: "outdoor", Tags: []string{"audio", "camping"}},
		{ID: "p3", Category: "electronics", Tags: []string{"wireless"}},
		{ID: "p4", Tags: []string{"camping", "gift"}}, // 无类目
	}

	v := NewVocabulary(products)

	wantCats := []string{"electronics", "outdoor"}
	if !reflect.DeepEqual(v.Categories(), wantCats) {
		t.Errorf("Categories() = %v, want %v", v.Categories(), wantCats)
	}

	wantTags := []string{"wireless", "audio", "camping", "gift"}
	if !reflect.DeepEqual(v.Tags(), wantTags) {
		t.Errorf("Tags() = %v, want %v", v.Tags(), wantTags)
	}

	if got, want := v.Dim(), len(wantCats)+len(wantTags); got != want {
		t.Errorf("Dim() = %d, want %d", got, want)
	}
}

func TestVocabulary_Vectorize(t *testing.T) {
	catalog := []core.Product{
		{ID: "p1", Category: "electronics", Tags: []string{"wireless", "audio"}},
		{ID: "p2", Category: "outdoor", Tags: []string{"camping"}},
	}
	v := NewVocabulary(catalog)
	// 词表：categories=[electronics outdoor] tags=[wireless audio camping]

	tests := []struct {
		name    string
		product core.Product
		want    []float64
	}{
		{
			name:    "category one-hot plus tag multi-hot",
			product: core.Product{ID: "p1", Category: "electronics", Tags: []string{"wireless", "audio"}},
			want:    []float64{1, 0, 1, 1, 0},
		},
		{
			name:    "missing category is a silent no-op",
			product: core.Product{ID: "x", Category: "grocery", Tags: []string{"camping"}},
			want:    []float64{0, 0, 0, 0, 1},
		},
		{
			name:    "unknown tags contribute zero",
			product: core.Product{ID: "y", Category: "outdoor", Tags: []string{"vintage", "rare"}},
			want:    []float64{0, 1, 0, 0, 0},
		},
		{
			name:    "no category no tags yields zero vector",
			product: core.Product{ID: "z"},
			want:    []float64{0, 0, 0, 0, 0},
		},
		{
			name:    "duplicate tags set the same dimension once",
			product: core.Product{ID: "d", Tags: []string{"audio", "audio"}},
			want:    []float64{0, 0, 0, 1, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.Vectorize(tt.product)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Vectorize() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVocabulary_ConstantDimAcrossProducts(t *testing.T) {
	catalog := []core.Product{
		{ID: "p1", Category: "a", Tags: []string{"t1", "t2", "t3"}},
		{ID: "p2", Category: "b", Tags: nil},
		{ID: "p3", Tags: []string{"t4"}},
	}
	v := NewVocabulary(catalog)
	for _, p := range catalog {
		if got := len(v.Vectorize(p)); got != v.Dim() {
			t.Errorf("vector length for %s = %d, want %d", p.ID, got, v.Dim())
		}
	}
}
