package recall

import (
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	cos := CosineSimilarity{}

	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{
			name: "identical vectors score 1",
			a:    []float64{1, 0, 1, 1},
			b:    []float64{1, 0, 1, 1},
			want: 1,
		},
		{
			name: "orthogonal vectors score 0",
			a:    []float64{1, 0, 0, 0},
			b:    []float64{0, 1, 0, 0},
			want: 0,
		},
		{
			name: "zero left vector scores 0 not NaN",
			a:    []float64{0, 0, 0},
			b:    []float64{1, 1, 0},
			want: 0,
		},
		{
			name: "zero right vector scores 0 not NaN",
			a:    []float64{1, 1, 0},
			b:    []float64{0, 0, 0},
			want: 0,
		},
		{
			name: "both zero vectors score 0",
			a:    []float64{0, 0},
			b:    []float64{0, 0},
			want: 0,
		},
		{
			name: "length mismatch scores 0",
			a:    []float64{1, 1},
			b:    []float64{1, 1, 1},
			want: 0,
		},
		{
			name: "partial overlap",
			a:    []float64{1, 1, 0},
			b:    []float64{1, 0, 1},
			want: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cos.Score(tt.a, tt.b)
			if math.IsNaN(got) {
				t.Fatalf("Score() = NaN, want %v", tt.want)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Score() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosineSimilarity_SelfSimilarityIsOne(t *testing.T) {
	cos := CosineSimilarity{}
	vectors := [][]float64{
		{1},
		{1, 1, 1, 1, 1},
		{0, 1, 0, 1, 0, 0, 1},
	}
	for _, v := range vectors {
		if got := cos.Score(v, v); math.Abs(got-1) > 1e-9 {
			t.Errorf("Score(v, v) = %v for %v, want 1", got, v)
		}
	}
}

func TestJaccardSimilarity(t *testing.T) {
	jac := JaccardSimilarity{}

	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{name: "identical", a: []float64{1, 1, 0}, b: []float64{1, 1, 0}, want: 1},
		{name: "disjoint", a: []float64{1, 0, 0}, b: []float64{0, 1, 1}, want: 0},
		{name: "half overlap", a: []float64{1, 1, 0}, b: []float64{1, 0, 1}, want: 1.0 / 3.0},
		{name: "both empty", a: []float64{0, 0}, b: []float64{0, 0}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := jac.Score(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Score() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSimilarityByName(t *testing.T) {
	if got := SimilarityByName("jaccard").Name(); got != "jaccard" {
		t.Errorf("SimilarityByName(jaccard).Name() = %q", got)
	}
	if got := SimilarityByName("cosine").Name(); got != "cosine" {
		t.Errorf("SimilarityByName(cosine).Name() = %q", got)
	}
	// 未知名称回落到 cosine
	if got := SimilarityByName("euclidean").Name(); got != "cosine" {
		t.Errorf("SimilarityByName(unknown).Name() = %q, want cosine", got)
	}
}
