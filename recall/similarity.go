package recall

import "math"

// Similarity 是向量相似度的度量接口。
// 内容召回通过该接口计算种子商品与候选商品的匹配度；
// 换用近似最近邻索引时只需在此契约后面替换实现，打分侧不感知。
type Similarity interface {
	// Name 返回度量名称（写入 recall_metric label）
	Name() string

	// Score 计算两个等长向量的相似度。
	// 长度不一致或任一向量为零向量时返回 0（显式约定，不依赖浮点兜底）。
	Score(a, b []float64) float64
}

// CosineSimilarity 是余弦相似度：dot(a,b) / (‖a‖·‖b‖)。
// 0/1 特征向量下取值范围为 [0, 1]。
type CosineSimilarity struct{}

func (CosineSimilarity) Name() string { return "cosine" }

func (CosineSimilarity) Score(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	// 零向量（无类目且无可识别标签的商品）显式返回 0，杜绝除零
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// JaccardSimilarity 是针对 0/1 向量的 Jaccard 相似度：|交| / |并|。
type JaccardSimilarity struct{}

func (JaccardSimilarity) Name() string { return "jaccard" }

func (JaccardSimilarity) Score(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var intersection, union float64
	for i := range a {
		if a[i] > 0 && b[i] > 0 {
			intersection++
		}
		if a[i] > 0 || b[i] > 0 {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return intersection / union
}

// SimilarityByName 按名称返回度量实现，未知名称回落到 cosine。
func SimilarityByName(name string) Similarity {
	switch name {
	case "jaccard":
		return JaccardSimilarity{}
	default:
		return CosineSimilarity{}
	}
}
