// Package builders 注册内置 Node 的配置构建逻辑。
// 配置驱动入口处 import _ "github.com/rushteam/shoprec/config/builders" 触发注册。
package builders

import (
	"fmt"
	"time"

	"github.com/rushteam/shoprec/config"
	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/filter"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/pkg/conv"
	"github.com/rushteam/shoprec/rank"
	"github.com/rushteam/shoprec/recall"
	"github.com/rushteam/shoprec/rerank"
)

func init() {
	config.Register("recall.content", BuildContentNode)
	config.Register("recall.popular", BuildPopularNode)
	config.Register("recall.fanout", BuildFanoutNode)
	config.Register("filter", BuildFilterNode)
	config.Register("rank.boost", BuildBoostNode)
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("rerank.diversity", BuildDiversityNode)
}

func BuildContentNode(cfg map[string]any) (pipeline.Node, error) {
	// 内容召回依赖 CatalogStore 注入，无法纯配置构建；
	// 配置驱动时由调用方构建后用 factory.Register 覆盖注册
	return nil, fmt.Errorf("recall.content requires a catalog store, register a custom builder")
}

func BuildPopularNode(cfg map[string]any) (pipeline.Node, error) {
	ids := conv.SliceAnyToString(cfg["ids"])
	if ids == nil {
		ids = []string{}
	}
	return &recall.Popular{
		IDs:  ids,
		Key:  conv.ConfigGet(cfg, "key", ""),
		TopK: conv.ConfigGetInt(cfg, "top_k", 0),
	}, nil
}

func BuildFanoutNode(cfg map[string]any) (pipeline.Node, error) {
	sourcesConfig, ok := cfg["sources"].([]any)
	if !ok {
		return nil, fmt.Errorf("sources not found or invalid")
	}
	sources := make([]recall.Source, 0, len(sourcesConfig))
	for _, sc := range sourcesConfig {
		sourceMap, ok := sc.(map[string]any)
		if !ok {
			continue
		}
		sourceType := conv.ConfigGet(sourceMap, "type", "")
		switch sourceType {
		case "popular":
			ids := conv.SliceAnyToString(sourceMap["ids"])
			if ids == nil {
				ids = []string{}
			}
			sources = append(sources, &recall.Popular{
				IDs: ids,
				Key: conv.ConfigGet(sourceMap, "key", ""),
			})
		case "content":
			// 同 BuildContentNode：需要 CatalogStore 注入
			return nil, fmt.Errorf("content source requires a catalog store, register a custom builder")
		default:
			return nil, fmt.Errorf("unknown source type: %s", sourceType)
		}
	}
	fanout := &recall.Fanout{
		Sources:       sources,
		Dedup:         conv.ConfigGet(cfg, "dedup", true),
		MergeStrategy: conv.ConfigGet(cfg, "merge_strategy", ""),
	}
	if sec := conv.ConfigGetInt(cfg, "timeout", 0); sec > 0 {
		fanout.Timeout = time.Duration(sec) * time.Second
	}
	if n := conv.ConfigGetInt(cfg, "max_concurrent", 0); n > 0 {
		fanout.MaxConcurrent = n
	}
	return fanout, nil
}

func BuildFilterNode(cfg map[string]any) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]any)
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}

	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]any)
		if !ok {
			continue
		}
		filterType := conv.ConfigGet(filterMap, "type", "")
		switch filterType {
		case "seen":
			filters = append(filters, &filter.SeenFilter{
				KeyPrefix: conv.ConfigGet(filterMap, "key_prefix", ""),
			})
		case "stock":
			filters = append(filters, &filter.StockFilter{
				MinStock: conv.ConfigGetInt(filterMap, "min_stock", 0),
			})
		case "rule":
			expr := conv.ConfigGet(filterMap, "expr", "")
			if expr == "" {
				return nil, fmt.Errorf("rule filter requires expr")
			}
			filters = append(filters, filter.NewRuleFilter(expr))
		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}

	return &filter.FilterNode{Filters: filters}, nil
}

func BuildBoostNode(cfg map[string]any) (pipeline.Node, error) {
	node := &rank.BoostNode{
		DisableRatingBoost: conv.ConfigGet(cfg, "disable_rating_boost", false),
	}
	// YAML 解析整数字面量得到 int，统一走 ToFloat64
	if v, ok := conv.ToFloat64(cfg["default_boost"]); ok {
		node.DefaultBoost = v
	}

	if boostsMap, ok := cfg["interaction_boosts"].(map[string]any); ok {
		boosts := make(map[core.InteractionKind]float64, len(boostsMap))
		for k, v := range conv.MapToFloat64(boostsMap) {
			boosts[core.ParseInteractionKind(k)] = v
		}
		if err := rank.ValidateBoosts(boosts); err != nil {
			return nil, err
		}
		node.InteractionBoosts = boosts
	}

	return node, nil
}

func BuildTopNNode(cfg map[string]any) (pipeline.Node, error) {
	return &rerank.TopNNode{N: conv.ConfigGetInt(cfg, "n", 0)}, nil
}

func BuildDiversityNode(cfg map[string]any) (pipeline.Node, error) {
	return &rerank.Diversity{
		MaxPerCategory: conv.ConfigGetInt(cfg, "max_per_category", 0),
		LabelKey:       conv.ConfigGet(cfg, "label_key", ""),
	}, nil
}
