package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/shoprec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.Variable("item", cel.DynType),
		cel.Variable("label", cel.DynType),
		cel.Variable("rctx", cel.DynType),
	)
	return env, err
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	var err error
	celEnvOnce.Do(func() {
		celEnv, err = initCELEnv()
	})
	return celEnv, err
}

// Eval 是规则 DSL 解释器，使用 CEL (Common Expression Language) 实现。
//
// 表达式语法（CEL 标准语法）：
//   - 基础：label.recall_source == "content" / label.category != "outdoor"
//   - 数值：item.score > 0.7 / item.price >= 99.0
//   - 逻辑：label.category == "electronics" && item.score > 0.5
//   - 包含：label.recall_source.contains("popular")
//
// 典型用途：filter.RuleFilter 以配置化表达式剔除候选商品，
// 不必为每条运营规则单独写一个 Filter 实现。
type Eval struct {
	item *core.Item
	rctx *core.RecommendContext
	env  *cel.Env
}

// NewEval 创建一个新的 DSL 解释器。
func NewEval(item *core.Item, rctx *core.RecommendContext) *Eval {
	env, _ := getCELEnv()
	return &Eval{
		item: item,
		rctx: rctx,
		env:  env,
	}
}

// Evaluate 解析并执行 DSL 表达式，返回布尔结果。
// 空表达式视为 true。表达式必须返回布尔值，否则报错。
// 注意：访问不存在的 key 会得到 eval error，存在性检查请用 label.key != null。
func (e *Eval) Evaluate(expr string) (bool, error) {
	if expr == "" {
		return true, nil
	}
	if e.env == nil {
		return false, fmt.Errorf("cel env not initialized")
	}

	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return false, fmt.Errorf("compile error: %v", issues.Err())
	}

	prg, err := e.env.Program(ast)
	if err != nil {
		return false, fmt.Errorf("program error: %v", err)
	}

	out, _, err := prg.Eval(e.buildInput())
	if err != nil {
		return false, fmt.Errorf("eval error: %v", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}

	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func (e *Eval) buildInput() map[string]any {
	labelMap := make(map[string]any)
	itemMap := make(map[string]any)
	rctxMap := make(map[string]any)

	if e.item != nil {
		itemMap["id"] = e.item.ID
		itemMap["score"] = e.item.Score
		for k, v := range e.item.Features {
			itemMap[k] = v
		}
		if p := e.item.Product(); p != nil {
			itemMap["price"] = p.Price
			itemMap["stock"] = p.Stock
			itemMap["category"] = p.Category
		}
		for k, lbl := range e.item.Labels {
			labelMap[k] = lbl.Value
		}
	}

	if e.rctx != nil {
		rctxMap["user_id"] = e.rctx.UserID
		rctxMap["scene"] = e.rctx.Scene
		for k, v := range e.rctx.Params {
			rctxMap[k] = v
		}
	}

	return map[string]any{
		"item":  itemMap,
		"label": labelMap,
		"rctx":  rctxMap,
	}
}
