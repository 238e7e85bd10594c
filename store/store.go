// Package store 提供 core 存储接口的基础设施实现与适配器。
//
// 注意：此包只包含实现，接口定义在 core 包（依赖倒置）。
// - KV：MemoryStore / RedisStore 实现 core.Store 与 core.KeyValueStore
// - 目录与信号：CatalogAdapter / SignalAdapter（JSON over KV）、SQLStore（关系表）
package store

import "github.com/rushteam/shoprec/core"

// 别名透出，便于调用方少 import 一个包。
type Store = core.Store
type KeyValueStore = core.KeyValueStore

// ErrNotFound 表示 key 不存在（等价于 core.ErrStoreNotFound）。
var ErrNotFound = core.ErrStoreNotFound
