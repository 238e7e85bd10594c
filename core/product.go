package core

// Product 是商品目录中的一条完整记录。
// 推荐计算期间视为不可变快照：类目、标签用于特征向量化，其余字段原样透出给调用方。
//
// 设计要点：
//   - Category 为空字符串表示"无类目"，向量化时静默跳过（不是错误）
//   - Tags 保持目录中的原始顺序，允许重复（向量化按词表去重）
//   - Description/Images/Price 等字段不参与数值计算，仅随结果返回
type Product struct {
	ID          string   `json:"product_id"`
	Name        string   `json:"product_name"`
	Category    string   `json:"category,omitempty"` // 类目名称，空表示未分类
	Tags        []string `json:"tags,omitempty"`
	Description string   `json:"description,omitempty"`
	Images      []string `json:"images,omitempty"`
	Price       float64  `json:"price,omitempty"`
	Cost        float64  `json:"cost,omitempty"`
	Stock       int      `json:"stock,omitempty"`
}
