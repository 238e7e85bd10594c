package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/store/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// SQLStore 是关系型存储实现，同时提供商品目录读取与用户行为信号读取。
// 同一份 SQL 通过占位符改写兼容 SQLite（?）与 PostgreSQL（$n）两种方言。
type SQLStore struct {
	db     *sql.DB
	driver string
}

// NewSQLiteStore 创建 SQLite 后端的存储并执行建表迁移。
// dsn 为空时使用 data/shoprec.db，":memory:" 可用于测试。
func NewSQLiteStore(dsn string) (*SQLStore, error) {
	if dsn == "" {
		dsn = "data/shoprec.db"
	}

	if dsn != ":memory:" {
		dir := filepath.Dir(dsn)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("create data directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	data, err := migrations.SQLite.ReadFile("sqlite/001_init.sql")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("read migration: %w", err)
	}
	if _, err := db.Exec(string(data)); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec migration: %w", err)
	}

	return &SQLStore{db: db, driver: "sqlite"}, nil
}

// NewPostgresStore 创建 PostgreSQL 后端的存储并执行建表迁移。
func NewPostgresStore(dsn string) (*SQLStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	data, err := migrations.Postgres.ReadFile("postgres/001_init.sql")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("read migration: %w", err)
	}
	if _, err := db.Exec(string(data)); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec migration: %w", err)
	}

	return &SQLStore{db: db, driver: "postgres"}, nil
}

func (s *SQLStore) Name() string { return "sql." + s.driver }

func (s *SQLStore) Close() error { return s.db.Close() }

// rebind 将 ? 占位符改写为 PostgreSQL 的 $n 形式。
func (s *SQLStore) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

const productColumns = `product_id, product_name, category, tags, description, images, price, cost, stocked_quantity`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (core.Product, error) {
	var p core.Product
	var tagsJSON, imagesJSON string
	err := row.Scan(
		&p.ID, &p.Name, &p.Category, &tagsJSON, &p.Description,
		&imagesJSON, &p.Price, &p.Cost, &p.Stock,
	)
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal([]byte(tagsJSON), &p.Tags); err != nil {
		return p, fmt.Errorf("unmarshal tags: %w", err)
	}
	if err := json.Unmarshal([]byte(imagesJSON), &p.Images); err != nil {
		return p, fmt.Errorf("unmarshal images: %w", err)
	}
	return p, nil
}

// CatalogStore implementation

func (s *SQLStore) AllProducts(ctx context.Context) ([]core.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products ORDER BY product_id`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []core.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// GetProduct 按 ID 读取单个商品，不存在时返回 core.ErrStoreNotFound。
func (s *SQLStore) GetProduct(ctx context.Context, id string) (core.Product, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT `+productColumns+`
		FROM products WHERE product_id = ?`), id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return p, core.ErrStoreNotFound
	}
	if err != nil {
		return p, fmt.Errorf("query product: %w", err)
	}
	return p, nil
}

// SignalStore implementation

func (s *SQLStore) RecentSearches(ctx context.Context, userID string, limit int) ([]core.SearchRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, query, clicked_product_id
		FROM search_queries
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`), userID, limitOrMax(limit))
	if err != nil {
		return nil, fmt.Errorf("query searches: %w", err)
	}
	defer rows.Close()

	type searchRow struct {
		id        int64
		query     string
		clickedID sql.NullString
	}
	var raws []searchRow
	for rows.Next() {
		var r searchRow
		if err := rows.Scan(&r.id, &r.query, &r.clickedID); err != nil {
			return nil, fmt.Errorf("scan search: %w", err)
		}
		raws = append(raws, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	records := make([]core.SearchRecord, 0, len(raws))
	for _, r := range raws {
		rec := core.SearchRecord{Query: r.query}
		if r.clickedID.Valid {
			p, err := s.GetProduct(ctx, r.clickedID.String)
			if err != nil && !core.IsStoreNotFound(err) {
				return nil, err
			}
			if err == nil {
				rec.Clicked = &p
			}
		}
		shown, err := s.shownProducts(ctx, r.id)
		if err != nil {
			return nil, err
		}
		rec.ShownProducts = shown
		records = append(records, rec)
	}
	return records, nil
}

func (s *SQLStore) shownProducts(ctx context.Context, searchID int64) ([]core.Product, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT `+prefixed("p.", productColumns)+`
		FROM searched_products sp
		JOIN products p ON p.product_id = sp.product_id
		WHERE sp.search_query_id = ?
		ORDER BY sp.position`), searchID)
	if err != nil {
		return nil, fmt.Errorf("query shown products: %w", err)
	}
	defer rows.Close()

	var products []core.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shown product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *SQLStore) ReviewsByUser(ctx context.Context, userID string) ([]core.ReviewRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT r.rating, `+prefixed("p.", productColumns)+`
		FROM product_reviews r
		JOIN products p ON p.product_id = r.product_id
		WHERE r.user_id = ?
		ORDER BY r.created_at DESC, r.id DESC`), userID)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	var records []core.ReviewRecord
	for rows.Next() {
		var rec core.ReviewRecord
		var tagsJSON, imagesJSON string
		p := &rec.Product
		if err := rows.Scan(
			&rec.Rating,
			&p.ID, &p.Name, &p.Category, &tagsJSON, &p.Description,
			&imagesJSON, &p.Price, &p.Cost, &p.Stock,
		); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		if err := json.Unmarshal([]byte(tagsJSON), &p.Tags); err != nil {
			return nil, fmt.Errorf("unmarshal tags: %w", err)
		}
		if err := json.Unmarshal([]byte(imagesJSON), &p.Images); err != nil {
			return nil, fmt.Errorf("unmarshal images: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *SQLStore) RecentInteractions(ctx context.Context, userID string, limit int) ([]core.InteractionRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT i.kind, `+prefixed("p.", productColumns)+`
		FROM user_product_interactions i
		JOIN products p ON p.product_id = i.product_id
		WHERE i.user_id = ?
		ORDER BY i.created_at DESC, i.id DESC
		LIMIT ?`), userID, limitOrMax(limit))
	if err != nil {
		return nil, fmt.Errorf("query interactions: %w", err)
	}
	defer rows.Close()

	var records []core.InteractionRecord
	for rows.Next() {
		var rec core.InteractionRecord
		var kind string
		var tagsJSON, imagesJSON string
		p := &rec.Product
		if err := rows.Scan(
			&kind,
			&p.ID, &p.Name, &p.Category, &tagsJSON, &p.Description,
			&imagesJSON, &p.Price, &p.Cost, &p.Stock,
		); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		if err := json.Unmarshal([]byte(tagsJSON), &p.Tags); err != nil {
			return nil, fmt.Errorf("unmarshal tags: %w", err)
		}
		if err := json.Unmarshal([]byte(imagesJSON), &p.Images); err != nil {
			return nil, fmt.Errorf("unmarshal images: %w", err)
		}
		rec.Kind = core.InteractionKind(kind)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *SQLStore) RecentViews(ctx context.Context, userID string, limit int) ([]core.ViewRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT v.duration_seconds, `+prefixed("p.", productColumns)+`
		FROM product_views v
		JOIN products p ON p.product_id = v.product_id
		WHERE v.user_id = ?
		ORDER BY v.created_at DESC, v.id DESC
		LIMIT ?`), userID, limitOrMax(limit))
	if err != nil {
		return nil, fmt.Errorf("query views: %w", err)
	}
	defer rows.Close()

	var records []core.ViewRecord
	for rows.Next() {
		var rec core.ViewRecord
		var tagsJSON, imagesJSON string
		p := &rec.Product
		if err := rows.Scan(
			&rec.DurationSeconds,
			&p.ID, &p.Name, &p.Category, &tagsJSON, &p.Description,
			&imagesJSON, &p.Price, &p.Cost, &p.Stock,
		); err != nil {
			return nil, fmt.Errorf("scan view: %w", err)
		}
		if err := json.Unmarshal([]byte(tagsJSON), &p.Tags); err != nil {
			return nil, fmt.Errorf("unmarshal tags: %w", err)
		}
		if err := json.Unmarshal([]byte(imagesJSON), &p.Images); err != nil {
			return nil, fmt.Errorf("unmarshal images: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// 写入侧：供行为采集与数据同步任务使用。

// SaveProduct 新增或覆盖一个商品。
func (s *SQLStore) SaveProduct(ctx context.Context, p core.Product) error {
	tags, err := json.Marshal(emptyIfNil(p.Tags))
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	images, err := json.Marshal(emptyIfNil(p.Images))
	if err != nil {
		return fmt.Errorf("marshal images: %w", err)
	}

	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if s.driver == "postgres" {
		query += `
		ON CONFLICT (product_id) DO UPDATE SET
			product_name = EXCLUDED.product_name,
			category = EXCLUDED.category,
			tags = EXCLUDED.tags,
			description = EXCLUDED.description,
			images = EXCLUDED.images,
			price = EXCLUDED.price,
			cost = EXCLUDED.cost,
			stocked_quantity = EXCLUDED.stocked_quantity`
	} else {
		query = strings.Replace(query, "INSERT INTO", "INSERT OR REPLACE INTO", 1)
	}

	_, err = s.db.ExecContext(ctx, s.rebind(query),
		p.ID, p.Name, p.Category, string(tags), p.Description,
		string(images), p.Price, p.Cost, p.Stock,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// AddReview 记录一条商品评价。
func (s *SQLStore) AddReview(ctx context.Context, userID, productID string, rating int, at time.Time) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO product_reviews (user_id, product_id, rating, created_at)
		VALUES (?, ?, ?, ?)`), userID, productID, rating, at)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

// AddInteraction 记录一条商品交互。
func (s *SQLStore) AddInteraction(ctx context.Context, userID, productID string, kind core.InteractionKind, at time.Time) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO user_product_interactions (user_id, product_id, kind, created_at)
		VALUES (?, ?, ?, ?)`), userID, productID, string(kind), at)
	if err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}
	return nil
}

// AddView 记录一条商品浏览。
func (s *SQLStore) AddView(ctx context.Context, userID, productID string, durationSeconds int, at time.Time) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO product_views (user_id, product_id, duration_seconds, created_at)
		VALUES (?, ?, ?, ?)`), userID, productID, durationSeconds, at)
	if err != nil {
		return fmt.Errorf("insert view: %w", err)
	}
	return nil
}

// AddSearch 记录一条搜索，clickedProductID 为空表示没有点击，
// shownProductIDs 为本次搜索曝光的商品列表。
func (s *SQLStore) AddSearch(ctx context.Context, userID, query, clickedProductID string, shownProductIDs []string, at time.Time) error {
	var clicked any
	if clickedProductID != "" {
		clicked = clickedProductID
	}

	var searchID int64
	if s.driver == "postgres" {
		err := s.db.QueryRowContext(ctx, s.rebind(`
			INSERT INTO search_queries (user_id, query, clicked_product_id, created_at)
			VALUES (?, ?, ?, ?) RETURNING id`), userID, query, clicked, at).Scan(&searchID)
		if err != nil {
			return fmt.Errorf("insert search: %w", err)
		}
	} else {
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO search_queries (user_id, query, clicked_product_id, created_at)
			VALUES (?, ?, ?, ?)`, userID, query, clicked, at)
		if err != nil {
			return fmt.Errorf("insert search: %w", err)
		}
		searchID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("search id: %w", err)
		}
	}

	for i, pid := range shownProductIDs {
		_, err := s.db.ExecContext(ctx, s.rebind(`
			INSERT INTO searched_products (search_query_id, product_id, position)
			VALUES (?, ?, ?)`), searchID, pid, i)
		if err != nil {
			return fmt.Errorf("insert shown product: %w", err)
		}
	}
	return nil
}

// prefixed 为列名清单加上表别名前缀。
func prefixed(prefix, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, c := range parts {
		parts[i] = prefix + c
	}
	return strings.Join(parts, ", ")
}

func limitOrMax(limit int) int {
	if limit <= 0 {
		// PostgreSQL 不接受负数 LIMIT，用足够大的值表示不限
		return 1 << 30
	}
	return limit
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

var (
	_ core.CatalogStore = (*SQLStore)(nil)
	_ core.SignalStore  = (*SQLStore)(nil)
)
