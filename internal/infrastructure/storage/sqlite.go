package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Storage provides SQLite access to the order store.
// It implements the OrderStore interface.
type Storage struct {
	db     *sql.DB
	logger *slog.Logger
}

// Compile-time check that Storage implements OrderStore
var _ OrderStore = (*Storage)(nil)

// NewStorage opens (or creates) the SQLite order store at dbPath and
// applies pending migrations.
func NewStorage(dbPath string) (*Storage, error) {
	return NewStorageWithLogger(dbPath, slog.Default())
}

// NewStorageWithLogger is NewStorage with an explicit logger.
func NewStorageWithLogger(dbPath string, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}

	// Pragmas go in the DSN so every pooled connection gets them.
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open order store: %w", err)
	}

	s := &Storage{db: db, logger: logger}

	if err := runMigrations(db, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// Acquire pins one pooled connection for the duration of a report.
func (s *Storage) Acquire(ctx context.Context) (OrderSession, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	return &sqliteSession{conn: conn}, nil
}

// SaveOrder inserts or replaces an order together with its payment groups.
// An order without an ID is assigned a new UUID.
func (s *Storage) SaveOrder(ctx context.Context, order *OrderRecord) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}

	doc, err := order.DocumentJSON()
	if err != nil {
		return err
	}
	if len(doc) == 0 {
		doc = []byte("null")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO orders (id, country, state, order_captured_at, updated_at, mao_json)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		country = excluded.country,
		state = excluded.state,
		order_captured_at = excluded.order_captured_at,
		updated_at = excluded.updated_at,
		mao_json = excluded.mao_json
	`,
		order.ID,
		order.Country,
		order.State,
		order.CapturedDate.UnixMilli(),
		order.UpdatedAt.UnixMilli(),
		string(doc),
	)
	if err != nil {
		return fmt.Errorf("failed to save order %s: %w", order.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM payment_groups WHERE order_id = ?`, order.ID); err != nil {
		return fmt.Errorf("failed to clear payment groups for %s: %w", order.ID, err)
	}

	for _, pg := range order.PaymentGroups {
		var groupType any
		if pg.Type != "" {
			groupType = pg.Type
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO payment_groups (order_id, type, payment_id, amount) VALUES (?, ?, ?, ?)`,
			order.ID, groupType, pg.PaymentID, pg.Amount,
		)
		if err != nil {
			return fmt.Errorf("failed to save payment group for %s: %w", order.ID, err)
		}
	}

	return tx.Commit()
}

// CountOrders returns the number of stored orders.
func (s *Storage) CountOrders(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&n)
	return n, err
}

type sqliteSession struct {
	conn *sql.Conn
}

func (s *sqliteSession) Release() error {
	return s.conn.Close()
}

func (s *sqliteSession) FindOrders(ctx context.Context, q OrderQuery) ([]OrderRecord, error) {
	if len(q.States) == 0 {
		return []OrderRecord{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(q.States)), ",")
	query := `
	SELECT id, country, state, order_captured_at, updated_at, mao_json
	FROM orders
	WHERE order_captured_at >= ? AND order_captured_at < ?
	  AND state IN (` + placeholders + `)
	ORDER BY order_captured_at, id
	`

	args := make([]any, 0, len(q.States)+2)
	args = append(args, q.CapturedFrom.UnixMilli(), q.CapturedTo.UnixMilli())
	for _, st := range q.States {
		args = append(args, st)
	}

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []OrderRecord{}
	for rows.Next() {
		var (
			rec              OrderRecord
			captured, update int64
			doc              sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.Country, &rec.State, &captured, &update, &doc); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		rec.CapturedDate = time.UnixMilli(captured).UTC()
		rec.UpdatedAt = time.UnixMilli(update).UTC()
		if doc.Valid {
			rec.Document = json.RawMessage(doc.String)
		}
		orders = append(orders, rec)
	}
	return orders, rows.Err()
}

func (s *sqliteSession) CountPaymentGroups(ctx context.Context, q PaymentGroupQuery) (map[string]int, error) {
	rows, err := s.conn.QueryContext(ctx, `
	SELECT pg.type, COUNT(*)
	FROM payment_groups pg
	JOIN orders o ON o.id = pg.order_id
	WHERE o.updated_at >= ? AND o.updated_at < ? AND o.country = ?
	GROUP BY pg.type
	`, q.UpdatedFrom.UnixMilli(), q.UpdatedTo.UnixMilli(), q.Country)
	if err != nil {
		return nil, fmt.Errorf("failed to count payment groups: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var (
			groupType sql.NullString
			n         int
		)
		if err := rows.Scan(&groupType, &n); err != nil {
			return nil, fmt.Errorf("failed to scan payment group count: %w", err)
		}
		key := UnknownPaymentGroupType
		if groupType.Valid && groupType.String != "" {
			key = groupType.String
		}
		counts[key] += n
	}
	return counts, rows.Err()
}
