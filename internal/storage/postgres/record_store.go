package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/order-intake/internal/domain"
)

const (
	opTimeout = 5 * time.Second
)

// recordStorePostgres хранит запись заказа как JSONB-документ,
// ключом служит номер заказа.
type recordStorePostgres struct {
	db *sql.DB
}

// NewRecordStore создаёт PostgreSQL-реализацию RecordStore.
func NewRecordStore(store *Store) domain.RecordStore {
	return &recordStorePostgres{db: store.DB()}
}

// Create сохраняет новую запись заказа. Повторная вставка того же номера
// упирается в primary key и возвращает ErrOrderExists.
func (s *recordStorePostgres) Create(ctx context.Context, order domain.Order) error {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	payload, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshal order %s: %w", order.Number, err)
	}

	_, err = s.db.ExecContext(opCtx, `
		INSERT INTO order_records (order_number, customer_id, payload, created_at)
		VALUES ($1, $2, $3, $4)
	`, order.Number, order.CustomerID, payload, order.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrOrderExists
		}
		return fmt.Errorf("insert order %s: %w", order.Number, err)
	}

	return nil
}

// Get возвращает запись заказа по номеру.
func (s *recordStorePostgres) Get(ctx context.Context, number string) (domain.Order, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var payload []byte
	err := s.db.QueryRowContext(opCtx, `
		SELECT payload FROM order_records WHERE order_number = $1
	`, number).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order %s: %w", number, err)
	}

	var order domain.Order
	if err := json.Unmarshal(payload, &order); err != nil {
		return domain.Order{}, fmt.Errorf("unmarshal order %s: %w", number, err)
	}
	return order, nil
}

// ListNumbers перечисляет номера заказов с данным префиксом.
func (s *recordStorePostgres) ListNumbers(ctx context.Context, prefix string) ([]string, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(opCtx, `
		SELECT order_number FROM order_records
		WHERE order_number LIKE $1
		ORDER BY order_number
	`, prefix+"%")
	if err != nil {
		return nil, fmt.Errorf("list orders by prefix %s: %w", prefix, err)
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var number string
		if err := rows.Scan(&number); err != nil {
			return nil, fmt.Errorf("scan order number: %w", err)
		}
		numbers = append(numbers, number)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order numbers: %w", err)
	}

	return numbers, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var _ domain.RecordStore = (*recordStorePostgres)(nil)
