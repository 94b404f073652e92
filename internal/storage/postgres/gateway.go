package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/thuyngan/bookstore/internal/domain"
)

type gateway struct {
	db *sql.DB
}

// NewGateway создаёт PostgreSQL-реализацию шлюза хранилища.
func NewGateway(store *Store) domain.Gateway {
	return &gateway{db: store.DB()}
}

func (g *gateway) GetCustomerByID(id string) (domain.Customer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var customer domain.Customer
	err := g.db.QueryRowContext(ctx, `
		SELECT id, family_name, given_name, phone, deleted, created_at
		FROM customers
		WHERE id = $1
	`, id).Scan(
		&customer.ID, &customer.FamilyName, &customer.GivenName,
		&customer.Phone, &customer.Deleted, &customer.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Customer{}, domain.ErrCustomerNotFound
		}
		return domain.Customer{}, fmt.Errorf("select customer: %w", err)
	}

	return customer, nil
}

func (g *gateway) GetBookByID(id string) (domain.Book, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	return scanBook(g.db.QueryRowContext(ctx, `
		SELECT id, isbn, title, price_minor, quantity, created_at, updated_at
		FROM books
		WHERE id = $1
		  AND NOT deleted
	`, id))
}

func (g *gateway) GetPromotionByID(id string) (domain.Promotion, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var promo domain.Promotion
	err := g.db.QueryRowContext(ctx, `
		SELECT id, name, discount_bp, condition_minor, start_at, end_at, quantity, created_at
		FROM promotions
		WHERE id = $1
	`, id).Scan(
		&promo.ID, &promo.Name, &promo.DiscountBasisPoints, &promo.ConditionMinor,
		&promo.StartAt, &promo.EndAt, &promo.Quantity, &promo.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Promotion{}, domain.ErrPromotionNotFound
		}
		return domain.Promotion{}, fmt.Errorf("select promotion: %w", err)
	}

	return promo, nil
}

// CommitOrder применяет коммит одной транзакцией. Списания остатков —
// условные UPDATE с перепроверкой "quantity >= запрошенное" в момент записи:
// 0 затронутых строк означает проигранную гонку, транзакция откатывается
// целиком и наружу уходит ErrCommitConflict.
func (g *gateway) CommitOrder(commit domain.CommitRequest) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, dec := range commit.BookDecrements {
		var res sql.Result
		res, err = tx.ExecContext(ctx, `
			UPDATE books
			SET quantity = quantity - $2,
			    updated_at = NOW()
			WHERE id = $1
			  AND NOT deleted
			  AND quantity >= $2
		`, dec.BookID, dec.Qty)
		if err != nil {
			return fmt.Errorf("decrement book stock: %w", err)
		}
		var affected int64
		affected, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			err = fmt.Errorf("book %s: %w", dec.BookID, domain.ErrCommitConflict)
			return err
		}
	}

	if commit.PromotionID != "" {
		var res sql.Result
		res, err = tx.ExecContext(ctx, `
			UPDATE promotions
			SET quantity = quantity - 1
			WHERE id = $1
			  AND quantity > 0
		`, commit.PromotionID)
		if err != nil {
			return fmt.Errorf("decrement promotion quantity: %w", err)
		}
		var affected int64
		affected, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			err = fmt.Errorf("promotion %s: %w", commit.PromotionID, domain.ErrCommitConflict)
			return err
		}
	}

	order := commit.Order
	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, staff_id, customer_id, promotion_id,
			subtotal_minor, promotion_minor, total_minor,
			active, note, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		order.ID, order.StaffID, order.CustomerID, nullableID(order.PromotionID),
		order.SubtotalMinor, order.PromotionMinor, order.TotalMinor,
		order.Active, order.Note, order.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			err = domain.ErrCommitConflict
			return err
		}
		return fmt.Errorf("insert order: %w", err)
	}

	for _, item := range order.Items {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (
				id, order_id, book_id, qty, price_minor, created_at
			) VALUES ($1,$2,$3,$4,$5,$6)
		`,
			item.ID, order.ID, item.BookID, item.Qty, item.PriceMinor, item.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	now := time.Now().UTC()
	for _, msg := range commit.Outbox {
		if msg.ID == "" {
			msg.ID = uuid.NewString()
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO outbox_messages (
				id, aggregate_type, aggregate_id, event_type, payload,
				status, attempt_count, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,'pending',0,$6,$7)
		`,
			msg.ID, msg.AggregateType, msg.AggregateID, msg.EventType, msg.Payload, now, now,
		); err != nil {
			return fmt.Errorf("enqueue outbox message: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}

	return nil
}

func (g *gateway) GetOrderByID(id string) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var order domain.Order
	var promotionID sql.NullString
	err := g.db.QueryRowContext(ctx, `
		SELECT id, staff_id, customer_id, promotion_id,
		       subtotal_minor, promotion_minor, total_minor,
		       active, note, created_at
		FROM orders
		WHERE id = $1
	`, id).Scan(
		&order.ID, &order.StaffID, &order.CustomerID, &promotionID,
		&order.SubtotalMinor, &order.PromotionMinor, &order.TotalMinor,
		&order.Active, &order.Note, &order.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}
	order.PromotionID = promotionID.String

	items, err := g.loadItems(ctx, order.ID)
	if err != nil {
		return domain.Order{}, err
	}
	order.Items = items

	return order, nil
}

func (g *gateway) ListOrdersByCustomer(customerID string, limit int) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	query := `
		SELECT id, staff_id, customer_id, promotion_id,
		       subtotal_minor, promotion_minor, total_minor,
		       active, note, created_at
		FROM orders
		WHERE customer_id = $1
		ORDER BY created_at DESC, id DESC
	`

	var (
		rows *sql.Rows
		err  error
	)

	if limit > 0 {
		rows, err = g.db.QueryContext(ctx, query+" LIMIT $2", customerID, limit)
	} else {
		rows, err = g.db.QueryContext(ctx, query, customerID)
	}
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		var order domain.Order
		var promotionID sql.NullString
		if err := rows.Scan(
			&order.ID, &order.StaffID, &order.CustomerID, &promotionID,
			&order.SubtotalMinor, &order.PromotionMinor, &order.TotalMinor,
			&order.Active, &order.Note, &order.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		order.PromotionID = promotionID.String

		items, err := g.loadItems(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		order.Items = items
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	return orders, nil
}

func (g *gateway) loadItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := g.db.QueryContext(ctx, `
		SELECT id, book_id, qty, price_minor, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at ASC, id ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.BookID, &item.Qty, &item.PriceMinor, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	return items, nil
}

func scanBook(row *sql.Row) (domain.Book, error) {
	var book domain.Book
	err := row.Scan(
		&book.ID, &book.ISBN, &book.Title,
		&book.PriceMinor, &book.Quantity, &book.CreatedAt, &book.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Book{}, domain.ErrBookNotFound
		}
		return domain.Book{}, fmt.Errorf("select book: %w", err)
	}
	return book, nil
}

func nullableID(id string) sql.NullString {
	return sql.NullString{String: id, Valid: id != ""}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var _ domain.Gateway = (*gateway)(nil)
