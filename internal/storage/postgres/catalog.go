package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/thuyngan/bookstore/internal/domain"
)

type catalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository создаёт PostgreSQL-репозиторий каталога книг.
func NewCatalogRepository(store *Store) domain.BookRepository {
	return &catalogRepository{db: store.DB()}
}

func (r *catalogRepository) CreateBook(book domain.Book) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO books (id, isbn, title, price_minor, quantity, deleted, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,FALSE,$6,$7)
	`, book.ID, book.ISBN, book.Title, book.PriceMinor, book.Quantity, book.CreatedAt, book.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("book %s already exists", book.ID)
		}
		return fmt.Errorf("insert book: %w", err)
	}

	return nil
}

func (r *catalogRepository) UpdateBook(book domain.Book) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE books
		SET isbn = $2,
		    title = $3,
		    price_minor = $4,
		    quantity = $5,
		    updated_at = $6
		WHERE id = $1
		  AND NOT deleted
	`, book.ID, book.ISBN, book.Title, book.PriceMinor, book.Quantity, book.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrBookNotFound
	}

	return nil
}

// DeleteBook помечает книгу удалённой. Строка остаётся ради истории заказов.
func (r *catalogRepository) DeleteBook(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE books
		SET deleted = TRUE,
		    updated_at = NOW()
		WHERE id = $1
		  AND NOT deleted
	`, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrBookNotFound
	}

	return nil
}

func (r *catalogRepository) GetBookByID(id string) (domain.Book, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	return scanBook(r.db.QueryRowContext(ctx, `
		SELECT id, isbn, title, price_minor, quantity, created_at, updated_at
		FROM books
		WHERE id = $1
		  AND NOT deleted
	`, id))
}

func (r *catalogRepository) ListBooks(offset, limit int) ([]domain.Book, int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 50
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books WHERE NOT deleted`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, isbn, title, price_minor, quantity, created_at, updated_at
		FROM books
		WHERE NOT deleted
		ORDER BY title ASC, id ASC
		OFFSET $1 LIMIT $2
	`, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	books := make([]domain.Book, 0, limit)
	for rows.Next() {
		var book domain.Book
		if err := rows.Scan(
			&book.ID, &book.ISBN, &book.Title,
			&book.PriceMinor, &book.Quantity, &book.CreatedAt, &book.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan book row: %w", err)
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate book rows: %w", err)
	}

	return books, total, nil
}

// SearchBooks ищет по подстроке названия или ISBN без учёта регистра.
// Пустой keyword соответствует всем неудалённым книгам.
func (r *catalogRepository) SearchBooks(keyword string, limit int) ([]domain.Book, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, isbn, title, price_minor, quantity, created_at, updated_at
		FROM books
		WHERE NOT deleted
		  AND (title ILIKE '%' || $1 || '%' OR isbn ILIKE '%' || $1 || '%')
		ORDER BY title ASC, id ASC
		LIMIT $2
	`, keyword, limit)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	defer rows.Close()

	books := make([]domain.Book, 0, limit)
	for rows.Next() {
		var book domain.Book
		if err := rows.Scan(
			&book.ID, &book.ISBN, &book.Title,
			&book.PriceMinor, &book.Quantity, &book.CreatedAt, &book.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan book row: %w", err)
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate book rows: %w", err)
	}

	return books, nil
}

var _ domain.BookRepository = (*catalogRepository)(nil)
