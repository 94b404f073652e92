package api

import (
	"errors"
	"net/http"

	"github.com/thuyngan/bookstore/internal/domain"
)

// mapDomainError переводит доменную ошибку в HTTP-статус и машинный код.
// Текст ошибки уходит клиенту без изменений: сообщения ErrEmptyOrder и
// ErrInvalidCustomer — контрактные, клиенты сверяют их дословно.
func mapDomainError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrEmptyOrder):
		return http.StatusBadRequest, "empty_order"
	case errors.Is(err, domain.ErrInvalidCustomer):
		return http.StatusBadRequest, "invalid_customer"
	case errors.Is(err, domain.ErrItemQtyInvalid):
		return http.StatusBadRequest, "invalid_item"
	case errors.Is(err, domain.ErrBookISBNRequired),
		errors.Is(err, domain.ErrBookTitleRequired),
		errors.Is(err, domain.ErrBookPriceInvalid),
		errors.Is(err, domain.ErrBookQtyInvalid):
		return http.StatusBadRequest, "invalid_book"
	case errors.Is(err, domain.ErrBookNotFound):
		return http.StatusNotFound, "book_not_found"
	case errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound, "order_not_found"
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusConflict, "insufficient_stock"
	case errors.Is(err, domain.ErrCommitConflict):
		return http.StatusConflict, "commit_conflict"
	default:
		// Неклассифицированные отказы хранилища считаем транзиентными.
		return http.StatusServiceUnavailable, "storage_unavailable"
	}
}
