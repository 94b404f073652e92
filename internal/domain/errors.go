package domain

import "errors"

var (
	// ErrEmptyOrder возвращается для запроса без единой позиции.
	// Текст сообщения — контрактный, клиенты сверяют его дословно.
	ErrEmptyOrder = errors.New("Order must have at least one item.") //nolint:staticcheck // канонический текст из API-контракта
	// ErrInvalidCustomer возвращается, если клиент не найден или помечен удалённым.
	// Текст сообщения — контрактный, клиенты сверяют его дословно.
	ErrInvalidCustomer = errors.New("Customer is invalid or has been deleted.") //nolint:staticcheck // канонический текст из API-контракта
	// ErrBookNotFound — позиция заказа ссылается на несуществующую книгу.
	ErrBookNotFound = errors.New("book not found")
	// ErrInsufficientStock — запрошенное количество превышает доступный остаток.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrItemQtyInvalid — некорректное количество в позиции заказа (<= 0).
	ErrItemQtyInvalid = errors.New("item quantity must be greater than zero")
	// ErrCommitConflict — коммит проиграл гонку за остаток или слот промоакции.
	// Операцию можно безопасно повторить с нуля: перечитать, перевалидировать, закоммитить.
	ErrCommitConflict = errors.New("commit conflict")
	// ErrStorageUnavailable — временная недоступность хранилища; повторять с backoff.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrCustomerNotFound возвращается шлюзом хранилища при отсутствии клиента.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrPromotionNotFound возвращается шлюзом хранилища при отсутствии промоакции.
	ErrPromotionNotFound = errors.New("promotion not found")
	// ErrOrderNotFound возвращается, если заказ не найден в хранилище.
	ErrOrderNotFound = errors.New("order not found")

	// Ошибка отсутствующего ISBN книги.
	ErrBookISBNRequired = errors.New("book isbn is required")
	// Ошибка отсутствующего названия книги.
	ErrBookTitleRequired = errors.New("book title is required")
	// Ошибка отрицательной цены книги.
	ErrBookPriceInvalid = errors.New("book price must be non-negative")
	// Ошибка отрицательного остатка книги.
	ErrBookQtyInvalid = errors.New("book quantity must be non-negative")

	// Ошибка отсутствующего идентификатора сотрудника.
	ErrStaffRequired = errors.New("staff_id is required")
	// Ошибка отсутствующего идентификатора клиента.
	ErrCustomerRequired = errors.New("customer_id is required")
	// Ошибка отрицательных сумм заказа.
	ErrAmountNegative = errors.New("order amounts must be non-negative")
	// Ошибка несоответствия сумм заказа и сумм позиций.
	ErrAmountMismatch = errors.New("order totals do not match items sum")

	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// IsRetryable проверяет, имеет ли смысл повторить операцию целиком.
// Повтор означает полный цикл: перечитать данные, перевалидировать, закоммитить.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrCommitConflict) || errors.Is(err, ErrStorageUnavailable)
}
