package domain

import "time"

// Book — позиция каталога. Цена хранится в минимальных денежных единицах
// (PriceMinor), остаток — целым числом; ни то, ни другое не бывает отрицательным.
type Book struct {
	ID    string
	ISBN  string
	Title string
	// PriceMinor — цена за единицу в минимальных денежных единицах (например, копейки).
	PriceMinor int64
	// Quantity — доступный остаток. Мутируется только атомарным коммитом заказа.
	Quantity int32
	// Deleted — мягкое удаление: запись сохраняется для истории заказов,
	// но не продаётся и не появляется в выдаче каталога.
	Deleted   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate проверяет инварианты каталожной записи и возвращает список замечаний.
func (b *Book) Validate() []error {
	var errs []error

	if b.ISBN == "" {
		errs = append(errs, ErrBookISBNRequired)
	}
	if b.Title == "" {
		errs = append(errs, ErrBookTitleRequired)
	}
	if b.PriceMinor < 0 {
		errs = append(errs, ErrBookPriceInvalid)
	}
	if b.Quantity < 0 {
		errs = append(errs, ErrBookQtyInvalid)
	}

	return errs
}
