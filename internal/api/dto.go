package api

import (
	"time"

	"github.com/thuyngan/bookstore/internal/domain"
)

// CreateOrderRequest — входной контракт создания заказа.
// staff_id не принимается из тела: он берётся из JWT-токена сотрудника.
type CreateOrderRequest struct {
	CustomerID  string             `json:"customer_id"`
	PromotionID string             `json:"promotion_id,omitempty"`
	Note        string             `json:"note,omitempty"`
	Items       []OrderItemRequest `json:"items"`
}

// OrderItemRequest — позиция заказа во входном контракте.
type OrderItemRequest struct {
	BookID   string `json:"book_id"`
	Quantity int32  `json:"quantity"`
}

// OrderResponse — представление заказа в ответе API.
type OrderResponse struct {
	ID             string              `json:"id"`
	StaffID        string              `json:"staff_id"`
	CustomerID     string              `json:"customer_id"`
	PromotionID    string              `json:"promotion_id,omitempty"`
	SubtotalMinor  int64               `json:"subtotal_minor"`
	PromotionMinor int64               `json:"promotion_minor"`
	TotalMinor     int64               `json:"total_minor"`
	Active         bool                `json:"active"`
	Note           string              `json:"note,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	Items          []OrderItemResponse `json:"items"`
}

// OrderItemResponse — позиция заказа в ответе API. Цена — снимок на момент
// создания заказа, последующие изменения каталога её не меняют.
type OrderItemResponse struct {
	ID         string `json:"id"`
	BookID     string `json:"book_id"`
	Quantity   int32  `json:"quantity"`
	PriceMinor int64  `json:"price_minor"`
}

// BookRequest — контракт создания/обновления книги.
type BookRequest struct {
	ISBN       string `json:"isbn"`
	Title      string `json:"title"`
	PriceMinor int64  `json:"price_minor"`
	Quantity   int32  `json:"quantity"`
}

// BookResponse — представление книги в ответе API.
type BookResponse struct {
	ID         string    `json:"id"`
	ISBN       string    `json:"isbn"`
	Title      string    `json:"title"`
	PriceMinor int64     `json:"price_minor"`
	Quantity   int32     `json:"quantity"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BookListResponse — страница каталога.
type BookListResponse struct {
	Books    []BookResponse `json:"books"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// ErrorResponse — единый формат ошибок API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func mapOrderToResponse(order domain.Order) OrderResponse {
	items := make([]OrderItemResponse, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemResponse{
			ID:         item.ID,
			BookID:     item.BookID,
			Quantity:   item.Qty,
			PriceMinor: item.PriceMinor,
		}
	}

	return OrderResponse{
		ID:             order.ID,
		StaffID:        order.StaffID,
		CustomerID:     order.CustomerID,
		PromotionID:    order.PromotionID,
		SubtotalMinor:  order.SubtotalMinor,
		PromotionMinor: order.PromotionMinor,
		TotalMinor:     order.TotalMinor,
		Active:         order.Active,
		Note:           order.Note,
		CreatedAt:      order.CreatedAt,
		Items:          items,
	}
}

func mapBookToResponse(book domain.Book) BookResponse {
	return BookResponse{
		ID:         book.ID,
		ISBN:       book.ISBN,
		Title:      book.Title,
		PriceMinor: book.PriceMinor,
		Quantity:   book.Quantity,
		CreatedAt:  book.CreatedAt,
		UpdatedAt:  book.UpdatedAt,
	}
}
