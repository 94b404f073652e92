package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/thuyngan/bookstore/internal/domain"
	"github.com/thuyngan/bookstore/internal/service/catalog"
	"github.com/thuyngan/bookstore/internal/service/intake"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxOrdersLimit  = 200
)

// Handler обслуживает HTTP-запросы приёма заказов и каталога.
type Handler struct {
	intake  *intake.Service
	catalog *catalog.Service
	gateway domain.Gateway
	logger  *log.Entry
}

// NewHandler создаёт HTTP-обработчик поверх сервисов магазина.
func NewHandler(intakeSvc *intake.Service, catalogSvc *catalog.Service, gateway domain.Gateway, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.WithField("component", "http-api")
	}
	return &Handler{
		intake:  intakeSvc,
		catalog: catalogSvc,
		gateway: gateway,
		logger:  logger,
	}
}

// CreateOrder принимает заказ: валидация, расчёт цены и атомарный коммит.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	staffID := staffIDFromContext(r.Context())
	if staffID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", "staff identity is missing")
		return
	}

	items := make([]domain.RequestItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, domain.RequestItem{
			BookID: item.BookID,
			Qty:    item.Quantity,
		})
	}

	order, err := h.intake.CreateOrder(domain.OrderRequest{
		StaffID:     staffID,
		CustomerID:  req.CustomerID,
		PromotionID: req.PromotionID,
		Note:        req.Note,
		Items:       items,
	}, staffID)
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, mapOrderToResponse(order))
}

// GetOrder возвращает заказ по ID.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		writeError(w, http.StatusBadRequest, "order_id_required", "")
		return
	}

	order, err := h.gateway.GetOrderByID(orderID)
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, mapOrderToResponse(order))
}

// ListOrders возвращает заказы клиента, новые первыми.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	customerID := r.URL.Query().Get("customer_id")
	if customerID == "" {
		writeError(w, http.StatusBadRequest, "customer_id_required", "")
		return
	}

	limit := parsePositiveInt(r.URL.Query().Get("limit"), 50)
	if limit > maxOrdersLimit {
		limit = maxOrdersLimit
	}

	orders, err := h.gateway.ListOrdersByCustomer(customerID, limit)
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error())
		return
	}

	result := make([]OrderResponse, len(orders))
	for i, order := range orders {
		result[i] = mapOrderToResponse(order)
	}
	writeJSON(w, http.StatusOK, result)
}

// CreateBook добавляет книгу в каталог.
func (h *Handler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var req BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	book, err := h.catalog.CreateBook(domain.Book{
		ISBN:       req.ISBN,
		Title:      req.Title,
		PriceMinor: req.PriceMinor,
		Quantity:   req.Quantity,
	})
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, mapBookToResponse(book))
}

// UpdateBook перезаписывает каталожную запись.
func (h *Handler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "id")
	if bookID == "" {
		writeError(w, http.StatusBadRequest, "book_id_required", "")
		return
	}

	var req BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	book, err := h.catalog.UpdateBook(domain.Book{
		ID:         bookID,
		ISBN:       req.ISBN,
		Title:      req.Title,
		PriceMinor: req.PriceMinor,
		Quantity:   req.Quantity,
	})
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, mapBookToResponse(book))
}

// DeleteBook удаляет книгу из каталога.
func (h *Handler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "id")
	if bookID == "" {
		writeError(w, http.StatusBadRequest, "book_id_required", "")
		return
	}

	if err := h.catalog.DeleteBook(bookID); err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetBook возвращает книгу по ID.
func (h *Handler) GetBook(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "id")
	if bookID == "" {
		writeError(w, http.StatusBadRequest, "book_id_required", "")
		return
	}

	book, err := h.catalog.GetBook(bookID)
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, mapBookToResponse(book))
}

// ListBooks возвращает страницу каталога.
func (h *Handler) ListBooks(w http.ResponseWriter, r *http.Request) {
	page := parsePositiveInt(r.URL.Query().Get("page"), 1)
	pageSize := parsePositiveInt(r.URL.Query().Get("page_size"), defaultPageSize)
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	books, total, err := h.catalog.ListBooks((page-1)*pageSize, pageSize)
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error())
		return
	}

	result := BookListResponse{
		Books:    make([]BookResponse, len(books)),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
	for i, book := range books {
		result.Books[i] = mapBookToResponse(book)
	}
	writeJSON(w, http.StatusOK, result)
}

// SearchBooks ищет книги по ключевому слову в названии или ISBN.
func (h *Handler) SearchBooks(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")
	if keyword == "" {
		writeError(w, http.StatusBadRequest, "keyword_required", "")
		return
	}

	limit := parsePositiveInt(r.URL.Query().Get("limit"), defaultPageSize)
	if limit > maxPageSize {
		limit = maxPageSize
	}

	books, err := h.catalog.SearchBooks(keyword, limit)
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error())
		return
	}

	result := make([]BookResponse, len(books))
	for i, book := range books {
		result[i] = mapBookToResponse(book)
	}
	writeJSON(w, http.StatusOK, result)
}

func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
