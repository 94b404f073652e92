package catalog

import (
	"errors"
	"testing"

	"github.com/thuyngan/bookstore/internal/domain"
	"github.com/thuyngan/bookstore/internal/messaging/kafka"
	"github.com/thuyngan/bookstore/internal/storage/memory"
)

func validBook() domain.Book {
	return domain.Book{
		ISBN:       "978-5-00000-000-1",
		Title:      "Чистая архитектура",
		PriceMinor: 1500,
		Quantity:   10,
	}
}

func TestService_CreateBook_AssignsIDAndEnqueuesEvent(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	svc := NewService(store, store, nil)

	created, err := svc.CreateBook(validBook())
	if err != nil {
		t.Fatalf("CreateBook failed: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated book ID")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set")
	}

	stored, err := store.GetBookByID(created.ID)
	if err != nil {
		t.Fatalf("stored book not found: %v", err)
	}
	if stored.Title != created.Title {
		t.Fatalf("expected title %q, got %q", created.Title, stored.Title)
	}

	pending, err := store.PullPending(10)
	if err != nil {
		t.Fatalf("PullPending failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 outbox message, got %d", len(pending))
	}
	if pending[0].EventType != string(kafka.EventTypeBookCreated) {
		t.Fatalf("expected event type %s, got %s", kafka.EventTypeBookCreated, pending[0].EventType)
	}
}

func TestService_CreateBook_RejectsInvalid(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	svc := NewService(store, store, nil)

	book := validBook()
	book.ISBN = ""
	book.PriceMinor = -1

	_, err := svc.CreateBook(book)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, domain.ErrBookISBNRequired) {
		t.Fatalf("expected ErrBookISBNRequired, got %v", err)
	}
	if !errors.Is(err, domain.ErrBookPriceInvalid) {
		t.Fatalf("expected ErrBookPriceInvalid, got %v", err)
	}
}

func TestService_UpdateBook_PreservesCreatedAt(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	svc := NewService(store, store, nil)

	created, err := svc.CreateBook(validBook())
	if err != nil {
		t.Fatalf("CreateBook failed: %v", err)
	}

	updated := created
	updated.Title = "Чистая архитектура. Второе издание"
	updated.Quantity = 3

	result, err := svc.UpdateBook(updated)
	if err != nil {
		t.Fatalf("UpdateBook failed: %v", err)
	}
	if !result.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("expected created_at to be preserved, got %v vs %v", result.CreatedAt, created.CreatedAt)
	}

	stored, err := store.GetBookByID(created.ID)
	if err != nil {
		t.Fatalf("stored book not found: %v", err)
	}
	if stored.Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", stored.Quantity)
	}
}

func TestService_UpdateBook_NotFound(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	svc := NewService(store, store, nil)

	book := validBook()
	book.ID = "00000000-0000-0000-0000-000000000001"

	if _, err := svc.UpdateBook(book); !errors.Is(err, domain.ErrBookNotFound) {
		t.Fatalf("expected ErrBookNotFound, got %v", err)
	}
}

func TestService_DeleteBook(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	svc := NewService(store, store, nil)

	created, err := svc.CreateBook(validBook())
	if err != nil {
		t.Fatalf("CreateBook failed: %v", err)
	}

	if err := svc.DeleteBook(created.ID); err != nil {
		t.Fatalf("DeleteBook failed: %v", err)
	}
	if _, err := svc.GetBook(created.ID); !errors.Is(err, domain.ErrBookNotFound) {
		t.Fatalf("expected ErrBookNotFound after delete, got %v", err)
	}
	if err := svc.DeleteBook(created.ID); !errors.Is(err, domain.ErrBookNotFound) {
		t.Fatalf("expected ErrBookNotFound on second delete, got %v", err)
	}
}

func TestService_DeleteBook_ExcludedFromListing(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	svc := NewService(store, store, nil)

	kept, err := svc.CreateBook(validBook())
	if err != nil {
		t.Fatalf("CreateBook failed: %v", err)
	}
	gone := validBook()
	gone.Title = "Снятая с продажи"
	created, err := svc.CreateBook(gone)
	if err != nil {
		t.Fatalf("CreateBook failed: %v", err)
	}

	if err := svc.DeleteBook(created.ID); err != nil {
		t.Fatalf("DeleteBook failed: %v", err)
	}

	page, total, err := svc.ListBooks(0, 10)
	if err != nil {
		t.Fatalf("ListBooks failed: %v", err)
	}
	if total != 1 || len(page) != 1 || page[0].ID != kept.ID {
		t.Fatalf("deleted book must not appear in listing: total=%d page=%d", total, len(page))
	}

	pending, err := store.PullPending(10)
	if err != nil {
		t.Fatalf("PullPending failed: %v", err)
	}
	last := pending[len(pending)-1]
	if last.EventType != string(kafka.EventTypeBookDeleted) {
		t.Fatalf("expected event type %s, got %s", kafka.EventTypeBookDeleted, last.EventType)
	}
}

func TestService_SearchBooks(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	svc := NewService(store, store, nil)

	titles := []string{"Высокая нагрузка", "Высокие технологии", "Алгоритмы"}
	ids := make(map[string]string, len(titles))
	for _, title := range titles {
		book := validBook()
		book.Title = title
		created, err := svc.CreateBook(book)
		if err != nil {
			t.Fatalf("CreateBook %q failed: %v", title, err)
		}
		ids[title] = created.ID
	}
	if err := svc.DeleteBook(ids["Высокие технологии"]); err != nil {
		t.Fatalf("DeleteBook failed: %v", err)
	}

	found, err := svc.SearchBooks("высок", 10)
	if err != nil {
		t.Fatalf("SearchBooks failed: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("expected 1 match without deleted book, got %d", len(found))
	}
	if found[0].Title != "Высокая нагрузка" {
		t.Fatalf("unexpected match %q", found[0].Title)
	}

	none, err := svc.SearchBooks("квантовая механика", 10)
	if err != nil {
		t.Fatalf("SearchBooks failed: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no matches, got %d", len(none))
	}
}

func TestService_ListBooks_Pagination(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	svc := NewService(store, store, nil)

	titles := []string{"Алгоритмы", "Базы данных", "Высокая нагрузка"}
	for _, title := range titles {
		book := validBook()
		book.Title = title
		if _, err := svc.CreateBook(book); err != nil {
			t.Fatalf("CreateBook %q failed: %v", title, err)
		}
	}

	page, total, err := svc.ListBooks(1, 1)
	if err != nil {
		t.Fatalf("ListBooks failed: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected total 3, got %d", total)
	}
	if len(page) != 1 {
		t.Fatalf("expected 1 book on page, got %d", len(page))
	}
	if page[0].Title != "Базы данных" {
		t.Fatalf("expected second title by sort order, got %q", page[0].Title)
	}
}
