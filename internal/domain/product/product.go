package product

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase. Price is in
// currency minor units.
type Product struct {
	ID            int64
	Name          string
	Price         int64
	CategoryID    int64
	InStock       bool
	StockQuantity int
	Images        []Image
	CreatedAt     time.Time
}

// Image belongs to exactly one product and carries either an inline encoded
// payload (Data) or an external reference (URL) to be imported later.
type Image struct {
	ID        int64
	ProductID int64
	Data      string
	URL       string
}

// Repository defines persistence operations for the product catalog.
//
// Create and CreateImage are independent statements; CreateWithImages
// persists a product and all its images in a single transaction. Creation
// methods return FieldErrors when the store rejects a record on a
// constraint, so callers can surface per-field messages.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, p *Product) error
	CreateImage(ctx context.Context, img *Image) error
	CreateWithImages(ctx context.Context, p *Product, images []Image) error
}

// FieldErrors maps attribute names to validation messages, mirroring the
// structured per-field errors the store reports for rejected records.
type FieldErrors map[string][]string

func (e FieldErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(strings.Join(e[k], ", "))
	}
	return b.String()
}

// Add appends a message for the given field.
func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Merge copies all messages from other into e.
func (e FieldErrors) Merge(other FieldErrors) {
	for field, msgs := range other {
		e[field] = append(e[field], msgs...)
	}
}
