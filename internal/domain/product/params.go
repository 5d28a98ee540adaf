package product

import (
	"fmt"
	"strings"
)

// User-facing validation messages for product creation.
const (
	MsgPriceNotPositive = "Please ensure your product has a price greater than zero."
	MsgNoImageData      = "Please provide either a `data` or `url` parameter for your image(s)"
)

// requiredKeys lists the payload keys that must be present to create a
// product, in the order they are reported when missing.
var requiredKeys = []string{"name", "price", "category_id", "stock_quantity", "images"}

// CreateParams holds the raw product-creation payload. Pointer fields and
// the nil-ness of Images distinguish an absent key from a zero value, so
// validation can report exactly which keys were omitted. An empty but
// present images array is valid and simply skips image creation.
type CreateParams struct {
	Name          *string
	Price         *int64
	CategoryID    *int64
	StockQuantity *int64
	Images        []ImageParams
}

// ImageParams is a single image entry of the creation payload. At least one
// of Data or URL must be given; Data takes precedence when both are set.
type ImageParams struct {
	Data string
	URL  string
}

// MissingKeysError reports which required payload keys were absent.
type MissingKeysError struct {
	Keys []string
}

func (e *MissingKeysError) Error() string {
	return fmt.Sprintf("Payload missing required keys: %s", strings.Join(e.Keys, ", "))
}

// Validate checks structural requirements before any store access. It can
// be used standalone as a pre-check. It returns a *MissingKeysError when
// required keys are absent, or a FieldErrors carrying the price message
// when the price is not a positive integer.
func (p CreateParams) Validate() error {
	var missing []string
	for _, key := range requiredKeys {
		if !p.keyPresent(key) {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return &MissingKeysError{Keys: missing}
	}

	if *p.Price <= 0 {
		return FieldErrors{"price": {MsgPriceNotPositive}}
	}
	return nil
}

func (p CreateParams) keyPresent(key string) bool {
	switch key {
	case "name":
		return p.Name != nil
	case "price":
		return p.Price != nil
	case "category_id":
		return p.CategoryID != nil
	case "stock_quantity":
		return p.StockQuantity != nil
	case "images":
		return p.Images != nil
	default:
		return false
	}
}
