package handler

import (
	"io"
	"net/http"
	"sort"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/velikanov/storefront/internal/domain/product"
)

// createProduct handles POST /api/products. Unlike the order path, the
// response carries structured field-level errors.
func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "unable to read request body")
		return
	}

	params, err := decodeProductParams(body)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.productCreator.Create(r.Context(), params)
	if err != nil {
		internalError(w, r, err)
		return
	}

	status := http.StatusCreated
	if !result.OK {
		status = http.StatusUnprocessableEntity
	}

	var e jx.Encoder
	encodeCreateResult(&e, result)
	writeJSON(w, status, &e)
}

// listProducts handles GET /api/products.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}

	var e jx.Encoder
	e.Arr(func(e *jx.Encoder) {
		for i := range products {
			encodeProduct(e, &products[i])
		}
	})
	writeJSON(w, http.StatusOK, &e)
}

// decodeProductParams parses the creation payload, keeping absent keys
// distinguishable from zero values so validation can name exactly what is
// missing.
func decodeProductParams(body []byte) (product.CreateParams, error) {
	var params product.CreateParams

	d := jx.DecodeBytes(body)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "name":
			s, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "name")
			}
			params.Name = &s
			return nil
		case "price":
			v, err := d.Int64()
			if err != nil {
				return errors.Wrap(err, "price")
			}
			params.Price = &v
			return nil
		case "category_id":
			v, err := d.Int64()
			if err != nil {
				return errors.Wrap(err, "category_id")
			}
			params.CategoryID = &v
			return nil
		case "stock_quantity":
			v, err := d.Int64()
			if err != nil {
				return errors.Wrap(err, "stock_quantity")
			}
			params.StockQuantity = &v
			return nil
		case "images":
			params.Images = []product.ImageParams{}
			return d.Arr(func(d *jx.Decoder) error {
				img, err := decodeImageParams(d)
				if err != nil {
					return err
				}
				params.Images = append(params.Images, img)
				return nil
			})
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return product.CreateParams{}, errors.Wrap(err, "decode product request")
	}
	return params, nil
}

func decodeImageParams(d *jx.Decoder) (product.ImageParams, error) {
	var img product.ImageParams
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "data":
			s, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "data")
			}
			img.Data = s
			return nil
		case "url":
			s, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "url")
			}
			img.URL = s
			return nil
		default:
			return d.Skip()
		}
	})
	return img, err
}

// encodeCreateResult serializes {success, product, errors}.
func encodeCreateResult(e *jx.Encoder, result product.CreateResult) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("success", func(e *jx.Encoder) { e.Bool(result.OK) })
		if result.Product != nil {
			e.Field("product", func(e *jx.Encoder) { encodeProduct(e, result.Product) })
		}
		e.Field("errors", func(e *jx.Encoder) { encodeFieldErrors(e, result.Errors) })
	})
}

func encodeProduct(e *jx.Encoder, p *product.Product) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(p.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
		e.Field("price", func(e *jx.Encoder) { e.Int64(p.Price) })
		e.Field("category_id", func(e *jx.Encoder) { e.Int64(p.CategoryID) })
		e.Field("in_stock", func(e *jx.Encoder) { e.Bool(p.InStock) })
		e.Field("stock_quantity", func(e *jx.Encoder) { e.Int(p.StockQuantity) })
		if len(p.Images) > 0 {
			e.Field("images", func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for _, img := range p.Images {
						e.Obj(func(e *jx.Encoder) {
							e.Field("id", func(e *jx.Encoder) { e.Int64(img.ID) })
							if img.Data != "" {
								e.Field("data", func(e *jx.Encoder) { e.Str(img.Data) })
							}
							if img.URL != "" {
								e.Field("url", func(e *jx.Encoder) { e.Str(img.URL) })
							}
						})
					}
				})
			})
		}
	})
}

func encodeFieldErrors(e *jx.Encoder, fields product.FieldErrors) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	e.Obj(func(e *jx.Encoder) {
		for _, k := range keys {
			msgs := fields[k]
			e.Field(k, func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for _, msg := range msgs {
						e.Str(msg)
					}
				})
			})
		}
	})
}
