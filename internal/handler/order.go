package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/velikanov/storefront/internal/domain/order"
)

// User-facing messages for the order creation workflow. The order path
// reports a single flat message, unlike the product path's field mapping.
const (
	msgNoOrderItems    = "Please provide a minimum of one Order Item/Product with your order"
	msgProductMissing  = "This Product does not exist."
	msgInvalidPromo    = "The Promo code provided is invalid."
	msgUnauthenticated = "Please provide a valid access token."
)

// createOrder handles POST /api/orders.
func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	usr, err := h.currentUser(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, msgUnauthenticated)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "unable to read request body")
		return
	}

	req, err := decodeOrderRequest(body)
	if err != nil {
		// Malformed parameters propagate the decoder's message verbatim.
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.orderService.Create(r.Context(), usr, req)
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}

	var e jx.Encoder
	encodeOrder(&e, o)
	writeJSON(w, http.StatusCreated, &e)
}

// writeOrderError maps domain errors from the order workflow to the flat
// user-facing messages of the API.
func (h *Handler) writeOrderError(w http.ResponseWriter, r *http.Request, err error) {
	var pnfErr *order.ProductNotFoundError
	switch {
	case errors.Is(err, order.ErrNoItems):
		writeMessage(w, http.StatusBadRequest, msgNoOrderItems)
	case errors.As(err, &pnfErr), errors.Is(err, order.ErrInvalidItem):
		// Missing products and rejected items are deliberately
		// indistinguishable to the caller.
		writeMessage(w, http.StatusUnprocessableEntity, msgProductMissing)
	case errors.Is(err, order.ErrInvalidPromoCode):
		writeMessage(w, http.StatusUnprocessableEntity, msgInvalidPromo)
	default:
		internalError(w, r, err)
	}
}

// decodeOrderRequest parses {order_items: [{product_id, quantity}], promotion_code?}.
func decodeOrderRequest(body []byte) (order.CreateRequest, error) {
	var req order.CreateRequest

	d := jx.DecodeBytes(body)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "order_items":
			return d.Arr(func(d *jx.Decoder) error {
				item, err := decodeOrderItem(d)
				if err != nil {
					return err
				}
				req.Items = append(req.Items, item)
				return nil
			})
		case "promotion_code":
			code, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "promotion_code")
			}
			req.PromotionCode = code
			return nil
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return order.CreateRequest{}, errors.Wrap(err, "decode order request")
	}
	return req, nil
}

func decodeOrderItem(d *jx.Decoder) (order.ItemRequest, error) {
	var item order.ItemRequest
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "product_id":
			id, err := d.Int64()
			if err != nil {
				return errors.Wrap(err, "product_id")
			}
			item.ProductID = id
			return nil
		case "quantity":
			q, err := d.Int()
			if err != nil {
				return errors.Wrap(err, "quantity")
			}
			item.Quantity = q
			return nil
		default:
			return d.Skip()
		}
	})
	return item, err
}

// encodeOrder serializes a persisted order with its items.
func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(o.ID) })
		e.Field("user_id", func(e *jx.Encoder) { e.Int64(o.UserID) })
		e.Field("total", func(e *jx.Encoder) { e.Int64(o.Total) })
		e.Field("state", func(e *jx.Encoder) { e.Str(string(o.State)) })
		if o.PromotionID != nil {
			e.Field("promotion_id", func(e *jx.Encoder) { e.Int64(*o.PromotionID) })
		}
		e.Field("order_items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, item := range o.Items {
					e.Obj(func(e *jx.Encoder) {
						e.Field("id", func(e *jx.Encoder) { e.Int64(item.ID) })
						e.Field("product_id", func(e *jx.Encoder) { e.Int64(item.ProductID) })
						e.Field("quantity", func(e *jx.Encoder) { e.Int(item.Quantity) })
						e.Field("price", func(e *jx.Encoder) { e.Int64(item.Price) })
					})
				}
			})
		})
	})
}
