//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestCreateOrder_NoAuth(t *testing.T) {
	req := orderRequest{
		OrderItems: []orderItemRequest{{ProductID: 1, Quantity: 1}},
	}
	resp := doPost(t, "/api/orders", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestCreateOrder_InvalidToken(t *testing.T) {
	req := orderRequest{
		OrderItems: []orderItemRequest{{ProductID: 1, Quantity: 1}},
	}
	resp := doPostWithAuth(t, "/api/orders", req, "wrong-token")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestCreateOrder_EmptyItems(t *testing.T) {
	req := orderRequest{OrderItems: []orderItemRequest{}}
	resp := doPostWithAuth(t, "/api/orders", req, testAccessToken)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	body := decodeJSON[messageResponse](t, resp)
	want := "Please provide a minimum of one Order Item/Product with your order"
	if body.Message != want {
		t.Errorf("message: got %q, want %q", body.Message, want)
	}
}

func TestCreateOrder_MissingItemsKey(t *testing.T) {
	resp := doPostWithAuth(t, "/api/orders", map[string]any{}, testAccessToken)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCreateOrder_InvalidProduct(t *testing.T) {
	req := orderRequest{
		OrderItems: []orderItemRequest{{ProductID: 9999, Quantity: 1}},
	}
	resp := doPostWithAuth(t, "/api/orders", req, testAccessToken)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}

	body := decodeJSON[messageResponse](t, resp)
	if body.Message != "This Product does not exist." {
		t.Errorf("message: got %q", body.Message)
	}
}

func TestCreateOrder_SingleItem(t *testing.T) {
	req := orderRequest{
		OrderItems: []orderItemRequest{{ProductID: 1, Quantity: 1}}, // Waffle 650
	}
	resp := doPostWithAuth(t, "/api/orders", req, testAccessToken)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	order := decodeJSON[orderResponse](t, resp)
	if order.Total != 650 {
		t.Errorf("total: got %d, want 650", order.Total)
	}
	if order.State != "confirmed" {
		t.Errorf("state: got %q, want confirmed", order.State)
	}
}

func TestCreateOrder_MultipleItems(t *testing.T) {
	req := orderRequest{
		OrderItems: []orderItemRequest{
			{ProductID: 1, Quantity: 2}, // 2x Waffle 650 = 1300
			{ProductID: 2, Quantity: 1}, // 1x Creme Brulee 700
		},
	}
	resp := doPostWithAuth(t, "/api/orders", req, testAccessToken)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	order := decodeJSON[orderResponse](t, resp)
	if order.Total != 2000 {
		t.Errorf("total: got %d, want 2000", order.Total)
	}
	if len(order.OrderItems) != 2 {
		t.Errorf("expected 2 items, got %d", len(order.OrderItems))
	}
}

func TestCreateOrder_WithPromotion(t *testing.T) {
	req := orderRequest{
		OrderItems:    []orderItemRequest{{ProductID: 3, Quantity: 1}}, // Macaron 800
		PromotionCode: "HAPPYHOURS",                                    // flat 180 off
	}
	resp := doPostWithAuth(t, "/api/orders", req, testAccessToken)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	order := decodeJSON[orderResponse](t, resp)
	if order.Total != 620 {
		t.Errorf("total: got %d, want 620", order.Total)
	}
	if order.PromotionID == 0 {
		t.Error("promotion_id not set")
	}
}

func TestCreateOrder_DuplicatePromoCodeUsesNewest(t *testing.T) {
	// The seed data carries two SAVE10 promotions (discounts 100 and 250,
	// in that creation order); the most recently created one must apply.
	req := orderRequest{
		OrderItems:    []orderItemRequest{{ProductID: 1, Quantity: 1}}, // Waffle 650
		PromotionCode: "SAVE10",
	}
	resp := doPostWithAuth(t, "/api/orders", req, testAccessToken)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	order := decodeJSON[orderResponse](t, resp)
	if order.Total != 400 {
		t.Errorf("total: got %d, want 400 (650 - 250, newest SAVE10)", order.Total)
	}
}

func TestCreateOrder_InvalidPromotion(t *testing.T) {
	req := orderRequest{
		OrderItems:    []orderItemRequest{{ProductID: 1, Quantity: 1}},
		PromotionCode: "NONEXISTENT",
	}
	resp := doPostWithAuth(t, "/api/orders", req, testAccessToken)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}

	body := decodeJSON[messageResponse](t, resp)
	if body.Message != "The Promo code provided is invalid." {
		t.Errorf("message: got %q", body.Message)
	}
}

func TestCreateOrder_ZeroQuantity(t *testing.T) {
	req := orderRequest{
		OrderItems: []orderItemRequest{{ProductID: 1, Quantity: 0}},
	}
	resp := doPostWithAuth(t, "/api/orders", req, testAccessToken)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestCreateOrder_ResponseStructure(t *testing.T) {
	req := orderRequest{
		OrderItems: []orderItemRequest{{ProductID: 1, Quantity: 1}},
	}
	resp := doPostWithAuth(t, "/api/orders", req, testAccessToken)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	order := decodeJSON[orderResponse](t, resp)
	if order.ID == 0 {
		t.Error("order id not set")
	}
	if order.UserID == 0 {
		t.Error("user id not set")
	}
	if len(order.OrderItems) != 1 {
		t.Fatalf("expected 1 item, got %d", len(order.OrderItems))
	}

	item := order.OrderItems[0]
	if item.ProductID != 1 {
		t.Errorf("product id: got %d, want 1", item.ProductID)
	}
	if item.Price != 650 {
		t.Errorf("item price: got %d, want 650", item.Price)
	}
}
