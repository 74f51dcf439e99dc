package main

import (
	"bytes"
	"strings"
	"testing"

	"obuv/internal/catalog"
	"obuv/internal/config"
	"obuv/internal/domain"
	"obuv/internal/orderbook"
)

func newTestUI(t *testing.T) (*ui, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return newUI(strings.NewReader(""), &out, config.Config{}, nil), &out
}

func TestRenderCard_EditAffordancesFollowCanEdit(t *testing.T) {
	p := domain.Product{Article: "A112T4", Name: "Кроссовки", Price: 100, Quantity: 5, Unit: "пара"}

	u, out := newTestUI(t)
	u.renderCard(catalog.BuildCard(p, false, ""))
	if strings.Contains(out.String(), "edit-product") {
		t.Fatalf("card without edit rights must not offer actions:\n%s", out.String())
	}

	u, out = newTestUI(t)
	u.renderCard(catalog.BuildCard(p, true, ""))
	if !strings.Contains(out.String(), "edit-product A112T4") ||
		!strings.Contains(out.String(), "delete-product A112T4") {
		t.Fatalf("admin card must offer actions:\n%s", out.String())
	}
}

func TestRenderOrder_EditAffordancesFollowCanEdit(t *testing.T) {
	entry := orderbook.Entry{
		Order:         domain.Order{ID: 7, OrderNumber: "150125-1", Status: domain.OrderStatusNew},
		OrderDateRu:   "15.01.2025",
		DeliveryRu:    "20.01.2025",
		PickupAddress: "Не указан",
	}

	u, out := newTestUI(t)
	u.renderOrder(entry)
	if strings.Contains(out.String(), "edit-order") {
		t.Fatalf("order without edit rights must not offer actions:\n%s", out.String())
	}

	entry.CanEdit = true
	u, out = newTestUI(t)
	u.renderOrder(entry)
	if !strings.Contains(out.String(), "edit-order 7") ||
		!strings.Contains(out.String(), "delete-order 7") {
		t.Fatalf("admin order must offer actions:\n%s", out.String())
	}
}
