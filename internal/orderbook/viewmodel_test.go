package orderbook

import (
	"context"
	"errors"
	"testing"
	"time"

	"obuv/internal/domain"
)

type fakeGateway struct {
	orders []domain.Order
	points []domain.PickupPoint

	created []domain.Order
	updated map[int64]domain.Order
	deleted []int64

	pointsErr error
}

func newFakeGateway(orders ...domain.Order) *fakeGateway {
	return &fakeGateway{orders: orders, updated: make(map[int64]domain.Order)}
}

func (f *fakeGateway) Orders(context.Context) ([]domain.Order, error) {
	return f.orders, nil
}

func (f *fakeGateway) PickupPoints(context.Context) ([]domain.PickupPoint, error) {
	if f.pointsErr != nil {
		return nil, f.pointsErr
	}
	return f.points, nil
}

func (f *fakeGateway) CreateOrder(_ context.Context, o domain.Order) (*domain.Order, error) {
	o.ID = int64(len(f.created) + 1)
	f.created = append(f.created, o)
	return &o, nil
}

func (f *fakeGateway) UpdateOrder(_ context.Context, id int64, o domain.Order) (*domain.Order, error) {
	f.updated[id] = o
	return &o, nil
}

func (f *fakeGateway) DeleteOrder(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func adminSession() func() domain.Session {
	return func() domain.Session {
		return domain.Session{Token: "t", User: domain.User{Role: domain.RoleAdmin}}
	}
}

func sampleOrder() domain.Order {
	return domain.Order{
		ID:             7,
		OrderNumber:    "150125-1",
		OrderDate:      "2025-01-15",
		DeliveryDate:   "2025-01-20",
		PickupPointID:  1,
		ClientFullName: "Сидоров П.П.",
		Code:           101,
		Status:         domain.OrderStatusNew,
		Items:          []domain.OrderItem{{ProductID: "A112T4", Quantity: 2}},
	}
}

func TestLoad_FormatsEntries(t *testing.T) {
	withAddress := sampleOrder()
	withAddress.PickupAddress = "г. Москва, ул. Ленина, д. 10"
	withoutAddress := sampleOrder()
	withoutAddress.ID = 8
	withoutAddress.PickupAddress = ""
	withoutAddress.Status = domain.OrderStatusCompleted

	gw := newFakeGateway(withAddress, withoutAddress)
	vm := NewViewModel(gw, adminSession())

	entries, err := vm.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries")
	}
	if entries[0].OrderDateRu != "15.01.2025" || entries[0].DeliveryRu != "20.01.2025" {
		t.Fatalf("date formatting: %+v", entries[0])
	}
	if !entries[0].IsNew || entries[1].IsNew {
		t.Fatalf("status flag wrong")
	}
	if entries[1].PickupAddress != "Не указан" {
		t.Fatalf("missing address must fall back, got %q", entries[1].PickupAddress)
	}
}

func TestSubmit_NoValidRowsBlocksWithoutNetworkCall(t *testing.T) {
	gw := newFakeGateway()
	vm := NewViewModel(gw, adminSession())

	draft := vm.BeginAdd()
	draft.DeliveryDate = "2025-01-20"
	draft.ClientFullName = "Сидоров П.П."
	draft.PickupPointID = 1
	draft.Rows = []Row{{ProductID: "", Quantity: 3}, {ProductID: "A112T4", Quantity: 0}}

	err := vm.Submit(context.Background(), draft)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Message != "Добавьте хотя бы один товар в заказ" {
		t.Fatalf("unexpected message %q", verr.Message)
	}
	if len(gw.created)+len(gw.updated) != 0 {
		t.Fatalf("no network call expected")
	}
}

func TestSubmit_AggregatesOnlyValidRows(t *testing.T) {
	gw := newFakeGateway()
	vm := NewViewModel(gw, adminSession())

	draft := vm.BeginAdd()
	if draft.OrderDate != time.Now().Format("2006-01-02") || draft.Status != domain.OrderStatusNew {
		t.Fatalf("new draft must default to today and status «Новый», got %+v", draft)
	}
	draft.DeliveryDate = "2025-01-20"
	draft.ClientFullName = "Сидоров П.П."
	draft.PickupPointID = 2
	draft.Rows = []Row{
		{ProductID: "A112T4", Quantity: 2},
		{ProductID: "", Quantity: 5},
		{ProductID: "B204K1", Quantity: 1},
	}

	if err := vm.Submit(context.Background(), draft); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(gw.created) != 1 {
		t.Fatalf("expected one create")
	}
	items := gw.created[0].Items
	if len(items) != 2 || items[0].ProductID != "A112T4" || items[1].ProductID != "B204K1" {
		t.Fatalf("unexpected items %v", items)
	}
	if gw.created[0].PickupPointID != 2 {
		t.Fatalf("pickup point lost")
	}
}

func TestSubmit_EditIssuesUpdate(t *testing.T) {
	gw := newFakeGateway(sampleOrder())
	vm := NewViewModel(gw, adminSession())

	if _, err := vm.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	draft, err := vm.BeginEdit(7)
	if err != nil {
		t.Fatalf("begin edit: %v", err)
	}
	draft.Status = domain.OrderStatusCompleted

	if err := vm.Submit(context.Background(), draft); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(gw.created) != 0 {
		t.Fatalf("edit must not create")
	}
	saved, ok := gw.updated[7]
	if !ok || saved.Status != domain.OrderStatusCompleted {
		t.Fatalf("expected update of order 7, got %v", gw.updated)
	}
	if vm.Editing() {
		t.Fatalf("form must close after submit")
	}
}

func TestDelete_ConfirmationGate(t *testing.T) {
	gw := newFakeGateway(sampleOrder())
	vm := NewViewModel(gw, adminSession())

	vm.Confirm = func(string) bool { return false }
	if deleted, err := vm.Delete(context.Background(), 7); err != nil || deleted {
		t.Fatalf("declined confirmation must not delete")
	}
	if len(gw.deleted) != 0 {
		t.Fatalf("no request expected after decline")
	}

	vm.Confirm = func(string) bool { return true }
	if deleted, err := vm.Delete(context.Background(), 7); err != nil || !deleted {
		t.Fatalf("confirmed delete failed")
	}
	if len(gw.deleted) != 1 || gw.deleted[0] != 7 {
		t.Fatalf("unexpected delete calls %v", gw.deleted)
	}
}

func TestLoadPickupPoints_FailureLogsOnly(t *testing.T) {
	gw := newFakeGateway()
	gw.pointsErr = errors.New("boom")
	vm := NewViewModel(gw, adminSession())

	if got := vm.LoadPickupPoints(context.Background()); got != nil {
		t.Fatalf("prefetch failure must yield empty list, got %v", got)
	}
}
