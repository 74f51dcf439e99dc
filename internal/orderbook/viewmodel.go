package orderbook

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"

	"obuv/internal/domain"
	"obuv/internal/policy"
)

// Gateway часть API-клиента, нужная книге заказов
type Gateway interface {
	Orders(ctx context.Context) ([]domain.Order, error)
	PickupPoints(ctx context.Context) ([]domain.PickupPoint, error)
	CreateOrder(ctx context.Context, o domain.Order) (*domain.Order, error)
	UpdateOrder(ctx context.Context, id int64, o domain.Order) (*domain.Order, error)
	DeleteOrder(ctx context.Context, id int64) error
}

// Row строка позиции в форме заказа. Строки добавляются и убираются
// независимо; при отправке учитываются только заполненные.
type Row struct {
	ProductID string
	Quantity  int
}

// Draft буфер формы заказа
type Draft struct {
	OrderDate      string `validate:"required"`
	DeliveryDate   string `validate:"required"`
	PickupPointID  int64  `validate:"gt=0"`
	ClientFullName string `validate:"required"`
	Code           int    `validate:"gte=0"`
	Status         domain.OrderStatus
	Rows           []Row
}

// Entry проекция заказа для списка
type Entry struct {
	Order         domain.Order
	IsNew         bool
	OrderDateRu   string
	DeliveryRu    string
	PickupAddress string
	CanEdit       bool
}

// ViewModel экран заказов. Поиска по заказам нет — в отличие от
// товаров, список всегда приходит целиком.
type ViewModel struct {
	gw      Gateway
	session func() domain.Session

	Confirm func(prompt string) bool

	validate     *validator.Validate
	orders       []domain.Order
	pickupPoints []domain.PickupPoint
	editing      *domain.Order
}

func NewViewModel(gw Gateway, session func() domain.Session) *ViewModel {
	return &ViewModel{gw: gw, session: session, validate: validator.New()}
}

// Load запрашивает все заказы и строит список
func (vm *ViewModel) Load(ctx context.Context) ([]Entry, error) {
	orders, err := vm.gw.Orders(ctx)
	if err != nil {
		return nil, err
	}
	vm.orders = orders

	canEdit := policy.IsAdmin(vm.session())
	entries := make([]Entry, 0, len(orders))
	for _, o := range orders {
		address := o.PickupAddress
		if address == "" {
			address = "Не указан"
		}
		entries = append(entries, Entry{
			Order:         o,
			IsNew:         o.Status == domain.OrderStatusNew,
			OrderDateRu:   formatDateRu(o.OrderDate),
			DeliveryRu:    formatDateRu(o.DeliveryDate),
			PickupAddress: address,
			CanEdit:       canEdit,
		})
	}
	return entries, nil
}

// LoadPickupPoints наполняет выбор пункта выдачи в форме. Сбой не
// блокирует форму: пишем в журнал, список остаётся пустым.
func (vm *ViewModel) LoadPickupPoints(ctx context.Context) []domain.PickupPoint {
	points, err := vm.gw.PickupPoints(ctx)
	if err != nil {
		log.Printf("Ошибка загрузки пунктов выдачи: %v", err)
		return nil
	}
	vm.pickupPoints = points
	return points
}

// BeginAdd открывает пустую форму; дата заказа — сегодня
func (vm *ViewModel) BeginAdd() Draft {
	vm.editing = nil
	return Draft{
		OrderDate: time.Now().Format("2006-01-02"),
		Status:    domain.OrderStatusNew,
	}
}

// BeginEdit открывает форму по заказу из кэша
func (vm *ViewModel) BeginEdit(id int64) (Draft, error) {
	for i := range vm.orders {
		if vm.orders[i].ID == id {
			o := vm.orders[i]
			vm.editing = &o
			rows := make([]Row, 0, len(o.Items))
			for _, it := range o.Items {
				rows = append(rows, Row{ProductID: it.ProductID, Quantity: it.Quantity})
			}
			return Draft{
				OrderDate:      o.OrderDate,
				DeliveryDate:   o.DeliveryDate,
				PickupPointID:  o.PickupPointID,
				ClientFullName: o.ClientFullName,
				Code:           o.Code,
				Status:         o.Status,
				Rows:           rows,
			}, nil
		}
	}
	return Draft{}, fmt.Errorf("заказ %d не найден", id)
}

// Editing true, если открыта форма редактирования
func (vm *ViewModel) Editing() bool { return vm.editing != nil }

// CloseForm сбрасывает буфер формы
func (vm *ViewModel) CloseForm() { vm.editing = nil }

// collectItems отбирает заполненные строки формы
func collectItems(rows []Row) []domain.OrderItem {
	items := make([]domain.OrderItem, 0, len(rows))
	for _, r := range rows {
		if r.ProductID != "" && r.Quantity > 0 {
			items = append(items, domain.OrderItem{ProductID: r.ProductID, Quantity: r.Quantity})
		}
	}
	return items
}

// Submit собирает позиции и отправляет заказ. Без единой заполненной
// строки запрос на сервер не уходит вовсе.
func (vm *ViewModel) Submit(ctx context.Context, d Draft) error {
	items := collectItems(d.Rows)
	if len(items) == 0 {
		return &domain.ValidationError{Message: "Добавьте хотя бы один товар в заказ"}
	}
	if err := vm.validate.Struct(d); err != nil {
		return &domain.ValidationError{Message: "Заполните все поля формы корректно"}
	}

	o := domain.Order{
		OrderDate:      d.OrderDate,
		DeliveryDate:   d.DeliveryDate,
		PickupPointID:  d.PickupPointID,
		ClientFullName: d.ClientFullName,
		Code:           d.Code,
		Status:         d.Status,
		Items:          items,
	}

	var err error
	if vm.editing != nil {
		_, err = vm.gw.UpdateOrder(ctx, vm.editing.ID, o)
	} else {
		_, err = vm.gw.CreateOrder(ctx, o)
	}
	if err != nil {
		return err
	}

	vm.editing = nil
	return nil
}

// Delete удаляет заказ после явного подтверждения
func (vm *ViewModel) Delete(ctx context.Context, id int64) (bool, error) {
	if vm.Confirm != nil && !vm.Confirm("Вы уверены, что хотите удалить этот заказ?") {
		return false, nil
	}
	if err := vm.gw.DeleteOrder(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

// formatDateRu "2025-01-31" -> "31.01.2025"; непонятный формат
// возвращается как есть
func formatDateRu(s string) string {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return s
	}
	return t.Format("02.01.2006")
}
