package domain

// Role роль пользователя в системе
type Role string

const (
	RoleGuest   Role = "Гость"
	RoleManager Role = "Менеджер"
	RoleAdmin   Role = "Администратор"
)

// User данные пользователя, возвращаемые сервером при входе
type User struct {
	Role     Role   `json:"role"`
	FullName string `json:"full_name"`
}

// Session текущий сеанс. Токен отсутствует тогда и только тогда,
// когда роль — Гость или сеанс пуст.
type Session struct {
	Token string
	User  User
}

// Authenticated true, если сеанс подтверждён сервером
func (s Session) Authenticated() bool { return s.Token != "" }

// Empty true, если сеанс не установлен (ни входа, ни гостя)
func (s Session) Empty() bool { return s.Token == "" && s.User.Role == "" }

// Product представляет товар магазина. Article — первичный ключ,
// FinalPrice и OutOfStock — производные поля: сервер считает их сам,
// клиент при необходимости пересчитывает.
type Product struct {
	Article      string  `json:"article"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Manufacturer string  `json:"manufacturer"`
	Supplier     string  `json:"supplier"`
	Unit         string  `json:"unit"`
	Price        float64 `json:"price"`
	Discount     int     `json:"discount"`
	Quantity     int     `json:"quantity"`
	Description  string  `json:"description,omitempty"`
	Photo        string  `json:"photo,omitempty"`
	FinalPrice   float64 `json:"final_price"`
	OutOfStock   bool    `json:"out_of_stock"`
}

// ComputeFinalPrice цена с учётом скидки, без округления
func (p Product) ComputeFinalPrice() float64 {
	return p.Price * (1 - float64(p.Discount)/100)
}

// OrderStatus статус заказа
type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "Новый"
	OrderStatusCompleted OrderStatus = "Завершен"
)

// OrderItem позиция заказа: артикул товара и количество
type OrderItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Order сущность заказа. PickupAddress сервер подставляет из справочника
// пунктов выдачи, в теле запросов оно не участвует.
type Order struct {
	ID             int64       `json:"id"`
	OrderNumber    string      `json:"order_number"`
	OrderDate      string      `json:"order_date"`
	DeliveryDate   string      `json:"delivery_date"`
	PickupPointID  int64       `json:"pickup_point_id"`
	PickupAddress  string      `json:"pickup_address,omitempty"`
	ClientFullName string      `json:"client_full_name"`
	Code           int         `json:"code"`
	Status         OrderStatus `json:"status"`
	Items          []OrderItem `json:"products"`
}

// PickupPoint пункт выдачи заказов
type PickupPoint struct {
	ID      int64  `json:"id"`
	Address string `json:"address"`
}
