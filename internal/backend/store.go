package backend

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"obuv/internal/domain"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrArticleTaken  = errors.New("article already exists")
	ErrInOrders      = errors.New("product is referenced by orders")
	ErrBadPickup     = errors.New("pickup point not found")
	ErrBadItem       = errors.New("order item product not found")
	ErrBadCredential = errors.New("invalid credentials")
)

// SupplierAll сентинел «без фильтра по поставщику», первый элемент
// списка поставщиков
const SupplierAll = "Все поставщики"

// Account учётная запись с хэшем пароля
type Account struct {
	Login        string
	PasswordHash []byte
	User         domain.User
}

// Store потокобезопасное in-memory хранилище сервера разработки
type Store struct {
	mu          sync.RWMutex
	products    map[string]domain.Product
	orders      map[int64]domain.Order
	points      map[int64]domain.PickupPoint
	users       map[string]Account
	nextOrderID int64
	nextPointID int64
}

func NewStore() *Store {
	return &Store{
		products:    make(map[string]domain.Product),
		orders:      make(map[int64]domain.Order),
		points:      make(map[int64]domain.PickupPoint),
		users:       make(map[string]Account),
		nextOrderID: 1,
		nextPointID: 1,
	}
}

// AddUser регистрирует пользователя, пароль хэшируется bcrypt
func (s *Store) AddUser(login, password string, user domain.User) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[login] = Account{Login: login, PasswordHash: hash, User: user}
	return nil
}

// Authenticate проверяет логин и пароль
func (s *Store) Authenticate(login, password string) (domain.User, error) {
	s.mu.RLock()
	acc, ok := s.users[login]
	s.mu.RUnlock()
	if !ok {
		return domain.User{}, ErrBadCredential
	}
	if bcrypt.CompareHashAndPassword(acc.PasswordHash, []byte(password)) != nil {
		return domain.User{}, ErrBadCredential
	}
	return acc.User, nil
}

func (s *Store) AddPickupPoint(address string) domain.PickupPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := domain.PickupPoint{ID: s.nextPointID, Address: address}
	s.nextPointID++
	s.points[p.ID] = p
	return p
}

func (s *Store) PickupPoints() []domain.PickupPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.PickupPoint, 0, len(s.points))
	for _, p := range s.points {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) CreateProduct(p domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.Article]; ok {
		return ErrArticleTaken
	}
	s.products[p.Article] = p
	return nil
}

func (s *Store) GetProduct(article string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[article]
	if !ok {
		return nil, ErrNotFound
	}
	cp := p
	return &cp, nil
}

func (s *Store) UpdateProduct(article string, p domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.products[article]
	if !ok {
		return ErrNotFound
	}
	p.Article = article
	if p.Photo == "" {
		p.Photo = old.Photo
	}
	s.products[article] = p
	return nil
}

func (s *Store) DeleteProduct(article string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[article]; !ok {
		return ErrNotFound
	}
	for _, o := range s.orders {
		for _, it := range o.Items {
			if it.ProductID == article {
				return ErrInOrders
			}
		}
	}
	delete(s.products, article)
	return nil
}

// SetPhoto запоминает путь к загруженному изображению товара
func (s *Store) SetPhoto(article, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[article]
	if !ok {
		return ErrNotFound
	}
	p.Photo = path
	s.products[article] = p
	return nil
}

// ListProducts серверная фильтрация: одна подстрока поиска по шести
// полям (ИЛИ), точное совпадение поставщика, сортировка по количеству
func (s *Store) ListProducts(search, supplier, sortByQuantity string) []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(search)
	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if needle != "" && !productContains(p, needle) {
			continue
		}
		if supplier != "" && supplier != SupplierAll && p.Supplier != supplier {
			continue
		}
		out = append(out, p)
	}

	switch sortByQuantity {
	case "asc":
		sort.Slice(out, func(i, j int) bool { return out[i].Quantity < out[j].Quantity })
	case "desc":
		sort.Slice(out, func(i, j int) bool { return out[i].Quantity > out[j].Quantity })
	default:
		sort.Slice(out, func(i, j int) bool { return out[i].Article < out[j].Article })
	}
	return out
}

func productContains(p domain.Product, needle string) bool {
	for _, field := range []string{p.Article, p.Name, p.Supplier, p.Manufacturer, p.Category, p.Description} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// Suppliers отсортированный список поставщиков с сентинелом первым
func (s *Store) Suppliers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	out := []string{SupplierAll}
	names := make([]string, 0, len(s.products))
	for _, p := range s.products {
		if _, ok := seen[p.Supplier]; ok {
			continue
		}
		seen[p.Supplier] = struct{}{}
		names = append(names, p.Supplier)
	}
	sort.Strings(names)
	return append(out, names...)
}

// CreateOrder проверяет пункт выдачи и товары, назначает id и номер
// заказа вида ДДММГГ-N, где N — порядковый номер за эту дату
func (s *Store) CreateOrder(o domain.Order) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	point, ok := s.points[o.PickupPointID]
	if !ok {
		return nil, ErrBadPickup
	}
	for _, it := range o.Items {
		if _, ok := s.products[it.ProductID]; !ok {
			return nil, ErrBadItem
		}
	}

	sameDate := 0
	for _, existing := range s.orders {
		if existing.OrderDate == o.OrderDate {
			sameDate++
		}
	}
	o.ID = s.nextOrderID
	s.nextOrderID++
	o.OrderNumber = generateOrderNumber(o.OrderDate, sameDate+1)
	o.PickupAddress = point.Address

	s.orders[o.ID] = o
	cp := o
	return &cp, nil
}

func (s *Store) UpdateOrder(id int64, o domain.Order) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	point, ok := s.points[o.PickupPointID]
	if !ok {
		return nil, ErrBadPickup
	}
	for _, it := range o.Items {
		if _, ok := s.products[it.ProductID]; !ok {
			return nil, ErrBadItem
		}
	}

	o.ID = id
	o.OrderNumber = old.OrderNumber
	o.PickupAddress = point.Address
	s.orders[id] = o
	cp := o
	return &cp, nil
}

func (s *Store) DeleteOrder(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[id]; !ok {
		return ErrNotFound
	}
	delete(s.orders, id)
	return nil
}

func (s *Store) ListOrders() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func generateOrderNumber(orderDate string, n int) string {
	t, err := time.Parse("2006-01-02", orderDate)
	if err != nil {
		return fmt.Sprintf("000000-%d", n)
	}
	return fmt.Sprintf("%s-%d", t.Format("020106"), n)
}
