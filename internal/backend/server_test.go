package backend

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"obuv/internal/domain"
)

func setupServer(t *testing.T) *Server {
	t.Helper()
	store := NewStore()
	if err := store.AddUser("admin", "admin123", domain.User{Role: domain.RoleAdmin, FullName: "Админ"}); err != nil {
		t.Fatal(err)
	}
	if err := store.AddUser("manager", "manager123", domain.User{Role: domain.RoleManager, FullName: "Менеджер"}); err != nil {
		t.Fatal(err)
	}
	store.AddPickupPoint("г. Москва, ул. Ленина, д. 10")
	for _, p := range []domain.Product{
		{Article: "A112T4", Name: "Кроссовки", Category: "Спорт", Manufacturer: "Nike", Supplier: "СпортОпт", Unit: "пара", Price: 100, Discount: 20, Quantity: 5},
		{Article: "B204K1", Name: "Туфли", Category: "Классика", Manufacturer: "Ralf", Supplier: "ОбувьТорг", Unit: "пара", Price: 200, Quantity: 0},
	} {
		if err := store.CreateProduct(p); err != nil {
			t.Fatal(err)
		}
	}
	return NewServer(store, "test-secret", "")
}

func doJSON(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	return w
}

func loginAs(t *testing.T, s *Server, login, password string) string {
	t.Helper()
	form := url.Values{}
	form.Set("username", login)
	form.Set("password", password)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: code %d body %s", login, w.Code, w.Body.String())
	}
	var resp struct {
		AccessToken string      `json:"access_token"`
		User        domain.User `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.AccessToken == "" {
		t.Fatalf("empty token")
	}
	return resp.AccessToken
}

func TestLogin_WrongPassword(t *testing.T) {
	s := setupServer(t)
	form := url.Values{}
	form.Set("username", "admin")
	form.Set("password", "nope")
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("code %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Неверный логин или пароль") {
		t.Fatalf("body %s", w.Body.String())
	}
}

func TestListProducts_GuestIgnoresFilters(t *testing.T) {
	s := setupServer(t)
	w := doJSON(t, s, http.MethodGet, "/api/products?search=кроссовки&supplier=СпортОпт", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("code %d", w.Code)
	}
	var list []domain.Product
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("guest must get the full list, got %d", len(list))
	}
}

func TestListProducts_ManagerFiltersAndDerivedFields(t *testing.T) {
	s := setupServer(t)
	token := loginAs(t, s, "manager", "manager123")

	w := doJSON(t, s, http.MethodGet, "/api/products?search=%D0%BA%D1%80%D0%BE%D1%81%D1%81%D0%BE%D0%B2%D0%BA%D0%B8", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("code %d", w.Code)
	}
	var list []domain.Product
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Article != "A112T4" {
		t.Fatalf("filtered list %v", list)
	}
	if list[0].FinalPrice != 80 {
		t.Fatalf("final price: got %v", list[0].FinalPrice)
	}
	if list[0].OutOfStock {
		t.Fatalf("quantity 5 is not out of stock")
	}

	w = doJSON(t, s, http.MethodGet, "/api/products?sort_by_quantity=asc", token, nil)
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Article != "B204K1" {
		t.Fatalf("sort asc failed: %v", list)
	}
	if !list[0].OutOfStock {
		t.Fatalf("quantity 0 must be out of stock")
	}
}

func TestSuppliers_RoleGatedWithSentinel(t *testing.T) {
	s := setupServer(t)

	if w := doJSON(t, s, http.MethodGet, "/api/products/suppliers", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("guest code %d", w.Code)
	}

	token := loginAs(t, s, "manager", "manager123")
	w := doJSON(t, s, http.MethodGet, "/api/products/suppliers", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("code %d", w.Code)
	}
	var suppliers []string
	if err := json.Unmarshal(w.Body.Bytes(), &suppliers); err != nil {
		t.Fatal(err)
	}
	if len(suppliers) != 3 || suppliers[0] != SupplierAll {
		t.Fatalf("suppliers %v", suppliers)
	}
}

func TestProductCRUD_AdminOnly(t *testing.T) {
	s := setupServer(t)
	admin := loginAs(t, s, "admin", "admin123")
	manager := loginAs(t, s, "manager", "manager123")

	body := map[string]any{
		"article": "N1", "name": "Новинка", "category": "Обувь", "manufacturer": "Т",
		"supplier": "Т", "unit": "пара", "price": 10, "discount": 0, "quantity": 1,
	}

	if w := doJSON(t, s, http.MethodPost, "/api/products", manager, body); w.Code != http.StatusForbidden {
		t.Fatalf("manager create code %d", w.Code)
	}
	if w := doJSON(t, s, http.MethodPost, "/api/products", admin, body); w.Code != http.StatusCreated {
		t.Fatalf("admin create code %d", w.Code)
	}
	// повторный артикул
	w := doJSON(t, s, http.MethodPost, "/api/products", admin, body)
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "артикулом уже существует") {
		t.Fatalf("duplicate: code %d body %s", w.Code, w.Body.String())
	}

	body["name"] = "Новинка+"
	if w := doJSON(t, s, http.MethodPut, "/api/products/N1", admin, body); w.Code != http.StatusOK {
		t.Fatalf("update code %d", w.Code)
	}
	if w := doJSON(t, s, http.MethodDelete, "/api/products/N1", admin, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete code %d", w.Code)
	}
	if w := doJSON(t, s, http.MethodDelete, "/api/products/N1", admin, nil); w.Code != http.StatusNotFound {
		t.Fatalf("second delete code %d", w.Code)
	}
}

func orderBody() map[string]any {
	return map[string]any{
		"order_date":       "2025-01-15",
		"delivery_date":    "2025-01-20",
		"pickup_point_id":  1,
		"client_full_name": "Сидоров П.П.",
		"code":             101,
		"status":           "Новый",
		"products":         []map[string]any{{"product_id": "A112T4", "quantity": 2}},
	}
}

func TestOrders_RoleGated(t *testing.T) {
	s := setupServer(t)
	if w := doJSON(t, s, http.MethodGet, "/api/orders", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("guest code %d", w.Code)
	}
	manager := loginAs(t, s, "manager", "manager123")
	if w := doJSON(t, s, http.MethodGet, "/api/orders", manager, nil); w.Code != http.StatusOK {
		t.Fatalf("manager code %d", w.Code)
	}
	if w := doJSON(t, s, http.MethodPost, "/api/orders", manager, orderBody()); w.Code != http.StatusForbidden {
		t.Fatalf("manager create code %d", w.Code)
	}
}

func TestOrderFlow(t *testing.T) {
	s := setupServer(t)
	admin := loginAs(t, s, "admin", "admin123")

	w := doJSON(t, s, http.MethodPost, "/api/orders", admin, orderBody())
	if w.Code != http.StatusCreated {
		t.Fatalf("create code %d body %s", w.Code, w.Body.String())
	}
	var created domain.Order
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.OrderNumber != "150125-1" {
		t.Fatalf("order number %q", created.OrderNumber)
	}
	if created.PickupAddress != "г. Москва, ул. Ленина, д. 10" {
		t.Fatalf("pickup address %q", created.PickupAddress)
	}

	// второй заказ той же датой получает следующий номер
	w = doJSON(t, s, http.MethodPost, "/api/orders", admin, orderBody())
	var second domain.Order
	if err := json.Unmarshal(w.Body.Bytes(), &second); err != nil {
		t.Fatal(err)
	}
	if second.OrderNumber != "150125-2" {
		t.Fatalf("second order number %q", second.OrderNumber)
	}

	// товар из заказа удалить нельзя
	w = doJSON(t, s, http.MethodDelete, "/api/products/A112T4", admin, nil)
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "присутствует в заказах") {
		t.Fatalf("delete in orders: code %d body %s", w.Code, w.Body.String())
	}

	body := orderBody()
	body["status"] = "Завершен"
	w = doJSON(t, s, http.MethodPut, "/api/orders/1", admin, body)
	if w.Code != http.StatusOK {
		t.Fatalf("update code %d body %s", w.Code, w.Body.String())
	}
	var updated domain.Order
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatal(err)
	}
	if updated.Status != domain.OrderStatusCompleted || updated.OrderNumber != "150125-1" {
		t.Fatalf("update lost fields: %+v", updated)
	}

	if w := doJSON(t, s, http.MethodDelete, "/api/orders/1", admin, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete code %d", w.Code)
	}
}

func TestOrderCreate_BadPickupPoint(t *testing.T) {
	s := setupServer(t)
	admin := loginAs(t, s, "admin", "admin123")

	body := orderBody()
	body["pickup_point_id"] = 99
	w := doJSON(t, s, http.MethodPost, "/api/orders", admin, body)
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), "Пункт выдачи не найден") {
		t.Fatalf("code %d body %s", w.Code, w.Body.String())
	}
}

func TestOrderCreate_RequiresItems(t *testing.T) {
	s := setupServer(t)
	admin := loginAs(t, s, "admin", "admin123")

	body := orderBody()
	body["products"] = []map[string]any{}
	w := doJSON(t, s, http.MethodPost, "/api/orders", admin, body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code %d", w.Code)
	}
}

func TestUploadImage_UnknownProduct(t *testing.T) {
	s := setupServer(t)
	admin := loginAs(t, s, "admin", "admin123")

	req := httptest.NewRequest(http.MethodPost, "/api/products/NOPE/upload-image", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("code %d", w.Code)
	}
}
