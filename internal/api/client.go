package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"obuv/internal/domain"
)

// Client обёртка над REST-интерфейсом сервера. Один метод на ресурс;
// Authorization: Bearer добавляется ко всем запросам, когда TokenSource
// возвращает непустой токен.
type Client struct {
	BaseURL string
	HTTP    *http.Client

	// TokenSource возвращает текущий bearer-токен; пустая строка —
	// запрос уходит без авторизации
	TokenSource func() string
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// ProductQuery параметры серверной фильтрации списка товаров
type ProductQuery struct {
	Search         string
	Supplier       string
	SortByQuantity string // "asc", "desc" или пусто
}

type loginResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        domain.User `json:"user"`
}

// Login отправляет form-encoded логин и пароль. Любой не-2xx ответ
// трактуется как неверные учётные данные.
func (c *Client) Login(ctx context.Context, username, password string) (string, domain.User, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/auth/login", strings.NewReader(form.Encode()))
	if err != nil {
		return "", domain.User{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", domain.User{}, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", domain.User{}, &AuthError{Message: "Неверный логин или пароль"}
	}

	var lr loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return "", domain.User{}, err
	}
	return lr.AccessToken, lr.User, nil
}

// Products список товаров с серверной фильтрацией
func (c *Client) Products(ctx context.Context, q ProductQuery) ([]domain.Product, error) {
	params := url.Values{}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.Supplier != "" {
		params.Set("supplier", q.Supplier)
	}
	if q.SortByQuantity != "" {
		params.Set("sort_by_quantity", q.SortByQuantity)
	}
	path := "/api/products"
	if enc := params.Encode(); enc != "" {
		path += "?" + enc
	}

	var out []domain.Product
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out, "Ошибка загрузки товаров"); err != nil {
		return nil, err
	}
	return out, nil
}

// Product один товар по артикулу
func (c *Client) Product(ctx context.Context, article string) (*domain.Product, error) {
	var p domain.Product
	if err := c.doJSON(ctx, http.MethodGet, "/api/products/"+url.PathEscape(article), nil, &p, "Ошибка загрузки товара"); err != nil {
		return nil, err
	}
	return &p, nil
}

// Suppliers список поставщиков для фильтра; первый элемент —
// сентинел «Все поставщики»
func (c *Client) Suppliers(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.doJSON(ctx, http.MethodGet, "/api/products/suppliers", nil, &out, "Ошибка загрузки поставщиков"); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateProduct(ctx context.Context, p domain.Product) (*domain.Product, error) {
	var saved domain.Product
	if err := c.doJSON(ctx, http.MethodPost, "/api/products", p, &saved, "Ошибка сохранения товара"); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *Client) UpdateProduct(ctx context.Context, article string, p domain.Product) (*domain.Product, error) {
	var saved domain.Product
	if err := c.doJSON(ctx, http.MethodPut, "/api/products/"+url.PathEscape(article), p, &saved, "Ошибка сохранения товара"); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *Client) DeleteProduct(ctx context.Context, article string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/products/"+url.PathEscape(article), nil, nil, "Ошибка удаления товара")
}

// UploadProductImage отдельный multipart-запрос, выполняется только
// после успешного сохранения самого товара
func (c *Client) UploadProductImage(ctx context.Context, article, filename string, file io.Reader) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(fw, file); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	path := "/api/products/" + url.PathEscape(article) + "/upload-image"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.authorize(req)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp, "Ошибка загрузки изображения")
	}
	return nil
}

func (c *Client) Orders(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	if err := c.doJSON(ctx, http.MethodGet, "/api/orders", nil, &out, "Ошибка загрузки заказов"); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) PickupPoints(ctx context.Context) ([]domain.PickupPoint, error) {
	var out []domain.PickupPoint
	if err := c.doJSON(ctx, http.MethodGet, "/api/orders/pickup-points", nil, &out, "Ошибка загрузки пунктов выдачи"); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateOrder(ctx context.Context, o domain.Order) (*domain.Order, error) {
	var saved domain.Order
	if err := c.doJSON(ctx, http.MethodPost, "/api/orders", o, &saved, "Ошибка сохранения заказа"); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *Client) UpdateOrder(ctx context.Context, id int64, o domain.Order) (*domain.Order, error) {
	var saved domain.Order
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/orders/%d", id), o, &saved, "Ошибка сохранения заказа"); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *Client) DeleteOrder(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/orders/%d", id), nil, nil, "Ошибка удаления заказа")
}

// doJSON выполняет запрос с JSON-телом и разбирает JSON-ответ.
// На не-2xx читает {"detail": ...} и возвращает RequestError.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any, fallback string) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp, fallback)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) authorize(req *http.Request) {
	if c.TokenSource == nil {
		return
	}
	if token := c.TokenSource(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func decodeError(resp *http.Response, fallback string) error {
	var body struct {
		Detail string `json:"detail"`
	}
	detail := fallback
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Detail != "" {
		detail = body.Detail
	}
	return &RequestError{StatusCode: resp.StatusCode, Detail: detail}
}
