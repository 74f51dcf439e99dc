// Package backend локальный сервер разработки, реализующий REST-интерфейс,
// который потребляет клиент. Данные живут в памяти, как у настоящего
// сервера ведут себя коды ответов, тела ошибок {"detail": ...} и права
// доступа по ролям.
package backend

import (
	"errors"
	"math"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"obuv/internal/domain"
)

type Server struct {
	engine   *gin.Engine
	store    *Store
	secret   string
	imageDir string
}

func NewServer(store *Store, secret, imageDir string) *Server {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	s := &Server{engine: r, store: store, secret: secret, imageDir: imageDir}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	s.engine.Use(optionalAuth(s.secret))

	if s.imageDir != "" {
		s.engine.Static("/static/images", s.imageDir)
	}

	auth := s.engine.Group("/api/auth")
	auth.POST("/login", s.login)

	products := s.engine.Group("/api/products")
	products.GET("", s.listProducts)
	products.GET("/suppliers", requireManagerOrAdmin(), s.listSuppliers)
	products.GET("/:article", s.getProduct)
	products.POST("", requireAdmin(), s.createProduct)
	products.PUT("/:article", requireAdmin(), s.updateProduct)
	products.DELETE("/:article", requireAdmin(), s.deleteProduct)
	products.POST("/:article/upload-image", requireAdmin(), s.uploadImage)

	orders := s.engine.Group("/api/orders")
	orders.GET("", requireManagerOrAdmin(), s.listOrders)
	orders.GET("/pickup-points", requireManagerOrAdmin(), s.listPickupPoints)
	orders.POST("", requireAdmin(), s.createOrder)
	orders.PUT("/:id", requireAdmin(), s.updateOrder)
	orders.DELETE("/:id", requireAdmin(), s.deleteOrder)
}

func (s *Server) login(c *gin.Context) {
	login := c.PostForm("username")
	password := c.PostForm("password")

	user, err := s.store.Authenticate(login, password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Неверный логин или пароль"})
		return
	}

	token, err := GenerateToken(s.secret, login, user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Не удалось выпустить токен"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"user":         user,
	})
}

// derived заполняет производные поля так же, как считал бы настоящий
// сервер: final_price округляется до копеек
func derived(p domain.Product) domain.Product {
	p.FinalPrice = math.Round(p.ComputeFinalPrice()*100) / 100
	p.OutOfStock = p.Quantity == 0
	return p
}

// listProducts фильтры действуют только для менеджера и администратора,
// гость всегда получает полный список
func (s *Server) listProducts(c *gin.Context) {
	var search, supplier, sortBy string
	if user, ok := currentUser(c); ok &&
		(user.Role == domain.RoleManager || user.Role == domain.RoleAdmin) {
		search = c.Query("search")
		supplier = c.Query("supplier")
		sortBy = c.Query("sort_by_quantity")
	}

	list := s.store.ListProducts(search, supplier, sortBy)
	out := make([]domain.Product, 0, len(list))
	for _, p := range list {
		out = append(out, derived(p))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) listSuppliers(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Suppliers())
}

func (s *Server) getProduct(c *gin.Context) {
	p, err := s.store.GetProduct(c.Param("article"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Товар не найден"})
		return
	}
	c.JSON(http.StatusOK, derived(*p))
}

type productReq struct {
	Article      string  `json:"article"`
	Name         string  `json:"name" binding:"required"`
	Category     string  `json:"category" binding:"required"`
	Manufacturer string  `json:"manufacturer" binding:"required"`
	Supplier     string  `json:"supplier" binding:"required"`
	Unit         string  `json:"unit" binding:"required"`
	Price        float64 `json:"price" binding:"gte=0"`
	Discount     int     `json:"discount" binding:"gte=0,lte=100"`
	Quantity     int     `json:"quantity" binding:"gte=0"`
	Description  string  `json:"description"`
}

func (r productReq) toDomain() domain.Product {
	return domain.Product{
		Article:      r.Article,
		Name:         r.Name,
		Category:     r.Category,
		Manufacturer: r.Manufacturer,
		Supplier:     r.Supplier,
		Unit:         r.Unit,
		Price:        r.Price,
		Discount:     r.Discount,
		Quantity:     r.Quantity,
		Description:  r.Description,
	}
}

func (s *Server) createProduct(c *gin.Context) {
	var req productReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Article == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Некорректные данные товара"})
		return
	}
	p := req.toDomain()
	if err := s.store.CreateProduct(p); err != nil {
		if errors.Is(err, ErrArticleTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Товар с таким артикулом уже существует"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, derived(p))
}

func (s *Server) updateProduct(c *gin.Context) {
	article := c.Param("article")
	var req productReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Некорректные данные товара"})
		return
	}
	p := req.toDomain()
	if err := s.store.UpdateProduct(article, p); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Товар не найден"})
		return
	}
	saved, _ := s.store.GetProduct(article)
	c.JSON(http.StatusOK, derived(*saved))
}

func (s *Server) deleteProduct(c *gin.Context) {
	err := s.store.DeleteProduct(c.Param("article"))
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "Товар не найден"})
	case errors.Is(err, ErrInOrders):
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Невозможно удалить товар, который присутствует в заказах"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
	default:
		c.Status(http.StatusNoContent)
	}
}

func (s *Server) uploadImage(c *gin.Context) {
	article := c.Param("article")
	if _, err := s.store.GetProduct(article); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Товар не найден"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Файл не передан"})
		return
	}

	filename := article + filepath.Ext(file.Filename)
	if s.imageDir != "" {
		if err := c.SaveUploadedFile(file, filepath.Join(s.imageDir, filename)); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Не удалось сохранить файл"})
			return
		}
	}

	path := "/static/images/" + filename
	if err := s.store.SetPhoto(article, path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Товар не найден"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"filename": filename, "path": path})
}

type orderItemReq struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"gt=0"`
}

type orderReq struct {
	OrderDate      string             `json:"order_date" binding:"required"`
	DeliveryDate   string             `json:"delivery_date" binding:"required"`
	PickupPointID  int64              `json:"pickup_point_id" binding:"required"`
	ClientFullName string             `json:"client_full_name" binding:"required"`
	Code           int                `json:"code"`
	Status         domain.OrderStatus `json:"status" binding:"required"`
	Items          []orderItemReq     `json:"products" binding:"required,min=1,dive"`
}

func (r orderReq) toDomain() domain.Order {
	items := make([]domain.OrderItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, domain.OrderItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return domain.Order{
		OrderDate:      r.OrderDate,
		DeliveryDate:   r.DeliveryDate,
		PickupPointID:  r.PickupPointID,
		ClientFullName: r.ClientFullName,
		Code:           r.Code,
		Status:         r.Status,
		Items:          items,
	}
}

func (s *Server) listOrders(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.ListOrders())
}

func (s *Server) listPickupPoints(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.PickupPoints())
}

func orderErrorDetail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrBadPickup):
		c.JSON(http.StatusNotFound, gin.H{"detail": "Пункт выдачи не найден"})
	case errors.Is(err, ErrBadItem):
		c.JSON(http.StatusNotFound, gin.H{"detail": "Товар из заказа не найден"})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "Заказ не найден"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
	}
}

func (s *Server) createOrder(c *gin.Context) {
	var req orderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Некорректные данные заказа"})
		return
	}
	saved, err := s.store.CreateOrder(req.toDomain())
	if err != nil {
		orderErrorDetail(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (s *Server) updateOrder(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Некорректный идентификатор заказа"})
		return
	}
	var req orderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Некорректные данные заказа"})
		return
	}
	saved, err := s.store.UpdateOrder(id, req.toDomain())
	if err != nil {
		orderErrorDetail(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (s *Server) deleteOrder(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Некорректный идентификатор заказа"})
		return
	}
	if err := s.store.DeleteOrder(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Заказ не найден"})
		return
	}
	c.Status(http.StatusNoContent)
}
