package catalog

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"obuv/internal/api"
	"obuv/internal/domain"
	"obuv/internal/policy"
)

// Gateway часть API-клиента, нужная каталогу
type Gateway interface {
	Products(ctx context.Context, q api.ProductQuery) ([]domain.Product, error)
	Suppliers(ctx context.Context) ([]string, error)
	CreateProduct(ctx context.Context, p domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, article string, p domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, article string) error
	UploadProductImage(ctx context.Context, article, filename string, file io.Reader) error
}

// Filters значения панели фильтров
type Filters struct {
	Search         string
	Supplier       string
	SortByQuantity string // "asc", "desc" или пусто
}

// Draft буфер формы добавления или редактирования товара
type Draft struct {
	Article      string  `validate:"required"`
	Name         string  `validate:"required"`
	Category     string  `validate:"required"`
	Manufacturer string  `validate:"required"`
	Supplier     string  `validate:"required"`
	Unit         string  `validate:"required"`
	Price        float64 `validate:"gte=0"`
	Discount     int     `validate:"gte=0,lte=100"`
	Quantity     int     `validate:"gte=0"`
	Description  string
	PhotoFile    string // локальный путь к выбранному изображению
}

// ViewModel экран товаров: загрузка с дофильтрацией, карточки,
// жизненный цикл формы
type ViewModel struct {
	gw      Gateway
	session func() domain.Session
	baseURL string

	// Confirm запрашивает подтверждение разрушительного действия
	Confirm func(prompt string) bool

	validate  *validator.Validate
	products  []domain.Product // кэш последней выборки
	suppliers []string
	editing   *domain.Product
}

func NewViewModel(gw Gateway, session func() domain.Session, baseURL string) *ViewModel {
	return &ViewModel{
		gw:       gw,
		session:  session,
		baseURL:  baseURL,
		validate: validator.New(),
	}
}

// Load запрашивает товары и строит карточки. Для менеджера и
// администратора фильтры уходят на сервер и строка поиска дополнительно
// применяется локально по нескольким термам; гость получает серверную
// выборку как есть.
func (vm *ViewModel) Load(ctx context.Context, f Filters) ([]Card, error) {
	sess := vm.session()
	canFilter := policy.CanFilterProducts(sess)
	if !canFilter {
		f = Filters{}
	}

	supplier := f.Supplier
	if supplier == "Все поставщики" {
		supplier = ""
	}

	products, err := vm.gw.Products(ctx, api.ProductQuery{
		Search:         f.Search,
		Supplier:       supplier,
		SortByQuantity: f.SortByQuantity,
	})
	if err != nil {
		return nil, err
	}

	if canFilter {
		products = Refine(products, f.Search)
	}
	vm.products = products

	canEdit := policy.IsAdmin(sess)
	cards := make([]Card, 0, len(products))
	for _, p := range products {
		cards = append(cards, BuildCard(p, canEdit, vm.baseURL))
	}
	return cards, nil
}

// LoadSuppliers наполняет фильтр по поставщику. Сбой не роняет экран:
// пишем в журнал и оставляем список пустым.
func (vm *ViewModel) LoadSuppliers(ctx context.Context) []string {
	if !policy.CanFilterProducts(vm.session()) {
		return nil
	}
	suppliers, err := vm.gw.Suppliers(ctx)
	if err != nil {
		log.Printf("Ошибка загрузки поставщиков: %v", err)
		return nil
	}
	vm.suppliers = suppliers
	return suppliers
}

// BeginAdd открывает пустую форму добавления
func (vm *ViewModel) BeginAdd() Draft {
	vm.editing = nil
	return Draft{}
}

// BeginEdit открывает форму по товару из кэша. Артикул после создания
// неизменяем, форма должна показывать его заблокированным.
func (vm *ViewModel) BeginEdit(article string) (Draft, error) {
	for i := range vm.products {
		if vm.products[i].Article == article {
			p := vm.products[i]
			vm.editing = &p
			return Draft{
				Article:      p.Article,
				Name:         p.Name,
				Category:     p.Category,
				Manufacturer: p.Manufacturer,
				Supplier:     p.Supplier,
				Unit:         p.Unit,
				Price:        p.Price,
				Discount:     p.Discount,
				Quantity:     p.Quantity,
				Description:  p.Description,
			}, nil
		}
	}
	return Draft{}, fmt.Errorf("товар %s не найден", article)
}

// Editing true, если открыта форма редактирования
func (vm *ViewModel) Editing() bool { return vm.editing != nil }

// CloseForm сбрасывает буфер формы
func (vm *ViewModel) CloseForm() { vm.editing = nil }

// Submit сохраняет черновик: PUT при открытом редактировании, иначе
// POST. Изображение грузится вторым шагом после записи; если запись
// прошла, а загрузка нет, товар остаётся без фото — ошибка показывается,
// отката нет.
func (vm *ViewModel) Submit(ctx context.Context, d Draft) error {
	if err := vm.validate.Struct(d); err != nil {
		return &domain.ValidationError{Message: "Заполните все поля формы корректно"}
	}

	article := d.Article
	if vm.editing != nil {
		article = vm.editing.Article
	}

	p := domain.Product{
		Article:      article,
		Name:         d.Name,
		Category:     d.Category,
		Manufacturer: d.Manufacturer,
		Supplier:     d.Supplier,
		Unit:         d.Unit,
		Price:        d.Price,
		Discount:     d.Discount,
		Quantity:     d.Quantity,
		Description:  d.Description,
	}

	var err error
	if vm.editing != nil {
		_, err = vm.gw.UpdateProduct(ctx, article, p)
	} else {
		_, err = vm.gw.CreateProduct(ctx, p)
	}
	if err != nil {
		return err
	}

	if d.PhotoFile != "" {
		if err := vm.uploadPhoto(ctx, article, d.PhotoFile); err != nil {
			return err
		}
	}

	vm.editing = nil
	return nil
}

func (vm *ViewModel) uploadPhoto(ctx context.Context, article, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return &domain.ValidationError{Message: "Не удалось открыть файл изображения"}
	}
	defer file.Close()
	return vm.gw.UploadProductImage(ctx, article, filepath.Base(path), file)
}

// Delete удаляет товар после явного подтверждения. Возвращает false,
// если пользователь отказался.
func (vm *ViewModel) Delete(ctx context.Context, article string) (bool, error) {
	if vm.Confirm != nil && !vm.Confirm(fmt.Sprintf("Вы уверены, что хотите удалить товар %s?", article)) {
		return false, nil
	}
	if err := vm.gw.DeleteProduct(ctx, article); err != nil {
		return false, err
	}
	return true, nil
}

// Products кэш последней выборки, нужен форме заказа для выбора товара
func (vm *ViewModel) Products() []domain.Product { return vm.products }
