package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"obuv/internal/catalog"
	"obuv/internal/domain"
	"obuv/internal/orderbook"
	"obuv/internal/policy"
	"obuv/internal/router"
)

func (u *ui) handleLogin(ctx context.Context, args any) error {
	creds, ok := args.([2]string)
	if !ok {
		return fmt.Errorf("ожидались логин и пароль")
	}
	sess, err := u.sessions.Login(ctx, creds[0], creds[1])
	if err != nil {
		return err
	}
	u.printf("Здравствуйте, %s\n", sess.User.FullName)
	return u.app.Navigate(ctx, router.ScreenProducts)
}

func (u *ui) handleGuest(ctx context.Context, _ any) error {
	u.sessions.EnterAsGuest()
	return u.app.Navigate(ctx, router.ScreenProducts)
}

func (u *ui) handleLogout(ctx context.Context, _ any) error {
	if err := u.sessions.Logout(); err != nil {
		return err
	}
	u.filters = catalog.Filters{}
	return u.app.Navigate(ctx, router.ScreenLogin)
}

func (u *ui) handleNavigate(ctx context.Context, args any) error {
	target, ok := args.(router.Screen)
	if !ok {
		return fmt.Errorf("неизвестный экран")
	}
	return u.app.Navigate(ctx, target)
}

// showProducts загрузка экрана товаров: панель фильтров видна только
// менеджеру и администратору
func (u *ui) showProducts(ctx context.Context) error {
	sess := u.sessions.Current()
	if policy.CanFilterProducts(sess) {
		if suppliers := u.catalog.LoadSuppliers(ctx); len(suppliers) > 0 {
			u.printf("Поставщики: %s\n", strings.Join(suppliers, ", "))
		}
	}

	cards, err := u.catalog.Load(ctx, u.filters)
	if err != nil {
		u.printf("Ошибка: %v\n", err)
		return nil
	}
	if len(cards) == 0 {
		u.printf("Товары не найдены\n")
		return nil
	}
	for _, card := range cards {
		u.renderCard(card)
	}
	return nil
}

func (u *ui) renderCard(card catalog.Card) {
	p := card.Product

	mark := " "
	if card.HighDiscount {
		mark = "%" // скидка больше 15%
	}
	u.printf("%s %-8s %-28s %s / %s / %s\n", mark, p.Article, p.Name, p.Category, p.Manufacturer, p.Supplier)

	switch card.Band {
	case catalog.BandOutOfStock:
		u.printf("    нет на складе\n")
	case catalog.BandLow:
		u.printf("    заканчивается: %d %s\n", p.Quantity, p.Unit)
	default:
		u.printf("    в наличии: %d %s\n", p.Quantity, p.Unit)
	}

	if card.HasDiscount {
		u.printf("    цена: %s (без скидки %s, скидка %d%%)\n", card.FinalLabel, card.PriceLabel, p.Discount)
	} else {
		u.printf("    цена: %s\n", card.FinalLabel)
	}
	if p.Description != "" {
		u.printf("    %s\n", p.Description)
	}
	u.printf("    фото: %s\n", card.PhotoURL)
	if card.CanEdit {
		u.printf("    действия: edit-product %s, delete-product %s\n", p.Article, p.Article)
	}
}

func (u *ui) showOrders(ctx context.Context) error {
	entries, err := u.orders.Load(ctx)
	if err != nil {
		u.printf("Ошибка: %v\n", err)
		return nil
	}
	if len(entries) == 0 {
		u.printf("Заказы не найдены\n")
		return nil
	}
	for _, e := range entries {
		u.renderOrder(e)
	}
	return nil
}

func (u *ui) renderOrder(e orderbook.Entry) {
	o := e.Order
	u.printf("Заказ %s [%s] #%d\n", o.OrderNumber, o.Status, o.ID)
	u.printf("    заказан %s, выдача %s\n", e.OrderDateRu, e.DeliveryRu)
	u.printf("    клиент: %s, код получения: %d\n", o.ClientFullName, o.Code)
	u.printf("    пункт выдачи: %s\n", e.PickupAddress)
	if e.CanEdit {
		u.printf("    действия: edit-order %d, delete-order %d\n", o.ID, o.ID)
	}
}

// handleSubmitProduct открывает форму товара: пустую или по артикулу.
// Артикул существующего товара менять нельзя.
func (u *ui) handleSubmitProduct(ctx context.Context, args any) error {
	if !policy.IsAdmin(u.sessions.Current()) {
		u.notify("Недостаточно прав")
		return nil
	}

	article, _ := args.(string)
	var draft catalog.Draft
	if article == "" {
		draft = u.catalog.BeginAdd()
		draft.Article = u.prompt("Артикул", "")
	} else {
		var err error
		draft, err = u.catalog.BeginEdit(article)
		if err != nil {
			return err
		}
		u.printf("Артикул: %s (изменить нельзя)\n", draft.Article)
	}

	draft.Name = u.prompt("Наименование", draft.Name)
	draft.Category = u.prompt("Категория", draft.Category)
	draft.Manufacturer = u.prompt("Производитель", draft.Manufacturer)
	draft.Supplier = u.prompt("Поставщик", draft.Supplier)
	draft.Unit = u.prompt("Единица измерения", draft.Unit)

	var err error
	if draft.Price, err = u.promptFloat("Цена", draft.Price); err != nil {
		u.catalog.CloseForm()
		return err
	}
	if draft.Discount, err = u.promptInt("Скидка, %", draft.Discount); err != nil {
		u.catalog.CloseForm()
		return err
	}
	if draft.Quantity, err = u.promptInt("Количество", draft.Quantity); err != nil {
		u.catalog.CloseForm()
		return err
	}
	draft.Description = u.prompt("Описание", draft.Description)
	draft.PhotoFile = u.prompt("Файл изображения (пусто — без фото)", draft.PhotoFile)

	if err := u.catalog.Submit(ctx, draft); err != nil {
		u.catalog.CloseForm()
		return err
	}
	return u.app.Navigate(ctx, router.ScreenProducts)
}

func (u *ui) handleDeleteProduct(ctx context.Context, args any) error {
	if !policy.IsAdmin(u.sessions.Current()) {
		u.notify("Недостаточно прав")
		return nil
	}
	article, _ := args.(string)
	deleted, err := u.catalog.Delete(ctx, article)
	if err != nil {
		return err
	}
	if !deleted {
		return nil
	}
	return u.app.Navigate(ctx, router.ScreenProducts)
}

// handleSubmitOrder форма заказа: id 0 — добавление, иначе
// редактирование. Позиции набираются построчно до пустого ввода.
func (u *ui) handleSubmitOrder(ctx context.Context, args any) error {
	if !policy.IsAdmin(u.sessions.Current()) {
		u.notify("Недостаточно прав")
		return nil
	}

	id, _ := args.(int64)
	var draft orderbook.Draft
	if id == 0 {
		draft = u.orders.BeginAdd()
	} else {
		var err error
		draft, err = u.orders.BeginEdit(id)
		if err != nil {
			return err
		}
	}

	if points := u.orders.LoadPickupPoints(ctx); len(points) > 0 {
		u.printf("Пункты выдачи:\n")
		for _, p := range points {
			u.printf("  %d — %s\n", p.ID, p.Address)
		}
	}

	draft.OrderDate = u.prompt("Дата заказа (ГГГГ-ММ-ДД)", draft.OrderDate)
	draft.DeliveryDate = u.prompt("Дата выдачи (ГГГГ-ММ-ДД)", draft.DeliveryDate)
	draft.ClientFullName = u.prompt("ФИО клиента", draft.ClientFullName)

	var err error
	pointID := int(draft.PickupPointID)
	if pointID, err = u.promptInt("Пункт выдачи (id)", pointID); err != nil {
		u.orders.CloseForm()
		return err
	}
	draft.PickupPointID = int64(pointID)
	if draft.Code, err = u.promptInt("Код получения", draft.Code); err != nil {
		u.orders.CloseForm()
		return err
	}
	if status := u.prompt("Статус", string(draft.Status)); status != "" {
		draft.Status = domain.OrderStatus(status)
	}

	draft.Rows = u.promptRows(draft.Rows)

	if err := u.orders.Submit(ctx, draft); err != nil {
		u.orders.CloseForm()
		return err
	}
	return u.app.Navigate(ctx, router.ScreenOrders)
}

// promptRows построчный ввод позиций: "артикул количество", пустая
// строка завершает, "-" очищает уже набранные
func (u *ui) promptRows(rows []orderbook.Row) []orderbook.Row {
	for _, r := range rows {
		u.printf("Позиция: %s x%d\n", r.ProductID, r.Quantity)
	}
	u.printf("Позиции заказа (артикул количество; пустая строка — готово, '-' — очистить):\n")
	for {
		u.printf("  позиция> ")
		if !u.in.Scan() {
			return rows
		}
		line := strings.TrimSpace(u.in.Text())
		if line == "" {
			return rows
		}
		if line == "-" {
			rows = nil
			continue
		}
		parts := strings.Fields(line)
		if len(parts) != 2 {
			u.printf("  введите артикул и количество\n")
			continue
		}
		qty, err := strconv.Atoi(parts[1])
		if err != nil || qty < 1 {
			u.printf("  количество должно быть целым числом не меньше 1\n")
			continue
		}
		rows = append(rows, orderbook.Row{ProductID: parts[0], Quantity: qty})
	}
}

func (u *ui) handleDeleteOrder(ctx context.Context, args any) error {
	if !policy.IsAdmin(u.sessions.Current()) {
		u.notify("Недостаточно прав")
		return nil
	}
	id, _ := args.(int64)
	deleted, err := u.orders.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return nil
	}
	return u.app.Navigate(ctx, router.ScreenOrders)
}

// promptFloat некорректное число останавливает форму до отправки
func (u *ui) promptFloat(label string, current float64) (float64, error) {
	text := u.prompt(label, strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", current), "0"), "."))
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, &domain.ValidationError{Message: fmt.Sprintf("«%s» — не число", text)}
	}
	return v, nil
}

func (u *ui) promptInt(label string, current int) (int, error) {
	text := u.prompt(label, strconv.Itoa(current))
	v, err := strconv.Atoi(text)
	if err != nil {
		return 0, &domain.ValidationError{Message: fmt.Sprintf("«%s» — не целое число", text)}
	}
	return v, nil
}
