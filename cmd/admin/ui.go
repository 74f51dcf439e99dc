package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"obuv/internal/catalog"
	"obuv/internal/config"
	"obuv/internal/orderbook"
	"obuv/internal/router"
	"obuv/internal/session"
)

// ui построчный терминальный интерфейс поверх машины экранов
type ui struct {
	in       *bufio.Scanner
	out      io.Writer
	cfg      config.Config
	sessions *session.Store

	app     *router.App
	catalog *catalog.ViewModel
	orders  *orderbook.ViewModel

	filters catalog.Filters
}

func newUI(in io.Reader, out io.Writer, cfg config.Config, sessions *session.Store) *ui {
	return &ui{in: bufio.NewScanner(in), out: out, cfg: cfg, sessions: sessions}
}

// bind собирает таблицу обработчиков намерений и загрузчики экранов
func (u *ui) bind(app *router.App, cat *catalog.ViewModel, ord *orderbook.ViewModel) {
	u.app = app
	u.catalog = cat
	u.orders = ord

	app.SetLoader(router.ScreenLogin, func(ctx context.Context) error {
		u.printf("Вход: login <логин> <пароль>, или guest\n")
		return nil
	})
	app.SetLoader(router.ScreenProducts, u.showProducts)
	app.SetLoader(router.ScreenOrders, u.showOrders)

	app.Handle(router.IntentSubmitLogin, u.handleLogin)
	app.Handle(router.IntentEnterGuest, u.handleGuest)
	app.Handle(router.IntentLogout, u.handleLogout)
	app.Handle(router.IntentSubmitProduct, u.handleSubmitProduct)
	app.Handle(router.IntentDeleteProduct, u.handleDeleteProduct)
	app.Handle(router.IntentSubmitOrder, u.handleSubmitOrder)
	app.Handle(router.IntentDeleteOrder, u.handleDeleteOrder)
	app.Handle(router.IntentNavigate, u.handleNavigate)
}

// loop восстанавливает сеанс и читает команды до exit
func (u *ui) loop(ctx context.Context) error {
	if sess := u.sessions.Restore(); !sess.Empty() {
		u.printf("Здравствуйте, %s\n", sess.User.FullName)
		if err := u.app.Navigate(ctx, router.ScreenProducts); err != nil {
			u.printf("Ошибка: %v\n", err)
		}
	} else {
		_ = u.app.Navigate(ctx, router.ScreenLogin)
	}

	for {
		u.printf("[%s]> ", u.app.Current())
		if !u.in.Scan() {
			return u.in.Err()
		}
		line := strings.TrimSpace(u.in.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}
		if err := u.execute(ctx, line); err != nil {
			u.printf("Ошибка: %v\n", err)
		}
	}
}

func (u *ui) execute(ctx context.Context, line string) error {
	args := strings.Fields(line)
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "help":
		u.printHelp()
		return nil
	case "login":
		if len(rest) != 2 {
			return fmt.Errorf("использование: login <логин> <пароль>")
		}
		return u.app.Dispatch(ctx, router.IntentSubmitLogin, [2]string{rest[0], rest[1]})
	case "guest":
		return u.app.Dispatch(ctx, router.IntentEnterGuest, nil)
	case "logout":
		return u.app.Dispatch(ctx, router.IntentLogout, nil)
	case "products":
		return u.app.Dispatch(ctx, router.IntentNavigate, router.ScreenProducts)
	case "orders":
		return u.app.Dispatch(ctx, router.IntentNavigate, router.ScreenOrders)
	case "search":
		u.filters.Search = strings.Join(rest, " ")
		return u.app.Dispatch(ctx, router.IntentNavigate, router.ScreenProducts)
	case "supplier":
		u.filters.Supplier = strings.Join(rest, " ")
		return u.app.Dispatch(ctx, router.IntentNavigate, router.ScreenProducts)
	case "sort":
		if len(rest) == 1 && (rest[0] == "asc" || rest[0] == "desc") {
			u.filters.SortByQuantity = rest[0]
		} else {
			u.filters.SortByQuantity = ""
		}
		return u.app.Dispatch(ctx, router.IntentNavigate, router.ScreenProducts)
	case "add-product":
		return u.app.Dispatch(ctx, router.IntentSubmitProduct, "")
	case "edit-product":
		if len(rest) != 1 {
			return fmt.Errorf("использование: edit-product <артикул>")
		}
		return u.app.Dispatch(ctx, router.IntentSubmitProduct, rest[0])
	case "delete-product":
		if len(rest) != 1 {
			return fmt.Errorf("использование: delete-product <артикул>")
		}
		return u.app.Dispatch(ctx, router.IntentDeleteProduct, rest[0])
	case "add-order":
		return u.app.Dispatch(ctx, router.IntentSubmitOrder, int64(0))
	case "edit-order":
		if len(rest) != 1 {
			return fmt.Errorf("использование: edit-order <id>")
		}
		id, err := strconv.ParseInt(rest[0], 10, 64)
		if err != nil {
			return fmt.Errorf("некорректный номер заказа")
		}
		return u.app.Dispatch(ctx, router.IntentSubmitOrder, id)
	case "delete-order":
		if len(rest) != 1 {
			return fmt.Errorf("использование: delete-order <id>")
		}
		id, err := strconv.ParseInt(rest[0], 10, 64)
		if err != nil {
			return fmt.Errorf("некорректный номер заказа")
		}
		return u.app.Dispatch(ctx, router.IntentDeleteOrder, id)
	}
	return fmt.Errorf("неизвестная команда %q, наберите help", cmd)
}

func (u *ui) printHelp() {
	u.printf(`Команды:
  login <логин> <пароль>   вход
  guest                    войти гостем
  logout                   выход
  products                 экран товаров
  search <текст>           поиск по товарам
  supplier <поставщик>     фильтр по поставщику
  sort <asc|desc|none>     сортировка по количеству
  add-product              добавить товар
  edit-product <артикул>   редактировать товар
  delete-product <артикул> удалить товар
  orders                   экран заказов
  add-order                добавить заказ
  edit-order <id>          редактировать заказ
  delete-order <id>        удалить заказ
  exit                     выход из программы
`)
}

func (u *ui) printf(format string, args ...any) {
	fmt.Fprintf(u.out, format, args...)
}

// notify блокирующее уведомление
func (u *ui) notify(msg string) {
	u.printf("!!! %s\n", msg)
}

// confirm да/нет перед разрушительным действием
func (u *ui) confirm(prompt string) bool {
	u.printf("%s [y/N]: ", prompt)
	if !u.in.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(u.in.Text()))
	return answer == "y" || answer == "д" || answer == "да"
}

func (u *ui) prompt(label, current string) string {
	if current != "" {
		u.printf("%s [%s]: ", label, current)
	} else {
		u.printf("%s: ", label)
	}
	if !u.in.Scan() {
		return current
	}
	text := strings.TrimSpace(u.in.Text())
	if text == "" {
		return current
	}
	return text
}
