package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"obuv/internal/api"
	"obuv/internal/catalog"
	"obuv/internal/config"
	"obuv/internal/orderbook"
	"obuv/internal/router"
	"obuv/internal/session"
)

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "obuv-admin",
		Usage: "панель управления магазином «ООО Обувь»",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-url",
				Usage:   "адрес сервера",
				EnvVars: []string{"API_BASE_URL"},
			},
			&cli.StringFlag{
				Name:    "state-dir",
				Usage:   "каталог для сохранения сеанса",
				EnvVars: []string{"STATE_DIR"},
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	cfg := config.Load()
	if v := c.String("api-url"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := c.String("state-dir"); v != "" {
		cfg.StateDir = v
	}

	client := api.New(cfg.APIBaseURL, cfg.HTTPTimeout)
	sessions := session.NewStore(session.NewFileStorage(cfg.StateDir), client)
	client.TokenSource = sessions.Token

	ui := newUI(os.Stdin, os.Stdout, cfg, sessions)

	catalogVM := catalog.NewViewModel(client, sessions.Current, cfg.APIBaseURL)
	catalogVM.Confirm = ui.confirm
	ordersVM := orderbook.NewViewModel(client, sessions.Current)
	ordersVM.Confirm = ui.confirm

	app := router.New(sessions.Current)
	app.Notify = ui.notify

	ui.bind(app, catalogVM, ordersVM)
	return ui.loop(c.Context)
}
