package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/devpython86/nf-control/internal/application/usecase"
	"github.com/devpython86/nf-control/internal/infrastructure/excel"
	"github.com/devpython86/nf-control/internal/infrastructure/mongodb"
	httpRouter "github.com/devpython86/nf-control/internal/interfaces/http"
	"github.com/devpython86/nf-control/internal/nfe"
	"github.com/devpython86/nf-control/internal/po"
	"github.com/devpython86/nf-control/pkg/config"
	"github.com/devpython86/nf-control/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("carregar configuração: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicação")

	ctx := context.Background()
	client, db, err := mongodb.NewDatabase(ctx, cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("conexão ao MongoDB")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	invoiceRepo := mongodb.NewInvoiceLineRepository(db)
	poRepo := mongodb.NewPurchaseOrderRepository(db)

	pipeline := nfe.NewPipeline(nfe.Options{
		Prefixos: cfg.Pipeline.POPrefixes,
		Workers:  cfg.Pipeline.Workers,
	}, log)

	xmlUC := usecase.NewXMLUseCase(pipeline, invoiceRepo, excel.NewInvoiceWriter(cfg.Pipeline.ExportColumns))
	poUC := usecase.NewPOUseCase(excel.NewPOReader(), po.NewProcessor(log), poRepo)
	reconciliacaoUC := usecase.NewReconciliacaoUseCase(invoiceRepo, poRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    64 * 1024 * 1024, // lotes grandes de XML e planilhas
		ReadTimeout:  time.Second * 30,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		XMLUC:           xmlUC,
		POUC:            poUC,
		ReconciliacaoUC: reconciliacaoUC,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("sinal de desligamento recebido, encerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("desligamento do servidor")
	}

	log.Info().Msg("aplicação encerrada")
}
