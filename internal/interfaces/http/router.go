package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/devpython86/nf-control/internal/application/usecase"
)

// RouterDeps dependências para o router.
type RouterDeps struct {
	XMLUC           *usecase.XMLUseCase
	POUC            *usecase.POUseCase
	ReconciliacaoUC *usecase.ReconciliacaoUseCase
}

// Router registra as rotas da API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	xml := api.Group("/xml")
	nfeHandler := NewNFeHandler(deps.XMLUC)
	xml.Post("/processar", nfeHandler.Processar)
	xml.Get("/", nfeHandler.Listar)
	xml.Get("/exportar", nfeHandler.Exportar)

	poGroup := api.Group("/po")
	poHandler := NewPOHandler(deps.POUC, deps.ReconciliacaoUC)
	poGroup.Post("/importar", poHandler.Importar)
	poGroup.Get("/", poHandler.Listar)

	api.Get("/reconciliacao/:po", poHandler.Reconciliacao)
}
