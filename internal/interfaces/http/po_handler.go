package http

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/devpython86/nf-control/internal/application/dto"
	"github.com/devpython86/nf-control/internal/application/usecase"
	"github.com/devpython86/nf-control/internal/domain"
)

// POHandler atende as rotas de importação e consulta de pedidos de compra.
type POHandler struct {
	uc            *usecase.POUseCase
	reconciliacao *usecase.ReconciliacaoUseCase
}

// NewPOHandler constrói o handler.
func NewPOHandler(uc *usecase.POUseCase, reconciliacao *usecase.ReconciliacaoUseCase) *POHandler {
	return &POHandler{uc: uc, reconciliacao: reconciliacao}
}

// Importar recebe um multipart com planilhas de follow-up no campo
// "arquivos" e grava as linhas consolidadas.
func (h *POHandler) Importar(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "multipart inválido"})
	}
	cabecalhos := form.File["arquivos"]
	if len(cabecalhos) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "nenhum arquivo no campo 'arquivos'"})
	}

	arquivos := make([]usecase.ArquivoPo, 0, len(cabecalhos))
	abertos := make([]interface{ Close() error }, 0, len(cabecalhos))
	defer func() {
		for _, f := range abertos {
			f.Close()
		}
	}()
	for _, fh := range cabecalhos {
		f, err := fh.Open()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: fmt.Sprintf("abrir %s: %v", fh.Filename, err)})
		}
		abertos = append(abertos, f)
		arquivos = append(arquivos, usecase.ArquivoPo{Nome: fh.Filename, Arquivo: f})
	}

	resp, err := h.uc.Importar(c.Context(), arquivos)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Listar lista as linhas de PO gravadas.
func (h *POHandler) Listar(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parâmetros inválidos"})
	}
	resp, err := h.uc.Listar(c.Context(), page)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(resp)
}

// Reconciliacao confronta um documento de compra com as notas recebidas.
func (h *POHandler) Reconciliacao(c *fiber.Ctx) error {
	documento := c.Params("po")
	resp, err := h.reconciliacao.PorPo(c.Context(), documento)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "documento inválido"})
		}
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "pedido sem notas nem importação"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(resp)
}
