package http

import (
	"fmt"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/devpython86/nf-control/internal/application/dto"
	"github.com/devpython86/nf-control/internal/application/usecase"
	"github.com/devpython86/nf-control/internal/nfe"
)

// NFeHandler atende as rotas de processamento e consulta de XMLs de NF-e.
type NFeHandler struct {
	uc *usecase.XMLUseCase
}

// NewNFeHandler constrói o handler.
func NewNFeHandler(uc *usecase.XMLUseCase) *NFeHandler {
	return &NFeHandler{uc: uc}
}

// Processar recebe um multipart com um ou mais arquivos XML no campo
// "arquivos", roda o pipeline e grava as linhas consolidadas.
func (h *NFeHandler) Processar(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "multipart inválido"})
	}
	arquivos := form.File["arquivos"]
	if len(arquivos) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "nenhum arquivo no campo 'arquivos'"})
	}

	docs := make([]nfe.Documento, 0, len(arquivos))
	for _, fh := range arquivos {
		f, err := fh.Open()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: fmt.Sprintf("abrir %s: %v", fh.Filename, err)})
		}
		dados, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: fmt.Sprintf("ler %s: %v", fh.Filename, err)})
		}
		docs = append(docs, nfe.Documento{Nome: fh.Filename, Dados: dados})
	}

	resp, err := h.uc.Processar(c.Context(), docs)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Listar lista as linhas gravadas com filtros chNfe, po e emitente.
func (h *NFeHandler) Listar(c *fiber.Ctx) error {
	var in dto.InvoiceLineListRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parâmetros inválidos"})
	}
	resp, err := h.uc.Listar(c.Context(), in)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(resp)
}

// Exportar devolve a planilha consolidada como download.
func (h *NFeHandler) Exportar(c *fiber.Ctx) error {
	var in dto.InvoiceLineListRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parâmetros inválidos"})
	}
	dados, err := h.uc.Exportar(c.Context(), in)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}

	nome := fmt.Sprintf("master_store_xml_%s.xlsx", time.Now().Format("02012006_150405"))
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", nome))
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	return c.Send(dados)
}
