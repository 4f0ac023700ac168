package usecase

import (
	"io"

	"github.com/devpython86/nf-control/internal/domain/entity"
)

// LeitorPlanilhaPo lê uma planilha de follow-up de PO em linhas brutas.
type LeitorPlanilhaPo interface {
	Read(arquivo io.Reader) ([]*entity.PurchaseOrderLine, error)
}

// GravadorPlanilhaNf grava a planilha consolidada de linhas de NF-e.
type GravadorPlanilhaNf interface {
	Write(destino io.Writer, linhas []*entity.InvoiceLine) error
}
