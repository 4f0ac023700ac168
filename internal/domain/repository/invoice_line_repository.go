package repository

import (
	"context"

	"github.com/devpython86/nf-control/internal/domain/entity"
)

// InvoiceLineFilter filtros da listagem de linhas de NF-e.
type InvoiceLineFilter struct {
	ChaveNfe string
	Po       string
	Emitente string // busca parcial por nome do emitente
}

// InvoiceLineRepository persistência das linhas extraídas (coleção "xml").
type InvoiceLineRepository interface {
	// UpsertBatch grava em lotes, substituindo documentos com a mesma chave
	// de deduplicação. Devolve a quantidade efetivamente gravada.
	UpsertBatch(ctx context.Context, lines []*entity.InvoiceLine) (int, error)
	List(ctx context.Context, filter InvoiceLineFilter, limit, offset int) ([]*entity.InvoiceLine, int64, error)
	FindByPo(ctx context.Context, po string) ([]*entity.InvoiceLine, error)
}
