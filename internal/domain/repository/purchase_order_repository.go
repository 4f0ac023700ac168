package repository

import (
	"context"

	"github.com/devpython86/nf-control/internal/domain/entity"
)

// PurchaseOrderRepository persistência das linhas de follow-up de PO (coleção "po").
type PurchaseOrderRepository interface {
	UpsertBatch(ctx context.Context, lines []*entity.PurchaseOrderLine) (int, error)
	List(ctx context.Context, limit, offset int) ([]*entity.PurchaseOrderLine, int64, error)
	FindByDocumento(ctx context.Context, documento string) ([]*entity.PurchaseOrderLine, error)
}
