package dto

import "github.com/devpython86/nf-control/internal/domain/entity"

// ImportacaoPoResponse resultado da importação de planilhas de follow-up.
type ImportacaoPoResponse struct {
	ArquivosProcessados int      `json:"arquivosProcessados"`
	ArquivosIgnorados   int      `json:"arquivosIgnorados"`
	LinhasLidas         int      `json:"linhasLidas"`
	LinhasFinais        int      `json:"linhasFinais"`
	LinhasGravadas      int      `json:"linhasGravadas"`
	Erros               []string `json:"erros,omitempty"`
}

// PoListResponse página de linhas de pedido de compra.
type PoListResponse struct {
	Items []*entity.PurchaseOrderLine `json:"items"`
	Page  PageResponse                `json:"page"`
}
