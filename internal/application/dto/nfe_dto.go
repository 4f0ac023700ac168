package dto

import (
	"github.com/devpython86/nf-control/internal/domain/entity"
	"github.com/devpython86/nf-control/internal/nfe"
)

// ProcessamentoResponse resultado do processamento de um lote de XMLs.
type ProcessamentoResponse struct {
	LoteID                string              `json:"loteId"`
	DocumentosProcessados int                 `json:"documentosProcessados"`
	DocumentosIgnorados   int                 `json:"documentosIgnorados"`
	AvisosCoercao         int                 `json:"avisosCoercao"`
	LinhasFinais          int                 `json:"linhasFinais"`
	LinhasGravadas        int                 `json:"linhasGravadas"`
	Erros                 []nfe.ErroDocumento `json:"erros,omitempty"`
}

// InvoiceLineListRequest filtros da listagem de linhas de NF-e.
type InvoiceLineListRequest struct {
	PageRequest
	ChaveNfe string `query:"chNfe"`
	Po       string `query:"po"`
	Emitente string `query:"emitente"`
}

// InvoiceLineListResponse página de linhas de NF-e.
type InvoiceLineListResponse struct {
	Items []*entity.InvoiceLine `json:"items"`
	Page  PageResponse          `json:"page"`
}

// ReconciliacaoResponse confronto de um pedido de compra com as notas recebidas.
type ReconciliacaoResponse struct {
	Po             string                      `json:"po"`
	LinhasNf       []*entity.InvoiceLine       `json:"linhasNf"`
	LinhasPo       []*entity.PurchaseOrderLine `json:"linhasPo"`
	ValorRecebido  string                      `json:"vlRecPo"`        // soma de vlTotalNf por nota distinta
	NotasVinculadas int                        `json:"qtdNfPo"`
	TotalPoLiquido string                      `json:"totalPoLiquido"` // vazio quando o PO não foi importado
	SaldoAberto    string                      `json:"saldoAberto"`    // totalPoLiquido - vlRecPo
}
