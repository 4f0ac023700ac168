package entity

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// PurchaseOrderLine é uma linha de follow-up de pedido de compra importada
// das planilhas do departamento (uma linha por item de PO).
type PurchaseOrderLine struct {
	Documento       string              `json:"documento"` // Purchasing Document (numérico)
	Item            string              `json:"item"`
	Fornecedor      string              `json:"fornecedor"`
	Material        string              `json:"material"`
	ValorLiquido    decimal.NullDecimal `json:"vlLiquido"`    // Net order value
	Quantidade      decimal.NullDecimal `json:"qtd"`          // Order Quantity
	ValorCondicao   decimal.NullDecimal `json:"vlCondicao"`   // PBXX Condition Amount (unitário com impostos)
	ValorUnitario   decimal.NullDecimal `json:"vlUnitario"`   // vlLiquido / qtd
	ValorComImposto decimal.NullDecimal `json:"vlComImposto"` // vlCondicao * qtd
	DataDocumento   string              `json:"dtDocumento"`  // dd/mm/aaaa; vazio se inválida
	DataEntrega     string              `json:"dtEntrega"`    // dd/mm/aaaa; vazio se inválida

	// Agregados por documento
	TotalPoLiquido    decimal.NullDecimal `json:"totalPoLiquido"`
	TotalPoComImposto decimal.NullDecimal `json:"totalPoComImposto"`
	TotalItensPo      int                 `json:"totalItensPo"`
}

// ChaveDedup chave de deduplicação: documento + item concatenados.
func (l *PurchaseOrderLine) ChaveDedup() string {
	return l.Documento + "|" + l.Item
}

// DocumentoNumerico devolve o número do documento como inteiro e se a
// conversão foi possível; linhas não numéricas são descartadas na importação.
func (l *PurchaseOrderLine) DocumentoNumerico() (int64, bool) {
	n, err := strconv.ParseInt(l.Documento, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
