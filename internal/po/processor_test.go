package po_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devpython86/nf-control/internal/domain/entity"
	"github.com/devpython86/nf-control/internal/po"
)

func linhaPo(documento, item string, liquido, qtd, condicao string) *entity.PurchaseOrderLine {
	l := &entity.PurchaseOrderLine{
		Documento: documento,
		Item:      item,
	}
	if liquido != "" {
		l.ValorLiquido = decimal.NewNullDecimal(decimal.RequireFromString(liquido))
	}
	if qtd != "" {
		l.Quantidade = decimal.NewNullDecimal(decimal.RequireFromString(qtd))
	}
	if condicao != "" {
		l.ValorCondicao = decimal.NewNullDecimal(decimal.RequireFromString(condicao))
	}
	return l
}

func TestProcess_ValoresPorItem(t *testing.T) {
	p := po.NewProcessor(nil)
	out := p.Process([]*entity.PurchaseOrderLine{
		linhaPo("4501000001", "10", "100.00", "4", "30.00"),
	})
	require.Len(t, out, 1)
	assert.Equal(t, "25.00", out[0].ValorUnitario.Decimal.StringFixed(2),
		"valor unitário = líquido / quantidade")
	assert.Equal(t, "120.00", out[0].ValorComImposto.Decimal.StringFixed(2),
		"valor com impostos = condição * quantidade")
}

func TestProcess_QuantidadeZeroNaoDivide(t *testing.T) {
	p := po.NewProcessor(nil)
	out := p.Process([]*entity.PurchaseOrderLine{
		linhaPo("4501000001", "10", "100.00", "", ""),
	})
	require.Len(t, out, 1)
	assert.Equal(t, "0.00", out[0].ValorUnitario.Decimal.StringFixed(2),
		"quantidade ausente vira zero e o unitário também, sem divisão por zero")
}

func TestProcess_TotaisPorDocumentoAntesDaDedup(t *testing.T) {
	p := po.NewProcessor(nil)
	a := linhaPo("4501000001", "10", "100.00", "1", "110.00")
	b := linhaPo("4501000001", "20", "50.00", "1", "55.00")
	duplicada := linhaPo("4501000001", "10", "100.00", "1", "110.00")

	out := p.Process([]*entity.PurchaseOrderLine{a, b, duplicada})
	require.Len(t, out, 2, "dedup por documento+item mantém a primeira ocorrência")

	// Os totais são calculados sobre todas as linhas lidas, inclusive a
	// duplicada, espelhando a consolidação das planilhas de origem.
	assert.Equal(t, "250.00", out[0].TotalPoLiquido.Decimal.StringFixed(2))
	assert.Equal(t, "275.00", out[0].TotalPoComImposto.Decimal.StringFixed(2))
	assert.Equal(t, 3, out[0].TotalItensPo)
}

func TestProcess_DescartaDocumentoNaoNumerico(t *testing.T) {
	p := po.NewProcessor(nil)
	out := p.Process([]*entity.PurchaseOrderLine{
		linhaPo("4501000001", "10", "10.00", "1", "10.00"),
		linhaPo("PENDENTE", "10", "10.00", "1", "10.00"),
	})
	require.Len(t, out, 1)
	assert.Equal(t, "4501000001", out[0].Documento)
}

func TestProcess_OrdenaPorDocumentoDecrescente(t *testing.T) {
	p := po.NewProcessor(nil)
	out := p.Process([]*entity.PurchaseOrderLine{
		linhaPo("4501000001", "10", "1", "1", "1"),
		linhaPo("4503000009", "10", "1", "1", "1"),
		linhaPo("4502000005", "10", "1", "1", "1"),
	})
	require.Len(t, out, 3)
	assert.Equal(t, "4503000009", out[0].Documento)
	assert.Equal(t, "4502000005", out[1].Documento)
	assert.Equal(t, "4501000001", out[2].Documento)
}

func TestProcess_DatasParaBR(t *testing.T) {
	p := po.NewProcessor(nil)
	l := linhaPo("4501000001", "10", "1", "1", "1")
	l.DataDocumento = "2024-01-15"
	l.DataEntrega = "sem previsão"

	out := p.Process([]*entity.PurchaseOrderLine{l})
	require.Len(t, out, 1)
	assert.Equal(t, "15/01/2024", out[0].DataDocumento)
	assert.Equal(t, "", out[0].DataEntrega, "data inválida vira vazia")
}
