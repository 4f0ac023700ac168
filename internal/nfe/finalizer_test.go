package nfe_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devpython86/nf-control/internal/domain/entity"
	"github.com/devpython86/nf-control/internal/nfe"
)

func novaLinha(chave, nNf string, item int, material string) *entity.InvoiceLine {
	return &entity.InvoiceLine{
		ChaveNfe:     chave,
		NumeroNf:     nNf,
		ItemNf:       item,
		NomeMaterial: material,
		DataEmissao:  "2024-01-15T10:30:00-03:00",
	}
}

func TestFinalize_PontoFixoImplicito(t *testing.T) {
	f := nfe.NewFinalizer(nil)
	l := novaLinha("ch1", "1", 1, "A")
	l.ValorTotalNfTexto = "123456"
	l.ValorOriginalTexto = "5"
	l.ValorPagoTexto = "100"

	out, avisos := f.Finalize([]*entity.InvoiceLine{l})
	require.Len(t, out, 1)
	assert.Zero(t, avisos)

	require.True(t, out[0].ValorTotalNf.Valid)
	assert.Equal(t, "1234.56", out[0].ValorTotalNf.Decimal.StringFixed(2),
		"as duas últimas casas são centavos implícitos")
	assert.Equal(t, "0.05", out[0].ValorOriginal.Decimal.StringFixed(2),
		"valores com menos de três dígitos viram fração de real")
	assert.Equal(t, "1.00", out[0].ValorPago.Decimal.StringFixed(2))
}

func TestFinalize_FreteSemReinterpretacao(t *testing.T) {
	f := nfe.NewFinalizer(nil)
	l := novaLinha("ch1", "1", 1, "A")
	l.ValorFreteTexto = "1000"

	out, _ := f.Finalize([]*entity.InvoiceLine{l})
	require.True(t, out[0].ValorFrete.Valid)
	assert.Equal(t, "1000.00", out[0].ValorFrete.Decimal.StringFixed(2),
		"o frete parseia direto, sem centavos implícitos")
}

func TestFinalize_ValorVazioFicaNulo(t *testing.T) {
	f := nfe.NewFinalizer(nil)
	l := novaLinha("ch1", "1", 1, "A")

	out, avisos := f.Finalize([]*entity.InvoiceLine{l})
	assert.Zero(t, avisos, "campo vazio não é aviso")
	assert.False(t, out[0].ValorTotalNf.Valid, "vazio vira nulo, nunca zero")
}

func TestFinalize_ValorNaoNumericoGeraAviso(t *testing.T) {
	f := nfe.NewFinalizer(nil)
	l := novaLinha("ch1", "1", 1, "A")
	l.ValorTotalNfTexto = "ISENTO"

	out, avisos := f.Finalize([]*entity.InvoiceLine{l})
	assert.False(t, out[0].ValorTotalNf.Valid)
	assert.Equal(t, 1, avisos)
}

func TestFinalize_SomaVlNfPorNota(t *testing.T) {
	f := nfe.NewFinalizer(nil)
	a := novaLinha("ch1", "1", 1, "A")
	a.ValorTotalProduto = decimal.NewNullDecimal(decimal.RequireFromString("25.05"))
	b := novaLinha("ch1", "1", 2, "B")
	b.ValorTotalProduto = decimal.NewNullDecimal(decimal.RequireFromString("50.00"))
	c := novaLinha("ch2", "2", 1, "C")
	c.ValorTotalProduto = decimal.NewNullDecimal(decimal.RequireFromString("10.00"))

	out, _ := f.Finalize([]*entity.InvoiceLine{a, b, c})
	require.Len(t, out, 3)
	for _, l := range out {
		require.True(t, l.ValorNfCalculado.Valid)
	}
	assert.Equal(t, "75.05", busca(t, out, "ch1", 1).ValorNfCalculado.Decimal.StringFixed(2),
		"vlNf é a soma de vlTotProd da nota, repetida em todas as linhas")
	assert.Equal(t, "75.05", busca(t, out, "ch1", 2).ValorNfCalculado.Decimal.StringFixed(2))
	assert.Equal(t, "10.00", busca(t, out, "ch2", 1).ValorNfCalculado.Decimal.StringFixed(2))
}

func TestFinalize_DedupMantemPrimeira(t *testing.T) {
	f := nfe.NewFinalizer(nil)
	a := novaLinha("ch1", "1", 1, "A")
	duplicada := novaLinha("ch1", "1", 1, "A")
	b := novaLinha("ch1", "1", 2, "B")

	out, _ := f.Finalize([]*entity.InvoiceLine{a, duplicada, b})
	assert.Len(t, out, 2, "upload duplicado da mesma nota não multiplica linhas")

	// Idempotência: finalizar de novo não remove mais nada.
	out2, _ := f.Finalize(out)
	assert.Len(t, out2, len(out))
}

func TestFinalize_DataVencimentoBR(t *testing.T) {
	f := nfe.NewFinalizer(nil)
	valida := novaLinha("ch1", "1", 1, "A")
	valida.DataVencimento = "2024-02-15"
	invalida := novaLinha("ch2", "2", 1, "B")
	invalida.DataVencimento = "a combinar"

	out, avisos := f.Finalize([]*entity.InvoiceLine{valida, invalida})
	assert.Equal(t, "15/02/2024", busca(t, out, "ch1", 1).DataVencimento)
	assert.Equal(t, "", busca(t, out, "ch2", 1).DataVencimento,
		"data inválida vira vazia com aviso")
	assert.Equal(t, 1, avisos)
}

func TestFinalize_CoercaoNumericaECnpj(t *testing.T) {
	f := nfe.NewFinalizer(nil)
	l := novaLinha("ch1", "1", 1, "A")
	l.Po = "A DEFINIR"
	l.Emitente.Cnpj = "191"

	out, avisos := f.Finalize([]*entity.InvoiceLine{l})
	assert.Equal(t, "", out[0].Po, "po não numérico vira vazio")
	assert.Equal(t, 1, avisos)
	assert.Equal(t, "00000000000191", out[0].Emitente.Cnpj,
		"CNPJ preserva zeros à esquerda até 14 dígitos")
}

func TestFinalize_AgregadosPorPedido(t *testing.T) {
	f := nfe.NewFinalizer(nil)
	// Duas notas do mesmo pedido, com duas linhas cada; uma nota sem pedido.
	a1 := novaLinha("ch1", "1", 1, "A")
	a1.Po = "4501000001"
	a1.ValorTotalNfTexto = "10000" // 100.00
	a2 := novaLinha("ch1", "1", 2, "B")
	a2.Po = "4501000001"
	a2.ValorTotalNfTexto = "10000"
	b1 := novaLinha("ch2", "2", 1, "C")
	b1.Po = "4501000001"
	b1.ValorTotalNfTexto = "5000" // 50.00
	semPo := novaLinha("ch3", "3", 1, "D")
	semPo.ValorTotalNfTexto = "99900"

	out, _ := f.Finalize([]*entity.InvoiceLine{a1, a2, b1, semPo})
	require.Len(t, out, 4)

	linha := busca(t, out, "ch1", 1)
	require.True(t, linha.ValorRecebidoPo.Valid)
	assert.Equal(t, "150.00", linha.ValorRecebidoPo.Decimal.StringFixed(2),
		"a nota, não a linha, é a unidade somada: 100.00 + 50.00")
	assert.Equal(t, 2, linha.QtdNfPo, "duas notas distintas vinculadas ao pedido")

	// O broadcast alcança todas as linhas do pedido.
	assert.Equal(t, "150.00", busca(t, out, "ch2", 1).ValorRecebidoPo.Decimal.StringFixed(2))
	assert.Equal(t, 2, busca(t, out, "ch1", 2).QtdNfPo)

	// Linhas sem pedido ficam fora dos agregados.
	assert.False(t, busca(t, out, "ch3", 1).ValorRecebidoPo.Valid)
	assert.Zero(t, busca(t, out, "ch3", 1).QtdNfPo)
}

func TestFinalize_OrdenacaoCanonica(t *testing.T) {
	f := nfe.NewFinalizer(nil)
	antiga := novaLinha("ch1", "200", 1, "A")
	antiga.DataEmissao = "2024-01-10T08:00:00-03:00"
	recente := novaLinha("ch2", "90", 1, "B")
	recente.DataEmissao = "2024-03-01T08:00:00-03:00"
	recenteItem2 := novaLinha("ch2", "90", 2, "C")
	recenteItem2.DataEmissao = "2024-03-01T08:00:00-03:00"
	mesmoDia := novaLinha("ch3", "100", 1, "D")
	mesmoDia.DataEmissao = "2024-03-01T08:00:00-03:00"

	out, _ := f.Finalize([]*entity.InvoiceLine{antiga, mesmoDia, recenteItem2, recente})
	require.Len(t, out, 4)
	assert.Equal(t, "90", out[0].NumeroNf, "emissão mais recente primeiro; empate por nNf numérico crescente")
	assert.Equal(t, 1, out[0].ItemNf)
	assert.Equal(t, 2, out[1].ItemNf, "itens da mesma nota em ordem crescente")
	assert.Equal(t, "100", out[2].NumeroNf)
	assert.Equal(t, "200", out[3].NumeroNf, "a nota antiga vai para o fim")
}

// busca localiza uma linha pelo par chave + item.
func busca(t *testing.T, linhas []*entity.InvoiceLine, chave string, item int) *entity.InvoiceLine {
	t.Helper()
	for _, l := range linhas {
		if l.ChaveNfe == chave && l.ItemNf == item {
			return l
		}
	}
	t.Fatalf("linha %s item %d não encontrada", chave, item)
	return nil
}
