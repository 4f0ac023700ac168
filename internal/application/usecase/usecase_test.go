package usecase_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devpython86/nf-control/internal/application/dto"
	"github.com/devpython86/nf-control/internal/application/usecase"
	"github.com/devpython86/nf-control/internal/domain"
	"github.com/devpython86/nf-control/internal/domain/entity"
	"github.com/devpython86/nf-control/internal/domain/repository"
	"github.com/devpython86/nf-control/internal/nfe"
	"github.com/devpython86/nf-control/internal/po"
)

// ── fakes em memória ──────────────────────────────────────────────────────────

type invoiceRepoFake struct {
	linhas map[string]*entity.InvoiceLine
}

func novoInvoiceRepoFake() *invoiceRepoFake {
	return &invoiceRepoFake{linhas: map[string]*entity.InvoiceLine{}}
}

func (r *invoiceRepoFake) UpsertBatch(_ context.Context, linhas []*entity.InvoiceLine) (int, error) {
	for _, l := range linhas {
		r.linhas[l.ChaveDedup()] = l
	}
	return len(linhas), nil
}

func (r *invoiceRepoFake) List(_ context.Context, filtro repository.InvoiceLineFilter, limit, offset int) ([]*entity.InvoiceLine, int64, error) {
	var out []*entity.InvoiceLine
	for _, l := range r.linhas {
		if filtro.Po != "" && l.Po != filtro.Po {
			continue
		}
		if filtro.ChaveNfe != "" && l.ChaveNfe != filtro.ChaveNfe {
			continue
		}
		out = append(out, l)
	}
	total := int64(len(out))
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, total, nil
}

func (r *invoiceRepoFake) FindByPo(ctx context.Context, poDoc string) ([]*entity.InvoiceLine, error) {
	out, _, err := r.List(ctx, repository.InvoiceLineFilter{Po: poDoc}, 0, 0)
	return out, err
}

type poRepoFake struct {
	linhas []*entity.PurchaseOrderLine
}

func (r *poRepoFake) UpsertBatch(_ context.Context, linhas []*entity.PurchaseOrderLine) (int, error) {
	r.linhas = append(r.linhas, linhas...)
	return len(linhas), nil
}

func (r *poRepoFake) List(_ context.Context, limit, offset int) ([]*entity.PurchaseOrderLine, int64, error) {
	return r.linhas, int64(len(r.linhas)), nil
}

func (r *poRepoFake) FindByDocumento(_ context.Context, documento string) ([]*entity.PurchaseOrderLine, error) {
	var out []*entity.PurchaseOrderLine
	for _, l := range r.linhas {
		if l.Documento == documento {
			out = append(out, l)
		}
	}
	return out, nil
}

type leitorFake struct {
	linhas []*entity.PurchaseOrderLine
	err    error
}

func (f *leitorFake) Read(io.Reader) ([]*entity.PurchaseOrderLine, error) {
	return f.linhas, f.err
}

type gravadorFake struct{ chamado bool }

func (g *gravadorFake) Write(destino io.Writer, linhas []*entity.InvoiceLine) error {
	g.chamado = true
	_, err := destino.Write([]byte("xlsx"))
	return err
}

var _ repository.InvoiceLineRepository = (*invoiceRepoFake)(nil)
var _ repository.PurchaseOrderRepository = (*poRepoFake)(nil)

// ── XMLUseCase ────────────────────────────────────────────────────────────────

const xmlNotaMinima = `<?xml version="1.0"?>
<nfeProc xmlns="http://www.portalfiscal.inf.br/nfe">
 <NFe><infNFe Id="NFe111">
  <ide><nNF>10</nNF><dhEmi>2024-01-15T10:00:00-03:00</dhEmi></ide>
  <det nItem="1"><prod><cProd>P1</cProd><xProd>Material</xProd><qCom>1</qCom><vUnCom>100</vUnCom><vProd>100.00</vProd></prod></det>
  <total><ICMSTot><vNF>100.00</vNF></ICMSTot></total>
  <infAdic><infCpl>pedido 4501000001</infCpl></infAdic>
 </infNFe></NFe>
</nfeProc>`

func novoXMLUseCase(repo repository.InvoiceLineRepository, gravador usecase.GravadorPlanilhaNf) *usecase.XMLUseCase {
	pipeline := nfe.NewPipeline(nfe.Options{Workers: 2}, nil)
	return usecase.NewXMLUseCase(pipeline, repo, gravador)
}

func TestXMLUseCase_ProcessarGrava(t *testing.T) {
	repo := novoInvoiceRepoFake()
	uc := novoXMLUseCase(repo, &gravadorFake{})

	resp, err := uc.Processar(context.Background(), []nfe.Documento{
		{Nome: "a.xml", Dados: []byte(xmlNotaMinima)},
		{Nome: "quebrado.xml", Dados: []byte("<NFe>")},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.DocumentosProcessados)
	assert.Equal(t, 1, resp.DocumentosIgnorados)
	assert.Equal(t, 1, resp.LinhasFinais)
	assert.Equal(t, 1, resp.LinhasGravadas)
	assert.Len(t, repo.linhas, 1, "as linhas finais foram persistidas")
}

func TestXMLUseCase_ListarComFiltro(t *testing.T) {
	repo := novoInvoiceRepoFake()
	repo.linhas["a"] = &entity.InvoiceLine{ChaveNfe: "111", Po: "4501000001"}
	repo.linhas["b"] = &entity.InvoiceLine{ChaveNfe: "222", Po: ""}
	uc := novoXMLUseCase(repo, &gravadorFake{})

	resp, err := uc.Listar(context.Background(), dto.InvoiceLineListRequest{Po: "4501000001"})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "111", resp.Items[0].ChaveNfe)
	assert.Equal(t, 50, resp.Page.Limit, "paginação assume o limite padrão")
}

func TestXMLUseCase_Exportar(t *testing.T) {
	repo := novoInvoiceRepoFake()
	repo.linhas["a"] = &entity.InvoiceLine{ChaveNfe: "111"}
	gravador := &gravadorFake{}
	uc := novoXMLUseCase(repo, gravador)

	dados, err := uc.Exportar(context.Background(), dto.InvoiceLineListRequest{})
	require.NoError(t, err)
	assert.True(t, gravador.chamado)
	assert.NotEmpty(t, dados)
}

// ── POUseCase ─────────────────────────────────────────────────────────────────

func TestPOUseCase_Importar(t *testing.T) {
	repo := &poRepoFake{}
	leitor := &leitorFake{linhas: []*entity.PurchaseOrderLine{
		{
			Documento:     "4501000001",
			Item:          "10",
			ValorLiquido:  decimal.NewNullDecimal(decimal.RequireFromString("100")),
			Quantidade:    decimal.NewNullDecimal(decimal.RequireFromString("4")),
			ValorCondicao: decimal.NewNullDecimal(decimal.RequireFromString("30")),
		},
	}}
	uc := usecase.NewPOUseCase(leitor, po.NewProcessor(nil), repo)

	resp, err := uc.Importar(context.Background(), []usecase.ArquivoPo{{Nome: "follow.xlsx"}})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.ArquivosProcessados)
	assert.Equal(t, 1, resp.LinhasLidas)
	assert.Equal(t, 1, resp.LinhasFinais)
	assert.Equal(t, 1, resp.LinhasGravadas)
	require.Len(t, repo.linhas, 1)
	assert.Equal(t, "25.00", repo.linhas[0].ValorUnitario.Decimal.StringFixed(2),
		"as linhas chegam ao repositório já processadas")
}

func TestPOUseCase_ImportarPlanilhaIlegivel(t *testing.T) {
	repo := &poRepoFake{}
	leitor := &leitorFake{err: errors.New("corrompida")}
	uc := usecase.NewPOUseCase(leitor, po.NewProcessor(nil), repo)

	resp, err := uc.Importar(context.Background(), []usecase.ArquivoPo{{Nome: "ruim.xlsx"}})
	require.NoError(t, err, "planilha ilegível não aborta a importação")
	assert.Equal(t, 1, resp.ArquivosIgnorados)
	require.Len(t, resp.Erros, 1)
	assert.Contains(t, resp.Erros[0], "ruim.xlsx")
}

// ── ReconciliacaoUseCase ──────────────────────────────────────────────────────

func TestReconciliacao_SaldoAberto(t *testing.T) {
	invoices := novoInvoiceRepoFake()
	invoices.linhas["a"] = &entity.InvoiceLine{
		ChaveNfe:        "111",
		Po:              "4501000001",
		ValorRecebidoPo: decimal.NewNullDecimal(decimal.RequireFromString("150.00")),
		QtdNfPo:         2,
	}
	pos := &poRepoFake{linhas: []*entity.PurchaseOrderLine{{
		Documento:      "4501000001",
		TotalPoLiquido: decimal.NewNullDecimal(decimal.RequireFromString("400.00")),
	}}}

	uc := usecase.NewReconciliacaoUseCase(invoices, pos)
	resp, err := uc.PorPo(context.Background(), "4501000001")
	require.NoError(t, err)
	assert.Equal(t, "150.00", resp.ValorRecebido)
	assert.Equal(t, 2, resp.NotasVinculadas)
	assert.Equal(t, "400.00", resp.TotalPoLiquido)
	assert.Equal(t, "250.00", resp.SaldoAberto)
}

func TestReconciliacao_SomenteNotas(t *testing.T) {
	invoices := novoInvoiceRepoFake()
	invoices.linhas["a"] = &entity.InvoiceLine{ChaveNfe: "111", Po: "4501000001"}
	uc := usecase.NewReconciliacaoUseCase(invoices, &poRepoFake{})

	resp, err := uc.PorPo(context.Background(), "4501000001")
	require.NoError(t, err)
	assert.Equal(t, "0.00", resp.ValorRecebido)
	assert.Empty(t, resp.TotalPoLiquido, "sem importação do PO não há total para confrontar")
}

func TestReconciliacao_NaoEncontrado(t *testing.T) {
	uc := usecase.NewReconciliacaoUseCase(novoInvoiceRepoFake(), &poRepoFake{})
	_, err := uc.PorPo(context.Background(), "4509999999")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReconciliacao_DocumentoVazio(t *testing.T) {
	uc := usecase.NewReconciliacaoUseCase(novoInvoiceRepoFake(), &poRepoFake{})
	_, err := uc.PorPo(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
