package excel

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/devpython86/nf-control/internal/domain/entity"
)

// ColunasPadrao é a ordem de colunas da planilha consolidada de notas.
var ColunasPadrao = []string{
	"nNf", "dtEmi", "itemNf", "nomeMaterial", "ncm", "qtd", "und",
	"vlUnProd", "vlTotProd", "vlTotalNf", "po", "vlRecPo", "qtdNfPo",
	"dVenc", "chNfe",
	"emitNome", "emitCnpj", "emitLogr", "emitNr", "emitCompl",
	"emitBairro", "emitMunic", "emitUf", "emitCep", "emitPais",
	"destNome", "destCnpj", "destLogr", "destNr", "destCompl",
	"destBairro", "destMunic", "destUf", "destCep", "destPais",
	"cfop",
}

// InvoiceWriter grava a planilha consolidada de linhas de NF-e.
type InvoiceWriter struct {
	colunas []string
}

// NewInvoiceWriter cria o gravador com a lista de colunas informada;
// lista vazia usa ColunasPadrao.
func NewInvoiceWriter(colunas []string) *InvoiceWriter {
	if len(colunas) == 0 {
		colunas = ColunasPadrao
	}
	return &InvoiceWriter{colunas: colunas}
}

// Write grava o cabeçalho e uma linha por InvoiceLine na primeira aba.
func (w *InvoiceWriter) Write(destino io.Writer, linhas []*entity.InvoiceLine) error {
	f := excelize.NewFile()
	defer f.Close()

	aba := f.GetSheetName(0)
	sw, err := f.NewStreamWriter(aba)
	if err != nil {
		return fmt.Errorf("criar stream da aba %q: %w", aba, err)
	}

	cabecalho := make([]interface{}, len(w.colunas))
	for i, c := range w.colunas {
		cabecalho[i] = c
	}
	if err := sw.SetRow("A1", cabecalho); err != nil {
		return fmt.Errorf("gravar cabeçalho: %w", err)
	}

	for i, l := range linhas {
		valores := make([]interface{}, len(w.colunas))
		for j, c := range w.colunas {
			valores[j] = valorColuna(l, c)
		}
		celula, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(celula, valores); err != nil {
			return fmt.Errorf("gravar linha %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("finalizar planilha: %w", err)
	}
	return f.Write(destino)
}

func valorColuna(l *entity.InvoiceLine, coluna string) interface{} {
	switch coluna {
	case "nNf":
		return l.NumeroNf
	case "dtEmi":
		return l.DataEmissao
	case "itemNf":
		return l.ItemNf
	case "nomeMaterial":
		return l.NomeMaterial
	case "ncm":
		return l.Ncm
	case "qtd":
		return valorDecimal(l.Quantidade)
	case "und":
		return l.Unidade
	case "vlUnProd":
		return valorDecimal(l.ValorUnitario)
	case "vlTotProd":
		return valorDecimal(l.ValorTotalProduto)
	case "vlTotalNf":
		return valorDecimal(l.ValorTotalNf)
	case "vlFrete":
		return valorDecimal(l.ValorFrete)
	case "po":
		return l.Po
	case "vlRecPo":
		return valorDecimal(l.ValorRecebidoPo)
	case "qtdNfPo":
		return l.QtdNfPo
	case "vlNf":
		return valorDecimal(l.ValorNfCalculado)
	case "dVenc":
		return l.DataVencimento
	case "chNfe":
		return l.ChaveNfe
	case "serie":
		return l.Serie
	case "natOp":
		return l.NaturezaOp
	case "fatura":
		return l.Fatura
	case "duplicata":
		return l.Duplicata
	case "vlOriginal":
		return valorDecimal(l.ValorOriginal)
	case "vlPago":
		return valorDecimal(l.ValorPago)
	case "codProduto":
		return l.CodigoProduto
	case "xPed":
		return l.XPed
	case "nItemPed":
		return l.NItemPed
	case "infAdProd":
		return l.InfAdProd
	case "infoAdic":
		return l.InfoAdicional
	case "emitNome":
		return l.Emitente.Nome
	case "emitCnpj":
		return l.Emitente.Cnpj
	case "emitLogr":
		return l.Emitente.Endereco.Logradouro
	case "emitNr":
		return l.Emitente.Endereco.Numero
	case "emitCompl":
		return l.Emitente.Endereco.Complemento
	case "emitBairro":
		return l.Emitente.Endereco.Bairro
	case "emitMunic":
		return l.Emitente.Endereco.Municipio
	case "emitUf":
		return l.Emitente.Endereco.UF
	case "emitCep":
		return l.Emitente.Endereco.Cep
	case "emitPais":
		return l.Emitente.Endereco.Pais
	case "destNome":
		return l.Destinatario.Nome
	case "destCnpj":
		return l.Destinatario.Cnpj
	case "destLogr":
		return l.Destinatario.Endereco.Logradouro
	case "destNr":
		return l.Destinatario.Endereco.Numero
	case "destCompl":
		return l.Destinatario.Endereco.Complemento
	case "destBairro":
		return l.Destinatario.Endereco.Bairro
	case "destMunic":
		return l.Destinatario.Endereco.Municipio
	case "destUf":
		return l.Destinatario.Endereco.UF
	case "destCep":
		return l.Destinatario.Endereco.Cep
	case "destPais":
		return l.Destinatario.Endereco.Pais
	case "cfop":
		return l.Cfop
	default:
		return ""
	}
}

// valorDecimal células numéricas de verdade na planilha; nulo vira vazio.
func valorDecimal(d decimal.NullDecimal) interface{} {
	if !d.Valid {
		return ""
	}
	f, _ := d.Decimal.Float64()
	return f
}
