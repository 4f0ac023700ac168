// Package excel lê planilhas de follow-up de PO e grava a planilha
// consolidada de notas fiscais usando excelize.
package excel

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/devpython86/nf-control/internal/domain"
	"github.com/devpython86/nf-control/internal/domain/entity"
)

// Cabeçalhos reconhecidos nas planilhas de follow-up (exportação SAP).
var colunasPo = map[string][]string{
	"documento":   {"Purchasing Document"},
	"item":        {"Item"},
	"fornecedor":  {"Supplier Name", "Vendor"},
	"material":    {"Short Text", "Material"},
	"vlLiquido":   {"Net order value"},
	"qtd":         {"Order Quantity"},
	"vlCondicao":  {"PBXX Condition Amount"},
	"dtDocumento": {"Document Date"},
	"dtEntrega":   {"Delivery date", "Delivery Date"},
}

// POReader lê planilhas de follow-up de pedidos de compra.
type POReader struct{}

// NewPOReader cria o leitor.
func NewPOReader() *POReader {
	return &POReader{}
}

// Read lê a primeira aba da planilha, mapeando as colunas pelo nome do
// cabeçalho. Planilhas sem a coluna de documento de compra são rejeitadas.
func (r *POReader) Read(arquivo io.Reader) ([]*entity.PurchaseOrderLine, error) {
	f, err := excelize.OpenReader(arquivo)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPlanilhaInvalida, err)
	}
	defer f.Close()

	abas := f.GetSheetList()
	if len(abas) == 0 {
		return nil, fmt.Errorf("%w: planilha sem abas", domain.ErrPlanilhaInvalida)
	}
	linhas, err := f.GetRows(abas[0])
	if err != nil {
		return nil, fmt.Errorf("ler aba %q: %w", abas[0], err)
	}
	if len(linhas) == 0 {
		return nil, nil
	}

	indices := mapeiaColunas(linhas[0])
	if _, ok := indices["documento"]; !ok {
		return nil, fmt.Errorf("%w: coluna Purchasing Document ausente", domain.ErrPlanilhaInvalida)
	}

	out := make([]*entity.PurchaseOrderLine, 0, len(linhas)-1)
	for _, linha := range linhas[1:] {
		l := &entity.PurchaseOrderLine{
			Documento:     celula(linha, indices, "documento"),
			Item:          celula(linha, indices, "item"),
			Fornecedor:    celula(linha, indices, "fornecedor"),
			Material:      celula(linha, indices, "material"),
			ValorLiquido:  celulaDecimal(linha, indices, "vlLiquido"),
			Quantidade:    celulaDecimal(linha, indices, "qtd"),
			ValorCondicao: celulaDecimal(linha, indices, "vlCondicao"),
			DataDocumento: celula(linha, indices, "dtDocumento"),
			DataEntrega:   celula(linha, indices, "dtEntrega"),
		}
		if l.Documento == "" && l.Item == "" {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func mapeiaColunas(cabecalho []string) map[string]int {
	indices := make(map[string]int)
	for i, nome := range cabecalho {
		nome = strings.TrimSpace(nome)
		for campo, candidatos := range colunasPo {
			if _, ok := indices[campo]; ok {
				continue
			}
			for _, c := range candidatos {
				if strings.EqualFold(nome, c) {
					indices[campo] = i
				}
			}
		}
	}
	return indices
}

func celula(linha []string, indices map[string]int, campo string) string {
	i, ok := indices[campo]
	if !ok || i >= len(linha) {
		return ""
	}
	return strings.TrimSpace(linha[i])
}

func celulaDecimal(linha []string, indices map[string]int, campo string) decimal.NullDecimal {
	s := celula(linha, indices, campo)
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}
