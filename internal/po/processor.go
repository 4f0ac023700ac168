// Package po processa as planilhas de follow-up de pedidos de compra
// consolidadas pelo departamento, calculando valores por item e totais
// por documento antes da deduplicação.
package po

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/devpython86/nf-control/internal/domain/entity"
	"github.com/devpython86/nf-control/pkg/datas"
	"github.com/devpython86/nf-control/pkg/logger"
)

// Processor consolida as linhas lidas das planilhas de PO.
type Processor struct {
	log *logger.Logger
}

// NewProcessor cria o processador.
func NewProcessor(log *logger.Logger) *Processor {
	return &Processor{log: log}
}

// Process aplica os cálculos e a limpeza sobre as linhas brutas:
//
//  1. coerção numérica (valores ausentes viram zero);
//  2. valor unitário = líquido / quantidade e valor com impostos =
//     condição * quantidade, por item;
//  3. totais por documento (soma do líquido, soma com impostos e
//     contagem de itens), calculados antes da deduplicação;
//  4. deduplicação por documento + item, mantendo a primeira ocorrência;
//  5. descarte de documentos não numéricos;
//  6. datas para dd/mm/aaaa;
//  7. ordenação por documento decrescente.
func (p *Processor) Process(linhas []*entity.PurchaseOrderLine) []*entity.PurchaseOrderLine {
	for _, l := range linhas {
		l.ValorLiquido = zeroSeNulo(l.ValorLiquido)
		l.Quantidade = zeroSeNulo(l.Quantidade)
		l.ValorCondicao = zeroSeNulo(l.ValorCondicao)

		if !l.Quantidade.Decimal.IsZero() {
			l.ValorUnitario = decimal.NewNullDecimal(l.ValorLiquido.Decimal.Div(l.Quantidade.Decimal).Round(2))
		} else {
			l.ValorUnitario = decimal.NewNullDecimal(decimal.Zero)
		}
		l.ValorComImposto = decimal.NewNullDecimal(l.ValorCondicao.Decimal.Mul(l.Quantidade.Decimal).Round(2))
	}

	type totais struct {
		liquido    decimal.Decimal
		comImposto decimal.Decimal
		itens      int
	}
	porDocumento := make(map[string]*totais)
	for _, l := range linhas {
		t, ok := porDocumento[l.Documento]
		if !ok {
			t = &totais{}
			porDocumento[l.Documento] = t
		}
		t.liquido = t.liquido.Add(l.ValorLiquido.Decimal)
		t.comImposto = t.comImposto.Add(l.ValorComImposto.Decimal)
		t.itens++
	}
	for _, l := range linhas {
		t := porDocumento[l.Documento]
		l.TotalPoLiquido = decimal.NewNullDecimal(t.liquido)
		l.TotalPoComImposto = decimal.NewNullDecimal(t.comImposto)
		l.TotalItensPo = t.itens
	}

	vistos := make(map[string]struct{}, len(linhas))
	descartadas := 0
	saida := linhas[:0:0]
	for _, l := range linhas {
		chave := l.ChaveDedup()
		if _, ok := vistos[chave]; ok {
			continue
		}
		vistos[chave] = struct{}{}
		if _, ok := l.DocumentoNumerico(); !ok {
			descartadas++
			continue
		}
		l.DataDocumento, _ = datas.ParaBR(l.DataDocumento)
		l.DataEntrega, _ = datas.ParaBR(l.DataEntrega)
		saida = append(saida, l)
	}

	sort.SliceStable(saida, func(i, j int) bool {
		ni, _ := saida[i].DocumentoNumerico()
		nj, _ := saida[j].DocumentoNumerico()
		return ni > nj
	})

	if p.log != nil {
		p.log.Info().
			Int("linhas_entrada", len(linhas)).
			Int("linhas_saida", len(saida)).
			Int("documentos_descartados", descartadas).
			Msg("planilhas de PO consolidadas")
	}
	return saida
}

func zeroSeNulo(d decimal.NullDecimal) decimal.NullDecimal {
	if !d.Valid {
		return decimal.NewNullDecimal(decimal.Zero)
	}
	return d
}
