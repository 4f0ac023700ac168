package nfe

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/devpython86/nf-control/internal/domain/entity"
	"github.com/devpython86/nf-control/pkg/datas"
	"github.com/devpython86/nf-control/pkg/logger"
)

// tamanhoCnpj CNPJs são exibidos sempre com 14 dígitos, zeros à esquerda preservados.
const tamanhoCnpj = 14

var reNumero = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// Finalizer aplica a sequência de finalização tabular sobre o lote completo:
// totais por nota, deduplicação, normalização de tipos e datas, agregados por
// pedido e ordenação canônica. Determinístico dada a ordem de entrada.
type Finalizer struct {
	log *logger.Logger
}

// NewFinalizer cria o finalizador.
func NewFinalizer(log *logger.Logger) *Finalizer {
	if log == nil {
		log = logger.Nop()
	}
	return &Finalizer{log: log}
}

// Finalize executa as etapas na ordem obrigatória (cada etapa depende das
// invariantes da anterior) e devolve as linhas finais e a contagem de avisos
// de coerção. Campos malformados viram nulos e são contados, nunca abortam o
// lote.
func (f *Finalizer) Finalize(linhas []*entity.InvoiceLine) ([]*entity.InvoiceLine, int) {
	avisos := 0

	// 1. Total calculado por nota: soma de vlTotProd por chave.
	somas := make(map[string]decimal.Decimal)
	for _, l := range linhas {
		if l.ValorTotalProduto.Valid {
			somas[l.ChaveNfe] = somas[l.ChaveNfe].Add(l.ValorTotalProduto.Decimal)
		}
	}
	for _, l := range linhas {
		l.ValorNfCalculado = decimal.NullDecimal{Decimal: somas[l.ChaveNfe], Valid: true}
	}

	// 2. Primeira deduplicação: nNf+itemNf+descrição, mantendo a primeira
	// ocorrência (remove linhas de uploads duplicados da mesma nota).
	linhas = dedupPorChave(linhas)

	// 3. Reinterpretação de ponto fixo implícito (convenção do sistema de
	// origem para vNF e valores de cobrança) e parse direto do frete.
	for _, l := range linhas {
		l.ValorTotalNf = f.pontoFixo(l.ValorTotalNfTexto, &avisos)
		l.ValorOriginal = f.pontoFixo(l.ValorOriginalTexto, &avisos)
		l.ValorPago = f.pontoFixo(l.ValorPagoTexto, &avisos)
		l.ValorFrete = f.decimalOuNulo(l.ValorFreteTexto, &avisos)
	}

	// 4. Data de vencimento em dd/mm/aaaa; data inválida vira nula.
	for _, l := range linhas {
		br, ok := datas.ParaBR(l.DataVencimento)
		if !ok {
			f.log.Warn().Str("chNfe", l.ChaveNfe).Str("dVenc", l.DataVencimento).
				Msg("data de vencimento inválida, descartada")
			avisos++
		}
		l.DataVencimento = br
	}

	// 5. Colunas de chave numérica: valor não numérico vira nulo. CNPJs
	// voltam para string com zeros à esquerda até 14 dígitos.
	for _, l := range linhas {
		l.Po = f.coageNumerico(l.Po, &avisos)
		l.NumeroNf = f.coageNumerico(l.NumeroNf, &avisos)
		l.Serie = f.coageNumerico(l.Serie, &avisos)
		l.Ncm = f.coageNumerico(l.Ncm, &avisos)
		l.Cfop = f.coageNumerico(l.Cfop, &avisos)
		l.Emitente.Cnpj = padCnpj(f.coageNumerico(l.Emitente.Cnpj, &avisos))
		l.Destinatario.Cnpj = padCnpj(f.coageNumerico(l.Destinatario.Cnpj, &avisos))
		l.Emitente.Endereco.Cep = f.coageNumerico(l.Emitente.Endereco.Cep, &avisos)
		l.Emitente.Endereco.Pais = f.coageNumerico(l.Emitente.Endereco.Pais, &avisos)
		l.Destinatario.Endereco.Cep = f.coageNumerico(l.Destinatario.Endereco.Cep, &avisos)
		l.Destinatario.Endereco.Pais = f.coageNumerico(l.Destinatario.Endereco.Pais, &avisos)
	}

	// 6. Agregados por pedido: uma linha por (chave, po) e soma/contagem por
	// po; a nota, não a linha, é a unidade contada. Po vazio fica fora dos
	// agregados; o broadcast devolve os valores a todas as linhas do po.
	type agregado struct {
		total decimal.Decimal
		qtd   int
	}
	vistos := make(map[string]bool)
	porPo := make(map[string]*agregado)
	for _, l := range linhas {
		if l.Po == "" {
			continue
		}
		chavePar := l.ChaveNfe + "|" + l.Po
		if vistos[chavePar] {
			continue
		}
		vistos[chavePar] = true
		ag := porPo[l.Po]
		if ag == nil {
			ag = &agregado{}
			porPo[l.Po] = ag
		}
		if l.ValorTotalNf.Valid {
			ag.total = ag.total.Add(l.ValorTotalNf.Decimal)
		}
		ag.qtd++
	}
	for _, l := range linhas {
		if ag := porPo[l.Po]; ag != nil {
			l.ValorRecebidoPo = decimal.NullDecimal{Decimal: ag.total, Valid: true}
			l.QtdNfPo = ag.qtd
		}
	}

	// 7. Segunda deduplicação, obrigatoriamente depois do broadcast: quando o
	// mesmo po aparece em várias notas o join pode multiplicar linhas.
	linhas = dedupPorChave(linhas)

	// 8. Ordem canônica de apresentação: emissão desc, nNf asc, itemNf asc.
	sort.SliceStable(linhas, func(i, j int) bool {
		a, b := linhas[i], linhas[j]
		ta, okA := datas.Parse(a.DataEmissao)
		tb, okB := datas.Parse(b.DataEmissao)
		switch {
		case okA && okB && !ta.Equal(tb):
			return ta.After(tb)
		case okA != okB:
			return okA // datas inválidas por último
		case !okA && a.DataEmissao != b.DataEmissao:
			return a.DataEmissao > b.DataEmissao
		}
		if a.NumeroNf != b.NumeroNf {
			na, errA := strconv.ParseInt(a.NumeroNf, 10, 64)
			nb, errB := strconv.ParseInt(b.NumeroNf, 10, 64)
			if errA == nil && errB == nil {
				return na < nb
			}
			return a.NumeroNf < b.NumeroNf
		}
		return a.ItemNf < b.ItemNf
	})

	return linhas, avisos
}

// dedupPorChave remove duplicatas pela chave nNf+itemNf+descrição, mantendo a
// primeira ocorrência. Idempotente: reaplicar sobre a própria saída não
// remove mais nada.
func dedupPorChave(linhas []*entity.InvoiceLine) []*entity.InvoiceLine {
	vistos := make(map[string]bool, len(linhas))
	out := linhas[:0:0]
	for _, l := range linhas {
		chave := l.ChaveDedup()
		if vistos[chave] {
			continue
		}
		vistos[chave] = true
		out = append(out, l)
	}
	return out
}

// pontoFixo reinterpreta um texto numérico com duas casas decimais implícitas:
// "123456" -> 1234.56, "5" -> 0.05. Vazio passa como nulo, nunca como zero;
// texto não numérico vira nulo com aviso.
func (f *Finalizer) pontoFixo(s string, avisos *int) decimal.NullDecimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		f.log.Warn().Str("valor", s).Msg("valor monetário não numérico, descartado")
		*avisos++
		return decimal.NullDecimal{}
	}
	digitos := d.Truncate(0).String()
	negativo := strings.HasPrefix(digitos, "-")
	digitos = strings.TrimPrefix(digitos, "-")
	var montado string
	if len(digitos) > 2 {
		montado = digitos[:len(digitos)-2] + "." + digitos[len(digitos)-2:]
	} else {
		// valores abaixo de 100 centavos viram 0.xx
		montado = "0." + strings.Repeat("0", 2-len(digitos)) + digitos
	}
	if negativo {
		montado = "-" + montado
	}
	valor, err := decimal.NewFromString(montado)
	if err != nil {
		*avisos++
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: valor, Valid: true}
}

// decimalOuNulo parseia um decimal simples; falha vira nulo com aviso.
func (f *Finalizer) decimalOuNulo(s string, avisos *int) decimal.NullDecimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		f.log.Warn().Str("valor", s).Msg("valor não numérico, descartado")
		*avisos++
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// coageNumerico mantém o texto apenas quando ele é numérico; caso contrário
// devolve vazio (nulo) com aviso. Valores vazios passam sem aviso.
func (f *Finalizer) coageNumerico(s string, avisos *int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if !reNumero.MatchString(s) {
		*avisos++
		return ""
	}
	return s
}

// padCnpj completa o CNPJ com zeros à esquerda até 14 dígitos.
func padCnpj(s string) string {
	if s == "" || len(s) >= tamanhoCnpj {
		return s
	}
	return strings.Repeat("0", tamanhoCnpj-len(s)) + s
}
