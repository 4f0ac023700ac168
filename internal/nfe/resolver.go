package nfe

import (
	"strings"

	"github.com/devpython86/nf-control/internal/domain/entity"
)

// DefaultPOPrefixes séries internas de numeração de pedidos de compra da
// organização. A lista é configurável; ver Open Question no DESIGN.md.
var DefaultPOPrefixes = []string{"4501", "4502", "4503", "4504", "4505"}

// tamanhoPo um número de pedido tem 10 dígitos; pistas maiores são truncadas.
const tamanhoPo = 10

// Resolver deriva a melhor referência de pedido de compra por nota,
// varrendo os campos de texto livre por tokens com prefixos conhecidos.
type Resolver struct {
	prefixos []string
}

// NewResolver cria o resolvedor; lista vazia usa DefaultPOPrefixes.
func NewResolver(prefixos []string) *Resolver {
	if len(prefixos) == 0 {
		prefixos = DefaultPOPrefixes
	}
	return &Resolver{prefixos: prefixos}
}

// Resolve preenche o campo Po de todas as linhas. Função pura, sem I/O,
// nunca falha: ausência de pedido resolvível é estado terminal válido (po vazio).
//
// Invariante de propagação: após Resolve, todas as linhas da mesma ChaveNfe
// carregam o mesmo Po: o primeiro candidato não vazio da nota, na ordem
// original das linhas (a referência costuma aparecer só na primeira linha).
func (r *Resolver) Resolve(linhas []*entity.InvoiceLine) []*entity.InvoiceLine {
	primeiroPorChave := make(map[string]string)

	for _, linha := range linhas {
		linha.PedidoTexto = strings.Join([]string{
			linha.InfoAdicional, linha.XPed, linha.NItemPed, linha.InfAdProd,
		}, " ")
		candidato := r.candidato(linha.PedidoTexto)
		if candidato != "" {
			if _, ok := primeiroPorChave[linha.ChaveNfe]; !ok {
				primeiroPorChave[linha.ChaveNfe] = candidato
			}
		}
	}

	for _, linha := range linhas {
		linha.Po = primeiroPorChave[linha.ChaveNfe]
	}
	return linhas
}

// candidato extrai a pista de pedido de um texto livre: tokens que começam
// com um dos prefixos, truncados a 10 caracteres e juntados por espaço; o
// resultado final é truncado de novo a 10 caracteres como limite de segurança.
func (r *Resolver) candidato(s string) string {
	var pistas []string
	for _, token := range strings.Fields(s) {
		if r.temPrefixo(token) {
			pistas = append(pistas, trunca(token, tamanhoPo))
		}
	}
	if len(pistas) == 0 {
		return ""
	}
	return trunca(strings.Join(pistas, " "), tamanhoPo)
}

func (r *Resolver) temPrefixo(token string) bool {
	for _, p := range r.prefixos {
		if strings.HasPrefix(token, p) {
			return true
		}
	}
	return false
}

func trunca(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
