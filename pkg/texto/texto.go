// Package texto concentra a normalização de texto usada na extração de NF-e:
// remoção de acentos, colapso de espaços e padronização de descrições de
// material para chaves de deduplicação estáveis.
package texto

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var multiEspaco = regexp.MustCompile(` +`)

// removeDiacriticos decompõe (NFD), descarta as marcas de combinação e recompõe (NFC).
var removeDiacriticos = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// SemAcentos devolve s sem acentos ("Parafuso Aço" -> "Parafuso Aco").
// Em caso de falha de transformação devolve a string original.
func SemAcentos(s string) string {
	out, _, err := transform.String(removeDiacriticos, s)
	if err != nil {
		return s
	}
	return out
}

// LimpaEspacos colapsa espaços consecutivos e remove espaços nas pontas.
func LimpaEspacos(s string) string {
	return strings.TrimSpace(multiEspaco.ReplaceAllString(s, " "))
}

// NormalizaDescricao remove acentos, limpa espaços e converte para
// maiúsculas; é a forma canônica das descrições de material usada nas chaves
// de deduplicação.
func NormalizaDescricao(s string) string {
	return strings.ToUpper(LimpaEspacos(SemAcentos(s)))
}
