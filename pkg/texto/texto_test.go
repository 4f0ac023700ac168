package texto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/devpython86/nf-control/pkg/texto"
)

func TestSemAcentos(t *testing.T) {
	assert.Equal(t, "Parafuso Aco", texto.SemAcentos("Parafuso Aço"),
		"acentos devem ser removidos preservando o resto do texto")
	assert.Equal(t, "ELETRICO", texto.SemAcentos("ELÉTRICO"))
	assert.Equal(t, "sem acento", texto.SemAcentos("sem acento"),
		"texto sem acento deve passar intacto")
	assert.Equal(t, "", texto.SemAcentos(""))
}

func TestLimpaEspacos(t *testing.T) {
	assert.Equal(t, "a b c", texto.LimpaEspacos("  a   b  c "),
		"espaços consecutivos devem colapsar em um")
	assert.Equal(t, "", texto.LimpaEspacos("   "))
}

func TestNormalizaDescricao(t *testing.T) {
	assert.Equal(t, "PARAFUSO SEXTAVADO ACO",
		texto.NormalizaDescricao("  Parafuso   sextavado aço "),
		"a forma canônica é sem acentos, espaços simples e maiúsculas")
}

// A normalização precisa ser idempotente: descrições já canônicas geram a
// mesma chave de deduplicação.
func TestNormalizaDescricao_Idempotente(t *testing.T) {
	canonica := texto.NormalizaDescricao("Chapa de aço 1/4\"")
	assert.Equal(t, canonica, texto.NormalizaDescricao(canonica))
}
