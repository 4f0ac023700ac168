package nfe_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/devpython86/nf-control/internal/domain/entity"
	"github.com/devpython86/nf-control/internal/nfe"
)

func linhaComPista(chave, infoAdic, xPed, nItemPed, infAdProd string) *entity.InvoiceLine {
	return &entity.InvoiceLine{
		ChaveNfe:      chave,
		InfoAdicional: infoAdic,
		XPed:          xPed,
		NItemPed:      nItemPed,
		InfAdProd:     infAdProd,
	}
}

func TestResolve_PrefixoConhecido(t *testing.T) {
	r := nfe.NewResolver(nil)
	linhas := []*entity.InvoiceLine{
		linhaComPista("ch1", "Pedido de compra 4501123456", "", "", ""),
	}
	r.Resolve(linhas)
	assert.Equal(t, "4501123456", linhas[0].Po)
}

func TestResolve_TruncaEmDezCaracteres(t *testing.T) {
	r := nfe.NewResolver(nil)
	linhas := []*entity.InvoiceLine{
		linhaComPista("ch1", "", "45011234567890", "", ""),
	}
	r.Resolve(linhas)
	assert.Equal(t, "4501123456", linhas[0].Po,
		"tokens maiores que o número de pedido são truncados a 10 caracteres")
}

func TestResolve_SemPista(t *testing.T) {
	r := nfe.NewResolver(nil)
	linhas := []*entity.InvoiceLine{
		linhaComPista("ch1", "Entrega na portaria 2", "", "", ""),
	}
	r.Resolve(linhas)
	assert.Equal(t, "", linhas[0].Po,
		"nota sem referência resolvível fica com po vazio, sem erro")
}

// A referência costuma aparecer só na primeira linha da nota; depois do
// Resolve todas as linhas da mesma chave carregam o mesmo po.
func TestResolve_PropagaParaTodaANota(t *testing.T) {
	r := nfe.NewResolver(nil)
	linhas := []*entity.InvoiceLine{
		linhaComPista("ch1", "", "4502999888", "", ""),
		linhaComPista("ch1", "", "", "", ""),
		linhaComPista("ch1", "", "", "", ""),
		linhaComPista("ch2", "", "", "", ""),
	}
	r.Resolve(linhas)
	assert.Equal(t, "4502999888", linhas[0].Po)
	assert.Equal(t, "4502999888", linhas[1].Po)
	assert.Equal(t, "4502999888", linhas[2].Po)
	assert.Equal(t, "", linhas[3].Po, "notas distintas não herdam a referência")
}

func TestResolve_PrimeiroCandidatoVence(t *testing.T) {
	r := nfe.NewResolver(nil)
	linhas := []*entity.InvoiceLine{
		linhaComPista("ch1", "", "4501000001", "", ""),
		linhaComPista("ch1", "", "4502000002", "", ""),
	}
	r.Resolve(linhas)
	assert.Equal(t, "4501000001", linhas[0].Po,
		"o primeiro candidato não vazio na ordem das linhas vence")
	assert.Equal(t, "4501000001", linhas[1].Po)
}

func TestResolve_PrefixosCustomizados(t *testing.T) {
	r := nfe.NewResolver([]string{"9900"})
	linhas := []*entity.InvoiceLine{
		linhaComPista("ch1", "OC 9900112233 urgente 4501999999", "", "", ""),
	}
	r.Resolve(linhas)
	assert.Equal(t, "9900112233", linhas[0].Po,
		"prefixos configurados substituem a lista padrão")
}

func TestResolve_ConcatenaCamposDePista(t *testing.T) {
	r := nfe.NewResolver(nil)
	linhas := []*entity.InvoiceLine{
		linhaComPista("ch1", "", "", "", "conforme pedido 4503777666"),
	}
	r.Resolve(linhas)
	assert.Equal(t, "4503777666", linhas[0].Po,
		"infAdProd também participa da busca de pista")
	assert.Contains(t, linhas[0].PedidoTexto, "4503777666")
}
