// Package nfe implementa o pipeline de extração e reconciliação de NF-e:
// parsing do XML em linhas de item achatadas, resolução heurística da
// referência de pedido de compra e a finalização tabular (dedup, agregados,
// normalização de tipos).
package nfe

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/devpython86/nf-control/internal/domain"
	"github.com/devpython86/nf-control/internal/domain/entity"
	"github.com/devpython86/nf-control/pkg/texto"
)

// NamespaceNFe namespace oficial do layout da NF-e.
const NamespaceNFe = "http://www.portalfiscal.inf.br/nfe"

// Extractor converte um documento NF-e em linhas de item (uma por <det>).
type Extractor struct{}

// NewExtractor cria o extrator.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract parseia os bytes de um XML de NF-e e devolve uma linha por <det>.
// Documento que não parseia devolve erro embrulhando domain.ErrDocumentoInvalido;
// documento válido sem itens devolve slice vazio, nunca erro.
func (e *Extractor) Extract(nome string, dados []byte) ([]*entity.InvoiceLine, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(dados); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrDocumentoInvalido, nome, err)
	}
	raiz := doc.Root()
	if raiz == nil {
		return nil, fmt.Errorf("%w: %s: documento sem raiz", domain.ErrDocumentoInvalido, nome)
	}

	// O XML pode vir como <nfeProc><NFe><infNFe>... ou direto <NFe><infNFe>...
	infNFe := buscaElemento(raiz, "infNFe")
	if infNFe == nil {
		return []*entity.InvoiceLine{}, nil
	}

	// Chave de acesso: atributo Id de <infNFe> ("NFe" + 44 dígitos). Ausente
	// vira string vazia em vez de falhar o documento inteiro.
	chave := strings.TrimPrefix(infNFe.SelectAttrValue("Id", ""), "NFe")

	cab := entity.InvoiceLine{
		ChaveNfe:       chave,
		NumeroNf:       textoDe(infNFe, "ide", "nNF"),
		Serie:          textoDe(infNFe, "ide", "serie"),
		NaturezaOp:     textoDe(infNFe, "ide", "natOp"),
		DataEmissao:    textoDe(infNFe, "ide", "dhEmi"),
		InfoAdicional:  textoDe(infNFe, "infAdic", "infCpl"),
		DataVencimento: textoDe(infNFe, "cobr", "dup", "dVenc"),

		Emitente:     extraiParticipante(buscaFilho(infNFe, "emit"), "enderEmit"),
		Destinatario: extraiParticipante(buscaFilho(infNFe, "dest"), "enderDest"),

		ValorTotalNfTexto: formataValorBR(textoDe(infNFe, "total", "ICMSTot", "vNF")),
		ValorFreteTexto:   formataValorBR(textoDe(infNFe, "total", "ICMSTot", "vFrete")),

		Fatura:             textoDe(infNFe, "cobr", "fat", "nFat"),
		Duplicata:          textoDe(infNFe, "cobr", "dup", "nDup"),
		ValorOriginalTexto: formataValorBR(textoDe(infNFe, "cobr", "fat", "vOrig")),
		ValorPagoTexto:     formataValorBR(textoDe(infNFe, "cobr", "fat", "vLiq")),
	}

	var linhas []*entity.InvoiceLine
	item := 1
	for _, det := range filhos(infNFe, "det") {
		linha := cab // cópia do cabeçalho desnormalizado
		linha.ItemNf = item
		linha.CodigoProduto = textoDe(det, "prod", "cProd")
		linha.NomeMaterial = texto.NormalizaDescricao(textoDe(det, "prod", "xProd"))
		linha.Unidade = textoDe(det, "prod", "uCom")
		linha.Quantidade = decimal2(textoDe(det, "prod", "qCom"))
		linha.ValorUnitario = decimal2(textoDe(det, "prod", "vUnCom"))
		linha.ValorTotalProduto = decimal2(textoDe(det, "prod", "vProd"))
		linha.Ncm = textoDe(det, "prod", "NCM")
		linha.Cfop = textoDe(det, "prod", "CFOP")
		linha.XPed = textoDe(det, "prod", "xPed")
		linha.NItemPed = textoDe(det, "prod", "nItemPed")
		linha.InfAdProd = textoDe(det, "infAdProd")
		linhas = append(linhas, &linha)
		item++
	}
	if linhas == nil {
		return []*entity.InvoiceLine{}, nil
	}
	return linhas, nil
}

// extraiParticipante lê emit/dest; elemento ausente devolve participante vazio.
func extraiParticipante(el *etree.Element, tagEndereco string) entity.Participante {
	if el == nil {
		return entity.Participante{}
	}
	return entity.Participante{
		Cnpj:              textoDe(el, "CNPJ"),
		Nome:              textoDe(el, "xNome"),
		InscricaoEstadual: textoDe(el, "IE"),
		Endereco: entity.Endereco{
			Logradouro:  textoDe(el, tagEndereco, "xLgr"),
			Numero:      textoDe(el, tagEndereco, "nro"),
			Complemento: textoDe(el, tagEndereco, "xCpl"),
			Bairro:      textoDe(el, tagEndereco, "xBairro"),
			Municipio:   textoDe(el, tagEndereco, "xMun"),
			UF:          textoDe(el, tagEndereco, "UF"),
			Cep:         textoDe(el, tagEndereco, "CEP"),
			Pais:        textoDe(el, tagEndereco, "cPais"),
		},
	}
}

// textoDe é o acessor seguro usado em todos os campos escalares: percorre o
// caminho de tags locais e devolve o texto do elemento final, ou "" se
// qualquer salto do caminho não existir.
func textoDe(el *etree.Element, caminho ...string) string {
	atual := el
	for _, tag := range caminho {
		if atual == nil {
			return ""
		}
		atual = buscaFilho(atual, tag)
	}
	if atual == nil {
		return ""
	}
	return strings.TrimSpace(atual.Text())
}

// buscaFilho devolve o primeiro filho direto com a tag local dada,
// ignorando prefixo de namespace (o layout usa namespace default, mas há
// emissores que prefixam os elementos).
func buscaFilho(el *etree.Element, tag string) *etree.Element {
	for _, filho := range el.ChildElements() {
		if filho.Tag == tag {
			return filho
		}
	}
	return nil
}

// filhos devolve todos os filhos diretos com a tag local dada, em ordem.
func filhos(el *etree.Element, tag string) []*etree.Element {
	var out []*etree.Element
	for _, filho := range el.ChildElements() {
		if filho.Tag == tag {
			out = append(out, filho)
		}
	}
	return out
}

// buscaElemento busca em profundidade o primeiro elemento com a tag local dada.
func buscaElemento(el *etree.Element, tag string) *etree.Element {
	if el.Tag == tag {
		return el
	}
	for _, filho := range el.ChildElements() {
		if achado := buscaElemento(filho, tag); achado != nil {
			return achado
		}
	}
	return nil
}

// formataValorBR normaliza valores em formato brasileiro: remove o separador
// de milhar ".", troca "," por "." e valida como número. Se o resultado não
// parseia, devolve a string original (a extração nunca falha por um campo).
func formataValorBR(s string) string {
	if s == "" {
		return ""
	}
	t := strings.ReplaceAll(s, ".", "")
	t = strings.ReplaceAll(t, ",", ".")
	if _, err := decimal.NewFromString(t); err != nil {
		return s
	}
	return t
}

// decimal2 parseia um decimal com ponto e arredonda para 2 casas;
// texto inválido ou vazio vira nulo.
func decimal2(s string) decimal.NullDecimal {
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d.Round(2), Valid: true}
}
