package entity

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Endereco endereço postal de emitente ou destinatário da NF-e.
type Endereco struct {
	Logradouro  string `json:"logr"`
	Numero      string `json:"nr"`
	Complemento string `json:"compl"`
	Bairro      string `json:"bairro"`
	Municipio   string `json:"munic"`
	UF          string `json:"uf"`
	Cep         string `json:"cep"`
	Pais        string `json:"pais"`
}

// Participante emitente ou destinatário da nota (emit/dest no XML).
type Participante struct {
	Cnpj              string   `json:"cnpj"` // 14 dígitos com zeros à esquerda após normalização
	Nome              string   `json:"nome"`
	InscricaoEstadual string   `json:"ie"`
	Endereco          Endereco `json:"endereco"`
}

// InvoiceLine é uma linha de item de NF-e: um registro por elemento <det>,
// com os campos de cabeçalho, emitente, destinatário e cobrança
// desnormalizados em todas as linhas da mesma nota.
//
// Os campos *Texto carregam o valor bruto normalizado na extração (formato
// brasileiro convertido em dígitos); os campos decimais correspondentes são
// preenchidos pela etapa de finalização. Texto que não parseia permanece nos
// campos *Texto e o decimal fica nulo.
type InvoiceLine struct {
	// Cabeçalho (idêntico em todas as linhas da mesma chave)
	ChaveNfe       string `json:"chNfe"` // 44 dígitos; atributo Id de <infNFe>
	NumeroNf       string `json:"nNf"`
	Serie          string `json:"serie"`
	NaturezaOp     string `json:"natOp"`
	DataEmissao    string `json:"dtEmi"` // dhEmi bruto (RFC3339)
	InfoAdicional  string `json:"infoAdic"`
	DataVencimento string `json:"dVenc"` // dd/mm/aaaa após finalização; vazio se inválida

	Emitente     Participante `json:"emit"`
	Destinatario Participante `json:"dest"`

	// Item (<det>)
	ItemNf            int                 `json:"itemNf"` // posição 1-based na nota
	CodigoProduto     string              `json:"codProduto"`
	NomeMaterial      string              `json:"nomeMaterial"`
	Unidade           string              `json:"und"`
	Quantidade        decimal.NullDecimal `json:"qtd"`
	ValorUnitario     decimal.NullDecimal `json:"vlUnProd"`
	ValorTotalProduto decimal.NullDecimal `json:"vlTotProd"`
	Ncm               string              `json:"ncm"`
	Cfop              string              `json:"cfop"`
	XPed              string              `json:"xPed"`
	NItemPed          string              `json:"nItemPed"`
	InfAdProd         string              `json:"infAdProd"`

	// Totais da nota (total/ICMSTot, repetidos por linha)
	ValorTotalNfTexto string              `json:"-"`
	ValorFreteTexto   string              `json:"-"`
	ValorTotalNf      decimal.NullDecimal `json:"vlTotalNf"`
	ValorFrete        decimal.NullDecimal `json:"vlFrete"`

	// Cobrança (cobr/fat/dup; vazios quando a seção não existe)
	Fatura             string              `json:"fatura"`
	Duplicata          string              `json:"duplicata"`
	ValorOriginalTexto string              `json:"-"`
	ValorPagoTexto     string              `json:"-"`
	ValorOriginal      decimal.NullDecimal `json:"vlOriginal"`
	ValorPago          decimal.NullDecimal `json:"vlPago"`

	// Referência de pedido de compra
	PedidoTexto string `json:"-"`  // concat bruto: infoAdic + xPed + nItemPed + infAdProd
	Po          string `json:"po"` // chave resolvida; vazia quando nenhuma linha da nota tem pista

	// Agregados (preenchidos pela finalização)
	ValorNfCalculado decimal.NullDecimal `json:"vlNf"`     // soma de vlTotProd por chNfe
	ValorRecebidoPo  decimal.NullDecimal `json:"vlRecPo"`  // soma de vlTotalNf por po (notas distintas)
	QtdNfPo          int                 `json:"qtdNfPo"`  // notas distintas vinculadas ao po
}

// ChaveDedup chave de deduplicação de linha: nNf + itemNf + descrição.
// Remove linhas reextraídas de uploads duplicados da mesma nota.
func (l *InvoiceLine) ChaveDedup() string {
	return l.NumeroNf + "|" + strconv.Itoa(l.ItemNf) + "|" + l.NomeMaterial
}
