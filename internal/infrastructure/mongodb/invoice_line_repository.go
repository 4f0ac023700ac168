package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/devpython86/nf-control/internal/domain/entity"
	"github.com/devpython86/nf-control/internal/domain/repository"
)

// linhaDoc documento da coleção "xml"; nomes de campo seguem as colunas da
// tabela final (nNf, dtEmi, itemNf, ...), que são o contrato com os
// consumidores de exportação e relatórios.
type linhaDoc struct {
	Concat string `bson:"concat"` // chave de dedup nNf|itemNf|descrição

	ChNfe    string `bson:"chNfe"`
	NNf      string `bson:"nNf"`
	Serie    string `bson:"serie"`
	NatOp    string `bson:"natOp"`
	DtEmi    string `bson:"dtEmi"`
	InfoAdic string `bson:"infoAdic"`
	DVenc    string `bson:"dVenc"`

	EmitNome   string `bson:"emitNome"`
	EmitCnpj   string `bson:"emitCnpj"`
	EmitIe     string `bson:"emitIe"`
	EmitLogr   string `bson:"emitLogr"`
	EmitNr     string `bson:"emitNr"`
	EmitCompl  string `bson:"emitCompl"`
	EmitBairro string `bson:"emitBairro"`
	EmitMunic  string `bson:"emitMunic"`
	EmitUf     string `bson:"emitUf"`
	EmitCep    string `bson:"emitCep"`
	EmitPais   string `bson:"emitPais"`

	DestNome   string `bson:"destNome"`
	DestCnpj   string `bson:"destCnpj"`
	DestIe     string `bson:"destIe"`
	DestLogr   string `bson:"destLogr"`
	DestNr     string `bson:"destNr"`
	DestCompl  string `bson:"destCompl"`
	DestBairro string `bson:"destBairro"`
	DestMunic  string `bson:"destMunic"`
	DestUf     string `bson:"destUf"`
	DestCep    string `bson:"destCep"`
	DestPais   string `bson:"destPais"`

	ItemNf       int                   `bson:"itemNf"`
	CodProduto   string                `bson:"codProduto"`
	NomeMaterial string                `bson:"nomeMaterial"`
	Und          string                `bson:"und"`
	Qtd          *primitive.Decimal128 `bson:"qtd,omitempty"`
	VlUnProd     *primitive.Decimal128 `bson:"vlUnProd,omitempty"`
	VlTotProd    *primitive.Decimal128 `bson:"vlTotProd,omitempty"`
	Ncm          string                `bson:"ncm"`
	Cfop         string                `bson:"cfop"`
	XPed         string                `bson:"xPed"`
	NItemPed     string                `bson:"nItemPed"`
	InfAdProd    string                `bson:"infAdProd"`

	VlTotalNf *primitive.Decimal128 `bson:"vlTotalNf,omitempty"`
	VlFrete   *primitive.Decimal128 `bson:"vlFrete,omitempty"`

	Fatura     string                `bson:"fatura"`
	Duplicata  string                `bson:"duplicata"`
	VlOriginal *primitive.Decimal128 `bson:"vlOriginal,omitempty"`
	VlPago     *primitive.Decimal128 `bson:"vlPago,omitempty"`

	Po      string                `bson:"po"`
	VlNf    *primitive.Decimal128 `bson:"vlNf,omitempty"`
	VlRecPo *primitive.Decimal128 `bson:"vlRecPo,omitempty"`
	QtdNfPo int                   `bson:"qtdNfPo"`

	CreationDate time.Time `bson:"creation_date"`
}

// InvoiceLineRepository repositório da coleção "xml".
type InvoiceLineRepository struct {
	col *mongo.Collection
}

// NewInvoiceLineRepository cria o repositório.
func NewInvoiceLineRepository(db *mongo.Database) *InvoiceLineRepository {
	return &InvoiceLineRepository{col: db.Collection("xml")}
}

// UpsertBatch grava as linhas em lotes de 500, substituindo o documento com a
// mesma chave de deduplicação (reupload da mesma nota atualiza em vez de duplicar).
func (r *InvoiceLineRepository) UpsertBatch(ctx context.Context, linhas []*entity.InvoiceLine) (int, error) {
	if len(linhas) == 0 {
		return 0, nil
	}
	agora := time.Now().UTC()
	gravadas := 0
	for inicio := 0; inicio < len(linhas); inicio += tamanhoLote {
		fim := inicio + tamanhoLote
		if fim > len(linhas) {
			fim = len(linhas)
		}
		modelos := make([]mongo.WriteModel, 0, fim-inicio)
		for _, l := range linhas[inicio:fim] {
			doc := paraDocumento(l, agora)
			modelos = append(modelos, mongo.NewReplaceOneModel().
				SetFilter(bson.M{"concat": doc.Concat}).
				SetReplacement(doc).
				SetUpsert(true))
		}
		res, err := r.col.BulkWrite(ctx, modelos, options.BulkWrite().SetOrdered(false))
		if err != nil {
			return gravadas, fmt.Errorf("gravar lote de linhas: %w", err)
		}
		gravadas += int(res.UpsertedCount + res.ModifiedCount + res.MatchedCount)
	}
	return gravadas, nil
}

// List lista paginado com filtros opcionais, em ordem de emissão decrescente.
func (r *InvoiceLineRepository) List(ctx context.Context, filtro repository.InvoiceLineFilter, limit, offset int) ([]*entity.InvoiceLine, int64, error) {
	query := bson.M{}
	if filtro.ChaveNfe != "" {
		query["chNfe"] = filtro.ChaveNfe
	}
	if filtro.Po != "" {
		query["po"] = filtro.Po
	}
	if filtro.Emitente != "" {
		query["emitNome"] = bson.M{"$regex": filtro.Emitente, "$options": "i"}
	}

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("contar linhas: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "dtEmi", Value: -1}, {Key: "nNf", Value: 1}, {Key: "itemNf", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("listar linhas: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []linhaDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decodificar linhas: %w", err)
	}
	out := make([]*entity.InvoiceLine, 0, len(docs))
	for i := range docs {
		out = append(out, paraEntidade(&docs[i]))
	}
	return out, total, nil
}

// FindByPo devolve todas as linhas vinculadas ao pedido, para reconciliação.
func (r *InvoiceLineRepository) FindByPo(ctx context.Context, po string) ([]*entity.InvoiceLine, error) {
	cursor, err := r.col.Find(ctx, bson.M{"po": po})
	if err != nil {
		return nil, fmt.Errorf("buscar linhas por po: %w", err)
	}
	defer cursor.Close(ctx)
	var docs []linhaDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decodificar linhas: %w", err)
	}
	out := make([]*entity.InvoiceLine, 0, len(docs))
	for i := range docs {
		out = append(out, paraEntidade(&docs[i]))
	}
	return out, nil
}

func paraDocumento(l *entity.InvoiceLine, agora time.Time) *linhaDoc {
	return &linhaDoc{
		Concat: l.ChaveDedup(),

		ChNfe:    l.ChaveNfe,
		NNf:      l.NumeroNf,
		Serie:    l.Serie,
		NatOp:    l.NaturezaOp,
		DtEmi:    l.DataEmissao,
		InfoAdic: l.InfoAdicional,
		DVenc:    l.DataVencimento,

		EmitNome:   l.Emitente.Nome,
		EmitCnpj:   l.Emitente.Cnpj,
		EmitIe:     l.Emitente.InscricaoEstadual,
		EmitLogr:   l.Emitente.Endereco.Logradouro,
		EmitNr:     l.Emitente.Endereco.Numero,
		EmitCompl:  l.Emitente.Endereco.Complemento,
		EmitBairro: l.Emitente.Endereco.Bairro,
		EmitMunic:  l.Emitente.Endereco.Municipio,
		EmitUf:     l.Emitente.Endereco.UF,
		EmitCep:    l.Emitente.Endereco.Cep,
		EmitPais:   l.Emitente.Endereco.Pais,

		DestNome:   l.Destinatario.Nome,
		DestCnpj:   l.Destinatario.Cnpj,
		DestIe:     l.Destinatario.InscricaoEstadual,
		DestLogr:   l.Destinatario.Endereco.Logradouro,
		DestNr:     l.Destinatario.Endereco.Numero,
		DestCompl:  l.Destinatario.Endereco.Complemento,
		DestBairro: l.Destinatario.Endereco.Bairro,
		DestMunic:  l.Destinatario.Endereco.Municipio,
		DestUf:     l.Destinatario.Endereco.UF,
		DestCep:    l.Destinatario.Endereco.Cep,
		DestPais:   l.Destinatario.Endereco.Pais,

		ItemNf:       l.ItemNf,
		CodProduto:   l.CodigoProduto,
		NomeMaterial: l.NomeMaterial,
		Und:          l.Unidade,
		Qtd:          paraD128(l.Quantidade),
		VlUnProd:     paraD128(l.ValorUnitario),
		VlTotProd:    paraD128(l.ValorTotalProduto),
		Ncm:          l.Ncm,
		Cfop:         l.Cfop,
		XPed:         l.XPed,
		NItemPed:     l.NItemPed,
		InfAdProd:    l.InfAdProd,

		VlTotalNf: paraD128(l.ValorTotalNf),
		VlFrete:   paraD128(l.ValorFrete),

		Fatura:     l.Fatura,
		Duplicata:  l.Duplicata,
		VlOriginal: paraD128(l.ValorOriginal),
		VlPago:     paraD128(l.ValorPago),

		Po:      l.Po,
		VlNf:    paraD128(l.ValorNfCalculado),
		VlRecPo: paraD128(l.ValorRecebidoPo),
		QtdNfPo: l.QtdNfPo,

		CreationDate: agora,
	}
}

func paraEntidade(d *linhaDoc) *entity.InvoiceLine {
	return &entity.InvoiceLine{
		ChaveNfe:       d.ChNfe,
		NumeroNf:       d.NNf,
		Serie:          d.Serie,
		NaturezaOp:     d.NatOp,
		DataEmissao:    d.DtEmi,
		InfoAdicional:  d.InfoAdic,
		DataVencimento: d.DVenc,

		Emitente: entity.Participante{
			Cnpj:              d.EmitCnpj,
			Nome:              d.EmitNome,
			InscricaoEstadual: d.EmitIe,
			Endereco: entity.Endereco{
				Logradouro:  d.EmitLogr,
				Numero:      d.EmitNr,
				Complemento: d.EmitCompl,
				Bairro:      d.EmitBairro,
				Municipio:   d.EmitMunic,
				UF:          d.EmitUf,
				Cep:         d.EmitCep,
				Pais:        d.EmitPais,
			},
		},
		Destinatario: entity.Participante{
			Cnpj:              d.DestCnpj,
			Nome:              d.DestNome,
			InscricaoEstadual: d.DestIe,
			Endereco: entity.Endereco{
				Logradouro:  d.DestLogr,
				Numero:      d.DestNr,
				Complemento: d.DestCompl,
				Bairro:      d.DestBairro,
				Municipio:   d.DestMunic,
				UF:          d.DestUf,
				Cep:         d.DestCep,
				Pais:        d.DestPais,
			},
		},

		ItemNf:            d.ItemNf,
		CodigoProduto:     d.CodProduto,
		NomeMaterial:      d.NomeMaterial,
		Unidade:           d.Und,
		Quantidade:        paraNullDecimal(d.Qtd),
		ValorUnitario:     paraNullDecimal(d.VlUnProd),
		ValorTotalProduto: paraNullDecimal(d.VlTotProd),
		Ncm:               d.Ncm,
		Cfop:              d.Cfop,
		XPed:              d.XPed,
		NItemPed:          d.NItemPed,
		InfAdProd:         d.InfAdProd,

		ValorTotalNf: paraNullDecimal(d.VlTotalNf),
		ValorFrete:   paraNullDecimal(d.VlFrete),

		Fatura:        d.Fatura,
		Duplicata:     d.Duplicata,
		ValorOriginal: paraNullDecimal(d.VlOriginal),
		ValorPago:     paraNullDecimal(d.VlPago),

		Po:               d.Po,
		ValorNfCalculado: paraNullDecimal(d.VlNf),
		ValorRecebidoPo:  paraNullDecimal(d.VlRecPo),
		QtdNfPo:          d.QtdNfPo,
	}
}

// paraD128 converte decimal -> Decimal128 do BSON; nulo vira nil (campo omitido).
func paraD128(nd decimal.NullDecimal) *primitive.Decimal128 {
	if !nd.Valid {
		return nil
	}
	d128, err := primitive.ParseDecimal128(nd.Decimal.String())
	if err != nil {
		return nil
	}
	return &d128
}

func paraNullDecimal(d128 *primitive.Decimal128) decimal.NullDecimal {
	if d128 == nil {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(d128.String())
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

var _ repository.InvoiceLineRepository = (*InvoiceLineRepository)(nil)
