package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/devpython86/nf-control/internal/domain/entity"
	"github.com/devpython86/nf-control/internal/domain/repository"
)

// poDoc documento da coleção "po".
type poDoc struct {
	Concatenada string `bson:"concatenada"` // documento + item

	Documento  string `bson:"documento"`
	Item       string `bson:"item"`
	Fornecedor string `bson:"fornecedor"`
	Material   string `bson:"material"`

	VlLiquido    *primitive.Decimal128 `bson:"vlLiquido,omitempty"`
	Qtd          *primitive.Decimal128 `bson:"qtd,omitempty"`
	VlCondicao   *primitive.Decimal128 `bson:"vlCondicao,omitempty"`
	VlUnitario   *primitive.Decimal128 `bson:"vlUnitario,omitempty"`
	VlComImposto *primitive.Decimal128 `bson:"vlComImposto,omitempty"`

	DtDocumento string `bson:"dtDocumento"`
	DtEntrega   string `bson:"dtEntrega"`

	TotalPoLiquido    *primitive.Decimal128 `bson:"totalPoLiquido,omitempty"`
	TotalPoComImposto *primitive.Decimal128 `bson:"totalPoComImposto,omitempty"`
	TotalItensPo      int                   `bson:"totalItensPo"`

	CreationDate time.Time `bson:"creation_date"`
}

// PurchaseOrderRepository repositório da coleção "po".
type PurchaseOrderRepository struct {
	col *mongo.Collection
}

// NewPurchaseOrderRepository cria o repositório.
func NewPurchaseOrderRepository(db *mongo.Database) *PurchaseOrderRepository {
	return &PurchaseOrderRepository{col: db.Collection("po")}
}

// UpsertBatch grava em lotes de 500 substituindo pela chave documento+item.
func (r *PurchaseOrderRepository) UpsertBatch(ctx context.Context, linhas []*entity.PurchaseOrderLine) (int, error) {
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
			doc := paraPoDoc(l, agora)
			modelos = append(modelos, mongo.NewReplaceOneModel().
				SetFilter(bson.M{"concatenada": doc.Concatenada}).
				SetReplacement(doc).
				SetUpsert(true))
		}
		res, err := r.col.BulkWrite(ctx, modelos, options.BulkWrite().SetOrdered(false))
		if err != nil {
			return gravadas, fmt.Errorf("gravar lote de POs: %w", err)
		}
		gravadas += int(res.UpsertedCount + res.ModifiedCount + res.MatchedCount)
	}
	return gravadas, nil
}

// List lista paginado em ordem de documento decrescente.
func (r *PurchaseOrderRepository) List(ctx context.Context, limit, offset int) ([]*entity.PurchaseOrderLine, int64, error) {
	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("contar POs: %w", err)
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "documento", Value: -1}, {Key: "item", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("listar POs: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []poDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decodificar POs: %w", err)
	}
	out := make([]*entity.PurchaseOrderLine, 0, len(docs))
	for i := range docs {
		out = append(out, paraPoEntidade(&docs[i]))
	}
	return out, total, nil
}

// FindByDocumento devolve as linhas de um documento de compra.
func (r *PurchaseOrderRepository) FindByDocumento(ctx context.Context, documento string) ([]*entity.PurchaseOrderLine, error) {
	cursor, err := r.col.Find(ctx, bson.M{"documento": documento})
	if err != nil {
		return nil, fmt.Errorf("buscar PO: %w", err)
	}
	defer cursor.Close(ctx)
	var docs []poDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decodificar POs: %w", err)
	}
	out := make([]*entity.PurchaseOrderLine, 0, len(docs))
	for i := range docs {
		out = append(out, paraPoEntidade(&docs[i]))
	}
	return out, nil
}

func paraPoDoc(l *entity.PurchaseOrderLine, agora time.Time) *poDoc {
	return &poDoc{
		Concatenada: l.ChaveDedup(),
		Documento:   l.Documento,
		Item:        l.Item,
		Fornecedor:  l.Fornecedor,
		Material:    l.Material,

		VlLiquido:    paraD128(l.ValorLiquido),
		Qtd:          paraD128(l.Quantidade),
		VlCondicao:   paraD128(l.ValorCondicao),
		VlUnitario:   paraD128(l.ValorUnitario),
		VlComImposto: paraD128(l.ValorComImposto),

		DtDocumento: l.DataDocumento,
		DtEntrega:   l.DataEntrega,

		TotalPoLiquido:    paraD128(l.TotalPoLiquido),
		TotalPoComImposto: paraD128(l.TotalPoComImposto),
		TotalItensPo:      l.TotalItensPo,

		CreationDate: agora,
	}
}

func paraPoEntidade(d *poDoc) *entity.PurchaseOrderLine {
	return &entity.PurchaseOrderLine{
		Documento:  d.Documento,
		Item:       d.Item,
		Fornecedor: d.Fornecedor,
		Material:   d.Material,

		ValorLiquido:    paraNullDecimal(d.VlLiquido),
		Quantidade:      paraNullDecimal(d.Qtd),
		ValorCondicao:   paraNullDecimal(d.VlCondicao),
		ValorUnitario:   paraNullDecimal(d.VlUnitario),
		ValorComImposto: paraNullDecimal(d.VlComImposto),

		DataDocumento: d.DtDocumento,
		DataEntrega:   d.DtEntrega,

		TotalPoLiquido:    paraNullDecimal(d.TotalPoLiquido),
		TotalPoComImposto: paraNullDecimal(d.TotalPoComImposto),
		TotalItensPo:      d.TotalItensPo,
	}
}

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepository)(nil)
