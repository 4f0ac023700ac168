// Package mongodb implementa os repositórios de persistência no MongoDB
// Atlas (coleções "xml" e "po" do banco warehouse).
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/devpython86/nf-control/pkg/config"
)

// Timeouts de conexão; o cluster fica atrás de rede corporativa instável,
// então a seleção de servidor falha rápido e o chamador decide repetir.
const (
	connectTimeout   = 5 * time.Second
	socketTimeout    = 10 * time.Second
	selectionTimeout = 5 * time.Second
)

// tamanhoLote gravações em lote são fatiadas para não estourar o limite de
// mensagem do servidor.
const tamanhoLote = 500

// NewDatabase conecta ao cluster, valida com ping e devolve o database da
// aplicação. O chamador é dono do Disconnect do client retornado.
func NewDatabase(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, *mongo.Database, error) {
	opts := options.Client().
		ApplyURI(cfg.ConnectionString()).
		SetConnectTimeout(connectTimeout).
		SetSocketTimeout(socketTimeout).
		SetServerSelectionTimeout(selectionTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("conectar ao MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("ping MongoDB: %w", err)
	}
	return client, client.Database(cfg.Database), nil
}
