// Command importer processa uma pasta de XMLs de NF-e, grava a planilha
// consolidada e, se o MongoDB estiver configurado, faz o upsert das linhas.
// Uso: importer -dir ./notas [-out master_store_xml.xlsx] [-mongo]
package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"

	"github.com/devpython86/nf-control/internal/infrastructure/excel"
	"github.com/devpython86/nf-control/internal/infrastructure/mongodb"
	"github.com/devpython86/nf-control/internal/nfe"
	"github.com/devpython86/nf-control/pkg/config"
	"github.com/devpython86/nf-control/pkg/logger"
)

func main() {
	dir := flag.String("dir", ".", "pasta com os arquivos XML de NF-e")
	out := flag.String("out", "master_store_xml.xlsx", "planilha consolidada de saída")
	gravaMongo := flag.Bool("mongo", false, "grava as linhas no MongoDB configurado")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("carregar configuração: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"})

	if err := run(cfg, log, *dir, *out, *gravaMongo); err != nil {
		log.Fatal().Err(err).Msg("importação falhou")
	}
}

func run(cfg *config.Config, log *logger.Logger, dir, out string, gravaMongo bool) error {
	entradas, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var docs []nfe.Documento
	for _, e := range entradas {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".xml") {
			continue
		}
		caminho := filepath.Join(dir, e.Name())
		dados, err := os.ReadFile(caminho)
		if err != nil {
			log.Warn().Str("arquivo", caminho).Err(err).Msg("arquivo ignorado")
			continue
		}
		docs = append(docs, nfe.Documento{Nome: e.Name(), Dados: dados})
	}
	log.Info().Str("dir", dir).Int("arquivos", len(docs)).Msg("XMLs encontrados")

	ctx := context.Background()
	pipeline := nfe.NewPipeline(nfe.Options{
		Prefixos: cfg.Pipeline.POPrefixes,
		Workers:  cfg.Pipeline.Workers,
	}, log)
	linhas, relatorio, err := pipeline.Process(ctx, docs)
	if err != nil {
		return err
	}
	for _, e := range relatorio.Erros {
		log.Warn().Str("documento", e.Documento).Str("erro", e.Mensagem).Msg("documento ignorado")
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := excel.NewInvoiceWriter(cfg.Pipeline.ExportColumns).Write(f, linhas); err != nil {
		return err
	}
	log.Info().Str("arquivo", out).Int("linhas", len(linhas)).Msg("planilha gravada")

	if gravaMongo {
		client, db, err := mongodb.NewDatabase(ctx, cfg.Mongo)
		if err != nil {
			return err
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		gravadas, err := mongodb.NewInvoiceLineRepository(db).UpsertBatch(ctx, linhas)
		if err != nil {
			return err
		}
		log.Info().Int("gravadas", gravadas).Msg("linhas gravadas no MongoDB")
	}
	return nil
}
