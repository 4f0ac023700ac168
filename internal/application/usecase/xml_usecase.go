package usecase

import (
	"bytes"
	"context"

	"github.com/devpython86/nf-control/internal/application/dto"
	"github.com/devpython86/nf-control/internal/domain/repository"
	"github.com/devpython86/nf-control/internal/nfe"
)

// XMLUseCase processa lotes de XMLs de NF-e, grava o resultado e serve as
// consultas sobre as linhas consolidadas.
type XMLUseCase struct {
	pipeline *nfe.Pipeline
	repo     repository.InvoiceLineRepository
	writer   GravadorPlanilhaNf
}

// NewXMLUseCase constrói o caso de uso. O repositório pode ser nulo quando a
// persistência não está configurada (modo somente exportação).
func NewXMLUseCase(pipeline *nfe.Pipeline, repo repository.InvoiceLineRepository, writer GravadorPlanilhaNf) *XMLUseCase {
	return &XMLUseCase{pipeline: pipeline, repo: repo, writer: writer}
}

// Processar roda o pipeline sobre o lote e grava as linhas finais.
func (uc *XMLUseCase) Processar(ctx context.Context, docs []nfe.Documento) (*dto.ProcessamentoResponse, error) {
	linhas, relatorio, err := uc.pipeline.Process(ctx, docs)
	if err != nil {
		return nil, err
	}

	gravadas := 0
	if uc.repo != nil && len(linhas) > 0 {
		gravadas, err = uc.repo.UpsertBatch(ctx, linhas)
		if err != nil {
			return nil, err
		}
	}

	return &dto.ProcessamentoResponse{
		LoteID:                relatorio.LoteID,
		DocumentosProcessados: relatorio.DocumentosProcessados,
		DocumentosIgnorados:   relatorio.DocumentosIgnorados,
		AvisosCoercao:         relatorio.AvisosCoercao,
		LinhasFinais:          relatorio.LinhasFinais,
		LinhasGravadas:        gravadas,
		Erros:                 relatorio.Erros,
	}, nil
}

// Listar lista linhas gravadas com filtros e paginação.
func (uc *XMLUseCase) Listar(ctx context.Context, in dto.InvoiceLineListRequest) (*dto.InvoiceLineListResponse, error) {
	in.DefaultPage()
	filtro := repository.InvoiceLineFilter{
		ChaveNfe: in.ChaveNfe,
		Po:       in.Po,
		Emitente: in.Emitente,
	}
	items, total, err := uc.repo.List(ctx, filtro, in.Limit, in.Offset)
	if err != nil {
		return nil, err
	}
	return &dto.InvoiceLineListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	}, nil
}

// Exportar gera a planilha consolidada com todas as linhas que casam com o
// filtro (limite zero lista tudo).
func (uc *XMLUseCase) Exportar(ctx context.Context, in dto.InvoiceLineListRequest) ([]byte, error) {
	filtro := repository.InvoiceLineFilter{
		ChaveNfe: in.ChaveNfe,
		Po:       in.Po,
		Emitente: in.Emitente,
	}
	linhas, _, err := uc.repo.List(ctx, filtro, 0, 0)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := uc.writer.Write(&buf, linhas); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
