package usecase

import (
	"context"
	"fmt"
	"io"

	"github.com/devpython86/nf-control/internal/application/dto"
	"github.com/devpython86/nf-control/internal/domain/entity"
	"github.com/devpython86/nf-control/internal/domain/repository"
	"github.com/devpython86/nf-control/internal/po"
)

// ArquivoPo uma planilha de follow-up enviada para importação.
type ArquivoPo struct {
	Nome    string
	Arquivo io.Reader
}

// POUseCase importa planilhas de follow-up de pedidos de compra e serve a
// listagem das linhas consolidadas.
type POUseCase struct {
	reader    LeitorPlanilhaPo
	processor *po.Processor
	repo      repository.PurchaseOrderRepository
}

// NewPOUseCase constrói o caso de uso.
func NewPOUseCase(reader LeitorPlanilhaPo, processor *po.Processor, repo repository.PurchaseOrderRepository) *POUseCase {
	return &POUseCase{reader: reader, processor: processor, repo: repo}
}

// Importar lê todas as planilhas, consolida e grava. Planilhas ilegíveis são
// registradas no relatório e puladas, sem abortar a importação.
func (uc *POUseCase) Importar(ctx context.Context, arquivos []ArquivoPo) (*dto.ImportacaoPoResponse, error) {
	resp := &dto.ImportacaoPoResponse{}
	var brutas []*entity.PurchaseOrderLine
	for _, a := range arquivos {
		linhas, err := uc.reader.Read(a.Arquivo)
		if err != nil {
			resp.ArquivosIgnorados++
			resp.Erros = append(resp.Erros, fmt.Sprintf("%s: %v", a.Nome, err))
			continue
		}
		resp.ArquivosProcessados++
		brutas = append(brutas, linhas...)
	}
	resp.LinhasLidas = len(brutas)

	finais := uc.processor.Process(brutas)
	resp.LinhasFinais = len(finais)

	if uc.repo != nil && len(finais) > 0 {
		gravadas, err := uc.repo.UpsertBatch(ctx, finais)
		if err != nil {
			return nil, err
		}
		resp.LinhasGravadas = gravadas
	}
	return resp, nil
}

// Listar lista as linhas de PO gravadas com paginação.
func (uc *POUseCase) Listar(ctx context.Context, page dto.PageRequest) (*dto.PoListResponse, error) {
	page.DefaultPage()
	items, total, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return &dto.PoListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}
