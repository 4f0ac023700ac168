package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/devpython86/nf-control/internal/application/dto"
	"github.com/devpython86/nf-control/internal/domain"
	"github.com/devpython86/nf-control/internal/domain/repository"
)

// ReconciliacaoUseCase confronta um pedido de compra com as notas fiscais
// recebidas contra ele.
type ReconciliacaoUseCase struct {
	invoices repository.InvoiceLineRepository
	pos      repository.PurchaseOrderRepository
}

// NewReconciliacaoUseCase constrói o caso de uso.
func NewReconciliacaoUseCase(invoices repository.InvoiceLineRepository, pos repository.PurchaseOrderRepository) *ReconciliacaoUseCase {
	return &ReconciliacaoUseCase{invoices: invoices, pos: pos}
}

// PorPo devolve as linhas de nota e de PO do documento informado, com o valor
// recebido e o saldo em aberto. Documento sem nota nem importação é ErrNotFound.
func (uc *ReconciliacaoUseCase) PorPo(ctx context.Context, documento string) (*dto.ReconciliacaoResponse, error) {
	if documento == "" {
		return nil, domain.ErrInvalidInput
	}

	linhasNf, err := uc.invoices.FindByPo(ctx, documento)
	if err != nil {
		return nil, err
	}
	linhasPo, err := uc.pos.FindByDocumento(ctx, documento)
	if err != nil {
		return nil, err
	}
	if len(linhasNf) == 0 && len(linhasPo) == 0 {
		return nil, domain.ErrNotFound
	}

	resp := &dto.ReconciliacaoResponse{
		Po:       documento,
		LinhasNf: linhasNf,
		LinhasPo: linhasPo,
	}

	// As linhas de nota já carregam os agregados por PO calculados na
	// finalização; basta ler a primeira.
	recebido := decimal.Zero
	if len(linhasNf) > 0 {
		resp.NotasVinculadas = linhasNf[0].QtdNfPo
		if linhasNf[0].ValorRecebidoPo.Valid {
			recebido = linhasNf[0].ValorRecebidoPo.Decimal
		}
	}
	resp.ValorRecebido = recebido.StringFixed(2)

	if len(linhasPo) > 0 && linhasPo[0].TotalPoLiquido.Valid {
		total := linhasPo[0].TotalPoLiquido.Decimal
		resp.TotalPoLiquido = total.StringFixed(2)
		resp.SaldoAberto = total.Sub(recebido).StringFixed(2)
	}
	return resp, nil
}
