package nfe

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/devpython86/nf-control/internal/domain/entity"
	"github.com/devpython86/nf-control/pkg/logger"
)

// Documento um arquivo XML de NF-e a processar (nome apenas para relatório).
type Documento struct {
	Nome  string
	Dados []byte
}

// ErroDocumento falha de parsing de um documento individual do lote.
type ErroDocumento struct {
	Documento string `json:"documento"`
	Mensagem  string `json:"mensagem"`
}

// Relatorio resultado de um lote de processamento, para exibição ao usuário.
type Relatorio struct {
	LoteID                string          `json:"loteId"`
	DocumentosProcessados int             `json:"documentosProcessados"`
	DocumentosIgnorados   int             `json:"documentosIgnorados"`
	AvisosCoercao         int             `json:"avisosCoercao"`
	LinhasFinais          int             `json:"linhasFinais"`
	Erros                 []ErroDocumento `json:"erros,omitempty"`
}

// Options parâmetros do pipeline.
type Options struct {
	// Prefixos de numeração de pedido reconhecidos pelo resolvedor
	// (vazio usa DefaultPOPrefixes).
	Prefixos []string
	// Workers concorrentes na extração. A extração de cada documento é livre
	// de efeitos colaterais, então paraleliza com segurança; resolução e
	// finalização precisam do lote completo e rodam sequenciais.
	Workers int
}

// Pipeline encadeia extração -> resolução de pedido -> finalização para um
// lote de documentos em memória.
type Pipeline struct {
	extractor *Extractor
	resolver  *Resolver
	finalizer *Finalizer
	workers   int
	log       *logger.Logger
}

// NewPipeline monta o pipeline completo.
func NewPipeline(opts Options, log *logger.Logger) *Pipeline {
	if log == nil {
		log = logger.Nop()
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		extractor: NewExtractor(),
		resolver:  NewResolver(opts.Prefixos),
		finalizer: NewFinalizer(log),
		workers:   workers,
		log:       log,
	}
}

type resultadoDoc struct {
	linhas []*entity.InvoiceLine
	err    error
}

// Process extrai todos os documentos (em paralelo quando Workers > 1), com
// falhas isoladas por documento: um XML malformado é registrado no relatório
// e pulado, nunca aborta o lote. Os resultados são concatenados na ordem de
// entrada antes da resolução e finalização, mantendo o processamento
// determinístico.
func (p *Pipeline) Process(ctx context.Context, docs []Documento) ([]*entity.InvoiceLine, *Relatorio, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	resultados := make([]resultadoDoc, len(docs))
	indices := make(chan int)
	var wg sync.WaitGroup

	workers := p.workers
	if workers > len(docs) {
		workers = len(docs)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				linhas, err := p.extractor.Extract(docs[i].Nome, docs[i].Dados)
				resultados[i] = resultadoDoc{linhas: linhas, err: err}
			}
		}()
	}
	// Cancelamento: apenas para de submeter documentos; não há desfazer parcial.
	for i := range docs {
		if ctx.Err() != nil {
			break
		}
		indices <- i
	}
	close(indices)
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	relatorio := &Relatorio{LoteID: uuid.New().String()}
	var linhas []*entity.InvoiceLine
	for i, res := range resultados {
		if res.err != nil {
			relatorio.DocumentosIgnorados++
			relatorio.Erros = append(relatorio.Erros, ErroDocumento{
				Documento: docs[i].Nome,
				Mensagem:  res.err.Error(),
			})
			p.log.Warn().Str("documento", docs[i].Nome).Err(res.err).Msg("documento ignorado")
			continue
		}
		relatorio.DocumentosProcessados++
		linhas = append(linhas, res.linhas...)
	}

	p.resolver.Resolve(linhas)
	linhas, avisos := p.finalizer.Finalize(linhas)

	relatorio.AvisosCoercao = avisos
	relatorio.LinhasFinais = len(linhas)

	p.log.Info().
		Str("loteId", relatorio.LoteID).
		Int("processados", relatorio.DocumentosProcessados).
		Int("ignorados", relatorio.DocumentosIgnorados).
		Int("avisos", relatorio.AvisosCoercao).
		Int("linhas", relatorio.LinhasFinais).
		Msg("lote de NF-e processado")

	return linhas, relatorio, nil
}
