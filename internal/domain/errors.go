package domain

import "errors"

// Erros de domínio (sem dependências externas).
var (
	ErrNotFound          = errors.New("recurso não encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDocumentoInvalido = errors.New("documento XML malformado")
	ErrPlanilhaInvalida  = errors.New("planilha inválida")
)
