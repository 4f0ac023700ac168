// Package datas normaliza datas dos documentos fiscais e das planilhas de
// follow-up para o formato brasileiro dd/mm/aaaa.
package datas

import "time"

// Layouts aceitos na entrada, na ordem de tentativa.
var layouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// Parse tenta interpretar s em um dos layouts aceitos.
func Parse(s string) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParaBR devolve s reformatada como dd/mm/aaaa. O segundo retorno indica se a
// data era interpretável; datas inválidas devolvem string vazia.
func ParaBR(s string) (string, bool) {
	if s == "" {
		return "", true
	}
	t, ok := Parse(s)
	if !ok {
		return "", false
	}
	return t.Format("02/01/2006"), true
}
