// Copyright 2025 NovaPay
// SPDX-License-Identifier: Apache-2.0

// Package language classifies query text into the closed pt/en set shared by
// every responder pipeline.
package language

import (
	"strings"

	"novapay/assistant/conversation"
)

// Portuguese-only diacritics. One hit is a strong signal on its own.
const ptDiacritics = "ãõçáéíóúâêôà"

// Common Portuguese function words unlikely to appear in English queries.
var ptStopwords = []string{
	"qual", "quais", "meu", "minha", "meus", "minhas", "você", "voce",
	"não", "nao", "sim", "como", "quanto", "quero", "preciso", "saldo",
	"conta", "extrato", "transferência", "pagamento", "últimas", "ultimas",
	"por favor", "obrigado", "obrigada", "dinheiro", "cartão", "fazer",
	"mostrar", "ver", "onde", "quando", "para", "uma", "essa", "isso",
}

// Detect classifies text as Portuguese or English. Ambiguous or empty input
// defaults to English, matching the router's fallback behavior.
func Detect(text string) conversation.Language {
	if strings.TrimSpace(text) == "" {
		return conversation.LanguageEN
	}

	lower := strings.ToLower(text)

	if strings.ContainsAny(lower, ptDiacritics) {
		return conversation.LanguagePT
	}

	hits := 0
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !isWordRune(r)
	})
	wordSet := make(map[string]struct{}, len(words))
	for _, w := range words {
		wordSet[w] = struct{}{}
	}
	for _, sw := range ptStopwords {
		if strings.Contains(sw, " ") {
			if strings.Contains(lower, sw) {
				hits++
			}
			continue
		}
		if _, ok := wordSet[sw]; ok {
			hits++
		}
	}

	if hits >= 2 {
		return conversation.LanguagePT
	}
	return conversation.LanguageEN
}

func isWordRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r > 127
}
