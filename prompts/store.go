// Copyright 2025 NovaPay
// SPDX-License-Identifier: Apache-2.0

// Package prompts loads system-instruction templates from disk. A missing
// template resolves to an empty string, never an error; callers must tolerate
// an empty system instruction.
package prompts

import (
	"os"
	"path/filepath"

	"novapay/assistant/conversation"
	"novapay/assistant/shared/logger"
)

// Store resolves templates under a base directory as <name>_<lang>.txt.
type Store struct {
	dir string
	log *logger.Logger
}

// NewStore creates a template store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir, log: logger.New("prompts")}
}

// Load returns the template body for name in lang. A missing Portuguese
// template falls back to the English file; "" means neither exists or the
// file could not be read.
func (s *Store) Load(name string, lang conversation.Language) string {
	if lang != conversation.LanguagePT {
		lang = conversation.LanguageEN
	}

	body := s.read(name, lang)
	if body == "" && lang == conversation.LanguagePT {
		body = s.read(name, conversation.LanguageEN)
	}
	return body
}

func (s *Store) read(name string, lang conversation.Language) string {
	path := filepath.Join(s.dir, string(name)+"_"+string(lang)+".txt")

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("", "", "failed to read prompt template", map[string]interface{}{
				"path": path, "error": err.Error(),
			})
		}
		return ""
	}
	return string(data)
}
