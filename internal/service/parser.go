package service

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/cloo-solutions/coach/internal/domain"
	"gopkg.in/yaml.v3"
)

// LenientParser decodes repaired model text into a knowledge base. It tries strict JSON on
// the whole text, then strict JSON on the outermost braces, then YAML on the outermost
// braces, which accepts the unquoted keys and single-quoted strings models often emit.
// Fields the text does not mention keep their defaults.
type LenientParser struct{}

// NewLenientParser returns the default parser.
func NewLenientParser() LenientParser {
	return LenientParser{}
}

// Parse implements Parser.
func (LenientParser) Parse(text string) (*domain.KnowledgeBase, error) {
	text = strings.TrimSpace(text)

	if kb, err := decodeJSON(text); err == nil {
		return kb, nil
	}

	span, ok := braceSpan(text)
	if !ok {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeMalformedModel, domain.ErrMalformedOutput.Message,
			errors.New("no object delimiters in model output"))
	}

	if kb, err := decodeJSON(span); err == nil {
		return kb, nil
	}

	kb, err := decodeYAML(span)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeMalformedModel, domain.ErrMalformedOutput.Message, err)
	}
	return kb, nil
}

func decodeJSON(text string) (*domain.KnowledgeBase, error) {
	kb := domain.DefaultKnowledgeBase()
	if err := json.Unmarshal([]byte(text), &kb); err != nil {
		return nil, err
	}
	return &kb, nil
}

var knowledgeBaseKeys = map[string]bool{"input": true, "summary": true, "response": true}

// decodeYAML only accepts a mapping that names at least one knowledge base field.
// Prose wrapped in braces reads as a mapping with a single unknown key.
func decodeYAML(text string) (*domain.KnowledgeBase, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, errors.New("model output is not a mapping")
	}

	mapping := doc.Content[0]
	known := false
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if knowledgeBaseKeys[mapping.Content[i].Value] {
			known = true
			break
		}
	}
	if !known {
		return nil, errors.New("model output has no knowledge base fields")
	}

	kb := domain.DefaultKnowledgeBase()
	if err := mapping.Decode(&kb); err != nil {
		return nil, err
	}
	return &kb, nil
}

// braceSpan returns text from the first "{" to the last "}".
func braceSpan(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
