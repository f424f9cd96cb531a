// Package prompt builds the coaching prompt sent to the model.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloo-solutions/coach/internal/domain"
	"github.com/sashabaranov/go-openai/jsonschema"
)

// Template placeholders.
const (
	PlaceholderInput              = "{input}"
	PlaceholderFormatInstructions = "{format_instructions}"
	PlaceholderKnowledgeBase      = "{know_base}"
)

// CoachTemplate is the instruction template for a single coaching turn.
const CoachTemplate = "You are a helpful and knowledgeable sport coach. " +
	"You will help the user with their fitness goals and provide personalized advice based on their inputs. " +
	"The user just responded: '" + PlaceholderInput + "'. Please update the knowledge base. " +
	"You will also keep track of the user's progress and provide encouragement along the way. " +
	"Save conversation summary in 'summary' and an ideal response to the user in 'response'.\n" +
	PlaceholderFormatInstructions + "\n\n" +
	"OLD KNOWLEDGE BASE: " + PlaceholderKnowledgeBase + "\n\n" +
	"NEW MESSAGE: " + PlaceholderInput + "\n\n" +
	"NEW KNOWLEDGE BASE:"

const formatInstructionsPreamble = `The output should be formatted as a JSON instance that conforms to the JSON schema below.

As an example, for the schema {"properties": {"foo": {"description": "a list of strings", "type": "array", "items": {"type": "string"}}}, "required": ["foo"]}
the object {"foo": ["bar", "baz"]} is a well-formatted instance of the schema. The object {"properties": {"foo": ["bar", "baz"]}} is not well-formatted.

Here is the output schema:
` + "```\n%s\n```"

// Composer renders CoachTemplate with format instructions generated for the knowledge base.
type Composer struct {
	formatInstructions string
}

// NewComposer creates a Composer whose format instructions describe domain.KnowledgeBase.
func NewComposer() (*Composer, error) {
	instructions, err := FormatInstructions(domain.KnowledgeBase{})
	if err != nil {
		return nil, err
	}
	return &Composer{formatInstructions: instructions}, nil
}

// FormatInstructions describes the JSON shape of v for the model.
func FormatInstructions(v any) (string, error) {
	schema, err := jsonschema.GenerateSchemaForType(v)
	if err != nil {
		return "", fmt.Errorf("failed to generate output schema: %w", err)
	}

	data, err := json.Marshal(schema)
	if err != nil {
		return "", fmt.Errorf("failed to marshal output schema: %w", err)
	}

	return fmt.Sprintf(formatInstructionsPreamble, data), nil
}

// FormatInstructions returns the instructions embedded in every prompt.
func (c *Composer) FormatInstructions() string {
	return c.formatInstructions
}

// Compose builds the prompt for one turn from the serialized previous knowledge base and
// the new user message.
func (c *Composer) Compose(knowBase, input string) string {
	return Render(c.formatInstructions, knowBase, input)
}

// Render substitutes the three placeholders of CoachTemplate in a single pass, so
// placeholder text inside the substituted values is left as is.
func Render(formatInstructions, knowBase, input string) string {
	r := strings.NewReplacer(
		PlaceholderInput, input,
		PlaceholderFormatInstructions, formatInstructions,
		PlaceholderKnowledgeBase, knowBase,
	)
	return r.Replace(CoachTemplate)
}
