package admin

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/coach/internal/domain"
	"github.com/cloo-solutions/coach/internal/prompt"
)

// PromptCmd returns the prompt command.
func PromptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompt <question>",
		Short: "Print the prompt sent to the model",
		Long: `Composes the prompt for a question and a knowledge base exactly as the server
would and prints it with its token count. The model is not called.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runPrompt,
	}

	cmd.Flags().String("kb", "", "JSON file holding the previous knowledge base (default: a new conversation)")
	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

type promptOutput struct {
	Prompt       string `json:"prompt"`
	PromptTokens int    `json:"prompt_tokens"`
}

func runPrompt(cmd *cobra.Command, args []string) error {
	kbPath, _ := cmd.Flags().GetString("kb")
	outputFormat, _ := cmd.Flags().GetString("output")

	kb, err := loadKnowledgeBase(kbPath)
	if err != nil {
		return err
	}
	knowBase, err := kb.MarshalCompact()
	if err != nil {
		return fmt.Errorf("failed to encode knowledge base: %w", err)
	}

	composer, err := prompt.NewComposer()
	if err != nil {
		return fmt.Errorf("failed to build prompt composer: %w", err)
	}
	text := composer.Compose(knowBase, strings.Join(args, " "))

	tokens := -1
	if counter, err := prompt.NewTokenCounter(); err == nil {
		tokens = counter.Count(text)
	}

	out := cmd.OutOrStdout()
	if outputFormat == "json" {
		output, err := json.MarshalIndent(promptOutput{Prompt: text, PromptTokens: tokens}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(output))
		return nil
	}

	fmt.Fprintln(out, text)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Prompt tokens: %d\n", tokens)
	return nil
}

func loadKnowledgeBase(path string) (domain.KnowledgeBase, error) {
	if path == "" {
		return domain.DefaultKnowledgeBase(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.KnowledgeBase{}, fmt.Errorf("failed to read knowledge base: %w", err)
	}

	kb := domain.DefaultKnowledgeBase()
	if err := json.Unmarshal(data, &kb); err != nil {
		return domain.KnowledgeBase{}, fmt.Errorf("failed to parse knowledge base %s: %w", path, err)
	}
	return kb, nil
}
