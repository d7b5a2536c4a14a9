package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/synthgen/internal/codegen"
	"github.com/abhisek/synthgen/internal/labels"
	"github.com/abhisek/synthgen/internal/llm"
	"github.com/abhisek/synthgen/internal/textcat"
)

var codeCmd = &cobra.Command{
	Use:   "code",
	Short: "Emit a distilabel script that reproduces a generation run",
	Long: "Code renders a standalone Python script using distilabel. The script " +
		"reads the API key from the environment when run; no LLM is called here.",
	Example: `  synthgen code --task "Classify reviews by sentiment" --labels positive,negative > pipeline.py`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := codeOptionsFromFlags(cmd)
		if err != nil {
			return err
		}

		src, err := codegen.Render(opts)
		if err != nil {
			return fmt.Errorf("render script: %w", err)
		}

		if path, _ := cmd.Flags().GetString("output"); path != "" {
			if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
				return fmt.Errorf("write script: %w", err)
			}
			return nil
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), src)
		return err
	},
}

func init() {
	addCodeFlags(codeCmd)
}

func addCodeFlags(cmd *cobra.Command) {
	defaults := codegen.DefaultOptions()
	cmd.Flags().String("task", "", "Classification task prompt (required)")
	cmd.Flags().String("labels", "", "Comma separated labels")
	cmd.Flags().Int("num-labels", defaults.NumLabels, "Labels per row; above 1 adds a labelling step")
	cmd.Flags().IntP("num-rows", "n", defaults.NumRows, "Number of rows the script generates")
	cmd.Flags().String("difficulty", string(defaults.Difficulty), "Difficulty: high school, college, PhD or mixed")
	cmd.Flags().String("clarity", string(defaults.Clarity), "Clarity: clear, understandable with some effort, ambiguous or mixed")
	cmd.Flags().Float64("temperature", defaults.Temperature, "Sampling temperature")
	cmd.Flags().String("name", "", "Pipeline name, slugified (default: textcat)")
	cmd.Flags().String("model", "", "Model ID (default: the configured inference model)")
	cmd.Flags().String("base-url", "", "Endpoint base URL (default: the configured inference endpoint)")
	cmd.Flags().StringP("output", "o", "", "Write the script to this file instead of stdout")
}

func codeOptionsFromFlags(cmd *cobra.Command) (codegen.Options, error) {
	opts := codegen.DefaultOptions()

	opts.SystemPrompt, _ = cmd.Flags().GetString("task")
	if opts.SystemPrompt == "" {
		return opts, fmt.Errorf("--task is required")
	}
	labelCSV, _ := cmd.Flags().GetString("labels")
	opts.Labels = labels.Split(labelCSV)
	opts.NumLabels, _ = cmd.Flags().GetInt("num-labels")
	opts.NumRows, _ = cmd.Flags().GetInt("num-rows")
	difficulty, _ := cmd.Flags().GetString("difficulty")
	opts.Difficulty = textcat.Difficulty(difficulty)
	clarity, _ := cmd.Flags().GetString("clarity")
	opts.Clarity = textcat.Clarity(clarity)
	opts.Temperature, _ = cmd.Flags().GetFloat64("temperature")
	opts.Name, _ = cmd.Flags().GetString("name")
	opts.Model, _ = cmd.Flags().GetString("model")
	opts.BaseURL, _ = cmd.Flags().GetString("base-url")

	// The script targets an OpenAI-compatible inference endpoint, so only
	// the inference settings carry over from the config.
	if appConfig != nil && appConfig.LLM.Provider == llm.ProviderInference {
		if opts.Model == "" {
			opts.Model = appConfig.LLM.Inference.Model
		}
		if opts.BaseURL == "" && appConfig.LLM.Inference.BaseURL != "" {
			opts.BaseURL = appConfig.LLM.Inference.BaseURL
		}
	}
	return opts, nil
}
