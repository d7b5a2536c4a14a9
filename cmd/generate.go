package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/abhisek/synthgen/internal/labels"
	"github.com/abhisek/synthgen/internal/llm"
	"github.com/abhisek/synthgen/internal/textcat"
	"github.com/abhisek/synthgen/internal/ui/components"
	"github.com/abhisek/synthgen/internal/ui/theme"
)

const progressWidth = 30

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic text classification dataset",
	Long: "Generate resolves a classification task (from --task, or from --description " +
		"through the prompt generator), writes --num-rows unique examples and, when " +
		"--num-labels is above 1, labels each one. Rows are written as JSON lines.",
	Example: `  synthgen generate -d "IMDB movie reviews by sentiment" -n 20
  synthgen generate --task "Classify news headlines by topic" --labels sports,politics,tech --num-labels 2`,
	RunE: runGenerate,
}

func init() {
	addGenerateFlags(generateCmd)
}

func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("description", "d", "", "Dataset description used to derive the task and labels")
	cmd.Flags().String("task", "", "Classification task prompt (skips the prompt generator)")
	cmd.Flags().String("labels", "", "Comma separated labels (override inferred labels)")
	cmd.Flags().Int("num-labels", textcat.DefaultNumLabels, "Labels per row; above 1 enables the labeller")
	cmd.Flags().IntP("num-rows", "n", textcat.DefaultNumRows, "Number of rows to generate")
	cmd.Flags().String("difficulty", textcat.Mixed, "Difficulty: high school, college, PhD or mixed")
	cmd.Flags().String("clarity", textcat.Mixed, "Clarity: clear, understandable with some effort, ambiguous or mixed")
	cmd.Flags().Float64("temperature", textcat.DefaultTemperature, "Sampling temperature for example generation")
	cmd.Flags().Bool("sample", false, "Sample mode: short generations for a quick preview")
	cmd.Flags().StringP("output", "o", "", "Write rows to this file instead of stdout")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	opts, err := runOptionsFromFlags(cmd)
	if err != nil {
		return err
	}

	pool, closeStore, err := openPool(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	runID := uuid.NewString()
	ctx := llm.WithRunID(commandContext(cmd), runID)

	interactive := term.IsTerminal(os.Stderr.Fd())
	if interactive {
		opts.Progress = func(p textcat.Progress) {
			bar := components.NewProgressBar(stageLabel(p.Stage), p.Done, p.Total, progressWidth)
			fmt.Fprint(os.Stderr, "\r"+bar.View())
			if p.Done == p.Total {
				fmt.Fprintln(os.Stderr)
			}
		}
	}

	log.Info().Str("run_id", runID).Int("rows", opts.NumRows).Int("num_labels", opts.NumLabels).Msg("generating dataset")

	ds, err := textcat.Run(ctx, pool, opts)
	if err != nil {
		if llm.IsRateLimited(err) && len(appConfig.LLM.Keys()) < 2 {
			log.Warn().Msg("rate limited; set HF_TOKEN_1..9 or SYNTHGEN_API_KEYS to rotate across several keys")
		}
		return fmt.Errorf("generate dataset: %w", err)
	}

	output, _ := cmd.Flags().GetString("output")
	if err := writeDataset(output, ds.Rows); err != nil {
		return err
	}

	if interactive {
		fmt.Fprintln(os.Stderr, theme.OK.Render(fmt.Sprintf("Generated %d rows", len(ds.Rows))))
		fmt.Fprintln(os.Stderr, components.KeyValue("Run", 6, runID))
		fmt.Fprintln(os.Stderr, components.KeyValue("Labels", 6, components.LabelChips(ds.Labels)))
		if !appConfig.NoEvents {
			fmt.Fprintln(os.Stderr, theme.Hint.Render("Inspect requests with: synthgen llm list --run "+runID))
		}
	}
	return nil
}

func runOptionsFromFlags(cmd *cobra.Command) (textcat.RunOptions, error) {
	description, _ := cmd.Flags().GetString("description")
	task, _ := cmd.Flags().GetString("task")
	labelCSV, _ := cmd.Flags().GetString("labels")
	numLabels, _ := cmd.Flags().GetInt("num-labels")
	numRows, _ := cmd.Flags().GetInt("num-rows")
	difficulty, _ := cmd.Flags().GetString("difficulty")
	clarity, _ := cmd.Flags().GetString("clarity")
	temperature, _ := cmd.Flags().GetFloat64("temperature")
	sample, _ := cmd.Flags().GetBool("sample")

	if description == "" && task == "" {
		return textcat.RunOptions{}, fmt.Errorf("either --description or --task is required")
	}
	if numLabels < 1 {
		return textcat.RunOptions{}, fmt.Errorf("--num-labels must be at least 1")
	}
	if numRows < 1 {
		return textcat.RunOptions{}, fmt.Errorf("--num-rows must be at least 1")
	}

	return textcat.RunOptions{
		Description: description,
		Task:        task,
		Labels:      labels.Split(labelCSV),
		NumLabels:   numLabels,
		NumRows:     numRows,
		Difficulty:  textcat.Difficulty(difficulty),
		Clarity:     textcat.Clarity(clarity),
		Temperature: &temperature,
		IsSample:    sample,
	}, nil
}

// writeDataset writes rows to path, or to stdout when path is empty. The
// file is only created once there is something to write.
func writeDataset(path string, rows []textcat.Row) (err error) {
	if path == "" {
		return writeRows(os.Stdout, rows)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
	}()
	return writeRows(f, rows)
}

func writeRows(w io.Writer, rows []textcat.Row) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	return nil
}

func stageLabel(stage string) string {
	switch stage {
	case textcat.PurposeData:
		return "Generating"
	case textcat.PurposeLabel:
		return "Labelling"
	}
	return stage
}
