package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/synthgen/internal/labels"
	"github.com/abhisek/synthgen/internal/textcat"
	"github.com/abhisek/synthgen/internal/ui/components"
	"github.com/abhisek/synthgen/internal/ui/theme"
)

var promptCmd = &cobra.Command{
	Use:   "prompt <description>",
	Short: "Turn a dataset description into a classification task and labels",
	Example: `  synthgen prompt "A dataset of customer support emails sorted by urgency"
  synthgen prompt --json "Tweets about airlines by sentiment"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		description := strings.Join(args, " ")

		pool, closeStore, err := openPool(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		ctx := commandContext(cmd)
		gen, err := textcat.NewPromptGenerator(ctx, pool)
		if err != nil {
			return err
		}
		task, err := gen.Generate(ctx, description)
		if err != nil {
			return err
		}
		task.Labels = labels.Preprocess(task.Labels)

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(task)
		}

		fmt.Println(theme.Title.Render("Classification task"))
		fmt.Println(theme.Card.Render(theme.Body.Render(task.ClassificationTask)))
		fmt.Println(components.KeyValue("Labels", 6, components.LabelChips(task.Labels)))
		return nil
	},
}

func init() {
	promptCmd.Flags().Bool("json", false, "Print the task as JSON")
}
