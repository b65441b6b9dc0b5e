package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/coursehub/exam-service/internal/models"
	"github.com/coursehub/exam-service/internal/services"
)

var errLintWarnings = errors.New("question block has warnings")

func lintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint FILE",
		Short: "Parse a question-definition block and report skipped entries",
		Long:  "Parse a question-definition block (use - for stdin) and print the questions it yields together with every entry the parser skipped.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := viperForCmd(cmd)
			text, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			return runLint(cmd.OutOrStdout(), text, v.GetBool("strict"))
		},
	}
	cmd.Flags().Bool("strict", false, "Exit with an error when any entry was skipped")
	return cmd
}

func readInput(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func runLint(w io.Writer, text string, strict bool) error {
	questions, warnings := services.NewQuestionParser().ParseQuestions(text, models.QuestionOwner{})

	color.New(color.FgCyan, color.Bold).Fprintf(w, "%d question(s) parsed\n", len(questions))
	if len(questions) > 0 {
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"#", "Kind", "Prompt", "Options", "Answer"})
		table.SetAutoWrapText(false)
		for _, q := range questions {
			kind := "multiple choice"
			if q.IsOpenEnded() {
				kind = "open ended"
			}
			table.Append([]string{
				strconv.Itoa(q.Position + 1),
				kind,
				q.Prompt,
				strings.Join(q.Options, " | "),
				q.CorrectAnswer,
			})
		}
		table.Render()
	}

	if len(warnings) == 0 {
		color.New(color.FgGreen).Fprintln(w, "No skipped entries")
		return nil
	}

	color.New(color.FgYellow).Fprintf(w, "%d entr(ies) skipped\n", len(warnings))
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Entry", "Reason", "Text"})
	table.SetAutoWrapText(false)
	for _, warn := range warnings {
		table.Append([]string{strconv.Itoa(warn.Entry), warn.Reason, warn.Text})
	}
	table.Render()

	if strict {
		return errLintWarnings
	}
	return nil
}
