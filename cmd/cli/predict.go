package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"boxoffice/internal/forecast"
	"boxoffice/internal/lexicon"
	"boxoffice/internal/model"
)

var (
	modelPath   string
	lexiconPath string
	showAll     bool
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Evaluate a film offline",
	Long: `Load the trained model and common-word list from disk, sweep all twelve
release months and print the best one.`,
	Args: cobra.NoArgs,
	RunE: runPredict,
}

func runPredict(cmd *cobra.Command, _ []string) error {
	m, err := model.Load(modelPath)
	if err != nil {
		return err
	}
	lex, err := lexicon.Load(context.Background(), lexiconPath, nil)
	if err != nil {
		return err
	}
	ev, err := forecast.NewEvaluator(m, lex)
	if err != nil {
		return err
	}

	res, err := ev.Evaluate(filmForm())
	if err != nil {
		return fmt.Errorf("evaluate (%s): %w", forecast.Kind(err), err)
	}
	printResult(cmd.OutOrStdout(), res, showAll)
	return nil
}

func printResult(w io.Writer, res forecast.Result, all bool) {
	if all {
		for _, p := range res.Predictions {
			marker := " "
			if p.Month == res.Month {
				marker = "*"
			}
			fmt.Fprintf(w, "%s %-10s %10.2f\n", marker, p.Month, forecast.RoundCents(p.Value))
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, res.Message)
}
