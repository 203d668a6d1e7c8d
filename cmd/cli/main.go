package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"boxoffice/internal/auth"
	"boxoffice/internal/forecast"
)

const defaultBaseURL = "http://localhost:8080"

// film flags shared by predict and request
var (
	filmRuntime string
	synopsis    string
	genres      []string
)

var rootCmd = &cobra.Command{
	Use:   "boxoffice",
	Short: "Forecast box-office revenue and the best release month for a film",
	Long: `boxoffice evaluates a film's runtime, genres and synopsis against a
trained revenue model and reports the release month with the highest
predicted gross.

Available commands:
  predict        - Evaluate locally with a model and lexicon file
  request        - Submit the film to a running API server
  genres         - List the genre keys the model understands
  hash-password  - Produce a bcrypt hash for auth.admin_password_hash`,
	SilenceUsage: true,
}

var genresCmd = &cobra.Command{
	Use:   "genres",
	Short: "List accepted genre keys",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		for _, g := range forecast.Genres() {
			fmt.Fprintln(cmd.OutOrStdout(), g)
		}
	},
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Hash an operator password with bcrypt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := auth.HashPassword(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func addFilmFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&filmRuntime, "runtime", "", "runtime in minutes")
	cmd.Flags().StringVar(&synopsis, "synopsis", "", "synopsis text (use + between words)")
	cmd.Flags().StringSliceVar(&genres, "genre", nil, "genre key, repeatable (see boxoffice genres)")
	_ = cmd.MarkFlagRequired("runtime")
}

func filmForm() forecast.Form {
	return forecast.NewForm(filmRuntime, synopsis, genres)
}

func init() {
	addFilmFlags(predictCmd)
	predictCmd.Flags().StringVar(&modelPath, "model", "model/model.json", "trained model artifact")
	predictCmd.Flags().StringVar(&lexiconPath, "lexicon", "data/common_words.txt", "common word list")
	predictCmd.Flags().BoolVar(&showAll, "all", false, "print the prediction for every month")

	addFilmFlags(requestCmd)
	requestCmd.Flags().StringVar(&baseURL, "api", defaultBaseURL, "API base URL")

	rootCmd.AddCommand(predictCmd, requestCmd, genresCmd, hashPasswordCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
