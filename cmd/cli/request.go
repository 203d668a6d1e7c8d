package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"boxoffice/internal/forecast"
)

var baseURL string

var requestCmd = &cobra.Command{
	Use:   "request",
	Short: "Submit a film to the API server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client := &http.Client{Timeout: 15 * time.Second}
		msg, err := postProject(cmd.Context(), client, baseURL, filmForm())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}

type projectResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Kind    string `json:"kind"`
}

// postProject submits form the way the HTML page does and returns the
// server's message.
func postProject(ctx context.Context, client *http.Client, base string, form forecast.Form) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	values := url.Values{}
	for k, v := range form {
		values.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(base, "/")+"/project",
		strings.NewReader(values.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("post project: %w", err)
	}
	defer resp.Body.Close()

	var body projectResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("server returned %d (%s): %s", resp.StatusCode, body.Kind, body.Error)
	}
	return body.Message, nil
}
