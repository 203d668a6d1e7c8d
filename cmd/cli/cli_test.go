package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boxoffice/internal/forecast"
	"boxoffice/internal/model"
)

func setFilm(t *testing.T, rt, syn string, g ...string) {
	t.Helper()
	filmRuntime, synopsis, genres = rt, syn, g
	t.Cleanup(func() { filmRuntime, synopsis, genres = "", "", nil })
}

func writeModel(t *testing.T, dir string) string {
	t.Helper()
	// Leaf value 40 everywhere except April, which scores 60.
	a := model.Artifact{
		Kind:          model.KindRandomForest,
		SchemaVersion: forecast.SchemaVersion,
		Features:      forecast.InputSchema.Fields,
		Trees: []model.Tree{{Nodes: []model.Node{
			{Feature: forecast.InputSchema.Index("April"), Threshold: 0.5, Left: 1, Right: 2},
			{Feature: -1, Value: 40},
			{Feature: -1, Value: 60},
		}}},
	}
	b, err := json.Marshal(a)
	require.NoError(t, err)
	path := filepath.Join(dir, "model.json")
	require.NoError(t, os.WriteFile(path, b, 0o644))
	return path
}

func TestRunPredict(t *testing.T) {
	dir := t.TempDir()
	modelPath = writeModel(t, dir)
	lexiconPath = filepath.Join(dir, "words.txt")
	require.NoError(t, os.WriteFile(lexiconPath, []byte("# common\nlife\n"), 0o644))
	showAll = true
	t.Cleanup(func() { showAll = false })
	setFilm(t, "95", "a+life", "comedy")

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	require.NoError(t, runPredict(cmd, nil))

	text := out.String()
	assert.Contains(t, text, "* April")
	assert.Equal(t, 12, strings.Count(text, "\n")-2)
	assert.True(t, strings.HasSuffix(text, "This film is predicted to gross $60.00 million if released in: April\n"))
}

func TestRunPredictValidation(t *testing.T) {
	dir := t.TempDir()
	modelPath = writeModel(t, dir)
	lexiconPath = filepath.Join(dir, "words.txt")
	require.NoError(t, os.WriteFile(lexiconPath, []byte("life\n"), 0o644))
	setFilm(t, "long", "")

	err := runPredict(&cobra.Command{}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, forecast.ErrValidation)
}

func TestPostProject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/project", r.URL.Path)
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("runtime") != "120" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"bad runtime","kind":"validation"}`))
			return
		}
		assert.Equal(t, "on", r.PostForm.Get("western"))
		assert.Equal(t, "a+life", r.PostForm.Get("synopsis"))
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	msg, err := postProject(ctx, srv.Client(), srv.URL+"/", forecast.Form{"runtime": "120", "western": "on", "synopsis": "a+life"})
	require.NoError(t, err)
	assert.Equal(t, "ok", msg)

	_, err = postProject(ctx, srv.Client(), srv.URL, forecast.Form{"runtime": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation")
}

func TestHashPasswordCommand(t *testing.T) {
	var out bytes.Buffer
	hashPasswordCmd.SetOut(&out)
	t.Cleanup(func() { hashPasswordCmd.SetOut(nil) })

	require.NoError(t, hashPasswordCmd.RunE(hashPasswordCmd, []string{"s3cret"}))
	assert.True(t, strings.HasPrefix(out.String(), "$2"))
}
