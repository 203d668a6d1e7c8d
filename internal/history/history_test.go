package history

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boxoffice/internal/auth"
	"boxoffice/internal/forecast"
	"boxoffice/pkg/database"
	"boxoffice/pkg/models"
)

func newRepo(t *testing.T) *Repo {
	t.Helper()
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "data.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))
	return NewRepo(db)
}

func sampleResult() forecast.Result {
	preds := make([]forecast.MonthlyPrediction, forecast.MonthCount)
	for m := range preds {
		preds[m] = forecast.MonthlyPrediction{Month: forecast.Month(m), Value: float64(m)}
	}
	return forecast.Result{
		Month:       11,
		Value:       11,
		Message:     forecast.FormatResult("December", 11),
		Predictions: preds,
	}
}

func TestRecordFromResult(t *testing.T) {
	form := forecast.Form{"runtime": " 210 ", "synopsis": "mission life", "western": "on", "noir": "on"}
	rec := RecordFromResult("f-1", form, sampleResult())

	assert.Equal(t, 210, rec.Runtime)
	assert.Equal(t, []string{"western"}, rec.Genres)
	assert.Equal(t, "December", rec.BestMonthName)
	assert.Len(t, rec.Predictions, 12)

	empty := RecordFromResult("f-2", forecast.Form{"runtime": "1"}, sampleResult())
	assert.NotNil(t, empty.Genres)
}

func TestRepoSaveGetList(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	older := RecordFromResult("a", forecast.Form{"runtime": "90", "drama": "on"}, sampleResult())
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	newer := RecordFromResult("b", forecast.Form{"runtime": "120"}, sampleResult())
	require.NoError(t, repo.Save(ctx, older))
	require.NoError(t, repo.Save(ctx, newer))

	got, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 90, got.Runtime)
	assert.Equal(t, []string{"drama"}, got.Genres)
	assert.Equal(t, 11, got.BestMonth)
	assert.Equal(t, "December", got.BestMonthName)
	assert.Len(t, got.Predictions, 12)

	missing, err := repo.GetByID(ctx, "zzz")
	require.NoError(t, err)
	assert.Nil(t, missing)

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	items, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "b", items[0].ID)
}

func TestHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := newRepo(t)
	require.NoError(t, repo.Save(context.Background(),
		RecordFromResult("a", forecast.Form{"runtime": "90"}, sampleResult())))

	r := gin.New()
	NewHandler(repo).RegisterRoutes(r.Group("/history"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/history?limit=5", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Total int                     `json:"total"`
		Items []models.ForecastRecord `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Total)
	require.Len(t, body.Items, 1)
	assert.Equal(t, "a", body.Items[0].ID)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/history/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHistoryRequiresAdminToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := newRepo(t)
	require.NoError(t, repo.Save(context.Background(),
		RecordFromResult("a", forecast.Form{"runtime": "90"}, sampleResult())))

	tokens := auth.TokenService{Secret: []byte("test-secret"), Issuer: "boxoffice", Duration: time.Hour}
	r := gin.New()
	protected := r.Group("/history")
	protected.Use(auth.AuthMiddleware(tokens))
	NewHandler(repo).RegisterRoutes(protected)

	get := func(path, bearer string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusUnauthorized, get("/history", ""))
	assert.Equal(t, http.StatusUnauthorized, get("/history/a", ""))
	assert.Equal(t, http.StatusUnauthorized, get("/history", "not-a-jwt"))

	foreign := auth.TokenService{Secret: []byte("other-secret"), Issuer: "boxoffice", Duration: time.Hour}
	forged, _, err := foreign.Sign("admin")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get("/history", forged))

	token, _, err := tokens.Sign("admin")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, get("/history", token))
	assert.Equal(t, http.StatusOK, get("/history/a", token))
}
