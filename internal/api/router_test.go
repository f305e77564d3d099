package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infrajwt "github.com/jonesrussell/north-cloud/spotlight/infrastructure/jwt"
	infralogger "github.com/jonesrussell/north-cloud/spotlight/infrastructure/logger"
	inframetrics "github.com/jonesrussell/north-cloud/spotlight/infrastructure/metrics"
	"github.com/jonesrussell/north-cloud/spotlight/internal/api"
	"github.com/jonesrussell/north-cloud/spotlight/internal/handlers"
	"github.com/jonesrussell/north-cloud/spotlight/internal/memstore"
	"github.com/jonesrussell/north-cloud/spotlight/internal/models"
	"github.com/jonesrussell/north-cloud/spotlight/internal/nonce"
	"github.com/jonesrussell/north-cloud/spotlight/internal/spotlight"
)

const testSecret = "test-jwt-secret"

type testServer struct {
	router *gin.Engine
	store  *memstore.Store
	tokens *nonce.Manager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memstore.NewSeeded()
	store.AddContentType(models.ContentType{Name: "article", Label: "Articles", SingularLabel: "Article", Public: true})
	store.AddItem(models.Item{ID: 42, ContentType: "article", Title: "Answer", AuthorID: 9})
	store.AddItem(models.Item{ID: 43, ContentType: "article", Title: "Other", AuthorID: 9})

	tokens := nonce.NewManager("nonce-secret", time.Hour)
	svc := spotlight.New(store, infralogger.NewNop(), spotlight.WithTokens(tokens))
	h := handlers.NewHandler(svc, store, infralogger.NewNop())

	router := gin.New()
	api.SetupRoutes(router, h, api.RouteOptions{
		JWTSecret: testSecret,
		Metrics:   inframetrics.NewHTTPMetrics("spotlight_test", prometheus.NewRegistry()),
	})

	return &testServer{router: router, store: store, tokens: tokens}
}

func bearer(t *testing.T, userID int64, roles ...string) string {
	t.Helper()

	token, err := infrajwt.Sign(testSecret, &infrajwt.Claims{Sub: strconv.FormatInt(userID, 10), Roles: roles})
	require.NoError(t, err)
	return "Bearer " + token
}

func (s *testServer) do(t *testing.T, method, path, auth string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestRoutes_RequireToken(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/settings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSettings(t *testing.T) {
	s := newTestServer(t)
	admin := bearer(t, 1, models.RoleAdministrator)

	w := s.do(t, http.MethodPut, "/api/v1/settings", bearer(t, 7, models.RoleEditor),
		handlers.SettingsRequest{ContentTypes: []string{"article"}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPut, "/api/v1/settings", admin,
		handlers.SettingsRequest{ContentTypes: []string{"article", "missing"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"content_types":["article"]}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/v1/settings", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[struct {
		Fields       []spotlight.SettingsField `json:"fields"`
		ContentTypes []string                  `json:"content_types"`
	}](t, w)
	assert.Equal(t, []string{"article"}, got.ContentTypes)
	assert.NotEmpty(t, got.Fields)
}

func TestSaveFeatured(t *testing.T) {
	s := newTestServer(t)
	admin := bearer(t, 1, models.RoleAdministrator)
	editor := bearer(t, 7, models.RoleEditor)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPut, "/api/v1/settings", admin,
		handlers.SettingsRequest{ContentTypes: []string{"article"}}).Code)

	w := s.do(t, http.MethodGet, "/api/v1/items/42/edit-state", editor, nil)
	require.Equal(t, http.StatusOK, w.Code)
	state := decode[spotlight.EditState](t, w)
	assert.True(t, state.Eligible)
	assert.False(t, state.Featured)
	assert.Equal(t, "Feature this Article:", state.Label)
	require.NotEmpty(t, state.Nonce)

	w = s.do(t, http.MethodPost, "/api/v1/items/42/featured", editor, spotlight.SaveForm{Featured: true})
	assert.Equal(t, http.StatusForbidden, w.Code, "a missing token leaves the item alone")

	w = s.do(t, http.MethodPost, "/api/v1/items/42/featured", bearer(t, 5, models.RoleAuthor),
		spotlight.SaveForm{Featured: true, Nonce: s.tokens.Issue(spotlight.NonceAction, 5)})
	assert.Equal(t, http.StatusForbidden, w.Code, "authors may only feature their own items")

	w = s.do(t, http.MethodPost, "/api/v1/items/42/featured", editor, spotlight.SaveForm{Featured: true, Nonce: state.Nonce})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"outcome":"featured","applied":true}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/v1/featured?type=article", editor, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[models.ItemPage](t, w)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(42), page.Items[0].ID)

	w = s.do(t, http.MethodGet, "/api/v1/items/42/classes?class=entry", editor, nil)
	assert.JSONEq(t, `{"classes":["entry","featured","featured-article"]}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/v1/items/42/cell", editor, nil)
	assert.JSONEq(t, `{"column":"lp-featured","value":"dashicons-star-filled"}`, w.Body.String())
}

func TestItemLookupErrors(t *testing.T) {
	s := newTestServer(t)
	editor := bearer(t, 7, models.RoleEditor)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/v1/items/abc/edit-state", editor, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/v1/items/999/edit-state", editor, nil).Code)
}

func TestUpgradeAndLegacyQuery(t *testing.T) {
	s := newTestServer(t)
	admin := bearer(t, 1, models.RoleAdministrator)

	require.NoError(t, s.store.SetMeta(context.Background(), 42, spotlight.LegacyMetaKey, "1"))

	w := s.do(t, http.MethodPost, "/api/v1/upgrade", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	report := decode[spotlight.MigrationReport](t, w)
	assert.Equal(t, 1, report.Added)

	legacy := models.ItemQuery{
		ContentTypes: []string{"article"},
		Meta:         []models.MetaClause{{Key: spotlight.LegacyMetaKey}},
	}
	w = s.do(t, http.MethodPost, "/api/v1/items/query", admin, legacy)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[models.ItemPage](t, w)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(42), page.Items[0].ID)
}

func TestColumnsAndView(t *testing.T) {
	s := newTestServer(t)
	admin := bearer(t, 1, models.RoleAdministrator)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPut, "/api/v1/settings", admin,
		handlers.SettingsRequest{ContentTypes: []string{"article", "attachment"}}).Code)

	w := s.do(t, http.MethodPost, "/api/v1/content-types/article/columns", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cols := decode[struct {
		Columns []spotlight.Column `json:"columns"`
	}](t, w)
	require.Len(t, cols.Columns, 5)
	assert.Equal(t, spotlight.ColumnKey, cols.Columns[3].Key)
	assert.Equal(t, "date", cols.Columns[4].Key)

	w = s.do(t, http.MethodGet, "/api/v1/content-types/article/view?pts_feature_tax=featured", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[spotlight.View](t, w)
	assert.True(t, view.Current)
	assert.Equal(t, "edit.php?post_type=article&pts_feature_tax=featured", view.URL)

	w = s.do(t, http.MethodGet, "/api/v1/content-types/attachment/view", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWidget(t *testing.T) {
	s := newTestServer(t)
	admin := bearer(t, 1, models.RoleAdministrator)

	w := s.do(t, http.MethodPost, "/api/v1/widget/settings", admin, spotlight.WidgetSettings{ContentType: "article"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPut, "/api/v1/settings", admin,
		handlers.SettingsRequest{ContentTypes: []string{"article"}}).Code)

	w = s.do(t, http.MethodPost, "/api/v1/widget/settings", admin, spotlight.WidgetSettings{Title: "<i>Top</i>", ContentType: "article"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"title":"Top","number":0,"content_type":"article"}`, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/widget/render", admin, spotlight.WidgetSettings{Title: "Top"})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/widget/render", admin, spotlight.WidgetSettings{ContentType: "article"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[]}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)

	s.do(t, http.MethodGet, "/api/v1/settings", "", nil)
	w := s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "spotlight_test_http_requests_total")
}

func TestWriteRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := memstore.NewSeeded()
	svc := spotlight.New(store, infralogger.NewNop())
	router := gin.New()
	api.SetupRoutes(router, handlers.NewHandler(svc, store, infralogger.NewNop()), api.RouteOptions{
		JWTSecret: testSecret,
		WriteRate: api.NewWriteLimiter(1, 1),
	})
	s := &testServer{router: router, store: store}
	admin := bearer(t, 1, models.RoleAdministrator)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPut, "/api/v1/settings", admin,
		handlers.SettingsRequest{ContentTypes: []string{"post"}}).Code)
	assert.Equal(t, http.StatusTooManyRequests, s.do(t, http.MethodPut, "/api/v1/settings", admin,
		handlers.SettingsRequest{ContentTypes: []string{"post"}}).Code)

	// reads are not throttled
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/v1/settings", admin, nil).Code)
}

func TestColumns_Bodies(t *testing.T) {
	s := newTestServer(t)
	admin := bearer(t, 1, models.RoleAdministrator)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPut, "/api/v1/settings", admin,
		handlers.SettingsRequest{ContentTypes: []string{"article"}}).Code)

	post := func(body io.Reader) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/content-types/article/columns", body)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", admin)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		return w
	}
	keys := func(w *httptest.ResponseRecorder) []string {
		cols := decode[struct {
			Columns []spotlight.Column `json:"columns"`
		}](t, w)
		out := make([]string, 0, len(cols.Columns))
		for _, col := range cols.Columns {
			out = append(out, col.Key)
		}
		return out
	}

	// unknown length, as with chunked transfer encoding
	chunked := io.NopCloser(strings.NewReader(`[{"key":"title","label":"Title"},{"key":"date","label":"Date"}]`))
	w := post(chunked)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"title", spotlight.ColumnKey, "date"}, keys(w))

	w = post(http.NoBody)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"cb", "title", "author", spotlight.ColumnKey, "date"}, keys(w))

	w = post(strings.NewReader(`{"not":"a list"`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
