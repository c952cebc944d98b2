package geography_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/RobertDurfee/Gerrymandering/internal/feature"
	"github.com/RobertDurfee/Gerrymandering/internal/geography"
	"github.com/RobertDurfee/Gerrymandering/internal/query"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExecutor records the statements it is asked to run and answers with
// canned rows, or blocks until the context ends when block is set.
type fakeExecutor struct {
	rows  []feature.Row
	err   error
	block bool
	calls []query.Statement
}

func (f *fakeExecutor) Query(ctx context.Context, stmt query.Statement) ([]feature.Row, error) {
	f.calls = append(f.calls, stmt)
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.rows, f.err
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(ctx context.Context) error { return p.err }

const squareGeometry = `{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}`

func serve(t *testing.T, exec *fakeExecutor, target string) *httptest.ResponseRecorder {
	t.Helper()
	h := &geography.Handler{Exec: exec, Timeout: time.Second}
	rec := httptest.NewRecorder()
	geography.SetupRoutes(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

type envelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var e envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	return e
}

func TestGet_NotFound(t *testing.T) {
	exec := &fakeExecutor{}

	rec := serve(t, exec, "/states/WI/counties/Dane")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	e := decodeError(t, rec)
	assert.Equal(t, 404, e.Error.Code)
	assert.Equal(t, "NOT_FOUND", e.Error.Status)
	require.Len(t, exec.calls, 1)
	assert.Equal(t, []interface{}{"WI", "Dane"}, exec.calls[0].Args)
}

func TestGet_Found(t *testing.T) {
	exec := &fakeExecutor{rows: []feature.Row{{
		"state":    "WI",
		"name":     []byte("Dane"),
		"geometry": squareGeometry,
	}}}

	rec := serve(t, exec, "/states/WI/counties/Dane")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("Server-Timing"))

	f, err := geojson.UnmarshalFeature(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "Dane", f.Properties["name"])
	assert.Equal(t, "WI", f.Properties["state"])
	_, hasGeometry := f.Properties["geometry"]
	assert.False(t, hasGeometry)
	assert.Equal(t, "Polygon", f.Geometry.GeoJSONType())
}

func TestGet_StateUsesTerminalKey(t *testing.T) {
	exec := &fakeExecutor{}

	serve(t, exec, "/states/WI")

	require.Len(t, exec.calls, 1)
	assert.Contains(t, exec.calls[0].SQL, "FROM geo.states g")
	assert.Equal(t, []interface{}{"WI"}, exec.calls[0].Args)
}

func TestList_EmptyCollection(t *testing.T) {
	exec := &fakeExecutor{}

	rec := serve(t, exec, "/states/WI/years/2020/wards")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))
	fc, err := geojson.UnmarshalFeatureCollection(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Empty(t, fc.Features)
	assert.Contains(t, rec.Body.String(), `"features":[]`)
}

func TestList_WardsByAssembly(t *testing.T) {
	exec := &fakeExecutor{}
	q := url.Values{"assembly": {"/states/WI/years/2020/assemblies/77"}}

	rec := serve(t, exec, "/states/WI/years/2020/wards?"+q.Encode())

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, exec.calls, 1)
	assert.Contains(t, exec.calls[0].SQL, "WHERE g.state = $1 AND g.year = $2 AND g.assembly = $3")
	assert.Equal(t, []interface{}{"WI", "2020", "77"}, exec.calls[0].Args)
}

func TestList_DecodesPathKeys(t *testing.T) {
	exec := &fakeExecutor{}

	serve(t, exec, "/states/WI/counties/Fond%20du%20Lac")

	require.Len(t, exec.calls, 1)
	assert.Equal(t, []interface{}{"WI", "Fond du Lac"}, exec.calls[0].Args)
}

func TestList_EncodedPercentInPathKey(t *testing.T) {
	exec := &fakeExecutor{}

	serve(t, exec, "/states/WI/counties/A%2520B")

	require.Len(t, exec.calls, 1)
	assert.Equal(t, []interface{}{"WI", "A%20B"}, exec.calls[0].Args)
}

func TestList_EncodedSlashInPathKey(t *testing.T) {
	exec := &fakeExecutor{}

	serve(t, exec, "/states/WI/counties/A%2FB")

	require.Len(t, exec.calls, 1)
	assert.Equal(t, []interface{}{"WI", "A/B"}, exec.calls[0].Args)
}

func TestList_EmptyGroup(t *testing.T) {
	exec := &fakeExecutor{}

	rec := serve(t, exec, "/states/WI/races/president/years/2016/votes?group=")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", decodeError(t, rec).Error.Status)
	assert.Empty(t, exec.calls)
}

func TestList_EmptySpatialFilter(t *testing.T) {
	exec := &fakeExecutor{}

	rec := serve(t, exec, "/states?within=")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, exec.calls)
}

func TestList_UnclosedRingRejected(t *testing.T) {
	exec := &fakeExecutor{}
	q := url.Values{"within": {`{"type":"Polygon","coordinates":[[[0,0],[1,1]]]}`}}

	rec := serve(t, exec, "/states?"+q.Encode())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Error.Message, "within")
	assert.Empty(t, exec.calls)
}

func TestList_InvalidGroup(t *testing.T) {
	exec := &fakeExecutor{}

	rec := serve(t, exec, "/states/WI/races/president/years/2016/votes?group=bogus")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	e := decodeError(t, rec)
	assert.Equal(t, "BAD_REQUEST", e.Error.Status)
	assert.Contains(t, e.Error.Message, "bogus")
	assert.Empty(t, exec.calls)
}

func TestList_MalformedReference(t *testing.T) {
	exec := &fakeExecutor{}
	q := url.Values{"county": {"/states/WI/Dane"}}

	rec := serve(t, exec, "/states/WI/years/2020/wards?"+q.Encode())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	e := decodeError(t, rec)
	assert.Contains(t, e.Error.Message, "/states/{state}/counties/{county}")
	assert.Empty(t, exec.calls)
}

func TestList_MalformedSpatial(t *testing.T) {
	exec := &fakeExecutor{}
	q := url.Values{"within": {`{"type":"Polygon"`}}

	rec := serve(t, exec, "/states/WI/years/2020/populations?"+q.Encode())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, exec.calls)
}

func TestList_VotesGroupedByCounty(t *testing.T) {
	exec := &fakeExecutor{rows: []feature.Row{{
		"state":     "WI",
		"year":      "2016",
		"race":      "president",
		"reference": "/states/WI/counties/Dane",
		"total":     int64(300000),
		"lean":      0.4,
		"geometry":  squareGeometry,
	}}}

	rec := serve(t, exec, "/states/WI/races/president/years/2016/votes?group=county")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, exec.calls, 1)
	assert.Equal(t, []interface{}{"WI", "president", "2016"}, exec.calls[0].Args)

	fc, err := geojson.UnmarshalFeatureCollection(rec.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "/states/WI/counties/Dane", fc.Features[0].Properties["reference"])
	assert.EqualValues(t, 300000, fc.Features[0].Properties["total"])
}

func TestExecutionError_IsGeneric(t *testing.T) {
	exec := &fakeExecutor{err: errors.New(`pq: relation "geo.wards" does not exist`)}

	rec := serve(t, exec, "/states/WI/years/2020/wards")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	e := decodeError(t, rec)
	assert.Equal(t, "INTERNAL_SERVER_ERROR", e.Error.Status)
	assert.NotContains(t, rec.Body.String(), "geo.wards")
}

func TestExecutionTimeout(t *testing.T) {
	exec := &fakeExecutor{block: true}
	h := &geography.Handler{Exec: exec, Timeout: 10 * time.Millisecond}

	rec := httptest.NewRecorder()
	geography.SetupRoutes(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/states", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	e := decodeError(t, rec)
	assert.Equal(t, "DEADLINE_EXCEEDED", e.Error.Status)
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	geography.Health(fakePinger{}, time.Second).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `"ok"`))

	rec = httptest.NewRecorder()
	geography.Health(fakePinger{err: errors.New("down")}, time.Second).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
