package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/tourism-dashboard-service/internal/adapter/publicdata"
	"github.com/couchcryptid/tourism-dashboard-service/internal/config"
	"github.com/couchcryptid/tourism-dashboard-service/internal/dataset"
	"github.com/couchcryptid/tourism-dashboard-service/internal/domain"
	"github.com/couchcryptid/tourism-dashboard-service/internal/observability"
	"github.com/couchcryptid/tourism-dashboard-service/internal/selection"
)

const testSession = "3f1c7d2e-8a4b-4c6d-9e0f-1a2b3c4d5e6f"

var seoul = time.FixedZone("KST", 9*3600)

type fakeSource struct {
	mu            sync.Mutex
	visitors      []domain.RawVisitorRow
	forecast      []domain.RawForecastItem
	concentration []domain.RawConcentrationRow
	err           error
	visitorRange  [2]string

	// blockFirst makes the first Concentration call wait for cancellation
	// or release.
	blockFirst bool
	started    chan struct{}
	release    chan struct{}
	calls      int
}

func (f *fakeSource) UltraShortForecast(context.Context, domain.Region, time.Time) ([]domain.RawForecastItem, error) {
	return f.forecast, f.err
}

func (f *fakeSource) Concentration(ctx context.Context, _ domain.Region) ([]domain.RawConcentrationRow, error) {
	f.mu.Lock()
	f.calls++
	first := f.calls == 1
	f.mu.Unlock()

	if f.blockFirst && first {
		close(f.started)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-f.release:
		}
	}
	return f.concentration, f.err
}

func (f *fakeSource) VisitorStats(_ context.Context, start, end string) ([]domain.RawVisitorRow, error) {
	f.mu.Lock()
	f.visitorRange = [2]string{start, end}
	f.mu.Unlock()
	return f.visitors, f.err
}

type fakeSnapshots map[string]domain.SeriesSnapshot

func (f fakeSnapshots) Latest(region string) (domain.SeriesSnapshot, bool) {
	s, ok := f[region]
	return s, ok
}

type testEnv struct {
	app     *fiber.App
	source  *fakeSource
	metrics *observability.Metrics
	store   selection.Store
	dataDir string
}

func newTestEnv(t *testing.T, source *fakeSource) *testEnv {
	t.Helper()
	dir := t.TempDir()
	writeDataset(t, dir, "창원시", dataset.CategoryConsumption, dataset.FileConsumptionByAge,
		"소비자 연령,비율(남성),비율(여성)\n20대,30,20\n_,1,1\n10대,5,5\n")
	writeDataset(t, dir, "창원시", dataset.CategoryConsumption, dataset.FileForeignConsumption,
		"국가,소비 비율(%)\n중국,40.5\n,9\n일본,20\n")
	writeDataset(t, dir, "창원시", "방문자", "daily.csv",
		"date,type,count\n2025-01-01,local,10\n2025-01-02,foreign,4\n2025-01-02,local,6\n")

	metrics := observability.NewMetricsForTesting()
	store := selection.NewMemoryStore()
	app := NewApp(Deps{
		Source:     source,
		Datasets:   dataset.NewStore(dir, nil, time.Hour, observability.DiscardLogger()),
		Selections: store,
		Tracker:    selection.NewTracker(),
		Snapshots:  fakeSnapshots{"창원시": {ID: "snap-1", Region: "창원시"}},
		Location:   seoul,
		Metrics:    metrics,
		Logger:     observability.DiscardLogger(),
	})
	return &testEnv{app: app, source: source, metrics: metrics, store: store, dataDir: dir}
}

func writeDataset(t *testing.T, root, region, category, file, content string) {
	t.Helper()
	dir := filepath.Join(root, region, category)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(content), 0o644))
}

func (e *testEnv) do(t *testing.T, method, target string, body io.Reader) (*http.Response, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Cookie", SessionCookie+"="+testSession)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decodeSeries(t *testing.T, body []byte) (seriesResponse, json.RawMessage) {
	t.Helper()
	var out struct {
		seriesResponse
		Series json.RawMessage `json:"series"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	return out.seriesResponse, out.Series
}

func TestRegions(t *testing.T) {
	env := newTestEnv(t, &fakeSource{})
	resp, body := env.do(t, http.MethodGet, "/api/regions", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var regions []domain.Region
	require.NoError(t, json.Unmarshal(body, &regions))
	assert.Len(t, regions, len(domain.Regions()))
	assert.Equal(t, "창원시", regions[0].Name)
}

func TestSessionCookieIssued(t *testing.T) {
	env := newTestEnv(t, &fakeSource{})
	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/api/regions", nil))
	require.NoError(t, err)

	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookie {
			session = c
		}
	}
	require.NotNil(t, session, "a new session cookie is issued")
	assert.Len(t, session.Value, 36)
	assert.True(t, session.HttpOnly)
}

func TestVisitorsSeries(t *testing.T) {
	source := &fakeSource{visitors: []domain.RawVisitorRow{
		{SignguNm: "창원시", TouDivNm: "현지인(a)", TouNum: "10"},
		{SignguNm: "창원시", TouDivNm: "현지인(a)", TouNum: "5"},
		{SignguNm: "김해시", TouDivNm: "현지인(a)", TouNum: "99"},
		{SignguNm: "창원시", TouDivNm: "외국인(c)", TouNum: "2"},
	}}
	env := newTestEnv(t, source)

	resp, body := env.do(t, http.MethodGet, "/api/series/visitors?region=changwon&start=20250101&end=20250107", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	meta, series := decodeSeries(t, body)
	assert.Equal(t, "창원시", meta.Region)
	assert.Positive(t, meta.Generation)
	assert.JSONEq(t, `[{"label":"현지인(a)","value":15},{"label":"외국인(c)","value":2}]`, string(series))
	assert.Equal(t, [2]string{"20250101", "20250107"}, source.visitorRange)
	assert.InDelta(t, 1, testutil.ToFloat64(env.metrics.SeriesBuilt.WithLabelValues("visitors")), 1e-9)
}

func TestVisitorsSeries_DefaultRange(t *testing.T) {
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2025, 3, 15, 10, 0, 0, 0, seoul)))
	defer domain.SetClock(nil)

	source := &fakeSource{}
	env := newTestEnv(t, source)

	resp, body := env.do(t, http.MethodGet, "/api/series/visitors?region=창원시", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	_, series := decodeSeries(t, body)
	assert.JSONEq(t, `[]`, string(series))
	assert.Equal(t, [2]string{"20250215", "20250215"}, source.visitorRange)
}

func TestVisitorsSeries_BadRange(t *testing.T) {
	env := newTestEnv(t, &fakeSource{})

	tests := []struct {
		name  string
		query string
	}{
		{"short date", "start=202501&end=20250107"},
		{"non numeric", "start=2025010a"},
		{"end before start", "start=20250107&end=20250101"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := env.do(t, http.MethodGet, "/api/series/visitors?region=창원시&"+tt.query, nil)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestForecastSeries(t *testing.T) {
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 14, 10, 0, 0, seoul)))
	defer domain.SetClock(nil)

	item := func(category, fcstTime, value string) domain.RawForecastItem {
		return domain.RawForecastItem{
			Category: domain.Text(category), FcstDate: "20250301", FcstTime: domain.Text(fcstTime), FcstValue: domain.Text(value),
		}
	}
	source := &fakeSource{forecast: []domain.RawForecastItem{
		item(domain.CategoryTemperature, "1500", "11"),
		item(domain.CategorySky, "1500", "3"),
		item(domain.CategoryHumidity, "1500", "40"),
		item(domain.CategoryTemperature, "2300", "4"),
	}}
	env := newTestEnv(t, source)

	resp, body := env.do(t, http.MethodGet, "/api/series/forecast?region=changwon&category=t1h", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	_, series := decodeSeries(t, body)
	assert.JSONEq(t, `[{"time":["15:00","구름많음"],"temperature":11,"humidity":40}]`, string(series))
}

func TestForecastSeries_InvalidCategory(t *testing.T) {
	env := newTestEnv(t, &fakeSource{})

	resp, body := env.do(t, http.MethodGet, "/api/series/forecast?region=changwon&category=XYZ", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), `"error"`)
}

func TestConcentrationSeries(t *testing.T) {
	source := &fakeSource{concentration: []domain.RawConcentrationRow{
		{BaseYmd: "20250302", TAtsNm: "용지호수", CnctrRate: "55"},
		{BaseYmd: "20250301", TAtsNm: "용지호수", CnctrRate: "42.5"},
		{BaseYmd: "20250301", TAtsNm: "마산어시장", CnctrRate: "70"},
	}}
	env := newTestEnv(t, source)

	resp, body := env.do(t, http.MethodGet, "/api/series/concentration?region=창원시&attraction=용지호수", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	_, raw := decodeSeries(t, body)
	var series struct {
		Attractions []string       `json:"attractions"`
		Selected    string         `json:"selected"`
		Points      []domain.Point `json:"points"`
	}
	require.NoError(t, json.Unmarshal(raw, &series))
	assert.Equal(t, []string{"용지호수", "마산어시장"}, series.Attractions)
	assert.Equal(t, "용지호수", series.Selected)
	assert.Equal(t, []domain.Point{{Label: "03/01", Value: 42.5}, {Label: "03/02", Value: 55}}, series.Points)
}

func TestSeries_UpstreamFailure(t *testing.T) {
	env := newTestEnv(t, &fakeSource{err: errors.New("provider error 22: LIMITED_NUMBER_OF_SERVICE_REQUESTS_EXCEEDS_ERROR")})

	resp, body := env.do(t, http.MethodGet, "/api/series/concentration?region=창원시", nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.JSONEq(t, `{"error":"upstream request failed"}`, string(body))
}

func TestSeries_UnknownRegion(t *testing.T) {
	env := newTestEnv(t, &fakeSource{})

	resp, _ := env.do(t, http.MethodGet, "/api/series/concentration?region=서울", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSeries_UsesSavedSelection(t *testing.T) {
	env := newTestEnv(t, &fakeSource{})

	resp, _ := env.do(t, http.MethodGet, "/api/series/consumption", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "no region and no selection")

	resp, body := env.do(t, http.MethodPut, "/api/selection", strings.NewReader(`{"region":"changwon"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = env.do(t, http.MethodGet, "/api/series/consumption", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	meta, _ := decodeSeries(t, body)
	assert.Equal(t, "창원시", meta.Region)
}

func TestConsumptionSeries(t *testing.T) {
	env := newTestEnv(t, &fakeSource{})

	tests := []struct {
		gender string
		want   string
	}{
		{"", `[{"label":"10대","value":10},{"label":"20대","value":50}]`},
		{"남성", `[{"label":"10대","value":5},{"label":"20대","value":30}]`},
		{"여성", `[{"label":"10대","value":5},{"label":"20대","value":20}]`},
	}
	for _, tt := range tests {
		t.Run("gender="+tt.gender, func(t *testing.T) {
			target := "/api/series/consumption?region=창원시"
			if tt.gender != "" {
				target += "&gender=" + tt.gender
			}
			resp, body := env.do(t, http.MethodGet, target, nil)
			require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
			_, series := decodeSeries(t, body)
			assert.JSONEq(t, tt.want, string(series))
		})
	}

	resp, _ := env.do(t, http.MethodGet, "/api/series/consumption?region=창원시&gender=기타", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestConsumptionSeries_MissingDataset(t *testing.T) {
	env := newTestEnv(t, &fakeSource{})

	resp, _ := env.do(t, http.MethodGet, "/api/series/consumption?region=김해시", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestForeignConsumptionSeries(t *testing.T) {
	env := newTestEnv(t, &fakeSource{})

	resp, body := env.do(t, http.MethodGet, "/api/series/foreign-consumption?region=changwon", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	_, series := decodeSeries(t, body)
	assert.JSONEq(t, `{"points":[{"label":"중국","value":40.5},{"label":"일본","value":20}],"axis_max":45}`, string(series))
}

type asyncResult struct {
	status int
	body   []byte
}

// goGet issues a GET on the test session in the background.
func goGet(app *fiber.App, target string) <-chan asyncResult {
	out := make(chan asyncResult, 1)
	go func() {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req.Header.Set("Cookie", SessionCookie+"="+testSession)
		resp, err := app.Test(req, -1)
		if err != nil {
			out <- asyncResult{}
			return
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		out <- asyncResult{status: resp.StatusCode, body: body}
	}()
	return out
}

func TestSeries_StaleResultDiscarded(t *testing.T) {
	source := &fakeSource{
		blockFirst:    true,
		started:       make(chan struct{}),
		concentration: []domain.RawConcentrationRow{{BaseYmd: "20250301", TAtsNm: "용지호수", CnctrRate: "10"}},
	}
	env := newTestEnv(t, source)

	first := goGet(env.app, "/api/series/concentration?region=창원시")

	select {
	case <-source.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first request did not reach the source")
	}

	resp, body := env.do(t, http.MethodGet, "/api/series/concentration?region=김해시", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	meta, _ := decodeSeries(t, body)
	assert.Equal(t, "김해시", meta.Region)

	select {
	case r := <-first:
		assert.Equal(t, http.StatusConflict, r.status)
		assert.Contains(t, string(r.body), "superseded")
	case <-time.After(2 * time.Second):
		t.Fatal("first request never completed")
	}
	assert.InDelta(t, 1, testutil.ToFloat64(env.metrics.StaleDiscarded), 1e-9)
}

func TestSeries_OtherKindsDoNotSupersede(t *testing.T) {
	source := &fakeSource{
		blockFirst:    true,
		started:       make(chan struct{}),
		release:       make(chan struct{}),
		concentration: []domain.RawConcentrationRow{{BaseYmd: "20250301", TAtsNm: "용지호수", CnctrRate: "10"}},
	}
	env := newTestEnv(t, source)

	concentration := goGet(env.app, "/api/series/concentration?region=창원시")
	select {
	case <-source.started:
	case <-time.After(2 * time.Second):
		t.Fatal("concentration request did not reach the source")
	}

	resp, body := env.do(t, http.MethodGet, "/api/series/foreign-consumption?region=창원시", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	resp, body = env.do(t, http.MethodGet, "/api/series/consumption?region=창원시", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	close(source.release)
	select {
	case r := <-concentration:
		assert.Equal(t, http.StatusOK, r.status, string(r.body))
	case <-time.After(2 * time.Second):
		t.Fatal("concentration request never completed")
	}
	assert.InDelta(t, 0, testutil.ToFloat64(env.metrics.StaleDiscarded), 1e-9)
}

func TestSeries_SupersededRequestsKeepProviderAvailable(t *testing.T) {
	arrived := make(chan string, 16)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("signguCd")
		arrived <- code
		if code != "48120" {
			<-r.Context().Done()
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":{"header":{"resultCode":"0000"},
			"body":{"items":{"item":[{"baseYmd":"20250301","tAtsNm":"용지호수","cnctrRate":"10"}]}}}}`))
	}))
	defer upstream.Close()

	metrics := observability.NewMetricsForTesting()
	client := publicdata.NewClient(&config.Config{
		ServiceKey:         "test-key",
		TourPredictBaseURL: upstream.URL,
		UpstreamTimeout:    5 * time.Second,
		UpstreamRetries:    2,
		ProviderLocation:   seoul,
	}, metrics, observability.DiscardLogger())
	app := NewApp(Deps{
		Source:     client,
		Datasets:   dataset.NewStore(t.TempDir(), nil, time.Hour, observability.DiscardLogger()),
		Selections: selection.NewMemoryStore(),
		Tracker:    selection.NewTracker(),
		Snapshots:  fakeSnapshots{},
		Location:   seoul,
		Metrics:    metrics,
		Logger:     observability.DiscardLogger(),
	})

	// Click through more districts than the breaker tolerates as consecutive
	// failures, each request superseding the previous one.
	var pending []<-chan asyncResult
	for _, region := range domain.Regions()[1:9] {
		pending = append(pending, goGet(app, "/api/series/concentration?region="+region.Slug))
		select {
		case <-arrived:
		case <-time.After(2 * time.Second):
			t.Fatalf("request for %s did not reach the provider", region.Name)
		}
	}

	final := goGet(app, "/api/series/concentration?region=changwon")
	for i, ch := range pending {
		select {
		case r := <-ch:
			assert.Equal(t, http.StatusConflict, r.status, "request %d", i)
		case <-time.After(2 * time.Second):
			t.Fatalf("superseded request %d never completed", i)
		}
	}

	select {
	case r := <-final:
		require.Equal(t, http.StatusOK, r.status, string(r.body))
		assert.Contains(t, string(r.body), "용지호수")
	case <-time.After(5 * time.Second):
		t.Fatal("final request never completed")
	}
	assert.InDelta(t, 8, testutil.ToFloat64(metrics.StaleDiscarded), 1e-9)
}

func TestSnapshot(t *testing.T) {
	env := newTestEnv(t, &fakeSource{})

	resp, body := env.do(t, http.MethodGet, "/api/snapshots/changwon", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"id":"snap-1"`)

	resp, _ = env.do(t, http.MethodGet, "/api/snapshots/gimhae", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = env.do(t, http.MethodGet, "/api/snapshots/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListDatasets(t *testing.T) {
	env := newTestEnv(t, &fakeSource{})

	resp, body := env.do(t, http.MethodGet, "/api/datasets/changwon/"+dataset.CategoryConsumption, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var out struct {
		Files []dataset.FileInfo `json:"files"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Files, 2)
	assert.Equal(t, dataset.FileConsumptionByAge, out.Files[0].Name)

	resp, _ = env.do(t, http.MethodGet, "/api/datasets/changwon/없는분류", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReadDataset(t *testing.T) {
	env := newTestEnv(t, &fakeSource{})
	base := "/api/datasets/changwon/방문자/daily.csv"

	t.Run("page", func(t *testing.T) {
		resp, body := env.do(t, http.MethodGet, base+"?filter=type=local&columns=date,count&limit=1", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

		var page dataset.Page
		require.NoError(t, json.Unmarshal(body, &page))
		require.Len(t, page.Data, 1)
		assert.Equal(t, domain.CSVRow{"date": "2025-01-01", "count": "10"}, page.Data[0])
		assert.Equal(t, 2, page.Metadata.TotalCount)
		assert.True(t, page.Metadata.HasMore)
	})

	t.Run("aggregate", func(t *testing.T) {
		resp, body := env.do(t, http.MethodGet, base+"?group_by=type&aggregate=count:sum", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
		assert.Contains(t, string(body), `"count_sum":16`)
		assert.Contains(t, string(body), `"count_sum":4`)
	})

	t.Run("invalid paging", func(t *testing.T) {
		resp, _ := env.do(t, http.MethodGet, base+"?offset=-1", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unsupported format", func(t *testing.T) {
		resp, _ := env.do(t, http.MethodGet, "/api/datasets/changwon/방문자/notes.txt", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing file", func(t *testing.T) {
		resp, _ := env.do(t, http.MethodGet, "/api/datasets/changwon/방문자/none.csv", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestSelection(t *testing.T) {
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)))
	defer domain.SetClock(nil)

	env := newTestEnv(t, &fakeSource{})

	resp, _ := env.do(t, http.MethodGet, "/api/selection", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPut, "/api/selection", strings.NewReader(`{"region":"부산"}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPut, "/api/selection", strings.NewReader(`{}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := env.do(t, http.MethodPut, "/api/selection", strings.NewReader(`{"region":"tongyeong"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = env.do(t, http.MethodGet, "/api/selection", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got selectionResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "통영시", got.Region.Name)
	assert.True(t, got.UpdatedAt.Equal(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)))

	sel, err := env.store.Load(context.Background(), testSession)
	require.NoError(t, err)
	assert.Equal(t, "통영시", sel.Region)
}
