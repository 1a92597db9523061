package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"house-dashboard/config"
	"house-dashboard/models"
	"house-dashboard/services"
	"house-dashboard/utils"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	ds := models.NewDataset([]models.House{
		{ID: "1", Price: 200000, YearBuilt: 1955, Bedrooms: 3, Bathrooms: 1, SqftLiving: 1180, Condition: 3, Lat: 47.51, Long: -122.25},
		{ID: "2", Price: 400000, YearBuilt: 1955, Bedrooms: 4, Bathrooms: 2.25, SqftLiving: 2570, Condition: 4, View: 2, Lat: 47.72, Long: -122.31},
		{ID: "3", Price: 100000, YearBuilt: 1933, Bedrooms: 2, Bathrooms: 1, SqftLiving: 770, Condition: 2, View: 1, Lat: 47.73, Long: -122.23},
		{ID: "4", Price: 1500000, YearBuilt: 2001, Bedrooms: 5, Bathrooms: 3.5, SqftLiving: 4200, Condition: 5, Waterfront: 1, View: 4, Lat: 47.62, Long: -122.21},
		{ID: "5", Price: 300000, YearBuilt: 2001, Bedrooms: 3, Bathrooms: 1.75, SqftLiving: 1900, Condition: 1, View: 3, Lat: 47.40, Long: -122.10},
	})
	summary, err := services.NewAggregator(utils.Discard()).Summarize(ds)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	cfg := &config.Config{HTTPAddr: "127.0.0.1:0", BackgroundImageURL: "https://example.com/bg.jpg"}
	return New(cfg, ds, summary, utils.Discard())
}

func do(s *Server, method, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthSetsRequestID(t *testing.T) {
	s := newTestServer(t)
	rec := do(s, http.MethodGet, "/health", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Error("missing X-Request-ID header")
	}
	if !strings.Contains(rec.Body.String(), `"houses":5`) {
		t.Errorf("body: %s", rec.Body.String())
	}
}

func TestIndexRendersControls(t *testing.T) {
	s := newTestServer(t)
	rec := do(s, http.MethodGet, "/", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`class="figure"`, `id="price-filter"`, `id="x-axis-dropdown"`, `id="x-dropdown"`, "example.com/bg.jpg"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestSummaryEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := do(s, http.MethodGet, "/api/v1/summary", nil)

	var got models.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.TotalHouses != 5 {
		t.Errorf("total: got %d, want 5", got.TotalHouses)
	}
	if len(got.ByYear) != 3 || got.ByYear[0].Year != 1933 {
		t.Errorf("by year: got %+v", got.ByYear)
	}
}

func TestMapViewQuery(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		query      string
		wantStatus int
		wantPoints int
	}{
		{"?low=0.2&high=0.4", http.StatusOK, 3},
		{"?low=2&high=1", http.StatusOK, 0},
		{"", http.StatusOK, 0},
		{"?low=abc", http.StatusBadRequest, -1},
		{"?low=NaN", http.StatusBadRequest, -1},
		{"?high=Inf", http.StatusBadRequest, -1},
		{"?low=-Inf&high=%2BInf", http.StatusBadRequest, -1},
	}

	for _, tt := range tests {
		rec := do(s, http.MethodGet, "/api/v1/views/map"+tt.query, nil)
		if rec.Code != tt.wantStatus {
			t.Errorf("%q status: got %d, want %d", tt.query, rec.Code, tt.wantStatus)
			continue
		}
		if tt.wantPoints < 0 {
			continue
		}
		var v models.MapView
		if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
			t.Errorf("%q decode: %v", tt.query, err)
			continue
		}
		if len(v.Points) != tt.wantPoints {
			t.Errorf("%q points: got %d, want %d", tt.query, len(v.Points), tt.wantPoints)
		}
	}
}

func TestAxisViewsRejectUnknownValues(t *testing.T) {
	s := newTestServer(t)

	for _, target := range []string{"/api/v1/views/scatter?x=floors", "/api/v1/views/bar?x=grade"} {
		if rec := do(s, http.MethodGet, target, nil); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: got %d, want 400", target, rec.Code)
		}
	}
	if rec := do(s, http.MethodGet, "/api/v1/views/bar?x=view", nil); rec.Code != http.StatusOK {
		t.Errorf("bar view: got %d, want 200", rec.Code)
	}
}

func TestEventEndpoint(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		body       string
		wantStatus int
		wantTarget string
	}{
		{`{"control":"x-axis-dropdown","value":"bathrooms"}`, http.StatusOK, services.TargetScatter},
		{`{"control":"x-dropdown","value":"waterfront"}`, http.StatusOK, services.TargetBar},
		{`{"control":"zoom","value":1}`, http.StatusNotFound, ""},
		{`{"control":"price-filter","value":"cheap"}`, http.StatusBadRequest, ""},
		{`not json`, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		rec := do(s, http.MethodPost, "/api/v1/events", strings.NewReader(tt.body))
		if rec.Code != tt.wantStatus {
			t.Errorf("%s status: got %d, want %d", tt.body, rec.Code, tt.wantStatus)
			continue
		}
		if tt.wantTarget == "" {
			continue
		}
		var u struct {
			Target string `json:"target"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &u); err != nil {
			t.Errorf("%s decode: %v", tt.body, err)
			continue
		}
		if u.Target != tt.wantTarget {
			t.Errorf("%s target: got %q, want %q", tt.body, u.Target, tt.wantTarget)
		}
	}
}

func TestChartsArePNG(t *testing.T) {
	s := newTestServer(t)
	magic := []byte("\x89PNG\r\n\x1a\n")

	for _, target := range []string{
		"/charts/price-by-year.png",
		"/charts/condition.png",
		"/charts/map.png?low=0&high=1",
		"/charts/scatter.png?x=bathrooms",
		"/charts/bar.png?x=view",
	} {
		rec := do(s, http.MethodGet, target, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: got %d, want 200", target, rec.Code)
			continue
		}
		if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
			t.Errorf("%s content type: got %q", target, ct)
		}
		if !bytes.HasPrefix(rec.Body.Bytes(), magic) {
			t.Errorf("%s: body is not a PNG", target)
		}
	}

	if rec := do(s, http.MethodGet, "/charts/heatmap.png", nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown chart: got %d, want 404", rec.Code)
	}
	if rec := do(s, http.MethodGet, "/charts/scatter.png?x=floors", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad axis chart: got %d, want 400", rec.Code)
	}
	if rec := do(s, http.MethodGet, "/charts/map.png?low=NaN", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("non-finite map chart: got %d, want 400", rec.Code)
	}
}

func TestMetricsCountEvents(t *testing.T) {
	s := newTestServer(t)
	do(s, http.MethodGet, "/api/v1/views/scatter?x=bedrooms", nil)

	rec := do(s, http.MethodGet, "/metrics", nil)
	body := rec.Body.String()
	for _, want := range []string{
		`dashboard_control_events_total{control="x-axis-dropdown",outcome="ok"} 1`,
		"dashboard_dataset_houses 5",
		"dashboard_http_requests_total",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestMetricsBoundUnknownControls(t *testing.T) {
	s := newTestServer(t)
	for _, control := range []string{"junk-a", "junk-b", "junk-c"} {
		body := `{"control":"` + control + `","value":1}`
		if rec := do(s, http.MethodPost, "/api/v1/events", strings.NewReader(body)); rec.Code != http.StatusNotFound {
			t.Errorf("%s: got %d, want 404", control, rec.Code)
		}
	}
	do(s, http.MethodPost, "/api/v1/events", strings.NewReader(`{"control":"price-filter","value":"cheap"}`))

	body := do(s, http.MethodGet, "/metrics", nil).Body.String()
	if strings.Contains(body, "junk-") {
		t.Errorf("client-supplied control names leaked into labels:\n%s", body)
	}
	for _, want := range []string{
		`dashboard_control_events_total{control="unknown",outcome="error"} 3`,
		`dashboard_control_events_total{control="price-filter",outcome="error"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestWebSocketRepliesInOrder(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	events := []string{
		`{"control":"price-filter","value":[0.2,0.4]}`,
		`{"control":"zoom","value":1}`,
		`{"control":"x-dropdown","value":"view"}`,
	}
	for _, ev := range events {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(ev)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	want := []struct {
		control string
		target  string
		isError bool
	}{
		{"price-filter", services.TargetMap, false},
		{"zoom", "", true},
		{"x-dropdown", services.TargetBar, false},
	}
	for i, w := range want {
		var reply struct {
			Control string          `json:"control"`
			Target  string          `json:"target"`
			Figure  json.RawMessage `json:"figure"`
			Error   string          `json:"error"`
		}
		if err := conn.ReadJSON(&reply); err != nil {
			t.Fatalf("reply %d: %v", i, err)
		}
		if reply.Control != w.control {
			t.Errorf("reply %d control: got %q, want %q", i, reply.Control, w.control)
		}
		if (reply.Error != "") != w.isError {
			t.Errorf("reply %d error: got %q", i, reply.Error)
		}
		if reply.Target != w.target {
			t.Errorf("reply %d target: got %q, want %q", i, reply.Target, w.target)
		}
	}
}
