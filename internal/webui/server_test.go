package webui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealbrief/dealbrief/internal/config"
	"github.com/dealbrief/dealbrief/internal/hooks"
	"github.com/dealbrief/dealbrief/internal/report"
)

type stubLister struct {
	names []string
	err   error
}

func (s *stubLister) ListCustomers(ctx context.Context) ([]string, error) {
	return s.names, s.err
}

func newTestServer(t *testing.T, factory PipelineFactory, lister CustomerLister) (*Server, *httptest.Server) {
	t.Helper()
	jobs := NewJobManager(factory, time.Minute, testLogger())
	srv := New(config.WebConfig{}, jobs, lister, testLogger())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func startJob(t *testing.T, ts *httptest.Server, customer string) JobView {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"customer_name": customer, "purpose": "margin"})
	resp, err := http.Post(ts.URL+"/reports", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var view JobView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	require.NotEmpty(t, view.ID)
	return view
}

func TestIndexRendersCustomerDropdown(t *testing.T) {
	_, ts := newTestServer(t, successFactory(&report.Report{}), &stubLister{names: []string{"Customer A", "Customer C"}})

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var b bytes.Buffer
	b.ReadFrom(resp.Body)
	page := b.String()
	assert.Contains(t, page, `<option value="Customer A">`)
	assert.Contains(t, page, `<option value="Customer C">`)
}

func TestIndexDegradesWithoutGateway(t *testing.T) {
	_, ts := newTestServer(t, successFactory(&report.Report{}), &stubLister{err: errors.New("connection refused")})

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var b bytes.Buffer
	b.ReadFrom(resp.Body)
	assert.Contains(t, b.String(), `input type="text" id="customer"`, "free-text field replaces the dropdown")
}

func TestStartJobValidation(t *testing.T) {
	_, ts := newTestServer(t, successFactory(&report.Report{}), &stubLister{})

	resp, err := http.Post(ts.URL+"/reports", "application/json", strings.NewReader(`{"purpose": "x"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(ts.URL+"/reports", "application/json", strings.NewReader("not json"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestJobStatusEndpoint(t *testing.T) {
	srv, ts := newTestServer(t, successFactory(&report.Report{CustomerName: "Customer C", HTML: "<html>ok</html>"}), &stubLister{})

	view := startJob(t, ts, "Customer C")
	job, ok := srv.jobs.Get(view.ID)
	require.True(t, ok)
	waitForStatus(t, job, JobCompleted)

	resp, err := http.Get(ts.URL + "/jobs/" + view.ID)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got JobView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, JobCompleted, got.Status)
	assert.True(t, got.HasReport)

	resp, err = http.Get(ts.URL + "/jobs/unknown")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReportServingAndDownload(t *testing.T) {
	html := "<html><title>Negotiation Strategy Report: Customer C</title></html>"
	srv, ts := newTestServer(t, successFactory(&report.Report{CustomerName: "Customer C", HTML: html}), &stubLister{})

	view := startJob(t, ts, "Customer C")
	job, _ := srv.jobs.Get(view.ID)
	waitForStatus(t, job, JobCompleted)

	resp, err := http.Get(ts.URL + "/reports/" + view.ID)
	require.NoError(t, err)
	var b bytes.Buffer
	b.ReadFrom(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, html, b.String())

	resp, err = http.Get(ts.URL + "/reports/" + view.ID + "/download")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "Negotiation_Report_Customer_C.html")
}

func TestReportNotReady(t *testing.T) {
	block := make(chan struct{})
	factory := func(hm *hooks.Manager) ReportRunner {
		return &scriptedRunner{hm: hm, rep: &report.Report{CustomerName: "Customer C"}, block: block}
	}
	srv, ts := newTestServer(t, factory, &stubLister{})

	view := startJob(t, ts, "Customer C")
	resp, err := http.Get(ts.URL + "/reports/" + view.ID)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	close(block)
	job, _ := srv.jobs.Get(view.ID)
	waitForStatus(t, job, JobCompleted)
}

func TestProgressWebSocketStream(t *testing.T) {
	srv, ts := newTestServer(t, successFactory(&report.Report{CustomerName: "Customer C"}), &stubLister{})

	view := startJob(t, ts, "Customer C")
	job, _ := srv.jobs.Get(view.ID)
	waitForStatus(t, job, JobCompleted)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?job=" + view.ID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	var events []string
	for {
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var frame struct {
			Event string `json:"event"`
		}
		if err := conn.ReadJSON(&frame); err != nil {
			break
		}
		events = append(events, frame.Event)
	}

	require.NotEmpty(t, events)
	assert.Equal(t, "report_started", events[0])
	assert.Equal(t, "job_completed", events[len(events)-1])
}

func TestProgressWebSocketUnknownJob(t *testing.T) {
	_, ts := newTestServer(t, successFactory(&report.Report{}), &stubLister{})

	resp, err := http.Get(ts.URL + "/ws?job=unknown")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
