package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentmesh/contentmesh/audit"
	"github.com/contentmesh/contentmesh/core"
	"github.com/contentmesh/contentmesh/dossier"
	"github.com/contentmesh/contentmesh/internal/testutil"
	"github.com/contentmesh/contentmesh/model"
	"github.com/contentmesh/contentmesh/pipeline"
	"github.com/contentmesh/contentmesh/sanitize"
	"github.com/contentmesh/contentmesh/search"
	"github.com/contentmesh/contentmesh/structured"
	"github.com/contentmesh/contentmesh/synthesis"
	"github.com/contentmesh/contentmesh/topics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type serverFixture struct {
	scanModel    *model.MockModel
	outlineModel *model.MockModel
	writerModel  *model.MockModel
	auditModel   *model.MockModel
	server       *Server
}

func newServerFixture(t *testing.T, optFns ...func(o *Options)) *serverFixture {
	t.Helper()
	f := &serverFixture{
		scanModel:    model.NewMockModel("scanner", "mock"),
		outlineModel: model.NewMockModel("outliner", "mock"),
		writerModel:  model.NewMockModel("writer", "mock"),
		auditModel:   model.NewMockModel("auditor", "mock"),
	}

	scanner := topics.NewScanner(
		structured.NewContract([]structured.Generator{f.scanModel}),
		func(o *topics.Options) { o.FocusAreas = []string{"pumps"} })

	searcher := search.NewStaticSearcher(search.Result{
		Title:      "Pump efficiency field guide",
		Snippet:    "Centrifugal pumps achieve efficiencies above 85% when operated near their best efficiency point.",
		StructData: map[string]any{"discipline": "hydraulics", "doc_type": "manual"},
	})
	builder := dossier.NewBuilder(searcher, sanitize.NewSanitizer())

	synthesizer := synthesis.NewSynthesizer(
		structured.NewContract([]structured.Generator{f.outlineModel}),
		f.writerModel)

	auditor := audit.NewAuditor(
		structured.NewContract([]structured.Generator{f.auditModel}))

	orchestrator := pipeline.NewOrchestrator(scanner, builder, synthesizer, auditor)

	f.server = New(orchestrator, scanner, builder, synthesizer, auditor, optFns...)
	return f
}

func doJSON(t *testing.T, s *Server, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	f := newServerFixture(t, func(o *Options) { o.APIKey = "secret" })

	// Health stays reachable without credentials.
	rec := doJSON(t, f.server, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_AuthMiddleware(t *testing.T) {
	f := newServerFixture(t, func(o *Options) { o.APIKey = "secret" })

	rec := doJSON(t, f.server, http.MethodPost, "/v1/dossier/run",
		gin.H{"topic": "Pump Efficiency"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, f.server, http.MethodPost, "/v1/dossier/run",
		gin.H{"topic": "Pump Efficiency"}, map[string]string{"X-API-Key": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, f.server, http.MethodPost, "/v1/dossier/run",
		gin.H{"topic": "Pump Efficiency"}, map[string]string{"X-API-Key": "secret"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_NoAPIKeyDisablesAuth(t *testing.T) {
	f := newServerFixture(t)

	rec := doJSON(t, f.server, http.MethodPost, "/v1/dossier/run",
		gin.H{"topic": "Pump Efficiency"}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	f := newServerFixture(t, func(o *Options) { o.Gatherer = reg })

	rec := doJSON(t, f.server, http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Without a gatherer the route is not registered at all.
	f = newServerFixture(t)
	rec = doJSON(t, f.server, http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_PipelineRun(t *testing.T) {
	f := newServerFixture(t)
	f.scanModel.EnqueueResponse(testutil.TrendScanJSON("Pump Efficiency Gains"))
	f.outlineModel.EnqueueResponse(testutil.OutlineJSON("Pump Efficiency Gains", "Introduction"))
	f.writerModel.EnqueueResponse("Pumps operated near their best efficiency point waste less energy.")
	f.auditModel.EnqueueResponse(testutil.ClaimSetJSON())

	rec := doJSON(t, f.server, http.MethodPost, "/v1/pipeline/run", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result core.RunResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, core.StatusCompleted, result.Status)
	assert.Equal(t, "Pump Efficiency Gains", result.Topic)
}

func TestServer_PipelineRunOverrideTopic(t *testing.T) {
	f := newServerFixture(t)
	f.outlineModel.EnqueueResponse(testutil.OutlineJSON("Sealing Tech", "Introduction"))
	f.writerModel.EnqueueResponse("Mechanical seals outlast packing in continuous duty.")
	f.auditModel.EnqueueResponse(testutil.ClaimSetJSON())

	rec := doJSON(t, f.server, http.MethodPost, "/v1/pipeline/run",
		gin.H{"override_topic": "Sealing Technology Advances"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result core.RunResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "Sealing Technology Advances", result.Topic)
	assert.Equal(t, 0, f.scanModel.CallCount())
}

func TestServer_PipelineRunPrivacyViolation(t *testing.T) {
	f := newServerFixture(t)
	f.scanModel.EnqueueResponse(testutil.TrendScanJSON("Pump Efficiency Gains"))
	for i := 0; i < 2; i++ {
		f.outlineModel.EnqueueResponse(testutil.OutlineJSON("Pump Efficiency Gains", "Introduction"))
		f.writerModel.EnqueueResponse("Raw data lives at gs://plant-bucket/measurements.")
	}

	rec := doJSON(t, f.server, http.MethodPost, "/v1/pipeline/run", nil, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var result core.RunResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, core.StatusError, result.Status)
	assert.Equal(t, pipeline.ReasonPrivacyViolation, result.Reason)
}

func TestServer_TopicsRun(t *testing.T) {
	f := newServerFixture(t)
	f.scanModel.EnqueueResponse(testutil.TrendScanJSON("Pump Efficiency Gains"))

	rec := doJSON(t, f.server, http.MethodPost, "/v1/topics/run", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var selection core.TopicSelection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &selection))
	assert.Equal(t, "Pump Efficiency Gains", selection.Selected.Title)
}

func TestServer_DossierRunRequiresTopic(t *testing.T) {
	f := newServerFixture(t)

	rec := doJSON(t, f.server, http.MethodPost, "/v1/dossier/run", gin.H{}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_SynthesisRunPrivacyViolation(t *testing.T) {
	f := newServerFixture(t)
	for i := 0; i < 2; i++ {
		f.outlineModel.EnqueueResponse(testutil.OutlineJSON("Pump Efficiency", "Introduction"))
		f.writerModel.EnqueueResponse("See gs://plant-bucket/raw for the full dataset.")
	}

	d := testutil.NewDossierBuilder("Pump Efficiency").
		Document("hydraulics", "manual", "Centrifugal pumps achieve efficiencies above 85% near their best efficiency point.").
		Build()

	rec := doJSON(t, f.server, http.MethodPost, "/v1/synthesis/run",
		gin.H{"topic": "Pump Efficiency", "dossier": d}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), pipeline.ReasonPrivacyViolation)
}

func TestServer_AuditRun(t *testing.T) {
	f := newServerFixture(t)
	f.auditModel.EnqueueResponse(testutil.ClaimSetJSON("pumps are efficient near BEP"))
	f.auditModel.EnqueueResponse(testutil.VerdictJSON(true, "keep"))

	d := testutil.NewDossierBuilder("Pump Efficiency").
		Document("hydraulics", "manual", "Centrifugal pumps achieve efficiencies above 85% near their best efficiency point.").
		Build()
	article := testutil.Article("Pump Efficiency",
		"Pumps operated near their best efficiency point waste less energy.")

	rec := doJSON(t, f.server, http.MethodPost, "/v1/audit/run",
		gin.H{"article": article, "dossier": d}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Report  *core.AuditReport `json:"report"`
		Article *core.Article     `json:"article"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Report)
	assert.Equal(t, core.AuditPassed, resp.Report.Status)
	require.NotNil(t, resp.Article)
	assert.Contains(t, resp.Article.FullText, "## Technical References")
}
