package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"supportlens.app/triage/internal/analysis"
	"supportlens.app/triage/internal/http/handler"
	"supportlens.app/triage/internal/model"
)

var _ = Describe("AnalysisHandler", func() {
	var (
		router *gin.Engine
		svc    *mockAnalysisService
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		svc = &mockAnalysisService{}
		h := handler.NewAnalysisHandler(svc, "X-Trace-Id")

		router.POST("/api/v1/analysis", h.Analyze)
	})

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	Describe("Analyze", func() {
		It("returns 200 with the full analysis payload", func() {
			var gotReq model.AnalysisRequest
			svc.analyzeFn = func(_ context.Context, req model.AnalysisRequest) (*model.AnalysisResult, error) {
				gotReq = req
				return &model.AnalysisResult{
					Summary:    "Issue Summary:\nExport fails",
					Confidence: 0.7,
					RelatedTickets: []model.RelatedTicket{
						{ID: 42, Subject: "Export fails on 8.3", URL: "https://support.example.com/agent/tickets/42"},
					},
					RelatedDocs: []model.RelatedDoc{
						{Title: "Export guide", URL: "https://docs.example.com/export"},
					},
					Resolution:     model.ResolutionUpgrade,
					Recommendation: "Upgrade to 8.4.",
				}, nil
			}

			w := post(`{"ticket_id": 12345}`)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(gotReq.TicketID).To(Equal(int64(12345)))
			Expect(gotReq.QueryText).To(BeEmpty())

			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["confidence"]).To(Equal(0.7))
			Expect(resp["resolution"]).To(Equal("upgrade"))
			Expect(resp["recommended_solution"]).To(Equal("Upgrade to 8.4."))
			tickets := resp["related_tickets"].([]any)
			Expect(tickets).To(HaveLen(1))
			docs := resp["related_docs"].([]any)
			Expect(docs).To(HaveLen(1))
		})

		It("passes a free-form query through to the service", func() {
			var gotReq model.AnalysisRequest
			svc.analyzeFn = func(_ context.Context, req model.AnalysisRequest) (*model.AnalysisResult, error) {
				gotReq = req
				return &model.AnalysisResult{Resolution: model.ResolutionUnknown}, nil
			}

			w := post(`{"query": "export hangs after upgrade"}`)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(gotReq.TicketID).To(BeZero())
			Expect(gotReq.QueryText).To(Equal("export hangs after upgrade"))
		})

		It("serializes empty result lists as arrays, not null", func() {
			svc.analyzeFn = func(_ context.Context, _ model.AnalysisRequest) (*model.AnalysisResult, error) {
				return &model.AnalysisResult{Resolution: model.ResolutionUnknown}, nil
			}

			w := post(`{"ticket_id": 7}`)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring(`"related_tickets":[]`))
			Expect(w.Body.String()).To(ContainSubstring(`"related_docs":[]`))
		})

		It("returns 400 on a negative ticket id without calling the service", func() {
			w := post(`{"ticket_id": -1}`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(svc.analyzeCalls).To(BeZero())
		})

		It("returns 400 on an oversized query without calling the service", func() {
			w := post(`{"query": "` + strings.Repeat("x", 3000) + `"}`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(svc.analyzeCalls).To(BeZero())
		})

		It("returns 400 on a body that is not JSON", func() {
			w := post(`not json at all`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(svc.analyzeCalls).To(BeZero())
		})

		It("returns 400 when the service rejects the request shape", func() {
			svc.analyzeFn = func(_ context.Context, _ model.AnalysisRequest) (*model.AnalysisResult, error) {
				return nil, analysis.ErrInvalidRequest
			}

			w := post(`{"ticket_id": 7, "query": "both set"}`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))

			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["error"]).To(ContainSubstring("exactly one"))
		})

		It("returns 504 when the caller deadline expired", func() {
			svc.analyzeFn = func(_ context.Context, _ model.AnalysisRequest) (*model.AnalysisResult, error) {
				return nil, analysis.ErrRequestTimeout
			}

			w := post(`{"ticket_id": 7}`)

			Expect(w.Code).To(Equal(http.StatusGatewayTimeout))
		})

		It("returns 500 on an unexpected service failure", func() {
			svc.analyzeFn = func(_ context.Context, _ model.AnalysisRequest) (*model.AnalysisResult, error) {
				return nil, context.DeadlineExceeded
			}

			w := post(`{"ticket_id": 7}`)

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
		})
	})
})
