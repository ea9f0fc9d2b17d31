package handler_test

import (
	"context"

	"supportlens.app/triage/internal/model"
)

type mockAnalysisService struct {
	analyzeFn    func(ctx context.Context, req model.AnalysisRequest) (*model.AnalysisResult, error)
	analyzeCalls int
}

func (m *mockAnalysisService) Analyze(ctx context.Context, req model.AnalysisRequest) (*model.AnalysisResult, error) {
	m.analyzeCalls++
	if m.analyzeFn != nil {
		return m.analyzeFn(ctx, req)
	}
	return &model.AnalysisResult{Resolution: model.ResolutionUnknown}, nil
}
