package runstore

import (
	"time"

	"github.com/huangsam/redundant/internal/contract"
	"github.com/huangsam/redundant/schema"
	"github.com/stretchr/testify/mock"
)

// MockAnalysisStore is a mock implementation of AnalysisStore for testing.
type MockAnalysisStore struct {
	mock.Mock
}

var _ contract.AnalysisStore = &MockAnalysisStore{} // Compile-time check

// BeginAnalysis implements the AnalysisStore interface.
func (m *MockAnalysisStore) BeginAnalysis(startTime time.Time, configParams map[string]any) (int64, error) {
	args := m.Called(startTime, configParams)
	return args.Get(0).(int64), args.Error(1)
}

// EndAnalysis implements the AnalysisStore interface.
func (m *MockAnalysisStore) EndAnalysis(analysisID int64, endTime time.Time, summary contract.RunSummary) error {
	args := m.Called(analysisID, endTime, summary)
	return args.Error(0)
}

// RecordPairs implements the AnalysisStore interface.
func (m *MockAnalysisStore) RecordPairs(analysisID int64, pairs []schema.RedundancyPair, clusterOf map[string]int) error {
	args := m.Called(analysisID, pairs, clusterOf)
	return args.Error(0)
}

// GetStatus implements the AnalysisStore interface.
func (m *MockAnalysisStore) GetStatus() (schema.AnalysisStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.AnalysisStatus), args.Error(1)
}

// GetAllAnalysisRuns implements the AnalysisStore interface.
func (m *MockAnalysisStore) GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error) {
	args := m.Called()
	return args.Get(0).([]schema.AnalysisRunRecord), args.Error(1)
}

// GetAllPairs implements the AnalysisStore interface.
func (m *MockAnalysisStore) GetAllPairs() ([]schema.PairRecord, error) {
	args := m.Called()
	return args.Get(0).([]schema.PairRecord), args.Error(1)
}

// Close implements the AnalysisStore interface.
func (m *MockAnalysisStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
