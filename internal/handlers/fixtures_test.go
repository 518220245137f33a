package handlers

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/bobmcallan/etf-portal/internal/common"
	"github.com/bobmcallan/etf-portal/internal/dataset"
	"github.com/bobmcallan/etf-portal/internal/interfaces"
	"github.com/bobmcallan/etf-portal/internal/portfolio"
)

// memorySource serves catalog and series documents from memory.
type memorySource struct{}

func (memorySource) Catalog(_ context.Context) (dataset.RawCatalog, error) {
	return dataset.RawCatalog{
		"SSO":  {Name: "ProShares Ultra S&P500"},
		"SDS":  {Name: "ProShares UltraShort S&P500"},
		"FAIL": {Name: "<script>alert(1)</script>"},
	}, nil
}

func (memorySource) Series(_ context.Context, ticker string) (*dataset.RawSeries, error) {
	switch ticker {
	case "SSO":
		return &dataset.RawSeries{
			Date: []string{"1/2/20", "1/3/20"},
			NAV:  []dataset.Numeric{"10", "20"},
			YHV:  []dataset.Numeric{"100", "200"},
		}, nil
	case "SDS":
		return &dataset.RawSeries{
			Date: []string{"1/2/20"},
			NAV:  []dataset.Numeric{"30"},
			YHV:  []dataset.Numeric{"300"},
		}, nil
	}
	return nil, errors.New("upstream unavailable")
}

func testManager(t *testing.T) *portfolio.Manager {
	t.Helper()
	catalog := dataset.NewCatalog(memorySource{}, nil)
	if err := catalog.Load(context.Background()); err != nil {
		t.Fatalf("catalog load failed: %v", err)
	}
	return portfolio.NewManager(catalog, nil)
}

// memorySettings is an in-memory SettingsStore.
type memorySettings struct {
	mu       sync.Mutex
	filename string
	err      error
}

var _ interfaces.SettingsStore = (*memorySettings)(nil)

func (m *memorySettings) Filename(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filename, m.err
}

func (m *memorySettings) SetFilename(_ context.Context, v string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.filename = v
	return nil
}

func silentLogger() *common.Logger {
	return common.NewSilentLogger()
}
