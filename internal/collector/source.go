package collector

import (
	"context"
	"strings"

	"FuzzyDecision/internal/model"
)

// Table is a loaded indicator table. Headers[1:4] name the RSI, MACD and
// ADX columns.
type Table struct {
	Headers []string
	Rows    []model.Row
}

// Source loads indicator tables.
type Source interface {
	Load(ctx context.Context) (*Table, error)
	Name() string
}

// NewSource picks an HTTP source for http(s) locations and a file source otherwise.
func NewSource(location, apiKey, proxyURL string) Source {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return NewHTTPSource(location, apiKey, proxyURL)
	}
	return &FileSource{Path: location}
}

// StaticSource returns a fixed table, for development and testing.
type StaticSource struct {
	Table *Table
	Err   error
}

func (s *StaticSource) Name() string { return "static" }

func (s *StaticSource) Load(_ context.Context) (*Table, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Table, nil
}
