package testutil

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/ozdemiry/nutrition-api/internal/ai"
)

// --- MockSearchProvider ---

// MockSearchProvider is a mock implementation of ai.SearchProvider.
type MockSearchProvider struct {
	SearchFunc func(ctx context.Context, query string, count int) ([]ai.SearchResult, error)

	// Calls counts Search invocations.
	Calls atomic.Int32
}

func (m *MockSearchProvider) Search(ctx context.Context, query string, count int) ([]ai.SearchResult, error) {
	m.Calls.Add(1)
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query, count)
	}
	return nil, fmt.Errorf("Search not configured")
}

// --- MockExtractionProvider ---

// MockExtractionProvider is a mock implementation of ai.ExtractionProvider.
// By default NewSession returns a MockExtractionSession delegating to
// ExtractFunc; set NewSessionFunc to override session creation entirely.
type MockExtractionProvider struct {
	NewSessionFunc func(ctx context.Context) (ai.ExtractionSession, error)
	ExtractFunc    func(ctx context.Context, url string, instruction string) (*ai.ExtractionResult, error)

	// Sessions holds every session handed out, so tests can assert Close
	// was called.
	Sessions []*MockExtractionSession
}

func (m *MockExtractionProvider) NewSession(ctx context.Context) (ai.ExtractionSession, error) {
	if m.NewSessionFunc != nil {
		return m.NewSessionFunc(ctx)
	}
	session := &MockExtractionSession{ExtractFunc: m.ExtractFunc}
	m.Sessions = append(m.Sessions, session)
	return session, nil
}

// MockExtractionSession is a mock implementation of ai.ExtractionSession.
type MockExtractionSession struct {
	ExtractFunc func(ctx context.Context, url string, instruction string) (*ai.ExtractionResult, error)

	// AttemptedURLs records the candidate URLs passed to Extract, in order.
	AttemptedURLs []string
	// Closed reports whether Close has been called.
	Closed bool
}

func (m *MockExtractionSession) Extract(ctx context.Context, url string, instruction string) (*ai.ExtractionResult, error) {
	m.AttemptedURLs = append(m.AttemptedURLs, url)
	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, url, instruction)
	}
	return nil, fmt.Errorf("Extract not configured")
}

func (m *MockExtractionSession) Close() error {
	m.Closed = true
	return nil
}
