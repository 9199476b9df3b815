package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/ozdemiry/nutrition-api/internal/ai"
	"github.com/ozdemiry/nutrition-api/internal/models"
	"github.com/ozdemiry/nutrition-api/internal/testutil"
)

func newTestService(search *testutil.MockSearchProvider, extractor *testutil.MockExtractionProvider) *NutritionService {
	return NewNutritionService(testutil.TestConfig(), search, extractor)
}

func TestAcquire_EmptyFilterShortCircuits(t *testing.T) {
	search := &testutil.MockSearchProvider{
		SearchFunc: func(ctx context.Context, query string, count int) ([]ai.SearchResult, error) {
			return testutil.SearchResultsFor(
				"https://www.amazon.com/apple-nutrition",
				"https://www.instagram.com/p/abc123",
				"https://example.com/apple.jpg",
			), nil
		},
	}
	extractor := &testutil.MockExtractionProvider{
		NewSessionFunc: func(ctx context.Context) (ai.ExtractionSession, error) {
			t.Fatal("extraction session should not be opened when no candidates survive filtering")
			return nil, nil
		},
	}

	svc := newTestService(search, extractor)
	outcome, err := svc.Acquire(context.Background(), "apple", "en")
	if err != nil {
		t.Fatalf("Acquire error: %v", err)
	}
	if outcome.Status != StatusFailed {
		t.Errorf("outcome status = %v, want StatusFailed", outcome.Status)
	}
	if outcome.Reason != ReasonNoSuitablePages {
		t.Errorf("outcome reason = %q, want %q", outcome.Reason, ReasonNoSuitablePages)
	}
}

func TestAcquire_AcceptsPartialDataAfterFailures(t *testing.T) {
	search := &testutil.MockSearchProvider{
		SearchFunc: func(ctx context.Context, query string, count int) ([]ai.SearchResult, error) {
			return testutil.SearchResultsFor(
				"https://example.com/one",
				"https://example.com/two",
				"https://example.com/three",
			), nil
		},
	}
	extractor := &testutil.MockExtractionProvider{
		ExtractFunc: func(ctx context.Context, url string, instruction string) (*ai.ExtractionResult, error) {
			if url != "https://example.com/three" {
				return nil, errors.New("navigation error")
			}
			result := testutil.SentinelExtractionResult(models.SentinelEN)
			result.Calories = "95 kcal"
			return result, nil
		},
	}

	svc := newTestService(search, extractor)
	outcome, err := svc.Acquire(context.Background(), "apple", "en")
	if err != nil {
		t.Fatalf("Acquire error: %v", err)
	}
	if outcome.Status != StatusValidated {
		t.Fatalf("outcome status = %v, want StatusValidated", outcome.Status)
	}
	if outcome.Record.Calories != "95 kcal" {
		t.Errorf("record calories = %q, want '95 kcal'", outcome.Record.Calories)
	}
	if outcome.Record.SourceURL != "https://example.com/three" {
		t.Errorf("record source = %q, want third candidate", outcome.Record.SourceURL)
	}
}

func TestAcquire_AllSentinelKeepsLastRecord(t *testing.T) {
	search := &testutil.MockSearchProvider{
		SearchFunc: func(ctx context.Context, query string, count int) ([]ai.SearchResult, error) {
			return testutil.SearchResultsFor(
				"https://example.com/one",
				"https://example.com/two",
				"https://example.com/three",
			), nil
		},
	}
	extractor := &testutil.MockExtractionProvider{
		ExtractFunc: func(ctx context.Context, url string, instruction string) (*ai.ExtractionResult, error) {
			return testutil.SentinelExtractionResult(models.SentinelEN), nil
		},
	}

	svc := newTestService(search, extractor)
	outcome, err := svc.Acquire(context.Background(), "apple", "en")
	if err != nil {
		t.Fatalf("Acquire error: %v", err)
	}
	if outcome.Status != StatusUnvalidated {
		t.Fatalf("outcome status = %v, want StatusUnvalidated", outcome.Status)
	}
	if outcome.Record.SourceURL != "https://example.com/three" {
		t.Errorf("record source = %q, want the last attempted candidate", outcome.Record.SourceURL)
	}
}

func TestAcquire_AllAttemptsFail(t *testing.T) {
	search := &testutil.MockSearchProvider{
		SearchFunc: func(ctx context.Context, query string, count int) ([]ai.SearchResult, error) {
			return testutil.SearchResultsFor(
				"https://example.com/one",
				"https://example.com/two",
				"https://example.com/three",
			), nil
		},
	}
	extractor := &testutil.MockExtractionProvider{
		ExtractFunc: func(ctx context.Context, url string, instruction string) (*ai.ExtractionResult, error) {
			return nil, errors.New("extraction timed out")
		},
	}

	svc := newTestService(search, extractor)
	outcome, err := svc.Acquire(context.Background(), "apple", "en")
	if err != nil {
		t.Fatalf("Acquire error: %v", err)
	}
	if outcome.Status != StatusFailed {
		t.Fatalf("outcome status = %v, want StatusFailed", outcome.Status)
	}
	if outcome.Reason != ReasonNoExtraction {
		t.Errorf("outcome reason = %q, want %q", outcome.Reason, ReasonNoExtraction)
	}
	if len(extractor.Sessions) != 1 || len(extractor.Sessions[0].AttemptedURLs) != 3 {
		t.Errorf("every candidate should have been attempted exactly once")
	}
}

func TestAcquire_StopsEarlyOnValidatedRecord(t *testing.T) {
	search := &testutil.MockSearchProvider{
		SearchFunc: func(ctx context.Context, query string, count int) ([]ai.SearchResult, error) {
			return testutil.SearchResultsFor(
				"https://example.com/one",
				"https://example.com/two",
				"https://example.com/three",
			), nil
		},
	}
	extractor := &testutil.MockExtractionProvider{
		ExtractFunc: func(ctx context.Context, url string, instruction string) (*ai.ExtractionResult, error) {
			return testutil.TestExtractionResult(), nil
		},
	}

	svc := newTestService(search, extractor)
	outcome, err := svc.Acquire(context.Background(), "apple", "en")
	if err != nil {
		t.Fatalf("Acquire error: %v", err)
	}
	if outcome.Status != StatusValidated {
		t.Fatalf("outcome status = %v, want StatusValidated", outcome.Status)
	}
	if got := len(extractor.Sessions[0].AttemptedURLs); got != 1 {
		t.Errorf("extraction attempts = %d, want 1 (early stop on validation)", got)
	}
}

func TestAcquire_BoundsCandidateCount(t *testing.T) {
	search := &testutil.MockSearchProvider{
		SearchFunc: func(ctx context.Context, query string, count int) ([]ai.SearchResult, error) {
			if count != searchResultCount {
				t.Errorf("requested search count = %d, want %d", count, searchResultCount)
			}
			var urls []string
			for i := 0; i < 6; i++ {
				urls = append(urls, fmt.Sprintf("https://example.com/page-%d", i))
			}
			return testutil.SearchResultsFor(urls...), nil
		},
	}
	extractor := &testutil.MockExtractionProvider{
		ExtractFunc: func(ctx context.Context, url string, instruction string) (*ai.ExtractionResult, error) {
			return nil, errors.New("always fails")
		},
	}

	svc := newTestService(search, extractor)
	if _, err := svc.Acquire(context.Background(), "apple", "en"); err != nil {
		t.Fatalf("Acquire error: %v", err)
	}
	if got := len(extractor.Sessions[0].AttemptedURLs); got != maxCandidates {
		t.Errorf("attempted candidates = %d, want %d", got, maxCandidates)
	}
}

func TestAcquire_SearchFailureIsInternal(t *testing.T) {
	search := &testutil.MockSearchProvider{
		SearchFunc: func(ctx context.Context, query string, count int) ([]ai.SearchResult, error) {
			return nil, errors.New("no search providers available")
		},
	}
	extractor := &testutil.MockExtractionProvider{}

	svc := newTestService(search, extractor)
	if _, err := svc.Acquire(context.Background(), "apple", "en"); err == nil {
		t.Fatal("Acquire should return an error when the search provider fails")
	}
}

func TestAcquire_SessionClosedEvenWhenAllAttemptsFail(t *testing.T) {
	search := &testutil.MockSearchProvider{
		SearchFunc: func(ctx context.Context, query string, count int) ([]ai.SearchResult, error) {
			return testutil.SearchResultsFor("https://example.com/one"), nil
		},
	}
	extractor := &testutil.MockExtractionProvider{
		ExtractFunc: func(ctx context.Context, url string, instruction string) (*ai.ExtractionResult, error) {
			return nil, errors.New("provider error")
		},
	}

	svc := newTestService(search, extractor)
	if _, err := svc.Acquire(context.Background(), "apple", "en"); err != nil {
		t.Fatalf("Acquire error: %v", err)
	}
	if len(extractor.Sessions) != 1 || !extractor.Sessions[0].Closed {
		t.Error("extraction session was not closed")
	}
}

func TestAcquire_UsesLocaleInstructionAndSentinel(t *testing.T) {
	var seenInstruction string
	search := &testutil.MockSearchProvider{
		SearchFunc: func(ctx context.Context, query string, count int) ([]ai.SearchResult, error) {
			if query != "elma besin değeri" {
				t.Errorf("search query = %q, want 'elma besin değeri'", query)
			}
			return testutil.SearchResultsFor("https://example.com/elma"), nil
		},
	}
	extractor := &testutil.MockExtractionProvider{
		ExtractFunc: func(ctx context.Context, url string, instruction string) (*ai.ExtractionResult, error) {
			seenInstruction = instruction
			result := testutil.SentinelExtractionResult(models.SentinelTR)
			result.Calories = "52 kcal"
			return result, nil
		},
	}

	svc := newTestService(search, extractor)
	outcome, err := svc.Acquire(context.Background(), "elma", "tr")
	if err != nil {
		t.Fatalf("Acquire error: %v", err)
	}
	if outcome.Status != StatusValidated {
		t.Errorf("outcome status = %v, want StatusValidated", outcome.Status)
	}
	if !strings.Contains(seenInstruction, models.SentinelTR) {
		t.Errorf("instruction should embed the Turkish sentinel, got %q", seenInstruction)
	}
}

func TestAcquire_UnsupportedLanguageFallsBackToDefault(t *testing.T) {
	var queries []string
	search := &testutil.MockSearchProvider{
		SearchFunc: func(ctx context.Context, query string, count int) ([]ai.SearchResult, error) {
			queries = append(queries, query)
			return testutil.SearchResultsFor("https://example.com/elma"), nil
		},
	}
	extractor := &testutil.MockExtractionProvider{
		ExtractFunc: func(ctx context.Context, url string, instruction string) (*ai.ExtractionResult, error) {
			return testutil.TestExtractionResult(), nil
		},
	}

	svc := newTestService(search, extractor)
	for _, lang := range []string{"tr", "de", "", "klingon"} {
		if _, err := svc.Acquire(context.Background(), "elma", lang); err != nil {
			t.Fatalf("Acquire(%q) error: %v", lang, err)
		}
	}
	for i, q := range queries {
		if q != queries[0] {
			t.Errorf("query for language case %d = %q, want same as default-locale query %q", i, q, queries[0])
		}
	}
}

func TestAcquire_IdempotentAgainstFixedStubs(t *testing.T) {
	newStubs := func() (*testutil.MockSearchProvider, *testutil.MockExtractionProvider) {
		search := &testutil.MockSearchProvider{
			SearchFunc: func(ctx context.Context, query string, count int) ([]ai.SearchResult, error) {
				return testutil.SearchResultsFor(
					"https://example.com/one",
					"https://example.com/two",
				), nil
			},
		}
		extractor := &testutil.MockExtractionProvider{
			ExtractFunc: func(ctx context.Context, url string, instruction string) (*ai.ExtractionResult, error) {
				if url == "https://example.com/one" {
					return nil, errors.New("decode failure")
				}
				return testutil.TestExtractionResult(), nil
			},
		}
		return search, extractor
	}

	search, extractor := newStubs()
	svc := newTestService(search, extractor)
	first, err := svc.Acquire(context.Background(), "apple", "en")
	if err != nil {
		t.Fatalf("first Acquire error: %v", err)
	}

	search, extractor = newStubs()
	svc = newTestService(search, extractor)
	second, err := svc.Acquire(context.Background(), "apple", "en")
	if err != nil {
		t.Fatalf("second Acquire error: %v", err)
	}

	if first.Status != second.Status {
		t.Errorf("status differs across identical runs: %v vs %v", first.Status, second.Status)
	}
	if first.Record == nil || second.Record == nil || !reflect.DeepEqual(*firstCore(first.Record), *firstCore(second.Record)) {
		t.Error("records differ across identical runs")
	}
}

// firstCore strips slices/maps so records can be compared by value.
func firstCore(r *models.NutritionRecord) *models.NutritionRecord {
	c := *r
	c.Allergens = nil
	c.VitaminMinerals = nil
	return &c
}
