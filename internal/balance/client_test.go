package balance

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

const okBody = `{"usage":{"standard":{"userTokens":100,"totalAllowance":1000,"orgOverageUsed":0,"usedRatio":0.1},"endDate":1767225600000}}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *test.Hook) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return NewClient(
		WithEndpoint(server.URL),
		WithHTTPClient(server.Client()),
		WithDelay(time.Millisecond),
		WithLogger(logger),
	), hook
}

func TestFetch(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer fk-test-key-123" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("x-factory-client"); got != "web-browser" {
			t.Errorf("x-factory-client = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}
		_, _ = w.Write([]byte(okBody))
	})

	info, err := client.Fetch(context.Background(), "fk-test-key-123")
	if err != nil {
		t.Fatalf("Fetch() unexpected error: %v", err)
	}
	if info.Used != 100 || info.Allowance != 1000 || info.Remaining != 900 {
		t.Errorf("Fetch() = %+v", info)
	}
	if info.PercentUsed != 10 || info.Exceeded {
		t.Errorf("percent = %v exceeded = %v", info.PercentUsed, info.Exceeded)
	}
	if info.ExpiryDate != "2026-01-01T00:00:00Z" {
		t.Errorf("ExpiryDate = %q", info.ExpiryDate)
	}
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		wantCategory string
		check        func(t *testing.T, err error)
	}{
		{
			name:         "unauthorized",
			status:       http.StatusUnauthorized,
			body:         `{"error":"invalid key"}`,
			wantCategory: CategoryAuthFailure,
			check: func(t *testing.T, err error) {
				var httpErr *HTTPError
				if !errors.As(err, &httpErr) {
					t.Fatalf("error = %T, want *HTTPError", err)
				}
				if httpErr.StatusCode != 401 || !strings.Contains(httpErr.Body, "invalid key") {
					t.Errorf("HTTPError = %+v", httpErr)
				}
			},
		},
		{
			name:         "rate limited",
			status:       http.StatusTooManyRequests,
			wantCategory: CategoryRateLimit,
		},
		{
			name:         "server error",
			status:       http.StatusBadGateway,
			wantCategory: CategoryServerError,
		},
		{
			name:         "missing fields",
			status:       http.StatusOK,
			body:         `{"usage":{"standard":{"userTokens":1}}}`,
			wantCategory: CategoryFormat,
			check: func(t *testing.T, err error) {
				var shapeErr *ShapeError
				if !errors.As(err, &shapeErr) {
					t.Fatalf("error = %T, want *ShapeError", err)
				}
				if !strings.Contains(shapeErr.Error(), "totalAllowance") {
					t.Errorf("ShapeError = %v", shapeErr)
				}
			},
		},
		{
			name:         "not json",
			status:       http.StatusOK,
			body:         `<html>login</html>`,
			wantCategory: CategoryFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.Fetch(context.Background(), "fk-test-key-123")
			if err == nil {
				t.Fatal("Fetch() expected error")
			}
			if got := Categorize(err); got != tt.wantCategory {
				t.Errorf("Categorize() = %q, want %q", got, tt.wantCategory)
			}
			if tt.check != nil {
				tt.check(t, err)
			}
		})
	}
}

func TestFetchNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	logger, _ := test.NewNullLogger()
	client := NewClient(WithEndpoint(url), WithLogger(logger))

	_, err := client.Fetch(context.Background(), "fk-test-key-123")
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("Fetch() error = %v, want *NetworkError", err)
	}
	if Categorize(err) != CategoryNetwork {
		t.Errorf("Categorize() = %q", Categorize(err))
	}
}

func TestFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)
	client.client.Timeout = 50 * time.Millisecond

	_, err := client.Fetch(context.Background(), "fk-test-key-123")
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("Fetch() error = %v, want *NetworkError", err)
	}
}

func TestFetchAll(t *testing.T) {
	var (
		mu    sync.Mutex
		order []string
	)
	client, hook := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		mu.Lock()
		order = append(order, key)
		mu.Unlock()
		if key == "fk-bad-key-0002" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(okBody))
	})

	keys := []string{"fk-good-key-001", "fk-bad-key-0002", "fk-good-key-003"}
	results := client.FetchAll(context.Background(), keys)

	if len(results) != 2 {
		t.Fatalf("FetchAll() returned %d results, want 2", len(results))
	}
	if _, ok := results["fk-bad-key-0002"]; ok {
		t.Error("failed key should be absent from results")
	}
	mu.Lock()
	defer mu.Unlock()
	if strings.Join(order, ",") != strings.Join(keys, ",") {
		t.Errorf("request order = %v", order)
	}

	warned := false
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && strings.Contains(e.Message, "failed to query balance") {
			warned = true
		}
	}
	if !warned {
		t.Error("failure was not logged")
	}
}

func TestFetchAllStopsOnCancel(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(okBody))
	})
	client.delay = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	results := client.FetchAll(ctx, []string{"fk-key-one-0001", "fk-key-two-0002"})
	if calls.Load() != 1 || len(results) != 1 {
		t.Errorf("calls = %d results = %d, want 1/1", calls.Load(), len(results))
	}
}

func TestParseProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("remaining never underflows and exceeded follows the ratio", prop.ForAll(
		func(used, allowance uint32, ratio float64) bool {
			body := `{"usage":{"standard":{"userTokens":` + strconv.FormatUint(uint64(used), 10) +
				`,"totalAllowance":` + strconv.FormatUint(uint64(allowance), 10) +
				`,"orgOverageUsed":0,"usedRatio":` + strconv.FormatFloat(ratio, 'f', -1, 64) + `}}}`
			info, err := Parse([]byte(body))
			if err != nil {
				return false
			}
			if used >= allowance && info.Remaining != 0 {
				return false
			}
			if used < allowance && info.Remaining != uint64(allowance-used) {
				return false
			}
			return info.Exceeded == (info.UsedRatio > 1.0) && info.ExpiryDate == ""
		},
		gen.UInt32(),
		gen.UInt32(),
		gen.Float64Range(0, 3),
	))

	properties.TestingRun(t)
}

func TestParseExceeded(t *testing.T) {
	body := `{"usage":{"standard":{"userTokens":1500,"totalAllowance":1000,"orgOverageUsed":500,"usedRatio":1.5}}}`
	info, err := Parse([]byte(body))
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	if !info.Exceeded || info.Remaining != 0 || info.Overage != 500 || info.PercentUsed != 150 {
		t.Errorf("Parse() = %+v", info)
	}
}
