package headless

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/avilchesi/pronostico-service/internal/forecast"
)

func TestNewRequiresURL(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error for missing url")
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	t.Parallel()

	fetcher, err := New(Config{URL: "https://example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer fetcher.Close()

	if fetcher.cfg.NavigationTimeout != defaultNavigationTimeout {
		t.Fatalf("expected default navigation timeout, got %v", fetcher.cfg.NavigationTimeout)
	}
	if fetcher.cfg.ReadinessTimeout != defaultReadinessTimeout {
		t.Fatalf("expected default readiness timeout, got %v", fetcher.cfg.ReadinessTimeout)
	}
	if fetcher.cfg.ReadySelector != defaultReadySelector {
		t.Fatalf("expected default ready selector, got %q", fetcher.cfg.ReadySelector)
	}
}

func TestClassifyDeadlineVersusLaunch(t *testing.T) {
	t.Parallel()

	err := classify(context.DeadlineExceeded, forecast.FetchKindReadinessTimeout)
	var fe *forecast.FetchError
	if !errors.As(err, &fe) || fe.Kind != forecast.FetchKindReadinessTimeout {
		t.Fatalf("expected readiness timeout kind, got %v", err)
	}

	err = classify(errors.New("exec: chrome not found"), forecast.FetchKindNavigationTimeout)
	if !errors.As(err, &fe) || fe.Kind != forecast.FetchKindSessionLaunch {
		t.Fatalf("expected session launch kind, got %v", err)
	}
}

func TestFetchCanceledContext(t *testing.T) {
	t.Parallel()

	fetcher, err := New(Config{URL: "https://example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer fetcher.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = fetcher.Fetch(ctx)
	var fe *forecast.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
}

func TestFetchRendersDynamicTable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<!doctype html><html><body><script>document.body.innerHTML = '<table class="pronostico"><tr><td>34</td></tr></table>';</script></body></html>`)
	}))
	defer srv.Close()

	fetcher, err := New(Config{
		URL:               srv.URL,
		NavigationTimeout: 10 * time.Second,
		ReadinessTimeout:  10 * time.Second,
	})
	if err != nil {
		t.Skipf("chromedp unavailable: %v", err)
	}
	defer fetcher.Close()

	body, err := fetcher.Fetch(context.Background())
	if err != nil {
		t.Skipf("headless fetch failed: %v", err)
	}
	if !strings.Contains(string(body), "pronostico") {
		t.Fatal("rendered body missing dynamic table")
	}
}
