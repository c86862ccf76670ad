package rates

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"costbook/internal/core"
)

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{
			name:   "valid table",
			status: http.StatusOK,
			body:   `{"USD":1,"ILS":3.6,"GBP":0.8,"EURO":0.9}`,
		},
		{
			name:   "extra currencies are kept",
			status: http.StatusOK,
			body:   `{"USD":1,"ILS":3.6,"GBP":0.8,"EURO":0.9,"JPY":150}`,
		},
		{
			name:    "missing required code",
			status:  http.StatusOK,
			body:    `{"USD":1,"ILS":3.6,"GBP":0.8}`,
			wantErr: ErrInvalidRateData,
		},
		{
			name:    "non-numeric rate",
			status:  http.StatusOK,
			body:    `{"USD":1,"ILS":"a lot","GBP":0.8,"EURO":0.9}`,
			wantErr: ErrInvalidRateData,
		},
		{
			name:    "non-positive rate",
			status:  http.StatusOK,
			body:    `{"USD":1,"ILS":0,"GBP":0.8,"EURO":0.9}`,
			wantErr: ErrInvalidRateData,
		},
		{
			name:    "not a flat object",
			status:  http.StatusOK,
			body:    `[1,2,3]`,
			wantErr: ErrInvalidRateData,
		},
		{
			name:    "provider error status",
			status:  http.StatusInternalServerError,
			body:    `oops`,
			wantErr: ErrInvalidRateData,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := serve(t, tc.status, tc.body)
			client := NewClient(srv.URL, 5*time.Second)

			table, err := client.Fetch(context.Background())
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("fetch: %v", err)
			}
			for _, cur := range []core.Currency{core.USD, core.ILS, core.GBP, core.EURO} {
				if _, ok := table[cur]; !ok {
					t.Fatalf("table missing %s", cur)
				}
			}
		})
	}
}

func TestFetchNoRateSource(t *testing.T) {
	client := NewClient("", 5*time.Second)
	if _, err := client.Fetch(context.Background()); !errors.Is(err, ErrNoRateSource) {
		t.Fatalf("expected ErrNoRateSource, got %v", err)
	}
}

func TestFetchUnreachableProvider(t *testing.T) {
	srv := serve(t, http.StatusOK, `{}`)
	url := srv.URL
	srv.Close()

	client := NewClient(url, time.Second)
	if _, err := client.Fetch(context.Background()); err == nil {
		t.Fatal("expected error for unreachable provider")
	}
}
