package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestPostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer k" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}
		var in map[string]string
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": in["msg"]})
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), map[string]string{"Authorization": "Bearer k"})
	var out map[string]string
	if err := c.PostJSON(context.Background(), srv.URL+"/v1/x", map[string]string{"msg": "hi"}, &out); err != nil {
		t.Fatalf("PostJSON() error = %v", err)
	}
	if out["echo"] != "hi" {
		t.Errorf("echo = %q, want hi", out["echo"])
	}
}

func TestPostJSONStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		retryable bool
	}{
		{"bad request", http.StatusBadRequest, false},
		{"unauthorized", http.StatusUnauthorized, false},
		{"rate limited", http.StatusTooManyRequests, true},
		{"server error", http.StatusInternalServerError, true},
		{"bad gateway", http.StatusBadGateway, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer srv.Close()

			err := NewClient(srv.Client(), nil).PostJSON(context.Background(), srv.URL, struct{}{}, &struct{}{})
			var se *StatusError
			if !errors.As(err, &se) {
				t.Fatalf("error = %v, want StatusError", err)
			}
			if se.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", se.StatusCode, tt.status)
			}
			if se.Body != "nope" {
				t.Errorf("Body = %q, want nope", se.Body)
			}
			if got := IsRetryable(err); got != tt.retryable {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.retryable)
			}
		})
	}
}

func TestPostJSONNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewClient(nil, nil).PostJSON(context.Background(), url, struct{}{}, &struct{}{})
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("error = %v, want ErrNetwork", err)
	}
	if !IsRetryable(err) {
		t.Error("network error should be retryable")
	}
}

func TestPostJSONDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	err := NewClient(srv.Client(), nil).PostJSON(context.Background(), srv.URL, struct{}{}, &struct{}{})
	if err == nil || IsRetryable(err) {
		t.Errorf("error = %v, want non-retryable decode error", err)
	}
}

func TestRetry(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	tests := []struct {
		name      string
		failures  int
		retryable bool
		wantCalls int32
		wantErr   bool
	}{
		{"success", 0, true, 1, false},
		{"recovers", 2, true, 3, false},
		{"exhausted", 5, true, 3, true},
		{"permanent", 5, false, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			err := Retry(ctx, 3, time.Millisecond, func() error {
				n := atomic.AddInt32(&calls, 1)
				if int(n) <= tt.failures {
					if tt.retryable {
						return Retryable(boom)
					}
					return boom
				}
				return nil
			})
			if (err != nil) != tt.wantErr {
				t.Errorf("Retry() error = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetryContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 3, time.Hour, func() error {
		return Retryable(ErrNetwork)
	})
	if err != context.Canceled {
		t.Errorf("Retry() error = %v, want context.Canceled", err)
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
	err := Retryable(ErrNetwork)
	if err.Error() != ErrNetwork.Error() {
		t.Errorf("Error() = %q, want %q", err.Error(), ErrNetwork.Error())
	}
	if !errors.Is(err, ErrNetwork) {
		t.Error("Retryable should unwrap to the original error")
	}
	if IsRetryable(ErrNetwork) {
		t.Error("unwrapped error should not be retryable")
	}
}

func TestRetryAfterHeader(t *testing.T) {
	tests := []struct {
		header string
		want   time.Duration
	}{
		{"", 0},
		{"2", 2 * time.Second},
		{"soon", 0},
	}
	for _, tt := range tests {
		if got := retryAfter(tt.header); got != tt.want {
			t.Errorf("retryAfter(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}

	date := time.Now().Add(time.Hour).UTC().Format(http.TimeFormat)
	if got := retryAfter(date); got < 59*time.Minute {
		t.Errorf("retryAfter(%q) = %v, want about an hour", date, got)
	}
}

func TestPostJSONRetryAfterIsCapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "3600")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := NewClient(srv.Client(), nil).PostJSON(context.Background(), srv.URL, struct{}{}, &struct{}{})
	var re *RetryableError
	if !errors.As(err, &re) {
		t.Fatalf("error = %v, want RetryableError", err)
	}
	if re.After != maxRetryAfter {
		t.Errorf("After = %v, want cap %v", re.After, maxRetryAfter)
	}
}

func TestWaitFor(t *testing.T) {
	boom := errors.New("boom")
	if got := waitFor(Retryable(boom), time.Second); got != time.Second {
		t.Errorf("waitFor without hint = %v, want 1s", got)
	}
	if got := waitFor(RetryableAfter(boom, 5*time.Second), time.Second); got != 5*time.Second {
		t.Errorf("waitFor with longer hint = %v, want 5s", got)
	}
	if got := waitFor(RetryableAfter(boom, time.Millisecond), time.Second); got != time.Second {
		t.Errorf("waitFor with shorter hint = %v, want 1s", got)
	}
}
