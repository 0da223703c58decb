package eodhd

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bobmcallan/fundwatch/internal/interfaces"
)

func TestGetEOD_ParsesBarsAndParams(t *testing.T) {
	var gotPath, gotFrom, gotTo, gotOrder, gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		q := r.URL.Query()
		gotFrom, gotTo, gotOrder, gotToken = q.Get("from"), q.Get("to"), q.Get("order"), q.Get("api_token")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"date":"2024-06-03","open":118,"high":119,"low":117,"close":118.5,"adjusted_close":118.4,"volume":1000},
			{"date":"2024-06-04","open":"119","high":121,"low":118,"close":120,"adjusted_close":"120","volume":"2500.0"},
			{"date":"bad","close":1}
		]`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	from := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC)
	resp, err := client.GetEOD(context.Background(), "NVDA.US", interfaces.WithDateRange(from, to))
	if err != nil {
		t.Fatalf("GetEOD failed: %v", err)
	}

	if gotPath != "/eod/NVDA.US" {
		t.Errorf("expected path /eod/NVDA.US, got %s", gotPath)
	}
	if gotFrom != "2023-01-01" || gotTo != "2024-06-04" {
		t.Errorf("unexpected range %s..%s", gotFrom, gotTo)
	}
	if gotOrder != "a" {
		t.Errorf("expected ascending order, got %s", gotOrder)
	}
	if gotToken != "test-key" {
		t.Errorf("expected api token to be sent, got %q", gotToken)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(resp.Data))
	}
	if resp.Data[1].Open != 119 || resp.Data[1].AdjClose != 120 {
		t.Errorf("string numbers not parsed: %+v", resp.Data[1])
	}
	if resp.Data[1].Volume != 2500 {
		t.Errorf("expected volume 2500, got %d", resp.Data[1].Volume)
	}
}

func TestGetEOD_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("Ticker Not Found."))
	}))
	defer srv.Close()

	client := NewClient("k", WithBaseURL(srv.URL))
	_, err := client.GetEOD(context.Background(), "NOPE.US")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", apiErr.StatusCode)
	}
	if apiErr.Endpoint != "/eod/NOPE.US" {
		t.Errorf("unexpected endpoint %s", apiErr.Endpoint)
	}
}

func TestGetFundamentals(t *testing.T) {
	var gotFilter string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFilter = r.URL.Query().Get("filter")
		w.Write([]byte(`{
			"General": {"Code":"NVDA","Name":"NVIDIA Corporation","Type":"Common Stock",
				"Sector":"Technology","Industry":"Semiconductors","CountryName":"USA",
				"CountryISO":"US","WebURL":"https://www.nvidia.com"},
			"AnalystRatings": {"Rating":"4.6"}
		}`))
	}))
	defer srv.Close()

	client := NewClient("k", WithBaseURL(srv.URL))
	f, err := client.GetFundamentals(context.Background(), "NVDA.US")
	if err != nil {
		t.Fatalf("GetFundamentals failed: %v", err)
	}

	if gotFilter != "General,AnalystRatings" {
		t.Errorf("unexpected filter %q", gotFilter)
	}
	if f.Name != "NVIDIA Corporation" || f.Country != "USA" || f.WebURL != "https://www.nvidia.com" {
		t.Errorf("unexpected fundamentals %+v", f)
	}
	if f.Rating != 4.6 {
		t.Errorf("expected rating 4.6, got %v", f.Rating)
	}
}

func TestGetFundamentals_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"General":{},"AnalystRatings":{}}`))
	}))
	defer srv.Close()

	client := NewClient("k", WithBaseURL(srv.URL))
	if _, err := client.GetFundamentals(context.Background(), "X.US"); err == nil {
		t.Fatal("expected error for empty fundamentals")
	}
}

func TestGet_RespectsCancelledContext(t *testing.T) {
	client := NewClient("k", WithBaseURL("http://127.0.0.1:0"), WithRateLimit(1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.GetEOD(ctx, "NVDA.US"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
