package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAddress = "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"

func TestWalletBalance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wallet", r.URL.Path)
		assert.Equal(t, testAddress, r.URL.Query().Get("address"))
		w.Write([]byte(`{"success":true,"address":"` + testAddress + `","sol":1.5,"lamports":1500000000,"tokens":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client(), nil)
	balance, err := c.WalletBalance(context.Background(), testAddress)
	require.NoError(t, err)
	assert.Equal(t, 1.5, balance.SOL)
	assert.Equal(t, uint64(1_500_000_000), balance.Lamports)
}

func TestTransfer_ErrorSurfacesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"success":false,"error":"transfers on mainnet are disabled"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client(), nil)
	_, err := c.Transfer(context.Background(), testAddress, 1, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mainnet")
	assert.Contains(t, err.Error(), "403")
}

func TestTokenPrices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte(`{"success":true,"data":{"` + testAddress + `":0.245}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client(), nil)
	prices, err := c.TokenPrices(context.Background(), []string{testAddress})
	require.NoError(t, err)
	assert.Equal(t, 0.245, prices[testAddress])
}

func TestChat_StreamsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("hello "))
		flusher.Flush()
		w.Write([]byte("world"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client(), nil)
	var chunks []string
	full, err := c.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}, func(chunk string) {
		chunks = append(chunks, chunk)
	})
	require.NoError(t, err)
	assert.Equal(t, "hello world", full)
	assert.NotEmpty(t, chunks)
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client(), nil)
	require.NoError(t, c.Health(context.Background()))
}
