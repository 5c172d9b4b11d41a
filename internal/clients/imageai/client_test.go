package imageai_test

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/reshetovitsme/goofish-monitor/internal/clients/imageai"
	"github.com/stretchr/testify/require"
)

func TestCosine(t *testing.T) {
	cases := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"scaled", []float64{1, 1}, []float64{5, 5}, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := imageai.Cosine(tc.a, tc.b)
			require.NoError(t, err)
			require.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestCosine_Errors(t *testing.T) {
	_, err := imageai.Cosine([]float64{1, 2}, []float64{1, 2, 3})
	require.Error(t, err, "length mismatch")

	_, err = imageai.Cosine(nil, nil)
	require.Error(t, err, "empty vectors")

	_, err = imageai.Cosine([]float64{0, 0}, []float64{1, 1})
	require.Error(t, err, "zero magnitude")
}

func TestEmbed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embed", r.URL.Path)
		fmt.Fprint(w, `{"embedding":[0.5,0.25]}`)
	}))
	defer server.Close()

	client := imageai.New(server.URL, 5*time.Second)
	embedding, err := client.Embed(context.Background(), "https://img.example/a.jpg")
	require.NoError(t, err)
	require.Equal(t, []float64{0.5, 0.25}, embedding)
}

func TestEmbed_EmptyVector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"embedding":[]}`)
	}))
	defer server.Close()

	client := imageai.New(server.URL, 5*time.Second)
	_, err := client.Embed(context.Background(), "https://img.example/a.jpg")
	require.Error(t, err)
}

func TestCompare_NormalizesToUnitInterval(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Opposite direction to the reference: cosine -1, normalized 0.
		fmt.Fprint(w, `{"embedding":[-1,0]}`)
	}))
	defer server.Close()

	client := imageai.New(server.URL, 5*time.Second)

	score, err := client.Compare(context.Background(), []float64{1, 0}, "https://img.example/a.jpg")
	require.NoError(t, err)
	require.InDelta(t, 0, score, 1e-9)
}

func TestCompare_IdenticalIsOne(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"embedding":[0.6,0.8]}`)
	}))
	defer server.Close()

	client := imageai.New(server.URL, 5*time.Second)

	score, err := client.Compare(context.Background(), []float64{0.6, 0.8}, "https://img.example/a.jpg")
	require.NoError(t, err)
	require.InDelta(t, 1, score, 1e-9)
	require.False(t, math.IsNaN(score))
}
