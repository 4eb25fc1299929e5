package history

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/systemshift/leaky/internal/dag"
	"github.com/systemshift/leaky/internal/leakyerr"
)

func TestHTTPRemoteHead_Head_ParsesCIDField(t *testing.T) {
	want := dag.EncodeCID(mustCID(t, "genesis"))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v0/root", r.URL.Path)
		require.Equal(t, http.MethodGet, r.Method)
		_ = json.NewEncoder(w).Encode(map[string]string{"cid": want})
	}))
	defer srv.Close()

	h := NewHTTPRemoteHead(srv.URL, nil)
	head, err := h.Head(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, dag.EncodeCID(head))
}

func TestHTTPRemoteHead_Head_AbsentCIDIsGenesis(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	h := NewHTTPRemoteHead(srv.URL, nil)
	head, err := h.Head(context.Background())
	require.NoError(t, err)
	require.Equal(t, dag.Undef, head)
}

func TestHTTPRemoteHead_CompareAndSwap_SendsPreviousAndNext(t *testing.T) {
	prev := dag.EncodeCID(mustCID(t, "prev"))
	next := dag.EncodeCID(mustCID(t, "next"))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, prev, body["previous"])
		require.Equal(t, next, body["next"])
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	h := NewHTTPRemoteHead(srv.URL, nil)
	prevCID, err := dag.DecodeCID(prev)
	require.NoError(t, err)
	nextCID, err := dag.DecodeCID(next)
	require.NoError(t, err)
	require.NoError(t, h.CompareAndSwap(context.Background(), prevCID, nextCID))
}

func TestHTTPRemoteHead_CompareAndSwap_ConflictParsesActualField(t *testing.T) {
	actual := dag.EncodeCID(mustCID(t, "actual"))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"actual": actual})
	}))
	defer srv.Close()

	h := NewHTTPRemoteHead(srv.URL, nil)
	err := h.CompareAndSwap(context.Background(), dag.Undef, mustCID(t, "next"))

	var advanced *leakyerr.HeadAdvanced
	require.ErrorAs(t, err, &advanced)
	require.Equal(t, actual, advanced.Actual)
}

func mustCID(t *testing.T, content string) dag.CID {
	t.Helper()
	c, err := dag.ComputeRawCID([]byte(content))
	require.NoError(t, err)
	return c
}
