package depara

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, store Store) http.Handler {
	t.Helper()
	handler := NewHandler(nil, NewService(store, nil))
	r := chi.NewRouter()
	r.Route("/api/depara", handler.MountRoutes)
	return r
}

func TestUpdateUnknownAccountReturns404(t *testing.T) {
	router := newTestRouter(t, NewMemoryStore())

	req := httptest.NewRequest(http.MethodPut, "/api/depara/9.99.99.99.00001",
		strings.NewReader(`{"classificacao":"Receita de Serviços"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}

func TestUpdateConfirmsClassification(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.UpsertUnseen(context.Background(), "3.01.01.01.00001", "Receita SaaS")
	require.NoError(t, err)
	router := newTestRouter(t, store)

	req := httptest.NewRequest(http.MethodPut, "/api/depara/3.01.01.01.00001",
		strings.NewReader(`{"classificacao":"Receita de Serviços"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp UpdateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, StatusOK, resp.Entry.Status)
	require.Equal(t, "Receita", resp.Entry.Group)
	require.False(t, resp.NewLineNeeded)
}

func TestUpdateUnknownClassificationFlagsNewLine(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.UpsertUnseen(context.Background(), "4.05.01.01.00001", "Projeto interno")
	require.NoError(t, err)
	router := newTestRouter(t, store)

	req := httptest.NewRequest(http.MethodPut, "/api/depara/4.05.01.01.00001",
		strings.NewReader(`{"classificacao":"P&D Capitalizado","grupo_df":"Despesas Operacionais"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp UpdateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.NewLineNeeded)
}

func TestUpdateValidatesBody(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.UpsertUnseen(context.Background(), "3.01.01.01.00001", "Receita SaaS")
	require.NoError(t, err)
	router := newTestRouter(t, store)

	for _, body := range []string{`{}`, `{"classificacao":""}`, `not json`} {
		req := httptest.NewRequest(http.MethodPut, "/api/depara/3.01.01.01.00001", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestListRejectsUnknownStatus(t *testing.T) {
	router := newTestRouter(t, NewMemoryStore())

	req := httptest.NewRequest(http.MethodGet, "/api/depara/?status=wat", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPendingEndpoint(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	_, err := store.UpsertUnseen(ctx, "1.01.03.01.00001", "Clientes")
	require.NoError(t, err)
	_, err = store.UpsertUnseen(ctx, "2.01.01.01.00001", "Fornecedores")
	require.NoError(t, err)
	_, err = store.Confirm(ctx, "2.01.01.01.00001", "Fornecedores", "Passivo Circulante")
	require.NoError(t, err)
	router := newTestRouter(t, store)

	req := httptest.NewRequest(http.MethodGet, "/api/depara/pending", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp PendingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)
	require.Equal(t, "1.01.03.01.00001", resp.Pending[0].AccountCode)
}
