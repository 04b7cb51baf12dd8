package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/storefront/internal/auth"
	"github.com/dmehra2102/storefront/internal/cart/application"
	"github.com/dmehra2102/storefront/internal/cart/domain"
	catalogapp "github.com/dmehra2102/storefront/internal/catalog/application"
	catalog "github.com/dmehra2102/storefront/internal/catalog/domain"
)

type memStore map[string][]domain.Line

func (m memStore) Load(_ context.Context, id string) ([]domain.Line, error) { return m[id], nil }
func (m memStore) Update(_ context.Context, id string, fn application.UpdateFunc) error {
	next, write, err := fn(m[id])
	if err != nil || !write {
		return err
	}
	if len(next) == 0 {
		delete(m, id)
		return nil
	}
	m[id] = next
	return nil
}
func (m memStore) Delete(_ context.Context, id string) error {
	delete(m, id)
	return nil
}

type products map[string]catalog.Product

func (p products) Get(_ context.Context, id string) (catalog.Product, error) {
	if v, ok := p[id]; ok {
		return v, nil
	}
	return catalog.Product{}, catalogapp.ErrProductNotFound
}

func newTestHandler(store memStore) http.Handler {
	svc := application.NewService(store, products{
		"mug": {ID: "mug", Name: "Mug", Price: decimal.NewFromInt(300), Category: "kitchen"},
	}, domain.DefaultPolicy())
	return NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).Routes()
}

func do(t *testing.T, h http.Handler, method, path, body, session string) (*httptest.ResponseRecorder, application.View) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if session != "" {
		req.Header.Set(SessionHeader, session)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var v application.View
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	}
	return rec, v
}

func TestGuestSessionIsMintedAndReused(t *testing.T) {
	store := memStore{}
	h := newTestHandler(store)

	rec, v := do(t, h, http.MethodPost, "/items", `{"product_id":"mug"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	session := rec.Header().Get(SessionHeader)
	require.NotEmpty(t, session)
	assert.Equal(t, 1, v.ItemCount, "quantity defaults to one")

	rec, v = do(t, h, http.MethodPost, "/items", `{"product_id":"mug","quantity":2}`, session)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, session, rec.Header().Get(SessionHeader))
	assert.Equal(t, 3, v.Items[0].Quantity)
	assert.Contains(t, store, application.GuestSession(session))
}

func TestCartLifecycle(t *testing.T) {
	h := newTestHandler(memStore{})
	session := "7f1c3a52-7d0b-4c61-9a7a-3a9f4c0b8f11"

	rec, _ := do(t, h, http.MethodPost, "/items", `{"product_id":"mug","quantity":4}`, session)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, v := do(t, h, http.MethodPatch, "/items/mug", `{"quantity":1}`, session)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, v.Items[0].Quantity)
	assert.True(t, decimal.NewFromInt(454).Equal(v.Totals.Total))

	rec, _ = do(t, h, http.MethodPatch, "/items/mug", `{"quantity":0}`, session)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, v = do(t, h, http.MethodDelete, "/items/mug", "", session)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, v.Items)

	rec, _ = do(t, h, http.MethodDelete, "/", "", session)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAddErrors(t *testing.T) {
	h := newTestHandler(memStore{})

	rec, _ := do(t, h, http.MethodPost, "/items", `{"product_id":"ghost"}`, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, h, http.MethodPost, "/items", `{"product_id":"mug","quantity":-3}`, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, _ = do(t, h, http.MethodPost, "/items", `{"quantity":1}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHugeQuantityIsRejected(t *testing.T) {
	store := memStore{}
	h := newTestHandler(store)
	session := "0b6b2d0e-5c7e-4b57-8d7e-2f5b9a1c4e30"

	rec, _ := do(t, h, http.MethodPost, "/items", `{"product_id":"mug","quantity":9223372036854775807}`, session)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, _ = do(t, h, http.MethodPost, "/items", `{"product_id":"mug","quantity":9999}`, session)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = do(t, h, http.MethodPost, "/items", `{"product_id":"mug","quantity":2}`, session)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, v := do(t, h, http.MethodGet, "/", "", session)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 9999, v.Items[0].Quantity)
	assert.False(t, v.Totals.Total.IsNegative())
}

func TestSignedInUserOwnsCart(t *testing.T) {
	store := memStore{}
	h := newTestHandler(store)

	req := httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(`{"product_id":"mug"}`))
	req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{UserID: "u1"}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(SessionHeader))
	assert.Contains(t, store, application.UserSession("u1"))
}
