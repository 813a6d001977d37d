package http

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DRSN-tech/shop-backend/pkg/e"
)

func multipartRequest(t *testing.T, fields map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestParseProductForm(t *testing.T) {
	tests := []struct {
		name    string
		fields  map[string]string
		wantErr error
		check   func(t *testing.T, meta *productFormMeta)
	}{
		{
			name: "full form",
			fields: map[string]string{
				"name":        "Laptop",
				"description": "Thin and light",
				"price":       "29.99",
				"stock":       "5",
				"category":    "electronics",
			},
			check: func(t *testing.T, meta *productFormMeta) {
				if meta.PriceCents != 2999 {
					t.Errorf("price = %d, want 2999", meta.PriceCents)
				}
				if meta.Stock != 5 {
					t.Errorf("stock = %d, want 5", meta.Stock)
				}
			},
		},
		{
			name: "stock defaults to zero",
			fields: map[string]string{
				"name":  "Laptop",
				"price": "10",
			},
			check: func(t *testing.T, meta *productFormMeta) {
				if meta.Stock != 0 {
					t.Errorf("stock = %d, want 0", meta.Stock)
				}
			},
		},
		{
			name:    "missing name",
			fields:  map[string]string{"price": "10"},
			wantErr: e.ErrMissingFields,
		},
		{
			name:    "missing price",
			fields:  map[string]string{"name": "Laptop"},
			wantErr: e.ErrMissingFields,
		},
		{
			name: "negative stock",
			fields: map[string]string{
				"name": "Laptop", "price": "10", "stock": "-1",
			},
			wantErr: e.ErrInvalidStock,
		},
		{
			name: "price too precise",
			fields: map[string]string{
				"name": "Laptop", "price": "10.999",
			},
			wantErr: e.ErrPricePrecision,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := multipartRequest(t, tt.fields)
			if err := ensureMultipartForm(req, 32<<20); err != nil {
				t.Fatalf("ensureMultipartForm: %v", err)
			}

			meta, err := parseProductForm(req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseProductForm: %v", err)
			}
			tt.check(t, meta)
		})
	}
}

func TestEnsureMultipartForm_RejectsJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")

	if err := ensureMultipartForm(req, 32<<20); !errors.Is(err, e.ErrExpectedMultipart) {
		t.Fatalf("err = %v, want ErrExpectedMultipart", err)
	}
}
