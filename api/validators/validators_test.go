package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/angelmondragon/splitwallet-backend/pkg/errors"
)

type sampleBody struct {
	Name   string   `json:"name" validate:"required,max=5"`
	Amount string   `json:"amount" validate:"required"`
	IDs    []string `json:"ids" validate:"omitempty,dive,uuid"`
}

func expectValidation(t *testing.T, err error) *pkgerrors.Error {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	return typed
}

func TestDecodeJSONBody(t *testing.T) {
	var ok sampleBody
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Asha","amount":"10.00"}`))
	if err := DecodeJSONBody(req, &ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok.Name != "Asha" || ok.Amount != "10.00" {
		t.Fatalf("unexpected decode %+v", ok)
	}

	var unknown sampleBody
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Asha","amount":"1","extra":true}`))
	expectValidation(t, DecodeJSONBody(req, &unknown))

	var invalid sampleBody
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Bartholomew","ids":["nope"]}`))
	typed := expectValidation(t, DecodeJSONBody(req, &invalid))
	details, _ := typed.Details().(map[string]string)
	if details["name"] != "must be at most 5" {
		t.Fatalf("unexpected name detail %q", details["name"])
	}
	if details["amount"] != "is required" {
		t.Fatalf("unexpected amount detail %q", details["amount"])
	}
	if details["ids[0]"] != "must be a uuid" {
		t.Fatalf("unexpected ids detail %v", details)
	}
}

func TestParseQueryHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?approved_only=true&granularity=Month&limit=7&bad=x", nil)

	approved, err := ParseQueryBool(req, "approved_only", false)
	if err != nil || !approved {
		t.Fatalf("expected approved_only=true, got %v %v", approved, err)
	}
	if v, err := ParseQueryBool(req, "missing", true); err != nil || !v {
		t.Fatalf("expected default, got %v %v", v, err)
	}
	if _, err := ParseQueryBool(req, "bad", false); err == nil {
		t.Fatalf("expected bool parse failure")
	}

	granularity, err := ParseQueryOneOf(req, "granularity", "month", "day", "month", "year")
	if err != nil || granularity != "month" {
		t.Fatalf("unexpected granularity %q %v", granularity, err)
	}
	if _, err := ParseQueryOneOf(req, "bad", "", "day"); err == nil {
		t.Fatalf("expected unsupported value to fail")
	}

	if limit, err := ParseQueryInt(req, "limit", 1, 1, 10); err != nil || limit != 7 {
		t.Fatalf("unexpected limit %d %v", limit, err)
	}
	if _, err := ParseQueryInt(req, "limit", 1, 1, 5); err == nil {
		t.Fatalf("expected out of range")
	}
}

func TestParseURLUUID(t *testing.T) {
	rc := chi.NewRouteContext()
	rc.URLParams.Add("eventId", "7c9e6679-7425-40de-944b-e07fc1f90ae7")
	rc.URLParams.Add("memberId", "bob")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))

	id, err := ParseURLUUID(req, "eventId")
	if err != nil || id.String() != "7c9e6679-7425-40de-944b-e07fc1f90ae7" {
		t.Fatalf("unexpected id %v %v", id, err)
	}
	expectValidation(t, func() error { _, err := ParseURLUUID(req, "memberId"); return err }())
}

func TestParseDate(t *testing.T) {
	day, err := ParseDate(" 2024-03-01 ", "start_date")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if day.Year() != 2024 || day.Month() != 3 || day.Day() != 1 || day.Hour() != 0 {
		t.Fatalf("unexpected date %v", day)
	}
	expectValidation(t, func() error { _, err := ParseDate("01/03/2024", "start_date"); return err }())
}
