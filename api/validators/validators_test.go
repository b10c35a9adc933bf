package validators

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/haani-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/haani-backend/pkg/errors"
	"github.com/angelmondragon/haani-backend/pkg/pagination"
)

func TestSanitizeTextCapsRunes(t *testing.T) {
	got := SanitizeText("  تم التحويل\x00 بنجاح  ", 8)
	if got != "تم التحو" {
		t.Fatalf("unexpected sanitized text %q", got)
	}
	if got := SanitizeText("line one\nline two", 0); got != "line one\nline two" {
		t.Fatalf("newlines should survive, got %q", got)
	}
}

func TestQueryLimit(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	limit, err := QueryLimit(req)
	if err != nil || limit != pagination.DefaultLimit {
		t.Fatalf("expected default limit, got %d %v", limit, err)
	}

	for _, raw := range []string{"0", "abc", "100000"} {
		req := httptest.NewRequest(http.MethodGet, "/x?limit="+raw, nil)
		if _, err := QueryLimit(req); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
			t.Fatalf("limit=%s: expected validation error, got %v", raw, err)
		}
	}
}

func TestQueryFilters(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x?status=pending&unreadOnly=true&userId=not-a-uuid", nil)

	status, err := QueryEnum(req, "status", enums.ParsePayoutRequestStatus)
	if err != nil || status == nil || *status != enums.PayoutRequestStatusPending {
		t.Fatalf("unexpected status %v %v", status, err)
	}
	if unread, err := QueryBool(req, "unreadOnly"); err != nil || !unread {
		t.Fatalf("unexpected unreadOnly %v %v", unread, err)
	}
	if _, err := QueryUUID(req, "userId"); err == nil {
		t.Fatal("expected invalid uuid to be rejected")
	}
	if missing, err := QueryUUID(req, "payeeId"); err != nil || missing != nil {
		t.Fatalf("absent filter should be nil, got %v %v", missing, err)
	}
}

func TestDecodeJSONBodyReportsFieldErrors(t *testing.T) {
	var body struct {
		Reason string `json:"reason" validate:"required"`
	}
	req := httptest.NewRequest(http.MethodPost, "/x", bytes.NewBufferString(`{"reason":""}`))
	err := DecodeJSONBody(req, &body)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok || details["reason"] != "is required" {
		t.Fatalf("unexpected details %#v", typed.Details())
	}

	req = httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"reason":"x","extra":1}`))
	if err := DecodeJSONBody(req, &body); err == nil {
		t.Fatal("unknown fields should be rejected")
	}
}

func TestDecodeJSONBodyMoney(t *testing.T) {
	type body struct {
		Amount decimal.Decimal `json:"amount" validate:"money"`
	}
	for raw, ok := range map[string]bool{
		`{"amount":"1500.50"}`: true,
		`{"amount":0.01}`:      true,
		`{"amount":"0"}`:       false,
		`{"amount":"-1"}`:      false,
		`{"amount":"1.999"}`:   false,
	} {
		var dest body
		err := DecodeJSONBody(httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(raw)), &dest)
		if (err == nil) != ok {
			t.Fatalf("%s: expected ok=%v, got %v", raw, ok, err)
		}
	}
}

func TestDecodeJSONBodyRejectsTrailingDocuments(t *testing.T) {
	var dest struct {
		Reason string `json:"reason"`
	}
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"reason":"a"}{"reason":"b"}`))
	if err := DecodeJSONBody(req, &dest); err == nil {
		t.Fatal("expected trailing document to be rejected")
	}
}
