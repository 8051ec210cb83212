package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func params(t *testing.T, target string) Params {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	c := e.NewContext(req, httptest.NewRecorder())
	return FromContext(c)
}

func TestFromContext_Defaults(t *testing.T) {
	p := params(t, "/")
	if p.Limit != DefaultLimit {
		t.Errorf("expected default limit %d, got %d", DefaultLimit, p.Limit)
	}
	if p.Offset != 0 {
		t.Errorf("expected default offset 0, got %d", p.Offset)
	}
}

func TestFromContext_CustomValues(t *testing.T) {
	p := params(t, "/?limit=50&offset=10")
	if p.Limit != 50 {
		t.Errorf("expected limit 50, got %d", p.Limit)
	}
	if p.Offset != 10 {
		t.Errorf("expected offset 10, got %d", p.Offset)
	}
}

func TestFromContext_ClampsLimit(t *testing.T) {
	p := params(t, "/?limit=5000")
	if p.Limit != MaxLimit {
		t.Errorf("expected limit clamped to %d, got %d", MaxLimit, p.Limit)
	}
}

func TestFromContext_NegativeOffset(t *testing.T) {
	p := params(t, "/?offset=-5")
	if p.Offset != 0 {
		t.Errorf("expected offset clamped to 0, got %d", p.Offset)
	}
}

func TestParams_SQL(t *testing.T) {
	p := Params{Limit: 25, Offset: 50}
	if got := p.SQL(); got != "LIMIT 25 OFFSET 50" {
		t.Errorf("unexpected SQL clause: %q", got)
	}
}

func TestParams_Navigation(t *testing.T) {
	p := Params{Limit: 10, Offset: 20}
	if !p.HasNext(100) {
		t.Error("expected next page at offset 20 of 100")
	}
	if p.HasNext(25) {
		t.Error("no next page expected at offset 20 of 25")
	}
	if !p.HasPrevious() {
		t.Error("expected previous page at offset 20")
	}
	if p.NextOffset() != 30 {
		t.Errorf("expected next offset 30, got %d", p.NextOffset())
	}
	if p.PreviousOffset() != 10 {
		t.Errorf("expected previous offset 10, got %d", p.PreviousOffset())
	}
	if (Params{Limit: 10, Offset: 5}).PreviousOffset() != 0 {
		t.Error("previous offset should clamp at 0")
	}
}

func TestNewResponse(t *testing.T) {
	r := NewResponse([]string{"a", "b"}, 10, 2, 0)
	if !r.HasMore {
		t.Error("expected has_more true")
	}
	r = NewResponse([]string{"a", "b"}, 2, 2, 0)
	if r.HasMore {
		t.Error("expected has_more false")
	}
}
