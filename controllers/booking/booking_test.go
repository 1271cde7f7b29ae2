package booking

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"marketplace-booking/types"

	"github.com/gofiber/fiber/v2"
)

func TestStore_MalformedBodyReturnsDetails(t *testing.T) {
	bc := NewBookingController(nil, nil)
	app := fiber.New()
	app.Post("/api/booking/create", bc.Store)

	req := httptest.NewRequest("POST", "/api/booking/create", strings.NewReader(`{"listing_id":`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}
	var body types.ApiResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("response is not the envelope: %v", err)
	}
	if body.Error == nil || body.Error.Code != types.ErrCodeValidation {
		t.Fatalf("expected %s, got %+v", types.ErrCodeValidation, body.Error)
	}
	if body.Error.Details == nil {
		t.Fatal("expected parse details in the error envelope")
	}
}
