package booking

import (
	"net/url"
	"strings"
	"testing"
)

func sampleBooking() Booking {
	return Booking{
		ID:             "b-1",
		ServiceType:    "Deluxe - £35 (~45 mins)",
		ServicePrice:   35,
		BookingDate:    "2025-06-01",
		BookingTime:    "10:00",
		CustomerName:   "Jane Doe",
		CustomerPhone:  "+441234567890",
		ServiceAddress: "1 Test St",
		Notes:          "Gate code 1234",
		Status:         StatusPending,
	}
}

func TestFallbackHandoffs_OneMailtoOneWhatsApp(t *testing.T) {
	handoffs := FallbackHandoffs(sampleBooking(), HandoffConfig{
		OperatorEmail: "owner@wash.example",
		OperatorPhone: "+234 816 675 1643",
		BusinessName:  "TBI Mobile Car Wash",
	})

	if len(handoffs) != 2 {
		t.Fatalf("expected 2 handoffs, got %d", len(handoffs))
	}
	if handoffs[0].Kind != HandoffMailto || !strings.HasPrefix(handoffs[0].URL, "mailto:owner@wash.example?") {
		t.Errorf("unexpected mailto handoff: %+v", handoffs[0])
	}
	if handoffs[1].Kind != HandoffWhatsApp || !strings.HasPrefix(handoffs[1].URL, "https://wa.me/2348166751643?text=") {
		t.Errorf("unexpected whatsapp handoff: %+v", handoffs[1])
	}

	for _, h := range handoffs {
		decoded, err := url.QueryUnescape(h.URL)
		if err != nil {
			t.Fatalf("unescape %s: %v", h.Kind, err)
		}
		for _, want := range []string{"Deluxe", "2025-06-01", "10:00", "Jane Doe", "+441234567890", "1 Test St", "Gate code 1234"} {
			if !strings.Contains(decoded, want) {
				t.Errorf("%s handoff missing %q", h.Kind, want)
			}
		}
	}
}

func TestMailtoURL_EncodesSpacesAsPercent20(t *testing.T) {
	got := MailtoURL("a@b.c", "Hello World", "x&y=z")
	if strings.Contains(got, "+") {
		t.Fatalf("expected spaces encoded as %%20, got %s", got)
	}
	if !strings.Contains(got, "subject=Hello%20World") {
		t.Errorf("subject not encoded: %s", got)
	}
	if !strings.Contains(got, "body=x%26y%3Dz") {
		t.Errorf("body not encoded: %s", got)
	}
}

func TestMailtoURL_EscapesRecipient(t *testing.T) {
	got := MailtoURL("bookings?cc=x%y@wash.example", "Hi", "there")
	if !strings.HasPrefix(got, "mailto:bookings%3Fcc=x%25y@wash.example?subject=Hi&body=there") {
		t.Fatalf("recipient not escaped: %s", got)
	}
	if strings.Count(got, "?") != 1 {
		t.Errorf("expected a single query separator: %s", got)
	}
}

func TestFormatChatSummary_OmitsNotesWhenBlank(t *testing.T) {
	b := sampleBooking()
	b.Notes = "  "
	summary := FormatChatSummary(b)
	if strings.Contains(summary, "*Notes:*") {
		t.Errorf("notes line should be omitted:\n%s", summary)
	}
	if !strings.Contains(summary, "*Email:* Not provided") {
		t.Errorf("expected placeholder for missing email:\n%s", summary)
	}
}

func TestFormatEmailSummary(t *testing.T) {
	summary := FormatEmailSummary(sampleBooking(), "")
	for _, want := range []string{"• Service: Deluxe", "• Price: 35", "Additional Notes:\nGate code 1234", "Car Wash Booking System"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
}

func TestWhatsAppChatURL(t *testing.T) {
	if got := WhatsAppChatURL("+44 7827 092693"); got != "https://wa.me/447827092693" {
		t.Errorf("unexpected chat url %s", got)
	}
}
