package domain

import "testing"

func TestPipelineOrdinalsAreStrictlyIncreasing(t *testing.T) {
	prev := 0
	for _, tag := range Pipeline() {
		if tag.Ordinal() <= prev {
			t.Fatalf("expected %q to come after ordinal %d", tag, prev)
		}
		prev = tag.Ordinal()
	}
	if prev != 17 {
		t.Fatalf("expected 17 pipeline stages, last ordinal %d", prev)
	}
}

func TestParseStatusSlugRoundTrip(t *testing.T) {
	for _, tag := range Pipeline() {
		got, ok := ParseStatusSlug(tag.Slug())
		if !ok || got != tag {
			t.Fatalf("slug %q resolved to %q (ok=%v), want %q", tag.Slug(), got, ok, tag)
		}
	}
	if _, ok := ParseStatusSlug("not-a-stage"); ok {
		t.Fatal("unknown slug should not resolve")
	}
}

func TestOrdinalOfMalformedTags(t *testing.T) {
	cases := []StatusTag{"", "Type", "Type x", "type 3", "Type 0"}
	for _, tag := range cases {
		if tag.Ordinal() != 0 {
			t.Fatalf("expected ordinal 0 for %q, got %d", tag, tag.Ordinal())
		}
	}
	if !StatusOpen.Before(StatusBooking) || StatusBooking.Before(StatusOpen) {
		t.Fatal("Open must come before Booking")
	}
}

func TestIsFollowUpIsCaseInsensitive(t *testing.T) {
	for _, v := range []string{"Follow Up", "follow up", "FOLLOW UP", "  Follow up "} {
		if !IsFollowUp(v) {
			t.Fatalf("expected %q to be a follow-up", v)
		}
	}
	if IsFollowUp("Site Measurement") || IsFollowUp("Followup") {
		t.Fatal("other task types must advance")
	}
}

func TestIsAdminRole(t *testing.T) {
	for _, role := range []string{"admin", "Admin", "SUPER-ADMIN", "super-admin"} {
		if !IsAdminRole(role) {
			t.Fatalf("expected %q to be admin", role)
		}
	}
	for _, role := range []string{"sales", "designer", "superadmin", ""} {
		if IsAdminRole(role) {
			t.Fatalf("expected %q to be scoped", role)
		}
	}
}

func TestParseActivityStatus(t *testing.T) {
	got, ok := ParseActivityStatus("ONHOLD")
	if !ok || got != ActivityOnHold {
		t.Fatalf("expected onHold, got %q (%v)", got, ok)
	}
	if _, ok := ParseActivityStatus("paused"); ok {
		t.Fatal("unknown activity status should not parse")
	}
}
