package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("MINIMUM_PROFIT_MARGIN", "")
	t.Setenv("DEFAULT_PROFIT_MARGIN", "")
	t.Setenv("PRICING_TTL_SECONDS", "")
	t.Setenv("STRICT_RESERVATIONS", "")

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.MinimumProfitMargin != 10 || cfg.DefaultProfitMargin != 30 {
		t.Fatalf("unexpected margin defaults: %.0f / %.0f", cfg.MinimumProfitMargin, cfg.DefaultProfitMargin)
	}
	if cfg.PricingTTLSeconds != 300 {
		t.Fatalf("expected pricing TTL 300s, got %d", cfg.PricingTTLSeconds)
	}
	if cfg.StrictReservations {
		t.Fatalf("expected soft reservations by default")
	}
	if cfg.Address() != ":8080" {
		t.Fatalf("unexpected address %q", cfg.Address())
	}
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	t.Setenv("OVERHEAD_PERCENT", "not-a-number")
	t.Setenv("PRICING_TTL_SECONDS", "-5")

	cfg := Load()
	if cfg.OverheadPercent != 15 {
		t.Fatalf("expected fallback overhead 15, got %.2f", cfg.OverheadPercent)
	}
	if cfg.PricingTTLSeconds != 300 {
		t.Fatalf("expected fallback TTL 300, got %d", cfg.PricingTTLSeconds)
	}
}

func TestLoadHonorsOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STRICT_RESERVATIONS", "true")
	t.Setenv("DEFAULT_ACTOR_ID", "owner")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected port override, got %q", cfg.Port)
	}
	if !cfg.StrictReservations {
		t.Fatalf("expected strict reservations enabled")
	}
	if cfg.DefaultActorID != "owner" {
		t.Fatalf("expected actor override, got %q", cfg.DefaultActorID)
	}
}
