package config

import "testing"

func TestSanitizeAppID(t *testing.T) {
	cases := map[string]string{
		"portfolio-refaldo": "portfolio-refaldo",
		"my app/v1":         "my_app_v1",
		"a.b:c":             "a_b_c",
		"ok_ID-9":           "ok_ID-9",
	}
	for in, want := range cases {
		if got := SanitizeAppID(in); got != want {
			t.Errorf("SanitizeAppID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", ":9999")
	t.Setenv("APP_ID", "demo app")
	t.Setenv("STORE_BACKEND", "SQL")
	t.Setenv("FRONTEND_URLS", "http://a.test,http://b.test")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != ":9999" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.AppID != "demo_app" {
		t.Errorf("AppID = %q, want sanitized", cfg.AppID)
	}
	if cfg.StoreBackend != "sql" {
		t.Errorf("StoreBackend = %q", cfg.StoreBackend)
	}
	if len(cfg.FrontendURLs) != 2 {
		t.Errorf("FrontendURLs = %v", cfg.FrontendURLs)
	}
	if cfg.ChatModel != "llama-3.3-70b-versatile" {
		t.Errorf("ChatModel default = %q", cfg.ChatModel)
	}
}

func TestLoadClientDefaults(t *testing.T) {
	t.Setenv("SITE_GRPC_ADDR", "content:50051")
	t.Setenv("APP_ID", "site/prod")

	cfg, err := LoadClient()
	if err != nil {
		t.Fatalf("LoadClient: %v", err)
	}
	if cfg.GRPCAddr != "content:50051" || cfg.HTTPURL != "http://127.0.0.1:8080" {
		t.Errorf("addresses = %q %q", cfg.GRPCAddr, cfg.HTTPURL)
	}
	if cfg.AppID != "site_prod" || cfg.Lang != "id" {
		t.Errorf("AppID = %q, Lang = %q", cfg.AppID, cfg.Lang)
	}
}
