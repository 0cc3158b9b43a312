package llm

import "testing"

func TestConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("KYSYMYSSOTA_LLM_PROVIDER", "openai")
	t.Setenv("KYSYMYSSOTA_OPENAI_API_KEY", "sk-test")
	t.Setenv("KYSYMYSSOTA_OPENAI_MODEL", "gpt-4o")

	cfg := ConfigFromEnv()
	if cfg.Provider != "openai" {
		t.Errorf("provider = %q", cfg.Provider)
	}
	if cfg.OpenAI.APIKey != "sk-test" || cfg.OpenAI.Model != "gpt-4o" {
		t.Errorf("openai config = %+v", cfg.OpenAI)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestConfigValidateMissingKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "anthropic"
	cfg.Anthropic.APIKey = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("missing API key accepted")
	}
}

func TestConfigValidateUnknownProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "oracle"

	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown provider accepted")
	}
}

func TestConfigValidateMock(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "mock"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("mock provider needs no key: %v", err)
	}
}

func TestDiscoverConfigPriority(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("OPENAI_API_KEY", "o-key")

	cfg, ok := DiscoverConfig()
	if !ok {
		t.Fatal("discovery failed")
	}
	if cfg.Provider != "gemini" || cfg.Gemini.APIKey != "g-key" {
		t.Fatalf("discovered %q, want gemini first", cfg.Provider)
	}
}

func TestDiscoverConfigNothingSet(t *testing.T) {
	for _, v := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(v, "")
	}

	if _, ok := DiscoverConfig(); ok {
		t.Fatal("discovery succeeded with no keys set")
	}
}
