package config

import (
	"sync"
	"testing"
)

func resetGlobal() {
	setConfig(nil)
	initOnce = sync.Once{}
}

func TestInitialize(t *testing.T) {
	resetGlobal()
	t.Cleanup(resetGlobal)

	path := writeConfig(t, `
bot:
  locale: "fr-FR"
`)

	if err := Initialize(path); err != nil {
		t.Fatalf("failed to initialize config: %v", err)
	}

	cfg := GetConfig()
	if cfg == nil {
		t.Fatal("expected non-nil config after initialization")
	}
	if cfg.Bot.Locale != "fr-FR" {
		t.Errorf("expected locale fr-FR, got %q", cfg.Bot.Locale)
	}
}

func TestInitialize_MultipleCallsIgnored(t *testing.T) {
	resetGlobal()
	t.Cleanup(resetGlobal)

	first := writeConfig(t, "bot:\n  locale: \"en-GB\"\n")
	second := writeConfig(t, "bot:\n  locale: \"de-DE\"\n")

	if err := Initialize(first); err != nil {
		t.Fatalf("first initialize failed: %v", err)
	}
	if err := Initialize(second); err != nil {
		t.Fatalf("second initialize failed: %v", err)
	}

	if got := GetConfig().Bot.Locale; got != "en-GB" {
		t.Errorf("expected first config to stick, got locale %q", got)
	}
}

func TestInitialize_ErrorLeavesConfigUnset(t *testing.T) {
	resetGlobal()
	t.Cleanup(resetGlobal)

	bad := writeConfig(t, "session:\n  backend: \"nope\"\n")

	if err := Initialize(bad); err == nil {
		t.Fatal("expected initialize error")
	}
	if GetConfig() != nil {
		t.Error("expected no config after a failed initialize")
	}
}

func TestGetConfig_Concurrent(t *testing.T) {
	resetGlobal()
	t.Cleanup(resetGlobal)
	setConfig(Default())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if GetConfig() == nil {
				t.Error("expected config")
			}
		}()
	}
	wg.Wait()
}
