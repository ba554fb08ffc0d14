package main

import "testing"

func TestRunMatchesExpectedResult(t *testing.T) {
	cfg := defaultRunConfig()
	if err := run("testdata/diamond.json", cfg); err != nil {
		t.Fatalf("run() returned an error: %s", err)
	}
}

func TestLoadRunConfigDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := loadRunConfig("testdata/does-not-exist.toml")
	if err == nil {
		t.Fatal("expected an error for a missing config file")
	}
	if cfg != defaultRunConfig() {
		t.Errorf("expected loadRunConfig to return defaults alongside its error, got %+v", cfg)
	}
}
