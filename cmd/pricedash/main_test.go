package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestViewCommand_MockProvider(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := `
symbols: [AAPL, MSFT]
provider:
  name: mock
store:
  backend: memory
logging:
  level: error
`
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--config", cfgPath, "view", "aapl", "--period", "1m"})
	if err := execute(); err != nil {
		t.Fatalf("view: %v", err)
	}

	got := out.String()
	for _, want := range []string{"AAPL 1M", "change: ", "date", "price"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestImportExportCommands(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	cfg := `
symbols = ["AAPL"]

[provider]
name = "mock"

[store]
backend = "sqlite"
sqlite_path = "` + filepath.ToSlash(filepath.Join(dir, "prices.db")) + `"

[logging]
level = "error"
`
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	in := filepath.Join(dir, "in.csv")
	if err := os.WriteFile(in, []byte("date,AAPL,MSFT\n2024-01-02,185.64,370.87\n2024-01-03,184.25,\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--config", cfgPath, "import", "--wide", in})
	if err := execute(); err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out.String(), "imported 3 of 3 rows") {
		t.Errorf("import output = %s", out.String())
	}

	out.Reset()
	rootCmd.SetArgs([]string{"--config", cfgPath, "export"})
	if err := execute(); err != nil {
		t.Fatalf("export: %v", err)
	}
	want := "date,symbol,price\n2024-01-02,AAPL,185.64\n2024-01-03,AAPL,184.25\n2024-01-02,MSFT,370.87\n"
	if out.String() != want {
		t.Errorf("export =\n%s\nwant\n%s", out.String(), want)
	}
}

func TestFailingCommandReleasesStore(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "prices.db")
	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := `
symbols: [AAPL]
provider:
  name: mock
store:
  backend: sqlite
  sqlite_path: ` + filepath.ToSlash(dbPath) + `
logging:
  level: error
`
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"--config", cfgPath, "view", "TSLA"})
	err := execute()
	if err == nil || !strings.Contains(err.Error(), "unknown symbol TSLA") {
		t.Fatalf("view TSLA err = %v", err)
	}
	if current != nil {
		t.Error("app still open after a failing command")
	}
	// The last connection to close checkpoints and removes the WAL file.
	if _, err := os.Stat(dbPath + "-wal"); !os.IsNotExist(err) {
		t.Errorf("WAL file left behind: %v", err)
	}
}
