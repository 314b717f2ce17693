package source

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[]"), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "transactions", "2024-01.json"))
	touch(t, filepath.Join(dir, "transactions", "2024-02.jsonl"))
	touch(t, filepath.Join(dir, "expenses", "q1.json"))
	touch(t, filepath.Join(dir, "expenses", "notes.txt"))
	touch(t, filepath.Join(dir, "transactions-extra.json"))
	touch(t, filepath.Join(dir, "export.json"))
	touch(t, filepath.Join(dir, "archive", "old.json"))
	touch(t, filepath.Join(dir, ".hidden", "transactions.json"))

	files, err := ScanDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 5 {
		t.Fatalf("ScanDir found %d files, want 5: %+v", len(files), files)
	}

	kinds := CountKinds(files)
	if kinds[KindTransactions] != 3 || kinds[KindExpenses] != 1 || kinds[KindMixed] != 1 {
		t.Errorf("CountKinds = %v", kinds)
	}

	for _, f := range files {
		if f.Name == "expenses/q1.json" && f.Kind != KindExpenses {
			t.Errorf("%s kind = %s, want expenses", f.Name, f.Kind)
		}
	}
}

func TestScanDir_Missing(t *testing.T) {
	files, err := ScanDir(filepath.Join(t.TempDir(), "nope"))
	if err != nil || files != nil {
		t.Errorf("ScanDir(missing) = %v, %v; want nil, nil", files, err)
	}
}
