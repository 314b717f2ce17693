package source

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanDir discovers export files under dataDir. Files inside
// <dataDir>/transactions and <dataDir>/expenses take their kind from the
// directory; top-level files take it from a "transactions"/"expenses" name
// prefix, and other top-level .json files are treated as mixed exports.
func ScanDir(dataDir string) ([]DiscoveredFile, error) {
	info, err := os.Stat(dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	var files []DiscoveredFile

	err = filepath.WalkDir(dataDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		if d.IsDir() {
			if path != dataDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !isExportFile(d.Name()) {
			return nil
		}

		rel, _ := filepath.Rel(dataDir, path)
		parts := strings.Split(rel, string(filepath.Separator))

		var kind Kind
		if len(parts) == 1 {
			kind = kindFromName(d.Name())
		} else {
			kind = kindFromName(parts[0])
			if kind == KindMixed {
				return nil // nested files outside the two record directories are ignored
			}
		}

		files = append(files, DiscoveredFile{Path: path, Kind: kind, Name: filepath.ToSlash(rel)})
		return nil
	})

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}

func isExportFile(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".jsonl", ".ndjson":
		return true
	}
	return false
}

func kindFromName(name string) Kind {
	lower := strings.ToLower(name)
	switch {
	case strings.HasPrefix(lower, "transaction"), strings.HasPrefix(lower, "sale"), strings.HasPrefix(lower, "revenue"):
		return KindTransactions
	case strings.HasPrefix(lower, "expense"), strings.HasPrefix(lower, "cost"):
		return KindExpenses
	}
	return KindMixed
}

// CountKinds returns how many files of each kind were discovered.
func CountKinds(files []DiscoveredFile) map[Kind]int {
	out := make(map[Kind]int)
	for _, f := range files {
		out[f.Kind]++
	}
	return out
}
