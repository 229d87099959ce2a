package introspect

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

func snapshotPath(dir, name string) string {
	safe := strings.NewReplacer("/", "_", string(filepath.Separator), "_").Replace(name)
	safe = strings.Trim(safe, "._")
	if safe == "" {
		safe = "default"
	}
	return filepath.Join(dir, safe+".json.zst")
}

// SaveSnapshot compresses and writes a Package snapshot under dir, keyed
// by name. Callers key by the pattern they load with, so a later load can
// find the snapshot without resolving the package first.
func SaveSnapshot(dir, name string, pkg *Package) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating snapshot dir: %w", err)
	}

	f, err := os.Create(snapshotPath(dir, name))
	if err != nil {
		return fmt.Errorf("creating snapshot file: %w", err)
	}
	defer f.Close()

	w, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("creating zstd writer: %w", err)
	}

	if err := json.NewEncoder(w).Encode(pkg); err != nil {
		w.Close()
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing zstd writer: %w", err)
	}
	return nil
}

// LoadSnapshot reads a compressed Package snapshot from dir.
func LoadSnapshot(dir, name string) (*Package, error) {
	f, err := os.Open(snapshotPath(dir, name))
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	r, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("creating zstd reader: %w", err)
	}
	defer r.Close()

	var pkg Package
	if err := json.NewDecoder(r).Decode(&pkg); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return &pkg, nil
}

// HasSnapshot checks whether a snapshot exists for the named package.
func HasSnapshot(dir, name string) bool {
	_, err := os.Stat(snapshotPath(dir, name))
	return err == nil
}

// Fingerprint returns a stable content hash of a Package snapshot. Two
// packages with identical names, docs, kinds and member sets hash equal.
func Fingerprint(pkg *Package) string {
	data, err := json.Marshal(pkg)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
