package baseline

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/dotcommander/pyright-action/internal/types"
)

// FormatVersion is written to new baseline files.
const FormatVersion = "1.0"

// Baseline represents a snapshot of known diagnostics that are not annotated
type Baseline struct {
	Version        string   `json:"version"`
	CreatedAt      string   `json:"created_at"`
	PyrightVersion string   `json:"pyright_version,omitempty"`
	Fingerprints   []string `json:"fingerprints"`

	root  string          // file paths are fingerprinted relative to root
	index map[string]bool // For fast lookup
}

// CreateBaseline creates a new baseline from a list of diagnostics. Absolute
// file paths are made relative to root so the baseline survives checkouts in
// different directories.
func CreateBaseline(diags []types.Diagnostic, root string) *Baseline {
	b := &Baseline{
		Version: FormatVersion,
		root:    root,
		index:   make(map[string]bool),
	}

	for _, d := range diags {
		if d.Severity == types.SeverityInformation {
			continue
		}
		fp := b.fingerprint(d)
		if !b.index[fp] {
			b.Fingerprints = append(b.Fingerprints, fp)
			b.index[fp] = true
		}
	}

	// Sort for deterministic output
	sort.Strings(b.Fingerprints)

	return b
}

// LoadBaseline loads a baseline from a JSON file
func LoadBaseline(path, root string) (*Baseline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read baseline file: %w", err)
	}

	var b Baseline
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse baseline file %s: %w", path, err)
	}

	b.root = root
	b.index = make(map[string]bool, len(b.Fingerprints))
	for _, fp := range b.Fingerprints {
		b.index[fp] = true
	}

	return &b, nil
}

// SaveBaseline saves the baseline to a JSON file
func (b *Baseline) SaveBaseline(path string) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal baseline: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write baseline file: %w", err)
	}

	return nil
}

// IsKnown checks if a diagnostic is in the baseline
func (b *Baseline) IsKnown(d types.Diagnostic) bool {
	if b == nil || b.index == nil {
		return false
	}
	return b.index[b.fingerprint(d)]
}

// Len returns the number of fingerprints.
func (b *Baseline) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Fingerprints)
}

// fingerprint hashes file + rule + normalized message. Positions are left
// out since they shift with unrelated edits.
func (b *Baseline) fingerprint(d types.Diagnostic) string {
	file := d.File
	if b.root != "" && filepath.IsAbs(file) {
		if rel, err := filepath.Rel(b.root, file); err == nil {
			file = rel
		}
	}

	data := fmt.Sprintf("%s|%s|%s", filepath.ToSlash(file), d.Rule, normalizeMessage(d.Message))
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

var (
	doubleQuoted = regexp.MustCompile(`"[^"]+"`)
	singleQuoted = regexp.MustCompile(`(^|\s)'([^']+)'(\s|$)`)
	number       = regexp.MustCompile(`\b\d+\b`)
)

// normalizeMessage replaces names and numbers with placeholders so renamed
// symbols keep matching.
func normalizeMessage(msg string) string {
	msg = doubleQuoted.ReplaceAllString(msg, `"*"`)
	// Only when surrounded by whitespace, to leave contractions alone
	msg = singleQuoted.ReplaceAllString(msg, `$1'*'$3`)
	msg = number.ReplaceAllString(msg, `N`)
	return strings.Join(strings.Fields(msg), " ")
}
