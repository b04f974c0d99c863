// Package project implements the scaffolding and manifest presence check
// behind the "init" command: creating a new project directory with a
// main.src, a project.toml and an includes/ directory, and warning (never
// failing) when a compiled file imports an external package that
// project.toml does not list.
//
// Full parsing of the manifest's dependency metadata is out of scope; the
// only in-scope behavior here is a warn-only presence/name scan,
// implemented as a minimal line scanner rather than a TOML library, since
// pulling in a parser for two lines of warning text isn't warranted.
package project

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const mainSrcTemplate = `import "@std"

def main() -> i32 {
	std.println("hello, world");
	return 0;
}
`

const manifestTemplate = `[package]
name = %q
version = "0.1.0"

[dependencies]
`

// Scaffold creates dir/main.src, dir/project.toml and dir/includes/ for a
// new project named name. dir must not already contain a project.toml.
func Scaffold(dir, name string) error {
	manifestPath := filepath.Join(dir, "project.toml")
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("init: %s already exists", manifestPath)
	}

	if err := os.MkdirAll(filepath.Join(dir, "includes"), 0o755); err != nil {
		return fmt.Errorf("init: %w", err)
	}

	mainPath := filepath.Join(dir, "main.src")
	if err := os.WriteFile(mainPath, []byte(mainSrcTemplate), 0o644); err != nil {
		return fmt.Errorf("init: %w", err)
	}

	manifest := fmt.Sprintf(manifestTemplate, name)
	if err := os.WriteFile(manifestPath, []byte(manifest), 0o644); err != nil {
		return fmt.Errorf("init: %w", err)
	}

	return nil
}

// Manifest is the subset of project.toml this package cares about: only
// enough to drive the warn-only external-import check, never a full
// dependency graph.
type Manifest struct {
	Name         string
	Dependencies map[string]bool
}

// ReadManifest scans path for a `[package] name = "..."` entry and the set
// of keys under `[dependencies]`. It is a minimal line scanner, not a TOML
// parser, and only recognizes the shapes the init template itself
// produces.
func ReadManifest(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseManifest(f)
}

func parseManifest(r io.Reader) (*Manifest, error) {
	m := &Manifest{Dependencies: make(map[string]bool)}
	section := ""

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
			continue
		}

		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.Trim(strings.TrimSpace(val), `"`)

		switch section {
		case "package":
			if key == "name" {
				m.Name = val
			}
		case "dependencies":
			m.Dependencies[key] = true
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// WarnUnlistedExternal reports (by writing to w, never by returning an
// error: this check is warn-only) every name in imports that
// manifestPath's [dependencies] section does not list. If manifestPath
// does not exist, a single warning is printed and the function returns:
// a missing manifest is not a compile error either.
func WarnUnlistedExternal(w io.Writer, manifestPath string, imports []string) {
	m, err := ReadManifest(manifestPath)
	if err != nil {
		fmt.Fprintf(w, "warning: no project manifest found at %s\n", manifestPath)
		return
	}
	for _, name := range imports {
		if !m.Dependencies[name] {
			fmt.Fprintf(w, "warning: external import %q is not listed in %s\n", name, manifestPath)
		}
	}
}
