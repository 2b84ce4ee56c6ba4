package project

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, ManifestName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[package]
name = "demo"

[convert]
out_dir = "build"
runtime = "include"
strict = true
module = true
`)
	m, err := Load(filepath.Join(dir, ManifestName))
	if err != nil {
		t.Fatal(err)
	}
	if m.Config.Package.Name != "demo" {
		t.Errorf("name = %q", m.Config.Package.Name)
	}
	if !m.Config.Convert.Strict || !m.Config.Convert.Module {
		t.Error("convert flags lost")
	}
	if m.Config.Convert.Runtime != "include" {
		t.Errorf("runtime = %q", m.Config.Convert.Runtime)
	}
	if m.Root != dir {
		t.Errorf("root = %q", m.Root)
	}
}

func TestLoadRejectsBadRuntime(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "[convert]\nruntime = \"bundle\"\n")
	if _, err := Load(filepath.Join(dir, ManifestName)); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[package]\nname = \"up\"\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	m, found, err := Find(nested)
	if err != nil || !found {
		t.Fatalf("found=%v err=%v", found, err)
	}
	if m.Config.Package.Name != "up" {
		t.Errorf("name = %q", m.Config.Package.Name)
	}
}

func TestFindMiss(t *testing.T) {
	_, found, err := Find(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Fatal("no manifest should be found in an empty tree")
	}
}
