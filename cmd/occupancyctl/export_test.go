package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunExport_WritesAnEmptySnapshotToFile(t *testing.T) {
	dir := t.TempDir()
	configPath := writeConfig(t, dir, "hierarchy.json", `[
		{"id": "kitchen", "kind": "AREA", "contributes_to_parent": true}
	]`)
	outPath := filepath.Join(dir, "snapshot.json")

	require.NoError(t, runExport(configPath, outPath))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.NotEmpty(t, data)
}
