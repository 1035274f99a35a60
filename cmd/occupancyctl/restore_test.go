package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRestore_WarnsOnMalformedTimestampButStillRestores(t *testing.T) {
	dir := t.TempDir()
	configPath := writeConfig(t, dir, "hierarchy.json", `[
		{"id": "kitchen", "kind": "AREA", "contributes_to_parent": true}
	]`)
	snapshotPath := writeConfig(t, dir, "snapshot.json", `{
		"kitchen": {"is_occupied": true, "occupied_until": "not-a-timestamp"}
	}`)

	out := captureStdout(t, func() {
		require.NoError(t, runRestore(configPath, snapshotPath))
	})

	assert.Contains(t, out, "warning: kitchen")
}

func TestRunRestore_RejectsAnUnknownConfigPath(t *testing.T) {
	dir := t.TempDir()
	snapshotPath := writeConfig(t, dir, "snapshot.json", `{}`)

	require.Error(t, runRestore(dir+"/does-not-exist.json", snapshotPath))
}
