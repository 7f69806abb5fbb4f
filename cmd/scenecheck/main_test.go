package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/milk9111/redroom/prefabs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() { prefabs.SetDiskDir("prefabs") })
	cmd := newCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestShippedScenesAreValid(t *testing.T) {
	out, err := execute(t, "--dir=")
	require.NoError(t, err)
	assert.Contains(t, out, "2 scene(s) ok")
}

func TestReportsBrokenScene(t *testing.T) {
	dir := t.TempDir()
	scene := "name: broken\nentities:\n  - name: box\n    components:\n      transform:\n        translation: [0, 0, 0]\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte(scene), 0o644))

	_, err := execute(t, "--dir", dir, "broken.yaml")
	require.Error(t, err)
	assert.ErrorIs(t, err, prefabs.ErrNoPlayer)
	assert.ErrorIs(t, err, prefabs.ErrNoCamera)
	assert.Contains(t, err.Error(), "broken.yaml")
}

func TestReportsUnknownComponent(t *testing.T) {
	dir := t.TempDir()
	scene := `name: typo
entities:
  - prefab: player.yaml
  - prefab: camera.yaml
  - name: box
    components:
      transfrom:
        translation: [0, 0, 0]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "typo.yaml"), []byte(scene), 0o644))

	_, err := execute(t, "--dir", dir, "typo.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no builder for component "transfrom"`)
}
