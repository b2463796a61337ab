package cases

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/phrazzld/viva-api/internal/domain"
	"github.com/phrazzld/viva-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalCase = `
id: minimal
title: Minimal case
difficulty: easy
vignette: A patient.
phases:
  intro: {question: "History?", checklist: [{label: Onset, keywords: [onset]}]}
  ddx: {question: "Differential?"}
  diagnostics: {question: "Tests?"}
  management: {question: "Plan?"}
  closing: {question: "Summary?"}
`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadBuiltin(t *testing.T) {
	lib, err := Load("", quietLogger())
	require.NoError(t, err)

	cases, err := lib.List(context.Background())
	require.NoError(t, err)
	require.Len(t, cases, 3)

	ids := []string{cases[0].ID, cases[1].ID, cases[2].ID}
	assert.Equal(t, []string{"acute-chest-pain", "acute-stroke", "community-acquired-pneumonia"}, ids)

	for _, c := range cases {
		for _, p := range domain.Phases {
			assert.NotEmpty(t, c.Script(p).Question, "%s/%s", c.ID, p)
		}
	}
}

func TestLibraryGet(t *testing.T) {
	lib, err := Load("", quietLogger())
	require.NoError(t, err)

	c, err := lib.Get(context.Background(), "acute-chest-pain")
	require.NoError(t, err)
	assert.Equal(t, "Acute chest pain", c.Title)
	assert.NotEmpty(t, c.RedFlags)

	_, err = lib.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrCaseNotFound)
	assert.True(t, store.IsNotFoundError(err))
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "minimal.yml"), []byte(minimalCase), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o600))

	override := `
id: acute-stroke
title: Overridden stroke
vignette: Replacement vignette.
phases:
  intro: {question: "History?", checklist: [{label: Onset, keywords: [onset]}]}
  ddx: {question: "Differential?"}
  diagnostics: {question: "Tests?"}
  management: {question: "Plan?"}
  closing: {question: "Summary?"}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stroke.yaml"), []byte(override), 0o600))

	lib, err := Load(dir, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 4, lib.Len())

	c, err := lib.Get(context.Background(), "acute-stroke")
	require.NoError(t, err)
	assert.Equal(t, "Overridden stroke", c.Title)
}

func TestLoadOverlayInvalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("id: bad\ntitle: Bad\n"), 0o600))

	_, err := Load(dir, quietLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidCase)
	assert.Contains(t, err.Error(), "bad.yaml")

	_, err = Load(filepath.Join(dir, "does-not-exist"), quietLogger())
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	c, err := Parse([]byte(minimalCase))
	require.NoError(t, err)
	assert.Equal(t, "minimal", c.ID)
	assert.Equal(t, "A patient.", c.Vignette)

	_, err = Parse([]byte(minimalCase + "unknown_field: true\n"))
	assert.ErrorIs(t, err, domain.ErrInvalidCase, "unknown fields are rejected")

	_, err = Parse([]byte("{not yaml"))
	assert.ErrorIs(t, err, domain.ErrInvalidCase)
}

func TestParseFSDuplicateIDs(t *testing.T) {
	fsys := fstest.MapFS{
		"a.yaml": {Data: []byte(minimalCase)},
		"b.yaml": {Data: []byte(minimalCase)},
	}
	_, err := ParseFS(fsys, ".")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidCase)
	assert.Contains(t, err.Error(), "defined in a.yaml and b.yaml")
}

func TestNewLibraryRejectsDuplicates(t *testing.T) {
	c, err := Parse([]byte(minimalCase))
	require.NoError(t, err)

	_, err = NewLibrary(c, c)
	assert.ErrorIs(t, err, domain.ErrInvalidCase)
}
