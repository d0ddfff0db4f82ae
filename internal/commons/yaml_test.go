package commons

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string   `yaml:"name"`
	Tags  []string `yaml:"tags"`
	Limit int      `yaml:"limit"`
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "file.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "name: mugs\ntags: [kitchen, gifts]\nlimit: 3\n")

	got, err := LoadYAML[sample](path)
	require.NoError(t, err)
	assert.Equal(t, &sample{Name: "mugs", Tags: []string{"kitchen", "gifts"}, Limit: 3}, got)
}

func TestLoadYAML_Errors(t *testing.T) {
	_, err := LoadYAML[sample](filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading")

	_, err = LoadYAML[sample](writeFile(t, "name: mugs\nlimt: 3\n"))
	assert.ErrorContains(t, err, "limt")

	_, err = LoadYAML[sample](writeFile(t, "name: [unclosed\n"))
	assert.ErrorContains(t, err, "parsing")
}
