package floof

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetWorkdirAbsolute(t *testing.T) {
	root := newRootContext(newTestRun("/config", nil), "t")
	defer root.Cancel()

	require.NoError(t, (&setWorkdirOp{path: "/tmp"}).Run(root))
	assert.Equal(t, "/tmp", root.Workdir())
}

func TestSetWorkdirDotRelativeResolvesAgainstCurrent(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(base, "sub"), 0o755))

	root := newRootContext(newTestRun("/config", nil), "t")
	defer root.Cancel()
	root.set(varWorkdir, base)

	require.NoError(t, (&setWorkdirOp{path: "./sub"}).Run(root))
	assert.Equal(t, filepath.Join(base, "sub"), root.Workdir())
}

func TestSetWorkdirBareRelativeResolvesAgainstConfigDir(t *testing.T) {
	configDir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(configDir, "web"), 0o755))

	root := newRootContext(newTestRun(configDir, nil), "t")
	defer root.Cancel()
	// Even with a different current workdir, a bare relative path anchors
	// at the config-file directory.
	root.set(varWorkdir, "/tmp")

	require.NoError(t, (&setWorkdirOp{path: "web"}).Run(root))
	assert.Equal(t, filepath.Join(configDir, "web"), root.Workdir())
}

func TestSetWorkdirRejectsMissingDirectory(t *testing.T) {
	root := newRootContext(newTestRun("/config", nil), "t")
	defer root.Cancel()

	err := (&setWorkdirOp{path: "/does/not/exist"}).Run(root)

	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}
