// ABOUTME: Tests for logger setup
// ABOUTME: File output, level selection and the no-destination case
package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreLogrus(t *testing.T) {
	t.Cleanup(func() {
		logrus.SetOutput(os.Stderr)
		logrus.SetLevel(logrus.InfoLevel)
	})
}

func TestSetupWritesToFile(t *testing.T) {
	restoreLogrus(t)
	path := filepath.Join(t.TempDir(), "floor.log")

	closer, err := Setup(Options{File: path, Debug: true})
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())

	logrus.WithField("dancers", 5).Debug("rebuilt floor")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "rebuilt floor")
	assert.Contains(t, string(data), "dancers=5")
}

func TestSetupInfoLevelByDefault(t *testing.T) {
	restoreLogrus(t)
	closer, err := Setup(Options{})
	require.NoError(t, err)
	assert.NoError(t, closer.Close())
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())
}

func TestSetupBadPath(t *testing.T) {
	restoreLogrus(t)
	_, err := Setup(Options{File: filepath.Join(t.TempDir(), "missing", "dir", "x.log")})
	assert.Error(t, err)
}
