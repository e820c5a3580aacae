package lock

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireAndRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deploy.lock")

	l, err := Acquire(path)
	require.NoError(t, err)
	require.NoError(t, l.Release())

	// Reacquire after release works
	l2, err := Acquire(path)
	require.NoError(t, err)
	require.NoError(t, l2.Release())
}

func TestAcquireHeldLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deploy.lock")

	l, err := Acquire(path)
	require.NoError(t, err)
	defer l.Release()

	// Same process, second descriptor: flock must refuse
	_, err = Acquire(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrHeld))
}

func TestReleaseTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deploy.lock")

	l, err := Acquire(path)
	require.NoError(t, err)
	require.NoError(t, l.Release())
	assert.NoError(t, l.Release())
}

func TestPathFor(t *testing.T) {
	a := PathFor("/tmp", "/etc/nginx/conf.d/app.conf")
	b := PathFor("/tmp", "/etc/nginx/conf.d/other.conf")

	assert.NotEqual(t, a, b)
	assert.Equal(t, a, PathFor("/tmp", "/etc/nginx/conf.d/app.conf"))
	assert.Equal(t, "/tmp", filepath.Dir(a))
}

func TestAcquireBadDirectory(t *testing.T) {
	_, err := Acquire(filepath.Join(t.TempDir(), "missing", "deploy.lock"))
	assert.Error(t, err)
}
