package floof

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextLookupNearestAncestorWins(t *testing.T) {
	root := newRootContext(newTestRun("/config", nil), "test")
	defer root.Cancel()

	root.set(varWorkdir, "/a")
	mid := root.Child("")
	leaf := mid.Child("")

	assert.Equal(t, "/a", leaf.Workdir())

	mid.set(varWorkdir, "/b")
	assert.Equal(t, "/b", leaf.Workdir())
	assert.Equal(t, "/b", mid.Workdir())
	assert.Equal(t, "/a", root.Workdir())

	// The current node is consulted first.
	leaf.set(varWorkdir, "/c")
	assert.Equal(t, "/c", leaf.Workdir())
	assert.Equal(t, "/b", mid.Workdir())
}

func TestContextWorkdirDefaultsToConfigDir(t *testing.T) {
	root := newRootContext(newTestRun("/config", nil), "test")
	defer root.Cancel()

	assert.Equal(t, "/config", root.Child("").Workdir())
}

func TestContextJoinWorkdir(t *testing.T) {
	root := newRootContext(newTestRun("/config", nil), "test")
	defer root.Cancel()
	root.set(varWorkdir, "/work")

	assert.Equal(t, "/abs", root.joinWorkdir("/abs"))
	assert.Equal(t, "/work/sub", root.joinWorkdir("./sub"))
	assert.Equal(t, "/config/sub", root.joinWorkdir("sub"))
}

func TestContextCancelCascades(t *testing.T) {
	root := newRootContext(newTestRun("/config", nil), "test")
	mid := root.Child("")
	leaf := mid.Child("")

	require.NoError(t, leaf.Err())

	mid.Cancel()

	select {
	case <-leaf.Done():
	case <-time.After(time.Second):
		t.Fatal("descendant was not canceled")
	}
	assert.Error(t, leaf.Err())
	assert.Error(t, mid.Err())
	assert.NoError(t, root.Err())

	root.Cancel()
	assert.Error(t, root.Err())
}

func TestContextSetNeverMutatesParent(t *testing.T) {
	root := newRootContext(newTestRun("/config", nil), "test")
	defer root.Cancel()

	child := root.Child("")
	child.set(varTriggered, true)

	_, inWatch := root.triggeredByChange()
	assert.False(t, inWatch)

	triggered, inWatch := child.triggeredByChange()
	assert.True(t, inWatch)
	assert.True(t, triggered)
}
