package placement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostbridge-dev/hostbridge-sdk/extension"
)

func record(t *testing.T, name string, origin extension.Origin, caps ...extension.Capability) *extension.Record {
	t.Helper()
	rec, err := extension.NewRecord(extension.MustNewIdentity(name), origin, caps, "1.0.0", nil)
	require.NoError(t, err)
	return rec
}

func Test_ComputeAll_UnionOfCatalogs(t *testing.T) {
	local := []*extension.Record{
		record(t, "web-only", extension.OriginLocal, extension.CapabilityWeb),
		record(t, "ui-only", extension.OriginLocal, extension.CapabilityUI),
	}
	remote := []*extension.Record{
		record(t, "workspace-only", extension.OriginRemote, extension.CapabilityWorkspace),
	}

	table := ComputeAll(local, remote, true)

	assert.Equal(t, 3, table.Len())
	assert.Equal(t, LocalHost, table.DecisionFor(extension.MustNewIdentity("web-only")))
	assert.Equal(t, None, table.DecisionFor(extension.MustNewIdentity("ui-only")))
	assert.Equal(t, RemoteHost, table.DecisionFor(extension.MustNewIdentity("workspace-only")))
}

func Test_ComputeAll_NoRemoteEnvironment(t *testing.T) {
	local := []*extension.Record{
		record(t, "e1", extension.OriginLocal, extension.CapabilityUI),
		record(t, "e2", extension.OriginLocal, extension.CapabilityWeb),
	}
	// A remote catalog handed in despite hasRemote=false must be ignored.
	remote := []*extension.Record{
		record(t, "e1", extension.OriginRemote, extension.CapabilityUI),
	}

	table := ComputeAll(local, remote, false)

	assert.Equal(t, 2, table.Len())
	assert.Equal(t, None, table.DecisionFor(extension.MustNewIdentity("e1")))
	assert.Equal(t, LocalHost, table.DecisionFor(extension.MustNewIdentity("e2")))
	assert.Empty(t, table.Filter(RemoteHost))
}

func Test_ComputeAll_PresentInBothResolvedOnce(t *testing.T) {
	// Installed both locally and remotely: the ui rule sees
	// installedRemotely=true and wins, never LocalHost.
	local := []*extension.Record{
		record(t, "both", extension.OriginLocal, extension.CapabilityUI, extension.CapabilityWeb),
	}
	remote := []*extension.Record{
		record(t, "both", extension.OriginRemote, extension.CapabilityUI, extension.CapabilityWeb),
	}

	table := ComputeAll(local, remote, true)

	assert.Equal(t, 1, table.Len())
	assert.Equal(t, RemoteHost, table.DecisionFor(extension.MustNewIdentity("both")))
}

func Test_ComputeAll_Deterministic(t *testing.T) {
	local := []*extension.Record{
		record(t, "a", extension.OriginLocal, extension.CapabilityWeb),
		record(t, "b", extension.OriginLocal, extension.CapabilityUI),
		record(t, "c", extension.OriginLocal, extension.CapabilityWeb, extension.CapabilityUI),
	}
	remote := []*extension.Record{
		record(t, "b", extension.OriginRemote, extension.CapabilityUI),
		record(t, "d", extension.OriginRemote, extension.CapabilityWorkspace),
	}

	first := ComputeAll(local, remote, true)
	for range 50 {
		again := ComputeAll(local, remote, true)
		require.True(t, first.Equal(again))
		require.Equal(t, first.Filter(LocalHost), again.Filter(LocalHost))
		require.Equal(t, first.Filter(RemoteHost), again.Filter(RemoteHost))
	}
}

func Test_ComputeAll_EmptyCatalogs(t *testing.T) {
	table := ComputeAll(nil, nil, false)
	assert.Equal(t, 0, table.Len())
}
