package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llmspell/llmspell/internal/registry"
	"github.com/llmspell/llmspell/internal/types"
)

func TestRegisterAndGetAgent(t *testing.T) {
	reg := registry.New(nil, nil)

	id, err := reg.RegisterAgent(types.AgentRecord{
		Metadata:     types.ComponentMetadata{Name: "coder"},
		Capabilities: []string{"code", "review"},
	})
	require.NoError(t, err)

	got, err := reg.GetAgent(id)
	require.NoError(t, err)
	assert.Equal(t, "coder", got.Metadata.Name)
}

func TestRegisterAgentIsStableAcrossReregistration(t *testing.T) {
	reg := registry.New(nil, nil)

	id1, err := reg.RegisterAgent(types.AgentRecord{Metadata: types.ComponentMetadata{Name: "coder"}})
	require.NoError(t, err)
	id2, err := reg.RegisterAgent(types.AgentRecord{Metadata: types.ComponentMetadata{Name: "coder"}})
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
}

func TestQueryCapabilitySuperset(t *testing.T) {
	reg := registry.New(nil, nil)
	_, err := reg.RegisterAgent(types.AgentRecord{
		Metadata:     types.ComponentMetadata{Name: "coder"},
		Capabilities: []string{"code", "review"},
	})
	require.NoError(t, err)
	_, err = reg.RegisterAgent(types.AgentRecord{
		Metadata:     types.ComponentMetadata{Name: "writer"},
		Capabilities: []string{"write"},
	})
	require.NoError(t, err)

	results := reg.Query(types.CapabilityQuery{Kind: types.KindAgent, Capabilities: []string{"code"}})
	require.Len(t, results, 1)
	assert.Equal(t, "coder", results[0].Name)
}

func TestDeregister(t *testing.T) {
	reg := registry.New(nil, nil)
	id, err := reg.RegisterAgent(types.AgentRecord{Metadata: types.ComponentMetadata{Name: "coder"}})
	require.NoError(t, err)

	require.NoError(t, reg.Deregister(id))
	_, err = reg.GetAgent(id)
	assert.Error(t, err)
}
