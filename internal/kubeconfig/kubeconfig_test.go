package kubeconfig

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterCompatible(t *testing.T) {
	markers := []string{"kubeflex", "kind", "k3d", "wds", "its"}

	tests := []struct {
		name     string
		contexts []string
		want     []string
	}{
		{
			name:     "mixed contexts",
			contexts: []string{"kind-kubeflex", "prod-cluster", "wds1", "minikube", "its1"},
			want:     []string{"kind-kubeflex", "wds1", "its1"},
		},
		{
			name:     "no matches",
			contexts: []string{"prod", "staging"},
			want:     nil,
		},
		{
			name:     "empty input",
			contexts: nil,
			want:     nil,
		},
		{
			name:     "marker as substring",
			contexts: []string{"k3d-cluster1"},
			want:     []string{"k3d-cluster1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterCompatible(tt.contexts, markers))
		})
	}
}

func TestFakeClientContextsSorted(t *testing.T) {
	fake := NewFakeClient("zeta", "alpha", "mid")

	contexts, err := fake.Contexts()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, contexts)

	current, err := fake.CurrentContext()
	require.NoError(t, err)
	assert.Equal(t, "zeta", current)
}

func TestFakeClientRemoveContexts(t *testing.T) {
	fake := NewFakeClient("cluster1", "cluster2", "keep")

	removed, err := fake.RemoveContexts("cluster1", "cluster2", "ghost")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"cluster1", "cluster2"}, removed)

	remaining, err := fake.Contexts()
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, remaining)

	// Removing the current context unsets it.
	_, err = fake.CurrentContext()
	assert.Error(t, err)
}

func TestFakeClientErrPropagates(t *testing.T) {
	fake := NewFakeClient("a")
	fake.Err = errors.New("kubeconfig unreadable")

	_, err := fake.Contexts()
	assert.Error(t, err)
	_, err = fake.RemoveContexts("a")
	assert.Error(t, err)
}
