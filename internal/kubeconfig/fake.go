package kubeconfig

import (
	"fmt"
	"sort"
	"sync"
)

// FakeClient is an in-memory kubeconfig for tests.
type FakeClient struct {
	mu      sync.Mutex
	Entries map[string]bool
	Current string
	Err     error // returned from every method when set
}

// NewFakeClient seeds a fake kubeconfig with the given context names.
func NewFakeClient(contexts ...string) *FakeClient {
	entries := make(map[string]bool, len(contexts))
	for _, c := range contexts {
		entries[c] = true
	}
	f := &FakeClient{Entries: entries}
	if len(contexts) > 0 {
		f.Current = contexts[0]
	}
	return f
}

func (f *FakeClient) Contexts() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	names := make([]string, 0, len(f.Entries))
	for name := range f.Entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (f *FakeClient) CurrentContext() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	if f.Current == "" {
		return "", fmt.Errorf("current kubeconfig context is not set")
	}
	return f.Current, nil
}

func (f *FakeClient) RemoveContexts(names ...string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	var removed []string
	for _, name := range names {
		if f.Entries[name] {
			delete(f.Entries, name)
			if f.Current == name {
				f.Current = ""
			}
			removed = append(removed, name)
		}
	}
	return removed, nil
}
