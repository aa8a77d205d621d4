package search

import "github.com/poiesic/wordbook/core"

// SearchMonitor provides hooks to observe the search process.
// Hooks are called from the goroutine running the search, one query at
// a time per call to Search.
type SearchMonitor interface {
	Start(queryID, query string)
	AfterDispatch(source string, results []core.LookupResult)
	SourceFailed(source string, err error)
	AfterMerge(candidates []core.LookupResult)
	EnrichFailed(headword string, err error)
	Finish(results []core.LookupResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_, _ string)                             {}
func (n *noopMonitor) AfterDispatch(_ string, _ []core.LookupResult) {}
func (n *noopMonitor) SourceFailed(_ string, _ error)                {}
func (n *noopMonitor) AfterMerge(_ []core.LookupResult)              {}
func (n *noopMonitor) EnrichFailed(_ string, _ error)                {}
func (n *noopMonitor) Finish(_ []core.LookupResult)                  {}
