// Package cache wraps a source so repeated lookups of the same word are
// answered from a storage.ResultCache. Entries expire, and the cache
// lives only as long as the process.
package cache
