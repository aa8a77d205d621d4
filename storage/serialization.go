// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"fmt"

	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/wordbook/core"
)

var (
	// LookupResultMUS serializes a single result.
	LookupResultMUS mus.Serializer[core.LookupResult] = lookupResultMUS{}

	// LookupResultsMUS serializes a result list.
	LookupResultsMUS mus.Serializer[[]core.LookupResult] = sliceMUS[core.LookupResult]{elem: LookupResultMUS}

	stringsMUS mus.Serializer[[]string] = sliceMUS[string]{elem: ord.String}
)

// sliceMUS writes a varint length followed by the elements. An empty
// slice decodes as nil.
type sliceMUS[T any] struct {
	elem mus.Serializer[T]
}

func (s sliceMUS[T]) Marshal(v []T, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(len(v)), bs)
	for _, e := range v {
		n += s.elem.Marshal(e, bs[n:])
	}
	return n
}

func (s sliceMUS[T]) Unmarshal(bs []byte) (v []T, n int, err error) {
	length, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	// Every element takes at least one byte.
	if length > uint64(len(bs)-n) {
		return nil, n, ErrTruncatedData
	}
	if length == 0 {
		return nil, n, nil
	}
	v = make([]T, length)
	for i := range v {
		e, m, err := s.elem.Unmarshal(bs[n:])
		n += m
		if err != nil {
			return nil, n, err
		}
		v[i] = e
	}
	return v, n, nil
}

func (s sliceMUS[T]) Size(v []T) (size int) {
	size = varint.Uint64.Size(uint64(len(v)))
	for _, e := range v {
		size += s.elem.Size(e)
	}
	return size
}

func (s sliceMUS[T]) Skip(bs []byte) (n int, err error) {
	length, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return n, err
	}
	if length > uint64(len(bs)-n) {
		return n, ErrTruncatedData
	}
	for range length {
		m, err := s.elem.Skip(bs[n:])
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// lookupResultMUS writes the fields in declaration order.
type lookupResultMUS struct{}

func (lookupResultMUS) Marshal(r core.LookupResult, bs []byte) (n int) {
	n = ord.String.Marshal(r.Headword, bs)
	n += stringsMUS.Marshal(r.Alternates, bs[n:])
	n += stringsMUS.Marshal(r.Definitions, bs[n:])
	n += ord.String.Marshal(r.Reading, bs[n:])
	n += stringsMUS.Marshal(r.Translations, bs[n:])
	n += stringsMUS.Marshal(r.Examples, bs[n:])
	n += ord.String.Marshal(r.Source, bs[n:])
	return n
}

func (lookupResultMUS) Unmarshal(bs []byte) (r core.LookupResult, n int, err error) {
	var m int
	steps := []func(b []byte) (int, error){
		func(b []byte) (n int, err error) { r.Headword, n, err = ord.String.Unmarshal(b); return },
		func(b []byte) (n int, err error) { r.Alternates, n, err = stringsMUS.Unmarshal(b); return },
		func(b []byte) (n int, err error) { r.Definitions, n, err = stringsMUS.Unmarshal(b); return },
		func(b []byte) (n int, err error) { r.Reading, n, err = ord.String.Unmarshal(b); return },
		func(b []byte) (n int, err error) { r.Translations, n, err = stringsMUS.Unmarshal(b); return },
		func(b []byte) (n int, err error) { r.Examples, n, err = stringsMUS.Unmarshal(b); return },
		func(b []byte) (n int, err error) { r.Source, n, err = ord.String.Unmarshal(b); return },
	}
	for _, step := range steps {
		m, err = step(bs[n:])
		n += m
		if err != nil {
			return core.LookupResult{}, n, err
		}
	}
	return r, n, nil
}

func (lookupResultMUS) Size(r core.LookupResult) (size int) {
	size = ord.String.Size(r.Headword)
	size += stringsMUS.Size(r.Alternates)
	size += stringsMUS.Size(r.Definitions)
	size += ord.String.Size(r.Reading)
	size += stringsMUS.Size(r.Translations)
	size += stringsMUS.Size(r.Examples)
	size += ord.String.Size(r.Source)
	return size
}

func (lookupResultMUS) Skip(bs []byte) (n int, err error) {
	skips := []func([]byte) (int, error){
		ord.String.Skip,
		stringsMUS.Skip,
		stringsMUS.Skip,
		ord.String.Skip,
		stringsMUS.Skip,
		stringsMUS.Skip,
		ord.String.Skip,
	}
	for _, skip := range skips {
		m, err := skip(bs[n:])
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// MarshalResults serializes a result list to bytes.
func MarshalResults(results []core.LookupResult) []byte {
	buf := make([]byte, LookupResultsMUS.Size(results))
	LookupResultsMUS.Marshal(results, buf)
	return buf
}

// UnmarshalResults deserializes a result list. An encoded empty list
// decodes as an empty, non-nil slice.
func UnmarshalResults(data []byte) ([]core.LookupResult, error) {
	results, n, err := LookupResultsMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrSerializationFailed, len(data)-n)
	}
	if results == nil {
		results = []core.LookupResult{}
	}
	return results, nil
}
