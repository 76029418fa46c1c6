// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnavailable(t *testing.T) {
	tests := []struct {
		name  string
		cause error
		want  string
	}{
		{"with cause", errors.New("connection refused"), "list works: record source unavailable: connection refused"},
		{"without cause", nil, "list works: record source unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Unavailable("list works", tt.cause)
			assert.EqualError(t, err, tt.want)
			assert.True(t, IsUnavailable(err))
			assert.False(t, IsNotFound(err))
		})
	}
}

func TestIsNotFound_Wrapped(t *testing.T) {
	err := fmt.Errorf("author A1: %w", ErrNotFound)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsUnavailable(err))
}

func TestMalformedRecordError(t *testing.T) {
	withID := &MalformedRecordError{Kind: KindWork, ID: "W1", Reason: "missing title"}
	assert.Equal(t, "malformed work record W1: missing title", withID.Error())

	noID := &MalformedRecordError{Kind: KindAuthor, Reason: "missing id"}
	assert.Equal(t, "malformed author record: missing id", noID.Error())

	var target *MalformedRecordError
	assert.True(t, errors.As(fmt.Errorf("skipping: %w", withID), &target))
	assert.Equal(t, KindWork, target.Kind)
}

func TestCanonicalID(t *testing.T) {
	tests := []struct{ in, want string }{
		{"A1", "https://openalex.org/A1"},
		{" T101 ", "https://openalex.org/T101"},
		{"https://openalex.org/W9", "https://openalex.org/W9"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalID(tt.in))
		})
	}
}

func TestQueryAndFilterIsEmpty(t *testing.T) {
	assert.True(t, Query{}.IsEmpty())
	assert.False(t, Query{Text: "reef"}.IsEmpty())
	assert.False(t, Query{ConceptID: "T202"}.IsEmpty())
	assert.True(t, WorksFilter{}.IsEmpty())
	assert.False(t, WorksFilter{AuthorID: "A1"}.IsEmpty())
}
