// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package cmdstate

import (
	"context"
	"testing"

	"github.com/matt-FFFFFF/gitr/internal/output"
	"github.com/stretchr/testify/assert"
)

func TestWithFromRoundTrip(t *testing.T) {
	st := &State{Cwd: "/work", Depth: 2, Prefix: output.PrefixLine, ListOnly: true}

	ctx := With(context.Background(), st)
	assert.Same(t, st, From(ctx))
}

func TestFromMissingStateIsEmpty(t *testing.T) {
	st := From(context.Background())

	assert.NotNil(t, st)
	assert.Zero(t, st.Depth)
	assert.Empty(t, st.Cwd)
}
