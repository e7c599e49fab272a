// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package grep

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripSeparator(t *testing.T) {
	assert.Equal(t, []string{"-i", "TODO"}, stripSeparator([]string{"--", "-i", "TODO"}))
	assert.Equal(t, []string{"TODO"}, stripSeparator([]string{"TODO"}))
	assert.Empty(t, stripSeparator([]string{"--"}))
	assert.Empty(t, stripSeparator(nil))
	assert.Equal(t, []string{"TODO", "--", "src"}, stripSeparator([]string{"TODO", "--", "src"}),
		"only a leading separator is stripped")
}
