// Copyright (c) 2026, the vidra contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "non-empty string returns redacted",
			input: "secret-password",
			want:  "***************",
		},
		{
			name:  "empty string returns empty",
			input: "",
			want:  "",
		},
		{
			name:  "single character",
			input: "a",
			want:  "*",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := RedactString(tt.input)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsRedactedValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{
			name:  "all asterisks returns true",
			input: "********",
			want:  true,
		},
		{
			name:  "empty string returns false",
			input: "",
			want:  false,
		},
		{
			name:  "regular string returns false",
			input: "some-secret",
			want:  false,
		},
		{
			name:  "mixed content returns false",
			input: "**a**",
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := IsRedactedValue(tt.input)
			assert.Equal(t, tt.want, got)
		})
	}
}
