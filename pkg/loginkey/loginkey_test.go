// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package loginkey_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/serenity/pkg/loginkey"
)

/*
TestEmail covers trimming, case folding and compatibility normalization.
*/
func TestEmail(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"already_canonical", "ana@school.edu", "ana@school.edu"},
		{"mixed_case", "  Ana@School.EDU ", "ana@school.edu"},
		{"fullwidth_letters", "ａｎａ@school.edu", "ana@school.edu"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, loginkey.Email(tt.raw))
		})
	}
}

/*
TestIdentifier preserves case but strips whitespace.
*/
func TestIdentifier(t *testing.T) {
	assert.Equal(t, "STU-2026-001", loginkey.Identifier(" STU-2026-001\t"))
	assert.Equal(t, "stu-1", loginkey.Identifier("ｓｔｕ-1"))
}
