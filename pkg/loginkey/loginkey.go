// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package loginkey normalizes user-typed login identifiers before lookup.

Normalization must match what provisioning stored, otherwise a user who
types "Ana@School.EDU" is told their credentials are invalid.
*/
package loginkey

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Email returns the canonical form of a staff email: trimmed, NFKC-normalized
// and Unicode case-folded.
func Email(raw string) string {
	return cases.Fold().String(norm.NFKC.String(strings.TrimSpace(raw)))
}

// Identifier returns the canonical form of a student identifier: trimmed and
// NFKC-normalized. Case is preserved because institutions issue case-sensitive codes.
func Identifier(raw string) string {
	return norm.NFKC.String(strings.TrimSpace(raw))
}
