// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package data

import (
	"strings"
	"unicode"
)

// SnakeCase normalizes a provider field name, e.g. "totalCurrentAssets" or
// "Total Current Assets", to "total_current_assets". Runs of capitals are
// only split where a capitalized word begins, so "EBITDAMargins" becomes
// "ebitda_margins" and "trailingPE" becomes "trailingpe".
func SnakeCase(name string) string {
	runes := []rune(name)

	// a space between a word and a capitalized word becomes an underscore
	spaced := make([]rune, len(runes))
	for idx, r := range runes {
		if r == ' ' && idx > 0 && isWordRune(runes[idx-1]) && startsWord(runes, idx+1) {
			spaced[idx] = '_'
		} else {
			spaced[idx] = r
		}
	}

	var sb strings.Builder
	sb.Grow(len(spaced) + 8)
	for idx, r := range spaced {
		if idx > 0 && spaced[idx-1] != '_' && startsWord(spaced, idx) {
			sb.WriteRune('_')
		}

		if isASCIIAlnum(r) {
			sb.WriteRune(unicode.ToLower(r))
		} else {
			sb.WriteRune('_')
		}
	}

	return sb.String()
}

// startsWord is true when runes[idx] is an upper case letter followed by a
// lower case letter
func startsWord(runes []rune, idx int) bool {
	if idx < 0 || idx+1 >= len(runes) {
		return false
	}

	return isUpper(runes[idx]) && isLower(runes[idx+1])
}

func isUpper(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

func isLower(r rune) bool {
	return r >= 'a' && r <= 'z'
}

func isASCIIAlnum(r rune) bool {
	return isUpper(r) || isLower(r) || (r >= '0' && r <= '9')
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
