/*
 Copyright 2023 NanaFS Authors.

 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package utils

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const MaxTitleLength = 170

var invalidTitleChars = regexp.MustCompile(`[\\/:*?"<>|\t\r\n]`)

// SanitizeTitle normalizes a folder or file title before persistence.
// Overlong titles are truncated to MaxTitleLength runes, keeping a short
// extension when there is one.
func SanitizeTitle(title string) string {
	title = strings.TrimSpace(norm.NFC.String(title))
	if title == "" {
		return title
	}

	runes := []rune(title)
	if len(runes) > MaxTitleLength {
		pos := strings.LastIndex(title, ".")
		ext := []rune{}
		if pos >= 0 {
			ext = []rune(title[pos:])
		}
		if len(ext) > 0 && len(ext) < 20 {
			runes = append(runes[:MaxTitleLength-len(ext)], ext...)
		} else {
			runes = runes[:MaxTitleLength]
		}
		title = string(runes)
	}
	return invalidTitleChars.ReplaceAllString(title, "_")
}
