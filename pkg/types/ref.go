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

package types

import (
	"strconv"
)

// FolderRef addresses a folder either in the local store or in a foreign
// store reached through a selector.
type FolderRef interface {
	folderRef()
	String() string
}

type LocalID int64

func (LocalID) folderRef() {}

func (l LocalID) String() string {
	return strconv.FormatInt(int64(l), 10)
}

type ForeignID string

func (ForeignID) folderRef() {}

func (f ForeignID) String() string {
	return string(f)
}

// ParseFolderRef turns a raw id into a LocalID when it is numeric,
// otherwise into a ForeignID.
func ParseFolderRef(raw string) FolderRef {
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return LocalID(id)
	}
	return ForeignID(raw)
}
