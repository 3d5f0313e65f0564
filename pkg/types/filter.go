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

import "github.com/google/uuid"

type FilterType int

const (
	FilterNone FilterType = iota
	FilterFilesOnly
	FilterFoldersOnly
	FilterDocumentsOnly
	FilterPresentationsOnly
	FilterSpreadsheetsOnly
	FilterImagesOnly
	FilterByUser
	FilterByDepartment
	FilterArchiveOnly
	FilterByExtension
	FilterMediaOnly
)

// FilesOnly reports whether no folder can ever match the filter.
func (f FilterType) FilesOnly() bool {
	switch f {
	case FilterFilesOnly, FilterByExtension, FilterDocumentsOnly, FilterImagesOnly,
		FilterPresentationsOnly, FilterSpreadsheetsOnly, FilterArchiveOnly, FilterMediaOnly:
		return true
	}
	return false
}

type SortedBy string

const (
	SortedByDateAndTime         SortedBy = "DateAndTime"
	SortedByDateAndTimeCreation SortedBy = "DateAndTimeCreation"
	SortedByAZ                  SortedBy = "AZ"
	SortedByAuthor              SortedBy = "Author"
)

type OrderBy struct {
	SortedBy SortedBy `json:"sorted_by"`
	IsAsc    bool     `json:"is_asc"`
}

// FolderFilter is the query handed to the folder recorder.
// A nil ParentID does not restrict the parent; WithSubfolders needs one.
type FolderFilter struct {
	ParentID       *int64
	IDs            []int64
	WithSubfolders bool
	CreateBy       []uuid.UUID
	TitleLike      string
	OrderBy        OrderBy
	Offset         int
	Count          int
}
