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

package v1

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const maxTitleLength = 255

type CreateFolderRequest struct {
	ParentID int64  `json:"parent_id"`
	Title    string `json:"title"`
}

func (r CreateFolderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ParentID, validation.Required, validation.Min(int64(1))),
		validation.Field(&r.Title, validation.Required, validation.Length(1, maxTitleLength)),
	)
}

type RenameFolderRequest struct {
	Title string `json:"title"`
}

func (r RenameFolderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, maxTitleLength)),
	)
}

// RelocateRequest targets a local folder id or a foreign "<provider>-<id>" key.
type RelocateRequest struct {
	To string `json:"to"`
}

func (r RelocateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.To, validation.Required),
	)
}

type ConflictsRequest struct {
	IDs []int64 `json:"ids"`
	To  string  `json:"to"`
}

func (r ConflictsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.IDs, validation.Required),
		validation.Field(&r.To, validation.Required),
	)
}

type ReassignRequest struct {
	IDs   []int64 `json:"ids"`
	Owner string  `json:"owner"`
}

func (r ReassignRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Owner, validation.Required, is.UUID),
	)
}

type ListChildrenRequest struct {
	SortedBy       string `form:"sorted_by"`
	IsAsc          bool   `form:"is_asc"`
	Filter         int    `form:"filter"`
	Subject        string `form:"subject"`
	SubjectGroup   bool   `form:"subject_group"`
	Search         string `form:"search"`
	WithSubfolders bool   `form:"with_subfolders"`
	Offset         int    `form:"offset"`
	Count          int    `form:"count"`
}

func (r ListChildrenRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SortedBy, validation.In("", "DateAndTime", "DateAndTimeCreation", "AZ", "Author")),
		validation.Field(&r.Subject, is.UUID),
		validation.Field(&r.Offset, validation.Min(0)),
		validation.Field(&r.Count, validation.Min(0)),
	)
}

type SearchRequest struct {
	Text  string `form:"text"`
	Bunch bool   `form:"bunch"`
}

func (r SearchRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Text, validation.Required),
	)
}
