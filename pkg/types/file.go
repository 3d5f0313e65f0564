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
	"time"

	"github.com/google/uuid"
)

type EntryType int

const (
	EntryTypeFolder EntryType = 1
	EntryTypeFile   EntryType = 2
)

// File is the slice of file metadata the folder store depends on.
type File struct {
	ID            int64     `json:"id"`
	TenantID      int64     `json:"tenant_id"`
	FolderID      int64     `json:"folder_id"`
	Title         string    `json:"title"`
	Version       int       `json:"version"`
	ContentLength int64     `json:"content_length"`
	CreateBy      uuid.UUID `json:"create_by"`
	CreateOn      time.Time `json:"create_on"`
	ModifiedBy    uuid.UUID `json:"modified_by"`
	ModifiedOn    time.Time `json:"modified_on"`
}

type Tag struct {
	ID       int64     `json:"id"`
	TenantID int64     `json:"tenant_id"`
	Name     string    `json:"name"`
	Owner    uuid.UUID `json:"owner"`
}

type TagLink struct {
	TenantID  int64     `json:"tenant_id"`
	TagID     int64     `json:"tag_id"`
	EntryID   string    `json:"entry_id"`
	EntryType EntryType `json:"entry_type"`
	CreateBy  uuid.UUID `json:"create_by"`
	CreateOn  time.Time `json:"create_on"`
}

type SecurityRecord struct {
	ID        int64     `json:"id"`
	TenantID  int64     `json:"tenant_id"`
	EntryID   string    `json:"entry_id"`
	EntryType EntryType `json:"entry_type"`
	Subject   uuid.UUID `json:"subject"`
	Owner     uuid.UUID `json:"owner"`
	Share     int       `json:"share"`
	TimeStamp time.Time `json:"timestamp"`
}
