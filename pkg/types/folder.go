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

type FolderType int

const (
	FolderTypeDefault   FolderType = 0
	FolderTypeCommon    FolderType = 1
	FolderTypeBunch     FolderType = 2
	FolderTypeTrash     FolderType = 3
	FolderTypeUser      FolderType = 5
	FolderTypeShare     FolderType = 6
	FolderTypeProjects  FolderType = 8
	FolderTypeFavorites FolderType = 10
	FolderTypeRecent    FolderType = 11
	FolderTypeTemplates FolderType = 12
	FolderTypePrivacy   FolderType = 13
)

var folderTypeNames = map[FolderType]string{
	FolderTypeDefault:   "default",
	FolderTypeCommon:    "common",
	FolderTypeBunch:     "bunch",
	FolderTypeTrash:     "trash",
	FolderTypeUser:      "user",
	FolderTypeShare:     "share",
	FolderTypeProjects:  "projects",
	FolderTypeFavorites: "favorites",
	FolderTypeRecent:    "recent",
	FolderTypeTemplates: "templates",
	FolderTypePrivacy:   "privacy",
}

func (t FolderType) String() string {
	if name, ok := folderTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// IsSystem reports whether the type marks a well-known root provisioned
// through the bunch registry. Bunch folders are not system folders.
func (t FolderType) IsSystem() bool {
	switch t {
	case FolderTypeDefault, FolderTypeBunch:
		return false
	}
	_, ok := folderTypeNames[t]
	return ok
}

// DisplayTitle is the title shown for well-known roots instead of the stored one.
func (t FolderType) DisplayTitle() (string, bool) {
	switch t {
	case FolderTypeUser:
		return "My Documents", true
	case FolderTypeCommon:
		return "Common Documents", true
	case FolderTypeShare:
		return "Shared with Me", true
	case FolderTypeRecent:
		return "Recent", true
	case FolderTypeFavorites:
		return "Favorites", true
	case FolderTypeTemplates:
		return "Templates", true
	case FolderTypeTrash:
		return "Trash", true
	case FolderTypePrivacy:
		return "Private Room", true
	case FolderTypeProjects:
		return "Project Documents", true
	}
	return "", false
}

type Folder struct {
	ID           int64      `json:"id"`
	TenantID     int64      `json:"tenant_id"`
	ParentID     int64      `json:"parent_id"`
	Title        string     `json:"title"`
	FolderType   FolderType `json:"folder_type"`
	CreateBy     uuid.UUID  `json:"create_by"`
	CreateOn     time.Time  `json:"create_on"`
	ModifiedBy   uuid.UUID  `json:"modified_by"`
	ModifiedOn   time.Time  `json:"modified_on"`
	FoldersCount int        `json:"folders_count"`
	FilesCount   int        `json:"files_count"`

	// derived per query
	RootFolderID   int64      `json:"root_folder_id"`
	RootFolderType FolderType `json:"root_folder_type"`
	RootCreateBy   uuid.UUID  `json:"root_create_by"`
	Shared         bool       `json:"shared"`
}

// IsRoot reports whether the folder is at the top of its hierarchy.
func (f *Folder) IsRoot() bool {
	return f.ParentID == 0
}

// ResolveRoot fills root metadata for a folder without ancestors.
func (f *Folder) ResolveRoot() {
	if f.RootFolderID == 0 {
		f.RootFolderID = f.ID
	}
	if f.RootFolderType == FolderTypeDefault && f.IsRoot() {
		f.RootFolderType = f.FolderType
	}
	if f.RootCreateBy == uuid.Nil {
		f.RootCreateBy = f.CreateBy
	}
}

// ClosureEdge is one row of the folder tree: FolderID descends from
// ParentID at distance Level. Level 0 is the self link.
type ClosureEdge struct {
	FolderID int64 `json:"folder_id"`
	ParentID int64 `json:"parent_id"`
	Level    int   `json:"level"`
}

type BunchBinding struct {
	TenantID int64  `json:"tenant_id"`
	Key      string `json:"key"`
	FolderID int64  `json:"folder_id"`
}
