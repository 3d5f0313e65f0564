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

package db

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/basenana/nanadocs/pkg/types"
)

const (
	TableFolder      = "files_folder"
	TableFolderTree  = "files_folder_tree"
	TableBunchObject = "files_bunch_objects"
	TableTag         = "files_tag"
	TableTagLink     = "files_tag_link"
	TableSecurity    = "files_security"
	TableFile        = "files_file"
)

type Folder struct {
	ID           int64  `gorm:"column:id;primaryKey"`
	TenantID     int64  `gorm:"column:tenant_id;index:folder_tenant_parent"`
	ParentID     int64  `gorm:"column:parent_id;index:folder_tenant_parent"`
	Title        string `gorm:"column:title;size:400;index:folder_title"`
	FolderType   int    `gorm:"column:folder_type"`
	CreateBy     string `gorm:"column:create_by;size:38;index:folder_create_by"`
	CreateOn     int64  `gorm:"column:create_on"`
	ModifiedBy   string `gorm:"column:modified_by;size:38"`
	ModifiedOn   int64  `gorm:"column:modified_on;index:folder_modified_on"`
	FoldersCount int    `gorm:"column:folders_count"`
	FilesCount   int    `gorm:"column:files_count"`
}

func (f Folder) TableName() string {
	return TableFolder
}

func (f *Folder) FromFolder(folder *types.Folder) *Folder {
	f.ID = folder.ID
	f.TenantID = folder.TenantID
	f.ParentID = folder.ParentID
	f.Title = folder.Title
	f.FolderType = int(folder.FolderType)
	f.CreateBy = folder.CreateBy.String()
	f.CreateOn = folder.CreateOn.UnixNano()
	f.ModifiedBy = folder.ModifiedBy.String()
	f.ModifiedOn = folder.ModifiedOn.UnixNano()
	f.FoldersCount = folder.FoldersCount
	f.FilesCount = folder.FilesCount
	return f
}

func (f *Folder) ToFolder() *types.Folder {
	return &types.Folder{
		ID:           f.ID,
		TenantID:     f.TenantID,
		ParentID:     f.ParentID,
		Title:        f.Title,
		FolderType:   types.FolderType(f.FolderType),
		CreateBy:     ParseUUID(f.CreateBy),
		CreateOn:     time.Unix(0, f.CreateOn),
		ModifiedBy:   ParseUUID(f.ModifiedBy),
		ModifiedOn:   time.Unix(0, f.ModifiedOn),
		FoldersCount: f.FoldersCount,
		FilesCount:   f.FilesCount,
	}
}

type FolderTree struct {
	FolderID int64 `gorm:"column:folder_id;primaryKey"`
	ParentID int64 `gorm:"column:parent_id;primaryKey;index:tree_parent_level"`
	Level    int   `gorm:"column:level;index:tree_parent_level"`
}

func (t FolderTree) TableName() string {
	return TableFolderTree
}

func (t FolderTree) ToEdge() types.ClosureEdge {
	return types.ClosureEdge{FolderID: t.FolderID, ParentID: t.ParentID, Level: t.Level}
}

// BunchObject binds RightNode (the bunch key) to LeftNode (the folder id).
type BunchObject struct {
	TenantID  int64  `gorm:"column:tenant_id;primaryKey"`
	RightNode string `gorm:"column:right_node;size:255;primaryKey"`
	LeftNode  string `gorm:"column:left_node;size:255;index:bunch_left_node"`
}

func (b BunchObject) TableName() string {
	return TableBunchObject
}

func (b BunchObject) ToBinding() types.BunchBinding {
	folderID, _ := strconv.ParseInt(b.LeftNode, 10, 64)
	return types.BunchBinding{TenantID: b.TenantID, Key: b.RightNode, FolderID: folderID}
}

type Tag struct {
	ID       int64  `gorm:"column:id;primaryKey"`
	TenantID int64  `gorm:"column:tenant_id;index:tag_tenant"`
	Name     string `gorm:"column:name;size:255"`
	Owner    string `gorm:"column:owner;size:38"`
}

func (t Tag) TableName() string {
	return TableTag
}

type TagLink struct {
	TenantID  int64  `gorm:"column:tenant_id;primaryKey"`
	TagID     int64  `gorm:"column:tag_id;primaryKey"`
	EntryID   string `gorm:"column:entry_id;size:32;primaryKey"`
	EntryType int    `gorm:"column:entry_type;primaryKey"`
	CreateBy  string `gorm:"column:create_by;size:38"`
	CreateOn  int64  `gorm:"column:create_on"`
}

func (t TagLink) TableName() string {
	return TableTagLink
}

type Security struct {
	ID        int64  `gorm:"column:id;primaryKey"`
	TenantID  int64  `gorm:"column:tenant_id;index:security_entry"`
	EntryID   string `gorm:"column:entry_id;size:32;index:security_entry"`
	EntryType int    `gorm:"column:entry_type;index:security_entry"`
	Subject   string `gorm:"column:subject;size:38"`
	Owner     string `gorm:"column:owner;size:38"`
	Share     int    `gorm:"column:security"`
	TimeStamp int64  `gorm:"column:timestamp"`
}

func (s Security) TableName() string {
	return TableSecurity
}

type File struct {
	ID             int64  `gorm:"column:id;primaryKey"`
	Version        int    `gorm:"column:version;primaryKey"`
	TenantID       int64  `gorm:"column:tenant_id;index:file_tenant_folder"`
	FolderID       int64  `gorm:"column:folder_id;index:file_tenant_folder"`
	Title          string `gorm:"column:title;size:400"`
	CurrentVersion bool   `gorm:"column:current_version"`
	ContentLength  int64  `gorm:"column:content_length"`
	CreateBy       string `gorm:"column:create_by;size:38;index:file_create_by"`
	CreateOn       int64  `gorm:"column:create_on"`
	ModifiedBy     string `gorm:"column:modified_by;size:38"`
	ModifiedOn     int64  `gorm:"column:modified_on"`
}

func (f File) TableName() string {
	return TableFile
}

func (f *File) FromFile(file *types.File) *File {
	f.ID = file.ID
	f.Version = file.Version
	f.TenantID = file.TenantID
	f.FolderID = file.FolderID
	f.Title = file.Title
	f.CurrentVersion = true
	f.ContentLength = file.ContentLength
	f.CreateBy = file.CreateBy.String()
	f.CreateOn = file.CreateOn.UnixNano()
	f.ModifiedBy = file.ModifiedBy.String()
	f.ModifiedOn = file.ModifiedOn.UnixNano()
	return f
}

func (f *File) ToFile() *types.File {
	return &types.File{
		ID:            f.ID,
		TenantID:      f.TenantID,
		FolderID:      f.FolderID,
		Title:         f.Title,
		Version:       f.Version,
		ContentLength: f.ContentLength,
		CreateBy:      ParseUUID(f.CreateBy),
		CreateOn:      time.Unix(0, f.CreateOn),
		ModifiedBy:    ParseUUID(f.ModifiedBy),
		ModifiedOn:    time.Unix(0, f.ModifiedOn),
	}
}

func ParseUUID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}
