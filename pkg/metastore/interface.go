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

package metastore

import (
	"context"

	"github.com/google/uuid"

	"github.com/basenana/nanadocs/pkg/types"
)

type Meta interface {
	Transactor
	FolderTree
	FolderRecorder
	BunchRecorder
	EntryLinkRecorder
	FileRecorder
}

// Transactor runs fn in a transaction carried by the context passed to fn.
// When ctx already carries one, fn joins it and the outermost caller commits.
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// FolderTree maintains the closure table of the folder hierarchy.
type FolderTree interface {
	AncestorPath(ctx context.Context, folderID int64) ([]int64, error)
	RootOf(ctx context.Context, folderID int64) (int64, error)
	Descendants(ctx context.Context, folderID int64, minLevel int) ([]int64, error)
	SubfolderIDs(ctx context.Context, folderID int64, recursive bool) ([]int64, error)
	IsAncestor(ctx context.Context, ancestorID, folderID int64) (bool, error)
	ListEdges(ctx context.Context, folderID int64) ([]types.ClosureEdge, error)
	InsertSubtree(ctx context.Context, newFolderID, parentID int64) error
	RelocateSubtree(ctx context.Context, folderID, newParentID int64) error
	DeleteSubtree(ctx context.Context, folderID int64) ([]int64, error)
	CountChildren(ctx context.Context, folderID int64) (int, error)
}

type FolderRecorder interface {
	GetFolder(ctx context.Context, tenantID, id int64) (*types.Folder, error)
	FindFolder(ctx context.Context, tenantID int64, title string, parentID int64) (*types.Folder, error)
	ListFolders(ctx context.Context, tenantID int64, filter types.FolderFilter) ([]*types.Folder, error)
	FindTitleConflicts(ctx context.Context, tenantID, parentID int64, titles []string) ([]*types.Folder, error)
	CreateFolder(ctx context.Context, folder *types.Folder) error
	UpdateFolder(ctx context.Context, folder *types.Folder) error
	UpdateFolderParent(ctx context.Context, tenantID, id, parentID int64, modifiedBy uuid.UUID) error
	UpdateFolderCounts(ctx context.Context, id int64, folders, files int) error
	UpdateFoldersOwner(ctx context.Context, tenantID int64, ids []int64, owner uuid.UUID) error
	DeleteFolders(ctx context.Context, tenantID int64, ids []int64) error
	// RootFolderOf returns the root of the hierarchy the given parent belongs to.
	RootFolderOf(ctx context.Context, tenantID, parentID int64) (*types.Folder, error)
}

type BunchRecorder interface {
	GetBindings(ctx context.Context, tenantID int64, keys []string) (map[string]int64, error)
	GetBindingKeys(ctx context.Context, tenantID int64, folderIDs []int64) (map[int64]string, error)
	// SaveBinding inserts the binding unless one exists; it returns false when
	// another binding for the key was already committed.
	SaveBinding(ctx context.Context, binding types.BunchBinding) (bool, error)
	DeleteBindings(ctx context.Context, tenantID int64, folderIDs []int64) error
}

// EntryLinkRecorder stores tag links and security rows keyed by entry id and type.
type EntryLinkRecorder interface {
	SaveTag(ctx context.Context, tag *types.Tag) error
	LinkTag(ctx context.Context, link types.TagLink) error
	ListTagLinks(ctx context.Context, tenantID int64, entryIDs []string, entryType types.EntryType) ([]types.TagLink, error)
	DeleteTagLinks(ctx context.Context, tenantID int64, entryIDs []string, entryType types.EntryType) error
	DeleteOrphanTags(ctx context.Context, tenantID int64) error
	ListTags(ctx context.Context, tenantID int64) ([]*types.Tag, error)

	SaveSecurity(ctx context.Context, record *types.SecurityRecord) error
	ListSecurity(ctx context.Context, tenantID int64, entryIDs []string, entryType types.EntryType) ([]*types.SecurityRecord, error)
	DeleteSecurity(ctx context.Context, tenantID int64, entryIDs []string, entryType types.EntryType) error
	SharedEntries(ctx context.Context, tenantID int64, entryIDs []string, entryType types.EntryType) (map[string]bool, error)
}

type FileRecorder interface {
	GetFile(ctx context.Context, tenantID, id int64) (*types.File, error)
	SaveFile(ctx context.Context, file *types.File) error
	ListFiles(ctx context.Context, tenantID, folderID int64) ([]*types.File, error)
	CountFiles(ctx context.Context, tenantID, folderID int64) (int, error)
	CountSubtreeFiles(ctx context.Context, tenantID, folderID int64) (int, error)
	DeleteFilesInFolders(ctx context.Context, tenantID int64, folderIDs []int64) error
	UsedSpace(ctx context.Context, tenantID int64, user uuid.UUID) (int64, error)
}
