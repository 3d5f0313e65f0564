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

package folders

import (
	"context"
	"errors"
	"fmt"
	"runtime/trace"
	"time"

	"github.com/google/uuid"

	"github.com/basenana/nanadocs/pkg/types"
	"github.com/basenana/nanadocs/utils"
)

// Selector resolves the backing store that owns a foreign folder id.
type Selector interface {
	Select(ctx context.Context, scope types.Scope, id types.ForeignID) (*ForeignStore, error)
}

type ForeignStore struct {
	Folders   ForeignFolderDao
	Files     ForeignFileDao
	Converter IDConverter
}

type ForeignFolder struct {
	ID       string
	ParentID string
	Title    string
}

type ForeignFolderDao interface {
	GetFolder(ctx context.Context, id string) (*ForeignFolder, error)
	// FindFolder fails with types.ErrNotFound when parentID has no child titled title.
	FindFolder(ctx context.Context, parentID, title string) (*ForeignFolder, error)
	CreateFolder(ctx context.Context, parentID, title string, owner uuid.UUID) (*ForeignFolder, error)
}

type ForeignFileDao interface {
	ListFiles(ctx context.Context, folderID string) ([]*types.File, error)
	SaveFile(ctx context.Context, folderID string, file *types.File) error
}

// IDConverter maps foreign folder ids to ids native to the foreign store.
type IDConverter interface {
	Native(id types.ForeignID) (string, error)
	Foreign(native string) types.ForeignID
}

func (m *manager) selectForeign(ctx context.Context, scope types.Scope, to types.ForeignID) (*ForeignStore, *ForeignFolder, error) {
	if m.selector == nil {
		return nil, nil, fmt.Errorf("%w: no foreign store configured", types.ErrNotImplemented)
	}
	store, err := m.selector.Select(ctx, scope, to)
	if err != nil {
		return nil, nil, err
	}
	native, err := store.Converter.Native(to)
	if err != nil {
		return nil, nil, err
	}
	dest, err := store.Folders.GetFolder(ctx, native)
	if err != nil {
		return nil, nil, err
	}
	return store, dest, nil
}

// TransferFolder copies the subtree of id under a folder of a foreign
// store. With move set the local subtree is removed, but only once every
// write to the destination succeeded; a failure on the way leaves the
// source untouched.
func (m *manager) TransferFolder(ctx context.Context, scope types.Scope, id int64, to types.ForeignID, move bool) (map[int64]types.ForeignID, error) {
	defer trace.StartRegion(ctx, "folders.manager.TransferFolder").End()
	defer logOperationLatency("transfer_folder", time.Now())
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if to == "" {
		return nil, fmt.Errorf("%w: destination is empty", types.ErrInvalidArgument)
	}

	source, err := m.meta.GetFolder(ctx, scope.TenantID, id)
	if err != nil {
		return nil, err
	}
	if move && source.FolderType != types.FolderTypeDefault {
		return nil, types.ErrForbidden
	}

	store, dest, err := m.selectForeign(ctx, scope, to)
	if err != nil {
		return nil, logOperationError("transfer_folder", err)
	}

	mapping := make(map[int64]types.ForeignID)
	if err = m.copyToForeign(ctx, scope, store, source, dest.ID, mapping); err != nil {
		utils.ContextLog(ctx, m.logger).Errorw("copy folder to foreign store failed, source kept",
			"folder", id, "destination", to, "copied", len(mapping), "err", err)
		return nil, logOperationError("transfer_folder", err)
	}

	if move {
		if err = m.DeleteFolder(ctx, scope, id); err != nil {
			utils.ContextLog(ctx, m.logger).Errorw("remove moved source failed, data duplicated", "folder", id, "destination", to, "err", err)
			return nil, err
		}
	}
	return mapping, nil
}

func (m *manager) copyToForeign(ctx context.Context, scope types.Scope, store *ForeignStore, folder *types.Folder, parentID string, mapping map[int64]types.ForeignID) error {
	present(folder)
	created, err := store.Folders.CreateFolder(ctx, parentID, folder.Title, folder.CreateBy)
	if err != nil {
		return err
	}
	mapping[folder.ID] = store.Converter.Foreign(created.ID)

	files, err := m.meta.ListFiles(ctx, scope.TenantID, folder.ID)
	if err != nil {
		return err
	}
	for _, f := range files {
		dup := *f
		dup.ID = 0
		dup.FolderID = 0
		if err = store.Files.SaveFile(ctx, created.ID, &dup); err != nil {
			return err
		}
	}

	children, err := m.meta.ListFolders(ctx, scope.TenantID, types.FolderFilter{ParentID: &folder.ID})
	if err != nil {
		return err
	}
	for _, child := range children {
		if err = m.copyToForeign(ctx, scope, store, child, created.ID, mapping); err != nil {
			return err
		}
	}
	return nil
}

func (m *manager) foreignConflicts(ctx context.Context, scope types.Scope, store *ForeignStore, folder *types.Folder, dest *ForeignFolder, result map[int64]string) error {
	localFiles, err := m.meta.ListFiles(ctx, scope.TenantID, folder.ID)
	if err != nil {
		return err
	}
	foreignFiles, err := store.Files.ListFiles(ctx, dest.ID)
	if err != nil {
		return err
	}
	collectFileConflicts(localFiles, foreignFiles, result)

	children, err := m.meta.ListFolders(ctx, scope.TenantID, types.FolderFilter{ParentID: &folder.ID})
	if err != nil {
		return err
	}
	for _, child := range children {
		present(child)
		matched, err := store.Folders.FindFolder(ctx, dest.ID, child.Title)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				continue
			}
			return err
		}
		if err = m.foreignConflicts(ctx, scope, store, child, matched, result); err != nil {
			return err
		}
	}
	return nil
}
