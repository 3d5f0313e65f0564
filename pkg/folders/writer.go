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
	"runtime/trace"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/basenana/nanadocs/pkg/events"
	"github.com/basenana/nanadocs/pkg/types"
	"github.com/basenana/nanadocs/utils"
)

// SaveFolder updates the folder in place when its id exists, otherwise
// it creates a new folder under folder.ParentID and returns the new id.
func (m *manager) SaveFolder(ctx context.Context, scope types.Scope, folder *types.Folder) (int64, error) {
	defer trace.StartRegion(ctx, "folders.manager.SaveFolder").End()
	defer logOperationLatency("save_folder", time.Now())
	if err := scope.Validate(); err != nil {
		return 0, err
	}
	if folder == nil {
		return 0, types.ErrInvalidArgument
	}
	folder.TenantID = scope.TenantID
	folder.Title = utils.SanitizeTitle(folder.Title)
	if folder.Title == "" {
		return 0, types.ErrInvalidArgument
	}

	var id int64
	err := m.Transaction(ctx, func(ctx context.Context) error {
		if folder.ID != 0 {
			existing, err := m.meta.GetFolder(ctx, scope.TenantID, folder.ID)
			switch {
			case err == nil:
				id = existing.ID
				return m.updateFolder(ctx, scope, existing, folder)
			case !errors.Is(err, types.ErrNotFound):
				return err
			}
		}
		var err error
		id, err = m.insertFolder(ctx, scope, folder)
		return err
	})
	if err != nil {
		utils.ContextLog(ctx, m.logger).Errorw("save folder failed", "folder", folder.ID, "parent", folder.ParentID, "err", err)
		return 0, logOperationError("save_folder", err)
	}
	return id, nil
}

func (m *manager) updateFolder(ctx context.Context, scope types.Scope, existing, patch *types.Folder) error {
	existing.Title = patch.Title
	if patch.CreateBy != uuid.Nil {
		existing.CreateBy = patch.CreateBy
	}
	existing.ModifiedBy = scope.Actor
	existing.ModifiedOn = time.Now()
	if err := m.meta.UpdateFolder(ctx, existing); err != nil {
		return err
	}
	*patch = *existing
	m.indexAsync(ctx, existing)
	m.publishEvent(ctx, events.ActionTypeUpdate, existing, 0)
	return nil
}

// insertFolder must run inside Transaction.
func (m *manager) insertFolder(ctx context.Context, scope types.Scope, folder *types.Folder) (int64, error) {
	if folder.ParentID != 0 {
		if _, err := m.meta.GetFolder(ctx, scope.TenantID, folder.ParentID); err != nil {
			return 0, err
		}
	}

	now := time.Now()
	folder.ID = utils.GenerateNewID()
	folder.TenantID = scope.TenantID
	if folder.CreateBy == uuid.Nil {
		folder.CreateBy = scope.Actor
	}
	folder.CreateOn = now
	folder.ModifiedBy = scope.Actor
	folder.ModifiedOn = now
	folder.FoldersCount = 0
	folder.FilesCount = 0

	if err := m.meta.CreateFolder(ctx, folder); err != nil {
		return 0, err
	}
	if err := m.meta.InsertSubtree(ctx, folder.ID, folder.ParentID); err != nil {
		return 0, err
	}

	m.indexAsync(ctx, folder)
	m.recountAsync(ctx, scope, folder.ParentID)
	m.publishEvent(ctx, events.ActionTypeCreate, folder, 0)
	return folder.ID, nil
}

// RenameFolder returns the folder id; an unchanged title writes nothing.
func (m *manager) RenameFolder(ctx context.Context, scope types.Scope, id int64, title string) (int64, error) {
	defer trace.StartRegion(ctx, "folders.manager.RenameFolder").End()
	if err := scope.Validate(); err != nil {
		return 0, err
	}
	title = utils.SanitizeTitle(title)
	if title == "" {
		return 0, types.ErrInvalidArgument
	}

	folder, err := m.meta.GetFolder(ctx, scope.TenantID, id)
	if err != nil {
		return 0, err
	}
	if folder.Title == title {
		return folder.ID, nil
	}

	folder.Title = title
	folder.ModifiedBy = scope.Actor
	folder.ModifiedOn = time.Now()
	if err = m.meta.UpdateFolder(ctx, folder); err != nil {
		utils.ContextLog(ctx, m.logger).Errorw("rename folder failed", "folder", id, "err", err)
		return 0, logOperationError("rename_folder", err)
	}
	m.indexAsync(ctx, folder)
	m.publishEvent(ctx, events.ActionTypeUpdate, folder, 0)
	return folder.ID, nil
}

func (m *manager) DeleteFolder(ctx context.Context, scope types.Scope, id int64) error {
	defer trace.StartRegion(ctx, "folders.manager.DeleteFolder").End()
	defer logOperationLatency("delete_folder", time.Now())
	if err := scope.Validate(); err != nil {
		return err
	}
	if id == 0 {
		return types.ErrInvalidArgument
	}

	err := m.Transaction(ctx, func(ctx context.Context) error {
		folder, err := m.meta.GetFolder(ctx, scope.TenantID, id)
		if err != nil {
			return err
		}
		if folder.FolderType.IsSystem() {
			return types.ErrForbidden
		}
		return m.deleteSubtree(ctx, scope, folder)
	})
	if err != nil {
		utils.ContextLog(ctx, m.logger).Errorw("delete folder failed", "folder", id, "err", err)
		return logOperationError("delete_folder", err)
	}
	return nil
}

// deleteSubtree must run inside Transaction.
func (m *manager) deleteSubtree(ctx context.Context, scope types.Scope, folder *types.Folder) error {
	ids, err := m.meta.DeleteSubtree(ctx, folder.ID)
	if err != nil {
		return err
	}
	keys, err := m.meta.GetBindingKeys(ctx, scope.TenantID, ids)
	if err != nil {
		return err
	}

	if err = m.meta.DeleteFolders(ctx, scope.TenantID, ids); err != nil {
		return err
	}
	entryIDs := make([]string, 0, len(ids))
	for _, fid := range ids {
		entryIDs = append(entryIDs, strconv.FormatInt(fid, 10))
	}
	if err = m.meta.DeleteTagLinks(ctx, scope.TenantID, entryIDs, types.EntryTypeFolder); err != nil {
		return err
	}
	if err = m.meta.DeleteOrphanTags(ctx, scope.TenantID); err != nil {
		return err
	}
	if err = m.meta.DeleteSecurity(ctx, scope.TenantID, entryIDs, types.EntryTypeFolder); err != nil {
		return err
	}
	if err = m.meta.DeleteBindings(ctx, scope.TenantID, ids); err != nil {
		return err
	}
	if err = m.meta.DeleteFilesInFolders(ctx, scope.TenantID, ids); err != nil {
		return err
	}

	afterCommit(ctx, func() {
		bindingKeys := make([]string, 0, len(keys))
		for _, k := range keys {
			bindingKeys = append(bindingKeys, k)
		}
		m.cache.invalidBindings(scope.TenantID, bindingKeys...)
	})
	m.unindexAsync(ctx, scope.TenantID, ids)
	m.recountAsync(ctx, scope, folder.ParentID)
	m.publishEvent(ctx, events.ActionTypeDestroy, folder, 0)
	return nil
}

func (m *manager) ReassignFolders(ctx context.Context, scope types.Scope, ids []int64, newOwner uuid.UUID) error {
	defer trace.StartRegion(ctx, "folders.manager.ReassignFolders").End()
	if err := scope.Validate(); err != nil {
		return err
	}
	if newOwner == uuid.Nil {
		return types.ErrInvalidArgument
	}
	if len(ids) == 0 {
		return nil
	}
	if err := m.meta.UpdateFoldersOwner(ctx, scope.TenantID, ids, newOwner); err != nil {
		return logOperationError("reassign_folders", err)
	}
	return nil
}
