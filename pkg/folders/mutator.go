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

	"github.com/basenana/nanadocs/pkg/events"
	"github.com/basenana/nanadocs/pkg/types"
	"github.com/basenana/nanadocs/utils"
)

func (m *manager) MoveFolder(ctx context.Context, scope types.Scope, id int64, to types.FolderRef) (types.FolderRef, error) {
	defer trace.StartRegion(ctx, "folders.manager.MoveFolder").End()
	defer logOperationLatency("move_folder", time.Now())
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	switch dst := to.(type) {
	case nil:
		return nil, fmt.Errorf("%w: destination is empty", types.ErrInvalidArgument)
	case types.LocalID:
		if err := m.moveLocal(ctx, scope, id, int64(dst)); err != nil {
			return nil, logOperationError("move_folder", err)
		}
		return types.LocalID(id), nil
	case types.ForeignID:
		mapping, err := m.TransferFolder(ctx, scope, id, dst, true)
		if err != nil {
			return nil, err
		}
		return mapping[id], nil
	default:
		return nil, types.ErrNotImplemented
	}
}

func (m *manager) moveLocal(ctx context.Context, scope types.Scope, id, parentID int64) error {
	if parentID == 0 {
		return fmt.Errorf("%w: destination is empty", types.ErrInvalidArgument)
	}

	var (
		moved     *types.Folder
		oldParent int64
	)
	err := m.Transaction(ctx, func(ctx context.Context) error {
		folder, err := m.meta.GetFolder(ctx, scope.TenantID, id)
		if err != nil {
			return err
		}
		if folder.FolderType != types.FolderTypeDefault {
			return types.ErrForbidden
		}
		if _, err = m.meta.GetFolder(ctx, scope.TenantID, parentID); err != nil {
			return err
		}
		if folder.ParentID == parentID {
			return nil
		}

		if err = m.meta.RelocateSubtree(ctx, id, parentID); err != nil {
			return err
		}
		if err = m.meta.UpdateFolderParent(ctx, scope.TenantID, id, parentID, scope.Actor); err != nil {
			return err
		}

		oldParent = folder.ParentID
		folder.ParentID = parentID
		folder.ModifiedBy = scope.Actor
		folder.ModifiedOn = time.Now()
		moved = folder

		m.recountAsync(ctx, scope, parentID, oldParent)
		m.indexAsync(ctx, folder)
		m.publishEvent(ctx, events.ActionTypeMove, folder, oldParent)
		return nil
	})
	if err != nil {
		utils.ContextLog(ctx, m.logger).Errorw("move folder failed", "folder", id, "parent", parentID, "err", err)
		return err
	}
	if moved != nil {
		m.logger.Debugw("folder moved", "folder", id, "from", oldParent, "to", parentID)
	}
	return nil
}

func (m *manager) CopyFolder(ctx context.Context, scope types.Scope, id int64, to types.FolderRef) (types.FolderRef, error) {
	defer trace.StartRegion(ctx, "folders.manager.CopyFolder").End()
	defer logOperationLatency("copy_folder", time.Now())
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	switch dst := to.(type) {
	case nil:
		return nil, fmt.Errorf("%w: destination is empty", types.ErrInvalidArgument)
	case types.LocalID:
		newID, err := m.copyLocal(ctx, scope, id, int64(dst))
		if err != nil {
			return nil, logOperationError("copy_folder", err)
		}
		return types.LocalID(newID), nil
	case types.ForeignID:
		mapping, err := m.TransferFolder(ctx, scope, id, dst, false)
		if err != nil {
			return nil, err
		}
		return mapping[id], nil
	default:
		return nil, types.ErrNotImplemented
	}
}

// copyLocal saves a new record under the destination; edges come from the
// destination's ancestry. Child folders and files are not copied.
func (m *manager) copyLocal(ctx context.Context, scope types.Scope, id, parentID int64) (int64, error) {
	if parentID == 0 {
		return 0, fmt.Errorf("%w: destination is empty", types.ErrInvalidArgument)
	}
	source, err := m.meta.GetFolder(ctx, scope.TenantID, id)
	if err != nil {
		return 0, err
	}
	dest, err := m.meta.GetFolder(ctx, scope.TenantID, parentID)
	if err != nil {
		return 0, err
	}

	present(source)
	folderType := source.FolderType
	if folderType == types.FolderTypeBunch {
		folderType = types.FolderTypeDefault
	}
	dup := &types.Folder{
		ParentID:       dest.ID,
		Title:          source.Title,
		FolderType:     folderType,
		CreateBy:       scope.Actor,
		RootFolderID:   dest.RootFolderID,
		RootFolderType: dest.RootFolderType,
		RootCreateBy:   dest.RootCreateBy,
		Shared:         dest.Shared,
	}
	return m.SaveFolder(ctx, scope, dup)
}

// RecalculateCounts refreshes the cached counters of id and every ancestor.
// A folder deleted in the meantime has nothing left to settle.
func (m *manager) RecalculateCounts(ctx context.Context, scope types.Scope, id int64) error {
	defer trace.StartRegion(ctx, "folders.manager.RecalculateCounts").End()
	defer logOperationLatency("recalculate_counts", time.Now())
	if err := scope.Validate(); err != nil {
		return err
	}
	if _, err := m.meta.GetFolder(ctx, scope.TenantID, id); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil
		}
		return err
	}

	path, err := m.meta.AncestorPath(ctx, id)
	if err != nil {
		return err
	}
	path = append(path, id)
	for _, fid := range path {
		folders, err := m.meta.CountChildren(ctx, fid)
		if err != nil {
			return err
		}
		files, err := m.meta.CountFiles(ctx, scope.TenantID, fid)
		if err != nil {
			return err
		}
		if err = m.meta.UpdateFolderCounts(ctx, fid, folders, files); err != nil {
			return logOperationError("recalculate_counts", err)
		}
	}
	return nil
}
