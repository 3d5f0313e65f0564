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
	"strings"

	"github.com/basenana/nanadocs/pkg/types"
)

// CanMoveOrCopy reports the files that would collide at the destination,
// keyed by source file id. Folders whose titles collide are descended
// into pairwise; a collision of folder titles alone yields no entry.
func (m *manager) CanMoveOrCopy(ctx context.Context, scope types.Scope, ids []int64, to types.FolderRef) (map[int64]string, error) {
	defer trace.StartRegion(ctx, "folders.manager.CanMoveOrCopy").End()
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	result := make(map[int64]string)
	switch dst := to.(type) {
	case nil:
		return nil, fmt.Errorf("%w: destination is empty", types.ErrInvalidArgument)
	case types.LocalID:
		if err := m.localConflicts(ctx, scope, ids, int64(dst), result); err != nil {
			return nil, logOperationError("can_move_or_copy", err)
		}
	case types.ForeignID:
		store, dest, err := m.selectForeign(ctx, scope, dst)
		if err != nil {
			return nil, logOperationError("can_move_or_copy", err)
		}
		for _, id := range ids {
			source, err := m.meta.GetFolder(ctx, scope.TenantID, id)
			if err != nil {
				return nil, err
			}
			present(source)
			matched, err := store.Folders.FindFolder(ctx, dest.ID, source.Title)
			if err != nil {
				if errors.Is(err, types.ErrNotFound) {
					continue
				}
				return nil, err
			}
			if err = m.foreignConflicts(ctx, scope, store, source, matched, result); err != nil {
				return nil, err
			}
		}
	default:
		return nil, types.ErrNotImplemented
	}
	return result, nil
}

func (m *manager) localConflicts(ctx context.Context, scope types.Scope, ids []int64, destID int64, result map[int64]string) error {
	if destID == 0 {
		return fmt.Errorf("%w: destination is empty", types.ErrInvalidArgument)
	}
	if _, err := m.meta.GetFolder(ctx, scope.TenantID, destID); err != nil {
		return err
	}

	sources := make([]*types.Folder, 0, len(ids))
	for _, id := range ids {
		inside, err := m.meta.IsAncestor(ctx, id, destID)
		if err != nil {
			return err
		}
		if inside {
			return fmt.Errorf("%w: folder %d is the destination or one of its ancestors", types.ErrInvalidOperation, id)
		}
		source, err := m.meta.GetFolder(ctx, scope.TenantID, id)
		if err != nil {
			return err
		}
		sources = append(sources, source)
	}
	return m.compareFolders(ctx, scope, sources, destID, result)
}

// compareFolders pairs each source with the folders under destID sharing
// its lower-cased title.
func (m *manager) compareFolders(ctx context.Context, scope types.Scope, sources []*types.Folder, destID int64, result map[int64]string) error {
	if len(sources) == 0 {
		return nil
	}
	titles := make([]string, 0, len(sources))
	for _, s := range sources {
		titles = append(titles, s.Title)
	}
	matched, err := m.meta.FindTitleConflicts(ctx, scope.TenantID, destID, titles)
	if err != nil {
		return err
	}
	if len(matched) == 0 {
		return nil
	}
	byTitle := make(map[string][]*types.Folder, len(matched))
	for _, f := range matched {
		k := strings.ToLower(f.Title)
		byTitle[k] = append(byTitle[k], f)
	}

	for _, source := range sources {
		for _, target := range byTitle[strings.ToLower(source.Title)] {
			if target.ID == source.ID {
				continue
			}
			srcFiles, err := m.meta.ListFiles(ctx, scope.TenantID, source.ID)
			if err != nil {
				return err
			}
			dstFiles, err := m.meta.ListFiles(ctx, scope.TenantID, target.ID)
			if err != nil {
				return err
			}
			collectFileConflicts(srcFiles, dstFiles, result)

			children, err := m.meta.ListFolders(ctx, scope.TenantID, types.FolderFilter{ParentID: &source.ID})
			if err != nil {
				return err
			}
			if err = m.compareFolders(ctx, scope, children, target.ID, result); err != nil {
				return err
			}
		}
	}
	return nil
}

func collectFileConflicts(source, dest []*types.File, result map[int64]string) {
	if len(source) == 0 || len(dest) == 0 {
		return
	}
	existed := make(map[string]struct{}, len(dest))
	for _, f := range dest {
		existed[strings.ToLower(f.Title)] = struct{}{}
	}
	for _, f := range source {
		if _, ok := existed[strings.ToLower(f.Title)]; ok {
			result[f.ID] = f.Title
		}
	}
}
