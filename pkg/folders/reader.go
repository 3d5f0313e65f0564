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
	"runtime/trace"
	"time"

	"github.com/google/uuid"

	"github.com/basenana/nanadocs/pkg/types"
)

func (m *manager) GetFolder(ctx context.Context, scope types.Scope, id int64) (*types.Folder, error) {
	defer trace.StartRegion(ctx, "folders.manager.GetFolder").End()
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	folder, err := m.meta.GetFolder(ctx, scope.TenantID, id)
	if err != nil {
		return nil, logOperationError("get_folder", err)
	}
	return present(folder), nil
}

func (m *manager) FindFolder(ctx context.Context, scope types.Scope, title string, parentID int64) (*types.Folder, error) {
	defer trace.StartRegion(ctx, "folders.manager.FindFolder").End()
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	folder, err := m.meta.FindFolder(ctx, scope.TenantID, title, parentID)
	if err != nil {
		return nil, logOperationError("find_folder", err)
	}
	return present(folder), nil
}

func (m *manager) ListFolders(ctx context.Context, scope types.Scope, parentID int64, opt ListOption) ([]*types.Folder, error) {
	defer trace.StartRegion(ctx, "folders.manager.ListFolders").End()
	defer logOperationLatency("list_folders", time.Now())
	filter := types.FolderFilter{ParentID: &parentID, WithSubfolders: opt.WithSubfolders}
	return m.listFolders(ctx, scope, filter, opt)
}

func (m *manager) ListFoldersByIDs(ctx context.Context, scope types.Scope, ids []int64, opt ListOption) ([]*types.Folder, error) {
	defer trace.StartRegion(ctx, "folders.manager.ListFoldersByIDs").End()
	if len(ids) == 0 {
		return []*types.Folder{}, nil
	}
	return m.listFolders(ctx, scope, types.FolderFilter{IDs: ids}, opt)
}

func (m *manager) listFolders(ctx context.Context, scope types.Scope, filter types.FolderFilter, opt ListOption) ([]*types.Folder, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if opt.FilterType.FilesOnly() {
		return []*types.Folder{}, nil
	}

	owners, err := m.subjectOwners(ctx, scope, opt)
	if err != nil {
		return nil, err
	}
	if owners != nil && len(owners) == 0 {
		return []*types.Folder{}, nil
	}
	filter.CreateBy = owners

	if opt.SearchText != "" {
		found, ids, err := m.indexer.TryMatchIDs(ctx, scope.TenantID, opt.SearchText)
		if err != nil {
			m.logger.Warnw("match folders from index failed, fall back to title scan", "err", err)
			found = false
		}
		switch {
		case found && len(ids) == 0:
			return []*types.Folder{}, nil
		case found:
			filter.IDs = intersectIDs(filter.IDs, ids)
			if len(filter.IDs) == 0 {
				return []*types.Folder{}, nil
			}
		default:
			filter.TitleLike = opt.SearchText
		}
	}

	filter.OrderBy = opt.OrderBy
	filter.Offset = opt.Offset
	filter.Count = opt.Count

	folders, err := m.meta.ListFolders(ctx, scope.TenantID, filter)
	if err != nil {
		return nil, logOperationError("list_folders", err)
	}
	return presentAll(folders), nil
}

// subjectOwners returns nil when the listing is not restricted by owner.
func (m *manager) subjectOwners(ctx context.Context, scope types.Scope, opt ListOption) ([]uuid.UUID, error) {
	if opt.SubjectID == uuid.Nil {
		return nil, nil
	}
	if opt.FilterType == types.FilterByDepartment || opt.SubjectGroup {
		if m.groups == nil {
			return nil, types.ErrNotEnable
		}
		members, err := m.groups.Members(ctx, scope.TenantID, opt.SubjectID)
		if err != nil {
			return nil, err
		}
		if members == nil {
			members = []uuid.UUID{}
		}
		return members, nil
	}
	if opt.FilterType == types.FilterByUser {
		return []uuid.UUID{opt.SubjectID}, nil
	}
	return nil, nil
}

func (m *manager) ListParentFolders(ctx context.Context, scope types.Scope, id int64) ([]*types.Folder, error) {
	defer trace.StartRegion(ctx, "folders.manager.ListParentFolders").End()
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if _, err := m.meta.GetFolder(ctx, scope.TenantID, id); err != nil {
		return nil, err
	}
	path, err := m.meta.AncestorPath(ctx, id)
	if err != nil {
		return nil, err
	}
	path = append(path, id)

	folders, err := m.meta.ListFolders(ctx, scope.TenantID, types.FolderFilter{IDs: path})
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*types.Folder, len(folders))
	for _, f := range folders {
		byID[f.ID] = f
	}
	result := make([]*types.Folder, 0, len(path))
	for _, pid := range path {
		if f, ok := byID[pid]; ok {
			result = append(result, present(f))
		}
	}
	return result, nil
}

// SearchFolders looks through every folder of the tenant. Subtrees under
// bunch roots are skipped unless bunch is set.
func (m *manager) SearchFolders(ctx context.Context, scope types.Scope, text string, bunch bool) ([]*types.Folder, error) {
	defer trace.StartRegion(ctx, "folders.manager.SearchFolders").End()
	if text == "" {
		return nil, types.ErrInvalidArgument
	}
	folders, err := m.listFolders(ctx, scope, types.FolderFilter{}, ListOption{
		SearchText: text,
		OrderBy:    types.OrderBy{SortedBy: types.SortedByAZ, IsAsc: true},
	})
	if err != nil {
		return nil, err
	}
	if bunch {
		return folders, nil
	}
	result := folders[:0]
	for _, f := range folders {
		if f.FolderType == types.FolderTypeBunch || f.RootFolderType == types.FolderTypeBunch {
			continue
		}
		result = append(result, f)
	}
	return result, nil
}

func (m *manager) GetRootFolder(ctx context.Context, scope types.Scope, id int64) (*types.Folder, error) {
	defer trace.StartRegion(ctx, "folders.manager.GetRootFolder").End()
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	root, err := m.meta.RootFolderOf(ctx, scope.TenantID, id)
	if err != nil {
		return nil, err
	}
	return present(root), nil
}

func (m *manager) GetRootFolderByFile(ctx context.Context, scope types.Scope, fileID int64) (*types.Folder, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	file, err := m.meta.GetFile(ctx, scope.TenantID, fileID)
	if err != nil {
		return nil, err
	}
	return m.GetRootFolder(ctx, scope, file.FolderID)
}

func (m *manager) IsEmpty(ctx context.Context, scope types.Scope, id int64) (bool, error) {
	cnt, err := m.GetItemsCount(ctx, scope, id)
	if err != nil {
		return false, err
	}
	return cnt == 0, nil
}

// GetItemsCount counts every folder and file below id from the store, not
// the cached counters.
func (m *manager) GetItemsCount(ctx context.Context, scope types.Scope, id int64) (int, error) {
	if err := scope.Validate(); err != nil {
		return 0, err
	}
	if _, err := m.meta.GetFolder(ctx, scope.TenantID, id); err != nil {
		return 0, err
	}
	descendants, err := m.meta.Descendants(ctx, id, 1)
	if err != nil {
		return 0, err
	}
	files, err := m.meta.CountSubtreeFiles(ctx, scope.TenantID, id)
	if err != nil {
		return 0, err
	}
	return len(descendants) + files, nil
}

// UseTrashForRemove is false for bunch folders and for anything below a
// trash or privacy root.
func (m *manager) UseTrashForRemove(folder *types.Folder) bool {
	if folder.FolderType == types.FolderTypeBunch {
		return false
	}
	switch folder.RootFolderType {
	case types.FolderTypeTrash, types.FolderTypePrivacy:
		return false
	}
	return true
}

// present swaps stored titles of well-known roots for their display titles.
func present(folder *types.Folder) *types.Folder {
	if title, ok := folder.FolderType.DisplayTitle(); ok {
		folder.Title = title
	}
	return folder
}

func presentAll(folders []*types.Folder) []*types.Folder {
	for _, f := range folders {
		present(f)
	}
	return folders
}

// intersectIDs keeps the order of matched; an empty base does not restrict.
func intersectIDs(base, matched []int64) []int64 {
	if len(base) == 0 {
		return matched
	}
	allowed := make(map[int64]struct{}, len(base))
	for _, id := range base {
		allowed[id] = struct{}{}
	}
	result := make([]int64, 0, len(matched))
	for _, id := range matched {
		if _, ok := allowed[id]; ok {
			result = append(result, id)
		}
	}
	return result
}
