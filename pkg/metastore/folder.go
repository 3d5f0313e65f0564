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
	"fmt"
	"runtime/trace"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/basenana/nanadocs/pkg/metastore/db"
	"github.com/basenana/nanadocs/pkg/types"
)

const rootEdgesSQL = `SELECT t.folder_id AS folder_id, f.id AS root_id, f.folder_type AS root_type, f.create_by AS root_create_by
FROM ` + db.TableFolderTree + ` t JOIN ` + db.TableFolder + ` f ON f.id = t.parent_id
WHERE t.folder_id IN ? AND t.level = (SELECT MAX(x.level) FROM ` + db.TableFolderTree + ` x WHERE x.folder_id = t.folder_id)`

type rootEdge struct {
	FolderID     int64  `gorm:"column:folder_id"`
	RootID       int64  `gorm:"column:root_id"`
	RootType     int    `gorm:"column:root_type"`
	RootCreateBy string `gorm:"column:root_create_by"`
}

func (s *sqlMetaStore) GetFolder(ctx context.Context, tenantID, id int64) (*types.Folder, error) {
	defer trace.StartRegion(ctx, "metastore.sql.GetFolder").End()
	defer logOperationLatency("get_folder", time.Now())
	model := &db.Folder{}
	res := s.conn(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(model)
	if res.Error != nil {
		return nil, logOperationError("get_folder", db.SqlError2Error(res.Error))
	}
	folders, err := s.decorateFolders(ctx, tenantID, []db.Folder{*model})
	if err != nil {
		return nil, err
	}
	return folders[0], nil
}

func (s *sqlMetaStore) FindFolder(ctx context.Context, tenantID int64, title string, parentID int64) (*types.Folder, error) {
	defer trace.StartRegion(ctx, "metastore.sql.FindFolder").End()
	model := &db.Folder{}
	res := s.conn(ctx).
		Where("tenant_id = ? AND parent_id = ? AND LOWER(title) = ?", tenantID, parentID, strings.ToLower(title)).
		Order("create_on ASC, id ASC").Take(model)
	if res.Error != nil {
		return nil, db.SqlError2Error(res.Error)
	}
	folders, err := s.decorateFolders(ctx, tenantID, []db.Folder{*model})
	if err != nil {
		return nil, err
	}
	return folders[0], nil
}

func (s *sqlMetaStore) ListFolders(ctx context.Context, tenantID int64, filter types.FolderFilter) ([]*types.Folder, error) {
	defer trace.StartRegion(ctx, "metastore.sql.ListFolders").End()
	defer logOperationLatency("list_folders", time.Now())

	tx := s.conn(ctx).Model(&db.Folder{}).Where(db.TableFolder+".tenant_id = ?", tenantID)
	switch {
	case filter.ParentID != nil && filter.WithSubfolders:
		tx = tx.Joins("JOIN "+db.TableFolderTree+" t ON t.folder_id = "+db.TableFolder+".id").
			Where("t.parent_id = ? AND t.level > 0", *filter.ParentID)
	case filter.ParentID != nil:
		tx = tx.Where(db.TableFolder+".parent_id = ?", *filter.ParentID)
	}
	if len(filter.IDs) > 0 {
		tx = tx.Where(db.TableFolder+".id IN ?", filter.IDs)
	}
	if len(filter.CreateBy) > 0 {
		owners := make([]string, 0, len(filter.CreateBy))
		for _, u := range filter.CreateBy {
			owners = append(owners, u.String())
		}
		tx = tx.Where(db.TableFolder+".create_by IN ?", owners)
	}
	if filter.TitleLike != "" {
		tx = tx.Where("LOWER("+db.TableFolder+".title) LIKE ?", "%"+strings.ToLower(filter.TitleLike)+"%")
	}

	for _, clause := range orderClauses(filter.OrderBy) {
		tx = tx.Order(clause)
	}
	tx = tx.Order(db.TableFolder + ".id ASC")
	if filter.Offset > 0 {
		tx = tx.Offset(filter.Offset)
	}
	if filter.Count > 0 {
		tx = tx.Limit(filter.Count)
	}

	var models []db.Folder
	res := tx.Select(db.TableFolder + ".*").Find(&models)
	if res.Error != nil {
		s.logger.Errorw("list folders failed", "tenant", tenantID, "err", res.Error)
		return nil, logOperationError("list_folders", db.SqlError2Error(res.Error))
	}
	return s.decorateFolders(ctx, tenantID, models)
}

// orderClauses keeps well-known roots ahead of plain folders when sorting by title.
func orderClauses(order types.OrderBy) []string {
	direction := " DESC"
	if order.IsAsc {
		direction = " ASC"
	}
	switch order.SortedBy {
	case types.SortedByAZ:
		return []string{
			fmt.Sprintf("CASE WHEN %s.folder_type IN (%d, %d) THEN 1 ELSE 0 END ASC", db.TableFolder, types.FolderTypeDefault, types.FolderTypeBunch),
			"LOWER(" + db.TableFolder + ".title)" + direction,
		}
	case types.SortedByAuthor:
		return []string{db.TableFolder + ".create_by" + direction}
	case types.SortedByDateAndTimeCreation:
		return []string{db.TableFolder + ".create_on" + direction}
	}
	return []string{db.TableFolder + ".modified_on" + direction}
}

func (s *sqlMetaStore) FindTitleConflicts(ctx context.Context, tenantID, parentID int64, titles []string) ([]*types.Folder, error) {
	if len(titles) == 0 {
		return nil, nil
	}
	lowered := make([]string, 0, len(titles))
	for _, t := range titles {
		lowered = append(lowered, strings.ToLower(t))
	}
	var models []db.Folder
	res := s.conn(ctx).
		Where("tenant_id = ? AND parent_id = ? AND LOWER(title) IN ?", tenantID, parentID, lowered).
		Order("id").Find(&models)
	if res.Error != nil {
		return nil, db.SqlError2Error(res.Error)
	}
	result := make([]*types.Folder, 0, len(models))
	for i := range models {
		result = append(result, models[i].ToFolder())
	}
	return result, nil
}

func (s *sqlMetaStore) CreateFolder(ctx context.Context, folder *types.Folder) error {
	defer trace.StartRegion(ctx, "metastore.sql.CreateFolder").End()
	defer logOperationLatency("create_folder", time.Now())
	res := s.conn(ctx).Create((&db.Folder{}).FromFolder(folder))
	if res.Error != nil {
		s.logger.Errorw("create folder failed", "folder", folder.ID, "err", res.Error)
		return logOperationError("create_folder", db.SqlError2Error(res.Error))
	}
	return nil
}

func (s *sqlMetaStore) UpdateFolder(ctx context.Context, folder *types.Folder) error {
	defer trace.StartRegion(ctx, "metastore.sql.UpdateFolder").End()
	defer logOperationLatency("update_folder", time.Now())
	res := s.conn(ctx).Model(&db.Folder{}).
		Where("tenant_id = ? AND id = ?", folder.TenantID, folder.ID).
		Updates(map[string]interface{}{
			"title":       folder.Title,
			"folder_type": int(folder.FolderType),
			"create_by":   folder.CreateBy.String(),
			"modified_by": folder.ModifiedBy.String(),
			"modified_on": folder.ModifiedOn.UnixNano(),
		})
	if res.Error != nil {
		return logOperationError("update_folder", db.SqlError2Error(res.Error))
	}
	if res.RowsAffected == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (s *sqlMetaStore) UpdateFolderParent(ctx context.Context, tenantID, id, parentID int64, modifiedBy uuid.UUID) error {
	res := s.conn(ctx).Model(&db.Folder{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Updates(map[string]interface{}{
			"parent_id":   parentID,
			"modified_by": modifiedBy.String(),
			"modified_on": time.Now().UnixNano(),
		})
	if res.Error != nil {
		return db.SqlError2Error(res.Error)
	}
	if res.RowsAffected == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (s *sqlMetaStore) UpdateFolderCounts(ctx context.Context, id int64, folders, files int) error {
	res := s.conn(ctx).Model(&db.Folder{}).Where("id = ?", id).
		Updates(map[string]interface{}{"folders_count": folders, "files_count": files})
	return db.SqlError2Error(res.Error)
}

func (s *sqlMetaStore) UpdateFoldersOwner(ctx context.Context, tenantID int64, ids []int64, owner uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	res := s.conn(ctx).Model(&db.Folder{}).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Update("create_by", owner.String())
	return db.SqlError2Error(res.Error)
}

func (s *sqlMetaStore) DeleteFolders(ctx context.Context, tenantID int64, ids []int64) error {
	defer trace.StartRegion(ctx, "metastore.sql.DeleteFolders").End()
	if len(ids) == 0 {
		return nil
	}
	res := s.conn(ctx).Where("tenant_id = ? AND id IN ?", tenantID, ids).Delete(&db.Folder{})
	if res.Error != nil {
		s.logger.Errorw("delete folders failed", "tenant", tenantID, "err", res.Error)
		return logOperationError("delete_folders", db.SqlError2Error(res.Error))
	}
	return nil
}

func (s *sqlMetaStore) RootFolderOf(ctx context.Context, tenantID, parentID int64) (*types.Folder, error) {
	defer trace.StartRegion(ctx, "metastore.sql.RootFolderOf").End()
	model := &db.Folder{}
	res := s.conn(ctx).Model(&db.Folder{}).
		Joins("JOIN "+db.TableFolderTree+" t ON t.parent_id = "+db.TableFolder+".id").
		Where("t.folder_id = ? AND "+db.TableFolder+".tenant_id = ?", parentID, tenantID).
		Order("t.level DESC").Select(db.TableFolder + ".*").Take(model)
	if res.Error != nil {
		return nil, db.SqlError2Error(res.Error)
	}
	folder := model.ToFolder()
	folder.ResolveRoot()
	return folder, nil
}

// decorateFolders converts models and fills root metadata and sharing state.
func (s *sqlMetaStore) decorateFolders(ctx context.Context, tenantID int64, models []db.Folder) ([]*types.Folder, error) {
	result := make([]*types.Folder, 0, len(models))
	if len(models) == 0 {
		return result, nil
	}
	ids := make([]int64, 0, len(models))
	for i := range models {
		ids = append(ids, models[i].ID)
	}

	var roots []rootEdge
	if err := s.conn(ctx).Raw(rootEdgesSQL, ids).Scan(&roots).Error; err != nil {
		return nil, db.SqlError2Error(err)
	}
	rootMap := make(map[int64]rootEdge, len(roots))
	for _, r := range roots {
		rootMap[r.FolderID] = r
	}

	shared, err := s.sharedWithAncestors(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}

	for i := range models {
		folder := models[i].ToFolder()
		if r, ok := rootMap[folder.ID]; ok {
			folder.RootFolderID = r.RootID
			folder.RootFolderType = types.FolderType(r.RootType)
			folder.RootCreateBy, _ = uuid.Parse(r.RootCreateBy)
		}
		folder.ResolveRoot()
		folder.Shared = shared[folder.ID]
		result = append(result, folder)
	}
	return result, nil
}

// sharedWithAncestors walks the closure rows of ids, self links included, so
// a grant on any ancestor marks the folder.
func (s *sqlMetaStore) sharedWithAncestors(ctx context.Context, tenantID int64, ids []int64) (map[int64]bool, error) {
	var edges []db.FolderTree
	res := s.conn(ctx).Model(&db.FolderTree{}).Where("folder_id IN ?", ids).Find(&edges)
	if res.Error != nil {
		return nil, db.SqlError2Error(res.Error)
	}

	ancestors := make(map[int64]struct{}, len(edges))
	for _, e := range edges {
		ancestors[e.ParentID] = struct{}{}
	}
	entryIDs := make([]int64, 0, len(ancestors))
	for id := range ancestors {
		entryIDs = append(entryIDs, id)
	}
	granted, err := s.SharedEntries(ctx, tenantID, idsToStrings(entryIDs), types.EntryTypeFolder)
	if err != nil {
		return nil, err
	}

	result := make(map[int64]bool, len(ids))
	for _, e := range edges {
		if granted[strconv.FormatInt(e.ParentID, 10)] {
			result[e.FolderID] = true
		}
	}
	return result, nil
}
