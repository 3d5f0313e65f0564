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
	"runtime/trace"
	"time"

	"github.com/basenana/nanadocs/pkg/metastore/db"
	"github.com/basenana/nanadocs/pkg/types"
)

const (
	insertAncestorEdgesSQL = `INSERT INTO ` + db.TableFolderTree + ` (folder_id, parent_id, level)
SELECT ?, parent_id, level + 1 FROM ` + db.TableFolderTree + ` WHERE folder_id = ?`

	detachSubtreeSQL = `DELETE FROM ` + db.TableFolderTree + `
WHERE folder_id IN (SELECT folder_id FROM ` + db.TableFolderTree + ` WHERE parent_id = ?)
AND parent_id NOT IN (SELECT folder_id FROM ` + db.TableFolderTree + ` WHERE parent_id = ?)`

	attachSubtreeSQL = `INSERT INTO ` + db.TableFolderTree + ` (folder_id, parent_id, level)
SELECT sub.folder_id, sup.parent_id, sub.level + sup.level + 1
FROM ` + db.TableFolderTree + ` sub, ` + db.TableFolderTree + ` sup
WHERE sub.parent_id = ? AND sup.folder_id = ?`
)

func (s *sqlMetaStore) AncestorPath(ctx context.Context, folderID int64) ([]int64, error) {
	defer trace.StartRegion(ctx, "metastore.sql.AncestorPath").End()
	var ids []int64
	res := s.conn(ctx).Model(&db.FolderTree{}).
		Where("folder_id = ? AND level > 0", folderID).
		Order("level DESC").Pluck("parent_id", &ids)
	if res.Error != nil {
		return nil, db.SqlError2Error(res.Error)
	}
	return ids, nil
}

func (s *sqlMetaStore) RootOf(ctx context.Context, folderID int64) (int64, error) {
	defer trace.StartRegion(ctx, "metastore.sql.RootOf").End()
	edge := &db.FolderTree{}
	res := s.conn(ctx).Where("folder_id = ?", folderID).Order("level DESC").Take(edge)
	if res.Error != nil {
		return 0, db.SqlError2Error(res.Error)
	}
	return edge.ParentID, nil
}

func (s *sqlMetaStore) Descendants(ctx context.Context, folderID int64, minLevel int) ([]int64, error) {
	defer trace.StartRegion(ctx, "metastore.sql.Descendants").End()
	var ids []int64
	res := s.conn(ctx).Model(&db.FolderTree{}).
		Where("parent_id = ? AND level >= ?", folderID, minLevel).
		Order("level").Pluck("folder_id", &ids)
	if res.Error != nil {
		return nil, db.SqlError2Error(res.Error)
	}
	return ids, nil
}

func (s *sqlMetaStore) SubfolderIDs(ctx context.Context, folderID int64, recursive bool) ([]int64, error) {
	if recursive {
		return s.Descendants(ctx, folderID, 1)
	}
	var ids []int64
	res := s.conn(ctx).Model(&db.FolderTree{}).
		Where("parent_id = ? AND level = 1", folderID).Pluck("folder_id", &ids)
	if res.Error != nil {
		return nil, db.SqlError2Error(res.Error)
	}
	return ids, nil
}

func (s *sqlMetaStore) IsAncestor(ctx context.Context, ancestorID, folderID int64) (bool, error) {
	defer trace.StartRegion(ctx, "metastore.sql.IsAncestor").End()
	var count int64
	res := s.conn(ctx).Model(&db.FolderTree{}).
		Where("folder_id = ? AND parent_id = ?", folderID, ancestorID).Count(&count)
	if res.Error != nil {
		return false, db.SqlError2Error(res.Error)
	}
	return count > 0, nil
}

func (s *sqlMetaStore) ListEdges(ctx context.Context, folderID int64) ([]types.ClosureEdge, error) {
	var models []db.FolderTree
	res := s.conn(ctx).Where("folder_id = ?", folderID).Order("level").Find(&models)
	if res.Error != nil {
		return nil, db.SqlError2Error(res.Error)
	}
	edges := make([]types.ClosureEdge, 0, len(models))
	for _, m := range models {
		edges = append(edges, m.ToEdge())
	}
	return edges, nil
}

func (s *sqlMetaStore) InsertSubtree(ctx context.Context, newFolderID, parentID int64) error {
	defer trace.StartRegion(ctx, "metastore.sql.InsertSubtree").End()
	defer logOperationLatency("insert_subtree", time.Now())
	conn := s.conn(ctx)
	res := conn.Create(&db.FolderTree{FolderID: newFolderID, ParentID: newFolderID, Level: 0})
	if res.Error != nil {
		s.logger.Errorw("insert self link failed", "folder", newFolderID, "err", res.Error)
		return logOperationError("insert_subtree", db.SqlError2Error(res.Error))
	}
	if parentID == 0 {
		return nil
	}

	res = conn.Exec(insertAncestorEdgesSQL, newFolderID, parentID)
	if res.Error != nil {
		s.logger.Errorw("copy ancestor edges failed", "folder", newFolderID, "parent", parentID, "err", res.Error)
		return logOperationError("insert_subtree", db.SqlError2Error(res.Error))
	}
	if res.RowsAffected == 0 {
		// parent without self link
		return types.ErrNotFound
	}
	return nil
}

func (s *sqlMetaStore) RelocateSubtree(ctx context.Context, folderID, newParentID int64) error {
	defer trace.StartRegion(ctx, "metastore.sql.RelocateSubtree").End()
	defer logOperationLatency("relocate_subtree", time.Now())

	if newParentID != 0 {
		inside, err := s.IsAncestor(ctx, folderID, newParentID)
		if err != nil {
			return err
		}
		if inside {
			return types.ErrInvalidOperation
		}
	}

	conn := s.conn(ctx)
	res := conn.Exec(detachSubtreeSQL, folderID, folderID)
	if res.Error != nil {
		s.logger.Errorw("detach subtree failed", "folder", folderID, "err", res.Error)
		return logOperationError("relocate_subtree", db.SqlError2Error(res.Error))
	}
	if newParentID == 0 {
		return nil
	}

	res = conn.Exec(attachSubtreeSQL, folderID, newParentID)
	if res.Error != nil {
		s.logger.Errorw("attach subtree failed", "folder", folderID, "parent", newParentID, "err", res.Error)
		return logOperationError("relocate_subtree", db.SqlError2Error(res.Error))
	}
	if res.RowsAffected == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (s *sqlMetaStore) DeleteSubtree(ctx context.Context, folderID int64) ([]int64, error) {
	defer trace.StartRegion(ctx, "metastore.sql.DeleteSubtree").End()
	ids, err := s.Descendants(ctx, folderID, 0)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		ids = []int64{folderID}
	}

	res := s.conn(ctx).Where("folder_id IN ? OR parent_id IN ?", ids, ids).Delete(&db.FolderTree{})
	if res.Error != nil {
		s.logger.Errorw("delete subtree edges failed", "folder", folderID, "err", res.Error)
		return nil, logOperationError("delete_subtree", db.SqlError2Error(res.Error))
	}
	return ids, nil
}

func (s *sqlMetaStore) CountChildren(ctx context.Context, folderID int64) (int, error) {
	var count int64
	res := s.conn(ctx).Model(&db.FolderTree{}).
		Where("parent_id = ? AND level = 1", folderID).Count(&count)
	if res.Error != nil {
		return 0, db.SqlError2Error(res.Error)
	}
	return int(count), nil
}
