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

	"github.com/google/uuid"

	"github.com/basenana/nanadocs/pkg/metastore/db"
	"github.com/basenana/nanadocs/pkg/types"
	"github.com/basenana/nanadocs/utils"
)

func (s *sqlMetaStore) GetFile(ctx context.Context, tenantID, id int64) (*types.File, error) {
	model := &db.File{}
	res := s.conn(ctx).Where("tenant_id = ? AND id = ? AND current_version = ?", tenantID, id, true).First(model)
	if res.Error != nil {
		return nil, db.SqlError2Error(res.Error)
	}
	return model.ToFile(), nil
}

// SaveFile stores a new version of the file and demotes the previous one.
func (s *sqlMetaStore) SaveFile(ctx context.Context, file *types.File) error {
	defer trace.StartRegion(ctx, "metastore.sql.SaveFile").End()
	defer logOperationLatency("save_file", time.Now())
	if file.ID == 0 {
		file.ID = utils.GenerateNewID()
	}
	now := time.Now()
	if file.CreateOn.IsZero() {
		file.CreateOn = now
	}
	if file.ModifiedOn.IsZero() {
		file.ModifiedOn = now
	}

	return s.Transaction(ctx, func(ctx context.Context) error {
		conn := s.conn(ctx)
		var latest int
		res := conn.Model(&db.File{}).Where("tenant_id = ? AND id = ?", file.TenantID, file.ID).
			Select("COALESCE(MAX(version), 0)").Scan(&latest)
		if res.Error != nil {
			return db.SqlError2Error(res.Error)
		}
		if file.Version <= latest {
			file.Version = latest + 1
		}
		res = conn.Model(&db.File{}).Where("tenant_id = ? AND id = ?", file.TenantID, file.ID).
			Update("current_version", false)
		if res.Error != nil {
			return db.SqlError2Error(res.Error)
		}
		res = conn.Create((&db.File{}).FromFile(file))
		if res.Error != nil {
			s.logger.Errorw("save file failed", "file", file.ID, "err", res.Error)
			return logOperationError("save_file", db.SqlError2Error(res.Error))
		}
		return nil
	})
}

func (s *sqlMetaStore) ListFiles(ctx context.Context, tenantID, folderID int64) ([]*types.File, error) {
	var models []db.File
	res := s.conn(ctx).Where("tenant_id = ? AND folder_id = ? AND current_version = ?", tenantID, folderID, true).
		Order("id").Find(&models)
	if res.Error != nil {
		return nil, db.SqlError2Error(res.Error)
	}
	result := make([]*types.File, 0, len(models))
	for i := range models {
		result = append(result, models[i].ToFile())
	}
	return result, nil
}

func (s *sqlMetaStore) CountFiles(ctx context.Context, tenantID, folderID int64) (int, error) {
	var count int64
	res := s.conn(ctx).Model(&db.File{}).
		Where("tenant_id = ? AND folder_id = ? AND current_version = ?", tenantID, folderID, true).Count(&count)
	if res.Error != nil {
		return 0, db.SqlError2Error(res.Error)
	}
	return int(count), nil
}

// CountSubtreeFiles counts current files in folderID and every descendant.
func (s *sqlMetaStore) CountSubtreeFiles(ctx context.Context, tenantID, folderID int64) (int, error) {
	var count int64
	subtree := s.conn(ctx).Model(&db.FolderTree{}).Select("folder_id").Where("parent_id = ?", folderID)
	res := s.conn(ctx).Model(&db.File{}).
		Where("tenant_id = ? AND current_version = ? AND folder_id IN (?)", tenantID, true, subtree).Count(&count)
	if res.Error != nil {
		return 0, db.SqlError2Error(res.Error)
	}
	return int(count), nil
}

func (s *sqlMetaStore) DeleteFilesInFolders(ctx context.Context, tenantID int64, folderIDs []int64) error {
	defer trace.StartRegion(ctx, "metastore.sql.DeleteFilesInFolders").End()
	if len(folderIDs) == 0 {
		return nil
	}
	res := s.conn(ctx).Where("tenant_id = ? AND folder_id IN ?", tenantID, folderIDs).Delete(&db.File{})
	if res.Error != nil {
		return logOperationError("delete_files", db.SqlError2Error(res.Error))
	}
	return nil
}

func (s *sqlMetaStore) UsedSpace(ctx context.Context, tenantID int64, user uuid.UUID) (int64, error) {
	var used int64
	res := s.conn(ctx).Model(&db.File{}).
		Where("tenant_id = ? AND create_by = ? AND current_version = ?", tenantID, user.String(), true).
		Select("COALESCE(SUM(content_length), 0)").Scan(&used)
	if res.Error != nil {
		return 0, db.SqlError2Error(res.Error)
	}
	return used, nil
}
