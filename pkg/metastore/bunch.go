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
	"strconv"

	"gorm.io/gorm/clause"

	"github.com/basenana/nanadocs/pkg/metastore/db"
	"github.com/basenana/nanadocs/pkg/types"
)

func (s *sqlMetaStore) GetBindings(ctx context.Context, tenantID int64, keys []string) (map[string]int64, error) {
	defer trace.StartRegion(ctx, "metastore.sql.GetBindings").End()
	result := make(map[string]int64, len(keys))
	if len(keys) == 0 {
		return result, nil
	}
	var models []db.BunchObject
	res := s.conn(ctx).Where("tenant_id = ? AND right_node IN ?", tenantID, keys).Find(&models)
	if res.Error != nil {
		return nil, db.SqlError2Error(res.Error)
	}
	for _, m := range models {
		b := m.ToBinding()
		result[b.Key] = b.FolderID
	}
	return result, nil
}

func (s *sqlMetaStore) GetBindingKeys(ctx context.Context, tenantID int64, folderIDs []int64) (map[int64]string, error) {
	defer trace.StartRegion(ctx, "metastore.sql.GetBindingKeys").End()
	result := make(map[int64]string, len(folderIDs))
	if len(folderIDs) == 0 {
		return result, nil
	}
	var models []db.BunchObject
	res := s.conn(ctx).Where("tenant_id = ? AND left_node IN ?", tenantID, idsToStrings(folderIDs)).Find(&models)
	if res.Error != nil {
		return nil, db.SqlError2Error(res.Error)
	}
	for _, m := range models {
		b := m.ToBinding()
		result[b.FolderID] = b.Key
	}
	return result, nil
}

// SaveBinding reports false when another writer owns the key already.
func (s *sqlMetaStore) SaveBinding(ctx context.Context, binding types.BunchBinding) (bool, error) {
	defer trace.StartRegion(ctx, "metastore.sql.SaveBinding").End()
	model := &db.BunchObject{
		TenantID:  binding.TenantID,
		RightNode: binding.Key,
		LeftNode:  strconv.FormatInt(binding.FolderID, 10),
	}
	res := s.conn(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(model)
	if res.Error != nil {
		s.logger.Errorw("save bunch binding failed", "key", binding.Key, "err", res.Error)
		return false, logOperationError("save_binding", db.SqlError2Error(res.Error))
	}
	return res.RowsAffected == 1, nil
}

func (s *sqlMetaStore) DeleteBindings(ctx context.Context, tenantID int64, folderIDs []int64) error {
	if len(folderIDs) == 0 {
		return nil
	}
	res := s.conn(ctx).Where("tenant_id = ? AND left_node IN ?", tenantID, idsToStrings(folderIDs)).Delete(&db.BunchObject{})
	return db.SqlError2Error(res.Error)
}
