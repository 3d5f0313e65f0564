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
	"github.com/basenana/nanadocs/utils"
)

const deleteOrphanTagsSQL = `DELETE FROM ` + db.TableTag + ` WHERE tenant_id = ? AND id NOT IN (SELECT tag_id FROM ` + db.TableTagLink + ` WHERE tenant_id = ?)`

func (s *sqlMetaStore) SaveTag(ctx context.Context, tag *types.Tag) error {
	if tag.ID == 0 {
		tag.ID = utils.GenerateNewID()
	}
	model := &db.Tag{ID: tag.ID, TenantID: tag.TenantID, Name: tag.Name, Owner: tag.Owner.String()}
	res := s.conn(ctx).Save(model)
	return db.SqlError2Error(res.Error)
}

func (s *sqlMetaStore) LinkTag(ctx context.Context, link types.TagLink) error {
	model := &db.TagLink{
		TenantID:  link.TenantID,
		TagID:     link.TagID,
		EntryID:   link.EntryID,
		EntryType: int(link.EntryType),
		CreateBy:  link.CreateBy.String(),
		CreateOn:  link.CreateOn.UnixNano(),
	}
	res := s.conn(ctx).Save(model)
	return db.SqlError2Error(res.Error)
}

func (s *sqlMetaStore) ListTagLinks(ctx context.Context, tenantID int64, entryIDs []string, entryType types.EntryType) ([]types.TagLink, error) {
	if len(entryIDs) == 0 {
		return nil, nil
	}
	var models []db.TagLink
	res := s.conn(ctx).Where("tenant_id = ? AND entry_type = ? AND entry_id IN ?", tenantID, int(entryType), entryIDs).
		Order("entry_id, tag_id").Find(&models)
	if res.Error != nil {
		return nil, db.SqlError2Error(res.Error)
	}
	result := make([]types.TagLink, 0, len(models))
	for _, m := range models {
		result = append(result, types.TagLink{
			TenantID:  m.TenantID,
			TagID:     m.TagID,
			EntryID:   m.EntryID,
			EntryType: types.EntryType(m.EntryType),
			CreateBy:  db.ParseUUID(m.CreateBy),
			CreateOn:  time.Unix(0, m.CreateOn),
		})
	}
	return result, nil
}

func (s *sqlMetaStore) DeleteTagLinks(ctx context.Context, tenantID int64, entryIDs []string, entryType types.EntryType) error {
	defer trace.StartRegion(ctx, "metastore.sql.DeleteTagLinks").End()
	if len(entryIDs) == 0 {
		return nil
	}
	res := s.conn(ctx).Where("tenant_id = ? AND entry_type = ? AND entry_id IN ?", tenantID, int(entryType), entryIDs).
		Delete(&db.TagLink{})
	return db.SqlError2Error(res.Error)
}

func (s *sqlMetaStore) DeleteOrphanTags(ctx context.Context, tenantID int64) error {
	res := s.conn(ctx).Exec(deleteOrphanTagsSQL, tenantID, tenantID)
	return db.SqlError2Error(res.Error)
}

func (s *sqlMetaStore) ListTags(ctx context.Context, tenantID int64) ([]*types.Tag, error) {
	var models []db.Tag
	res := s.conn(ctx).Where("tenant_id = ?", tenantID).Order("name").Find(&models)
	if res.Error != nil {
		return nil, db.SqlError2Error(res.Error)
	}
	result := make([]*types.Tag, 0, len(models))
	for _, m := range models {
		result = append(result, &types.Tag{ID: m.ID, TenantID: m.TenantID, Name: m.Name, Owner: db.ParseUUID(m.Owner)})
	}
	return result, nil
}

func (s *sqlMetaStore) SaveSecurity(ctx context.Context, record *types.SecurityRecord) error {
	if record.ID == 0 {
		record.ID = utils.GenerateNewID()
	}
	if record.TimeStamp.IsZero() {
		record.TimeStamp = time.Now()
	}
	model := &db.Security{
		ID:        record.ID,
		TenantID:  record.TenantID,
		EntryID:   record.EntryID,
		EntryType: int(record.EntryType),
		Subject:   record.Subject.String(),
		Owner:     record.Owner.String(),
		Share:     record.Share,
		TimeStamp: record.TimeStamp.UnixNano(),
	}
	res := s.conn(ctx).Save(model)
	return db.SqlError2Error(res.Error)
}

func (s *sqlMetaStore) ListSecurity(ctx context.Context, tenantID int64, entryIDs []string, entryType types.EntryType) ([]*types.SecurityRecord, error) {
	if len(entryIDs) == 0 {
		return nil, nil
	}
	var models []db.Security
	res := s.conn(ctx).Where("tenant_id = ? AND entry_type = ? AND entry_id IN ?", tenantID, int(entryType), entryIDs).
		Order("id").Find(&models)
	if res.Error != nil {
		return nil, db.SqlError2Error(res.Error)
	}
	result := make([]*types.SecurityRecord, 0, len(models))
	for _, m := range models {
		result = append(result, &types.SecurityRecord{
			ID:        m.ID,
			TenantID:  m.TenantID,
			EntryID:   m.EntryID,
			EntryType: types.EntryType(m.EntryType),
			Subject:   db.ParseUUID(m.Subject),
			Owner:     db.ParseUUID(m.Owner),
			Share:     m.Share,
			TimeStamp: time.Unix(0, m.TimeStamp),
		})
	}
	return result, nil
}

func (s *sqlMetaStore) DeleteSecurity(ctx context.Context, tenantID int64, entryIDs []string, entryType types.EntryType) error {
	defer trace.StartRegion(ctx, "metastore.sql.DeleteSecurity").End()
	if len(entryIDs) == 0 {
		return nil
	}
	res := s.conn(ctx).Where("tenant_id = ? AND entry_type = ? AND entry_id IN ?", tenantID, int(entryType), entryIDs).
		Delete(&db.Security{})
	return db.SqlError2Error(res.Error)
}

func (s *sqlMetaStore) SharedEntries(ctx context.Context, tenantID int64, entryIDs []string, entryType types.EntryType) (map[string]bool, error) {
	result := make(map[string]bool, len(entryIDs))
	if len(entryIDs) == 0 {
		return result, nil
	}
	var shared []string
	res := s.conn(ctx).Model(&db.Security{}).
		Where("tenant_id = ? AND entry_type = ? AND entry_id IN ?", tenantID, int(entryType), entryIDs).
		Distinct("entry_id").Pluck("entry_id", &shared)
	if res.Error != nil {
		return nil, db.SqlError2Error(res.Error)
	}
	for _, id := range shared {
		result[id] = true
	}
	return result, nil
}
