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
	"fmt"
	"runtime/trace"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/basenana/nanadocs/pkg/events"
	"github.com/basenana/nanadocs/pkg/types"
	"github.com/basenana/nanadocs/utils"
)

const (
	ModuleFiles = "files"

	BunchMy        = "my"
	BunchCommon    = "common"
	BunchShare     = "share"
	BunchTrash     = "trash"
	BunchRecent    = "recent"
	BunchFavorites = "favorites"
	BunchTemplates = "templates"
	BunchPrivacy   = "privacy"
	BunchProjects  = "projects"
)

type bunchKind struct {
	folderType types.FolderType
	// perUser bunches are discriminated by the id of the owning user.
	perUser bool
}

var bunchKinds = map[string]bunchKind{
	BunchMy:        {folderType: types.FolderTypeUser, perUser: true},
	BunchCommon:    {folderType: types.FolderTypeCommon},
	BunchShare:     {folderType: types.FolderTypeShare},
	BunchTrash:     {folderType: types.FolderTypeTrash, perUser: true},
	BunchRecent:    {folderType: types.FolderTypeRecent},
	BunchFavorites: {folderType: types.FolderTypeFavorites},
	BunchTemplates: {folderType: types.FolderTypeTemplates},
	BunchPrivacy:   {folderType: types.FolderTypePrivacy, perUser: true},
	BunchProjects:  {folderType: types.FolderTypeProjects},
}

func bunchKey(module, bunch, data string) string {
	return fmt.Sprintf("%s/%s/%s", module, bunch, data)
}

func validBunch(module, bunch string) error {
	if strings.TrimSpace(module) == "" || strings.TrimSpace(bunch) == "" {
		return fmt.Errorf("%w: module and bunch are required", types.ErrInvalidArgument)
	}
	if strings.Contains(module, "/") || strings.Contains(bunch, "/") {
		return fmt.Errorf("%w: module and bunch must not contain '/'", types.ErrInvalidArgument)
	}
	return nil
}

// GetFolderID returns 0 when the binding is missing and create is false.
func (m *manager) GetFolderID(ctx context.Context, scope types.Scope, module, bunch, data string, create bool) (int64, error) {
	defer trace.StartRegion(ctx, "folders.manager.GetFolderID").End()
	if err := scope.Validate(); err != nil {
		return 0, err
	}
	if err := validBunch(module, bunch); err != nil {
		return 0, err
	}
	key := bunchKey(module, bunch, data)
	if id, ok := m.cache.getBinding(scope.TenantID, key); ok {
		return id, nil
	}

	bindings, err := m.meta.GetBindings(ctx, scope.TenantID, []string{key})
	if err != nil {
		return 0, logOperationError("get_bunch", err)
	}
	if id, ok := bindings[key]; ok {
		m.cache.setBinding(scope.TenantID, key, id)
		return id, nil
	}
	if !create {
		return 0, nil
	}
	return m.createBunchFolder(ctx, scope, bunch, data, key)
}

// GetFolderIDs resolves every discriminator independently; the result
// follows the order of data.
func (m *manager) GetFolderIDs(ctx context.Context, scope types.Scope, module, bunch string, data []string, create bool) ([]int64, error) {
	defer trace.StartRegion(ctx, "folders.manager.GetFolderIDs").End()
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if err := validBunch(module, bunch); err != nil {
		return nil, err
	}

	result := make([]int64, len(data))
	keys := make([]string, len(data))
	missed := make([]string, 0, len(data))
	for i, d := range data {
		keys[i] = bunchKey(module, bunch, d)
		if id, ok := m.cache.getBinding(scope.TenantID, keys[i]); ok {
			result[i] = id
			continue
		}
		missed = append(missed, keys[i])
	}
	if len(missed) == 0 {
		return result, nil
	}

	bindings, err := m.meta.GetBindings(ctx, scope.TenantID, missed)
	if err != nil {
		return nil, logOperationError("get_bunch", err)
	}
	for i, key := range keys {
		if result[i] != 0 {
			continue
		}
		if id, ok := bindings[key]; ok {
			m.cache.setBinding(scope.TenantID, key, id)
			result[i] = id
			continue
		}
		if !create {
			continue
		}
		id, err := m.createBunchFolder(ctx, scope, bunch, data[i], key)
		if err != nil {
			return nil, err
		}
		bindings[key] = id
		result[i] = id
	}
	return result, nil
}

func (m *manager) GetBunchObjectID(ctx context.Context, scope types.Scope, folderID int64) (string, error) {
	keys, err := m.GetBunchObjectIDs(ctx, scope, []int64{folderID})
	if err != nil {
		return "", err
	}
	return keys[folderID], nil
}

func (m *manager) GetBunchObjectIDs(ctx context.Context, scope types.Scope, folderIDs []int64) (map[int64]string, error) {
	defer trace.StartRegion(ctx, "folders.manager.GetBunchObjectIDs").End()
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if len(folderIDs) == 0 {
		return map[int64]string{}, nil
	}
	keys, err := m.meta.GetBindingKeys(ctx, scope.TenantID, folderIDs)
	if err != nil {
		return nil, logOperationError("get_bunch_keys", err)
	}
	return keys, nil
}

// createBunchFolder claims the key with a pre-generated folder id before
// writing the folder. Losing the claim leaves nothing written and yields
// the committed binding.
func (m *manager) createBunchFolder(ctx context.Context, scope types.Scope, bunch, data, key string) (int64, error) {
	defer logOperationLatency("create_bunch", time.Now())
	folder, err := newBunchFolder(scope, bunch, data, key)
	if err != nil {
		return 0, err
	}

	var resolved int64
	err = m.Transaction(ctx, func(ctx context.Context) error {
		inserted, err := m.meta.SaveBinding(ctx, types.BunchBinding{TenantID: scope.TenantID, Key: key, FolderID: folder.ID})
		if err != nil {
			return err
		}
		if !inserted {
			bindings, err := m.meta.GetBindings(ctx, scope.TenantID, []string{key})
			if err != nil {
				return err
			}
			existed, ok := bindings[key]
			if !ok {
				return fmt.Errorf("%w: binding %s vanished", types.ErrConflict, key)
			}
			resolved = existed
			return nil
		}

		if err = m.meta.CreateFolder(ctx, folder); err != nil {
			return err
		}
		if err = m.meta.InsertSubtree(ctx, folder.ID, 0); err != nil {
			return err
		}
		resolved = folder.ID
		m.indexAsync(ctx, folder)
		m.publishEvent(ctx, events.ActionTypeCreate, folder, 0)
		return nil
	})
	if err != nil {
		utils.ContextLog(ctx, m.logger).Errorw("create bunch folder failed", "key", key, "err", err)
		return 0, logOperationError("create_bunch", err)
	}

	afterCommit(ctx, func() {
		m.cache.setBinding(scope.TenantID, key, resolved)
	})
	if resolved != folder.ID {
		m.logger.Debugw("bunch folder created concurrently", "key", key, "folder", resolved)
	}
	return resolved, nil
}

func newBunchFolder(scope types.Scope, bunch, data, key string) (*types.Folder, error) {
	now := time.Now()
	folder := &types.Folder{
		ID:         utils.GenerateNewID(),
		TenantID:   scope.TenantID,
		Title:      key,
		FolderType: types.FolderTypeBunch,
		CreateBy:   scope.Actor,
		CreateOn:   now,
		ModifiedBy: scope.Actor,
		ModifiedOn: now,
	}

	kind, ok := bunchKinds[bunch]
	if !ok {
		return folder, nil
	}
	folder.Title = bunch
	folder.FolderType = kind.folderType
	if kind.perUser {
		owner, err := uuid.Parse(data)
		if err != nil || owner == uuid.Nil {
			return nil, fmt.Errorf("%w: bunch %s needs a user id, got %q", types.ErrInvalidArgument, bunch, data)
		}
		folder.CreateBy = owner
	}
	return folder, nil
}

func (m *manager) userBunch(ctx context.Context, scope types.Scope, bunch string, create bool, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, fmt.Errorf("%w: user id is empty", types.ErrInvalidArgument)
	}
	return m.GetFolderID(ctx, scope, ModuleFiles, bunch, userID.String(), create)
}

func (m *manager) FolderIDUser(ctx context.Context, scope types.Scope, create bool, userID uuid.UUID) (int64, error) {
	return m.userBunch(ctx, scope, BunchMy, create, userID)
}

func (m *manager) FolderIDTrash(ctx context.Context, scope types.Scope, create bool, userID uuid.UUID) (int64, error) {
	return m.userBunch(ctx, scope, BunchTrash, create, userID)
}

func (m *manager) FolderIDPrivacy(ctx context.Context, scope types.Scope, create bool, userID uuid.UUID) (int64, error) {
	return m.userBunch(ctx, scope, BunchPrivacy, create, userID)
}

func (m *manager) FolderIDCommon(ctx context.Context, scope types.Scope, create bool) (int64, error) {
	return m.GetFolderID(ctx, scope, ModuleFiles, BunchCommon, "", create)
}

func (m *manager) FolderIDShare(ctx context.Context, scope types.Scope, create bool) (int64, error) {
	return m.GetFolderID(ctx, scope, ModuleFiles, BunchShare, "", create)
}

func (m *manager) FolderIDRecent(ctx context.Context, scope types.Scope, create bool) (int64, error) {
	return m.GetFolderID(ctx, scope, ModuleFiles, BunchRecent, "", create)
}

func (m *manager) FolderIDFavorites(ctx context.Context, scope types.Scope, create bool) (int64, error) {
	return m.GetFolderID(ctx, scope, ModuleFiles, BunchFavorites, "", create)
}

func (m *manager) FolderIDTemplates(ctx context.Context, scope types.Scope, create bool) (int64, error) {
	return m.GetFolderID(ctx, scope, ModuleFiles, BunchTemplates, "", create)
}

func (m *manager) FolderIDProjects(ctx context.Context, scope types.Scope, create bool) (int64, error) {
	return m.GetFolderID(ctx, scope, ModuleFiles, BunchProjects, "", create)
}
