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

package provider

import (
	"context"
	"errors"
	"fmt"
	"runtime/trace"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/basenana/nanadocs/config"
	"github.com/basenana/nanadocs/pkg/folders"
	"github.com/basenana/nanadocs/pkg/metastore"
	"github.com/basenana/nanadocs/pkg/types"
	"github.com/basenana/nanadocs/utils"
	"github.com/basenana/nanadocs/utils/logger"
)

const idSeparator = "-"

// Mirror serves foreign folder ids "<provider>-<folder>" from additional
// metastores, one per configured provider.
type Mirror struct {
	stores map[string]metastore.Meta
	mux    sync.RWMutex
	logger *zap.SugaredLogger
}

var _ folders.Selector = &Mirror{}

func NewMirror(providers []config.Provider) (*Mirror, error) {
	m := &Mirror{stores: make(map[string]metastore.Meta, len(providers)), logger: logger.NewLogger("provider")}
	for _, p := range providers {
		meta, err := metastore.NewMetaStorage(p.Meta.Type, p.Meta)
		if err != nil {
			return nil, fmt.Errorf("open provider %s failed: %w", p.ID, err)
		}
		if err = m.Register(p.ID, meta); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Mirror) Register(providerID string, meta metastore.Meta) error {
	if providerID == "" || strings.Contains(providerID, idSeparator) {
		return fmt.Errorf("%w: invalid provider id %q", types.ErrInvalidArgument, providerID)
	}
	m.mux.Lock()
	defer m.mux.Unlock()
	if _, ok := m.stores[providerID]; ok {
		return fmt.Errorf("%w: provider %s", types.ErrIsExist, providerID)
	}
	m.stores[providerID] = meta
	m.logger.Infow("provider registered", "provider", providerID)
	return nil
}

func (m *Mirror) Providers() []string {
	m.mux.RLock()
	defer m.mux.RUnlock()
	result := make([]string, 0, len(m.stores))
	for id := range m.stores {
		result = append(result, id)
	}
	return result
}

func (m *Mirror) Select(ctx context.Context, scope types.Scope, id types.ForeignID) (*folders.ForeignStore, error) {
	providerID, _, err := splitForeignID(id)
	if err != nil {
		return nil, err
	}
	meta, err := m.store(providerID)
	if err != nil {
		return nil, err
	}
	s := &mirrorStore{providerID: providerID, meta: meta, scope: scope}
	return &folders.ForeignStore{Folders: s, Files: s, Converter: s}, nil
}

// EnsureRoot returns the root folder of the tenant inside the provider,
// creating it on first use.
func (m *Mirror) EnsureRoot(ctx context.Context, scope types.Scope, providerID string) (types.ForeignID, error) {
	defer trace.StartRegion(ctx, "provider.mirror.EnsureRoot").End()
	meta, err := m.store(providerID)
	if err != nil {
		return "", err
	}
	s := &mirrorStore{providerID: providerID, meta: meta, scope: scope}
	root, err := meta.FindFolder(ctx, scope.TenantID, providerID, 0)
	if err == nil {
		return s.Foreign(strconv.FormatInt(root.ID, 10)), nil
	}
	if !errors.Is(err, types.ErrNotFound) {
		return "", err
	}
	created, err := s.create(ctx, 0, providerID, scope.Actor)
	if err != nil {
		return "", err
	}
	return s.Foreign(created.ID), nil
}

func (m *Mirror) Close() error {
	m.mux.Lock()
	defer m.mux.Unlock()
	m.stores = map[string]metastore.Meta{}
	return nil
}

func (m *Mirror) store(providerID string) (metastore.Meta, error) {
	m.mux.RLock()
	defer m.mux.RUnlock()
	meta, ok := m.stores[providerID]
	if !ok {
		return nil, fmt.Errorf("%w: provider %s", types.ErrNotFound, providerID)
	}
	return meta, nil
}

func splitForeignID(id types.ForeignID) (string, string, error) {
	providerID, native, ok := strings.Cut(string(id), idSeparator)
	if !ok || providerID == "" || native == "" {
		return "", "", fmt.Errorf("%w: foreign id %q", types.ErrInvalidArgument, id)
	}
	return providerID, native, nil
}

// mirrorStore binds one provider to the scope of a single call.
type mirrorStore struct {
	providerID string
	meta       metastore.Meta
	scope      types.Scope
}

func (s *mirrorStore) GetFolder(ctx context.Context, id string) (*folders.ForeignFolder, error) {
	fid, err := parseNative(id)
	if err != nil {
		return nil, err
	}
	f, err := s.meta.GetFolder(ctx, s.scope.TenantID, fid)
	if err != nil {
		return nil, err
	}
	return toForeign(f), nil
}

func (s *mirrorStore) FindFolder(ctx context.Context, parentID, title string) (*folders.ForeignFolder, error) {
	pid, err := parseNative(parentID)
	if err != nil {
		return nil, err
	}
	f, err := s.meta.FindFolder(ctx, s.scope.TenantID, title, pid)
	if err != nil {
		return nil, err
	}
	return toForeign(f), nil
}

func (s *mirrorStore) CreateFolder(ctx context.Context, parentID, title string, owner uuid.UUID) (*folders.ForeignFolder, error) {
	pid, err := parseNative(parentID)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, pid, title, owner)
}

func (s *mirrorStore) create(ctx context.Context, parentID int64, title string, owner uuid.UUID) (*folders.ForeignFolder, error) {
	now := time.Now()
	if owner == uuid.Nil {
		owner = s.scope.Actor
	}
	f := &types.Folder{
		ID:         utils.GenerateNewID(),
		TenantID:   s.scope.TenantID,
		ParentID:   parentID,
		Title:      utils.SanitizeTitle(title),
		FolderType: types.FolderTypeDefault,
		CreateBy:   owner,
		CreateOn:   now,
		ModifiedBy: s.scope.Actor,
		ModifiedOn: now,
	}
	err := s.meta.Transaction(ctx, func(ctx context.Context) error {
		if parentID != 0 {
			if _, err := s.meta.GetFolder(ctx, s.scope.TenantID, parentID); err != nil {
				return err
			}
		}
		if err := s.meta.CreateFolder(ctx, f); err != nil {
			return err
		}
		return s.meta.InsertSubtree(ctx, f.ID, parentID)
	})
	if err != nil {
		return nil, err
	}
	return toForeign(f), nil
}

func (s *mirrorStore) ListFiles(ctx context.Context, folderID string) ([]*types.File, error) {
	fid, err := parseNative(folderID)
	if err != nil {
		return nil, err
	}
	return s.meta.ListFiles(ctx, s.scope.TenantID, fid)
}

func (s *mirrorStore) SaveFile(ctx context.Context, folderID string, file *types.File) error {
	fid, err := parseNative(folderID)
	if err != nil {
		return err
	}
	file.TenantID = s.scope.TenantID
	file.FolderID = fid
	return s.meta.SaveFile(ctx, file)
}

func (s *mirrorStore) Native(id types.ForeignID) (string, error) {
	providerID, native, err := splitForeignID(id)
	if err != nil {
		return "", err
	}
	if providerID != s.providerID {
		return "", fmt.Errorf("%w: %s does not belong to provider %s", types.ErrInvalidArgument, id, s.providerID)
	}
	return native, nil
}

func (s *mirrorStore) Foreign(native string) types.ForeignID {
	return types.ForeignID(s.providerID + idSeparator + native)
}

func parseNative(id string) (int64, error) {
	fid, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: folder id %q", types.ErrInvalidArgument, id)
	}
	return fid, nil
}

func toForeign(f *types.Folder) *folders.ForeignFolder {
	return &folders.ForeignFolder{
		ID:       strconv.FormatInt(f.ID, 10),
		ParentID: strconv.FormatInt(f.ParentID, 10),
		Title:    f.Title,
	}
}
