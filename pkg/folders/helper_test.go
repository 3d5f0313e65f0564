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
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"
	. "github.com/onsi/gomega"

	"github.com/basenana/nanadocs/config"
	"github.com/basenana/nanadocs/pkg/metastore"
	"github.com/basenana/nanadocs/pkg/types"
)

const testTenant int64 = 2001

var (
	testActor = uuid.New()
	testScope = types.NewScope(testTenant, testActor)
)

func newTestManager(dbName string, opts ...Option) (Manager, metastore.Meta) {
	meta, err := metastore.NewMetaStorage(metastore.SqliteMeta, config.Meta{
		Type: metastore.SqliteMeta,
		Path: path.Join(workdir, dbName),
	})
	Expect(err).Should(BeNil())
	mgr, err := New(meta, opts...)
	Expect(err).Should(BeNil())
	return mgr, meta
}

func mkdir(mgr Manager, parentID int64, title string) int64 {
	id, err := mgr.SaveFolder(context.TODO(), testScope, &types.Folder{ParentID: parentID, Title: title})
	Expect(err).Should(BeNil())
	Expect(id).ShouldNot(BeZero())
	return id
}

func addFile(meta metastore.Meta, folderID int64, title string, size int64) *types.File {
	f := &types.File{
		TenantID:      testTenant,
		FolderID:      folderID,
		Title:         title,
		ContentLength: size,
		CreateBy:      testActor,
		ModifiedBy:    testActor,
	}
	Expect(meta.SaveFile(context.TODO(), f)).Should(BeNil())
	return f
}

func foldersCount(mgr Manager, id int64) func() int {
	return func() int {
		f, err := mgr.GetFolder(context.TODO(), testScope, id)
		if err != nil {
			return -1
		}
		return f.FoldersCount
	}
}

func filesCount(mgr Manager, id int64) func() int {
	return func() int {
		f, err := mgr.GetFolder(context.TODO(), testScope, id)
		if err != nil {
			return -1
		}
		return f.FilesCount
	}
}

type fakeGroups struct {
	members map[uuid.UUID][]uuid.UUID
}

func (g *fakeGroups) Members(ctx context.Context, tenantID int64, groupID uuid.UUID) ([]uuid.UUID, error) {
	return g.members[groupID], nil
}

// memForeignStore keeps foreign folders in memory; ids look like "mem-<n>".
type memForeignStore struct {
	mu       sync.Mutex
	seq      int
	folders  map[string]*ForeignFolder
	files    map[string][]*types.File
	failOn   string
}

func newMemForeignStore() *memForeignStore {
	s := &memForeignStore{folders: map[string]*ForeignFolder{}, files: map[string][]*types.File{}}
	s.folders["root"] = &ForeignFolder{ID: "root", Title: "root"}
	return s
}

func (s *memForeignStore) Select(ctx context.Context, scope types.Scope, id types.ForeignID) (*ForeignStore, error) {
	if !strings.HasPrefix(string(id), "mem-") {
		return nil, types.ErrNotFound
	}
	return &ForeignStore{Folders: s, Files: s, Converter: s}, nil
}

func (s *memForeignStore) GetFolder(ctx context.Context, id string) (*ForeignFolder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.folders[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	return f, nil
}

func (s *memForeignStore) FindFolder(ctx context.Context, parentID, title string) (*ForeignFolder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.folders {
		if f.ParentID == parentID && strings.EqualFold(f.Title, title) {
			return f, nil
		}
	}
	return nil, types.ErrNotFound
}

func (s *memForeignStore) CreateFolder(ctx context.Context, parentID, title string, owner uuid.UUID) (*ForeignFolder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn != "" && s.failOn == title {
		return nil, fmt.Errorf("create %s refused", title)
	}
	s.seq++
	f := &ForeignFolder{ID: fmt.Sprintf("f%d", s.seq), ParentID: parentID, Title: title}
	s.folders[f.ID] = f
	return f, nil
}

func (s *memForeignStore) ListFiles(ctx context.Context, folderID string) ([]*types.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files[folderID], nil
}

func (s *memForeignStore) SaveFile(ctx context.Context, folderID string, file *types.File) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[folderID] = append(s.files[folderID], file)
	return nil
}

func (s *memForeignStore) Native(id types.ForeignID) (string, error) {
	native := strings.TrimPrefix(string(id), "mem-")
	if native == string(id) {
		return "", types.ErrInvalidArgument
	}
	return native, nil
}

func (s *memForeignStore) Foreign(native string) types.ForeignID {
	return types.ForeignID("mem-" + native)
}
