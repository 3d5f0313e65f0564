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
	"sync"

	"github.com/google/uuid"
	"github.com/hyponet/eventbus"
	"go.uber.org/zap"

	"github.com/basenana/nanadocs/config"
	"github.com/basenana/nanadocs/pkg/indexer"
	"github.com/basenana/nanadocs/pkg/metastore"
	"github.com/basenana/nanadocs/pkg/types"
	"github.com/basenana/nanadocs/utils"
	"github.com/basenana/nanadocs/utils/logger"
)

type Manager interface {
	Reader
	Writer
	Mutator
	BunchRegistry

	// Transaction runs fn in one store transaction; side effects of the
	// operations inside fn fire once after the outermost commit.
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
	Close() error
}

type Reader interface {
	GetFolder(ctx context.Context, scope types.Scope, id int64) (*types.Folder, error)
	FindFolder(ctx context.Context, scope types.Scope, title string, parentID int64) (*types.Folder, error)
	ListFolders(ctx context.Context, scope types.Scope, parentID int64, opt ListOption) ([]*types.Folder, error)
	ListFoldersByIDs(ctx context.Context, scope types.Scope, ids []int64, opt ListOption) ([]*types.Folder, error)
	ListParentFolders(ctx context.Context, scope types.Scope, id int64) ([]*types.Folder, error)
	SearchFolders(ctx context.Context, scope types.Scope, text string, bunch bool) ([]*types.Folder, error)
	GetRootFolder(ctx context.Context, scope types.Scope, id int64) (*types.Folder, error)
	GetRootFolderByFile(ctx context.Context, scope types.Scope, fileID int64) (*types.Folder, error)
	IsEmpty(ctx context.Context, scope types.Scope, id int64) (bool, error)
	GetItemsCount(ctx context.Context, scope types.Scope, id int64) (int, error)
	UseTrashForRemove(folder *types.Folder) bool
	MaxUploadSize(ctx context.Context, scope types.Scope, folderID int64, chunked bool) (int64, error)
}

type Writer interface {
	SaveFolder(ctx context.Context, scope types.Scope, folder *types.Folder) (int64, error)
	RenameFolder(ctx context.Context, scope types.Scope, id int64, title string) (int64, error)
	DeleteFolder(ctx context.Context, scope types.Scope, id int64) error
	ReassignFolders(ctx context.Context, scope types.Scope, ids []int64, newOwner uuid.UUID) error
}

type Mutator interface {
	MoveFolder(ctx context.Context, scope types.Scope, id int64, to types.FolderRef) (types.FolderRef, error)
	CopyFolder(ctx context.Context, scope types.Scope, id int64, to types.FolderRef) (types.FolderRef, error)
	TransferFolder(ctx context.Context, scope types.Scope, id int64, to types.ForeignID, move bool) (map[int64]types.ForeignID, error)
	CanMoveOrCopy(ctx context.Context, scope types.Scope, ids []int64, to types.FolderRef) (map[int64]string, error)
	RecalculateCounts(ctx context.Context, scope types.Scope, id int64) error
}

type BunchRegistry interface {
	GetFolderID(ctx context.Context, scope types.Scope, module, bunch, data string, create bool) (int64, error)
	GetFolderIDs(ctx context.Context, scope types.Scope, module, bunch string, data []string, create bool) ([]int64, error)
	GetBunchObjectID(ctx context.Context, scope types.Scope, folderID int64) (string, error)
	GetBunchObjectIDs(ctx context.Context, scope types.Scope, folderIDs []int64) (map[int64]string, error)

	FolderIDUser(ctx context.Context, scope types.Scope, create bool, userID uuid.UUID) (int64, error)
	FolderIDCommon(ctx context.Context, scope types.Scope, create bool) (int64, error)
	FolderIDShare(ctx context.Context, scope types.Scope, create bool) (int64, error)
	FolderIDTrash(ctx context.Context, scope types.Scope, create bool, userID uuid.UUID) (int64, error)
	FolderIDRecent(ctx context.Context, scope types.Scope, create bool) (int64, error)
	FolderIDFavorites(ctx context.Context, scope types.Scope, create bool) (int64, error)
	FolderIDTemplates(ctx context.Context, scope types.Scope, create bool) (int64, error)
	FolderIDPrivacy(ctx context.Context, scope types.Scope, create bool, userID uuid.UUID) (int64, error)
	FolderIDProjects(ctx context.Context, scope types.Scope, create bool) (int64, error)
}

// GroupResolver expands a group subject into its members.
type GroupResolver interface {
	Members(ctx context.Context, tenantID int64, groupID uuid.UUID) ([]uuid.UUID, error)
}

type Option func(m *manager)

func WithIndexer(idx indexer.Indexer) Option {
	return func(m *manager) {
		m.indexer = idx
	}
}

func WithSelector(sel Selector) Option {
	return func(m *manager) {
		m.selector = sel
	}
}

func WithGroupResolver(groups GroupResolver) Option {
	return func(m *manager) {
		m.groups = groups
	}
}

func WithQuota(quota config.Quota) Option {
	return func(m *manager) {
		m.quota = quota
	}
}

func New(meta metastore.Meta, opts ...Option) (Manager, error) {
	m := &manager{
		meta:     meta,
		indexer:  indexer.NewDisabled(),
		cache:    newCache(),
		limiter:  utils.NewParallelLimiter(defaultRecountParallel),
		instance: uuid.New().String(),
		quota: config.Quota{
			MaxUploadSize:     config.DefaultMaxUploadSize,
			ChunkedUploadSize: config.DefaultChunkedUploadSize,
		},
		logger: logger.NewLogger("folders"),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.listeners = append(m.listeners, m.subscribeRecount())
	return m, nil
}

type manager struct {
	meta      metastore.Meta
	indexer   indexer.Indexer
	selector  Selector
	groups    GroupResolver
	quota     config.Quota
	cache     *cache
	limiter   *utils.ParallelLimiter
	instance  string
	listeners []string
	pending   sync.WaitGroup
	logger    *zap.SugaredLogger
}

var _ Manager = &manager{}

type effectsKey struct{}

type effects struct {
	fns []func()
}

func (m *manager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(effectsKey{}).(*effects); ok {
		return m.meta.Transaction(ctx, fn)
	}
	ctx, end := utils.TraceOperation(ctx, "folders", "transaction")
	defer end()
	eff := &effects{}
	if err := m.meta.Transaction(context.WithValue(ctx, effectsKey{}, eff), fn); err != nil {
		return err
	}
	for _, f := range eff.fns {
		f()
	}
	return nil
}

// afterCommit defers fn until the enclosing Transaction commits, or runs it
// at once outside of one. Rolled back transactions drop fn.
func afterCommit(ctx context.Context, fn func()) {
	if eff, ok := ctx.Value(effectsKey{}).(*effects); ok {
		eff.fns = append(eff.fns, fn)
		return
	}
	fn()
}

// Close waits for scheduled recounts before it stops listening.
func (m *manager) Close() error {
	m.pending.Wait()
	for _, lid := range m.listeners {
		eventbus.Unsubscribe(lid)
	}
	m.listeners = nil
	return nil
}
