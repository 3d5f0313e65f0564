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

package indexer

import (
	"context"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bquery "github.com/blevesearch/bleve/v2/search/query"
	"github.com/google/uuid"
	"github.com/hyponet/eventbus"
	"go.uber.org/zap"

	"github.com/basenana/nanadocs/pkg/events"
	"github.com/basenana/nanadocs/pkg/types"
	"github.com/basenana/nanadocs/utils"
	"github.com/basenana/nanadocs/utils/logger"
)

const (
	bleveIndexName = "folders.bleve"
	matchPageSize  = 1000
	// bleveOpenTimeout bounds the wait for the index file lock.
	bleveOpenTimeout = "5s"
)

type Bleve struct {
	b         bleve.Index
	instance  string
	listeners []string
	pending   sync.WaitGroup
	logger    *zap.SugaredLogger
}

var _ Indexer = &Bleve{}

// NewBleveIndexer opens the index under dir, or keeps it in memory when dir is empty.
func NewBleveIndexer(dir string) (*Bleve, error) {
	idx, err := openBleveIndex(dir)
	if err != nil {
		return nil, err
	}
	b := &Bleve{
		b:        idx,
		instance: uuid.New().String(),
		logger:   logger.NewLogger("indexer"),
	}
	b.listeners = append(b.listeners,
		eventbus.SubscribeWithBlock(events.TaskTopic(events.TaskTypeIndex, b.instance), b.handleIndex),
		eventbus.SubscribeWithBlock(events.TaskTopic(events.TaskTypeIndexDelete, b.instance), b.handleDelete),
	)
	return b, nil
}

func (b *Bleve) Index(ctx context.Context, folder *types.Folder) error {
	doc := newFolderDocument(folder)
	return b.b.Index(doc.ID, doc)
}

func (b *Bleve) Delete(ctx context.Context, tenantID int64, ids ...int64) error {
	batch := b.b.NewBatch()
	for _, id := range ids {
		batch.Delete(documentID(tenantID, id))
	}
	return b.b.Batch(batch)
}

func (b *Bleve) TryMatchIDs(ctx context.Context, tenantID int64, query string) (bool, []int64, error) {
	startAt := time.Now()
	defer func() {
		b.logger.Debugw("match folders finish", "query", query, "cost", time.Since(startAt).String())
	}()

	query = strings.TrimSpace(query)
	if query == "" {
		return false, nil, nil
	}

	tenantQuery := bleve.NewTermQuery(strconv.FormatInt(tenantID, 10))
	tenantQuery.SetField("tenant")

	titleMatch := bleve.NewMatchQuery(query)
	titleMatch.SetField("title")
	titleMatch.SetOperator(bquery.MatchQueryOperatorAnd)
	textQueries := []bquery.Query{titleMatch}
	if len(query) >= 2 && !strings.ContainsAny(query, " \t") {
		prefixQuery := bleve.NewPrefixQuery(strings.ToLower(query))
		prefixQuery.SetField("title")
		textQueries = append(textQueries, prefixQuery)
	}

	matchQuery := bleve.NewConjunctionQuery(tenantQuery, bleve.NewDisjunctionQuery(textQueries...))
	var ids []int64
	for from := 0; ; from += matchPageSize {
		req := bleve.NewSearchRequestOptions(matchQuery, matchPageSize, from, false)
		result, err := b.b.SearchInContext(ctx, req)
		if err != nil {
			b.logger.Errorw("match folders failed", "query", query, "err", err)
			return false, nil, err
		}
		for _, hit := range result.Hits {
			_, id, err := parseDocumentID(hit.ID)
			if err != nil {
				b.logger.Warnw("skip malformed document id", "document", hit.ID, "err", err)
				continue
			}
			ids = append(ids, id)
		}
		if len(result.Hits) < matchPageSize || uint64(from+len(result.Hits)) >= result.Total {
			break
		}
	}
	return true, ids, nil
}

func (b *Bleve) IndexAsync(folder *types.Folder) {
	snapshot := *folder
	b.pending.Add(1)
	events.PublishTask(events.TaskTypeIndex, b.instance,
		events.BuildTaskEvent(events.TaskTypeIndex, "indexer", folder.TenantID, folder.ID, &snapshot))
}

func (b *Bleve) DeleteAsync(tenantID int64, ids ...int64) {
	if len(ids) == 0 {
		return
	}
	b.pending.Add(1)
	events.PublishTask(events.TaskTypeIndexDelete, b.instance,
		events.BuildTaskEvent(events.TaskTypeIndexDelete, "indexer", tenantID, ids[0], append([]int64(nil), ids...)))
}

// Close flushes queued index tasks before closing the index.
func (b *Bleve) Close() error {
	b.pending.Wait()
	for _, lid := range b.listeners {
		eventbus.Unsubscribe(lid)
	}
	return b.b.Close()
}

func (b *Bleve) handleIndex(evt *types.Event) {
	defer b.pending.Done()
	defer utils.Recover()
	folder, ok := evt.Data.(*types.Folder)
	if !ok {
		b.logger.Warnw("unexpected index task data", "event", evt.Id)
		return
	}
	if err := b.Index(context.Background(), folder); err != nil {
		b.logger.Errorw("index folder failed", "folder", folder.ID, "err", err)
	}
}

func (b *Bleve) handleDelete(evt *types.Event) {
	defer b.pending.Done()
	defer utils.Recover()
	ids, ok := evt.Data.([]int64)
	if !ok {
		b.logger.Warnw("unexpected unindex task data", "event", evt.Id)
		return
	}
	if err := b.Delete(context.Background(), evt.TenantID, ids...); err != nil {
		b.logger.Errorw("delete folders from index failed", "tenant", evt.TenantID, "err", err)
	}
}

type folderDocument struct {
	ID         string `json:"id"`
	Tenant     string `json:"tenant"`
	Title      string `json:"title"`
	FolderType string `json:"folder_type"`
	ParentID   int64  `json:"parent_id"`
}

func newFolderDocument(folder *types.Folder) *folderDocument {
	title := folder.Title
	if display, ok := folder.FolderType.DisplayTitle(); ok {
		title = display
	}
	return &folderDocument{
		ID:         documentID(folder.TenantID, folder.ID),
		Tenant:     strconv.FormatInt(folder.TenantID, 10),
		Title:      title,
		FolderType: folder.FolderType.String(),
		ParentID:   folder.ParentID,
	}
}

func documentID(tenantID, id int64) string {
	return fmt.Sprintf("%d-%d", tenantID, id)
}

func parseDocumentID(docID string) (int64, int64, error) {
	parts := strings.SplitN(docID, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid document id %s", docID)
	}
	tenantID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	return tenantID, id, nil
}

func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = standard.Name

	docMapping := bleve.NewDocumentMapping()

	keywordField := bleve.NewTextFieldMapping()
	keywordField.Analyzer = keyword.Name
	keywordField.IncludeInAll = false
	docMapping.AddFieldMappingsAt("id", keywordField)
	docMapping.AddFieldMappingsAt("tenant", keywordField)
	docMapping.AddFieldMappingsAt("folder_type", keywordField)

	titleField := bleve.NewTextFieldMapping()
	titleField.Analyzer = standard.Name
	titleField.Store = true
	docMapping.AddFieldMappingsAt("title", titleField)

	parentField := bleve.NewNumericFieldMapping()
	parentField.Store = false
	parentField.IncludeInAll = false
	docMapping.AddFieldMappingsAt("parent_id", parentField)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

func openBleveIndex(dir string) (bleve.Index, error) {
	if dir == "" {
		return bleve.NewMemOnly(buildIndexMapping())
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	indexPath := path.Join(dir, bleveIndexName)
	index, err := bleve.OpenUsing(indexPath, map[string]interface{}{"bolt_timeout": bleveOpenTimeout})
	if err == nil {
		return index, nil
	}
	if err != bleve.ErrorIndexPathDoesNotExist {
		return nil, fmt.Errorf("open index %s, it may be held by another process: %w", indexPath, err)
	}
	return bleve.New(indexPath, buildIndexMapping())
}
