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
	"time"

	"github.com/hyponet/eventbus"

	"github.com/basenana/nanadocs/pkg/events"
	"github.com/basenana/nanadocs/pkg/types"
	"github.com/basenana/nanadocs/utils"
	"github.com/basenana/nanadocs/utils/metrics"
)

const (
	defaultRecountParallel = 4
	recountTimeout         = time.Minute
	eventSource            = "folders"
)

type recountTask struct {
	Scope    types.Scope
	FolderID int64
}

// recountAsync schedules count recalculation for each id once the
// enclosing transaction commits. Recounting is idempotent, so duplicate
// deliveries are harmless.
func (m *manager) recountAsync(ctx context.Context, scope types.Scope, ids ...int64) {
	afterCommit(ctx, func() {
		seen := make(map[int64]struct{}, len(ids))
		for _, id := range ids {
			if id == 0 {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			m.pending.Add(1)
			events.PublishTask(events.TaskTypeRecount, m.instance,
				events.BuildTaskEvent(events.TaskTypeRecount, eventSource, scope.TenantID, id, recountTask{Scope: scope, FolderID: id}))
		}
	})
}

func (m *manager) subscribeRecount() string {
	return eventbus.Subscribe(events.TaskTopic(events.TaskTypeRecount, m.instance), m.handleRecount)
}

func (m *manager) handleRecount(evt *types.Event) {
	defer m.pending.Done()
	defer utils.Recover()
	task, ok := evt.Data.(recountTask)
	if !ok {
		m.logger.Warnw("unexpected recount task data", "event", evt.Id)
		return
	}

	ctx, canF := context.WithTimeout(context.Background(), recountTimeout)
	defer canF()
	if err := m.limiter.Acquire(ctx); err != nil {
		m.reportBackgroundFailure(events.TaskTypeRecount, task.FolderID, err)
		return
	}
	defer m.limiter.Release()

	if err := m.RecalculateCounts(ctx, task.Scope, task.FolderID); err != nil {
		m.reportBackgroundFailure(events.TaskTypeRecount, task.FolderID, err)
	}
}

func (m *manager) reportBackgroundFailure(task string, folderID int64, err error) {
	m.logger.Errorw("background task failed", "task", task, "folder", folderID, "err", err)
	folderBackgroundFailureCounter.WithLabelValues(task).Inc()
	metrics.CaptureError(err, "folders."+task)
}

func (m *manager) indexAsync(ctx context.Context, folder *types.Folder) {
	afterCommit(ctx, func() {
		m.indexer.IndexAsync(folder)
	})
}

func (m *manager) unindexAsync(ctx context.Context, tenantID int64, ids []int64) {
	afterCommit(ctx, func() {
		m.indexer.DeleteAsync(tenantID, ids...)
	})
}

func (m *manager) publishEvent(ctx context.Context, action string, folder *types.Folder, oldParent int64) {
	snapshot := *folder
	afterCommit(ctx, func() {
		events.PublishFolderEvent(action, eventSource, &snapshot, oldParent)
	})
}
