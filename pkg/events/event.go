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

package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/hyponet/eventbus"

	"github.com/basenana/nanadocs/pkg/types"
)

func BuildFolderEvent(actionType, source string, folder *types.Folder, oldParent int64) *types.Event {
	return &types.Event{
		Id:              uuid.New().String(),
		TenantID:        folder.TenantID,
		Type:            actionType,
		Source:          source,
		SpecVersion:     "1.0",
		Time:            time.Now(),
		RefType:         "folder",
		RefID:           folder.ID,
		DataContentType: "application/event-data",
		Data: types.FolderEventData{
			ID:         folder.ID,
			ParentID:   folder.ParentID,
			Title:      folder.Title,
			FolderType: folder.FolderType,
			OldParent:  oldParent,
			ModifiedOn: folder.ModifiedOn,
		},
	}
}

func BuildTaskEvent(taskType, source string, tenantID, refID int64, data interface{}) *types.Event {
	return &types.Event{
		Id:              uuid.New().String(),
		TenantID:        tenantID,
		Type:            taskType,
		Source:          source,
		SpecVersion:     "1.0",
		Time:            time.Now(),
		RefType:         "folder",
		RefID:           refID,
		DataContentType: "application/task-data",
		Data:            data,
	}
}

func PublishFolderEvent(actionType, source string, folder *types.Folder, oldParent int64) {
	eventbus.Publish(FolderActionTopic(actionType), BuildFolderEvent(actionType, source, folder, oldParent))
}

func PublishTask(taskType, instance string, evt *types.Event) {
	eventbus.Publish(TaskTopic(taskType, instance), evt)
}
