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

package types

import (
	"time"
)

type Event struct {
	Id              string      `json:"id"`
	TenantID        int64       `json:"tenant_id"`
	Type            string      `json:"type"`
	Source          string      `json:"source"`
	SpecVersion     string      `json:"specversion"`
	Time            time.Time   `json:"time"`
	RefType         string      `json:"nanadocsreftype"`
	RefID           int64       `json:"nanadocsrefid"`
	DataContentType string      `json:"datacontenttype"`
	Data            interface{} `json:"data"`
}

type FolderEventData struct {
	ID         int64      `json:"id"`
	ParentID   int64      `json:"parent_id"`
	Title      string     `json:"title"`
	FolderType FolderType `json:"folder_type"`
	OldParent  int64      `json:"old_parent,omitempty"`
	ModifiedOn time.Time  `json:"modified_on"`
}
