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

	"github.com/basenana/nanadocs/pkg/types"
)

// MaxUploadSize returns the byte limit of one upload into folderID. In
// personal mode the limit shrinks to what the owner of the root folder
// has left of the personal quota.
func (m *manager) MaxUploadSize(ctx context.Context, scope types.Scope, folderID int64, chunked bool) (int64, error) {
	if err := scope.Validate(); err != nil {
		return 0, err
	}
	limit := m.quota.MaxUploadSize
	if chunked {
		limit = m.quota.ChunkedUploadSize
	}
	if !m.quota.PersonalMode {
		return limit, nil
	}

	root, err := m.meta.RootFolderOf(ctx, scope.TenantID, folderID)
	if err != nil {
		return 0, err
	}
	used, err := m.meta.UsedSpace(ctx, scope.TenantID, root.CreateBy)
	if err != nil {
		return 0, logOperationError("max_upload_size", err)
	}
	remaining := m.quota.PersonalMaxSpace - used
	if remaining < 0 {
		remaining = 0
	}
	return min(limit, remaining), nil
}
