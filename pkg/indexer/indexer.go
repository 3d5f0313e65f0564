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

	"github.com/basenana/nanadocs/config"
	"github.com/basenana/nanadocs/pkg/types"
)

type Indexer interface {
	// TryMatchIDs reports found=false when the index cannot answer,
	// callers fall back to scanning titles.
	TryMatchIDs(ctx context.Context, tenantID int64, query string) (bool, []int64, error)
	IndexAsync(folder *types.Folder)
	DeleteAsync(tenantID int64, ids ...int64)
	Close() error
}

func NewIndexer(cfg config.Index) (Indexer, error) {
	if !cfg.Enable {
		return NewDisabled(), nil
	}
	return NewBleveIndexer(cfg.LocalIndexerDir)
}
