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

package config

import (
	"fmt"
	"path"
)

const (
	DefaultMaxUploadSize     int64 = 5 << 30
	DefaultChunkedUploadSize int64 = 10 << 20
)

func DefaultConfig(workdir string) Bootstrap {
	return Bootstrap{
		API: Api{
			Enable: true,
			Host:   "127.0.0.1",
			Port:   17086,
		},
		Meta: Meta{
			Type: SqliteMeta,
			Path: fmt.Sprintf("%s/nanadocs.db", workdir),
		},
		Index: Index{
			Enable:          true,
			LocalIndexerDir: path.Join(workdir, "index"),
		},
		Quota: Quota{
			MaxUploadSize:     DefaultMaxUploadSize,
			ChunkedUploadSize: DefaultChunkedUploadSize,
		},
	}
}
