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

const (
	MemoryMeta   = "memory"
	SqliteMeta   = "sqlite"
	PostgresMeta = "postgres"
)

type Bootstrap struct {
	API       Api        `json:"api"`
	Meta      Meta       `json:"meta"`
	Index     Index      `json:"index"`
	Quota     Quota      `json:"quota"`
	Providers []Provider `json:"providers,omitempty"`
	Debug     bool       `json:"debug,omitempty"`
}

type Api struct {
	Enable bool   `json:"enable"`
	Host   string `json:"host"`
	Port   int    `json:"port"`
	Pprof  bool   `json:"pprof"`
}

type Meta struct {
	Type string `json:"type"`
	Path string `json:"path,omitempty"`
	DSN  string `json:"dsn,omitempty"`
}

type Index struct {
	Enable bool `json:"enable"`
	// LocalIndexerDir keeps the bleve index on disk; empty means in memory.
	LocalIndexerDir string `json:"local_indexer_dir,omitempty"`
}

type Quota struct {
	MaxUploadSize     int64 `json:"max_upload_size"`
	ChunkedUploadSize int64 `json:"chunked_upload_size"`
	PersonalMode      bool  `json:"personal_mode"`
	PersonalMaxSpace  int64 `json:"personal_max_space"`
}

// Provider is an extra backing store addressed by foreign folder ids
// of the form "<id>-<folder>".
type Provider struct {
	ID   string `json:"id"`
	Meta Meta   `json:"meta"`
}
