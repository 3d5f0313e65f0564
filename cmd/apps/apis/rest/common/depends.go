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

package common

import (
	"github.com/basenana/nanadocs/config"
	"github.com/basenana/nanadocs/pkg/folders"
	"github.com/basenana/nanadocs/pkg/indexer"
	"github.com/basenana/nanadocs/pkg/metastore"
	"github.com/basenana/nanadocs/pkg/provider"
)

type Depends struct {
	Meta    metastore.Meta
	Indexer indexer.Indexer
	Mirror  *provider.Mirror
	Folders folders.Manager
	Config  config.Bootstrap
}

func InitDepends(cfg config.Bootstrap, meta metastore.Meta) (*Depends, error) {
	var err error
	dep := &Depends{
		Meta:   meta,
		Config: cfg,
	}

	dep.Indexer, err = indexer.NewIndexer(cfg.Index)
	if err != nil {
		return nil, err
	}

	dep.Mirror, err = provider.NewMirror(cfg.Providers)
	if err != nil {
		_ = dep.Indexer.Close()
		return nil, err
	}

	dep.Folders, err = folders.New(meta,
		folders.WithIndexer(dep.Indexer),
		folders.WithSelector(dep.Mirror),
		folders.WithQuota(cfg.Quota),
	)
	if err != nil {
		_ = dep.Mirror.Close()
		_ = dep.Indexer.Close()
		return nil, err
	}
	return dep, nil
}

func (d *Depends) Close() error {
	var firstErr error
	for _, closer := range []func() error{d.Folders.Close, d.Mirror.Close, d.Indexer.Close} {
		if err := closer(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
