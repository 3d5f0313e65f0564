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
	"time"

	"github.com/bluele/gcache"
)

const (
	defaultBindingCacheSize   = 1 << 14
	defaultBindingCacheExpire = time.Minute * 10
)

// cache only ever holds committed bindings.
type cache struct {
	bindings gcache.Cache
}

func (c *cache) getBinding(tenantID int64, key string) (int64, bool) {
	cached, err := c.bindings.Get(bk{tenantID: tenantID, key: key})
	if err != nil || cached == nil {
		return 0, false
	}
	return cached.(int64), true
}

func (c *cache) setBinding(tenantID int64, key string, folderID int64) {
	_ = c.bindings.Set(bk{tenantID: tenantID, key: key}, folderID)
}

func (c *cache) invalidBindings(tenantID int64, keys ...string) {
	k := bk{tenantID: tenantID}
	for _, key := range keys {
		k.key = key
		c.bindings.Remove(k)
	}
}

func newCache() *cache {
	return &cache{
		bindings: gcache.New(defaultBindingCacheSize).LRU().
			Expiration(defaultBindingCacheExpire).Build(),
	}
}

type bk struct {
	tenantID int64
	key      string
}
