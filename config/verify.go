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
	"regexp"

	"github.com/pkg/errors"
)

var (
	providerIDPattern = "^[a-zA-Z][a-zA-Z0-9_.]{2,31}$"
	providerIDRegexp  = regexp.MustCompile(providerIDPattern)
)

type verifier func(config *Bootstrap) error

var verifiers = []verifier{
	setDefaultValue,
	checkApiConfig,
	checkMetaConfig,
	checkQuotaConfig,
	checkProviderConfigs,
}

func Verify(config *Bootstrap) error {
	for _, f := range verifiers {
		if err := f(config); err != nil {
			return err
		}
	}
	return nil
}

func setDefaultValue(config *Bootstrap) error {
	if config.Meta.Type == "" {
		config.Meta.Type = MemoryMeta
	}
	if config.Quota.MaxUploadSize == 0 {
		config.Quota.MaxUploadSize = DefaultMaxUploadSize
	}
	if config.Quota.ChunkedUploadSize == 0 {
		config.Quota.ChunkedUploadSize = DefaultChunkedUploadSize
	}
	return nil
}

func checkApiConfig(config *Bootstrap) error {
	aCfg := config.API
	if !aCfg.Enable {
		return nil
	}
	if aCfg.Host == "" || aCfg.Port == 0 {
		return fmt.Errorf("api.host or api.port not config")
	}
	return nil
}

func checkMetaConfig(config *Bootstrap) error {
	return errors.Wrap(checkMeta(config.Meta), "meta")
}

func checkMeta(m Meta) error {
	switch m.Type {
	case MemoryMeta:
		return nil
	case SqliteMeta:
		if m.Path == "" {
			return fmt.Errorf("path for sqlite db file is empty")
		}
		return nil
	case PostgresMeta:
		if m.DSN == "" {
			return fmt.Errorf("db dsn is empty")
		}
		return nil
	default:
		return fmt.Errorf("unknown meta type %s", m.Type)
	}
}

func checkQuotaConfig(config *Bootstrap) error {
	q := config.Quota
	if q.MaxUploadSize < 0 || q.ChunkedUploadSize < 0 {
		return fmt.Errorf("quota: upload size must not be negative")
	}
	if q.PersonalMode && q.PersonalMaxSpace <= 0 {
		return fmt.Errorf("quota: personal_max_space must be set when personal_mode enabled")
	}
	return nil
}

func checkProviderConfigs(config *Bootstrap) error {
	seen := map[string]struct{}{}
	for i, p := range config.Providers {
		if !providerIDRegexp.MatchString(p.ID) {
			return fmt.Errorf("providers[%d]: id %q not match %s", i, p.ID, providerIDPattern)
		}
		if _, ok := seen[p.ID]; ok {
			return fmt.Errorf("providers[%d]: duplicate id %s", i, p.ID)
		}
		seen[p.ID] = struct{}{}
		if err := checkMeta(p.Meta); err != nil {
			return errors.Wrapf(err, "providers[%d].%s", i, p.ID)
		}
	}
	return nil
}
