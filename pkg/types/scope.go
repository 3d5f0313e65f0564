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
	"fmt"

	"github.com/google/uuid"
)

// Scope identifies the tenant and the acting user of one call.
type Scope struct {
	TenantID int64
	Actor    uuid.UUID
}

func NewScope(tenantID int64, actor uuid.UUID) Scope {
	return Scope{TenantID: tenantID, Actor: actor}
}

func (s Scope) Validate() error {
	if s.TenantID == 0 {
		return fmt.Errorf("%w: tenant is empty", ErrInvalidArgument)
	}
	return nil
}
