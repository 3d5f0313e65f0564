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
	"github.com/google/uuid"

	"github.com/basenana/nanadocs/pkg/types"
)

type ListOption struct {
	OrderBy      types.OrderBy
	FilterType   types.FilterType
	SubjectID    uuid.UUID
	SubjectGroup bool
	SearchText   string
	// SearchInContent is accepted for callers that search file bodies;
	// folders only carry titles.
	SearchInContent bool
	WithSubfolders  bool
	Offset          int
	Count           int
}
