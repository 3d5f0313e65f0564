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

import "errors"

var (
	ErrNotFound         = errors.New("no record")
	ErrIsExist          = errors.New("record existed")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrForbidden        = errors.New("forbidden operation")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrNotImplemented   = errors.New("not implemented")
	ErrConflict         = errors.New("operation conflict")
	ErrNotEnable        = errors.New("not enable")
)
