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

package apitool

import (
	"errors"
	"net/http"

	"github.com/basenana/nanadocs/pkg/types"
)

type ApiErrorCode string

const (
	ApiArgsError        ApiErrorCode = "ArgsError"
	ApiNotFoundError    ApiErrorCode = "NotFound"
	ApiForbidden        ApiErrorCode = "Forbidden"
	ApiInvalidOperation ApiErrorCode = "InvalidOperation"
	ApiNotImplemented   ApiErrorCode = "NotImplemented"
	ApiNotEnable        ApiErrorCode = "NotEnable"
	ApiEntryExisted     ApiErrorCode = "EntryExisted"
	ApiConflict         ApiErrorCode = "Conflict"
	ApiUnauthorized     ApiErrorCode = "Unauthorized"
	ApiInternalError    ApiErrorCode = "InternalError"
)

type Error struct {
	Code    ApiErrorCode `json:"code"`
	Message string       `json:"message"`
}

func Error2ApiErrorCode(err error) (int, ApiErrorCode) {
	if err == nil {
		return http.StatusOK, "NoError"
	}
	switch {
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound, ApiNotFoundError
	case errors.Is(err, types.ErrInvalidArgument):
		return http.StatusBadRequest, ApiArgsError
	case errors.Is(err, types.ErrForbidden):
		return http.StatusForbidden, ApiForbidden
	case errors.Is(err, types.ErrInvalidOperation):
		return http.StatusConflict, ApiInvalidOperation
	case errors.Is(err, types.ErrNotImplemented):
		return http.StatusNotImplemented, ApiNotImplemented
	case errors.Is(err, types.ErrNotEnable):
		return http.StatusBadRequest, ApiNotEnable
	case errors.Is(err, types.ErrIsExist):
		return http.StatusBadRequest, ApiEntryExisted
	case errors.Is(err, types.ErrConflict):
		return http.StatusConflict, ApiConflict
	}
	return http.StatusInternalServerError, ApiInternalError
}
