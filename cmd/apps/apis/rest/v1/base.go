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

package v1

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"

	"github.com/basenana/nanadocs/cmd/apps/apis/apitool"
	"github.com/basenana/nanadocs/cmd/apps/apis/rest/common"
	"github.com/basenana/nanadocs/config"
	"github.com/basenana/nanadocs/pkg/folders"
	"github.com/basenana/nanadocs/pkg/provider"
	"github.com/basenana/nanadocs/pkg/types"
	"github.com/basenana/nanadocs/utils/logger"
)

type ServicesV1 struct {
	folders folders.Manager
	mirror  *provider.Mirror
	cfg     config.Bootstrap
	logger  *zap.SugaredLogger
}

func NewServicesV1(depends *common.Depends) *ServicesV1 {
	return &ServicesV1{
		folders: depends.Folders,
		mirror:  depends.Mirror,
		cfg:     depends.Config,
		logger:  logger.NewLogger("rest"),
	}
}

// requireScope writes a 401 response and returns false when the request
// passed through without a tenant.
func (s *ServicesV1) requireScope(ctx *gin.Context) (types.Scope, bool) {
	scope, ok := common.Scope(ctx.Request.Context())
	if !ok {
		apitool.ApiErrorResponse(ctx, http.StatusUnauthorized, apitool.ApiUnauthorized, errors.New("unauthorized: missing scope"))
		return types.Scope{}, false
	}
	return scope, true
}

func (s *ServicesV1) requireFolderID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		apitool.ErrorResponse(ctx, fmt.Errorf("%w: invalid folder id %q", types.ErrInvalidArgument, ctx.Param("id")))
		return 0, false
	}
	return id, true
}

// bindJSON decodes and validates the request body.
func bindJSON(ctx *gin.Context, req validation.Validatable) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		apitool.ErrorResponse(ctx, fmt.Errorf("%w: %s", types.ErrInvalidArgument, err))
		return false
	}
	if err := req.Validate(); err != nil {
		apitool.ErrorResponse(ctx, fmt.Errorf("%w: %s", types.ErrInvalidArgument, err))
		return false
	}
	return true
}

func bindQuery(ctx *gin.Context, req validation.Validatable) bool {
	if err := ctx.ShouldBindQuery(req); err != nil {
		apitool.ErrorResponse(ctx, fmt.Errorf("%w: %s", types.ErrInvalidArgument, err))
		return false
	}
	if err := req.Validate(); err != nil {
		apitool.ErrorResponse(ctx, fmt.Errorf("%w: %s", types.ErrInvalidArgument, err))
		return false
	}
	return true
}
