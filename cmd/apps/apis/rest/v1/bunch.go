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
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/basenana/nanadocs/cmd/apps/apis/apitool"
	"github.com/basenana/nanadocs/pkg/types"
)

// GetBunchFolder resolves module/bunch/data to its folder id; with
// ?create=true a missing binding is provisioned.
func (s *ServicesV1) GetBunchFolder(ctx *gin.Context) {
	scope, ok := s.requireScope(ctx)
	if !ok {
		return
	}
	var (
		module = ctx.Param("module")
		bunch  = ctx.Param("bunch")
		data   = ctx.Param("data")
		create = ctx.Query("create") == "true"
	)

	id, err := s.folders.GetFolderID(ctx.Request.Context(), scope, module, bunch, data, create)
	if err != nil {
		apitool.ErrorResponse(ctx, err)
		return
	}
	key := fmt.Sprintf("%s/%s/%s", module, bunch, data)
	if id == 0 {
		apitool.ErrorResponse(ctx, fmt.Errorf("%w: bunch %s", types.ErrNotFound, key))
		return
	}
	apitool.JsonResponse(ctx, http.StatusOK, &BunchResponse{Key: key, FolderID: id})
}

func (s *ServicesV1) GetBunchObject(ctx *gin.Context) {
	scope, ok := s.requireScope(ctx)
	if !ok {
		return
	}
	id, ok := s.requireFolderID(ctx)
	if !ok {
		return
	}

	objectID, err := s.folders.GetBunchObjectID(ctx.Request.Context(), scope, id)
	if err != nil {
		apitool.ErrorResponse(ctx, err)
		return
	}
	if objectID == "" {
		apitool.ErrorResponse(ctx, fmt.Errorf("%w: folder %d is not bound", types.ErrNotFound, id))
		return
	}
	apitool.JsonResponse(ctx, http.StatusOK, &BunchObjectResponse{FolderID: id, ObjectID: objectID})
}

func (s *ServicesV1) ListProviders(ctx *gin.Context) {
	if _, ok := s.requireScope(ctx); !ok {
		return
	}
	apitool.JsonResponse(ctx, http.StatusOK, &ProvidersResponse{Providers: s.mirror.Providers()})
}

// EnsureProviderRoot returns the tenant's root folder in a mirror provider,
// the usual destination of a transfer.
func (s *ServicesV1) EnsureProviderRoot(ctx *gin.Context) {
	scope, ok := s.requireScope(ctx)
	if !ok {
		return
	}
	ref, err := s.mirror.EnsureRoot(ctx.Request.Context(), scope, ctx.Param("provider"))
	if err != nil {
		apitool.ErrorResponse(ctx, err)
		return
	}
	apitool.JsonResponse(ctx, http.StatusOK, toRefResponse(ref))
}
