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
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/basenana/nanadocs/cmd/apps/apis/apitool"
	"github.com/basenana/nanadocs/pkg/types"
)

const (
	HeaderTenant = "X-Tenant"
	HeaderActor  = "X-Actor"
)

type scopeContextKey struct{}

func WithScope(ctx context.Context, scope types.Scope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, scope)
}

func Scope(ctx context.Context) (types.Scope, bool) {
	raw := ctx.Value(scopeContextKey{})
	if raw == nil {
		return types.Scope{}, false
	}
	scope, ok := raw.(types.Scope)
	return scope, ok
}

// AuthMiddleware rejects requests without a tenant or with a malformed actor.
func AuthMiddleware() gin.HandlerFunc {
	return func(gCtx *gin.Context) {
		scope, ok := parseScope(gCtx)
		if !ok {
			return
		}

		ctx := WithScope(gCtx.Request.Context(), scope)
		gCtx.Request = gCtx.Request.WithContext(ctx)

		gCtx.Next()
	}
}

func parseScope(gCtx *gin.Context) (types.Scope, bool) {
	tenant, err := strconv.ParseInt(gCtx.GetHeader(HeaderTenant), 10, 64)
	if err != nil || tenant <= 0 {
		unauthorized(gCtx, "missing or invalid X-Tenant header")
		return types.Scope{}, false
	}

	actor := uuid.Nil
	if raw := gCtx.GetHeader(HeaderActor); raw != "" {
		actor, err = uuid.Parse(raw)
		if err != nil {
			unauthorized(gCtx, "invalid X-Actor header")
			return types.Scope{}, false
		}
	}
	return types.NewScope(tenant, actor), true
}

func unauthorized(gCtx *gin.Context, msg string) {
	gCtx.AbortWithStatusJSON(http.StatusUnauthorized, apitool.Response{
		Status: http.StatusUnauthorized,
		Error:  &apitool.Error{Code: apitool.ApiUnauthorized, Message: msg},
	})
}
