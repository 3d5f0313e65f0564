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

package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/basenana/nanadocs/cmd/apps/apis/apitool"
	"github.com/basenana/nanadocs/cmd/apps/apis/rest/common"
	"github.com/basenana/nanadocs/cmd/apps/apis/rest/v1"
	"github.com/basenana/nanadocs/config"
	"github.com/basenana/nanadocs/utils"
	"github.com/basenana/nanadocs/utils/logger"
)

const (
	defaultHttpTimeout = time.Minute * 30
	metricHandlerID    = "nanadocs"
	headerRequestID    = "X-Request-Id"
)

type Server struct {
	engine    *gin.Engine
	apiConfig config.Api
	logger    *zap.SugaredLogger
}

func New(depends *common.Depends) (*Server, error) {
	if depends == nil || depends.Folders == nil {
		return nil, fmt.Errorf("rest server: folders manager is required")
	}
	s := &Server{
		engine:    gin.New(),
		apiConfig: depends.Config.API,
		logger:    logger.NewLogger("rest"),
	}

	s.engine.Use(gin.Recovery())
	s.engine.Use(s.logMiddleware())

	s.engine.GET("/_ping", s.Ping)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if s.apiConfig.Pprof {
		pprof.Register(s.engine)
	}

	api := s.engine.Group("/api", common.AuthMiddleware())
	v1.RegisterRoutes(api, v1.NewServicesV1(depends))

	return s, nil
}

// Handler serves the engine wrapped with request metrics.
func (s *Server) Handler() http.Handler {
	return apitool.MetricMiddleware(metricHandlerID, s.engine)
}

func (s *Server) Run(stopCh chan struct{}) {
	addr := fmt.Sprintf("%s:%d", s.apiConfig.Host, s.apiConfig.Port)
	s.logger.Infof("rest server on %s", addr)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  defaultHttpTimeout,
		WriteTimeout: defaultHttpTimeout,
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil {
			if err != http.ErrServerClosed {
				s.logger.Panicw("rest server down", "err", err)
			}
			s.logger.Infof("rest server stopped")
		}
	}()

	<-stopCh
	shutdownCtx, canF := context.WithTimeout(context.TODO(), time.Second)
	defer canF()
	_ = httpServer.Shutdown(shutdownCtx)
}

func (s *Server) Ping(gCtx *gin.Context) {
	gCtx.JSON(200, map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) logMiddleware() gin.HandlerFunc {
	return func(gCtx *gin.Context) {
		start := time.Now()
		path := gCtx.Request.URL.Path
		method := gCtx.Request.Method

		ctx := utils.WithTraceID(gCtx.Request.Context(), gCtx.GetHeader(headerRequestID))
		gCtx.Request = gCtx.Request.WithContext(ctx)
		gCtx.Header(headerRequestID, utils.TraceID(ctx))

		gCtx.Next()

		utils.ContextLog(ctx, s.logger).Infow("rest request",
			"method", method,
			"path", path,
			"query", gCtx.Request.URL.Query().Encode(),
			"status", gCtx.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}
