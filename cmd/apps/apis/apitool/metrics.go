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
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	metrics "github.com/slok/go-http-metrics/metrics/prometheus"
	"github.com/slok/go-http-metrics/middleware"
	"github.com/slok/go-http-metrics/middleware/std"
)

var (
	recorders   = map[string]middleware.Middleware{}
	recordersMu sync.Mutex
)

func init() {
	prometheus.MustRegister(collectors.NewBuildInfoCollector())
}

// MetricMiddleware records request latency and sizes of handler under the
// handlerID prefix. Collectors are registered once per prefix.
func MetricMiddleware(handlerID string, handler http.Handler) http.Handler {
	recordersMu.Lock()
	mdlw, ok := recorders[handlerID]
	if !ok {
		mdlw = middleware.New(middleware.Config{
			Recorder: metrics.NewRecorder(metrics.Config{
				Prefix:   handlerID,
				Registry: prometheus.DefaultRegisterer,
			}),
		})
		recorders[handlerID] = mdlw
	}
	recordersMu.Unlock()
	return std.Handler(handlerID, mdlw, handler)
}
