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
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/basenana/nanadocs/pkg/types"
)

var (
	folderOperationLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "folder_operation_latency_seconds",
			Help:    "The latency of folder operation.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2.5, 15),
		},
		[]string{"operation"},
	)
	folderOperationErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folder_operation_errors",
			Help: "This count of folder operation encountering errors",
		},
		[]string{"operation"},
	)
	folderBackgroundFailureCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folder_background_task_failures",
			Help: "This count of swallowed background task failures",
		},
		[]string{"task"},
	)
)

func init() {
	prometheus.MustRegister(
		folderOperationLatency,
		folderOperationErrorCounter,
		folderBackgroundFailureCounter,
	)
}

func logOperationLatency(operation string, startAt time.Time) {
	folderOperationLatency.WithLabelValues(operation).Observe(time.Since(startAt).Seconds())
}

// logOperationError counts unexpected failures; caller mistakes are not counted.
func logOperationError(operation string, err error) error {
	if err == nil || errors.Is(err, context.Canceled) {
		return err
	}
	switch {
	case errors.Is(err, types.ErrNotFound),
		errors.Is(err, types.ErrInvalidArgument),
		errors.Is(err, types.ErrForbidden),
		errors.Is(err, types.ErrInvalidOperation),
		errors.Is(err, types.ErrNotImplemented):
		return err
	}
	folderOperationErrorCounter.WithLabelValues(operation).Inc()
	return err
}
