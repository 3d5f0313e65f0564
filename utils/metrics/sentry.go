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

package metrics

import (
	"os"
	"time"

	"github.com/getsentry/sentry-go"
)

var sentryEnabled bool

func init() {
	sentryDSN := os.Getenv("SENTRY_DSN")
	if sentryDSN == "" {
		return
	}
	if err := sentry.Init(sentry.ClientOptions{Dsn: sentryDSN, TracesSampleRate: 0.6}); err == nil {
		sentryEnabled = true
	}
}

// CaptureError reports a failure that was handled locally and not returned to any caller.
func CaptureError(err error, operation string) {
	if !sentryEnabled || err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("operation", operation)
		sentry.CaptureException(err)
	})
}

func Flush() {
	if sentryEnabled {
		sentry.Flush(2 * time.Second)
	}
}
