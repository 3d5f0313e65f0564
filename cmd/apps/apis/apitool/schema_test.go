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
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/basenana/nanadocs/pkg/types"
)

func errorRecorder(err error) (*httptest.ResponseRecorder, Response) {
	w := httptest.NewRecorder()
	gCtx, _ := gin.CreateTestContext(w)
	ErrorResponse(gCtx, err)

	var resp Response
	Expect(json.Unmarshal(w.Body.Bytes(), &resp)).Should(BeNil())
	return w, resp
}

var _ = Describe("TestErrorResponse", func() {
	It("should map wrapped errors to status and code", func() {
		w, resp := errorRecorder(fmt.Errorf("%w: folder 7", types.ErrNotFound))
		Expect(w.Code).Should(Equal(http.StatusNotFound))
		Expect(resp.Status).Should(Equal(http.StatusNotFound))
		Expect(resp.Error.Code).Should(Equal(ApiNotFoundError))
		Expect(resp.Error.Message).Should(ContainSubstring("folder 7"))

		w, resp = errorRecorder(types.ErrInvalidOperation)
		Expect(w.Code).Should(Equal(http.StatusConflict))
		Expect(resp.Error.Code).Should(Equal(ApiInvalidOperation))
	})
	It("should report unknown errors as internal", func() {
		w, resp := errorRecorder(fmt.Errorf("disk on fire"))
		Expect(w.Code).Should(Equal(http.StatusInternalServerError))
		Expect(resp.Error.Code).Should(Equal(ApiInternalError))
	})
})

var _ = Describe("TestJsonResponse", func() {
	It("should wrap data with the status", func() {
		w := httptest.NewRecorder()
		gCtx, _ := gin.CreateTestContext(w)
		JsonResponse(gCtx, http.StatusCreated, map[string]int{"id": 3})

		Expect(w.Code).Should(Equal(http.StatusCreated))
		var resp struct {
			Status int            `json:"status"`
			Data   map[string]int `json:"data"`
		}
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).Should(BeNil())
		Expect(resp.Status).Should(Equal(http.StatusCreated))
		Expect(resp.Data["id"]).Should(Equal(3))
	})
})
