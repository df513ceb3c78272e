// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package healthcheck_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvstocks/healthcheck"
)

type request struct {
	Method string
	Path   string
	RunID  string
	APIKey string
	Body   string
}

var _ = Describe("Healthcheck", func() {
	var (
		ctx      context.Context
		server   *httptest.Server
		requests []request
		status   int
	)

	BeforeEach(func() {
		ctx = context.Background()
		requests = nil
		status = http.StatusOK

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			requests = append(requests, request{
				Method: r.Method,
				Path:   r.URL.Path,
				RunID:  r.URL.Query().Get("rid"),
				APIKey: r.Header.Get("X-Api-Key"),
				Body:   string(body),
			})

			if r.URL.Path == "/checks/" {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusCreated)
				fmt.Fprintf(w, `{"ping_url": "https://hc-ping.com/5bf3c3b6-33f7-4a6b-8b1b-0a4f0b8c5e21"}`)
				return
			}

			w.WriteHeader(status)
		}))

		healthcheck.APIURL = server.URL
		healthcheck.PingURL = server.URL
	})

	AfterEach(func() {
		server.Close()
	})

	It("pings start, success and fail", func() {
		Expect(healthcheck.Start(ctx, "check-1", "run-1")).To(Succeed())
		Expect(healthcheck.Success(ctx, "check-1", "run-1", "uploaded 10 tickers")).To(Succeed())
		Expect(healthcheck.Fail(ctx, "check-1", "run-1", "boom")).To(Succeed())

		Expect(requests).To(HaveLen(3))
		Expect(requests[0].Path).To(Equal("/check-1/start"))
		Expect(requests[0].RunID).To(Equal("run-1"))
		Expect(requests[1].Path).To(Equal("/check-1"))
		Expect(requests[1].Body).To(Equal("uploaded 10 tickers"))
		Expect(requests[2].Path).To(Equal("/check-1/fail"))
	})

	It("requires a check id", func() {
		Expect(healthcheck.Start(ctx, "", "run-1")).To(MatchError(healthcheck.ErrNoCheckID))
		Expect(requests).To(BeEmpty())
	})

	It("reports rejected pings", func() {
		status = http.StatusNotFound
		Expect(healthcheck.Success(ctx, "check-1", "", "")).To(MatchError(healthcheck.ErrStatus))
	})

	It("creates a check and returns its id", func() {
		id, err := healthcheck.Create(ctx, "secret", "pvstocks", "pvstocks-run", []string{"pvstocks"}, "0 6 * * *")
		Expect(err).ToNot(HaveOccurred())
		Expect(id).To(Equal("5bf3c3b6-33f7-4a6b-8b1b-0a4f0b8c5e21"))
		Expect(requests[0].APIKey).To(Equal("secret"))
		Expect(requests[0].Body).To(ContainSubstring(`"slug":"pvstocks-run"`))
	})

	It("pauses a check", func() {
		Expect(healthcheck.Pause(ctx, "secret", "check-1")).To(Succeed())
		Expect(requests[0].Path).To(Equal("/checks/check-1/pause"))
		Expect(requests[0].Method).To(Equal(http.MethodPost))
	})
})
