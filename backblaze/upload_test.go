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
package backblaze_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvstocks/backblaze"
)

var _ = Describe("Upload", func() {
	It("requires credentials and a bucket", func() {
		Expect(backblaze.Config{}.Enabled()).To(BeFalse())
		Expect(backblaze.Config{ApplicationID: "id", ApplicationKey: "key"}.Enabled()).To(BeFalse())
		Expect(backblaze.Config{ApplicationID: "id", ApplicationKey: "key", Bucket: "exports"}.Enabled()).To(BeTrue())

		Expect(backblaze.Upload(backblaze.Config{}, "2024", "/tmp/missing.parquet")).To(MatchError(backblaze.ErrMissingCredentials))
	})

	It("names objects inside the destination directory", func() {
		Expect(backblaze.ObjectName("/tmp/export/magic-formula.parquet", "2024")).To(Equal("2024/magic-formula.parquet"))
		Expect(backblaze.ObjectName("magic-formula.parquet", "")).To(Equal("magic-formula.parquet"))
	})
})
