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
package provider_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvstocks/provider"
)

var _ = Describe("IsCompanyInfoKey", func() {
	It("classifies profile fields", func() {
		Expect(provider.IsCompanyInfoKey("sector_key")).To(BeTrue())
		Expect(provider.IsCompanyInfoKey("company_officers")).To(BeTrue())
		Expect(provider.IsCompanyInfoKey("enterprise_value")).To(BeFalse())
		Expect(provider.IsCompanyInfoKey("current_price")).To(BeFalse())
	})
})
