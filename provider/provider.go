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
package provider

import (
	"errors"
)

var (
	ErrUnsupportedTable = errors.New("provider does not supply table")
	ErrHTTPStatus       = errors.New("provider returned an error status code")
	ErrUnauthorized     = errors.New("provider rejected credentials")
	ErrCrumb            = errors.New("could not obtain yahoo crumb")
)

// companyInfoKeys are the slowly changing company profile fields. Every
// other field returned alongside them is a key statistic.
var companyInfoKeys = map[string]bool{
	"symbol":                true,
	"short_name":            true,
	"long_name":             true,
	"uuid":                  true,
	"address1":              true,
	"address2":              true,
	"fax":                   true,
	"city":                  true,
	"state":                 true,
	"zip":                   true,
	"country":               true,
	"phone":                 true,
	"website":               true,
	"industry":              true,
	"industry_key":          true,
	"industry_disp":         true,
	"sector":                true,
	"sector_key":            true,
	"sector_disp":           true,
	"long_business_summary": true,
	"full_time_employees":   true,
	"ir_website":            true,
	"company_officers":      true,
}

// IsCompanyInfoKey reports if a normalized field belongs to the company info table
func IsCompanyInfoKey(key string) bool {
	return companyInfoKeys[key]
}
