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
package pkginfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sort"

	"github.com/rs/zerolog/log"
)

// Set at link time with -ldflags "-X github.com/penny-vault/pvstocks/pkginfo.Version=..."
var (
	BuildDate  string
	CommitHash string
	Version    string
)

// Info describes the running binary
type Info struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	BuildDate    string   `json:"build_date"`
	Commit       string   `json:"commit"`
	GoVersion    string   `json:"go_version"`
	Platform     string   `json:"platform"`
	Dependencies []string `json:"dependencies,omitempty"`
}

// Current returns the build information of the running binary
func Current(withDeps bool) Info {
	info := Info{
		Name:      "pvstocks",
		Version:   Version,
		BuildDate: BuildDate,
		Commit:    CommitHash,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	if info.Version == "" {
		info.Version = "devel"
	}

	if withDeps {
		info.Dependencies = GetDependencyList()
	}

	return info
}

// BuildVersionString returns a version info string suitable for printing on the command line
func BuildVersionString() string {
	info := Current(false)
	return fmt.Sprintf(`%s %s %s

Build Date: %s
Commit: %s
Built with: %s`, info.Name, info.Version, info.Platform, info.BuildDate, info.Commit, info.GoVersion)
}

// GetDependencyList returns an array of all dependencies linked in with this program
// each string is of the form `package="version"`
func GetDependencyList() []string {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		log.Error().Msg("could not get package build info")
		return nil
	}

	deps := make([]string, 0, len(buildInfo.Deps))
	for _, dep := range buildInfo.Deps {
		deps = append(deps, fmt.Sprintf("%s=%q", dep.Path, dep.Version))
	}

	sort.Strings(deps)
	return deps
}
