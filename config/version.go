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

package config

import (
	"fmt"
	"strconv"
	"strings"
)

// set by -ldflags at build time
var (
	gitTag    string
	gitCommit string
)

type Version struct {
	Major   int    `json:"major"`
	Minor   int    `json:"minor"`
	Patch   int    `json:"patch"`
	Release string `json:"release"`
	Git     string `json:"git"`
}

func (v Version) Version() string {
	if v.Release != "" {
		return fmt.Sprintf("v%d.%d.%d-%s", v.Major, v.Minor, v.Patch, v.Release)
	}
	return fmt.Sprintf("v%d.%d.%d", v.Major, v.Minor, v.Patch)
}

func VersionInfo() Version {
	info := Version{Git: gitCommit}

	tag, release, _ := strings.Cut(strings.TrimPrefix(gitTag, "v"), "-")
	info.Release = release

	parts := strings.SplitN(tag, ".", 3)
	nums := []*int{&info.Major, &info.Minor, &info.Patch}
	for i, p := range parts {
		*nums[i], _ = strconv.Atoi(p)
	}
	return info
}
