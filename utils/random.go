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

package utils

import (
	"fmt"
	"os"
	"strconv"

	"github.com/bwmarrin/snowflake"
)

const envNodeID = "NANADOCS_NODE_ID"

var idGenerator *snowflake.Node

func init() {
	var (
		node int64 = 1
		err  error
	)
	if raw := os.Getenv(envNodeID); raw != "" {
		if node, err = strconv.ParseInt(raw, 10, 64); err != nil {
			fmt.Printf("invalid %s %q, fallback to node 1\n", envNodeID, raw)
			node = 1
		}
	}
	idGenerator, err = snowflake.NewNode(node)
	if err != nil {
		fmt.Println(err)
		return
	}
}

// GenerateNewID returns a new snowflake id, unique across tenants.
func GenerateNewID() int64 {
	return idGenerator.Generate().Int64()
}
