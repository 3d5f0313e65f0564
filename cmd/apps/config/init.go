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
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/basenana/nanadocs/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "generate local configuration",
	Run: func(cmd *cobra.Command, args []string) {
		initDefaultConfig()
	},
}

func initDefaultConfig() {
	fmt.Printf("Workspace: %s\n", WorkSpace)
	if err := mkdir(WorkSpace); err != nil {
		fmt.Printf("init workspace failed: %s\n", err.Error())
		return
	}

	conf := config.DefaultConfig(WorkSpace)
	fmt.Printf("Workspace Database File: %s\n", conf.Meta.Path)
	fmt.Printf("Workspace Index Dir: %s\n", conf.Index.LocalIndexerDir)
	if err := mkdir(conf.Index.LocalIndexerDir); err != nil {
		fmt.Printf("init index dir failed: %s\n", err.Error())
		return
	}

	configPath := localConfigFilePath(WorkSpace)
	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Workspace Config %s already exists\n", configPath)
		return
	}
	fmt.Printf("Workspace Config: %s\n", configPath)
	raw, _ := json.MarshalIndent(conf, "", "    ")
	if err := os.WriteFile(configPath, raw, 0644); err != nil {
		fmt.Printf("wirteback config file failed: %s\n", err.Error())
		return
	}
	fmt.Println("Generate local configuration succeed")
}

func mkdir(path string) error {
	d, err := os.Stat(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	if err != nil && os.IsNotExist(err) {
		return os.MkdirAll(path, 0755)
	}

	if d.IsDir() {
		return nil
	}

	return fmt.Errorf("%s not dir", path)
}
