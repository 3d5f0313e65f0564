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

package apps

import (
	"fmt"
	"path"
	"time"

	"github.com/spf13/cobra"

	"github.com/basenana/nanadocs/cmd/apps/apis/rest"
	"github.com/basenana/nanadocs/cmd/apps/apis/rest/common"
	configapp "github.com/basenana/nanadocs/cmd/apps/config"
	"github.com/basenana/nanadocs/config"
	"github.com/basenana/nanadocs/pkg/metastore"
	"github.com/basenana/nanadocs/utils"
	"github.com/basenana/nanadocs/utils/logger"
	"github.com/basenana/nanadocs/utils/metrics"
)

func init() {
	RootCmd.AddCommand(daemonCmd)
	RootCmd.AddCommand(migrateCmd)
	RootCmd.AddCommand(versionCmd)
	RootCmd.AddCommand(FolderCmd)
	RootCmd.AddCommand(configapp.RunCmd)

	RootCmd.PersistentFlags().StringVar(&config.FilePath, "config", path.Join(config.LocalUserPath(), config.DefaultConfigBase), "nanadocs config file")
}

var RootCmd = &cobra.Command{
	Use:   "nanadocs",
	Short: "NanaDocs folder hierarchy server",
	Long:  `Multi-tenant folder hierarchy store for document management.`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var daemonCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start server service",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, meta, err := loadMeta()
		if err != nil {
			panic(err)
		}

		depends, err := common.InitDepends(cfg, meta)
		if err != nil {
			panic(err)
		}

		stop := utils.HandleTerminalSignal()
		run(depends, cfg, stop)
	},
}

func run(depends *common.Depends, cfg config.Bootstrap, stopCh chan struct{}) {
	log := logger.NewLogger("nanadocs")
	log.Infow("starting", "version", config.VersionInfo().Version())
	defer metrics.Flush()

	if cfg.API.Enable {
		s, err := rest.New(depends)
		if err != nil {
			log.Panicw("setup rest server failed", "err", err.Error())
		}
		go s.Run(stopCh)
	}

	log.Info("started")
	<-stopCh
	time.Sleep(time.Second * 2)
	if err := depends.Close(); err != nil {
		log.Warnw("close depends failed", "err", err)
	}
	log.Info("stopped")
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadMeta()
		if err != nil {
			return err
		}
		for _, p := range cfg.Providers {
			if _, err = metastore.NewMetaStorage(p.Meta.Type, p.Meta); err != nil {
				return fmt.Errorf("migrate provider %s failed: %w", p.ID, err)
			}
		}
		fmt.Println("migrate finish")
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "View version information",
	Run: func(cmd *cobra.Command, args []string) {
		vInfo := config.VersionInfo()
		fmt.Printf("Version: %s\n", vInfo.Version())
		fmt.Printf("GitCommit: %s\n", vInfo.Git)
	},
}

// loadMeta opens the metastore; opening applies pending migrations.
func loadMeta() (config.Bootstrap, metastore.Meta, error) {
	cfg, err := config.NewConfigLoader().GetBootstrapConfig()
	if err != nil {
		return cfg, nil, err
	}
	if cfg.Debug {
		logger.SetDebug(cfg.Debug)
	}

	meta, err := metastore.NewMetaStorage(cfg.Meta.Type, cfg.Meta)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, meta, nil
}
