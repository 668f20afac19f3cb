// Package autoload initializes the global logger from the environment when
// blank-imported.
package autoload

import (
	configx "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/pkg/config"
	logx "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/pkg/logger"
)

func init() {
	cfg, err := configx.New[logx.Config]("LOG")
	if err != nil {
		logx.Init()
		return
	}
	logx.Init(*cfg)
}
