// Package autoload initializes the global logger from the environment as a
// side effect of being imported. Binaries import it for the blank identifier.
package autoload

import (
	configx "github.com/nimbushome/support-agent/pkg/config"
	logx "github.com/nimbushome/support-agent/pkg/logger"
)

func init() {
	conf := configx.MustNew[logx.Config]("LOG")
	logx.Init(*conf)
}
