// Package autoload initializes the global logger from LOG_* environment
// variables. Blank-import it from main:
//
//	import _ "github.com/RobertvandeCamp/sales-forecasting-case/pkg/logger/autoload"
package autoload

import (
	configx "github.com/RobertvandeCamp/sales-forecasting-case/pkg/config"
	logx "github.com/RobertvandeCamp/sales-forecasting-case/pkg/logger"
)

func init() {
	cfg := configx.MustNew[logx.Config]("LOG")
	logx.Init(*cfg)
}
