package sandbox

import (
	"strings"

	"github.com/dop251/goja"

	"digital.vasic.lessons/pkg/logging"
)

// console forwards console.* calls to the debug log until limit
// bytes have been written.
type console struct {
	logger    logging.Logger
	limit     int
	written   int
	truncated bool
}

func installConsole(vm *goja.Runtime, logger logging.Logger, limit int) {
	c := &console{logger: logger, limit: limit}
	obj := vm.NewObject()
	for _, level := range []string{"log", "info", "warn", "error", "debug"} {
		_ = obj.Set(level, c.method(level))
	}
	_ = vm.Set("console", obj)
}

func (c *console) method(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		c.write(level, strings.Join(parts, " "))
		return goja.Undefined()
	}
}

func (c *console) write(level, line string) {
	if c.truncated {
		return
	}
	if c.written+len(line) > c.limit {
		c.truncated = true
		c.logger.Debug("sandbox console output truncated",
			logging.IntField("limit", c.limit),
		)
		return
	}
	c.written += len(line)
	c.logger.Debug("sandbox console",
		logging.StringField("level", level),
		logging.StringField("output", line),
	)
}
