package logger

import (
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. Init reconfigures it from the environment.
var Log = logrus.New()

// Init sets the formatter and level. format is "json" or "text".
func Init(level, format string) {
	Log.SetOutput(os.Stdout)

	switch strings.ToLower(format) {
	case "json":
		Log.SetFormatter(&logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	default:
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)
}

// FromCtx returns an entry tagged with the request id and, when the request
// is authenticated, the user id.
func FromCtx(c *fiber.Ctx) *logrus.Entry {
	entry := logrus.NewEntry(Log)
	if c == nil {
		return entry
	}
	fields := logrus.Fields{
		"method": c.Method(),
		"path":   c.Path(),
	}
	if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
		fields["request_id"] = rid
	}
	if uid, ok := c.Locals("userID").(string); ok && uid != "" {
		fields["user_id"] = uid
	}
	return entry.WithFields(fields)
}
